package structure

import "github.com/ndlayout/engine/graph"

// OrderByCentrality implements the Centrality Orderer (C): within each
// level, abstract nodes are sorted by descending score, stably — ties keep
// their relative (insertion) order, which is itself derived from the
// input's node order (spec §5 ordering guarantees). For a VC, the
// representative's score is already the max of its members' scores
// (computed in detectCondensation), so no extra handling is needed here.
func OrderByCentrality(levels [][]*graph.Abstract) {
	for _, level := range levels {
		stableSortByScoreDesc(level)
	}
}

func stableSortByScoreDesc(level []*graph.Abstract) {
	for i := 1; i < len(level); i++ {
		for j := i; j > 0 && level[j].Score > level[j-1].Score; j-- {
			level[j], level[j-1] = level[j-1], level[j]
		}
	}
}

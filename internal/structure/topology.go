package structure

import "github.com/ndlayout/engine/graph"

// OrderedLevels groups the condensation's abstract representatives by
// level, in ascending level order. This is the Topology Tagger's (T) sole
// output: the pre-sorted, per-level node sequences the Abstract Placer and
// Centrality Orderer consume. T itself has no layout effect; it is a pure
// decorator over what Analyse already computed.
func OrderedLevels(l *graph.Layout) [][]*graph.Abstract {
	if l.Condensation == nil {
		return nil
	}
	maxLevel := 0
	for _, r := range l.Condensation.Representatives {
		if r.Level > maxLevel {
			maxLevel = r.Level
		}
	}
	levels := make([][]*graph.Abstract, maxLevel+1)
	for _, r := range l.Condensation.Representatives {
		levels[r.Level] = append(levels[r.Level], r)
	}
	return levels
}

// LevelDistribution reports the node count (real node count, not
// representative count) per level, for the diagnostic debug surface
// mentioned in spec §4.2.
func LevelDistribution(l *graph.Layout) []int {
	maxLevel := 0
	for _, id := range l.NodeIDs() {
		if l.Nodes[id].Level > maxLevel {
			maxLevel = l.Nodes[id].Level
		}
	}
	counts := make([]int, maxLevel+1)
	for _, id := range l.NodeIDs() {
		counts[l.Nodes[id].Level]++
	}
	return counts
}

// TopKScores returns the k highest-scoring node ids and their scores, in
// descending order with the input order as a stable tiebreak.
func TopKScores(l *graph.Layout, k int) (ids []string, scores []float64) {
	type pair struct {
		id    string
		score float64
		idx   int
	}
	pairs := make([]pair, 0, len(l.Nodes))
	for i, id := range l.NodeIDs() {
		pairs = append(pairs, pair{id, l.Nodes[id].Score, i})
	}
	// stable descending sort by score, input order tiebreak
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].score > pairs[j-1].score; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
	if k > len(pairs) {
		k = len(pairs)
	}
	for _, p := range pairs[:k] {
		ids = append(ids, p.id)
		scores = append(scores, p.score)
	}
	return ids, scores
}

package abstractplace

import (
	"sort"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
)

// Expand runs the Expander (X): every condensation representative in
// l.AbstractPositions is replaced by its real members (spec §4.6). A
// non-VC representative (or a VC with a single member, which cannot occur
// given cfg.MinCondensationGroupSize but is handled defensively) maps
// straight through under its member's real id. A VC's members are spread
// around the representative's x using cfg.ExpanderSiblingSpacing and
// stacked by cfg.ExpanderSubLevelSpacing according to each member's own
// pre-condensation topological level (graph.Node.Level), so a VC that
// happens to bundle nodes from more than one level still renders them at
// their proper relative heights rather than flattening them onto one row.
func Expand(l *graph.Layout, cfg config.Config) {
	if l.Condensation == nil {
		return
	}
	final := make(map[string]graph.Point, len(l.Nodes))
	for _, rep := range l.Condensation.Representatives {
		pos, ok := l.AbstractPositions[rep.ID]
		if !ok {
			continue
		}
		if !rep.IsVC || len(rep.Members) <= 1 {
			id := rep.ID
			if len(rep.Members) == 1 {
				id = rep.Members[0]
			}
			final[id] = pos
			continue
		}
		expandVC(l, rep, pos, cfg, final)
	}
	l.AbstractPositions = final
}

func expandVC(l *graph.Layout, rep *graph.Abstract, pos graph.Point, cfg config.Config, final map[string]graph.Point) {
	byLevel := make(map[int][]string)
	var levels []int
	seen := make(map[int]bool)
	minLevel, first := 0, true
	for _, m := range rep.Members {
		lvl := l.Nodes[m].Level
		if first || lvl < minLevel {
			minLevel = lvl
			first = false
		}
		if !seen[lvl] {
			seen[lvl] = true
			levels = append(levels, lvl)
		}
		byLevel[lvl] = append(byLevel[lvl], m)
	}
	sort.Ints(levels)

	for _, lvl := range levels {
		members := byLevel[lvl]
		n := len(members)
		mean := float64(n-1) / 2.0
		for i, m := range members {
			final[m] = graph.Point{
				X: pos.X + (float64(i)-mean)*cfg.ExpanderSiblingSpacing,
				Y: pos.Y + float64(lvl-minLevel)*cfg.ExpanderSubLevelSpacing,
			}
		}
	}
}

// Levels rebuilds per-layer groupings from l.AbstractPositions after
// expansion: ids sharing a y coordinate form one layer (layers ascending),
// and within a layer ids are ordered by x then, as a stable tiebreak, id.
// Downstream stages (I, R) consume this instead of re-deriving levels from
// graph.Node.Level, since expansion may have introduced sub-rows a VC's
// members occupy that the original per-node level doesn't capture alone.
func Levels(l *graph.Layout) [][]string {
	byY := make(map[float64][]string)
	var ys []float64
	for id, p := range l.AbstractPositions {
		if _, ok := byY[p.Y]; !ok {
			ys = append(ys, p.Y)
		}
		byY[p.Y] = append(byY[p.Y], id)
	}
	sort.Float64s(ys)

	out := make([][]string, 0, len(ys))
	for _, y := range ys {
		ids := byY[y]
		sort.Slice(ids, func(i, j int) bool {
			pi, pj := l.AbstractPositions[ids[i]], l.AbstractPositions[ids[j]]
			if pi.X != pj.X {
				return pi.X < pj.X
			}
			return ids[i] < ids[j]
		})
		out = append(out, ids)
	}
	return out
}

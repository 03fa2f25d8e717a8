// Package abstractplace implements the Abstract Placer (A) and Position
// Optimiser (P) stages: layering, barycenter ordering, continuous
// x-assignment, and bisection refinement over the condensed abstract
// graph (spec §4.4–§4.5). It also implements the Expander (X, expand.go).
// Grounded on godagre's order.go (barycenter sweeps, dummy-free since the
// abstract graph here has no multi-rank edges to split) and position.go.
package abstractplace

import (
	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
)

type abstractGraph struct {
	reps  map[string]*graph.Abstract
	out   map[string][]edgeRef // rep id -> outgoing (to, weight, sameLevel)
	in    map[string][]edgeRef // rep id -> incoming (from, weight, sameLevel)
	order map[string]int       // rep id -> index within its level
}

type edgeRef struct {
	other     string
	weight    float64
	sameLevel bool
}

func buildAbstractGraph(l *graph.Layout) *abstractGraph {
	ag := &abstractGraph{
		reps:  make(map[string]*graph.Abstract),
		out:   make(map[string][]edgeRef),
		in:    make(map[string][]edgeRef),
		order: make(map[string]int),
	}
	if l.Condensation == nil {
		return ag
	}
	for _, r := range l.Condensation.Representatives {
		ag.reps[r.ID] = r
	}
	for _, e := range l.Condensation.Edges {
		ag.out[e.From] = append(ag.out[e.From], edgeRef{e.To, e.Weight, e.SameLevel})
		ag.in[e.To] = append(ag.in[e.To], edgeRef{e.From, e.Weight, e.SameLevel})
	}
	return ag
}

// orderLevels runs the Abstract Placer's bidirectional barycenter sweep
// (spec §4.4): K iterations alternating forward and backward passes,
// keeping the ordering with the lowest crossing count seen (Q5: monotone
// improvement, keep-best).
func orderLevels(ag *abstractGraph, levels [][]*graph.Abstract, cfg config.Config) (best [][]*graph.Abstract, bestCrossings int, series []int) {
	for _, level := range levels {
		for i, n := range level {
			ag.order[n.ID] = i
		}
	}

	best = copyLevels(levels)
	bestCrossings = countCrossings(ag, best)
	series = append(series, bestCrossings)

	cur := copyLevels(levels)
	for iter := 0; iter < cfg.BarycenterIterations; iter++ {
		sweep(ag, cur, true, cfg)
		sweep(ag, cur, false, cfg)

		cc := countCrossings(ag, cur)
		if cc < bestCrossings {
			bestCrossings = cc
			best = copyLevels(cur)
		}
		series = append(series, bestCrossings)
	}
	return best, bestCrossings, series
}

func sweep(ag *abstractGraph, levels [][]*graph.Abstract, forward bool, cfg config.Config) {
	if forward {
		for i := 1; i < len(levels); i++ {
			resortLevel(ag, levels[i], ag.in, cfg)
		}
	} else {
		for i := len(levels) - 2; i >= 0; i-- {
			resortLevel(ag, levels[i], ag.out, cfg)
		}
	}
}

func resortLevel(ag *abstractGraph, level []*graph.Abstract, neighbours map[string][]edgeRef, cfg config.Config) {
	type scored struct {
		n          *graph.Abstract
		barycenter float64
		hasBary    bool
	}
	entries := make([]scored, len(level))
	for i, n := range level {
		sum, weight := 0.0, 0.0
		for _, e := range neighbours[n.ID] {
			w := cfg.CrossLevelEdgeWeight
			if e.sameLevel {
				w = cfg.SameLevelEdgeWeight
			}
			w *= e.weight
			sum += float64(ag.order[e.other]) * w
			weight += w
		}
		if weight > 0 {
			entries[i] = scored{n, sum / weight, true}
		} else {
			entries[i] = scored{n, float64(ag.order[n.ID]), false}
		}
	}

	// stable sort ascending barycenter; ties broken by descending
	// centrality score, then by id (spec §4.4).
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && less(entries[j], entries[j-1]); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	for i, e := range entries {
		level[i] = e.n
		ag.order[e.n.ID] = i
	}
}

func less(a, b struct {
	n          *graph.Abstract
	barycenter float64
	hasBary    bool
}) bool {
	if a.barycenter != b.barycenter {
		return a.barycenter < b.barycenter
	}
	if a.n.Score != b.n.Score {
		return a.n.Score > b.n.Score
	}
	return a.n.ID < b.n.ID
}

func copyLevels(levels [][]*graph.Abstract) [][]*graph.Abstract {
	out := make([][]*graph.Abstract, len(levels))
	for i, level := range levels {
		out[i] = append([]*graph.Abstract(nil), level...)
	}
	return out
}

// countCrossings counts edge crossings between every pair of adjacent
// levels using the position-inversion method (grounded on
// godagre.bilayerCrossCount).
func countCrossings(ag *abstractGraph, levels [][]*graph.Abstract) int {
	total := 0
	for i := 0; i < len(levels)-1; i++ {
		total += bilayerCrossings(ag, levels[i], levels[i+1])
	}
	return total
}

func bilayerCrossings(ag *abstractGraph, upper, lower []*graph.Abstract) int {
	pos := make(map[string]int, len(lower))
	for i, n := range lower {
		pos[n.ID] = i
	}
	count := 0
	for i := 0; i < len(upper); i++ {
		for j := i + 1; j < len(upper); j++ {
			for _, e1 := range ag.out[upper[i].ID] {
				p1, ok1 := pos[e1.other]
				if !ok1 {
					continue
				}
				for _, e2 := range ag.out[upper[j].ID] {
					p2, ok2 := pos[e2.other]
					if ok2 && p1 > p2 {
						count++
					}
				}
			}
		}
	}
	return count
}

package abstractplace

import (
	"math"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
)

// Optimise runs the Position Optimiser (P): for each layer, holding its
// neighbours fixed, it finds the horizontal offset δ minimising the
// weighted edge length to every edge incident on the layer, via bisection
// (spec §4.5). A proximate edge (|Δlevel| == 1) counts with weight 1; a
// skip edge (|Δlevel| > 1) counts with weight 1/|Δlevel|. Relative ordering
// within a layer is never changed (the Open Question on reordering is
// resolved here: reordering is forbidden).
//
// Returns true if the pass converged within cfg.PositionOptimiserMaxPasses
// (max |δ| < cfg.PositionOptimiserTolerance over a full pass); false means
// BudgetExceeded and the best-so-far positions are kept, per spec §7.
func Optimise(l *graph.Layout, cfg config.Config) (converged bool) {
	if l.Condensation == nil || len(l.Condensation.Edges) == 0 {
		return true
	}

	levelOf := make(map[string]int, len(l.AbstractPositions))
	maxLevel := 0
	for id, p := range l.AbstractPositions {
		lvl := int(p.Y)
		levelOf[id] = lvl
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	// incident[id] = list of (other id, weight) for every edge touching id,
	// weighted per the proximate/skip rule above.
	incident := make(map[string][]weightedNeighbour)
	for _, e := range l.Condensation.Edges {
		d := levelOf[e.To] - levelOf[e.From]
		if d == 0 {
			continue // same-level edges don't pull across layers
		}
		w := e.Weight
		if absInt(d) > 1 {
			w /= float64(absInt(d))
		}
		incident[e.From] = append(incident[e.From], weightedNeighbour{e.To, w})
		incident[e.To] = append(incident[e.To], weightedNeighbour{e.From, w})
	}

	byLevel := make([][]string, maxLevel+1)
	for id, lvl := range levelOf {
		byLevel[lvl] = append(byLevel[lvl], id)
	}

	pass := func(ascending bool) float64 {
		maxAbsDelta := 0.0
		order := make([]int, len(byLevel))
		for i := range order {
			order[i] = i
		}
		if !ascending {
			for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
				order[i], order[j] = order[j], order[i]
			}
		}
		for _, lvl := range order {
			members := byLevel[lvl]
			if len(members) == 0 {
				continue
			}
			delta := bestDelta(members, incident, l.AbstractPositions)
			if math.Abs(delta) > maxAbsDelta {
				maxAbsDelta = math.Abs(delta)
			}
			for _, id := range members {
				p := l.AbstractPositions[id]
				p.X += delta
				l.AbstractPositions[id] = p
			}
		}
		return maxAbsDelta
	}

	for i := 0; i < cfg.PositionOptimiserMaxPasses; i++ {
		d1 := pass(true)
		d2 := pass(false)
		if d1 < cfg.PositionOptimiserTolerance && d2 < cfg.PositionOptimiserTolerance {
			return true
		}
	}
	return false
}

type weightedNeighbour struct {
	id     string
	weight float64
}

// bestDelta bisection-searches the offset δ that minimises
// Σ weight(e)·|x(member)+δ − x(other)| summed over every edge incident on
// the given layer's members, against the fixed positions of every other
// layer.
func bestDelta(members []string, incident map[string][]weightedNeighbour, pos map[string]graph.Point) float64 {
	cost := func(delta float64) float64 {
		total := 0.0
		for _, id := range members {
			x := pos[id].X + delta
			for _, nb := range incident[id] {
				total += nb.weight * math.Abs(x-pos[nb.id].X)
			}
		}
		return total
	}

	lo, hi := -500.0, 500.0
	for i := 0; i < 40; i++ {
		if hi-lo < 1e-4 {
			break
		}
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if cost(m1) <= cost(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	return (lo + hi) / 2
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

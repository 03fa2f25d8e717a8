package abstractplace

import (
	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/structure"
)

// Diagnostics carries the Abstract Placer's debug-only byproducts: the
// crossing count achieved and the per-iteration best-so-far series (spec
// §4.4, §4.2's "diagnostic debug surfaces", Q5).
type Diagnostics struct {
	Crossings     int
	CrossingSeries []int
}

// Place runs the Abstract Placer (A): it operates on the condensation's
// abstract graph (or the plain per-node graph when nothing was condensed,
// since structure.Analyse always populates a Condensation with a 1:1
// representative per node in that case). It orders each level via the
// bidirectional barycenter sweep, then assigns continuous x-coordinates,
// writing l.AbstractPositions keyed by representative id.
func Place(l *graph.Layout, cfg config.Config) Diagnostics {
	levels := structure.OrderedLevels(l)
	structure.OrderByCentrality(levels)

	ag := buildAbstractGraph(l)
	best, crossings, series := orderLevels(ag, levels, cfg)

	positions := assignContinuousX(best, cfg)
	for id, p := range positions {
		l.AbstractPositions[id] = p
	}

	return Diagnostics{Crossings: crossings, CrossingSeries: series}
}

package abstractplace

import (
	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
)

// assignContinuousX places each level's nodes at unit abstract spacing,
// centres the level around 0, then blends high-score nodes toward the
// centre by at most cfg.ScoreCenterInfluence of their offset distance
// (spec §4.4). Returns id -> (x_abs, y_abs) where y_abs is the layer index.
func assignContinuousX(levels [][]*graph.Abstract, cfg config.Config) map[string]graph.Point {
	positions := make(map[string]graph.Point)
	for y, level := range levels {
		n := len(level)
		if n == 0 {
			continue
		}
		raw := make([]float64, n)
		for i := range level {
			raw[i] = float64(i)
		}
		mean := float64(n-1) / 2.0
		for i := range raw {
			raw[i] -= mean
		}

		maxScore := 0.0
		for _, node := range level {
			if node.Score > maxScore {
				maxScore = node.Score
			}
		}

		for i, node := range level {
			offset := raw[i]
			if maxScore > 0 {
				frac := cfg.ScoreCenterInfluence * (node.Score / maxScore)
				offset = offset * (1 - frac)
			}
			positions[node.ID] = graph.Point{X: offset, Y: float64(y)}
		}
	}
	return positions
}

package inflate

import (
	"math"
	"sort"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
)

// Redistribute runs the Vertical Redistributor (R, spec §4.8). It groups
// and spaces primary elements only; Inflate wrote every contained node's
// position in global coordinates, so each shift of a primary container is
// applied to its whole subtree as well (shiftSubtree). A primary node with
// an explicit input coordinate ends at that coordinate, and every label
// position moves with its node.
func Redistribute(l *graph.Layout, cfg config.Config) {
	levels := primaryLevels(l)
	if len(levels) == 0 {
		return
	}

	before := make(map[string][2]float64, len(l.Nodes))
	for id, n := range l.Nodes {
		before[id] = [2]float64{n.PosX, n.PosY}
	}

	y := 0.0
	for _, level := range levels {
		maxHeight := 0.0
		for _, id := range level {
			if h := l.Nodes[id].Height; h > maxHeight {
				maxHeight = h
			}
		}
		dy := y - levelTop(l, level)
		shiftLevel(l, level, 0, dy)
		rescaleHorizontalGap(l, level, cfg)
		centreLevel(l, level)
		y += maxHeight + cfg.VerticalGap
	}

	// an explicit input coordinate is final: undo whatever spacing moved
	// the node, carrying its subtree along
	for _, id := range l.PrimaryElements {
		n := l.Nodes[id]
		dx, dy := 0.0, 0.0
		if n.X != nil {
			dx = *n.X - n.PosX
		}
		if n.Y != nil {
			dy = *n.Y - n.PosY
		}
		n.PosX += dx
		n.PosY += dy
		shiftSubtree(l, id, dx, dy)
	}

	for id, p := range l.LabelPositions {
		if n, ok := l.Nodes[id]; ok {
			b := before[id]
			p.X += n.PosX - b[0]
			p.Y += n.PosY - b[1]
			l.LabelPositions[id] = p
		}
	}
}

// primaryLevels groups primary elements by their (already pixel) y
// position, ascending, preserving left-to-right x order within a level.
func primaryLevels(l *graph.Layout) [][]string {
	byY := make(map[float64][]string)
	var ys []float64
	for _, id := range l.PrimaryElements {
		y := l.Nodes[id].PosY
		if _, ok := byY[y]; !ok {
			ys = append(ys, y)
		}
		byY[y] = append(byY[y], id)
	}
	sort.Float64s(ys)

	out := make([][]string, 0, len(ys))
	for _, y := range ys {
		ids := byY[y]
		sort.Slice(ids, func(i, j int) bool {
			xi, xj := l.Nodes[ids[i]].PosX, l.Nodes[ids[j]].PosX
			if xi != xj {
				return xi < xj
			}
			return ids[i] < ids[j]
		})
		out = append(out, ids)
	}
	return out
}

func levelTop(l *graph.Layout, level []string) float64 {
	top := l.Nodes[level[0]].PosY
	for _, id := range level {
		if y := l.Nodes[id].PosY; y < top {
			top = y
		}
	}
	return top
}

func shiftLevel(l *graph.Layout, level []string, dx, dy float64) {
	for _, id := range level {
		n := l.Nodes[id]
		n.PosX += dx
		n.PosY += dy
		shiftSubtree(l, id, dx, dy)
	}
}

func shiftSubtree(l *graph.Layout, id string, dx, dy float64) {
	for _, child := range l.Children[id] {
		c := l.Nodes[child]
		c.PosX += dx
		c.PosY += dy
		shiftSubtree(l, child, dx, dy)
	}
}

// rescaleHorizontalGap enforces MinHorizontalGap between consecutive nodes
// in a level, rescaling the level's x coordinates about its centroid if
// the gap between any adjacent pair is too small, while preserving order.
func rescaleHorizontalGap(l *graph.Layout, level []string, cfg config.Config) {
	if len(level) < 2 {
		return
	}

	minRatio := 1.0
	centroid := levelCentroid(l, level)
	for i := 0; i+1 < len(level); i++ {
		a, b := l.Nodes[level[i]], l.Nodes[level[i+1]]
		required := a.Width/2 + b.Width/2 + cfg.MinHorizontalGap
		actual := b.PosX - a.PosX
		if actual <= 0 {
			continue
		}
		needed := required / actual
		if needed > minRatio {
			minRatio = needed
		}
	}
	if minRatio <= 1.0 {
		return
	}
	for _, id := range level {
		n := l.Nodes[id]
		dx := (n.PosX-centroid)*minRatio - (n.PosX - centroid)
		n.PosX += dx
		shiftSubtree(l, id, dx, 0)
	}
}

func levelCentroid(l *graph.Layout, level []string) float64 {
	sum := 0.0
	for _, id := range level {
		sum += l.Nodes[id].PosX
	}
	return sum / float64(len(level))
}

// centreLevel re-centres a level's bounding box (icon extents, not the
// bare x coordinates) about the canvas midline, so NdFn-grouped
// sub-bounding-boxes line up across levels of differing total width.
func centreLevel(l *graph.Layout, level []string) {
	left, right := math.Inf(1), math.Inf(-1)
	for _, id := range level {
		n := l.Nodes[id]
		if n.PosX < left {
			left = n.PosX
		}
		if n.PosX+n.Width > right {
			right = n.PosX + n.Width
		}
	}
	mid := (left + right) / 2
	dx := l.Canvas.Width/2 - mid
	shiftLevel(l, level, dx, 0)
}

// Package inflate implements the Inflator+Grower (I) and Vertical
// Redistributor (R) stages: abstract coordinates become pixels, containers
// grow bottom-up around their measured children, and level heights are
// redistributed top to bottom (spec §4.7–§4.8). Grounded on godagre's
// position.go (coordinate assignment) and compound.go (container-aware
// sizing), generalised from dagre's rank/order model to the spec's own
// abstract-position inputs.
package inflate

import (
	"math"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/colorutil"
	"github.com/ndlayout/engine/internal/textmeasure"
)

// canvasBackground is the fill the renderer draws behind every label; it
// governs the label text colour chosen by colorutil.ReadableLabelColour.
const canvasBackground = "#ffffff"

// Spacing returns the base horizontal/vertical pixel spacing derived from
// the icon footprint and the widest container in the tree (spec §4.7 step 1).
func Spacing(l *graph.Layout, cfg config.Config) (sh, sv float64) {
	maxChildren := 0
	for _, children := range l.Children {
		if len(children) > maxChildren {
			maxChildren = len(children)
		}
	}
	sh = math.Max(20*cfg.IconWidth, 3*float64(maxChildren)*cfg.IconWidth)
	sv = 1.5 * sh
	return sh, sv
}

// Inflate runs stage I: primary elements get a pixel position from their
// expanded abstract position, every node gets its icon footprint, and a
// tentative label position directly below the icon. Containers are then
// grown bottom-up by depth so each one's size is established before its own
// parent is sized; the global positions of contained nodes are resolved
// afterwards, top-down, once every container has its final size.
func Inflate(l *graph.Layout, cfg config.Config, ruler *textmeasure.Ruler) {
	if ruler == nil {
		ruler = textmeasure.New(cfg.LabelCharWidth, cfg.LabelLineHeight)
	}
	sh, sv := Spacing(l, cfg)

	for _, id := range l.NodeIDs() {
		n := l.Nodes[id]
		if len(l.Children[id]) == 0 {
			n.Width = cfg.IconWidth * nonZero(n.Wp)
			n.Height = cfg.IconHeight * nonZero(n.Hp)
		}
	}

	for _, id := range l.PrimaryElements {
		n := l.Nodes[id]
		pos, ok := l.AbstractPositions[id]
		if ok {
			n.PosX = pos.X * sh
			n.PosY = pos.Y * sv
		}
		// an explicit input coordinate overrides the abstract placement
		// outright (spec §6 scenario S6); the Redistributor spaces the
		// node's level as usual and then returns the node to this coordinate.
		if n.X != nil {
			n.PosX = *n.X
		}
		if n.Y != nil {
			n.PosY = *n.Y
		}
	}

	// growContainer runs deepest-first so every container's size is settled
	// before its own parent measures it, but that means a container's
	// PosX/PosY is not yet known at the moment its own children are being
	// positioned (the parent may be two or more levels up the containment
	// chain and hasn't grown yet). So growContainer only records each
	// child's position *relative to its immediate parent*; global
	// coordinates are resolved afterward in a separate top-down pass, once
	// every container's final size (and thus every parent's final PosX/
	// PosY) is known (spec §4.7 step 5, invariant I3).
	localPos := make(map[string]graph.Point)
	depths := depthOrder(l)
	for _, id := range depths {
		if len(l.Children[id]) == 0 {
			continue
		}
		growContainer(l, id, cfg, ruler, localPos)
	}
	resolveGlobalPositions(l, localPos)

	for _, id := range l.NodeIDs() {
		placeLabel(l, id, cfg, ruler)
	}
}

// resolveGlobalPositions walks the containment tree root-to-leaf (ascending
// ContainerDepth, the reverse of growContainer's order) converting each
// non-primary node's parent-relative offset into a global PosX/PosY. By the
// time a node at depth d is visited, every ancestor up to depth d-1 already
// has its final global position, so this is correct for any nesting depth.
func resolveGlobalPositions(l *graph.Layout, localPos map[string]graph.Point) {
	ids := append([]string(nil), l.NodeIDs()...)
	depth := func(id string) int { return l.Nodes[id].ContainerDepth }
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && depth(ids[j]) < depth(ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	for _, id := range ids {
		n := l.Nodes[id]
		if n.Parent == "" {
			continue // primary element, already positioned from its abstract placement
		}
		parent := l.Nodes[n.Parent]
		offset := localPos[id]
		n.PosX = parent.PosX + offset.X
		n.PosY = parent.PosY + offset.Y
	}
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// depthOrder returns every container id ordered by decreasing containment
// depth, so the deepest containers grow (and get their final size) before
// the containers that hold them (spec §4.7 "bottom-up by depth").
func depthOrder(l *graph.Layout) []string {
	ids := append([]string(nil), l.NodeIDs()...)
	depth := func(id string) int { return l.Nodes[id].ContainerDepth }
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && depth(ids[j]) > depth(ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

// growContainer arranges id's direct children in a grid and sizes the
// container to their measured bounding box plus header and padding (spec
// §4.7 steps 1-4), recording each child's parent-relative offset into
// localPos; resolveGlobalPositions converts those into global coordinates
// once every container in the tree has its final size (step 5). A second
// measurement pass (measurePlacedContent) re-measures every placed child's
// icon and label box; any delta it finds widens the container and is
// absorbed without re-running the grid.
func growContainer(l *graph.Layout, id string, cfg config.Config, ruler *textmeasure.Ruler, localPos map[string]graph.Point) {
	children := l.Children[id]
	n := len(children)
	if n == 0 {
		return
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))

	colWidth := make([]float64, cols)
	rowHeight := make([]float64, rows)
	for i, childID := range children {
		c := l.Nodes[childID]
		r, cc := i/cols, i%cols
		if c.Width > colWidth[cc] {
			colWidth[cc] = c.Width
		}
		if c.Height > rowHeight[r] {
			rowHeight[r] = c.Height
		}
	}

	const cellGapX, cellGapY = 30.0, 30.0
	colX := make([]float64, cols)
	for c := 1; c < cols; c++ {
		colX[c] = colX[c-1] + colWidth[c-1] + cellGapX
	}
	rowY := make([]float64, rows)
	for r := 1; r < rows; r++ {
		rowY[r] = rowY[r-1] + rowHeight[r-1] + cellGapY
	}

	padding := cfg.IconWidth / cfg.ContainerPaddingDivisor
	header := math.Max(cfg.IconHeight, cfg.LabelLineHeight)

	localX := make(map[string]float64, n)
	localY := make(map[string]float64, n)
	maxRight, maxBottom := 0.0, 0.0
	for i, childID := range children {
		c := l.Nodes[childID]
		r, cc := i/cols, i%cols
		x := padding + colX[cc]
		y := padding + header + rowY[r]
		localX[childID] = x
		localY[childID] = y

		labelW, labelH := ruler.Measure(c.Label)
		right := x + math.Max(c.Width, labelW)
		bottom := y + c.Height + labelH
		if right > maxRight {
			maxRight = right
		}
		if bottom > maxBottom {
			maxBottom = bottom
		}
	}

	box := measurePlacedContent(l, children, localX, localY, ruler)
	if box.right > maxRight {
		maxRight = box.right
	}
	if box.bottom > maxBottom {
		maxBottom = box.bottom
	}

	n2 := l.Nodes[id]
	n2.Width = maxRight + padding
	n2.Height = maxBottom + padding

	for _, childID := range children {
		localPos[childID] = graph.Point{X: localX[childID], Y: localY[childID]}
	}
}

type bbox struct{ right, bottom float64 }

// measurePlacedContent re-measures a container's children now that their
// labels are known, satisfying invariant I3 (the grown box must actually
// contain every child icon and label) without a second grid pass.
func measurePlacedContent(l *graph.Layout, children []string, localX, localY map[string]float64, ruler *textmeasure.Ruler) bbox {
	var b bbox
	for _, childID := range children {
		c := l.Nodes[childID]
		labelW, labelH := ruler.Measure(c.Label)
		right := localX[childID] + math.Max(c.Width, labelW)
		bottom := localY[childID] + c.Height + labelH
		if right > b.right {
			b.right = right
		}
		if bottom > b.bottom {
			b.bottom = bottom
		}
	}
	return b
}

// placeLabel tentatively positions id's label centred below its icon with
// middle/top anchors (spec §4.7 "Labels ... are tentatively placed
// immediately below the icon"); Redistribute moves it by the same offset
// as the node.
func placeLabel(l *graph.Layout, id string, cfg config.Config, ruler *textmeasure.Ruler) {
	n := l.Nodes[id]
	if n.Label == "" {
		return
	}
	_, labelH := ruler.Measure(n.Label)
	l.LabelPositions[id] = graph.LabelPos{
		X:          n.PosX + n.Width/2,
		Y:          n.PosY + n.Height + labelH/4,
		HAnchor:    graph.AnchorMiddle,
		VAnchor:    graph.AnchorTop,
		// the label sits on the canvas below the icon, not over the node's
		// own fill, so legibility is judged against the canvas background.
		TextColour: colorutil.ReadableLabelColour(canvasBackground),
	}
}

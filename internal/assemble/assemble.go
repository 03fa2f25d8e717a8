// Package assemble implements the Assembler (G): render-list ordering,
// the shared label-glow filter descriptor, per-drawable trace ids, and the
// final canvas recomputation (spec §4.10). The "drawable" inheritance
// hierarchy from the distilled design becomes a tagged struct here instead
// of a type hierarchy (design note, spec §9).
package assemble

import (
	"fmt"
	"sort"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/colorutil"
	"github.com/ndlayout/engine/internal/textmeasure"
)

// canvasBackground mirrors internal/inflate's label-placement background:
// every label in the render list sits on the canvas, not over a node's own
// fill, so legibility is judged against this colour.
const canvasBackground = "#ffffff"

// Kind is the closed set of renderable categories a Drawable may be.
type Kind string

const (
	KindContainer Kind = "container"
	KindIcon      Kind = "icon"
	KindEdge      Kind = "edge"
	KindLabel     Kind = "label"
)

// Drawable is one entry of the Assembler's render list. Container and icon
// Drawables set Node, edge Drawables set Edge; a label Drawable sets neither
// and instead carries in Owner the id of the node or edge it labels so the
// caller can look up its LabelPos in graph.Layout.
type Drawable struct {
	Kind       Kind
	Node       *graph.Node
	Edge       *graph.Edge
	Owner      string // node id or "from->to" edge key, for Kind == KindLabel
	Trace      string // NdFn-style round-trip/debug identifier
	TextColour string // Kind == KindLabel only: legible colour for the label's text
}

// Filter is the single shared label-glow filter every label Drawable
// references (spec §4.10: "a single text-glow filter descriptor").
type Filter struct {
	ID           string
	StdDeviation float64
}

// Assemble runs stage G: builds the ordered render list, the shared glow
// filter, and recomputes l.Canvas over every drawable's bounding box
// (including label boxes) plus cfg.CanvasMargin.
func Assemble(l *graph.Layout, cfg config.Config, ruler *textmeasure.Ruler) ([]Drawable, Filter) {
	if ruler == nil {
		ruler = textmeasure.New(cfg.LabelCharWidth, cfg.LabelLineHeight)
	}

	var list []Drawable
	list = append(list, containerDrawables(l)...)
	list = append(list, iconDrawables(l)...)
	list = append(list, edgeDrawables(l)...)
	list = append(list, labelDrawables(l)...)

	filter := Filter{ID: "label-glow", StdDeviation: 2}

	recomputeCanvas(l, cfg, list, ruler)

	return list, filter
}

// containerDrawables orders containers by ascending containment depth
// (root-most first), so each child container paints over its parent.
func containerDrawables(l *graph.Layout) []Drawable {
	var containers []string
	for _, id := range l.NodeIDs() {
		if len(l.Children[id]) > 0 {
			containers = append(containers, id)
		}
	}
	sort.SliceStable(containers, func(i, j int) bool {
		return l.Nodes[containers[i]].ContainerDepth < l.Nodes[containers[j]].ContainerDepth
	})

	out := make([]Drawable, 0, len(containers))
	for _, id := range containers {
		out = append(out, Drawable{Kind: KindContainer, Node: l.Nodes[id], Trace: trace(KindContainer, id)})
	}
	return out
}

func iconDrawables(l *graph.Layout) []Drawable {
	var out []Drawable
	for _, id := range l.NodeIDs() {
		if len(l.Children[id]) > 0 {
			continue
		}
		out = append(out, Drawable{Kind: KindIcon, Node: l.Nodes[id], Trace: trace(KindIcon, id)})
	}
	return out
}

func edgeDrawables(l *graph.Layout) []Drawable {
	var out []Drawable
	for _, e := range l.Edges {
		if e.Dropped {
			continue
		}
		out = append(out, Drawable{Kind: KindEdge, Edge: e, Trace: trace(KindEdge, edgeKey(e))})
	}
	return out
}

func labelDrawables(l *graph.Layout) []Drawable {
	textColour := colorutil.ReadableLabelColour(canvasBackground)

	var out []Drawable
	for _, id := range l.NodeIDs() {
		if l.Nodes[id].Label == "" {
			continue
		}
		out = append(out, Drawable{Kind: KindLabel, Owner: id, Trace: trace(KindLabel, id), TextColour: textColour})
	}
	for _, e := range l.Edges {
		if e.Dropped || e.Label == "" {
			continue
		}
		key := edgeKey(e)
		out = append(out, Drawable{Kind: KindLabel, Owner: key, Trace: trace(KindLabel, key), TextColour: textColour})
	}
	return out
}

func edgeKey(e *graph.Edge) string {
	return fmt.Sprintf("%s->%s", e.From, e.To)
}

func trace(k Kind, id string) string {
	return fmt.Sprintf("ndfn:%s:%s", k, id)
}

func recomputeCanvas(l *graph.Layout, cfg config.Config, list []Drawable, ruler *textmeasure.Ruler) {
	maxX, maxY := 0.0, 0.0
	grow := func(x, y float64) {
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}

	for _, d := range list {
		switch d.Kind {
		case KindContainer, KindIcon:
			grow(d.Node.PosX+d.Node.Width, d.Node.PosY+d.Node.Height)
		case KindEdge:
			for _, p := range d.Edge.Path.Points {
				grow(p.X, p.Y)
			}
			grow(d.Edge.Path.ArcCenter.X+d.Edge.Path.ArcRadius, d.Edge.Path.ArcCenter.Y+d.Edge.Path.ArcRadius)
		case KindLabel:
			pos, ok := l.LabelPositions[d.Owner]
			if !ok {
				continue
			}
			label := labelText(l, d.Owner)
			w, h := ruler.Measure(label)
			grow(pos.X+w/2, pos.Y+h)
		}
	}

	l.Canvas = graph.Canvas{Width: maxX + cfg.CanvasMargin, Height: maxY + cfg.CanvasMargin}
}

func labelText(l *graph.Layout, owner string) string {
	if n, ok := l.Nodes[owner]; ok {
		return n.Label
	}
	for _, e := range l.Edges {
		if edgeKey(e) == owner {
			return e.Label
		}
	}
	return ""
}

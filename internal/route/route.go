// Package route implements the Edge Router (E): five routing kinds over
// stable pixel coordinates, plus container boundary attachment (spec
// §4.9). Grounded on godagre's edge_routing.go (boundary intersection,
// orthogonal corner handling), generalised to the spec's five-kind
// selection instead of dagre's single polyline-per-edge model.
package route

import (
	"math"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
)

const (
	straightOffsetCloud   = 35.0
	straightOffsetDefault = 30.0
	selfLoopOffset        = 20.0
)

// Route runs stage E over every non-dropped edge. A route with a point more
// than cfg.CanvasSafetyMargin outside the canvas is recorded as a
// CanvasOverflow diagnostic so the Assembler can grow the canvas to fit;
// points inside the canvas but nearer its edge than that are not flagged.
func Route(l *graph.Layout, cfg config.Config) {
	for _, e := range l.Edges {
		if e.Dropped {
			continue
		}
		from := resolveAttachment(l, e.From, e.To)
		to := resolveAttachment(l, e.To, e.From)
		if from == nil || to == nil {
			continue
		}

		switch e.Routing.Kind {
		case graph.RouteOrthogonal:
			routeOrthogonal(e, from, to)
		case graph.RouteBezier:
			routeBezier(e, from, to)
		case graph.RouteArc:
			routeArc(e, from, to)
		case graph.RouteManual:
			routeManual(e, from, to)
		default:
			routeStraight(e, from, to)
		}

		checkCanvasOverflow(l, e, cfg)
	}
}

// resolveAttachment walks id's containment chain outward, stopping at the
// last ancestor that is still outside other's own containment chain (spec
// §4.9 "Container boundary attachment").
func resolveAttachment(l *graph.Layout, id, other string) *graph.Node {
	n, ok := l.Nodes[id]
	if !ok {
		return nil
	}
	cur := id
	for {
		parent := l.Parent[cur]
		if parent == "" {
			break
		}
		if inChain(l, parent, other) {
			break
		}
		cur = parent
	}
	if cur != id {
		n = l.Nodes[cur]
	}
	return n
}

func inChain(l *graph.Layout, candidate, id string) bool {
	for cur := id; cur != ""; cur = l.Parent[cur] {
		if cur == candidate {
			return true
		}
	}
	return false
}

func center(n *graph.Node) graph.Point {
	return graph.Point{X: n.PosX + n.Width/2, Y: n.PosY + n.Height/2}
}

// boundaryPoint finds where the ray from n's centre toward `towards` exits
// n's shape: an ellipse for cloud-kind nodes, a rectangle otherwise.
func boundaryPoint(n *graph.Node, towards graph.Point) graph.Point {
	c := center(n)
	dx, dy := towards.X-c.X, towards.Y-c.Y
	if dx == 0 && dy == 0 {
		return c
	}

	if n.Kind == graph.KindCloud {
		a, b := n.Width/2, n.Height/2
		denom := math.Sqrt((dx*dx)/(a*a) + (dy*dy)/(b*b))
		t := 1 / denom
		return graph.Point{X: c.X + dx*t, Y: c.Y + dy*t}
	}

	hw, hh := n.Width/2, n.Height/2
	t := math.Inf(1)
	if dx != 0 {
		t = hw / math.Abs(dx)
	}
	if dy != 0 {
		if ty := hh / math.Abs(dy); ty < t {
			t = ty
		}
	}
	return graph.Point{X: c.X + dx*t, Y: c.Y + dy*t}
}

func straightOffset(n *graph.Node) float64 {
	if n.Kind == graph.KindCloud {
		return straightOffsetCloud
	}
	return straightOffsetDefault
}

// insetOutward pulls a boundary point `offset` pixels further away from n's
// centre, along the line toward the other endpoint, stopping the drawn
// segment short of the shape's true edge so an end marker has room to sit
// in the gap without overlapping n.
func insetOutward(n *graph.Node, boundary, towards graph.Point) graph.Point {
	dx, dy := towards.X-boundary.X, towards.Y-boundary.Y
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return boundary
	}
	offset := straightOffset(n)
	ux, uy := dx/norm, dy/norm
	return graph.Point{X: boundary.X + ux*offset, Y: boundary.Y + uy*offset}
}

func routeStraight(e *graph.Edge, from, to *graph.Node) {
	cf, ct := center(from), center(to)
	bf := boundaryPoint(from, ct)
	bt := boundaryPoint(to, cf)
	pf := insetOutward(from, bf, ct)
	pt := insetOutward(to, bt, cf)
	e.Path = graph.Path{Shape: graph.ShapeLine, Points: []graph.Point{pf, pt}}
}

func routeOrthogonal(e *graph.Edge, from, to *graph.Node) {
	cf, ct := center(from), center(to)
	pf := boundaryPoint(from, ct)
	pt := boundaryPoint(to, cf)

	dx, dy := pt.X-pf.X, pt.Y-pf.Y
	var horizontalFirst, verticalFirst bool
	switch e.Routing.Preference {
	case graph.OrientationHorizontal:
		horizontalFirst = true
	case graph.OrientationVertical:
		verticalFirst = true
	default:
		horizontalFirst = math.Abs(dx) > math.Abs(dy)
		verticalFirst = !horizontalFirst
	}

	var pts []graph.Point
	if horizontalFirst {
		midX := pf.X + dx/2
		pts = []graph.Point{pf, {X: midX, Y: pf.Y}, {X: midX, Y: pt.Y}, pt}
	} else if verticalFirst {
		midY := pf.Y + dy/2
		pts = []graph.Point{pf, {X: pf.X, Y: midY}, {X: pt.X, Y: midY}, pt}
	}

	pts = eliminateCollinear(pts)
	radius := e.Routing.CornerRadius
	if radius > 0 {
		radius = clampCornerRadius(pts, radius)
	}
	e.Path = graph.Path{Shape: graph.ShapePoly, Points: pts, CornerRadius: radius}
}

func eliminateCollinear(pts []graph.Point) []graph.Point {
	if len(pts) < 3 {
		return pts
	}
	out := []graph.Point{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		prev, cur, next := out[len(out)-1], pts[i], pts[i+1]
		if isCollinear(prev, cur, next) {
			continue
		}
		out = append(out, cur)
	}
	out = append(out, pts[len(pts)-1])
	return out
}

func isCollinear(a, b, c graph.Point) bool {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	return math.Abs(cross) < 1e-6
}

// clampCornerRadius bounds the requested corner radius to the smallest
// half-segment length along the polyline, preventing a corner's arc from
// overlapping its own neighbour (spec §4.9).
func clampCornerRadius(pts []graph.Point, radius float64) float64 {
	min := radius
	for i := 0; i+1 < len(pts); i++ {
		seg := math.Hypot(pts[i+1].X-pts[i].X, pts[i+1].Y-pts[i].Y)
		if half := seg / 2; half < min {
			min = half
		}
	}
	return min
}

func routeBezier(e *graph.Edge, from, to *graph.Node) {
	cf, ct := center(from), center(to)
	pf := boundaryPoint(from, ct)
	pt := boundaryPoint(to, cf)

	dx, dy := pt.X-pf.X, pt.Y-pf.Y
	chord := math.Hypot(dx, dy)
	var nx, ny float64
	if chord > 0 {
		nx, ny = -dy/chord, dx/chord
	}
	offset := e.Routing.Curvature * chord / 2

	c1 := graph.Point{X: pf.X + dx/3 + nx*offset, Y: pf.Y + dy/3 + ny*offset}
	c2 := graph.Point{X: pf.X + 2*dx/3 + nx*offset, Y: pf.Y + 2*dy/3 + ny*offset}

	e.Path = graph.Path{
		Shape:         graph.ShapeBezier,
		Points:        []graph.Point{pf, pt},
		ControlPoints: []graph.Point{c1, c2},
	}
}

func routeArc(e *graph.Edge, from, to *graph.Node) {
	radius := e.Routing.Radius
	if radius <= 0 {
		radius = from.Width / 2
	}
	side := e.Routing.Side
	if side == "" {
		side = graph.SideTop
	}

	if e.From == e.To {
		routeSelfLoop(e, from, radius, side)
		return
	}

	cf, ct := center(from), center(to)
	pf := boundaryPoint(from, ct)
	pt := boundaryPoint(to, cf)
	chord := math.Hypot(pt.X-pf.X, pt.Y-pf.Y)

	mid := graph.Point{X: (pf.X + pt.X) / 2, Y: (pf.Y + pt.Y) / 2}
	dx, dy := pt.X-pf.X, pt.Y-pf.Y
	var nx, ny float64
	if chord > 0 {
		nx, ny = -dy/chord, dx/chord
	}
	h := math.Sqrt(math.Max(radius*radius-(chord/2)*(chord/2), 0))
	centre := graph.Point{X: mid.X + nx*h, Y: mid.Y + ny*h}

	e.Path = graph.Path{
		Shape:        graph.ShapeArc,
		Points:       []graph.Point{pf, pt},
		ArcCenter:    centre,
		ArcRadius:    radius,
		LargeArcFlag: chord < 2*radius,
	}
}

func routeSelfLoop(e *graph.Edge, n *graph.Node, radius float64, side graph.Side) {
	c := center(n)
	var dirX, dirY float64
	switch side {
	case graph.SideBottom:
		dirX, dirY = 0, 1
	case graph.SideLeft:
		dirX, dirY = -1, 0
	case graph.SideRight:
		dirX, dirY = 1, 0
	default:
		dirX, dirY = 0, -1
	}
	// perpendicular to the chosen side, used to spread the two loop anchors
	perpX, perpY := -dirY, dirX

	var radialExtent float64
	switch side {
	case graph.SideLeft, graph.SideRight:
		radialExtent = n.Width / 2
	default:
		radialExtent = n.Height / 2
	}
	anchorCentre := graph.Point{X: c.X + dirX*radialExtent, Y: c.Y + dirY*radialExtent}
	p1 := graph.Point{X: anchorCentre.X + perpX*selfLoopOffset, Y: anchorCentre.Y + perpY*selfLoopOffset}
	p2 := graph.Point{X: anchorCentre.X - perpX*selfLoopOffset, Y: anchorCentre.Y - perpY*selfLoopOffset}
	chord := math.Hypot(p2.X-p1.X, p2.Y-p1.Y)

	arcCentre := graph.Point{X: anchorCentre.X + dirX*radius, Y: anchorCentre.Y + dirY*radius}

	e.Path = graph.Path{
		Shape:        graph.ShapeArc,
		Points:       []graph.Point{p1, p2},
		ArcCenter:    arcCentre,
		ArcRadius:    radius,
		LargeArcFlag: chord < 2*radius,
	}
}

// routeManual prepends the source attachment and appends the target
// attachment to the caller-declared waypoints, never otherwise altering
// them (invariant I6).
func routeManual(e *graph.Edge, from, to *graph.Node) {
	cf, ct := center(from), center(to)
	var towardsFirst, towardsLast graph.Point
	if len(e.Routing.Waypoints) > 0 {
		towardsFirst = e.Routing.Waypoints[0]
		towardsLast = e.Routing.Waypoints[len(e.Routing.Waypoints)-1]
	} else {
		towardsFirst, towardsLast = ct, cf
	}
	pf := boundaryPoint(from, towardsFirst)
	pt := boundaryPoint(to, towardsLast)

	pts := make([]graph.Point, 0, len(e.Routing.Waypoints)+2)
	pts = append(pts, pf)
	pts = append(pts, e.Routing.Waypoints...)
	pts = append(pts, pt)
	e.Path = graph.Path{Shape: graph.ShapePoly, Points: pts}
}

func checkCanvasOverflow(l *graph.Layout, e *graph.Edge, cfg config.Config) {
	for _, p := range allPathPoints(e.Path) {
		if p.X < -cfg.CanvasSafetyMargin || p.Y < -cfg.CanvasSafetyMargin ||
			p.X > l.Canvas.Width+cfg.CanvasSafetyMargin || p.Y > l.Canvas.Height+cfg.CanvasSafetyMargin {
			l.Diagnostics = append(l.Diagnostics, graph.Diagnostic{
				Kind: "canvas_overflow", Stage: "route",
				IDs: []string{e.From, e.To}, Message: "routed edge extends beyond the canvas safety margin",
			})
			return
		}
	}
}

func allPathPoints(p graph.Path) []graph.Point {
	pts := append([]graph.Point(nil), p.Points...)
	pts = append(pts, p.ControlPoints...)
	if p.Shape == graph.ShapeArc {
		pts = append(pts, p.ArcCenter)
	}
	return pts
}

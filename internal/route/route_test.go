package route_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/route"
)

func node(id string, x, y, w, h float64) *graph.Node {
	return &graph.Node{ID: id, PosX: x, PosY: y, Width: w, Height: h}
}

func buildLayout(t *testing.T, nodes []*graph.Node, edges []*graph.Edge) *graph.Layout {
	t.Helper()
	l, err := graph.New(nodes, edges, nil, graph.Canvas{Width: 1400, Height: 900})
	assert.NoError(t, err)
	for _, n := range nodes {
		l.Nodes[n.ID].PosX, l.Nodes[n.ID].PosY = n.PosX, n.PosY
		l.Nodes[n.ID].Width, l.Nodes[n.ID].Height = n.Width, n.Height
	}
	return l
}

func TestStraightRouteEndsOutsideBothShapes(t *testing.T) {
	l := buildLayout(t,
		[]*graph.Node{node("a", 0, 0, 80, 50), node("b", 300, 0, 80, 50)},
		[]*graph.Edge{{From: "a", To: "b", Routing: graph.Routing{Kind: graph.RouteStraight}}},
	)
	route.Route(l, config.Default())

	p := l.Edges[0].Path
	assert.Equal(t, graph.ShapeLine, p.Shape)
	assert.Len(t, p.Points, 2)
	// a spans x in [0, 80]; the inset pushes the start past a's right edge,
	// into the gap between the two shapes, leaving room for an end marker.
	assert.Greater(t, p.Points[0].X, 80.0)
	assert.Less(t, p.Points[1].X, 300.0)
}

func TestOrthogonalRouteBuildsHVPolyline(t *testing.T) {
	l := buildLayout(t,
		[]*graph.Node{node("a", 0, 0, 80, 50), node("b", 400, 0, 80, 50)},
		[]*graph.Edge{{From: "a", To: "b", Routing: graph.Routing{Kind: graph.RouteOrthogonal}}},
	)
	route.Route(l, config.Default())

	p := l.Edges[0].Path
	assert.Equal(t, graph.ShapePoly, p.Shape)
	assert.GreaterOrEqual(t, len(p.Points), 2)
}

func TestManualRoutePreservesWaypoints(t *testing.T) {
	wp := []graph.Point{{X: 100, Y: 200}, {X: 150, Y: 250}}
	l := buildLayout(t,
		[]*graph.Node{node("a", 0, 0, 80, 50), node("b", 400, 0, 80, 50)},
		[]*graph.Edge{{From: "a", To: "b", Routing: graph.Routing{Kind: graph.RouteManual, Waypoints: wp}}},
	)
	route.Route(l, config.Default())

	p := l.Edges[0].Path
	assert.Equal(t, wp[0], p.Points[1])
	assert.Equal(t, wp[1], p.Points[2])
}

func TestSelfLoopProducesArcWithLargeArcFlag(t *testing.T) {
	l := buildLayout(t,
		[]*graph.Node{node("a", 0, 0, 80, 50)},
		[]*graph.Edge{{From: "a", To: "a", Routing: graph.Routing{Kind: graph.RouteArc}}},
	)
	route.Route(l, config.Default())

	p := l.Edges[0].Path
	assert.Equal(t, graph.ShapeArc, p.Shape)
	assert.Greater(t, p.ArcRadius, 0.0)
	assert.True(t, p.LargeArcFlag)
}

func TestSelfLoopOnLeftSideAnchorsToLeftEdge(t *testing.T) {
	l := buildLayout(t,
		[]*graph.Node{node("a", 0, 0, 80, 50)},
		[]*graph.Edge{{From: "a", To: "a", Routing: graph.Routing{Kind: graph.RouteArc, Side: graph.SideLeft}}},
	)
	route.Route(l, config.Default())

	p := l.Edges[0].Path
	assert.Equal(t, graph.ShapeArc, p.Shape)
	// a spans x in [0, 80], y in [0, 50]; a left-side loop must anchor at
	// x=0 (the left edge), not partway up a vertical edge derived from the
	// wrong dimension (height instead of width).
	assert.InDelta(t, 0.0, p.Points[0].X, 1e-6)
	assert.InDelta(t, 0.0, p.Points[1].X, 1e-6)
}

func TestContainerBoundaryAttachmentEscapesToOutermostAncestor(t *testing.T) {
	l := buildLayout(t,
		[]*graph.Node{
			node("outer", 0, 0, 200, 200),
			node("inner", 20, 20, 80, 50),
			node("other", 400, 0, 80, 50),
		},
		[]*graph.Edge{{From: "inner", To: "other", Routing: graph.Routing{Kind: graph.RouteStraight}}},
	)
	l.Nodes["outer"].Contains = []graph.ChildRef{{ID: "inner"}}
	l.Parent["inner"] = "outer"
	l.Children["outer"] = []string{"inner"}

	route.Route(l, config.Default())
	p := l.Edges[0].Path
	// the attachment point must sit on outer's boundary, i.e. near x=200
	// (outer's right edge), not inner's (x=100).
	assert.Greater(t, p.Points[0].X, 150.0)
}

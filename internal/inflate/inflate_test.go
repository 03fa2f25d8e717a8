package inflate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/abstractplace"
	"github.com/ndlayout/engine/internal/inflate"
	"github.com/ndlayout/engine/internal/structure"
	"github.com/ndlayout/engine/internal/textmeasure"
)

func runUpTo(t *testing.T, nodes []*graph.Node, edges []*graph.Edge) *graph.Layout {
	t.Helper()
	l, err := graph.New(nodes, edges, nil, graph.Canvas{Width: 1400, Height: 900})
	assert.NoError(t, err)
	cfg := config.Default()
	assert.NoError(t, structure.Analyse(l, cfg))
	abstractplace.Place(l, cfg)
	abstractplace.Optimise(l, cfg)
	abstractplace.Expand(l, cfg)
	return l
}

func TestInflateAssignsPixelPositionsToPrimaryNodes(t *testing.T) {
	l := runUpTo(t,
		[]*graph.Node{{ID: "a"}, {ID: "b"}},
		[]*graph.Edge{{From: "a", To: "b"}},
	)
	cfg := config.Default()
	inflate.Inflate(l, cfg, textmeasure.New(cfg.LabelCharWidth, cfg.LabelLineHeight))

	assert.NotEqual(t, l.Nodes["a"].PosY, l.Nodes["b"].PosY)
	assert.Equal(t, cfg.IconWidth, l.Nodes["a"].Width)
	assert.Equal(t, cfg.IconHeight, l.Nodes["a"].Height)
}

func TestPlaceLabelChoosesAReadableTextColour(t *testing.T) {
	l := runUpTo(t, []*graph.Node{{ID: "a", Label: "A"}}, nil)
	cfg := config.Default()
	inflate.Inflate(l, cfg, textmeasure.New(cfg.LabelCharWidth, cfg.LabelLineHeight))

	pos, ok := l.LabelPositions["a"]
	assert.True(t, ok)
	assert.Equal(t, "#000000", pos.TextColour)
}

func TestGrowContainerSizesToChildren(t *testing.T) {
	l := runUpTo(t,
		[]*graph.Node{
			{ID: "box", Contains: []graph.ChildRef{{ID: "x"}, {ID: "y"}, {ID: "z"}}},
			{ID: "x"}, {ID: "y"}, {ID: "z"},
		},
		nil,
	)
	cfg := config.Default()
	inflate.Inflate(l, cfg, textmeasure.New(cfg.LabelCharWidth, cfg.LabelLineHeight))

	box := l.Nodes["box"]
	assert.Greater(t, box.Width, cfg.IconWidth)
	assert.Greater(t, box.Height, cfg.IconHeight)

	for _, id := range []string{"x", "y", "z"} {
		c := l.Nodes[id]
		assert.GreaterOrEqual(t, c.PosX, box.PosX)
		assert.GreaterOrEqual(t, c.PosY, box.PosY)
		assert.LessOrEqual(t, c.PosX+c.Width, box.PosX+box.Width+1)
	}
}

// TestGrowContainerPositionsGrandchildrenRelativeToOutermostAncestor nests
// a container inside a container (depth 2, spec §3/§4.7) and checks that the
// innermost leaf's global position actually falls inside both ancestors'
// grown boxes, not just the immediate parent's pre-grow (possibly stale)
// origin.
func TestGrowContainerPositionsGrandchildrenRelativeToOutermostAncestor(t *testing.T) {
	l := runUpTo(t,
		[]*graph.Node{
			{ID: "outer", Contains: []graph.ChildRef{{ID: "inner"}}},
			{ID: "inner", Contains: []graph.ChildRef{{ID: "leaf1"}, {ID: "leaf2"}, {ID: "leaf3"}}},
			{ID: "leaf1"}, {ID: "leaf2"}, {ID: "leaf3"},
		},
		nil,
	)
	cfg := config.Default()
	inflate.Inflate(l, cfg, textmeasure.New(cfg.LabelCharWidth, cfg.LabelLineHeight))

	outer, inner := l.Nodes["outer"], l.Nodes["inner"]
	assert.GreaterOrEqual(t, inner.PosX, outer.PosX)
	assert.GreaterOrEqual(t, inner.PosY, outer.PosY)
	assert.LessOrEqual(t, inner.PosX+inner.Width, outer.PosX+outer.Width+1)
	assert.LessOrEqual(t, inner.PosY+inner.Height, outer.PosY+outer.Height+1)

	for _, id := range []string{"leaf1", "leaf2", "leaf3"} {
		c := l.Nodes[id]
		assert.GreaterOrEqual(t, c.PosX, inner.PosX)
		assert.GreaterOrEqual(t, c.PosY, inner.PosY)
		assert.LessOrEqual(t, c.PosX+c.Width, inner.PosX+inner.Width+1)
		assert.LessOrEqual(t, c.PosY+c.Height, inner.PosY+inner.Height+1)
		// and transitively inside the outermost ancestor too
		assert.GreaterOrEqual(t, c.PosX, outer.PosX)
		assert.GreaterOrEqual(t, c.PosY, outer.PosY)
		assert.LessOrEqual(t, c.PosX+c.Width, outer.PosX+outer.Width+1)
		assert.LessOrEqual(t, c.PosY+c.Height, outer.PosY+outer.Height+1)
	}
}

func TestRedistributeEnforcesMinimumHorizontalGap(t *testing.T) {
	l := runUpTo(t,
		[]*graph.Node{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}},
		nil,
	)
	cfg := config.Default()
	inflate.Inflate(l, cfg, textmeasure.New(cfg.LabelCharWidth, cfg.LabelLineHeight))
	inflate.Redistribute(l, cfg)

	ids := []string{"p1", "p2", "p3"}
	type posNode struct {
		id string
		x  float64
	}
	var ordered []posNode
	for _, id := range ids {
		ordered = append(ordered, posNode{id, l.Nodes[id].PosX})
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].x < ordered[i].x {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	for i := 0; i+1 < len(ordered); i++ {
		a := l.Nodes[ordered[i].id]
		b := l.Nodes[ordered[i+1].id]
		gap := b.PosX - a.PosX
		assert.GreaterOrEqual(t, gap, a.Width/2+b.Width/2+cfg.MinHorizontalGap-1e-6)
	}
}

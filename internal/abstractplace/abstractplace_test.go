package abstractplace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/abstractplace"
	"github.com/ndlayout/engine/internal/structure"
)

func buildLayout(t *testing.T, nodes []*graph.Node, edges []*graph.Edge) *graph.Layout {
	t.Helper()
	l, err := graph.New(nodes, edges, nil, graph.Canvas{Width: 1400, Height: 900})
	assert.NoError(t, err)
	assert.NoError(t, structure.Analyse(l, config.Default()))
	return l
}

func TestPlaceAssignsOnePositionPerRepresentative(t *testing.T) {
	l := buildLayout(t,
		[]*graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]*graph.Edge{{From: "a", To: "b"}, {From: "a", To: "c"}},
	)
	cfg := config.Default()
	abstractplace.Place(l, cfg)

	assert.Len(t, l.AbstractPositions, len(l.Condensation.Representatives))
	for _, rep := range l.Condensation.Representatives {
		_, ok := l.AbstractPositions[rep.ID]
		assert.True(t, ok)
	}
}

func TestOptimiseKeepsLayerYFixed(t *testing.T) {
	l := buildLayout(t,
		[]*graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
		[]*graph.Edge{
			{From: "a", To: "c"},
			{From: "b", To: "c"},
			{From: "b", To: "d"},
		},
	)
	cfg := config.Default()
	abstractplace.Place(l, cfg)

	before := make(map[string]float64, len(l.AbstractPositions))
	for id, p := range l.AbstractPositions {
		before[id] = p.Y
	}

	abstractplace.Optimise(l, cfg)

	for id, y := range before {
		assert.Equal(t, y, l.AbstractPositions[id].Y, "optimiser must not change layer assignment for %s", id)
	}
}

func TestExpandReplacesVCWithMembers(t *testing.T) {
	nodes := []*graph.Node{{ID: "pivotA"}, {ID: "pivotB"}}
	var edges []*graph.Edge
	for i := 1; i <= 5; i++ {
		id := "s" + string(rune('0'+i))
		nodes = append(nodes, &graph.Node{ID: id})
		edges = append(edges,
			&graph.Edge{From: "pivotA", To: id},
			&graph.Edge{From: id, To: "pivotB"},
		)
	}
	l := buildLayout(t, nodes, edges)
	cfg := config.Default()

	abstractplace.Place(l, cfg)
	abstractplace.Optimise(l, cfg)
	abstractplace.Expand(l, cfg)

	for i := 1; i <= 5; i++ {
		id := "s" + string(rune('0'+i))
		_, ok := l.AbstractPositions[id]
		assert.True(t, ok, "expanded position missing for %s", id)
	}
	for _, rep := range l.Condensation.Representatives {
		if rep.IsVC {
			_, ok := l.AbstractPositions[rep.ID]
			assert.False(t, ok, "synthetic VC id %s must not survive expansion", rep.ID)
		}
	}

	levels := abstractplace.Levels(l)
	assert.NotEmpty(t, levels)
}

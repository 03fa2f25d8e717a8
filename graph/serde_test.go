package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndlayout/engine/graph"
)

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	l, err := graph.New(
		[]*graph.Node{
			{ID: "a", Kind: graph.KindServer},
			{ID: "b", Kind: graph.KindDatabase},
		},
		[]*graph.Edge{
			{From: "a", To: "b", Direction: graph.DirForward},
		},
		nil,
		graph.Canvas{Width: 1400, Height: 900},
	)
	assert.NoError(t, err)

	l.Parent["a"] = ""
	l.Parent["b"] = ""
	l.PrimaryElements = []string{"a", "b"}
	l.Out["a"] = []string{"b"}
	l.In["b"] = []string{"a"}

	b, err := graph.SerializeLayout(l)
	assert.NoError(t, err)

	var round graph.Layout
	assert.NoError(t, graph.DeserializeLayout(b, &round))

	assert.Equal(t, 2, len(round.Nodes))
	assert.Equal(t, []string{"a", "b"}, round.NodeOrder)
	assert.Equal(t, 1, len(round.Edges))
	assert.Equal(t, "a", round.Edges[0].From)
	assert.Equal(t, "b", round.Edges[0].To)
	assert.Equal(t, []string{"a", "b"}, round.PrimaryElements)
}

func TestDuplicateNodeIDIsFatal(t *testing.T) {
	t.Parallel()

	_, err := graph.New(
		[]*graph.Node{
			{ID: "a"},
			{ID: "a"},
		},
		nil, nil, graph.Canvas{},
	)
	assert.Error(t, err)
}

func TestResolveKindFallsBackToUnknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, graph.KindServer, graph.ResolveKind("server"))
	assert.Equal(t, graph.KindUnknown, graph.ResolveKind("banana"))
}

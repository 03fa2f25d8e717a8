package assemble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/assemble"
)

func TestAssembleOrdersContainersBeforeIconsBeforeEdgesBeforeLabels(t *testing.T) {
	l, err := graph.New(
		[]*graph.Node{
			{ID: "box", Label: "Box", Contains: []graph.ChildRef{{ID: "child"}}},
			{ID: "child", Label: "Child"},
			{ID: "other", Label: "Other"},
		},
		[]*graph.Edge{{From: "child", To: "other", Label: "e1"}},
		nil, graph.Canvas{Width: 1400, Height: 900},
	)
	assert.NoError(t, err)
	l.Parent["child"] = "box"
	l.Children["box"] = []string{"child"}
	l.Nodes["box"].Width, l.Nodes["box"].Height = 300, 300
	l.Nodes["child"].Width, l.Nodes["child"].Height = 80, 50
	l.Nodes["other"].Width, l.Nodes["other"].Height = 80, 50
	l.LabelPositions["box"] = graph.LabelPos{X: 10, Y: 10}
	l.LabelPositions["child"] = graph.LabelPos{X: 20, Y: 20}
	l.LabelPositions["other"] = graph.LabelPos{X: 400, Y: 20}
	l.LabelPositions["child->other"] = graph.LabelPos{X: 200, Y: 40}

	cfg := config.Default()
	list, filter := assemble.Assemble(l, cfg, nil)

	assert.Equal(t, 2.0, filter.StdDeviation)

	var order []assemble.Kind
	for _, d := range list {
		order = append(order, d.Kind)
	}

	lastContainer, firstIcon, lastEdge, firstLabel := -1, len(order), -1, len(order)
	for i, k := range order {
		switch k {
		case assemble.KindContainer:
			lastContainer = i
		case assemble.KindIcon:
			if i < firstIcon {
				firstIcon = i
			}
		case assemble.KindEdge:
			lastEdge = i
		case assemble.KindLabel:
			if i < firstLabel {
				firstLabel = i
			}
		}
	}
	assert.Less(t, lastContainer, firstIcon)
	assert.Less(t, lastEdge, firstLabel)
	assert.Greater(t, l.Canvas.Width, 0.0)
	assert.Greater(t, l.Canvas.Height, 0.0)
}

func TestLabelDrawablesCarryAReadableTextColour(t *testing.T) {
	l, err := graph.New(
		[]*graph.Node{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
		[]*graph.Edge{{From: "a", To: "b", Label: "e1"}},
		nil, graph.Canvas{Width: 1400, Height: 900},
	)
	assert.NoError(t, err)
	l.Nodes["a"].Width, l.Nodes["a"].Height = 80, 50
	l.Nodes["b"].Width, l.Nodes["b"].Height = 80, 50
	l.LabelPositions["a"] = graph.LabelPos{X: 10, Y: 10}
	l.LabelPositions["b"] = graph.LabelPos{X: 400, Y: 10}

	list, _ := assemble.Assemble(l, config.Default(), nil)

	var sawNodeLabel, sawEdgeLabel bool
	for _, d := range list {
		if d.Kind != assemble.KindLabel {
			continue
		}
		assert.NotEmpty(t, d.TextColour)
		if d.Owner == "a->b" {
			sawEdgeLabel = true
		} else {
			sawNodeLabel = true
		}
	}
	assert.True(t, sawNodeLabel)
	assert.True(t, sawEdgeLabel)
}

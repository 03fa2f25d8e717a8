package main

import (
	"encoding/json"
	"fmt"

	"github.com/ndlayout/engine/graph"
)

// document is the wire shape layoutctl accepts: a plain JSON rendering of
// spec.md §3's input model and §6's external interface. The core package
// never sees this type; decode here is the frontend's job alone.
type document struct {
	Canvas      *graph.Canvas     `json:"canvas"`
	Icons       map[string]string `json:"icons"`
	Elements    []wireNode        `json:"elements"`
	Connections []wireEdge        `json:"connections"`
}

// wireChildRef is a single entry of a node's `contains` array. Spec §6 lets
// that array hold either bare id strings or `{id, scope?}` objects, so it
// gets a custom unmarshaler rather than a plain json tag set.
type wireChildRef struct {
	ID    string
	Scope string
}

func (c *wireChildRef) UnmarshalJSON(raw []byte) error {
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		c.ID = bare
		return nil
	}
	var obj struct {
		ID    string `json:"id"`
		Scope string `json:"scope"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("contains entry must be a string or {id, scope?} object: %w", err)
	}
	c.ID, c.Scope = obj.ID, obj.Scope
	return nil
}

type wireNode struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Label         string         `json:"label"`
	Color         string         `json:"color"`
	Hp            float64        `json:"hp"`
	Wp            float64        `json:"wp"`
	X             *float64       `json:"x"`
	Y             *float64       `json:"y"`
	LabelPriority string         `json:"label_priority"`
	LabelPosition string         `json:"label_position"`
	Contains      []wireChildRef `json:"contains"`
}

// wireRouting mirrors spec §4.9's function-signature-style routing object:
// orthogonal(corner_radius, preference), bezier(curvature), arc(radius, side).
type wireRouting struct {
	Kind         string        `json:"kind"`
	CornerRadius float64       `json:"corner_radius"`
	Preference   string        `json:"preference"`
	Curvature    float64       `json:"curvature"`
	Radius       float64       `json:"radius"`
	Side         string        `json:"side"`
	Waypoints    []graph.Point `json:"waypoints"`
}

type wireEdge struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Label     string      `json:"label"`
	Direction string      `json:"direction"`
	Routing   wireRouting `json:"routing"`
	// Waypoints is the legacy top-level form; when Routing is empty and
	// this is non-empty, it's promoted to Routing{Kind: manual} (spec §6).
	Waypoints []graph.Point `json:"waypoints"`
}

func decodeDocument(raw []byte) (*document, error) {
	var d document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return &d, nil
}

func (d *document) toGraph() ([]*graph.Node, []*graph.Edge) {
	nodes := make([]*graph.Node, 0, len(d.Elements))
	for _, wn := range d.Elements {
		n := &graph.Node{
			ID:            wn.ID,
			Kind:          graph.ResolveKind(wn.Type),
			Label:         wn.Label,
			Colour:        wn.Color,
			Hp:            nonZeroOr(wn.Hp, 1),
			Wp:            nonZeroOr(wn.Wp, 1),
			X:             wn.X,
			Y:             wn.Y,
			LabelPriority: graph.LabelPriority(orDefault(wn.LabelPriority, string(graph.LabelPriorityNormal))),
			LabelPosition: graph.Side(wn.LabelPosition),
		}
		for _, c := range wn.Contains {
			n.Contains = append(n.Contains, graph.ChildRef{
				ID:    c.ID,
				Scope: graph.Scope(orDefault(c.Scope, string(graph.ScopeFull))),
			})
		}
		nodes = append(nodes, n)
	}

	edges := make([]*graph.Edge, 0, len(d.Connections))
	for _, we := range d.Connections {
		e := &graph.Edge{
			From:      we.From,
			To:        we.To,
			Label:     we.Label,
			Direction: graph.Direction(orDefault(we.Direction, string(graph.DirForward))),
			Routing:   resolveRouting(we),
		}
		edges = append(edges, e)
	}
	return nodes, edges
}

// resolveRouting promotes a legacy top-level `waypoints` array to a manual
// Routing when the caller didn't supply an explicit routing.kind.
func resolveRouting(we wireEdge) graph.Routing {
	wr := we.Routing
	if wr.Kind == "" && len(we.Waypoints) > 0 {
		return graph.Routing{Kind: graph.RouteManual, Waypoints: we.Waypoints}
	}
	return graph.Routing{
		Kind:         graph.RoutingKind(orDefault(wr.Kind, string(graph.RouteStraight))),
		CornerRadius: wr.CornerRadius,
		Preference:   graph.Orientation(orDefault(wr.Preference, string(graph.OrientationAuto))),
		Curvature:    wr.Curvature,
		Radius:       wr.Radius,
		Side:         graph.Side(orDefault(wr.Side, string(graph.SideAuto))),
		Waypoints:    wr.Waypoints,
	}
}

func nonZeroOr(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

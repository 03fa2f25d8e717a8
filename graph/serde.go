package graph

import "encoding/json"

// serializable is the JSON-friendly mirror of Layout used for snapshot
// round-tripping (Q6 determinism tests, internal/snapshoturl). Maps with
// non-string-safe zero values are fine here since Layout's maps are all
// keyed by string already.
type serializable struct {
	Canvas            Canvas
	Nodes             map[string]*Node
	NodeOrder         []string
	Edges             []*Edge
	Icons             map[string]string
	LabelPositions    map[string]LabelPos
	Condensation      *Condensation
	Parent            map[string]string
	Children          map[string][]string
	PrimaryElements   []string
	Out               map[string][]string
	In                map[string][]string
	AbstractPositions map[string]Point
	Diagnostics       []Diagnostic
}

// SerializeLayout encodes a Layout to JSON, grounded on d2graph's
// SerializeGraph/DeserializeGraph round-trip (serde_test.go), generalised
// from D2's compiler-internal graph to this package's Layout.
func SerializeLayout(l *Layout) ([]byte, error) {
	s := serializable{
		Canvas:            l.Canvas,
		Nodes:             l.Nodes,
		NodeOrder:         l.NodeOrder,
		Edges:             l.Edges,
		Icons:             l.Icons,
		LabelPositions:    l.LabelPositions,
		Condensation:      l.Condensation,
		Parent:            l.Parent,
		Children:          l.Children,
		PrimaryElements:   l.PrimaryElements,
		Out:               l.Out,
		In:                l.In,
		AbstractPositions: l.AbstractPositions,
		Diagnostics:       l.Diagnostics,
	}
	return json.Marshal(s)
}

// DeserializeLayout decodes a Layout previously produced by SerializeLayout.
func DeserializeLayout(b []byte, out *Layout) error {
	var s serializable
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	out.Canvas = s.Canvas
	out.Nodes = s.Nodes
	out.NodeOrder = s.NodeOrder
	out.Edges = s.Edges
	out.Icons = s.Icons
	out.LabelPositions = s.LabelPositions
	out.Condensation = s.Condensation
	out.Parent = s.Parent
	out.Children = s.Children
	out.PrimaryElements = s.PrimaryElements
	out.Out = s.Out
	out.In = s.In
	out.AbstractPositions = s.AbstractPositions
	out.Diagnostics = s.Diagnostics
	return nil
}

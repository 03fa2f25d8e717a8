package graph

import "fmt"

// New builds a Layout from freshly parsed nodes and edges. It only performs
// the one check that must happen before any stage can safely index by id:
// duplicate node ids (spec §7 StructuralError, fatal, no layout produced).
// Containment-tree construction, adjacency, levels, and scores are the
// Structure Analyser's job (internal/structure), not the constructor's.
func New(nodes []*Node, edges []*Edge, icons map[string]string, canvasHint Canvas) (*Layout, error) {
	l := &Layout{
		Canvas:         canvasHint,
		Nodes:          make(map[string]*Node, len(nodes)),
		NodeOrder:      make([]string, 0, len(nodes)),
		Edges:          edges,
		Icons:          icons,
		LabelPositions: make(map[string]LabelPos),
		Parent:         make(map[string]string),
		Children:       make(map[string][]string),
		Out:            make(map[string][]string),
		In:             make(map[string][]string),
		AbstractPositions: make(map[string]Point),
	}
	if l.Icons == nil {
		l.Icons = make(map[string]string)
	}

	for _, n := range nodes {
		if _, exists := l.Nodes[n.ID]; exists {
			return nil, fmt.Errorf("structural_error: duplicate node id %q", n.ID)
		}
		if n.Wp == 0 {
			n.Wp = 1.0
		}
		if n.Hp == 0 {
			n.Hp = 1.0
		}
		l.Nodes[n.ID] = n
		l.NodeOrder = append(l.NodeOrder, n.ID)
	}

	for _, e := range edges {
		if e.Weight == 0 {
			e.Weight = 1
		}
		if e.Direction == "" {
			e.Direction = DirNone
		}
		if e.Routing.Kind == "" {
			e.Routing.Kind = RouteStraight
		}
	}

	return l, nil
}

// NodeIDs returns node ids in stable input order.
func (l *Layout) NodeIDs() []string {
	return l.NodeOrder
}

// HasChildren reports whether id has at least one contained child in the
// already-built containment tree.
func (l *Layout) HasChildren(id string) bool {
	return len(l.Children[id]) > 0
}

// IsPrimary reports whether id's parent is the root.
func (l *Layout) IsPrimary(id string) bool {
	return l.Parent[id] == ""
}

// RepOf returns the condensation representative id for a real node id, or
// the id itself when no condensation has been computed or the node was not
// grouped.
func (l *Layout) RepOf(id string) string {
	if l.Condensation == nil {
		return id
	}
	if rep, ok := l.Condensation.ElementToRep[id]; ok {
		return rep
	}
	return id
}

// Package structure implements the Structure Analyser (S), Topology Tagger
// (T), and Centrality Orderer (C) stages: containment tree, adjacency,
// topological levels, accessibility scores, and condensation detection
// (spec §4.1–§4.3). Grounded on godagre's makeAcyclic/assignRanks
// (d2dagrelayout/godagre/layout.go), generalised from dagre's rank
// assignment to the spec's longest-path-with-leaf-inherit rule and
// accessibility score.
package structure

import (
	"fmt"
	"sort"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/colorutil"
)

// Analyse runs stage S: it builds the containment tree, adjacency,
// topological levels, accessibility scores, and condensation groups, and
// writes them onto l. A containment cycle or a node with more than one
// parent is fatal (StructuralError); everything else is recorded as a
// diagnostic on l.Diagnostics.
func Analyse(l *graph.Layout, cfg config.Config) error {
	if err := buildContainment(l); err != nil {
		return err
	}
	buildAdjacency(l)
	computeLevels(l, cfg)
	computeScores(l, cfg)
	detectCondensation(l, cfg)
	normaliseColours(l, cfg)
	return nil
}

// normaliseColours canonicalises every node's colour to #RRGGBB. An unset
// colour silently takes the configured default; a colour string that fails
// to parse also falls back to the default but is recorded as a
// NumericDegenerate-class diagnostic, since it was a deliberate (if
// malformed) input.
func normaliseColours(l *graph.Layout, cfg config.Config) {
	for _, id := range l.NodeIDs() {
		n := l.Nodes[id]
		if n.Colour == "" {
			n.Colour = cfg.DefaultNodeColour
			continue
		}
		hex, ok := colorutil.Normalize(n.Colour)
		if !ok {
			l.Diagnostics = append(l.Diagnostics, graph.Diagnostic{
				Kind: "numeric_degenerate", Stage: "structure",
				IDs: []string{id}, Message: "colour did not parse, falling back to default",
			})
			n.Colour = cfg.DefaultNodeColour
			continue
		}
		n.Colour = hex
	}
}

// buildContainment builds Parent/Children/PrimaryElements from each node's
// Contains list via depth-first traversal, flagging cycles as fatal.
func buildContainment(l *graph.Layout) error {
	for _, id := range l.NodeIDs() {
		n := l.Nodes[id]
		for _, c := range n.Contains {
			if _, ok := l.Nodes[c.ID]; !ok {
				l.Diagnostics = append(l.Diagnostics, graph.Diagnostic{
					Kind: "reference_error", Stage: "structure",
					IDs: []string{id, c.ID}, Message: "contains references unknown node id, skipped",
				})
				continue
			}
			if prev, exists := l.Parent[c.ID]; exists && prev != "" && prev != id {
				return fmt.Errorf("structural_error: node %q has more than one parent (%q and %q)", c.ID, prev, id)
			}
			l.Parent[c.ID] = id
			l.Children[id] = append(l.Children[id], c.ID)
		}
	}

	// every node not assigned a parent is a primary (root-level) element
	for _, id := range l.NodeIDs() {
		if _, ok := l.Parent[id]; !ok {
			l.Parent[id] = ""
		}
	}
	for _, id := range l.NodeIDs() {
		if l.Parent[id] == "" {
			l.PrimaryElements = append(l.PrimaryElements, id)
		}
	}

	// cycle detection: containment must form a forest (invariant I2)
	white, gray, black := 0, 1, 2
	state := make(map[string]int, len(l.Nodes))
	var dfs func(id string) error
	dfs = func(id string) error {
		state[id] = gray
		for _, child := range l.Children[id] {
			switch state[child] {
			case white:
				if err := dfs(child); err != nil {
					return err
				}
			case gray:
				return fmt.Errorf("structural_error: containment cycle detected at node %q", child)
			}
		}
		state[id] = black
		return nil
	}
	for _, id := range l.NodeIDs() {
		if state[id] == white {
			if err := dfs(id); err != nil {
				return err
			}
		}
	}

	// container depth: distance from root
	var depth func(id string) int
	memo := make(map[string]int)
	depth = func(id string) int {
		if d, ok := memo[id]; ok {
			return d
		}
		p := l.Parent[id]
		var d int
		if p == "" {
			d = 0
		} else {
			d = depth(p) + 1
		}
		memo[id] = d
		return d
	}
	for _, id := range l.NodeIDs() {
		l.Nodes[id].ContainerDepth = depth(id)
	}

	return nil
}

// buildAdjacency builds the two insertion-order-preserving multimaps and
// drops edges whose endpoints don't resolve (ReferenceError, non-fatal).
func buildAdjacency(l *graph.Layout) {
	for _, e := range l.Edges {
		_, fromOK := l.Nodes[e.From]
		_, toOK := l.Nodes[e.To]
		if !fromOK || !toOK {
			e.Dropped = true
			l.Diagnostics = append(l.Diagnostics, graph.Diagnostic{
				Kind: "reference_error", Stage: "structure",
				IDs: []string{e.From, e.To}, Message: "edge endpoint does not resolve, edge dropped",
			})
			continue
		}
		if e.From == e.To {
			// self-loop: still tracked, but contributes no rank pressure
			continue
		}
		l.Out[e.From] = append(l.Out[e.From], e.To)
		l.In[e.To] = append(l.In[e.To], e.From)
	}
}

// computeLevels assigns longest-path topological levels (spec §4.1),
// tolerating cycles by greedily breaking back-edges during a DFS (the same
// approach as godagre.makeAcyclic), then applying the leaf-inherit carve-out
// per config.
func computeLevels(l *graph.Layout, cfg config.Config) {
	ids := l.NodeIDs()

	// Build a local copy of Out edges, breaking back-edges found via DFS.
	acyclicOut := make(map[string][]string, len(ids))
	for _, id := range ids {
		acyclicOut[id] = append([]string(nil), l.Out[id]...)
	}

	const (
		white = iota
		gray
		black
	)
	state := make(map[string]int, len(ids))
	brokenAny := false
	var dfs func(v string)
	dfs = func(v string) {
		state[v] = gray
		kept := acyclicOut[v][:0]
		for _, w := range acyclicOut[v] {
			if state[w] == white {
				kept = append(kept, w)
				dfs(w)
			} else if state[w] == gray {
				// back edge: drop it for ranking purposes only
				brokenAny = true
			} else {
				kept = append(kept, w)
			}
		}
		acyclicOut[v] = kept
		state[v] = black
	}
	for _, id := range ids {
		if state[id] == white {
			dfs(id)
		}
	}
	if brokenAny {
		l.Diagnostics = append(l.Diagnostics, graph.Diagnostic{
			Kind: "edge_cycle_tolerated", Stage: "structure",
			Message: "edge graph contains a cycle; level computed with the back-edges found by a depth-first search ignored",
		})
	}

	indeg := make(map[string]int, len(ids))
	for _, id := range ids {
		indeg[id] = 0
	}
	for _, id := range ids {
		for _, w := range acyclicOut[id] {
			indeg[w]++
		}
	}

	rank0 := make(map[string]int, len(ids))
	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	processed := make(map[string]bool, len(ids))
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		processed[v] = true
		for _, w := range acyclicOut[v] {
			if rank0[v]+1 > rank0[w] {
				rank0[w] = rank0[v] + 1
			}
			indeg[w]--
			if indeg[w] == 0 && !processed[w] {
				queue = append(queue, w)
			}
		}
	}
	// defensive: any node the DFS cycle-break missed keeps rank 0

	for _, id := range ids {
		l.Nodes[id].Level = rank0[id]
	}

	if cfg.InheritLeafLevel {
		for _, id := range ids {
			if len(l.Out[id]) != 0 || len(l.In[id]) == 0 {
				continue
			}
			maxPred := 0
			first := true
			for _, p := range l.In[id] {
				if first || rank0[p] > maxPred {
					maxPred = rank0[p]
					first = false
				}
			}
			l.Nodes[id].Level = maxPred
		}
	}
}

// computeScores computes the accessibility score (spec §4.1).
func computeScores(l *graph.Layout, cfg config.Config) {
	for _, id := range l.NodeIDs() {
		n := l.Nodes[id]

		wPrecedence := 0.0
		for _, p := range l.In[id] {
			if n.Level-l.Nodes[p].Level > 1 {
				wPrecedence = 1
				break
			}
		}

		wChildren := float64(len(l.Out[id]))

		sameLevelIn := 0
		for _, p := range l.In[id] {
			if l.Nodes[p].Level == n.Level {
				sameLevelIn++
			}
		}
		wFanin := 0.0
		if sameLevelIn > 1 {
			wFanin = float64(sameLevelIn - 1)
		}

		n.Score = cfg.ScorePrecedence*wPrecedence + cfg.ScoreChildren*wChildren + cfg.ScoreFanin*wFanin
	}
}

// detectCondensation finds groups of >= MinCondensationGroupSize nodes that
// share an identical small "pivot" neighbour signature (the union of their
// predecessor and successor sets) and collapses each into a Virtual
// Container representative, then recomputes levels over the condensed
// graph (spec §4.1).
func detectCondensation(l *graph.Layout, cfg config.Config) {
	sigOf := make(map[string]string, len(l.Nodes))
	pivotsOf := make(map[string][]string, len(l.Nodes))
	for _, id := range l.NodeIDs() {
		pivots := make(map[string]bool)
		for _, p := range l.In[id] {
			pivots[p] = true
		}
		for _, s := range l.Out[id] {
			pivots[s] = true
		}
		if len(pivots) == 0 || len(pivots) > 3 {
			continue // not a small, well-defined pivot set
		}
		var list []string
		for p := range pivots {
			list = append(list, p)
		}
		sort.Strings(list)
		sig := fmt.Sprintf("%v", list)
		sigOf[id] = sig
		pivotsOf[id] = list
	}

	groups := make(map[string][]string)
	var groupOrder []string
	for _, id := range l.NodeIDs() {
		sig, ok := sigOf[id]
		if !ok {
			continue
		}
		if _, seen := groups[sig]; !seen {
			groupOrder = append(groupOrder, sig)
		}
		groups[sig] = append(groups[sig], id)
	}

	cond := &graph.Condensation{ElementToRep: make(map[string]string, len(l.Nodes))}
	repOrder := make([]string, 0)

	condensed := make(map[string]bool)
	pivotSet := make(map[string]bool)
	vcCount := 0
	for _, sig := range groupOrder {
		members := groups[sig]
		if len(members) < cfg.MinCondensationGroupSize {
			continue
		}
		// a node can't be both a pivot for this group and a member
		isPivot := false
		for _, m := range members {
			if pivotSet[m] {
				isPivot = true
			}
		}
		if isPivot {
			continue
		}
		for _, p := range pivotsOf[members[0]] {
			pivotSet[p] = true
		}

		vcID := fmt.Sprintf("_vc%d", vcCount)
		vcCount++
		maxScore := l.Nodes[members[0]].Score
		maxLevel := l.Nodes[members[0]].Level
		for _, m := range members {
			if l.Nodes[m].Score > maxScore {
				maxScore = l.Nodes[m].Score
			}
			if l.Nodes[m].Level > maxLevel {
				maxLevel = l.Nodes[m].Level
			}
			l.Nodes[m].ClusterID = vcID
			cond.ElementToRep[m] = vcID
			condensed[m] = true
		}
		cond.Representatives = append(cond.Representatives, &graph.Abstract{
			ID: vcID, Members: append([]string(nil), members...), IsVC: true,
			Level: maxLevel, Score: maxScore,
		})
		repOrder = append(repOrder, vcID)
	}

	for _, id := range l.NodeIDs() {
		if condensed[id] {
			continue
		}
		cond.ElementToRep[id] = id
		cond.Representatives = append(cond.Representatives, &graph.Abstract{
			ID: id, Members: []string{id}, Level: l.Nodes[id].Level, Score: l.Nodes[id].Score,
		})
		repOrder = append(repOrder, id)
	}

	// build the condensed edge graph, deduped and weight-summed
	edgeWeight := make(map[[2]string]float64)
	order := make([]([2]string), 0)
	for _, e := range l.Edges {
		if e.Dropped || e.From == e.To {
			continue
		}
		rf, rt := cond.ElementToRep[e.From], cond.ElementToRep[e.To]
		if rf == rt {
			continue
		}
		key := [2]string{rf, rt}
		if _, ok := edgeWeight[key]; !ok {
			order = append(order, key)
		}
		edgeWeight[key] += e.Weight
	}

	repLevel := make(map[string]int, len(repOrder))
	for _, r := range cond.Representatives {
		repLevel[r.ID] = r.Level
	}
	for _, key := range order {
		cond.Edges = append(cond.Edges, graph.AbstractEdge{
			From: key[0], To: key[1], Weight: edgeWeight[key],
			SameLevel: repLevel[key[0]] == repLevel[key[1]],
		})
	}

	if vcCount == 0 {
		// nothing condensed: condensation graph is just the plain graph,
		// still recorded so downstream stages have a single code path.
		l.Condensation = cond
		return
	}

	// recompute topological levels on the condensed graph
	condOut := make(map[string][]string, len(repOrder))
	for _, e := range cond.Edges {
		condOut[e.From] = append(condOut[e.From], e.To)
	}
	indeg := make(map[string]int, len(repOrder))
	for _, r := range repOrder {
		indeg[r] = 0
	}
	for _, e := range cond.Edges {
		indeg[e.To]++
	}
	queue := make([]string, 0)
	for _, r := range repOrder {
		if indeg[r] == 0 {
			queue = append(queue, r)
		}
	}
	level := make(map[string]int, len(repOrder))
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range condOut[v] {
			if level[v]+1 > level[w] {
				level[w] = level[v] + 1
			}
			indeg[w]--
			if indeg[w] == 0 {
				queue = append(queue, w)
			}
		}
	}
	for _, r := range cond.Representatives {
		r.Level = level[r.ID]
	}

	l.Condensation = cond
}

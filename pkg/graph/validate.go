package graph

import (
	"bytes"
	"fmt"
	"slices"
)

// ValidationSeverity tells whether a finding withholds the graph from
// tessellation or only accompanies it.
type ValidationSeverity int

const (
	SeverityError ValidationSeverity = iota
	SeverityWarning
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError is one structural finding. A zero NodeID marks a
// graph-level problem.
type ValidationError struct {
	NodeID   NodeID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning is an advisory finding; the graph still renders.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult splits the findings of ValidateAll by severity.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether nothing blocks tessellation.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// findings accumulates validation output.
type findings []ValidationError

func (f *findings) errorf(id NodeID, format string, args ...interface{}) {
	*f = append(*f, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (f *findings) warnf(id NodeID, format string, args ...interface{}) {
	*f = append(*f, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// sortedIDs lists the node IDs in byte order so findings come out in the
// same order on every run.
func sortedIDs(g *DesignGraph) []NodeID {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b NodeID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}

// Validate checks the structure of g without touching it: every node is
// well formed, references and names resolve, the graph is acyclic and
// every node hangs off a root. Orphans are reported as warnings.
func Validate(g *DesignGraph) []ValidationError {
	var f findings
	ids := sortedIDs(g)
	for _, id := range ids {
		checkNode(&f, g, g.Nodes[id])
	}
	checkNames(&f, g)
	checkCycles(&f, g, ids)
	checkReachable(&f, g, ids)
	return f
}

// ValidateAll adds the body parameter warnings to Validate and splits the
// result by severity.
func ValidateAll(g *DesignGraph) ValidationResult {
	var res ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			res.Warnings = append(res.Warnings, ValidationWarning{NodeID: e.NodeID, Message: e.Message})
			continue
		}
		res.Errors = append(res.Errors, e)
	}
	res.Warnings = append(res.Warnings, validateParams(g)...)
	return res
}

// checkNode verifies one node on its own: the payload matches the kind,
// bodies are leaves, a transform wraps exactly one child, each child
// exists and a body sweeps along one of the six planes.
func checkNode(f *findings, g *DesignGraph, n *Node) {
	var ok bool
	switch n.Kind {
	case NodeSolid:
		_, ok = n.Data.(SolidData)
	case NodeShell:
		_, ok = n.Data.(ShellData)
	case NodeBeam:
		_, ok = n.Data.(BeamData)
	case NodeTransform:
		_, ok = n.Data.(TransformData)
	case NodeGroup:
		_, ok = n.Data.(GroupData)
	}
	if !ok {
		f.errorf(n.ID, "%s node carries %T payload", n.Kind, n.Data)
	}

	switch {
	case n.Kind.IsBody() && len(n.Children) > 0:
		f.errorf(n.ID, "%s node has %d children, bodies are leaves", n.Kind, len(n.Children))
	case n.Kind == NodeTransform && len(n.Children) != 1:
		f.errorf(n.ID, "transform node has %d children, want 1", len(n.Children))
	}

	for _, c := range n.Children {
		if _, exists := g.Nodes[c]; !exists {
			f.errorf(n.ID, "child reference %s does not exist", c.Short())
		}
	}

	if sw, isBody := BodySweep(n.Data); isBody && !sw.Plane.Valid() {
		f.errorf(n.ID, "invalid plane %s", sw.Plane)
	}
}

// checkNames requires the name index to point at live nodes and each name
// to belong to a single node.
func checkNames(f *findings, g *DesignGraph) {
	names := make([]string, 0, len(g.NameIndex))
	for name := range g.NameIndex {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		id := g.NameIndex[name]
		if _, ok := g.Nodes[id]; !ok {
			f.errorf(ZeroID, "name index entry %q references non-existent node %s", name, id.Short())
		}
	}

	owners := make(map[string]int)
	var order []string
	for _, n := range g.Nodes {
		if n.Name == "" {
			continue
		}
		if owners[n.Name] == 0 {
			order = append(order, n.Name)
		}
		owners[n.Name]++
	}
	slices.Sort(order)
	for _, name := range order {
		if owners[name] > 1 {
			f.errorf(ZeroID, "duplicate name %q assigned to %d nodes", name, owners[name])
		}
	}
}

// checkCycles reports the first node found on a cycle. Placements nest
// through Children, so a cycle would make tessellation recurse forever.
func checkCycles(f *findings, g *DesignGraph, ids []NodeID) {
	onPath := make(map[NodeID]bool)
	done := make(map[NodeID]bool)

	var walk func(id NodeID) bool
	walk = func(id NodeID) bool {
		if done[id] {
			return false
		}
		if onPath[id] {
			f.errorf(id, "cycle detected: node %s is part of a cycle", id.Short())
			return true
		}
		n, ok := g.Nodes[id]
		if !ok {
			return false
		}
		onPath[id] = true
		for _, c := range n.Children {
			if walk(c) {
				return true
			}
		}
		onPath[id] = false
		done[id] = true
		return false
	}

	for _, id := range ids {
		if walk(id) {
			return
		}
	}
}

// checkReachable requires every root to exist and warns about nodes no root
// reaches; those never render when the graph has roots.
func checkReachable(f *findings, g *DesignGraph, ids []NodeID) {
	seen := make(map[NodeID]bool)
	var stack []NodeID
	for _, r := range g.Roots {
		if _, ok := g.Nodes[r]; !ok {
			f.errorf(ZeroID, "root reference %s does not exist", r.Short())
			continue
		}
		stack = append(stack, r)
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if n, ok := g.Nodes[id]; ok {
			stack = append(stack, n.Children...)
		}
	}

	for _, id := range ids {
		if seen[id] {
			continue
		}
		name := g.Nodes[id].Name
		if name == "" {
			name = id.Short()
		}
		f.warnf(id, "node %q is not reachable from any root (orphan)", name)
	}
}

package graph

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodeSolid     NodeKind = iota // rounded profile swept along a plane
	NodeShell                     // wall between two profile offsets, swept
	NodeBeam                      // offset centerline path, swept
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping (assembly)
)

func (k NodeKind) String() string {
	switch k {
	case NodeSolid:
		return "solid"
	case NodeShell:
		return "shell"
	case NodeBeam:
		return "beam"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// IsBody reports whether nodes of kind k produce geometry.
func (k NodeKind) IsBody() bool {
	return k == NodeSolid || k == NodeShell || k == NodeBeam
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

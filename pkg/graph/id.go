package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeID is a content-addressed identifier derived from a node's path.
type NodeID [32]byte

// ZeroID is the zero NodeID, used for graph-level findings.
var ZeroID NodeID

// NewNodeID hashes a path such as "solid/plate" into a NodeID.
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte(path)))
}

// IsZero reports whether id is the zero ID.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// String returns the full hex form.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first eight hex digits.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:4])
}

// MarshalText implements encoding.TextMarshaler.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(b []byte) error {
	if hex.DecodedLen(len(b)) != len(id) {
		return fmt.Errorf("node id: want %d hex digits, got %d", 2*len(id), len(b))
	}
	_, err := hex.Decode(id[:], b)
	return err
}

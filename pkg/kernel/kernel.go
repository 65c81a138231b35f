// Package kernel defines the geometry engines the extrusion pipeline drives.
// Rounding, extrusion, shelling and beam chaining are all delegated through
// these interfaces so the plane and transform logic can be exercised against
// stubs, and so backends can be swapped without touching the rest of the
// system.
package kernel

import (
	"fmt"

	"github.com/chazu/roundex/pkg/geom"
)

// Solid is an opaque handle to a 3D body produced by a kernel.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Outline is an opaque handle to a closed 2D region.
type Outline interface {
	// BoundingBox returns the axis-aligned bounding rectangle.
	BoundingBox() (min, max [2]float64)
}

// RoundMode selects how the rounding engine treats the ends of a point list.
type RoundMode int

const (
	RoundClosed RoundMode = iota // every vertex is rounded, last wraps to first
	RoundOpen                    // first and last vertices stay sharp
)

func (m RoundMode) String() string {
	switch m {
	case RoundClosed:
		return "closed"
	case RoundOpen:
		return "open"
	default:
		return fmt.Sprintf("RoundMode(%d)", int(m))
	}
}

// ExtrudeParams drives a sweep of an outline along +Z.
type ExtrudeParams struct {
	Length float64
	// R1 fillets the start face, R2 the terminal face. Zero is a flat face.
	R1, R2 float64
	// Center sweeps [-Length/2, Length/2] instead of [0, Length].
	Center     bool
	Resolution int
	Convexity  int // renderer hint, not evaluated
	Twist      float64
	Slices     int
}

// ShellParams describes a 2D wall between two offsets of an outline.
type ShellParams struct {
	InnerOffset    float64
	OuterOffset    float64
	MinOuterRadius float64
	MinInnerRadius float64
}

// BeamMode selects how the beam chain treats the ends of the path.
type BeamMode int

const (
	// BeamFreeEnds closes the outline; cap angles are relative to the end
	// segments and default to 90 degrees.
	BeamFreeEnds BeamMode = iota
	// BeamForwardOnly returns just the first offset side as an open path.
	BeamForwardOnly
	// BeamAbsoluteAngles closes the outline; cap angles are measured from
	// the X axis and default to 0 degrees.
	BeamAbsoluteAngles
)

func (m BeamMode) String() string {
	switch m {
	case BeamFreeEnds:
		return "free-ends"
	case BeamForwardOnly:
		return "forward-only"
	case BeamAbsoluteAngles:
		return "absolute-angles"
	default:
		return fmt.Sprintf("BeamMode(%d)", int(m))
	}
}

// ParseBeamMode accepts the names produced by BeamMode.String.
func ParseBeamMode(s string) (BeamMode, error) {
	for _, m := range []BeamMode{BeamFreeEnds, BeamForwardOnly, BeamAbsoluteAngles} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid beam mode %q, expected free-ends, forward-only or absolute-angles", s)
}

// BeamSpec parameterizes a beam chain. Offsets are measured along the left
// normal of the path. A nil angle takes the mode's default.
type BeamSpec struct {
	Offset1    float64
	Offset2    float64
	Mode       BeamMode
	StartAngle *float64 // degrees
	EndAngle   *float64 // degrees
	MinRadius  float64
}

// Rounder turns radius points into a 2D outline with filleted corners.
type Rounder interface {
	Round(points geom.Profile, resolution int, mode RoundMode) (Outline, error)
}

// Extruder sweeps an outline into a solid with filleted end faces.
type Extruder interface {
	Extrude(o Outline, p ExtrudeParams) (Solid, error)
}

// Sheller builds the wall region between two offsets of an outline.
// Children add material inside the wall before its corners are rounded.
type Sheller interface {
	Shell(o Outline, p ShellParams, children ...Outline) (Outline, error)
}

// BeamChainer offsets both sides of a centerline path into a beam outline.
type BeamChainer interface {
	BeamChain(path geom.Profile, p BeamSpec) (geom.Profile, error)
}

// Kernel is the full geometry backend: the profile engines plus boolean
// operations, rigid transforms and mesh output.
type Kernel interface {
	Rounder
	Extruder
	Sheller

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

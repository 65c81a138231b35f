package graph

import (
	"github.com/chazu/roundex/pkg/geom"
	"github.com/chazu/roundex/pkg/kernel"
	"github.com/chazu/roundex/pkg/plane"
)

// ---------------------------------------------------------------------------
// Sweep
// ---------------------------------------------------------------------------

// Sweep holds the parameters every body shares: where it is swept, how far,
// and how its end faces and corners are finished.
type Sweep struct {
	Plane      plane.Plane `json:"plane"`
	Length     float64     `json:"length"`
	Center     bool        `json:"center,omitempty"`
	R1         float64     `json:"r1,omitempty"` // start face fillet
	R2         float64     `json:"r2,omitempty"` // terminal face fillet
	Resolution int         `json:"resolution,omitempty"`
	Convexity  int         `json:"convexity,omitempty"`
}

// ---------------------------------------------------------------------------
// Bodies
// ---------------------------------------------------------------------------

// SolidData is a closed radius-point profile swept into a solid.
// Created by the (solid ...) Lisp form.
type SolidData struct {
	Sweep
	Points geom.Profile `json:"points"`
	Twist  float64      `json:"twist,omitempty"` // degrees over the length
	Slices int          `json:"slices,omitempty"`
}

func (SolidData) nodeData() {}

// ShellData is the wall between two offsets of a closed profile.
// Created by the (shell ...) Lisp form.
type ShellData struct {
	Sweep
	Points         geom.Profile   `json:"points"`
	InnerOffset    float64        `json:"inner_offset"`
	OuterOffset    float64        `json:"outer_offset"`
	MinOuterRadius float64        `json:"min_outer_radius,omitempty"`
	MinInnerRadius float64        `json:"min_inner_radius,omitempty"`
	Children       []geom.Profile `json:"children,omitempty"` // extra 2D material inside the wall
}

func (ShellData) nodeData() {}

// BeamData is a centerline path offset on both sides and swept.
// Created by the (beam ...) Lisp form.
type BeamData struct {
	Sweep
	Path        geom.Profile    `json:"path"`
	InnerOffset float64         `json:"inner_offset"`
	OuterOffset float64         `json:"outer_offset"`
	Mode        kernel.BeamMode `json:"mode"`
	StartAngle  *float64        `json:"start_angle,omitempty"`
	EndAngle    *float64        `json:"end_angle,omitempty"`
	MinRadius   float64         `json:"min_radius,omitempty"`
}

func (BeamData) nodeData() {}

// BodySweep returns the sweep of a body payload.
func BodySweep(d NodeData) (Sweep, bool) {
	switch v := d.(type) {
	case SolidData:
		return v.Sweep, true
	case ShellData:
		return v.Sweep, true
	case BeamData:
		return v.Sweep, true
	}
	return Sweep{}, false
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) Lisp form.
type TransformData struct {
	Translation *geom.Vec3 `json:"translation,omitempty"`
	Rotation    *geom.Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping (assembly, subassembly).
// Created by the (assembly ...) Lisp form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

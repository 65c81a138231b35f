// Package extrude turns radius-point profiles into solids on one of the six
// named planes.
//
// Every operation follows the same protocol: resolve the plane transform,
// normalize the points, hand the profile to the kernel's engines, then rotate
// and translate the result into place. The plane is resolved before anything
// else so an invalid plane never reaches the kernel.
package extrude

import (
	"fmt"

	"github.com/chazu/roundex/pkg/beam"
	"github.com/chazu/roundex/pkg/geom"
	"github.com/chazu/roundex/pkg/kernel"
	"github.com/chazu/roundex/pkg/plane"
	"go.uber.org/zap"
)

const (
	// DefaultResolution is the corner facet count used when none is given.
	DefaultResolution = 10
	// DefaultConvexity is the renderer hint used when none is given.
	DefaultConvexity = 10
)

// SolidParams parameterizes Extruder.Solid.
type SolidParams struct {
	Plane      plane.Plane
	Length     float64
	Center     bool
	R1, R2     float64
	Resolution int
	Convexity  int
	Twist      float64 // degrees over the full length
	Slices     int
}

// ShellParams parameterizes Extruder.Shell.
type ShellParams struct {
	Plane          plane.Plane
	Length         float64
	Center         bool
	InnerOffset    float64
	OuterOffset    float64
	R1, R2         float64
	MinOuterRadius float64
	MinInnerRadius float64
	Resolution     int
	Convexity      int
	Children       []kernel.Outline
}

// BeamParams parameterizes Extruder.Beam. The points are a centerline path.
type BeamParams struct {
	Plane       plane.Plane
	Length      float64
	Center      bool
	InnerOffset float64
	OuterOffset float64
	Mode        kernel.BeamMode
	StartAngle  *float64
	EndAngle    *float64
	MinRadius   float64
	R1, R2      float64
	Resolution  int
	Convexity   int
}

// ProfileParams parameterizes Extruder.Profile.
type ProfileParams struct {
	Plane      plane.Plane
	Length     float64
	Center     bool
	R1, R2     float64
	Resolution int
	Convexity  int
	Twist      float64
	Slices     int
}

// Extruder drives a kernel to build solids on named planes. It holds no
// mutable state and is safe for concurrent use if the kernel is.
type Extruder struct {
	k          kernel.Kernel
	chainer    kernel.BeamChainer
	log        *zap.Logger
	resolution int
	convexity  int
}

// Option configures an Extruder.
type Option func(*Extruder)

// WithBeamChainer replaces the beam-chain generator. The default is
// beam.Generator.
func WithBeamChainer(bc kernel.BeamChainer) Option {
	return func(e *Extruder) {
		if bc != nil {
			e.chainer = bc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extruder) {
		if l != nil {
			e.log = l
		}
	}
}

// WithDefaults sets the resolution and convexity used for zero-valued
// parameters. Non-positive values leave the built-in defaults alone.
func WithDefaults(resolution, convexity int) Option {
	return func(e *Extruder) {
		if resolution > 0 {
			e.resolution = resolution
		}
		if convexity > 0 {
			e.convexity = convexity
		}
	}
}

// New returns an Extruder backed by k.
func New(k kernel.Kernel, opts ...Option) *Extruder {
	e := &Extruder{
		k:          k,
		chainer:    beam.Generator{},
		log:        zap.NewNop(),
		resolution: DefaultResolution,
		convexity:  DefaultConvexity,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kernel returns the kernel the extruder drives.
func (e *Extruder) Kernel() kernel.Kernel {
	return e.k
}

// Solid rounds a closed profile and sweeps it along the plane. The kernel
// centers the sweep itself when p.Center is set.
func (e *Extruder) Solid(points [][]float64, p SolidParams) (kernel.Solid, error) {
	t, err := plane.Resolve(p.Plane, p.Length, p.Center, plane.ModeSolid)
	if err != nil {
		return nil, fmt.Errorf("extrude solid: %w", err)
	}
	profile := geom.Normalize(points)
	res := e.res(p.Resolution)

	e.log.Debug("extrude solid",
		zap.Stringer("plane", p.Plane),
		zap.Int("points", len(profile)),
		zap.Float64("length", p.Length),
		zap.Bool("center", p.Center),
	)

	outline, err := e.k.Round(profile, res, kernel.RoundClosed)
	if err != nil {
		return nil, fmt.Errorf("extrude solid: round: %w", err)
	}
	s, err := e.k.Extrude(outline, kernel.ExtrudeParams{
		Length:     p.Length,
		R1:         p.R1,
		R2:         p.R2,
		Center:     p.Center,
		Resolution: res,
		Convexity:  e.conv(p.Convexity),
		Twist:      p.Twist,
		Slices:     p.Slices,
	})
	if err != nil {
		return nil, fmt.Errorf("extrude solid: %w", err)
	}
	return e.place(s, t), nil
}

// Shell builds the wall between two offsets of a closed profile and sweeps
// it along the plane. The sweep always starts at zero; centering comes
// from the plane transform.
func (e *Extruder) Shell(points [][]float64, p ShellParams) (kernel.Solid, error) {
	t, err := plane.Resolve(p.Plane, p.Length, p.Center, plane.ModeOffset)
	if err != nil {
		return nil, fmt.Errorf("extrude shell: %w", err)
	}
	profile := geom.Normalize(points)
	res := e.res(p.Resolution)

	e.log.Debug("extrude shell",
		zap.Stringer("plane", p.Plane),
		zap.Int("points", len(profile)),
		zap.Float64("inner", p.InnerOffset),
		zap.Float64("outer", p.OuterOffset),
		zap.Int("children", len(p.Children)),
	)

	outline, err := e.k.Round(profile, res, kernel.RoundClosed)
	if err != nil {
		return nil, fmt.Errorf("extrude shell: round: %w", err)
	}
	wall, err := e.k.Shell(outline, kernel.ShellParams{
		InnerOffset:    p.InnerOffset,
		OuterOffset:    p.OuterOffset,
		MinOuterRadius: p.MinOuterRadius,
		MinInnerRadius: p.MinInnerRadius,
	}, p.Children...)
	if err != nil {
		return nil, fmt.Errorf("extrude shell: %w", err)
	}
	s, err := e.k.Extrude(wall, kernel.ExtrudeParams{
		Length:     p.Length,
		R1:         p.R1,
		R2:         p.R2,
		Resolution: res,
		Convexity:  e.conv(p.Convexity),
	})
	if err != nil {
		return nil, fmt.Errorf("extrude shell: %w", err)
	}
	return e.place(s, t), nil
}

// Beam offsets a centerline path into an outline and sweeps it along the
// plane. Forward-only chains are open, so their ends are left sharp.
func (e *Extruder) Beam(points [][]float64, p BeamParams) (kernel.Solid, error) {
	t, err := plane.Resolve(p.Plane, p.Length, p.Center, plane.ModeOffset)
	if err != nil {
		return nil, fmt.Errorf("extrude beam: %w", err)
	}
	path := geom.Normalize(points)
	res := e.res(p.Resolution)

	e.log.Debug("extrude beam",
		zap.Stringer("plane", p.Plane),
		zap.Int("points", len(path)),
		zap.Stringer("mode", p.Mode),
	)

	chain, err := e.chainer.BeamChain(path, kernel.BeamSpec{
		Offset1:    p.InnerOffset,
		Offset2:    p.OuterOffset,
		Mode:       p.Mode,
		StartAngle: p.StartAngle,
		EndAngle:   p.EndAngle,
		MinRadius:  p.MinRadius,
	})
	if err != nil {
		return nil, fmt.Errorf("extrude beam: chain: %w", err)
	}

	mode := kernel.RoundClosed
	if p.Mode == kernel.BeamForwardOnly {
		mode = kernel.RoundOpen
	}
	outline, err := e.k.Round(chain, res, mode)
	if err != nil {
		return nil, fmt.Errorf("extrude beam: round: %w", err)
	}
	s, err := e.k.Extrude(outline, kernel.ExtrudeParams{
		Length:     p.Length,
		R1:         p.R1,
		R2:         p.R2,
		Resolution: res,
		Convexity:  e.conv(p.Convexity),
	})
	if err != nil {
		return nil, fmt.Errorf("extrude beam: %w", err)
	}
	return e.place(s, t), nil
}

// Profile sweeps an outline the caller has already built along the plane.
// No rounding is applied to it.
func (e *Extruder) Profile(o kernel.Outline, p ProfileParams) (kernel.Solid, error) {
	t, err := plane.Resolve(p.Plane, p.Length, p.Center, plane.ModeSolid)
	if err != nil {
		return nil, fmt.Errorf("extrude profile: %w", err)
	}
	s, err := e.k.Extrude(o, kernel.ExtrudeParams{
		Length:     p.Length,
		R1:         p.R1,
		R2:         p.R2,
		Center:     p.Center,
		Resolution: e.res(p.Resolution),
		Convexity:  e.conv(p.Convexity),
		Twist:      p.Twist,
		Slices:     p.Slices,
	})
	if err != nil {
		return nil, fmt.Errorf("extrude profile: %w", err)
	}
	return e.place(s, t), nil
}

// Outline rounds a closed profile without sweeping it, for use as a shell
// child or a Profile input.
func (e *Extruder) Outline(points [][]float64, resolution int) (kernel.Outline, error) {
	o, err := e.k.Round(geom.Normalize(points), e.res(resolution), kernel.RoundClosed)
	if err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}
	return o, nil
}

// place rotates s onto the plane and then translates it.
func (e *Extruder) place(s kernel.Solid, t plane.Transform) kernel.Solid {
	if !t.Rotation.IsZero() {
		s = e.k.Rotate(s, t.Rotation.X, t.Rotation.Y, t.Rotation.Z)
	}
	if !t.Translation.IsZero() {
		s = e.k.Translate(s, t.Translation.X, t.Translation.Y, t.Translation.Z)
	}
	return s
}

func (e *Extruder) res(r int) int {
	if r <= 0 {
		return e.resolution
	}
	return r
}

func (e *Extruder) conv(c int) int {
	if c <= 0 {
		return e.convexity
	}
	return c
}

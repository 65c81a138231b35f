// Package kerneltest provides a bounding-box-only kernel.Kernel that records
// every call made to it. It lets the extrusion pipeline be tested without a
// real geometry backend.
package kerneltest

import (
	"math"
	"sync"

	"github.com/chazu/roundex/pkg/geom"
	"github.com/chazu/roundex/pkg/kernel"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel      = (*Recorder)(nil)
	_ kernel.BeamChainer = (*Recorder)(nil)
)

// Call is one recorded kernel invocation.
type Call struct {
	Op      string
	Points  geom.Profile
	Extrude kernel.ExtrudeParams
	Shell   kernel.ShellParams
	Beam    kernel.BeamSpec
	Vec     geom.Vec3
	Mode    kernel.RoundMode
	Res     int
	NumKids int
}

// Outline is an axis-aligned rectangle standing in for a 2D region.
type Outline struct {
	Min, Max [2]float64
}

// BoundingBox implements kernel.Outline.
func (o *Outline) BoundingBox() (min, max [2]float64) { return o.Min, o.Max }

// Solid is an axis-aligned box standing in for a 3D body.
type Solid struct {
	Min, Max [3]float64
}

// BoundingBox implements kernel.Solid.
func (s *Solid) BoundingBox() (min, max [3]float64) { return s.Min, s.Max }

// Recorder implements kernel.Kernel and kernel.BeamChainer by tracking
// bounding boxes. Rotations are exact for the box corners, so plane
// placement can be checked through it.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	// Err, when set, is returned by Round, Extrude, Shell and BeamChain.
	Err error
	// Beam, when set, replaces the default BeamChain result.
	Beam func(path geom.Profile, p kernel.BeamSpec) (geom.Profile, error)
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []string {
	calls := r.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

// Round implements kernel.Rounder.
func (r *Recorder) Round(points geom.Profile, resolution int, mode kernel.RoundMode) (kernel.Outline, error) {
	r.record(Call{Op: "round", Points: points.Clone(), Res: resolution, Mode: mode})
	if r.Err != nil {
		return nil, r.Err
	}
	min, max := points.Bounds()
	return &Outline{Min: [2]float64{min.X, min.Y}, Max: [2]float64{max.X, max.Y}}, nil
}

// Extrude implements kernel.Extruder.
func (r *Recorder) Extrude(o kernel.Outline, p kernel.ExtrudeParams) (kernel.Solid, error) {
	r.record(Call{Op: "extrude", Extrude: p})
	if r.Err != nil {
		return nil, r.Err
	}
	min, max := o.BoundingBox()
	z0, z1 := 0.0, p.Length
	if p.Center {
		z0, z1 = -p.Length/2, p.Length/2
	}
	return &Solid{
		Min: [3]float64{min[0], min[1], z0},
		Max: [3]float64{max[0], max[1], z1},
	}, nil
}

// Shell implements kernel.Sheller.
func (r *Recorder) Shell(o kernel.Outline, p kernel.ShellParams, children ...kernel.Outline) (kernel.Outline, error) {
	r.record(Call{Op: "shell", Shell: p, NumKids: len(children)})
	if r.Err != nil {
		return nil, r.Err
	}
	min, max := o.BoundingBox()
	grow := math.Max(p.InnerOffset, p.OuterOffset)
	return &Outline{
		Min: [2]float64{min[0] - grow, min[1] - grow},
		Max: [2]float64{max[0] + grow, max[1] + grow},
	}, nil
}

// BeamChain implements kernel.BeamChainer. By default it returns the path
// with its points repeated in reverse, which is enough to observe ordering.
func (r *Recorder) BeamChain(path geom.Profile, p kernel.BeamSpec) (geom.Profile, error) {
	r.record(Call{Op: "beam", Points: path.Clone(), Beam: p})
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Beam != nil {
		return r.Beam(path, p)
	}
	out := path.Clone()
	for i := len(path) - 1; i >= 0; i-- {
		out = append(out, path[i])
	}
	return out, nil
}

// Union implements kernel.Kernel.
func (r *Recorder) Union(a, b kernel.Solid) kernel.Solid {
	r.record(Call{Op: "union"})
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	var s Solid
	for i := 0; i < 3; i++ {
		s.Min[i] = math.Min(amin[i], bmin[i])
		s.Max[i] = math.Max(amax[i], bmax[i])
	}
	return &s
}

// Difference implements kernel.Kernel. The result keeps a's bounds.
func (r *Recorder) Difference(a, _ kernel.Solid) kernel.Solid {
	r.record(Call{Op: "difference"})
	min, max := a.BoundingBox()
	return &Solid{Min: min, Max: max}
}

// Intersection implements kernel.Kernel.
func (r *Recorder) Intersection(a, b kernel.Solid) kernel.Solid {
	r.record(Call{Op: "intersection"})
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	var s Solid
	for i := 0; i < 3; i++ {
		s.Min[i] = math.Max(amin[i], bmin[i])
		s.Max[i] = math.Min(amax[i], bmax[i])
	}
	return &s
}

// Translate implements kernel.Kernel.
func (r *Recorder) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	r.record(Call{Op: "translate", Vec: geom.Vec3{X: x, Y: y, Z: z}})
	min, max := s.BoundingBox()
	d := [3]float64{x, y, z}
	var out Solid
	for i := 0; i < 3; i++ {
		out.Min[i] = min[i] + d[i]
		out.Max[i] = max[i] + d[i]
	}
	return &out
}

// Rotate implements kernel.Kernel, rotating the eight box corners.
func (r *Recorder) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	r.record(Call{Op: "rotate", Vec: geom.Vec3{X: x, Y: y, Z: z}})
	min, max := s.BoundingBox()
	out := Solid{
		Min: [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for i := 0; i < 8; i++ {
		p := [3]float64{min[0], min[1], min[2]}
		if i&1 != 0 {
			p[0] = max[0]
		}
		if i&2 != 0 {
			p[1] = max[1]
		}
		if i&4 != 0 {
			p[2] = max[2]
		}
		p = rotate(p, x, y, z)
		for j := 0; j < 3; j++ {
			out.Min[j] = math.Min(out.Min[j], p[j])
			out.Max[j] = math.Max(out.Max[j], p[j])
		}
	}
	return &out
}

// ToMesh implements kernel.Kernel with an empty mesh.
func (r *Recorder) ToMesh(_ kernel.Solid) (*kernel.Mesh, error) {
	r.record(Call{Op: "mesh"})
	return &kernel.Mesh{}, nil
}

// rotate applies Euler rotations in degrees, X first, then Y, then Z.
// Results are snapped to 1e-9 so quarter turns stay exact.
func rotate(p [3]float64, x, y, z float64) [3]float64 {
	p = rot(p, x, 1, 2)
	p = rot(p, y, 2, 0)
	p = rot(p, z, 0, 1)
	for i := range p {
		p[i] = math.Round(p[i]*1e9) / 1e9
	}
	return p
}

// rot rotates p by deg in the plane of axes a -> b.
func rot(p [3]float64, deg float64, a, b int) [3]float64 {
	if deg == 0 {
		return p
	}
	sin, cos := math.Sincos(deg * math.Pi / 180)
	pa, pb := p[a], p[b]
	p[a] = pa*cos - pb*sin
	p[b] = pa*sin + pb*cos
	return p
}

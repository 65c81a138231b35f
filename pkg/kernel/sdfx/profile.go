package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/roundex/pkg/geom"
	"github.com/chazu/roundex/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Round builds a polygon from radius points, smoothing every vertex with a
// non-zero radius into an arc of resolution facets. In RoundOpen mode the
// first and last vertices stay sharp.
func (k *SdfxKernel) Round(points geom.Profile, resolution int, mode kernel.RoundMode) (o kernel.Outline, err error) {
	defer recoverShape(&err)

	if len(points) < 3 {
		return nil, fmt.Errorf("round: need at least 3 points, got %d", len(points))
	}
	facets := resolution
	if facets <= 0 {
		facets = defaultFacets
	}

	p := sdf.NewPolygon()
	last := len(points) - 1
	for i, rp := range points {
		v := p.Add(rp.X, rp.Y)
		if rp.R == 0 {
			continue
		}
		if mode == kernel.RoundOpen && (i == 0 || i == last) {
			continue
		}
		v.Smooth(rp.R, facets)
	}
	if mode == kernel.RoundClosed {
		p.Close()
	}

	s, err := sdf.Polygon2D(p.Vertices())
	if err != nil {
		return nil, fmt.Errorf("round: %w", err)
	}
	return &sdfxOutline{s: s}, nil
}

// Extrude sweeps an outline along +Z. R1 fillets the start face and R2 the
// terminal face. Fillets never move the side walls.
func (k *SdfxKernel) Extrude(o kernel.Outline, p kernel.ExtrudeParams) (s kernel.Solid, err error) {
	defer recoverShape(&err)

	s2, err := unwrapOutline(o)
	if err != nil {
		return nil, err
	}

	var s3 sdf.SDF3
	switch {
	case p.Twist != 0:
		if p.R1 != 0 || p.R2 != 0 {
			return nil, fmt.Errorf("%w: twist combined with end-face fillets", ErrUnsupported)
		}
		// Slices only matter for faceted renderers; the SDF twist is smooth.
		s3 = sdf.TwistExtrude3D(s2, p.Length, p.Twist*math.Pi/180.0)
	case p.R1 == p.R2:
		s3, err = roundedExtrude(s2, p.Length, p.R1)
	default:
		s3, err = filletEnds(s2, p.Length, p.R1, p.R2)
	}
	if err != nil {
		return nil, fmt.Errorf("extrude: %w", err)
	}

	// sdfx extrusions are centered on z=0.
	if !p.Center {
		s3 = sdf.Transform3D(s3, sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: p.Length / 2}))
	}
	return wrap(s3), nil
}

// roundedExtrude is a centered extrusion with both faces filleted by r.
// ExtrudeRounded3D grows its outline by the radius, so the outline is
// shrunk by the same amount first.
func roundedExtrude(s2 sdf.SDF2, length, r float64) (sdf.SDF3, error) {
	if r == 0 {
		return sdf.Extrude3D(s2, length), nil
	}
	return sdf.ExtrudeRounded3D(sdf.Offset2D(s2, -r), length, r)
}

// endFillets takes its lower half from one extrusion and its upper half
// from another. The seam sits in the flat band between the two fillets,
// where both fields agree on the side walls.
type endFillets struct {
	lo, hi sdf.SDF3
	seam   float64
	bb     sdf.Box3
}

func (s *endFillets) Evaluate(p v3.Vec) float64 {
	if p.Z < s.seam {
		return s.lo.Evaluate(p)
	}
	return s.hi.Evaluate(p)
}

func (s *endFillets) BoundingBox() sdf.Box3 {
	return s.bb
}

// filletEnds builds a centered extrusion with the start face filleted by r1
// and the terminal face by r2. Each face comes from an extrusion twice as
// long whose other end lies outside the body.
func filletEnds(s2 sdf.SDF2, length, r1, r2 float64) (sdf.SDF3, error) {
	if r1+r2 > length {
		return nil, fmt.Errorf("end fillets %g + %g exceed length %g", r1, r2, length)
	}
	lo, err := roundedExtrude(s2, 2*length, r1)
	if err != nil {
		return nil, fmt.Errorf("start face: %w", err)
	}
	hi, err := roundedExtrude(s2, 2*length, r2)
	if err != nil {
		return nil, fmt.Errorf("end face: %w", err)
	}
	half := length / 2
	bb := s2.BoundingBox()
	return &endFillets{
		lo:   sdf.Transform3D(lo, sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: half})),
		hi:   sdf.Transform3D(hi, sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: -half})),
		seam: (r1 - r2) / 2,
		bb: sdf.Box3{
			Min: v3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: -half},
			Max: v3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: half},
		},
	}, nil
}

// Shell builds the wall between two offsets of an outline. The outer
// boundary is the larger offset with its convex corners rounded to at least
// MinOuterRadius and concave ones to MinInnerRadius; the cut-out is the
// smaller offset, minus any children, rounded the other way round.
func (k *SdfxKernel) Shell(o kernel.Outline, p kernel.ShellParams, children ...kernel.Outline) (out kernel.Outline, err error) {
	defer recoverShape(&err)

	s2, err := unwrapOutline(o)
	if err != nil {
		return nil, err
	}

	outer := sdf.Offset2D(s2, math.Max(p.InnerOffset, p.OuterOffset))
	outer = round2D(outer, p.MinOuterRadius, p.MinInnerRadius)

	inner := sdf.Offset2D(s2, math.Min(p.InnerOffset, p.OuterOffset))
	if len(children) > 0 {
		kids := make([]sdf.SDF2, 0, len(children))
		for i, c := range children {
			cs, err := unwrapOutline(c)
			if err != nil {
				return nil, fmt.Errorf("shell: child %d: %w", i, err)
			}
			kids = append(kids, cs)
		}
		inner = sdf.Difference2D(inner, sdf.Union2D(kids...))
	}
	inner = round2D(inner, p.MinInnerRadius, p.MinOuterRadius)

	return &sdfxOutline{s: sdf.Difference2D(outer, inner)}, nil
}

// round2D rounds convex corners to at least or and concave corners to at
// least ir by offsetting out, in and back out again.
func round2D(s sdf.SDF2, or, ir float64) sdf.SDF2 {
	if or == 0 && ir == 0 {
		return s
	}
	s = sdf.Offset2D(s, ir)
	s = sdf.Offset2D(s, -ir-or)
	return sdf.Offset2D(s, or)
}

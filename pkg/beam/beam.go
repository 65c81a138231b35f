// Package beam generates beam outlines from a centerline path. Each side of
// the path is offset by a constant distance; interior corners are mitred and
// carry an adjusted fillet radius, and the two ends are capped along a
// configurable angle.
package beam

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/roundex/pkg/geom"
	"github.com/chazu/roundex/pkg/kernel"
)

// ErrShortPath is returned when a path has fewer than two points.
var ErrShortPath = errors.New("beam path needs at least two points")

// mitreEps guards against segments that fold back onto themselves.
const mitreEps = 1e-9

// Generator implements kernel.BeamChainer.
type Generator struct{}

var _ kernel.BeamChainer = Generator{}

// BeamChain implements kernel.BeamChainer.
func (Generator) BeamChain(path geom.Profile, p kernel.BeamSpec) (geom.Profile, error) {
	return Chain(path, p)
}

// Chain offsets path by spec.Offset1 and spec.Offset2 along its left normal.
//
// In BeamForwardOnly mode only the Offset1 side is returned, in path order,
// so it can be concatenated with other paths. The other modes return a
// closed outline: forward along Offset1, then back along Offset2.
func Chain(path geom.Profile, spec kernel.BeamSpec) (geom.Profile, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrShortPath, len(path))
	}

	start, end, err := capDirections(path, spec)
	if err != nil {
		return nil, err
	}

	forward := offsetSide(path, spec.Offset1, start, end, spec.MinRadius)
	if spec.Mode == kernel.BeamForwardOnly {
		return forward, nil
	}

	back := offsetSide(path, spec.Offset2, start, end, spec.MinRadius)
	out := make(geom.Profile, 0, len(forward)+len(back))
	out = append(out, forward...)
	for i := len(back) - 1; i >= 0; i-- {
		out = append(out, back[i])
	}
	return out, nil
}

// capDirections returns the unit direction of the cap line at each end.
func capDirections(path geom.Profile, spec kernel.BeamSpec) (start, end geom.Vec2, err error) {
	first := segmentDir(path[0], path[1])
	last := segmentDir(path[len(path)-2], path[len(path)-1])
	if first.Length() == 0 || last.Length() == 0 {
		return start, end, fmt.Errorf("beam path has a zero-length end segment")
	}

	switch spec.Mode {
	case kernel.BeamFreeEnds, kernel.BeamForwardOnly:
		a0 := angleOr(spec.StartAngle, 90)
		a1 := angleOr(spec.EndAngle, 90)
		start = rotateDeg(first, a0)
		end = rotateDeg(last, a1)
	case kernel.BeamAbsoluteAngles:
		start = rotateDeg(geom.Vec2{X: 1}, angleOr(spec.StartAngle, 0))
		end = rotateDeg(geom.Vec2{X: 1}, angleOr(spec.EndAngle, 0))
	default:
		return start, end, fmt.Errorf("unknown beam mode %s", spec.Mode)
	}
	return start, end, nil
}

// offsetSide walks the path and returns its offset on one side.
func offsetSide(path geom.Profile, offset float64, startCap, endCap geom.Vec2, minRadius float64) geom.Profile {
	n := len(path)
	out := make(geom.Profile, n)

	first := segmentDir(path[0], path[1])
	out[0] = capPoint(path[0].XY(), first, startCap, offset)

	for i := 1; i < n-1; i++ {
		in := segmentDir(path[i-1], path[i])
		next := segmentDir(path[i], path[i+1])
		pos := mitre(path[i].XY(), in, next, offset)

		turn := in.Cross(next)
		r := path[i].R
		switch {
		case turn > mitreEps:
			r -= offset // left turn: the left side is the inside of the bend
		case turn < -mitreEps:
			r += offset
		}
		out[i] = geom.RadiusPoint{X: pos.X, Y: pos.Y, R: math.Max(r, math.Max(minRadius, 0))}
	}

	last := segmentDir(path[n-2], path[n-1])
	out[n-1] = capPoint(path[n-1].XY(), last, endCap, offset)
	return out
}

// mitre returns the intersection of the two offset segments meeting at p.
func mitre(p, in, out geom.Vec2, offset float64) geom.Vec2 {
	n0 := in.Perp()
	n1 := out.Perp()
	denom := 1 + n0.Dot(n1)
	if denom < mitreEps || in.Length() == 0 || out.Length() == 0 {
		// The path doubles back: no intersection, use the incoming normal.
		return p.Add(n0.Scale(offset))
	}
	return p.Add(n0.Add(n1).Scale(offset / denom))
}

// capPoint intersects the offset line of a segment with direction dir with
// the cap line through p along capDir. A cap parallel to the segment falls
// back to a square end.
func capPoint(p, dir, capDir geom.Vec2, offset float64) geom.RadiusPoint {
	n := dir.Perp()
	c := capDir.Cross(dir)
	if math.Abs(c) < mitreEps {
		q := p.Add(n.Scale(offset))
		return geom.RadiusPoint{X: q.X, Y: q.Y}
	}
	// Solve p + s*capDir = p + offset*n + t*dir; crossing with dir gives
	// s*(capDir x dir) = offset*(n x dir) = -offset.
	s := -offset / c
	q := p.Add(capDir.Scale(s))
	return geom.RadiusPoint{X: q.X, Y: q.Y}
}

func segmentDir(a, b geom.RadiusPoint) geom.Vec2 {
	return b.XY().Sub(a.XY()).Normalize()
}

func rotateDeg(v geom.Vec2, deg float64) geom.Vec2 {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return geom.Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

func angleOr(a *float64, def float64) float64 {
	if a == nil {
		return def
	}
	return *a
}

// Package geom defines the radius-point profile representation and the
// pure 2D operations on it: normalization of loosely shaped point lists and
// rigid transforms about the Z axis.
package geom

import "math"

// Vec2 is a 2D vector or point.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the 3D cross product v x o.
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

// Length returns the euclidean length of v.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return Vec2{v.X / l, v.Y / l}
}

// Perp returns v rotated 90 degrees counter-clockwise (the left normal).
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Vec3 is a 3D vector. It is used both for translations and for Euler
// rotation triples in degrees.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// RadiusPoint is a profile vertex with the fillet radius used to round it.
// R == 0 is a sharp corner. R is not validated here.
type RadiusPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// XY returns the position of the point.
func (p RadiusPoint) XY() Vec2 { return Vec2{p.X, p.Y} }

// Profile is an ordered list of radius points. The order is the polygon
// winding order; the last point connects back to the first.
type Profile []RadiusPoint

// Points returns the profile as 3-component raw points.
func (p Profile) Points() [][]float64 {
	out := make([][]float64, len(p))
	for i, rp := range p {
		out[i] = []float64{rp.X, rp.Y, rp.R}
	}
	return out
}

// Bounds returns the axis-aligned extent of the profile's positions.
// An empty profile returns zero vectors.
func (p Profile) Bounds() (min, max Vec2) {
	if len(p) == 0 {
		return Vec2{}, Vec2{}
	}
	min = p[0].XY()
	max = min
	for _, rp := range p[1:] {
		min.X = math.Min(min.X, rp.X)
		min.Y = math.Min(min.Y, rp.Y)
		max.X = math.Max(max.X, rp.X)
		max.Y = math.Max(max.Y, rp.Y)
	}
	return min, max
}

// Clone returns a copy of the profile that shares no storage with p.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	copy(out, p)
	return out
}

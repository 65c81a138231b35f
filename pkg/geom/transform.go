package geom

import "math"

// Transform rotates every point about the origin by deg degrees
// (counter-clockwise, about Z) and then translates it by t. Radii are
// unchanged. The result is a new profile of the same length and order.
func Transform(p Profile, t Vec2, deg float64) Profile {
	rad := deg * math.Pi / 180.0
	sin, cos := math.Sincos(rad)

	out := make(Profile, len(p))
	for i, rp := range p {
		out[i] = RadiusPoint{
			X: rp.X*cos - rp.Y*sin + t.X,
			Y: rp.X*sin + rp.Y*cos + t.Y,
			R: rp.R,
		}
	}
	return out
}

// TransformPoints normalizes raw points and transforms them.
func TransformPoints(points [][]float64, t Vec2, deg float64) Profile {
	return Transform(Normalize(points), t, deg)
}

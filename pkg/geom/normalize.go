package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedPoint is returned by NormalizeStrict for points with the wrong
// number of components or non-finite values.
var ErrMalformedPoint = errors.New("malformed point")

// Normalize converts 2- or 3-component points into a Profile. A missing
// radius defaults to 0; a third component is carried through unchanged and
// anything past it is ignored. Points with fewer than two components get
// zeros for the missing coordinates. Nothing is range checked.
func Normalize(points [][]float64) Profile {
	out := make(Profile, len(points))
	for i, pt := range points {
		out[i] = toRadiusPoint(pt)
	}
	return out
}

// NormalizeStrict is Normalize with validation: every point must have
// exactly 2 or 3 finite components.
func NormalizeStrict(points [][]float64) (Profile, error) {
	for i, pt := range points {
		if len(pt) != 2 && len(pt) != 3 {
			return nil, fmt.Errorf("point %d has %d components, want 2 or 3: %w", i, len(pt), ErrMalformedPoint)
		}
		for j, c := range pt {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, fmt.Errorf("point %d component %d is %v: %w", i, j, c, ErrMalformedPoint)
			}
		}
	}
	return Normalize(points), nil
}

func toRadiusPoint(pt []float64) RadiusPoint {
	var rp RadiusPoint
	switch {
	case len(pt) >= 3:
		rp.R = pt[2]
		fallthrough
	case len(pt) == 2:
		rp.Y = pt[1]
		fallthrough
	case len(pt) == 1:
		rp.X = pt[0]
	}
	return rp
}

package plane

import (
	"fmt"

	"github.com/chazu/roundex/pkg/geom"
)

// Mode selects the centering convention of the consumer of a Transform.
type Mode int

const (
	// ModeSolid is for consumers that center along the sweep axis themselves
	// when asked to: centered planes need no extra offset.
	ModeSolid Mode = iota
	// ModeOffset is for the shell and beam paths, which always sweep [0, L].
	// Centered -X and -Z are shifted by half the length; the other centered
	// planes are left where they are.
	ModeOffset
)

func (m Mode) String() string {
	switch m {
	case ModeSolid:
		return "solid"
	case ModeOffset:
		return "offset"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Transform positions a +Z sweep on a plane: rotate by Rotation (Euler
// degrees, X then Y then Z), then translate by Translation.
type Transform struct {
	Translation geom.Vec3 `json:"translation"`
	Rotation    geom.Vec3 `json:"rotation"`
}

// translationRule computes the translation for a sweep of the given length.
type translationRule func(length float64, center bool, mode Mode) geom.Vec3

type entry struct {
	rotation  geom.Vec3
	translate translationRule
}

func none(float64, bool, Mode) geom.Vec3 { return geom.Vec3{} }

var table = map[Plane]entry{
	PlusX: {
		rotation:  geom.Vec3{X: 90, Y: 0, Z: 90},
		translate: none,
	},
	MinusX: {
		rotation: geom.Vec3{X: 90, Y: 0, Z: 90},
		translate: func(length float64, center bool, mode Mode) geom.Vec3 {
			switch {
			case !center:
				return geom.Vec3{X: -length}
			case mode == ModeOffset:
				return geom.Vec3{X: -length / 2}
			}
			return geom.Vec3{}
		},
	},
	PlusY: {
		rotation: geom.Vec3{X: 90, Y: 0, Z: 0},
		translate: func(length float64, center bool, _ Mode) geom.Vec3 {
			if center {
				return geom.Vec3{}
			}
			return geom.Vec3{Y: length}
		},
	},
	MinusY: {
		rotation:  geom.Vec3{X: 90, Y: 0, Z: 0},
		translate: none,
	},
	PlusZ: {
		rotation:  geom.Vec3{},
		translate: none,
	},
	MinusZ: {
		rotation: geom.Vec3{},
		translate: func(length float64, center bool, mode Mode) geom.Vec3 {
			switch {
			case !center:
				return geom.Vec3{Z: -length}
			case mode == ModeOffset:
				return geom.Vec3{Z: -length / 2}
			}
			return geom.Vec3{}
		},
	},
}

// Resolve returns the transform for sweeping length units along p.
// An unrecognized plane is an error; there is no default plane.
func Resolve(p Plane, length float64, center bool, mode Mode) (Transform, error) {
	e, ok := table[p]
	if !ok {
		return Transform{}, fmt.Errorf("%w: %s", ErrInvalidPlane, p)
	}
	return Transform{
		Translation: e.translate(length, center, mode),
		Rotation:    e.rotation,
	}, nil
}

// MustResolve is like Resolve but panics on an invalid plane.
func MustResolve(p Plane, length float64, center bool, mode Mode) Transform {
	t, err := Resolve(p, length, center, mode)
	if err != nil {
		panic(err)
	}
	return t
}

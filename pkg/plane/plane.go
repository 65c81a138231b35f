// Package plane resolves the six named extrusion planes into the rigid
// transform that moves a profile authored in the XY plane, and swept along
// +Z, onto the requested axis and direction.
package plane

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPlane is returned for any plane outside the six recognized ones.
var ErrInvalidPlane = errors.New("invalid plane")

// Plane selects the sweep axis and its sign. The zero value is Invalid.
type Plane int

const (
	Invalid Plane = iota
	PlusX
	MinusX
	PlusY
	MinusY
	PlusZ
	MinusZ
)

var names = map[Plane]string{
	PlusX:  "+X",
	MinusX: "-X",
	PlusY:  "+Y",
	MinusY: "-Y",
	PlusZ:  "+Z",
	MinusZ: "-Z",
}

func (p Plane) String() string {
	if s, ok := names[p]; ok {
		return s
	}
	return fmt.Sprintf("Plane(%d)", int(p))
}

// Valid reports whether p is one of the six planes.
func (p Plane) Valid() bool {
	_, ok := table[p]
	return ok
}

// All returns the six planes in declaration order.
func All() []Plane {
	return []Plane{PlusX, MinusX, PlusY, MinusY, PlusZ, MinusZ}
}

// Parse converts "+X", "-x", ... into a Plane. The sign is mandatory.
func Parse(s string) (Plane, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for p, name := range names {
		if name == want {
			return p, nil
		}
	}
	return Invalid, fmt.Errorf("%w %q, expected one of +X, -X, +Y, -Y, +Z, -Z", ErrInvalidPlane, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Plane) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlane, p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Plane) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

package plane

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/chazu/roundex/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Plane
	}{
		{"+X", PlusX}, {"-X", MinusX},
		{"+Y", PlusY}, {"-Y", MinusY},
		{"+Z", PlusZ}, {"-Z", MinusZ},
		{"+z", PlusZ}, {" -y ", MinusY},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"Q", "", "X", "z", "++X", "+W"} {
		t.Run(in, func(t *testing.T) {
			got, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPlane))
			assert.Equal(t, Invalid, got)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, p := range All() {
		got, err := Parse(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.True(t, p.Valid())
	}
	assert.False(t, Invalid.Valid())
	assert.Equal(t, "Plane(42)", Plane(42).String())
}

func TestJSONText(t *testing.T) {
	b, err := json.Marshal(struct {
		P Plane `json:"p"`
	}{MinusY})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"-Y"}`, string(b))

	var v struct {
		P Plane `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"p":"+x"}`), &v))
	assert.Equal(t, PlusX, v.P)
	assert.Error(t, json.Unmarshal([]byte(`{"p":"Q"}`), &v))
}

func TestResolveTable(t *testing.T) {
	const L = 8.0
	xy := geom.Vec3{X: 90, Y: 0, Z: 90}
	xz := geom.Vec3{X: 90}
	flat := geom.Vec3{}

	tests := []struct {
		plane  Plane
		center bool
		mode   Mode
		trans  geom.Vec3
		rot    geom.Vec3
	}{
		{PlusX, false, ModeSolid, geom.Vec3{}, xy},
		{PlusX, true, ModeSolid, geom.Vec3{}, xy},
		{PlusX, false, ModeOffset, geom.Vec3{}, xy},
		{PlusX, true, ModeOffset, geom.Vec3{}, xy},

		{MinusX, false, ModeSolid, geom.Vec3{X: -L}, xy},
		{MinusX, true, ModeSolid, geom.Vec3{}, xy},
		{MinusX, false, ModeOffset, geom.Vec3{X: -L}, xy},
		{MinusX, true, ModeOffset, geom.Vec3{X: -L / 2}, xy},

		{PlusY, false, ModeSolid, geom.Vec3{Y: L}, xz},
		{PlusY, true, ModeSolid, geom.Vec3{}, xz},
		{PlusY, false, ModeOffset, geom.Vec3{Y: L}, xz},
		{PlusY, true, ModeOffset, geom.Vec3{}, xz},

		{MinusY, false, ModeSolid, geom.Vec3{}, xz},
		{MinusY, true, ModeSolid, geom.Vec3{}, xz},
		{MinusY, false, ModeOffset, geom.Vec3{}, xz},
		{MinusY, true, ModeOffset, geom.Vec3{}, xz},

		{PlusZ, false, ModeSolid, geom.Vec3{}, flat},
		{PlusZ, true, ModeSolid, geom.Vec3{}, flat},
		{PlusZ, false, ModeOffset, geom.Vec3{}, flat},
		{PlusZ, true, ModeOffset, geom.Vec3{}, flat},

		{MinusZ, false, ModeSolid, geom.Vec3{Z: -L}, flat},
		{MinusZ, true, ModeSolid, geom.Vec3{}, flat},
		{MinusZ, false, ModeOffset, geom.Vec3{Z: -L}, flat},
		{MinusZ, true, ModeOffset, geom.Vec3{Z: -L / 2}, flat},
	}
	for _, tt := range tests {
		name := tt.plane.String() + "/" + tt.mode.String()
		if tt.center {
			name += "/centered"
		}
		t.Run(name, func(t *testing.T) {
			got, err := Resolve(tt.plane, L, tt.center, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.trans, got.Translation)
			assert.Equal(t, tt.rot, got.Rotation)
		})
	}
}

// The solid and offset consumers disagree on centered -X/-Z. Both
// conventions are kept as-is.
func TestResolveCenteringConventionsDiffer(t *testing.T) {
	for _, p := range []Plane{MinusX, MinusZ} {
		solid := MustResolve(p, 10, true, ModeSolid)
		offset := MustResolve(p, 10, true, ModeOffset)
		assert.NotEqual(t, solid.Translation, offset.Translation, p.String())
		assert.Equal(t, solid.Rotation, offset.Rotation, p.String())
	}
	for _, p := range []Plane{PlusX, PlusY, MinusY, PlusZ} {
		assert.Equal(t, MustResolve(p, 10, true, ModeSolid), MustResolve(p, 10, true, ModeOffset), p.String())
	}
}

func TestResolveInvalid(t *testing.T) {
	for _, p := range []Plane{Invalid, Plane(7), Plane(-1)} {
		_, err := Resolve(p, 5, false, ModeSolid)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidPlane)
	}
}

func TestMustResolvePanics(t *testing.T) {
	assert.Panics(t, func() { MustResolve(Plane(7), 1, false, ModeSolid) })
	assert.NotPanics(t, func() { MustResolve(PlusZ, 1, false, ModeSolid) })
}

func TestProperty_ResolveDependsOnlyOnInputs(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.SampledFrom(All()).Draw(rt, "plane")
		length := rapid.Float64Range(0, 1e4).Draw(rt, "length")
		center := rapid.Bool().Draw(rt, "center")
		mode := rapid.SampledFrom([]Mode{ModeSolid, ModeOffset}).Draw(rt, "mode")

		a, err := Resolve(p, length, center, mode)
		require.NoError(rt, err)
		b, err := Resolve(p, length, center, mode)
		require.NoError(rt, err)
		assert.Equal(rt, a, b)

		// Translations only ever move along the sweep axis.
		switch p {
		case PlusX, MinusX:
			assert.Zero(rt, a.Translation.Y)
			assert.Zero(rt, a.Translation.Z)
		case PlusY, MinusY:
			assert.Zero(rt, a.Translation.X)
			assert.Zero(rt, a.Translation.Z)
		default:
			assert.Zero(rt, a.Translation.X)
			assert.Zero(rt, a.Translation.Y)
		}
	})
}

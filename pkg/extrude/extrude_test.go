package extrude_test

import (
	"errors"
	"testing"

	"github.com/chazu/roundex/pkg/extrude"
	"github.com/chazu/roundex/pkg/geom"
	"github.com/chazu/roundex/pkg/kernel"
	"github.com/chazu/roundex/pkg/kernel/kerneltest"
	"github.com/chazu/roundex/pkg/plane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var square10 = [][]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

func assertBox(t *testing.T, s kernel.Solid, wantMin, wantMax [3]float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, wantMin[i], min[i], 1e-9, "min[%d]", i)
		assert.InDelta(t, wantMax[i], max[i], 1e-9, "max[%d]", i)
	}
}

func TestSolidFlatPrism(t *testing.T) {
	rec := kerneltest.New()
	e := extrude.New(rec)

	s, err := e.Solid(square10, extrude.SolidParams{Plane: plane.PlusZ, Length: 5})
	require.NoError(t, err)
	assertBox(t, s, [3]float64{0, 0, 0}, [3]float64{10, 10, 5})

	assert.Equal(t, []string{"round", "extrude"}, rec.Ops())
	calls := rec.Calls()
	assert.Equal(t, kernel.RoundClosed, calls[0].Mode)
	assert.Equal(t, extrude.DefaultResolution, calls[0].Res)
	for _, p := range calls[0].Points {
		assert.Zero(t, p.R)
	}
	assert.Equal(t, kernel.ExtrudeParams{
		Length:     5,
		Resolution: extrude.DefaultResolution,
		Convexity:  extrude.DefaultConvexity,
	}, calls[1].Extrude)
}

func TestSolidMinusZ(t *testing.T) {
	rec := kerneltest.New()
	s, err := extrude.New(rec).Solid(square10, extrude.SolidParams{Plane: plane.MinusZ, Length: 5})
	require.NoError(t, err)
	assertBox(t, s, [3]float64{0, 0, -5}, [3]float64{10, 10, 0})
	assert.Equal(t, []string{"round", "extrude", "translate"}, rec.Ops())
}

func TestSolidPlacement(t *testing.T) {
	tests := []struct {
		plane    plane.Plane
		center   bool
		min, max [3]float64
	}{
		{plane.PlusX, false, [3]float64{0, 0, 0}, [3]float64{5, 10, 10}},
		{plane.MinusX, false, [3]float64{-5, 0, 0}, [3]float64{0, 10, 10}},
		{plane.PlusY, false, [3]float64{0, 0, 0}, [3]float64{10, 5, 10}},
		{plane.MinusY, false, [3]float64{0, -5, 0}, [3]float64{10, 0, 10}},
		{plane.PlusZ, false, [3]float64{0, 0, 0}, [3]float64{10, 10, 5}},
		{plane.MinusZ, false, [3]float64{0, 0, -5}, [3]float64{10, 10, 0}},

		{plane.PlusX, true, [3]float64{-2.5, 0, 0}, [3]float64{2.5, 10, 10}},
		{plane.MinusX, true, [3]float64{-2.5, 0, 0}, [3]float64{2.5, 10, 10}},
		{plane.PlusY, true, [3]float64{0, -2.5, 0}, [3]float64{10, 2.5, 10}},
		{plane.MinusY, true, [3]float64{0, -2.5, 0}, [3]float64{10, 2.5, 10}},
		{plane.PlusZ, true, [3]float64{0, 0, -2.5}, [3]float64{10, 10, 2.5}},
		{plane.MinusZ, true, [3]float64{0, 0, -2.5}, [3]float64{10, 10, 2.5}},
	}
	for _, tt := range tests {
		name := tt.plane.String()
		if tt.center {
			name += "/centered"
		}
		t.Run(name, func(t *testing.T) {
			s, err := extrude.New(kerneltest.New()).Solid(square10, extrude.SolidParams{
				Plane:  tt.plane,
				Length: 5,
				Center: tt.center,
			})
			require.NoError(t, err)
			assertBox(t, s, tt.min, tt.max)
		})
	}
}

// Solid extrusion centers inside the kernel while shell and beam extrusion
// shift by half the length afterwards. Both conventions are kept.
func TestCenteringConventionsDiffer(t *testing.T) {
	solidRec := kerneltest.New()
	solid, err := extrude.New(solidRec).Solid(square10, extrude.SolidParams{
		Plane: plane.MinusZ, Length: 6, Center: true,
	})
	require.NoError(t, err)

	shellRec := kerneltest.New()
	shell, err := extrude.New(shellRec).Shell(square10, extrude.ShellParams{
		Plane: plane.MinusZ, Length: 6, Center: true, InnerOffset: -1,
	})
	require.NoError(t, err)

	solidCalls := solidRec.Calls()
	assert.Equal(t, []string{"round", "extrude"}, solidRec.Ops())
	assert.True(t, solidCalls[1].Extrude.Center)

	shellCalls := shellRec.Calls()
	assert.Equal(t, []string{"round", "shell", "extrude", "translate"}, shellRec.Ops())
	assert.False(t, shellCalls[2].Extrude.Center)
	assert.Equal(t, geom.Vec3{Z: -3}, shellCalls[3].Vec)

	// Both land on the same span along the sweep axis.
	_, solidMax := solid.BoundingBox()
	_, shellMax := shell.BoundingBox()
	assert.InDelta(t, 3.0, solidMax[2], 1e-9)
	assert.InDelta(t, 3.0, shellMax[2], 1e-9)

	// +Y centered: the offset convention applies no shift, so the shell
	// stays on the negative side.
	s, err := extrude.New(kerneltest.New()).Shell(square10, extrude.ShellParams{
		Plane: plane.PlusY, Length: 6, Center: true,
	})
	require.NoError(t, err)
	assertBox(t, s, [3]float64{0, -6, 0}, [3]float64{10, 0, 10})
}

func TestInvalidPlaneMakesNoKernelCalls(t *testing.T) {
	bad := []plane.Plane{plane.Invalid, plane.Plane(42)}
	for _, p := range bad {
		rec := kerneltest.New()
		e := extrude.New(rec, extrude.WithBeamChainer(rec))

		_, err := e.Solid(square10, extrude.SolidParams{Plane: p, Length: 5})
		assert.ErrorIs(t, err, plane.ErrInvalidPlane)
		_, err = e.Shell(square10, extrude.ShellParams{Plane: p, Length: 5})
		assert.ErrorIs(t, err, plane.ErrInvalidPlane)
		_, err = e.Beam(square10, extrude.BeamParams{Plane: p, Length: 5})
		assert.ErrorIs(t, err, plane.ErrInvalidPlane)
		_, err = e.Profile(&kerneltest.Outline{}, extrude.ProfileParams{Plane: p, Length: 5})
		assert.ErrorIs(t, err, plane.ErrInvalidPlane)

		assert.Empty(t, rec.Calls(), "plane %d", int(p))
	}

	_, err := plane.Parse("Q")
	assert.ErrorIs(t, err, plane.ErrInvalidPlane)
}

func TestSolidForwardsParameters(t *testing.T) {
	rec := kerneltest.New()
	e := extrude.New(rec, extrude.WithDefaults(24, 4))

	_, err := e.Solid([][]float64{{0, 0, 1}, {10, 0}, {10, 10, 2.5}}, extrude.SolidParams{
		Plane: plane.PlusZ, Length: 8, R1: 1, R2: 2, Twist: 30, Slices: 12,
	})
	require.NoError(t, err)

	calls := rec.Calls()
	assert.Equal(t, geom.Profile{{0, 0, 1}, {10, 0, 0}, {10, 10, 2.5}}, calls[0].Points)
	assert.Equal(t, 24, calls[0].Res)
	assert.Equal(t, kernel.ExtrudeParams{
		Length: 8, R1: 1, R2: 2, Resolution: 24, Convexity: 4, Twist: 30, Slices: 12,
	}, calls[1].Extrude)

	rec = kerneltest.New()
	_, err = extrude.New(rec, extrude.WithDefaults(24, 4)).Solid(square10, extrude.SolidParams{
		Plane: plane.PlusZ, Length: 8, Resolution: 3, Convexity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Calls()[1].Extrude.Resolution)
	assert.Equal(t, 2, rec.Calls()[1].Extrude.Convexity)
}

func TestShellForwardsParameters(t *testing.T) {
	rec := kerneltest.New()
	child := &kerneltest.Outline{Max: [2]float64{1, 1}}
	_, err := extrude.New(rec).Shell(square10, extrude.ShellParams{
		Plane:          plane.PlusZ,
		Length:         4,
		InnerOffset:    -2,
		OuterOffset:    1,
		R1:             0.5,
		MinOuterRadius: 3,
		MinInnerRadius: 1,
		Children:       []kernel.Outline{child},
	})
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, kernel.ShellParams{InnerOffset: -2, OuterOffset: 1, MinOuterRadius: 3, MinInnerRadius: 1}, calls[1].Shell)
	assert.Equal(t, 1, calls[1].NumKids)
	assert.Equal(t, 0.5, calls[2].Extrude.R1)
	assert.False(t, calls[2].Extrude.Center)
	assert.Zero(t, calls[2].Extrude.Twist)
}

func TestBeamDelegatesToChainer(t *testing.T) {
	rec := kerneltest.New()
	e := extrude.New(rec, extrude.WithBeamChainer(rec))
	start := 30.0

	_, err := e.Beam([][]float64{{0, 0}, {10, 0}}, extrude.BeamParams{
		Plane: plane.PlusZ, Length: 3, InnerOffset: 1, OuterOffset: -1, StartAngle: &start, MinRadius: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"beam", "round", "extrude"}, rec.Ops())

	calls := rec.Calls()
	assert.Equal(t, 1.0, calls[0].Beam.Offset1)
	assert.Equal(t, -1.0, calls[0].Beam.Offset2)
	assert.Equal(t, 30.0, *calls[0].Beam.StartAngle)
	assert.Nil(t, calls[0].Beam.EndAngle)
	assert.Equal(t, 0.2, calls[0].Beam.MinRadius)
	assert.Equal(t, kernel.RoundClosed, calls[1].Mode)
	assert.Len(t, calls[1].Points, 4)
}

// A forward-only chain of an open three-point path is handed to the rounding
// engine as plain radius points with sharp ends.
func TestBeamForwardOnly(t *testing.T) {
	rec := kerneltest.New()
	_, err := extrude.New(rec).Beam([][]float64{{0, 0}, {10, 0}, {10, 10}}, extrude.BeamParams{
		Plane: plane.PlusZ, Length: 2, InnerOffset: 1, OuterOffset: 5, Mode: kernel.BeamForwardOnly,
	})
	require.NoError(t, err)

	calls := rec.Calls()
	require.Equal(t, "round", calls[0].Op)
	assert.Equal(t, kernel.RoundOpen, calls[0].Mode)
	want := geom.Profile{{0, 1, 0}, {9, 1, 0}, {9, 10, 0}}
	require.Len(t, calls[0].Points, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, calls[0].Points[i].X, 1e-9)
		assert.InDelta(t, want[i].Y, calls[0].Points[i].Y, 1e-9)
		assert.InDelta(t, want[i].R, calls[0].Points[i].R, 1e-9)
	}
}

func TestProfileSkipsRounding(t *testing.T) {
	rec := kerneltest.New()
	o := &kerneltest.Outline{Max: [2]float64{4, 2}}
	s, err := extrude.New(rec).Profile(o, extrude.ProfileParams{Plane: plane.MinusX, Length: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"extrude", "rotate", "translate"}, rec.Ops())
	assertBox(t, s, [3]float64{-4, 0, 0}, [3]float64{0, 4, 2})
}

func TestKernelErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	rec := kerneltest.New()
	rec.Err = boom
	e := extrude.New(rec, extrude.WithBeamChainer(rec))

	_, err := e.Solid(square10, extrude.SolidParams{Plane: plane.PlusZ, Length: 1})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "extrude solid")

	_, err = e.Shell(square10, extrude.ShellParams{Plane: plane.PlusZ, Length: 1})
	assert.ErrorIs(t, err, boom)

	_, err = e.Beam(square10, extrude.BeamParams{Plane: plane.PlusZ, Length: 1})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "chain")

	_, err = e.Outline(square10, 0)
	assert.ErrorIs(t, err, boom)
}

func TestLogsOperations(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := extrude.New(kerneltest.New(), extrude.WithLogger(zap.New(core)))

	_, err := e.Solid(square10, extrude.SolidParams{Plane: plane.PlusY, Length: 1})
	require.NoError(t, err)

	entries := logs.FilterMessage("extrude solid").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "+Y", entries[0].ContextMap()["plane"])
	assert.Equal(t, int64(4), entries[0].ContextMap()["points"])
}

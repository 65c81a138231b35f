package geom

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		points [][]float64
		want   Profile
	}{
		{"empty", nil, Profile{}},
		{"two components default radius", [][]float64{{1, 2}}, Profile{{1, 2, 0}}},
		{"three components keep radius", [][]float64{{1, 2, 3}}, Profile{{1, 2, 3}}},
		{"excess components ignored", [][]float64{{1, 2, 3, 4, 5}}, Profile{{1, 2, 3}}},
		{"negative radius passes through", [][]float64{{0, 0, -1}}, Profile{{0, 0, -1}}},
		{"short point zero filled", [][]float64{{7}, {}}, Profile{{7, 0, 0}, {0, 0, 0}}},
		{
			"mixed arity keeps order",
			[][]float64{{0, 0}, {10, 0, 2}, {10, 10}, {0, 10, 1}},
			Profile{{0, 0, 0}, {10, 0, 2}, {10, 10, 0}, {0, 10, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.points)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeStrict(t *testing.T) {
	_, err := NormalizeStrict([][]float64{{0, 0}, {1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedPoint))
	assert.Contains(t, err.Error(), "point 1")

	_, err = NormalizeStrict([][]float64{{0, 0, 1, 2}})
	assert.ErrorIs(t, err, ErrMalformedPoint)

	_, err = NormalizeStrict([][]float64{{math.NaN(), 0}})
	assert.ErrorIs(t, err, ErrMalformedPoint)

	_, err = NormalizeStrict([][]float64{{0, math.Inf(1), 0}})
	assert.ErrorIs(t, err, ErrMalformedPoint)

	p, err := NormalizeStrict([][]float64{{0, 0}, {5, 0, 1}})
	require.NoError(t, err)
	assert.Equal(t, Profile{{0, 0, 0}, {5, 0, 1}}, p)
}

func TestProfileBounds(t *testing.T) {
	min, max := Profile{}.Bounds()
	assert.Equal(t, Vec2{}, min)
	assert.Equal(t, Vec2{}, max)

	min, max = Profile{{3, -1, 0}, {-2, 4, 1}, {0, 0, 0}}.Bounds()
	assert.Equal(t, Vec2{-2, -1}, min)
	assert.Equal(t, Vec2{3, 4}, max)
}

func TestProfileClone(t *testing.T) {
	p := Profile{{1, 2, 3}}
	c := p.Clone()
	c[0].X = 99
	assert.Equal(t, 1.0, p[0].X)
	assert.Nil(t, Profile(nil).Clone())
}

func TestTransformRotatesThenTranslates(t *testing.T) {
	got := Transform(Profile{{1, 0, 2}}, Vec2{10, 0}, 90)
	require.Len(t, got, 1)
	assert.InDelta(t, 10, got[0].X, 1e-12)
	assert.InDelta(t, 1, got[0].Y, 1e-12)
	assert.Equal(t, 2.0, got[0].R)
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	p := Profile{{1, 1, 0}}
	_ = Transform(p, Vec2{5, 5}, 45)
	assert.Equal(t, Profile{{1, 1, 0}}, p)
}

func TestTransformPoints(t *testing.T) {
	got := TransformPoints([][]float64{{1, 2}}, Vec2{1, 1}, 0)
	assert.Equal(t, Profile{{2, 3, 0}}, got)
}

// --- properties ---

func drawPoints(t *rapid.T) [][]float64 {
	n := rapid.IntRange(0, 20).Draw(t, "n")
	points := make([][]float64, n)
	for i := range points {
		x := rapid.Float64Range(-1e4, 1e4).Draw(t, fmt.Sprintf("x%d", i))
		y := rapid.Float64Range(-1e4, 1e4).Draw(t, fmt.Sprintf("y%d", i))
		if rapid.Bool().Draw(t, fmt.Sprintf("hasR%d", i)) {
			r := rapid.Float64Range(0, 100).Draw(t, fmt.Sprintf("r%d", i))
			points[i] = []float64{x, y, r}
		} else {
			points[i] = []float64{x, y}
		}
	}
	return points
}

func TestProperty_NormalizeRadius(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		points := drawPoints(rt)
		p := Normalize(points)
		require.Len(rt, p, len(points))
		for i, pt := range points {
			assert.Equal(rt, pt[0], p[i].X)
			assert.Equal(rt, pt[1], p[i].Y)
			if len(pt) == 2 {
				assert.Equal(rt, 0.0, p[i].R, "index %d", i)
			} else {
				assert.Equal(rt, pt[2], p[i].R, "index %d", i)
			}
		}
	})
}

func TestProperty_NormalizeIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := Normalize(drawPoints(rt))
		assert.Equal(rt, p, Normalize(p.Points()))
	})
}

func TestProperty_TransformIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := Normalize(drawPoints(rt))
		assert.Equal(rt, p, Transform(p, Vec2{}, 0))
	})
}

func TestProperty_TransformTranslationComposes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := Normalize(drawPoints(rt))
		t1 := Vec2{rapid.Float64Range(-100, 100).Draw(rt, "t1x"), rapid.Float64Range(-100, 100).Draw(rt, "t1y")}
		t2 := Vec2{rapid.Float64Range(-100, 100).Draw(rt, "t2x"), rapid.Float64Range(-100, 100).Draw(rt, "t2y")}

		twice := Transform(Transform(p, t1, 0), t2, 0)
		once := Transform(p, t1.Add(t2), 0)
		require.Len(rt, twice, len(once))
		for i := range once {
			assert.InDelta(rt, once[i].X, twice[i].X, 1e-9)
			assert.InDelta(rt, once[i].Y, twice[i].Y, 1e-9)
			assert.Equal(rt, once[i].R, twice[i].R)
		}
	})
}

func TestProperty_TransformRotationRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := Normalize(drawPoints(rt))
		theta := rapid.Float64Range(-720, 720).Draw(rt, "theta")

		back := Transform(Transform(p, Vec2{}, theta), Vec2{}, -theta)
		require.Len(rt, back, len(p))
		for i := range p {
			assert.InDelta(rt, p[i].X, back[i].X, 1e-6)
			assert.InDelta(rt, p[i].Y, back[i].Y, 1e-6)
			assert.Equal(rt, p[i].R, back[i].R)
		}
	})
}

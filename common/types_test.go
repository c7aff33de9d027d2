package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElementKindSizeAndString(t *testing.T) {
	cases := []struct {
		kind ElementKind
		size int
		name string
	}{
		{KindInt8, 1, "i8"},
		{KindInt16, 2, "i16"},
		{KindInt32, 4, "i32"},
		{KindInt64, 8, "i64"},
		{KindFloat32, 4, "f32"},
		{KindFloat64, 8, "f64"},
	}
	for _, c := range cases {
		require.Equal(t, c.size, c.kind.Size())
		require.Equal(t, c.name, c.kind.String())
		require.True(t, c.kind.Valid())
	}
}

func TestElementKindInvalid(t *testing.T) {
	k := ElementKind(200)
	require.False(t, k.Valid())
	require.Contains(t, k.String(), "unknown")
}

func TestL1Distance(t *testing.T) {
	p := Point{Coords: []float64{0, 0, 0}}
	q := Point{Coords: []float64{1, -2, 3}}
	require.Equal(t, 6.0, L1Distance(p, q))
}

func TestL1DistanceZeroForIdenticalPoints(t *testing.T) {
	p := Point{Coords: []float64{4.5, -1.2}}
	require.Equal(t, 0.0, L1Distance(p, p))
}

package qalsh

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intellect4all/qalsh-chamfer/common/testutil"
)

func TestDotVectorsSaveLoadRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	dv := NewDotVectors(3, 4, rnd)

	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "dot_vectors.bin")
	require.NoError(t, dv.Save(path))

	loaded, err := LoadDotVectors(path, 3, 4)
	require.NoError(t, err)
	require.Equal(t, dv.V, loaded.V)
}

func TestDotVectorsLoadRejectsWrongSize(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	dv := NewDotVectors(2, 2, rnd)

	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "dot_vectors.bin")
	require.NoError(t, dv.Save(path))

	_, err := LoadDotVectors(path, 3, 3)
	require.Error(t, err)
}

func TestProjectIsDotProduct(t *testing.T) {
	dv := DotVectors{M: 1, D: 3, V: [][]float64{{1, 2, 3}}}
	got := dv.Project(0, []float64{4, 5, 6})
	require.Equal(t, 1*4+2*5+3*6, int(got))
}

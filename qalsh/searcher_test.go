package qalsh

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intellect4all/qalsh-chamfer/bptree"
	"github.com/intellect4all/qalsh-chamfer/common"
	"github.com/intellect4all/qalsh-chamfer/common/testutil"
	"github.com/intellect4all/qalsh-chamfer/pointset"
)

func writePointSet(t *testing.T, path string, kind common.ElementKind, d int, points [][]float64) {
	t.Helper()
	w, err := pointset.NewWriter(path, kind, uint32(d))
	require.NoError(t, err)
	for _, p := range points {
		require.NoError(t, w.AddPoint(p))
	}
	require.NoError(t, w.Close())
}

// TestQalshCorrectnessUnderIdeal degenerates the searcher to its ideal
// case: one hash table per point (m' = N) and collision threshold l = 1.
// Every table holds exactly its one point and Beta*N = 1, so the search
// stops as soon as one point becomes frequent; each query is itself a base
// point, whose table surfaces it at key distance 0 in the first radius,
// so the result matches an ordinary linear scan.
func TestQalshCorrectnessUnderIdeal(t *testing.T) {
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "base.bin")

	points := [][]float64{{0}, {1}, {3}, {7}, {15}}
	writePointSet(t, path, common.KindFloat64, 1, points)

	base, err := pointset.NewDiskReader(path)
	require.NoError(t, err)
	defer base.Close()

	n := len(points)
	dotVectors := DotVectors{M: n, D: 1, V: make([][]float64, n)}
	entriesPerTable := make([][]bptree.Entry, n)
	for j := range dotVectors.V {
		dotVectors.V[j] = []float64{1}
		entriesPerTable[j] = []bptree.Entry{{Key: points[j][0], ID: uint32(j)}}
	}

	cfg := Config{
		ApproximationRatio: 2,
		BucketWidth:        1,
		ErrorProbability:   0.1,
		NumHashTables:      uint32(n),
		CollisionThreshold: 1,
		Beta:               1.0 / float64(n),
	}

	searcher := NewInMemorySearcher(base, cfg, dotVectors, entriesPerTable)

	for _, query := range points {
		result, err := searcher.Search(common.Point{Coords: query})
		require.NoError(t, err)

		wantDist, wantID := nearestL1(points, query)
		require.Equal(t, wantID, int(result.PointID))
		require.Equal(t, wantDist, result.Distance)
	}
}

func nearestL1(points [][]float64, query []float64) (float64, int) {
	best := -1.0
	bestID := -1
	for i, p := range points {
		d := 0.0
		for k, c := range p {
			diff := c - query[k]
			if diff < 0 {
				diff = -diff
			}
			d += diff
		}
		if bestID == -1 || d < best {
			best = d
			bestID = i
		}
	}
	return best, bestID
}

func TestSearcherEmptyResult(t *testing.T) {
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "base.bin")
	writePointSet(t, path, common.KindFloat64, 1, nil)

	base, err := pointset.NewDiskReader(path)
	require.NoError(t, err)
	defer base.Close()

	searcher := NewInMemorySearcher(base, Config{ApproximationRatio: 2, BucketWidth: 1, Beta: 1}, DotVectors{M: 0, D: 1}, nil)
	_, err = searcher.Search(common.Point{Coords: []float64{0}})
	require.ErrorIs(t, err, common.ErrEmptyResult)
}

package chamfer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intellect4all/qalsh-chamfer/common"
)

func TestDefaultSampleCount(t *testing.T) {
	require.Equal(t, 0, DefaultSampleCount(0))
	require.Equal(t, 0, DefaultSampleCount(-5))
	require.Equal(t, int(math.Floor(math.Log(100))), DefaultSampleCount(100))
}

func TestEstimateRejectsZeroSampleCount(t *testing.T) {
	from := writePointSet(t, [][]float64{{0, 0}})
	searcher := NewLinearScanSearcher(from)
	e := NewEstimator(searcher, from, []float64{1}, rand.New(rand.NewSource(1)))

	_, err := e.Estimate(0)
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestEstimateRejectsAllZeroWeights(t *testing.T) {
	from := writePointSet(t, [][]float64{{0, 0}})
	searcher := NewLinearScanSearcher(from)
	e := NewEstimator(searcher, from, []float64{0}, rand.New(rand.NewSource(1)))

	_, err := e.Estimate(5)
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

// TestChamferOfTwoTwoPointSets exercises the exact scenario: A =
// {(0,0),(10,0)}, B = {(1,1),(9,1)}. Every point in A has its nearest B
// neighbor at L1 distance 2, and vice versa. Each directional estimate
// is the SUM of per-point nearest-neighbor distances (2+2=4 each way,
// with uniform weights and a full k=2 sample), so the total is 8.
func TestChamferOfTwoTwoPointSets(t *testing.T) {
	a := writePointSet(t, [][]float64{{0, 0}, {10, 0}})
	b := writePointSet(t, [][]float64{{1, 1}, {9, 1}})

	aToBSearcher := NewLinearScanSearcher(b)
	bToASearcher := NewLinearScanSearcher(a)

	rnd := rand.New(rand.NewSource(1))
	weights := NewUniformWeightSource(2).Weights()

	aToB, err := DirectionalEstimate(aToBSearcher, a, weights, 2, rnd)
	require.NoError(t, err)
	bToA, err := DirectionalEstimate(bToASearcher, b, weights, 2, rnd)
	require.NoError(t, err)

	require.InDelta(t, 4.0, aToB, 1e-9)
	require.InDelta(t, 4.0, bToA, 1e-9)
	require.InDelta(t, 8.0, EstimateTotal(aToB, bToA), 1e-9)
}

// TestChamferOfDisjointFarSets checks a scenario with no overlap: A =
// {(0,0)}, B = {(100,100)}. Each directional sum is 200 (L1, one point
// each side), so the total Chamfer distance is 400.
func TestChamferOfDisjointFarSets(t *testing.T) {
	a := writePointSet(t, [][]float64{{0, 0}})
	b := writePointSet(t, [][]float64{{100, 100}})

	rnd := rand.New(rand.NewSource(2))
	weights := NewUniformWeightSource(1).Weights()

	aToB, err := DirectionalEstimate(NewLinearScanSearcher(b), a, weights, 1, rnd)
	require.NoError(t, err)
	bToA, err := DirectionalEstimate(NewLinearScanSearcher(a), b, weights, 1, rnd)
	require.NoError(t, err)

	require.InDelta(t, 200.0, aToB, 1e-9)
	require.InDelta(t, 200.0, bToA, 1e-9)
	require.InDelta(t, 400.0, EstimateTotal(aToB, bToA), 1e-9)
}

// TestEstimatorConvergesToTrueTotal checks the unbiasedness property over
// many samples: a non-trivial weighting should still converge to the
// true sum of nearest-neighbor distances as k grows large.
func TestEstimatorConvergesToTrueTotal(t *testing.T) {
	points := make([][]float64, 20)
	for i := range points {
		points[i] = []float64{float64(i) * 3}
	}
	from := writePointSet(t, points)
	to := writePointSet(t, [][]float64{{0}})
	searcher := NewLinearScanSearcher(to)

	trueTotal := 0.0
	for _, p := range points {
		trueTotal += p[0]
	}

	weights := make([]float64, len(points))
	for i := range weights {
		weights[i] = 1.0 + float64(i)
	}

	e := NewEstimator(searcher, from, weights, rand.New(rand.NewSource(42)))
	estimate, err := e.Estimate(20000)
	require.NoError(t, err)
	require.InDelta(t, trueTotal, estimate, trueTotal*0.05)
}

package chamfer

import (
	"math/rand"

	"github.com/intellect4all/qalsh-chamfer/pointset"
)

// DirectionalEstimate computes one directional importance-sampling
// estimate (from S to T). If weights are all zero, S and T are identical
// on every query by construction and the estimate is exactly 0, skipping
// sampling entirely.
func DirectionalEstimate(searcher NearestNeighborSearcher, from pointset.Reader, weights []float64, k int, rnd *rand.Rand) (float64, error) {
	if allZero(weights) {
		return 0, nil
	}
	return NewEstimator(searcher, from, weights, rnd).Estimate(k)
}

// EstimateTotal sums the two directional estimates A->B and B->A into the
// total Chamfer distance estimate.
func EstimateTotal(aToB, bToA float64) float64 {
	return aToB + bToA
}

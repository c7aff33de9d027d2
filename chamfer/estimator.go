package chamfer

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
	"github.com/intellect4all/qalsh-chamfer/pointset"
)

// DefaultSampleCount returns the default sample count floor(ln(sSize))
// used when a caller does not request a specific k.
func DefaultSampleCount(sSize int) int {
	if sSize <= 0 {
		return 0
	}
	return int(math.Floor(math.Log(float64(sSize))))
}

// Estimator runs the importance-sampling Chamfer distance estimator:
// sample indices from a proposal distribution (a D-array or a uniform
// source), evaluate each sample's nearest-neighbor distance via searcher
// (exact or c-approximate, depending on the searcher), and reweight.
type Estimator struct {
	searcher NearestNeighborSearcher
	from     pointset.Reader
	weights  []float64
	rnd      *rand.Rand
}

// NewEstimator builds an estimator over from (S), using searcher for the
// per-sample nearest-neighbor evaluation against T and weights as the
// proposal distribution (one entry per point in from). rnd must be
// non-nil; callers inject a seeded source for deterministic tests.
func NewEstimator(searcher NearestNeighborSearcher, from pointset.Reader, weights []float64, rnd *rand.Rand) *Estimator {
	return &Estimator{searcher: searcher, from: from, weights: weights, rnd: rnd}
}

// Estimate draws k samples and returns (sum(weights)/k) * sum(mu_t /
// weights[i_t]). Fails with ErrInvalidConfig when the total weight is 0
// or k is 0. All-zero weights are only possible for the D-array case,
// where it means S and T are identical on every query and the true
// Chamfer contribution is 0 — the caller, not this function, short-
// circuits that case.
func (e *Estimator) Estimate(k int) (float64, error) {
	if k == 0 {
		return 0, errors.Wrap(common.ErrInvalidConfig, "sample count must be > 0")
	}

	sum := 0.0
	for _, w := range e.weights {
		sum += w
	}
	if sum == 0 {
		return 0, errors.Wrap(common.ErrInvalidConfig, "total proposal weight is 0")
	}

	cumulative := make([]float64, len(e.weights))
	running := 0.0
	for i, w := range e.weights {
		running += w
		cumulative[i] = running
	}

	total := 0.0
	for t := 0; t < k; t++ {
		u := e.rnd.Float64() * sum
		i := sort.Search(len(cumulative), func(idx int) bool { return cumulative[idx] >= u })
		if i == len(cumulative) {
			i = len(cumulative) - 1
		}
		// u == 0 lands on the first index whose cumulative weight is >= 0,
		// which can be a zero-weight entry when the D-array has leading
		// zeros. Advance past it: sum > 0 guarantees a later nonzero entry.
		for e.weights[i] == 0 {
			i++
		}

		query, err := e.from.GetPoint(uint32(i))
		if err != nil {
			return 0, err
		}
		result, err := e.searcher.Search(query)
		if err != nil {
			return 0, err
		}

		total += result.Distance / e.weights[i]
	}

	estimate := (sum / float64(k)) * total
	log.Debugw("importance-sampling estimate", "k", k, "sumWeights", sum, "estimate", estimate)
	return estimate, nil
}

// allZero reports whether every weight is 0, meaning S and T are
// identical on every query for an all-zero D-array.
func allZero(weights []float64) bool {
	for _, w := range weights {
		if w != 0 {
			return false
		}
	}
	return true
}

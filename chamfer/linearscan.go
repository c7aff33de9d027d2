package chamfer

import (
	"math"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
	"github.com/intellect4all/qalsh-chamfer/pointset"
	"github.com/intellect4all/qalsh-chamfer/qalsh"
)

// NearestNeighborSearcher is the common surface both qalsh.Searcher and
// LinearScanSearcher satisfy, letting the estimator (and tests) swap a
// c-ANN index for an exact ground-truth oracle.
type NearestNeighborSearcher interface {
	Search(query common.Point) (qalsh.Result, error)
}

// LinearScanSearcher is the exact ground-truth oracle: an exhaustive scan
// over the base set for the true L1 nearest neighbor. Used as the tests'
// ground-truth baseline, never as the production index path.
type LinearScanSearcher struct {
	base pointset.Reader
}

// NewLinearScanSearcher wraps base for exhaustive nearest-neighbor
// queries.
func NewLinearScanSearcher(base pointset.Reader) *LinearScanSearcher {
	return &LinearScanSearcher{base: base}
}

func (s *LinearScanSearcher) Search(query common.Point) (qalsh.Result, error) {
	n := s.base.N()
	if n == 0 {
		return qalsh.Result{}, errors.Wrap(common.ErrEmptyResult, "linear scan: empty base set")
	}
	best := qalsh.Result{Distance: math.Inf(1)}
	for i := uint32(0); i < n; i++ {
		p, err := s.base.GetPoint(i)
		if err != nil {
			return qalsh.Result{}, err
		}
		dist := common.L1Distance(query, p)
		if dist < best.Distance {
			best = qalsh.Result{PointID: i, Distance: dist}
		}
	}
	return best, nil
}

// Package qalsh implements query-aware locality-sensitive hashing: the
// parameter derivation, dot-vector sampling, hash-table abstractions, and
// the c-approximate nearest-neighbor searcher built on top of the bptree
// package's disk-resident indices.
package qalsh

import (
	"encoding/json"
	"math"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/bptree"
	"github.com/intellect4all/qalsh-chamfer/common"
)

var log = logging.Logger("qalsh")

// defaultNumCandidates is the numerator of the default frequent-set
// fraction beta = defaultNumCandidates / n.
const defaultNumCandidates = 100

// defaultErrorProbability is delta's default value, 1/e.
var defaultErrorProbability = 1.0 / math.E

// Config is the QALSH parameter set: the approximation ratio and error
// tolerances a caller chooses, plus the bucket width, table count, and
// collision threshold Regularize derives from them.
type Config struct {
	ApproximationRatio float64 `json:"approximation_ratio"`
	BucketWidth        float64 `json:"bucket_width"`
	ErrorProbability   float64 `json:"error_probability"`
	NumHashTables      uint32  `json:"num_hash_tables"`
	CollisionThreshold uint32  `json:"collision_threshold"`
	PageSize           uint32  `json:"page_size"`

	// Beta is the frequent-set fraction (|F| >= Beta*N terminates the
	// searcher's outer loop). It is derived, not persisted: it is
	// implicitly defaultNumCandidates/N, so it is recomputed from the
	// point count at Regularize time and kept only for the searcher's own
	// use within one process.
	Beta float64 `json:"-"`
}

// NewConfig returns a Config with the given approximation ratio and the
// default error probability, ready for Regularize. ApproximationRatio
// must be > 1; an invalid value is caught by Regularize, not here, so
// callers can freely construct a zero-value Config field by field before
// regularizing.
func NewConfig(approximationRatio float64, pageSize uint32) Config {
	return Config{
		ApproximationRatio: approximationRatio,
		ErrorProbability:   defaultErrorProbability,
		PageSize:           pageSize,
	}
}

// Regularize derives BucketWidth, NumHashTables, and CollisionThreshold
// for an index of numPoints points, following the QALSH formulas: w =
// 2*sqrt(c); beta = defaultNumCandidates/n; m = ceil((sqrt(ln(2/beta)) +
// sqrt(ln(1/delta)))^2 / (2*(p1-p2)^2)) with p1 = (2/pi)*atan(w/2), p2 =
// (2/pi)*atan(w/(2c)); l = ceil(alpha*m) with eta =
// sqrt(ln(2/beta))/sqrt(ln(1/delta)), alpha = (eta*p1+p2)/(1+eta).
//
// A caller-supplied non-zero BucketWidth, NumHashTables, or
// CollisionThreshold overrides the corresponding derived value, letting a
// researcher sweep one parameter while the rest stay derived. Fails with
// ErrInvalidConfig when ApproximationRatio <= 1 or ErrorProbability is
// not in (0, 1), or when the resulting NumHashTables is 0.
func (c *Config) Regularize(numPoints uint32) error {
	if c.ApproximationRatio <= 1 {
		return errors.Wrapf(common.ErrInvalidConfig, "approximation ratio %g must be > 1", c.ApproximationRatio)
	}
	if c.ErrorProbability <= 0 || c.ErrorProbability >= 1 {
		return errors.Wrapf(common.ErrInvalidConfig, "error probability %g must be in (0, 1)", c.ErrorProbability)
	}
	if numPoints == 0 {
		return errors.Wrap(common.ErrInvalidConfig, "cannot regularize qalsh config for zero points")
	}
	if c.PageSize == 0 {
		c.PageSize = bptree.PageSize
	}

	overrideWidth := c.BucketWidth
	overrideTables := c.NumHashTables
	overrideThreshold := c.CollisionThreshold

	c.Beta = defaultNumCandidates / float64(numPoints)

	bucketWidth := 2.0 * math.Sqrt(c.ApproximationRatio)
	if overrideWidth != 0 {
		bucketWidth = overrideWidth
	}
	c.BucketWidth = bucketWidth

	term1 := math.Sqrt(math.Log(2.0 / c.Beta))
	term2 := math.Sqrt(math.Log(1.0 / c.ErrorProbability))
	p1 := 2.0 / math.Pi * math.Atan(bucketWidth/2.0)
	p2 := 2.0 / math.Pi * math.Atan(bucketWidth/(2.0*c.ApproximationRatio))

	numTables := uint32(math.Ceil(math.Pow(term1+term2, 2.0) / (2.0 * math.Pow(p1-p2, 2.0))))
	if overrideTables != 0 {
		numTables = overrideTables
	}
	c.NumHashTables = numTables
	if c.NumHashTables == 0 {
		return errors.Wrap(common.ErrInvalidConfig, "regularized configuration has zero hash tables")
	}

	eta := term1 / term2
	alpha := (eta*p1 + p2) / (1 + eta)
	threshold := uint32(math.Ceil(alpha * float64(c.NumHashTables)))
	if overrideThreshold != 0 {
		threshold = overrideThreshold
	}
	c.CollisionThreshold = threshold

	log.Debugw("regularized qalsh config",
		"numPoints", numPoints, "c", c.ApproximationRatio, "w", c.BucketWidth,
		"m", c.NumHashTables, "l", c.CollisionThreshold, "beta", c.Beta)

	return nil
}

// Save writes the configuration as JSON to path.
func (c Config) Save(path string) error {
	buf, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling qalsh configuration")
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.Wrapf(common.ErrIO, "writing qalsh config %s: %v", path, err)
	}
	return nil
}

// LoadConfig reads and parses a JSON configuration file previously
// written by Save. Beta is not persisted and must be recomputed by a
// subsequent Regularize call if the caller needs it.
func LoadConfig(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(common.ErrIO, "reading qalsh config %s: %v", path, err)
	}
	var c Config
	if err := json.Unmarshal(buf, &c); err != nil {
		return Config{}, errors.Wrapf(common.ErrFormat, "parsing qalsh config %s: %v", path, err)
	}
	return c, nil
}

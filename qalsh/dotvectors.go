package qalsh

import (
	"encoding/binary"
	"math"
	"math/rand"
	"os"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
)

// DotVectors holds the m projection vectors (each of dimension d) used to
// hash points into the m QALSH tables. Each coordinate is drawn from the
// standard Cauchy distribution; the source of randomness is injectable so
// tests are deterministic.
type DotVectors struct {
	M int
	D int
	V [][]float64
}

// cauchySample draws one standard-Cauchy variate from r via inverse-CDF:
// X = tan(pi*(U - 0.5)) for U ~ Uniform(0,1).
func cauchySample(r *rand.Rand) float64 {
	return math.Tan(math.Pi * (r.Float64() - 0.5))
}

// NewDotVectors draws m vectors of dimension d, each coordinate an
// independent standard-Cauchy variate from r.
func NewDotVectors(m, d int, r *rand.Rand) DotVectors {
	v := make([][]float64, m)
	for j := range v {
		row := make([]float64, d)
		for i := range row {
			row[i] = cauchySample(r)
		}
		v[j] = row
	}
	return DotVectors{M: m, D: d, V: v}
}

// Project computes the dot product of coords against dot vector j.
func (dv DotVectors) Project(j int, coords []float64) float64 {
	sum := 0.0
	row := dv.V[j]
	for i, c := range coords {
		sum += c * row[i]
	}
	return sum
}

// Save writes the dot vectors as m*d little-endian doubles, row-major.
func (dv DotVectors) Save(path string) error {
	buf := make([]byte, dv.M*dv.D*8)
	off := 0
	for _, row := range dv.V {
		for _, x := range row {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(x))
			off += 8
		}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.Wrapf(common.ErrIO, "writing dot vectors %s: %v", path, err)
	}
	return nil
}

// LoadDotVectors reads a dot-vectors file written by Save. m and d must
// be known ahead of time (they come from the accompanying config and
// point-set header).
func LoadDotVectors(path string, m, d int) (DotVectors, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return DotVectors{}, errors.Wrapf(common.ErrIO, "reading dot vectors %s: %v", path, err)
	}
	want := m * d * 8
	if len(buf) != want {
		return DotVectors{}, errors.Wrapf(common.ErrFormat, "dot vectors %s is %d bytes, want %d", path, len(buf), want)
	}
	v := make([][]float64, m)
	off := 0
	for j := range v {
		row := make([]float64, d)
		for i := range row {
			row[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
			off += 8
		}
		v[j] = row
	}
	return DotVectors{M: m, D: d, V: v}, nil
}

// Package chamfer implements the D-array builder and the
// importance-sampling Chamfer distance estimator on top of an opened
// QALSH index.
package chamfer

import (
	"encoding/binary"
	"math"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
	"github.com/intellect4all/qalsh-chamfer/pointset"
	"github.com/intellect4all/qalsh-chamfer/qalsh"
)

var log = logging.Logger("chamfer")

// BuildDArray runs the c-ANN searcher for every point in from (S) against
// the indexed set to (T) and records each point's best found distance.
// Idempotent: re-running overwrites.
func BuildDArray(searcher *qalsh.Searcher, from pointset.Reader) ([]float64, error) {
	n := from.N()
	d := make([]float64, n)
	for i := uint32(0); i < n; i++ {
		p, err := from.GetPoint(i)
		if err != nil {
			return nil, err
		}
		result, err := searcher.Search(p)
		if err != nil {
			return nil, err
		}
		d[i] = result.Distance
	}
	log.Debugw("built d-array", "n", n)
	return d, nil
}

// SaveDArray writes d as N little-endian doubles.
func SaveDArray(path string, d []float64) error {
	buf := make([]byte, len(d)*8)
	for i, v := range d {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.Wrapf(common.ErrIO, "writing d-array %s: %v", path, err)
	}
	return nil
}

// LoadDArray reads a D-array file previously written by SaveDArray.
func LoadDArray(path string) ([]float64, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(common.ErrIO, "reading d-array %s: %v", path, err)
	}
	if len(buf)%8 != 0 {
		return nil, errors.Wrapf(common.ErrFormat, "d-array %s has %d bytes, not a multiple of 8", path, len(buf))
	}
	d := make([]float64, len(buf)/8)
	for i := range d {
		d[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return d, nil
}

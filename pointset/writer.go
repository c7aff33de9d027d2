package pointset

import (
	"os"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
)

// Writer appends points to a new point-set file in construction order.
// Each point is written to the file as it is added; the header (which
// needs the final point count) is written on Close.
type Writer struct {
	file   *os.File
	kind   common.ElementKind
	d      uint32
	n      uint32
	encode encodeFunc
	stride int
}

// NewWriter creates path, truncating any existing contents, and reserves
// space for the header to be backfilled on Close.
func NewWriter(path string, kind common.ElementKind, d uint32) (*Writer, error) {
	encode, err := encodeFuncFor(kind)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(common.ErrIO, "creating point set %s: %v", path, err)
	}
	if _, err := f.Write(make([]byte, HeaderSize)); err != nil {
		f.Close()
		return nil, errors.Wrapf(common.ErrIO, "reserving header %s: %v", path, err)
	}
	return &Writer{file: f, kind: kind, d: d, encode: encode, stride: int(d) * kind.Size()}, nil
}

// AddPoint appends one point. len(coords) must equal the writer's declared
// dimension.
func (w *Writer) AddPoint(coords []float64) error {
	if uint32(len(coords)) != w.d {
		return errors.Wrapf(common.ErrFormat, "point has %d coordinates, writer declared d=%d", len(coords), w.d)
	}
	buf := make([]byte, w.stride)
	w.encode(buf, coords)
	if _, err := w.file.Write(buf); err != nil {
		return errors.Wrap(common.ErrIO, err.Error())
	}
	w.n++
	return nil
}

// Close backfills the header with the final point count and closes the
// file.
func (w *Writer) Close() error {
	header := EncodeHeader(Header{Kind: w.kind, N: w.n, D: w.d})
	if _, err := w.file.WriteAt(header, 0); err != nil {
		w.file.Close()
		return errors.Wrap(common.ErrIO, err.Error())
	}
	return w.file.Close()
}

package pointset

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
)

var log = logging.Logger("pointset")

// Reader exposes random-access retrieval over an immutable point set.
// Implementations are safe for concurrent GetPoint calls from multiple
// goroutines provided each DiskReader owns its own *os.File (the in-memory
// variant is always safe, since it never touches the disk after
// construction).
type Reader interface {
	N() uint32
	D() uint32
	Kind() common.ElementKind
	GetPoint(i uint32) (common.Point, error)
}

// InMemoryReader loads the entire point-set payload on construction,
// giving O(1) GetPoint thereafter.
type InMemoryReader struct {
	header Header
	decode decodeFunc
	// points holds every point's decoded coordinates; points[i] is point i.
	points [][]float64
}

// NewInMemoryReader reads path fully into memory and decodes every point
// eagerly.
func NewInMemoryReader(path string) (*InMemoryReader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(common.ErrIO, "reading point set %s: %v", path, err)
	}
	if len(raw) < HeaderSize {
		return nil, errors.Wrapf(common.ErrFormat, "point set %s: file shorter than header", path)
	}
	header, err := DecodeHeader(raw[:HeaderSize])
	if err != nil {
		return nil, errors.Wrapf(err, "point set %s", path)
	}
	decode, err := decodeFuncFor(header.Kind)
	if err != nil {
		return nil, errors.Wrapf(err, "point set %s", path)
	}

	scalarSize := header.Kind.Size()
	stride := int(header.D) * scalarSize
	want := HeaderSize + int(header.N)*stride
	if len(raw) < want {
		return nil, errors.Wrapf(common.ErrFormat, "point set %s: payload shorter than N*d*sizeof(element)", path)
	}

	points := make([][]float64, header.N)
	offset := HeaderSize
	for i := range points {
		points[i] = decode(raw[offset:offset+stride], int(header.D))
		offset += stride
	}

	log.Debugw("loaded point set into memory", "path", path, "n", header.N, "d", header.D, "kind", header.Kind.String())

	return &InMemoryReader{header: header, decode: decode, points: points}, nil
}

func (r *InMemoryReader) N() uint32               { return r.header.N }
func (r *InMemoryReader) D() uint32               { return r.header.D }
func (r *InMemoryReader) Kind() common.ElementKind { return r.header.Kind }

// GetPoint returns the i'th point. Fails with ErrOutOfRange when i >= N.
func (r *InMemoryReader) GetPoint(i uint32) (common.Point, error) {
	if i >= r.header.N {
		return common.Point{}, errors.Wrapf(common.ErrOutOfRange, "point id %d >= N=%d", i, r.header.N)
	}
	return common.Point{Coords: r.points[i], ID: i}, nil
}

// DiskReader decodes one point's worth of bytes per GetPoint call, seeking
// to header-size + i*d*sizeof(element) each time. No caching: repeated
// access to the same point re-reads from disk.
type DiskReader struct {
	file   *os.File
	header Header
	decode decodeFunc
	stride int
}

// NewDiskReader opens path and reads only its header; points are decoded
// lazily on GetPoint.
func NewDiskReader(path string) (*DiskReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(common.ErrIO, "opening point set %s: %v", path, err)
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBuf, 0); err != nil {
		f.Close()
		return nil, errors.Wrapf(common.ErrIO, "reading point set header %s: %v", path, err)
	}
	header, err := DecodeHeader(headerBuf)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "point set %s", path)
	}
	decode, err := decodeFuncFor(header.Kind)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "point set %s", path)
	}

	return &DiskReader{
		file:   f,
		header: header,
		decode: decode,
		stride: int(header.D) * header.Kind.Size(),
	}, nil
}

func (r *DiskReader) N() uint32               { return r.header.N }
func (r *DiskReader) D() uint32               { return r.header.D }
func (r *DiskReader) Kind() common.ElementKind { return r.header.Kind }

// GetPoint seeks to this point's offset and decodes it fresh.
func (r *DiskReader) GetPoint(i uint32) (common.Point, error) {
	if i >= r.header.N {
		return common.Point{}, errors.Wrapf(common.ErrOutOfRange, "point id %d >= N=%d", i, r.header.N)
	}
	offset := int64(HeaderSize) + int64(i)*int64(r.stride)
	raw := make([]byte, r.stride)
	if _, err := r.file.ReadAt(raw, offset); err != nil {
		return common.Point{}, errors.Wrapf(common.ErrIO, "reading point %d: %v", i, err)
	}
	return common.Point{Coords: r.decode(raw, int(r.header.D)), ID: i}, nil
}

// Close releases the underlying file handle.
func (r *DiskReader) Close() error {
	return r.file.Close()
}

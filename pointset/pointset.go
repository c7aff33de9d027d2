// Package pointset implements random-access typed vector retrieval over
// the point-set file format: a 1-byte element-kind tag, a 4-byte
// little-endian point count, a 4-byte little-endian dimension, followed
// by N*d packed scalars of the declared kind, little-endian.
//
// Two reader variants implement the same Reader contract: InMemoryReader
// loads the whole payload once and decodes in O(1) per GetPoint; DiskReader
// seeks and decodes one point's worth of bytes per call. Both resolve their
// decode function once at construction time from the header's element
// kind, never per point, so the per-point path is a single typed loop.
package pointset

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
)

// HeaderSize is the fixed size, in bytes, of the point-set file header:
// kind tag (1) + N (4) + d (4).
const HeaderSize = 1 + 4 + 4

// Header is the decoded point-set file header.
type Header struct {
	Kind common.ElementKind
	N    uint32
	D    uint32
}

// EncodeHeader serializes h into the fixed 9-byte wire layout.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = byte(h.Kind)
	binary.LittleEndian.PutUint32(buf[1:5], h.N)
	binary.LittleEndian.PutUint32(buf[5:9], h.D)
	return buf
}

// DecodeHeader parses the fixed 9-byte header layout, rejecting unknown
// element-kind tags.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.Wrap(common.ErrFormat, "point-set header truncated")
	}
	kind := common.ElementKind(buf[0])
	if !kind.Valid() {
		return Header{}, errors.Wrapf(common.ErrFormat, "unknown element kind tag %d", buf[0])
	}
	return Header{
		Kind: kind,
		N:    binary.LittleEndian.Uint32(buf[1:5]),
		D:    binary.LittleEndian.Uint32(buf[5:9]),
	}, nil
}

// decodeFunc widens a single point's raw little-endian bytes (d scalars of
// the reader's element kind) into a freshly allocated float64 slice.
type decodeFunc func(raw []byte, d int) []float64

// decodeFuncFor resolves the decode routine for kind once; callers store
// the result and reuse it for every point in the set.
func decodeFuncFor(kind common.ElementKind) (decodeFunc, error) {
	switch kind {
	case common.KindInt8:
		return func(raw []byte, d int) []float64 {
			out := make([]float64, d)
			for i := 0; i < d; i++ {
				out[i] = float64(int8(raw[i]))
			}
			return out
		}, nil
	case common.KindInt16:
		return func(raw []byte, d int) []float64 {
			out := make([]float64, d)
			for i := 0; i < d; i++ {
				out[i] = float64(int16(binary.LittleEndian.Uint16(raw[i*2:])))
			}
			return out
		}, nil
	case common.KindInt32:
		return func(raw []byte, d int) []float64 {
			out := make([]float64, d)
			for i := 0; i < d; i++ {
				out[i] = float64(int32(binary.LittleEndian.Uint32(raw[i*4:])))
			}
			return out
		}, nil
	case common.KindInt64:
		return func(raw []byte, d int) []float64 {
			out := make([]float64, d)
			for i := 0; i < d; i++ {
				out[i] = float64(int64(binary.LittleEndian.Uint64(raw[i*8:])))
			}
			return out
		}, nil
	case common.KindFloat32:
		return func(raw []byte, d int) []float64 {
			out := make([]float64, d)
			for i := 0; i < d; i++ {
				bits := binary.LittleEndian.Uint32(raw[i*4:])
				out[i] = float64(float32FromBits(bits))
			}
			return out
		}, nil
	case common.KindFloat64:
		return func(raw []byte, d int) []float64 {
			out := make([]float64, d)
			for i := 0; i < d; i++ {
				bits := binary.LittleEndian.Uint64(raw[i*8:])
				out[i] = float64FromBits(bits)
			}
			return out
		}, nil
	default:
		return nil, errors.Wrapf(common.ErrFormat, "unsupported element kind %s", kind)
	}
}

// encodeFunc narrows a float64 slice back into the raw little-endian bytes
// for this reader's element kind, for the writer side.
type encodeFunc func(dst []byte, coords []float64)

func encodeFuncFor(kind common.ElementKind) (encodeFunc, error) {
	switch kind {
	case common.KindInt8:
		return func(dst []byte, coords []float64) {
			for i, c := range coords {
				dst[i] = byte(int8(c))
			}
		}, nil
	case common.KindInt16:
		return func(dst []byte, coords []float64) {
			for i, c := range coords {
				binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(c)))
			}
		}, nil
	case common.KindInt32:
		return func(dst []byte, coords []float64) {
			for i, c := range coords {
				binary.LittleEndian.PutUint32(dst[i*4:], uint32(int32(c)))
			}
		}, nil
	case common.KindInt64:
		return func(dst []byte, coords []float64) {
			for i, c := range coords {
				binary.LittleEndian.PutUint64(dst[i*8:], uint64(int64(c)))
			}
		}, nil
	case common.KindFloat32:
		return func(dst []byte, coords []float64) {
			for i, c := range coords {
				binary.LittleEndian.PutUint32(dst[i*4:], float32Bits(float32(c)))
			}
		}, nil
	case common.KindFloat64:
		return func(dst []byte, coords []float64) {
			for i, c := range coords {
				binary.LittleEndian.PutUint64(dst[i*8:], float64Bits(c))
			}
		}, nil
	default:
		return nil, errors.Wrapf(common.ErrFormat, "unsupported element kind %s", kind)
	}
}

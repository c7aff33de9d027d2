// Package bptree implements the disk-resident, bulk-loaded B+ tree that
// backs one QALSH hash table. Unlike a general-purpose B-tree, this tree
// is built once in a single sequential pass over pre-sorted (key, id)
// pairs and is never mutated afterward: there is no split, merge, WAL, or
// latch manager, because online insertion/deletion is out of scope.
//
// Page 0 of every tree file is reserved for the file header. Internal
// nodes store ascending double keys and uint32 child page numbers; leaves
// store ascending double keys, uint32 point ids, and the page numbers of
// their left/right neighbors in the leaf chain. All multi-byte values are
// little-endian.
package bptree

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
)

// PageSize is the default page size used when a caller does not override
// it.
const PageSize = 4096

const (
	keySize    = 8 // float64
	ptrSize    = 4 // uint32 page number / point id

	// headerPageFieldCount is the number of uint32 fields in page 0:
	// root page, level, internal fanout, leaf fanout.
	headerPageFieldCount = 4

	// internalHeaderSize is the fixed prefix of an internal node page:
	// a single uint32 child count.
	internalHeaderSize = 4

	// leafHeaderSize is the fixed prefix of a leaf node page: entry
	// count, prev-leaf page number, next-leaf page number.
	leafHeaderSize = 4 + 4 + 4
)

// FileHeader is the decoded contents of page 0.
type FileHeader struct {
	RootPage       uint32
	Level          uint32 // leaf depth from root; 0 means the root is a leaf
	InternalFanout uint32
	LeafFanout     uint32
}

// Fanouts returns the maximum child count of an internal node and the
// maximum entry count of a leaf for the given page size:
// internal-fanout = floor((B-4+8)/(8+4)), leaf-fanout = floor((B-12)/(8+4)).
func Fanouts(pageSize int) (internal, leaf int) {
	internal = (pageSize - internalHeaderSize + keySize) / (keySize + ptrSize)
	leaf = (pageSize - leafHeaderSize) / (keySize + ptrSize)
	return internal, leaf
}

func encodeFileHeader(h FileHeader, pageSize int) []byte {
	buf := make([]byte, pageSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.RootPage)
	binary.LittleEndian.PutUint32(buf[4:8], h.Level)
	binary.LittleEndian.PutUint32(buf[8:12], h.InternalFanout)
	binary.LittleEndian.PutUint32(buf[12:16], h.LeafFanout)
	return buf
}

func decodeFileHeader(buf []byte) (FileHeader, error) {
	if len(buf) < headerPageFieldCount*4 {
		return FileHeader{}, errors.Wrap(common.ErrFormat, "b+tree file header truncated")
	}
	return FileHeader{
		RootPage:       binary.LittleEndian.Uint32(buf[0:4]),
		Level:          binary.LittleEndian.Uint32(buf[4:8]),
		InternalFanout: binary.LittleEndian.Uint32(buf[8:12]),
		LeafFanout:     binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// internalNode is an in-memory view of one internal page: child-count-1
// ascending keys and child-count page pointers, with pointers[i] covering
// the key range [keys[i-1], keys[i]) (keys[-1] = -inf, keys[n] = +inf).
type internalNode struct {
	keys     []float64
	pointers []uint32
}

func encodeInternalNode(n internalNode, pageSize int) []byte {
	buf := make([]byte, pageSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(n.pointers)))
	off := internalHeaderSize
	for _, k := range n.keys {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(k))
		off += keySize
	}
	for _, p := range n.pointers {
		binary.LittleEndian.PutUint32(buf[off:], p)
		off += ptrSize
	}
	return buf
}

func decodeInternalNode(buf []byte) internalNode {
	childCount := binary.LittleEndian.Uint32(buf[0:4])
	off := internalHeaderSize
	keys := make([]float64, childCount-1)
	for i := range keys {
		keys[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
		off += keySize
	}
	pointers := make([]uint32, childCount)
	for i := range pointers {
		pointers[i] = binary.LittleEndian.Uint32(buf[off:])
		off += ptrSize
	}
	return internalNode{keys: keys, pointers: pointers}
}

// leafNode is an in-memory view of one leaf page: ascending keys, their
// point ids, and the page numbers of the previous/next leaves in the
// doubly-linked chain (0 meaning "none").
type leafNode struct {
	keys     []float64
	ids      []uint32
	prevPage uint32
	nextPage uint32
}

func encodeLeafNode(n leafNode, pageSize int) []byte {
	buf := make([]byte, pageSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(n.keys)))
	binary.LittleEndian.PutUint32(buf[4:8], n.prevPage)
	binary.LittleEndian.PutUint32(buf[8:12], n.nextPage)
	off := leafHeaderSize
	for _, k := range n.keys {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(k))
		off += keySize
	}
	for _, id := range n.ids {
		binary.LittleEndian.PutUint32(buf[off:], id)
		off += ptrSize
	}
	return buf
}

func decodeLeafNode(buf []byte) leafNode {
	entryCount := binary.LittleEndian.Uint32(buf[0:4])
	prev := binary.LittleEndian.Uint32(buf[4:8])
	next := binary.LittleEndian.Uint32(buf[8:12])
	off := leafHeaderSize
	keys := make([]float64, entryCount)
	for i := range keys {
		keys[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
		off += keySize
	}
	ids := make([]uint32, entryCount)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint32(buf[off:])
		off += ptrSize
	}
	return leafNode{keys: keys, ids: ids, prevPage: prev, nextPage: next}
}

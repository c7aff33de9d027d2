package qalsh

import (
	"sort"

	"github.com/intellect4all/qalsh-chamfer/bptree"
)

// HashTable is one QALSH projection table: given a projected query key,
// it drains candidate point ids outward in both directions under a
// growing bound. DiskHashTable and InMemoryHashTable share this contract
// so the searcher does not care which backs a given table.
type HashTable interface {
	Init(q float64) error
	LeftFindNext(bound float64) (uint32, bool, error)
	RightFindNext(bound float64) (uint32, bool, error)
	Close() error
}

// DiskHashTable is a HashTable backed by a disk-resident B+ tree file,
// via bptree.Cursor.
type DiskHashTable struct {
	cursor *bptree.Cursor
}

// OpenDiskHashTable opens the B+ tree file at path, built with the given
// page size.
func OpenDiskHashTable(path string, pageSize int) (*DiskHashTable, error) {
	cursor, err := bptree.OpenCursor(path, pageSize)
	if err != nil {
		return nil, err
	}
	return &DiskHashTable{cursor: cursor}, nil
}

func (h *DiskHashTable) Init(q float64) error { return h.cursor.Init(q) }

func (h *DiskHashTable) LeftFindNext(bound float64) (uint32, bool, error) {
	return h.cursor.LeftFindNext(bound)
}

func (h *DiskHashTable) RightFindNext(bound float64) (uint32, bool, error) {
	return h.cursor.RightFindNext(bound)
}

func (h *DiskHashTable) Close() error { return h.cursor.Close() }

// InMemoryHashTable keeps all (key, id) pairs sorted in memory and
// binary-searches them, skipping B+ tree I/O entirely. Useful for small
// test fixtures; its ascending key order is the same order BuildIndex
// sorts the disk variant's bulk-load input into.
type InMemoryHashTable struct {
	keys []float64
	ids  []uint32

	key         float64
	leftIndex   int
	rightIndex  int
	hasLeft     bool
	hasRight    bool
}

// NewInMemoryHashTable sorts entries ascending by key and builds a table
// over them. entries need not already be sorted.
func NewInMemoryHashTable(entries []bptree.Entry) *InMemoryHashTable {
	sorted := make([]bptree.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	t := &InMemoryHashTable{
		keys: make([]float64, len(sorted)),
		ids:  make([]uint32, len(sorted)),
	}
	for i, e := range sorted {
		t.keys[i] = e.Key
		t.ids[i] = e.ID
	}
	return t
}

func (t *InMemoryHashTable) Init(q float64) error {
	t.key = q
	j := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= q })

	t.hasRight = j < len(t.keys)
	if t.hasRight {
		t.rightIndex = j
	}
	t.hasLeft = j > 0
	if t.hasLeft {
		t.leftIndex = j - 1
	}
	return nil
}

func (t *InMemoryHashTable) LeftFindNext(bound float64) (uint32, bool, error) {
	if !t.hasLeft {
		return 0, false, nil
	}
	if t.key-t.keys[t.leftIndex] > bound {
		return 0, false, nil
	}
	id := t.ids[t.leftIndex]
	if t.leftIndex == 0 {
		t.hasLeft = false
	} else {
		t.leftIndex--
	}
	return id, true, nil
}

func (t *InMemoryHashTable) RightFindNext(bound float64) (uint32, bool, error) {
	if !t.hasRight {
		return 0, false, nil
	}
	if t.keys[t.rightIndex]-t.key > bound {
		return 0, false, nil
	}
	id := t.ids[t.rightIndex]
	if t.rightIndex == len(t.keys)-1 {
		t.hasRight = false
	} else {
		t.rightIndex++
	}
	return id, true, nil
}

func (t *InMemoryHashTable) Close() error { return nil }

package bptree

import (
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
)

var log = logging.Logger("bptree")

// Entry is one (key, id) pair to bulk-load. Callers must supply entries in
// ascending key order; the loader does not sort.
type Entry struct {
	Key float64
	ID  uint32
}

// BulkLoad writes a new B+ tree file at path containing entries, using
// the default page size. See BulkLoadWithPageSize.
func BulkLoad(path string, entries []Entry) error {
	return BulkLoadWithPageSize(path, entries, PageSize)
}

// BulkLoadWithPageSize writes a new B+ tree file at path containing
// entries, which the caller guarantees are already sorted ascending by
// key. Leaves are built first, in fanout-sized chunks, each linked to its
// predecessor; then internal levels are built repeatedly over the
// previous level's entries until exactly one remains, which becomes the
// root. The separator key pushed to the parent level is the first key of
// each chunk, so that an internal node's upper-bound search over its keys
// correctly locates the child whose range contains a query.
//
// On any I/O error the file is left in an undefined state; the loader is
// write-only and the caller is responsible for deleting a
// partially-written file.
func BulkLoadWithPageSize(path string, entries []Entry, pageSize int) error {
	pf, err := createPagedFile(path, pageSize)
	if err != nil {
		return err
	}
	defer pf.Close()

	internalFanout, leafFanout := Fanouts(pageSize)
	if leafFanout < 1 || internalFanout < 2 {
		return errors.Wrapf(common.ErrInvalidConfig, "page size %d too small for b+tree fanout", pageSize)
	}

	log.Debugw("bulk-loading b+tree", "path", path, "entries", len(entries), "leafFanout", leafFanout, "internalFanout", internalFanout)

	type levelEntry struct {
		key     float64
		pageNum uint32
	}

	// --- Leaf construction ---
	var leafLevel []levelEntry
	var prevLeafPage uint32
	dataIdx := 0
	for dataIdx < len(entries) {
		end := dataIdx + leafFanout
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[dataIdx:end]

		leaf := leafNode{
			keys:     make([]float64, len(chunk)),
			ids:      make([]uint32, len(chunk)),
			prevPage: prevLeafPage,
		}
		for i, e := range chunk {
			leaf.keys[i] = e.Key
			leaf.ids[i] = e.ID
		}

		pageNum, err := pf.Allocate()
		if err != nil {
			return err
		}
		if err := pf.WritePage(pageNum, encodeLeafNode(leaf, pageSize)); err != nil {
			return err
		}

		// Fix up the previous leaf's next-page pointer with a second
		// seek-write targeting only that page.
		if prevLeafPage != 0 {
			if err := patchLeafNext(pf, prevLeafPage, pageNum, pageSize); err != nil {
				return err
			}
		}

		leafLevel = append(leafLevel, levelEntry{key: leaf.keys[0], pageNum: pageNum})
		prevLeafPage = pageNum
		dataIdx = end
	}

	if len(leafLevel) == 0 {
		return errors.Wrap(common.ErrInvalidConfig, "cannot bulk-load a b+tree from zero entries")
	}

	rootPage := leafLevel[len(leafLevel)-1].pageNum
	var level uint32

	// --- Internal construction ---
	currentLevel := leafLevel
	for len(currentLevel) > 1 {
		level++
		var nextLevel []levelEntry
		idx := 0
		for idx < len(currentLevel) {
			end := idx + internalFanout
			if end > len(currentLevel) {
				end = len(currentLevel)
			}
			chunk := currentLevel[idx:end]

			node := internalNode{
				pointers: make([]uint32, 0, len(chunk)),
				keys:     make([]float64, 0, len(chunk)-1),
			}
			// The first entry's page has no preceding key.
			node.pointers = append(node.pointers, chunk[0].pageNum)
			for _, e := range chunk[1:] {
				node.keys = append(node.keys, e.key)
				node.pointers = append(node.pointers, e.pageNum)
			}

			pageNum, err := pf.Allocate()
			if err != nil {
				return err
			}
			if err := pf.WritePage(pageNum, encodeInternalNode(node, pageSize)); err != nil {
				return err
			}

			// Separator pushed up is this chunk's first key, i.e. the
			// first entry's key from the level below.
			nextLevel = append(nextLevel, levelEntry{key: chunk[0].key, pageNum: pageNum})
			idx = end
		}

		rootPage = nextLevel[len(nextLevel)-1].pageNum
		currentLevel = nextLevel
	}

	header := FileHeader{
		RootPage:       rootPage,
		Level:          level,
		InternalFanout: uint32(internalFanout),
		LeafFanout:     uint32(leafFanout),
	}
	if err := pf.WritePage(0, encodeFileHeader(header, pageSize)); err != nil {
		return err
	}

	log.Debugw("bulk-load complete", "path", path, "rootPage", rootPage, "level", level, "leaves", len(leafLevel))

	return nil
}

// patchLeafNext rewrites only the next-leaf-page field of an already
// written leaf page, via a second seek-write to that page.
func patchLeafNext(pf *pagedFile, pageNum, next uint32, pageSize int) error {
	buf, err := pf.ReadPage(pageNum)
	if err != nil {
		return err
	}
	leaf := decodeLeafNode(buf)
	leaf.nextPage = next
	return pf.WritePage(pageNum, encodeLeafNode(leaf, pageSize))
}

package bptree

import (
	"sort"

	"github.com/pkg/errors"
)

// location names one entry inside a specific leaf page.
type location struct {
	page  leafNode
	index int
}

// Cursor is a bidirectional, leaf-linked cursor rooted at a query's
// projected key. init(q) locates the smallest key >= q and sets up
// independent left/right walk positions; each side
// advances monotonically away from q as LeftFindNext/RightFindNext drain
// it under a growing bound.
//
// A cursor keeps a page cache keyed by page number so repeated descents
// during one query pay disk I/O at most once per page; the cache is
// cleared on every Init. Cursors are not safe for concurrent use — each
// query owns its own cursor and file handle.
type Cursor struct {
	pf     *pagedFile
	header FileHeader

	key   float64
	left  *location
	right *location

	pageCache map[uint32]leafNode
}

// OpenCursor opens the B+ tree file at path, using pageSize to interpret
// its layout, and reads its header. The cursor must be Init'd with a
// query key before use. pageSize must match the value BulkLoadWithPageSize
// used to build the file: the page size is a deployment parameter the
// caller already knows (persisted in the accompanying QALSH
// configuration), not something the file self-describes.
func OpenCursor(path string, pageSize int) (*Cursor, error) {
	pf, err := openPagedFile(path, pageSize)
	if err != nil {
		return nil, err
	}
	headerBuf, err := pf.ReadPage(0)
	if err != nil {
		pf.Close()
		return nil, err
	}
	header, err := decodeFileHeader(headerBuf)
	if err != nil {
		pf.Close()
		return nil, err
	}
	return &Cursor{pf: pf, header: header, pageCache: make(map[uint32]leafNode)}, nil
}

// Close releases the cursor's file handle.
func (c *Cursor) Close() error {
	return c.pf.Close()
}

// Init resets the cursor to search around key q: it descends to the leaf
// that may contain q, binary-searches for the smallest index j with
// leaf.keys[j] >= q, and sets the right position to that entry (or the
// next leaf's first entry) and the left position to the entry just before
// it (or the previous leaf's last entry). The page cache is cleared.
func (c *Cursor) Init(q float64) error {
	c.key = q
	c.left = nil
	c.right = nil
	c.pageCache = make(map[uint32]leafNode)

	leaf, err := c.locateLeafMayContainKey(q)
	if err != nil {
		return err
	}

	j := sort.Search(len(leaf.keys), func(i int) bool { return leaf.keys[i] >= q })

	if j < len(leaf.keys) {
		c.right = &location{page: leaf, index: j}
	} else if leaf.nextPage != 0 {
		next, err := c.locateLeafByPage(leaf.nextPage)
		if err != nil {
			return err
		}
		c.right = &location{page: next, index: 0}
	}

	if j > 0 {
		c.left = &location{page: leaf, index: j - 1}
	} else if leaf.prevPage != 0 {
		prev, err := c.locateLeafByPage(leaf.prevPage)
		if err != nil {
			return err
		}
		c.left = &location{page: prev, index: len(prev.keys) - 1}
	}

	return nil
}

// LeftFindNext emits the id at the current left position and advances it
// one step left, provided q-key is within bound. Returns (0, false) when
// the left side is exhausted or the next candidate exceeds bound.
func (c *Cursor) LeftFindNext(bound float64) (uint32, bool, error) {
	if c.left == nil {
		return 0, false, nil
	}
	loc := c.left
	if c.key-loc.page.keys[loc.index] > bound {
		return 0, false, nil
	}
	id := loc.page.ids[loc.index]

	if loc.index > 0 {
		loc.index--
	} else if loc.page.prevPage != 0 {
		prev, err := c.locateLeafByPage(loc.page.prevPage)
		if err != nil {
			return 0, false, err
		}
		c.left = &location{page: prev, index: len(prev.keys) - 1}
		return id, true, nil
	} else {
		c.left = nil
		return id, true, nil
	}

	return id, true, nil
}

// RightFindNext is the mirror image of LeftFindNext.
func (c *Cursor) RightFindNext(bound float64) (uint32, bool, error) {
	if c.right == nil {
		return 0, false, nil
	}
	loc := c.right
	if loc.page.keys[loc.index]-c.key > bound {
		return 0, false, nil
	}
	id := loc.page.ids[loc.index]

	if loc.index < len(loc.page.keys)-1 {
		loc.index++
	} else if loc.page.nextPage != 0 {
		next, err := c.locateLeafByPage(loc.page.nextPage)
		if err != nil {
			return 0, false, err
		}
		c.right = &location{page: next, index: 0}
		return id, true, nil
	} else {
		c.right = nil
		return id, true, nil
	}

	return id, true, nil
}

// locateLeafMayContainKey descends internal nodes, at each level choosing
// the child whose key range contains q via an upper-bound search over the
// node's keys.
func (c *Cursor) locateLeafMayContainKey(q float64) (leafNode, error) {
	level := c.header.Level
	pageNum := c.header.RootPage

	for level != 0 {
		buf, err := c.readPage(pageNum)
		if err != nil {
			return leafNode{}, err
		}
		node := decodeInternalNode(buf)

		idx := sort.Search(len(node.keys), func(i int) bool { return node.keys[i] > q })
		pageNum = node.pointers[idx]
		level--
	}

	return c.locateLeafByPage(pageNum)
}

func (c *Cursor) locateLeafByPage(pageNum uint32) (leafNode, error) {
	if cached, ok := c.pageCache[pageNum]; ok {
		return cached, nil
	}
	buf, err := c.readPage(pageNum)
	if err != nil {
		return leafNode{}, err
	}
	leaf := decodeLeafNode(buf)
	c.pageCache[pageNum] = leaf
	return leaf, nil
}

// readPage wraps pagedFile.ReadPage only to keep I/O errors consistently
// tagged; the leaf page cache lives one level up in
// locateLeafByPage, since internal nodes are read at most once per level
// per Init call and do not need caching.
func (c *Cursor) readPage(pageNum uint32) ([]byte, error) {
	buf, err := c.pf.ReadPage(pageNum)
	if err != nil {
		return nil, errors.Wrapf(err, "reading page %d", pageNum)
	}
	return buf, nil
}

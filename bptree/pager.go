package bptree

import (
	"os"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
)

// pagedFile is a fixed-size page read/write layer over a binary file.
// Page 0 is reserved for the file header; Allocate starts at 1 and pages
// are never recycled: the file is append-oriented during bulk-load and
// random-read-only thereafter. The page size is fixed per file but varies
// across files, so a small dataset can be built with a smaller page size
// to exercise multi-level trees in tests.
type pagedFile struct {
	file     *os.File
	pageSize int
	numPages uint32
}

// createPagedFile truncates (or creates) path, fixes its page size, and
// reserves page 0.
func createPagedFile(path string, pageSize int) (*pagedFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(common.ErrIO, "creating b+tree file %s: %v", path, err)
	}
	pf := &pagedFile{file: f, pageSize: pageSize}
	if _, err := pf.Allocate(); err != nil {
		f.Close()
		return nil, err
	}
	return pf, nil
}

// openPagedFile opens an existing tree file for random reads, inferring
// its page count from pageSize and the file's length.
func openPagedFile(path string, pageSize int) (*pagedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(common.ErrIO, "opening b+tree file %s: %v", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(common.ErrIO, "statting b+tree file %s: %v", path, err)
	}
	return &pagedFile{file: f, pageSize: pageSize, numPages: uint32(info.Size() / int64(pageSize))}, nil
}

// Allocate returns the next sequential page number, zero-filling it on
// disk.
func (pf *pagedFile) Allocate() (uint32, error) {
	pageNum := pf.numPages
	pf.numPages++
	if _, err := pf.file.WriteAt(make([]byte, pf.pageSize), int64(pageNum)*int64(pf.pageSize)); err != nil {
		return 0, errors.Wrap(common.ErrIO, err.Error())
	}
	return pageNum, nil
}

// WritePage writes buf (exactly pageSize bytes) to pageNum.
func (pf *pagedFile) WritePage(pageNum uint32, buf []byte) error {
	if len(buf) != pf.pageSize {
		return errors.Wrapf(common.ErrFormat, "page buffer is %d bytes, want %d", len(buf), pf.pageSize)
	}
	if _, err := pf.file.WriteAt(buf, int64(pageNum)*int64(pf.pageSize)); err != nil {
		return errors.Wrap(common.ErrIO, err.Error())
	}
	return nil
}

// ReadPage reads pageNum into a fresh pageSize buffer.
func (pf *pagedFile) ReadPage(pageNum uint32) ([]byte, error) {
	if pageNum >= pf.numPages {
		return nil, errors.Wrapf(common.ErrOutOfRange, "page %d beyond file length (%d pages)", pageNum, pf.numPages)
	}
	buf := make([]byte, pf.pageSize)
	if _, err := pf.file.ReadAt(buf, int64(pageNum)*int64(pf.pageSize)); err != nil {
		return nil, errors.Wrap(common.ErrIO, err.Error())
	}
	return buf, nil
}

// Close releases the underlying file handle.
func (pf *pagedFile) Close() error {
	return pf.file.Close()
}

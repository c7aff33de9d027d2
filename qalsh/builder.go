package qalsh

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/bptree"
	"github.com/intellect4all/qalsh-chamfer/common"
	"github.com/intellect4all/qalsh-chamfer/pointset"
)

// IndexDirName is the fixed subdirectory name build-index writes into.
const IndexDirName = "qalsh_index"

// ConfigFileName and DotVectorsFileName are the fixed file names inside
// an index directory.
const (
	ConfigFileName     = "config.json"
	DotVectorsFileName = "dot_vectors.bin"
)

// BaseIndexFileName returns the file name for hash table j's B+ tree,
// base_idx_<j>.bin.
func BaseIndexFileName(j int) string {
	return fmt.Sprintf("base_idx_%d.bin", j)
}

// BuildIndex bulk-loads one B+ tree per hash table over reader's points,
// projected through freshly sampled Cauchy dot vectors, and persists the
// dot vectors and regularized configuration alongside them. dir is the
// dataset directory; the index is written to dir/qalsh_index/.
//
// cfg's ApproximationRatio and ErrorProbability (and any override fields)
// must already be set; Regularize is called here with reader.N().
func BuildIndex(dir string, reader pointset.Reader, cfg Config, rnd *rand.Rand) error {
	n := reader.N()
	if err := cfg.Regularize(n); err != nil {
		return err
	}

	dotVectors := NewDotVectors(int(cfg.NumHashTables), int(reader.D()), rnd)

	indexDir := filepath.Join(dir, IndexDirName)
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return errors.Wrapf(common.ErrIO, "creating index directory %s: %v", indexDir, err)
	}

	log.Infow("building qalsh index", "dir", indexDir, "n", n, "d", reader.D(), "m", cfg.NumHashTables, "l", cfg.CollisionThreshold)

	for j := 0; j < int(cfg.NumHashTables); j++ {
		entries := make([]bptree.Entry, n)
		for i := uint32(0); i < n; i++ {
			p, err := reader.GetPoint(i)
			if err != nil {
				return err
			}
			entries[i] = bptree.Entry{Key: dotVectors.Project(j, p.Coords), ID: i}
		}
		sort.Slice(entries, func(a, b int) bool { return entries[a].Key < entries[b].Key })

		path := filepath.Join(indexDir, BaseIndexFileName(j))
		if err := bptree.BulkLoadWithPageSize(path, entries, int(cfg.PageSize)); err != nil {
			return errors.Wrapf(err, "bulk-loading hash table %d", j)
		}
		log.Debugw("bulk-loaded hash table", "table", j, "path", path)
	}

	if err := dotVectors.Save(filepath.Join(indexDir, DotVectorsFileName)); err != nil {
		return err
	}
	if err := cfg.Save(filepath.Join(indexDir, ConfigFileName)); err != nil {
		return err
	}

	log.Infow("qalsh index build complete", "dir", indexDir)
	return nil
}

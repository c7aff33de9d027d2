package qalsh

import (
	"math"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/bptree"
	"github.com/intellect4all/qalsh-chamfer/common"
	"github.com/intellect4all/qalsh-chamfer/pointset"
)

// Result is the outcome of one c-approximate nearest-neighbor search.
type Result struct {
	PointID  uint32
	Distance float64
}

// Searcher runs the QALSH virtual-rehash c-approximate nearest-neighbor
// algorithm over an opened index and its base point set.
type Searcher struct {
	base       pointset.Reader
	cfg        Config
	dotVectors DotVectors
	tables     []HashTable
}

// OpenSearcher opens the m disk-resident hash tables and dot vectors
// written by BuildIndex under dir/qalsh_index, paired with base (the
// indexed point set T).
func OpenSearcher(dir string, base pointset.Reader) (*Searcher, error) {
	indexDir := filepath.Join(dir, IndexDirName)

	cfg, err := LoadConfig(filepath.Join(indexDir, ConfigFileName))
	if err != nil {
		return nil, err
	}
	if err := cfg.Regularize(base.N()); err != nil {
		return nil, err
	}

	dotVectors, err := LoadDotVectors(filepath.Join(indexDir, DotVectorsFileName), int(cfg.NumHashTables), int(base.D()))
	if err != nil {
		return nil, err
	}

	tables := make([]HashTable, cfg.NumHashTables)
	for j := range tables {
		table, err := OpenDiskHashTable(filepath.Join(indexDir, BaseIndexFileName(j)), int(cfg.PageSize))
		if err != nil {
			for _, t := range tables[:j] {
				if t != nil {
					t.Close()
				}
			}
			return nil, err
		}
		tables[j] = table
	}

	return &Searcher{base: base, cfg: cfg, dotVectors: dotVectors, tables: tables}, nil
}

// NewInMemorySearcher builds a Searcher directly over in-memory hash
// tables, skipping disk I/O entirely. Used by small deterministic test
// fixtures and the QALSH-correctness-under-ideal property, where m' = N
// hash tables (one per point) and l = 1 degenerate to an exact linear
// scan.
func NewInMemorySearcher(base pointset.Reader, cfg Config, dotVectors DotVectors, entriesPerTable [][]bptree.Entry) *Searcher {
	tables := make([]HashTable, len(entriesPerTable))
	for j, entries := range entriesPerTable {
		tables[j] = NewInMemoryHashTable(entries)
	}
	return &Searcher{base: base, cfg: cfg, dotVectors: dotVectors, tables: tables}
}

// Close releases every underlying hash table.
func (s *Searcher) Close() error {
	var firstErr error
	for _, t := range s.tables {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Search runs the radius-doubling outer loop for one query point and
// returns its best found c-approximate nearest neighbor in the base set.
// Fails with ErrEmptyResult if the base set is empty or there are no
// hash tables.
func (s *Searcher) Search(query common.Point) (Result, error) {
	n := s.base.N()
	m := len(s.tables)
	if n == 0 || m == 0 {
		return Result{}, errors.Wrap(common.ErrEmptyResult, "qalsh searcher: empty base set or no hash tables")
	}

	qHat := make([]float64, m)
	for j := 0; j < m; j++ {
		qHat[j] = s.dotVectors.Project(j, query.Coords)
		if err := s.tables[j].Init(qHat[j]); err != nil {
			return Result{}, err
		}
	}

	collisions := make(map[uint32]uint32)
	frequent := make(map[uint32]bool)
	best := Result{Distance: math.Inf(1)}

	threshold := uint32(math.Ceil(s.cfg.Beta * float64(n)))
	if threshold == 0 {
		threshold = 1
	}

	considerCandidate := func(id uint32) error {
		p, err := s.base.GetPoint(id)
		if err != nil {
			return err
		}
		dist := common.L1Distance(query, p)
		if dist < best.Distance {
			best = Result{PointID: id, Distance: dist}
		}
		return nil
	}

	for radius := 1.0; ; radius *= 2 {
		bound := s.cfg.BucketWidth * radius / 2

		for j := 0; j < m; j++ {
			for {
				id, ok, err := s.tables[j].LeftFindNext(bound)
				if err != nil {
					return Result{}, err
				}
				if !ok {
					break
				}
				if err := s.registerCollision(id, collisions, frequent, considerCandidate); err != nil {
					return Result{}, err
				}
			}
			for {
				id, ok, err := s.tables[j].RightFindNext(bound)
				if err != nil {
					return Result{}, err
				}
				if !ok {
					break
				}
				if err := s.registerCollision(id, collisions, frequent, considerCandidate); err != nil {
					return Result{}, err
				}
			}
		}

		enoughFrequent := uint32(len(frequent)) >= threshold
		radiusExhausted := best.Distance <= s.cfg.ApproximationRatio*radius

		log.Debugw("qalsh outer loop iteration", "radius", radius, "frequent", len(frequent), "best", best.Distance)

		if enoughFrequent || radiusExhausted {
			return best, nil
		}
	}
}

func (s *Searcher) registerCollision(id uint32, collisions map[uint32]uint32, frequent map[uint32]bool, consider func(uint32) error) error {
	collisions[id]++
	if collisions[id] == s.cfg.CollisionThreshold && !frequent[id] {
		frequent[id] = true
		return consider(id)
	}
	return nil
}

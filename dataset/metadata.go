// Package dataset reads the plain-text metadata file that accompanies a
// pair of point sets: their sizes, dimensionality, and (for synthetic
// test fixtures) a known ground-truth Chamfer distance.
package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/intellect4all/qalsh-chamfer/common"
)

// MetadataFileName and PointSetFileName are the fixed file names inside a
// dataset directory: the point set itself and its accompanying metadata.
const (
	MetadataFileName  = "metadata.txt"
	PointSetFileName  = "base.bin"
)

// Metadata is the decoded contents of a dataset metadata file's
// key-value text format.
type Metadata struct {
	DataType        string
	BaseNumPoints   uint32
	QueryNumPoints  uint32
	NumDimensions   uint32
	ChamferDistance float64
	HasChamferDistance bool
}

// LoadMetadata parses a `key = value` text file, one key per line.
// Unrecognized keys are ignored; chamfer_distance is optional (ground
// truth is only present for synthetic test fixtures).
func LoadMetadata(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, errors.Wrapf(common.ErrIO, "opening dataset metadata %s: %v", path, err)
	}
	defer f.Close()

	var md Metadata
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Metadata{}, errors.Wrapf(common.ErrFormat, "%s:%d: missing '=' in %q", path, lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "data_type":
			md.DataType = value
		case "base_num_points":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return Metadata{}, errors.Wrapf(common.ErrFormat, "%s:%d: %v", path, lineNo, err)
			}
			md.BaseNumPoints = uint32(n)
		case "query_num_points":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return Metadata{}, errors.Wrapf(common.ErrFormat, "%s:%d: %v", path, lineNo, err)
			}
			md.QueryNumPoints = uint32(n)
		case "num_dimensions":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return Metadata{}, errors.Wrapf(common.ErrFormat, "%s:%d: %v", path, lineNo, err)
			}
			md.NumDimensions = uint32(n)
		case "chamfer_distance":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Metadata{}, errors.Wrapf(common.ErrFormat, "%s:%d: %v", path, lineNo, err)
			}
			md.ChamferDistance = v
			md.HasChamferDistance = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Metadata{}, errors.Wrapf(common.ErrIO, "reading dataset metadata %s: %v", path, err)
	}
	return md, nil
}

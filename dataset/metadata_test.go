package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intellect4all/qalsh-chamfer/common"
	"github.com/intellect4all/qalsh-chamfer/common/testutil"
)

func writeMetadata(t *testing.T, contents string) string {
	t.Helper()
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, MetadataFileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMetadataParsesAllFields(t *testing.T) {
	path := writeMetadata(t, `
data_type = f64
base_num_points = 1000
query_num_points = 50
num_dimensions = 16
chamfer_distance = 12.5
`)

	md, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, "f64", md.DataType)
	require.Equal(t, uint32(1000), md.BaseNumPoints)
	require.Equal(t, uint32(50), md.QueryNumPoints)
	require.Equal(t, uint32(16), md.NumDimensions)
	require.True(t, md.HasChamferDistance)
	require.Equal(t, 12.5, md.ChamferDistance)
}

func TestLoadMetadataWithoutGroundTruth(t *testing.T) {
	path := writeMetadata(t, "data_type = i32\nbase_num_points = 5\n")

	md, err := LoadMetadata(path)
	require.NoError(t, err)
	require.False(t, md.HasChamferDistance)
}

func TestLoadMetadataRejectsMalformedLine(t *testing.T) {
	path := writeMetadata(t, "this line has no equals sign\n")

	_, err := LoadMetadata(path)
	require.ErrorIs(t, err, common.ErrFormat)
}

func TestLoadMetadataRejectsMissingFile(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, common.ErrIO)
}

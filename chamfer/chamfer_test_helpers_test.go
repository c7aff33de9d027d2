package chamfer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intellect4all/qalsh-chamfer/common"
	"github.com/intellect4all/qalsh-chamfer/common/testutil"
	"github.com/intellect4all/qalsh-chamfer/pointset"
)

func writePointSet(t *testing.T, points [][]float64) pointset.Reader {
	t.Helper()
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "base.bin")

	d := 0
	if len(points) > 0 {
		d = len(points[0])
	}
	w, err := pointset.NewWriter(path, common.KindFloat64, uint32(d))
	require.NoError(t, err)
	for _, p := range points {
		require.NoError(t, w.AddPoint(p))
	}
	require.NoError(t, w.Close())

	reader, err := pointset.NewDiskReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { reader.Close() })
	return reader
}

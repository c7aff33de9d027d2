package pointset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intellect4all/qalsh-chamfer/common"
	"github.com/intellect4all/qalsh-chamfer/common/testutil"
)

func TestWriterReaderRoundTripEachKind(t *testing.T) {
	kinds := []common.ElementKind{
		common.KindInt8, common.KindInt16, common.KindInt32,
		common.KindInt64, common.KindFloat32, common.KindFloat64,
	}
	points := [][]float64{{1, 2, 3}, {-4, 5, -6}, {0, 0, 0}}

	for _, kind := range kinds {
		dir := testutil.TempDir(t)
		path := filepath.Join(dir, "points.bin")

		w, err := NewWriter(path, kind, 3)
		require.NoError(t, err)
		for _, p := range points {
			require.NoError(t, w.AddPoint(p))
		}
		require.NoError(t, w.Close())

		disk, err := NewDiskReader(path)
		require.NoError(t, err)
		mem, err := NewInMemoryReader(path)
		require.NoError(t, err)

		require.Equal(t, uint32(len(points)), disk.N())
		require.Equal(t, uint32(3), disk.D())
		require.Equal(t, kind, disk.Kind())

		for i, want := range points {
			got, err := disk.GetPoint(uint32(i))
			require.NoError(t, err)
			require.Equal(t, want, got.Coords)
			require.Equal(t, uint32(i), got.ID)

			gotMem, err := mem.GetPoint(uint32(i))
			require.NoError(t, err)
			require.Equal(t, want, gotMem.Coords)
		}
		require.NoError(t, disk.Close())
	}
}

func TestGetPointOutOfRange(t *testing.T) {
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "points.bin")

	w, err := NewWriter(path, common.KindFloat64, 1)
	require.NoError(t, err)
	require.NoError(t, w.AddPoint([]float64{1}))
	require.NoError(t, w.Close())

	r, err := NewDiskReader(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.GetPoint(5)
	require.ErrorIs(t, err, common.ErrOutOfRange)
}

func TestAddPointRejectsWrongDimension(t *testing.T) {
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "points.bin")

	w, err := NewWriter(path, common.KindFloat64, 3)
	require.NoError(t, err)
	defer w.Close()

	err = w.AddPoint([]float64{1, 2})
	require.ErrorIs(t, err, common.ErrFormat)
}

func TestDecodeHeaderRejectsUnknownKind(t *testing.T) {
	buf := EncodeHeader(Header{Kind: common.KindFloat64, N: 1, D: 1})
	buf[0] = 99

	_, err := DecodeHeader(buf)
	require.ErrorIs(t, err, common.ErrFormat)
}

package chamfer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intellect4all/qalsh-chamfer/common"
)

func TestLinearScanFindsExactNearest(t *testing.T) {
	base := writePointSet(t, [][]float64{{0, 0}, {10, 0}, {3, 4}})
	searcher := NewLinearScanSearcher(base)

	result, err := searcher.Search(common.Point{Coords: []float64{3, 3}})
	require.NoError(t, err)
	require.Equal(t, uint32(2), result.PointID)
	require.Equal(t, 1.0, result.Distance)
}

func TestLinearScanEmptyBaseFails(t *testing.T) {
	base := writePointSet(t, nil)
	searcher := NewLinearScanSearcher(base)

	_, err := searcher.Search(common.Point{Coords: []float64{0}})
	require.ErrorIs(t, err, common.ErrEmptyResult)
}

package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/phasespace/internal/modules/distribution"
)

func grid2D(t *testing.T, rows, cols int) *distribution.Grid {
	t.Helper()
	x := make([]float64, rows)
	y := make([]float64, cols)
	for i := range x {
		x[i] = float64(i)
	}
	for j := range y {
		y[j] = float64(j) / 10
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i)
	}
	data[3] = -1000
	g, err := distribution.NewGridWithData(data, [][]float64{x, y}, []string{"Re(α)", "Im(α)"})
	require.NoError(t, err)
	return g
}

func TestRender_Line(t *testing.T) {
	g, err := distribution.NewGridWithData([]float64{0.1, 0.4, 0.2}, [][]float64{{-1, 0, 1}}, []string{"x"})
	require.NoError(t, err)

	c, err := Render(g, "")
	require.NoError(t, err)
	assert.Equal(t, "line", c.Type)
	assert.Equal(t, "x", c.XLabel)
	assert.Equal(t, MarginalLabel, c.YLabel)
	assert.Equal(t, []float64{-1, 0, 1}, c.X)
	assert.Equal(t, []float64{0.1, 0.4, 0.2}, c.Y)
	assert.Nil(t, c.Z)
}

func TestRender_Colormap(t *testing.T) {
	g := grid2D(t, 4, 6)

	c, err := Render(g, StyleColormap)
	require.NoError(t, err)
	assert.Equal(t, StyleColormap, c.Type)
	require.Len(t, c.Z, 4)
	require.Len(t, c.Z[0], 6)
	assert.Equal(t, 13.0, c.Z[2][1])
	assert.Equal(t, -1000.0, c.ColorMin)
	assert.Equal(t, 1000.0, c.ColorMax)
	assert.Equal(t, "Im(α)", c.YLabel)
}

func TestRender_SurfaceIsStrided(t *testing.T) {
	g := grid2D(t, 12, 7)

	c, err := Render(g, StyleSurface)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 10}, c.X)
	assert.Equal(t, []float64{0, 0.5}, c.Y)
	require.Len(t, c.Z, 3)
	require.Len(t, c.Z[1], 2)
	assert.Equal(t, float64(5*7+5), c.Z[1][1])
}

func TestRender_Errors(t *testing.T) {
	g3, err := distribution.NewGridWithData(make([]float64, 8),
		[][]float64{{0, 1}, {0, 1}, {0, 1}}, []string{"a", "b", "c"})
	require.NoError(t, err)
	_, err = Render(g3, "")
	assert.ErrorIs(t, err, ErrUnsupportedRank)

	_, err = Render(grid2D(t, 2, 2), "contour3d")
	assert.ErrorIs(t, err, ErrUnknownStyle)

	empty, err := distribution.NewGrid([][]float64{{0, 1}}, []string{"x"})
	require.NoError(t, err)
	_, err = Render(empty, "")
	assert.ErrorIs(t, err, distribution.ErrNoData)
}

// Package charts turns distribution grids into plain chart payloads for a
// front-end renderer: a line for one-dimensional grids, a colour map or a
// surface for two-dimensional ones.
package charts

import (
	"errors"
	"fmt"

	"github.com/aristath/phasespace/internal/modules/distribution"
)

// Chart styles for two-dimensional grids.
const (
	StyleColormap = "colormap"
	StyleSurface  = "surface"
)

// SurfaceStride is the row/column stride used to thin out surface meshes.
const SurfaceStride = 5

// MarginalLabel is the value-axis label of a line chart.
const MarginalLabel = "Marginal distribution"

var (
	// ErrUnsupportedRank is returned for grids that are neither 1D nor 2D.
	ErrUnsupportedRank = errors.New("unsupported rank")
	// ErrUnknownStyle is returned for a style other than colormap or surface.
	ErrUnknownStyle = errors.New("unknown chart style")
)

// Chart is a renderer-neutral description of a distribution plot.
type Chart struct {
	Type   string `json:"type"` // line, colormap or surface
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`

	// Line charts
	X []float64 `json:"x,omitempty"`
	Y []float64 `json:"y,omitempty"`

	// Colormap and surface charts. Z[i][j] is the value at (X[i], Y[j]).
	Z [][]float64 `json:"z,omitempty"`

	// Symmetric colour scale limits, [-max|z|, max|z|].
	ColorMin float64 `json:"color_min,omitempty"`
	ColorMax float64 `json:"color_max,omitempty"`
}

// Render builds the chart for g. style only applies to 2D grids; an empty
// style means colormap.
func Render(g *distribution.Grid, style string) (*Chart, error) {
	if !g.HasData() {
		return nil, distribution.ErrNoData
	}

	switch g.Rank() {
	case 1:
		return &Chart{
			Type:   "line",
			XLabel: g.AxisLabel(0),
			YLabel: MarginalLabel,
			X:      g.AxisVector(0),
			Y:      g.Data(),
		}, nil
	case 2:
		switch style {
		case "", StyleColormap:
			return render2D(g, StyleColormap, 1), nil
		case StyleSurface:
			return render2D(g, StyleSurface, SurfaceStride), nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
		}
	default:
		return nil, fmt.Errorf("%w: cannot render a rank %d distribution", ErrUnsupportedRank, g.Rank())
	}
}

func render2D(g *distribution.Grid, kind string, stride int) *Chart {
	x := subsample(g.AxisVector(0), stride)
	y := subsample(g.AxisVector(1), stride)
	shape := g.Shape()

	z := make([][]float64, 0, len(x))
	for i := 0; i < shape[0]; i += stride {
		row := make([]float64, 0, len(y))
		for j := 0; j < shape[1]; j += stride {
			row = append(row, g.At(i, j))
		}
		z = append(z, row)
	}

	lim := g.MaxAbs()
	return &Chart{
		Type:     kind,
		XLabel:   g.AxisLabel(0),
		YLabel:   g.AxisLabel(1),
		X:        x,
		Y:        y,
		Z:        z,
		ColorMin: -lim,
		ColorMax: lim,
	}
}

func subsample(v []float64, stride int) []float64 {
	out := make([]float64, 0, (len(v)+stride-1)/stride)
	for i := 0; i < len(v); i += stride {
		out = append(out, v[i])
	}
	return out
}

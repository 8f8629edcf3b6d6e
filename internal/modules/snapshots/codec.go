package snapshots

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/phasespace/internal/modules/distribution"
)

// codecVersion is bumped whenever wireGrid changes incompatibly.
const codecVersion = 1

// wireGrid is the msgpack form of a distribution grid.
type wireGrid struct {
	Version int         `msgpack:"v"`
	Shape   []int       `msgpack:"shape"`
	Axes    [][]float64 `msgpack:"axes"`
	Labels  []string    `msgpack:"labels"`
	Data    []float64   `msgpack:"data"`
}

// Encode serialises a populated grid with msgpack.
func Encode(g *distribution.Grid) ([]byte, error) {
	if !g.HasData() {
		return nil, distribution.ErrNoData
	}
	b, err := msgpack.Marshal(&wireGrid{
		Version: codecVersion,
		Shape:   g.Shape(),
		Axes:    g.AxisVectors(),
		Labels:  g.Labels(),
		Data:    g.Data(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode grid: %w", err)
	}
	return b, nil
}

// Decode restores a grid written by Encode, re-checking its shape invariant.
func Decode(b []byte) (*distribution.Grid, error) {
	var w wireGrid
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("failed to decode grid: %w", err)
	}
	if w.Version != codecVersion {
		return nil, fmt.Errorf("unsupported grid encoding version %d", w.Version)
	}
	if len(w.Shape) != len(w.Axes) {
		return nil, fmt.Errorf("%w: shape %v for %d axes", distribution.ErrShapeMismatch, w.Shape, len(w.Axes))
	}
	for i, n := range w.Shape {
		if len(w.Axes[i]) != n {
			return nil, fmt.Errorf("%w: axis %d has %d points, shape says %d", distribution.ErrShapeMismatch, i, len(w.Axes[i]), n)
		}
	}
	return distribution.NewGridWithData(w.Data, w.Axes, w.Labels)
}

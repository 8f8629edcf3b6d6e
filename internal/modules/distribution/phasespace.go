package distribution

import (
	"errors"
	"fmt"
)

// Axis labels of phase-space distributions over the complex amplitude α.
const (
	LabelReAlpha = "Re(α)"
	LabelImAlpha = "Im(α)"
)

// phaseSpaceBuilder holds the part shared by the Wigner and Q builders:
// a square grid over (Re α, Im α) filled by an external transform.
type phaseSpaceBuilder struct {
	cfg       Config
	grid      *Grid
	transform Transform
}

func newPhaseSpaceBuilder(cfg Config, transform Transform) (phaseSpaceBuilder, error) {
	if transform == nil {
		return phaseSpaceBuilder{}, errors.New("phase-space transform is required")
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return phaseSpaceBuilder{}, err
	}
	grid, err := NewGrid(cfg.axes(), []string{LabelReAlpha, LabelImAlpha})
	if err != nil {
		return phaseSpaceBuilder{}, err
	}
	return phaseSpaceBuilder{cfg: cfg, grid: grid, transform: transform}, nil
}

func (b *phaseSpaceBuilder) update(rho DensityState) error {
	if isEmpty(rho) {
		return nil
	}

	w, err := b.transform(rho, b.grid.axes[0], b.grid.axes[1])
	if err != nil {
		return fmt.Errorf("failed to evaluate transform: %w", err)
	}
	r, c := w.Dims()
	if r != b.cfg.Steps || c != b.cfg.Steps {
		return fmt.Errorf("%w: transform returned %dx%d, want %dx%d", ErrShapeMismatch, r, c, b.cfg.Steps, b.cfg.Steps)
	}

	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, w.RawRowView(i)...)
	}
	grid, err := b.grid.withData(data)
	if err != nil {
		return err
	}
	b.grid = grid
	return nil
}

// WignerDistribution is a Wigner quasi-probability distribution over a
// square grid in the complex α plane.
//
// Update is not safe for concurrent use on the same instance.
type WignerDistribution struct {
	phaseSpaceBuilder
}

// NewWignerDistribution creates a Wigner builder whose samples are
// computed by wigner. Zero fields of cfg take the package defaults.
func NewWignerDistribution(cfg Config, wigner Transform) (*WignerDistribution, error) {
	b, err := newPhaseSpaceBuilder(cfg, wigner)
	if err != nil {
		return nil, err
	}
	return &WignerDistribution{phaseSpaceBuilder: b}, nil
}

// Update recomputes the distribution for rho. A nil or empty state leaves
// the current grid untouched.
func (w *WignerDistribution) Update(rho DensityState) error { return w.update(rho) }

// Grid returns the current grid. It has no data until the first Update
// with a non-empty state.
func (w *WignerDistribution) Grid() *Grid { return w.grid }

// QDistribution is a Husimi Q-function distribution over a square grid in
// the complex α plane.
//
// Update is not safe for concurrent use on the same instance.
type QDistribution struct {
	phaseSpaceBuilder
}

// NewQDistribution creates a Q-function builder whose samples are computed
// by qfunc. Zero fields of cfg take the package defaults.
func NewQDistribution(cfg Config, qfunc Transform) (*QDistribution, error) {
	b, err := newPhaseSpaceBuilder(cfg, qfunc)
	if err != nil {
		return nil, err
	}
	return &QDistribution{phaseSpaceBuilder: b}, nil
}

// Update recomputes the distribution for rho. A nil or empty state leaves
// the current grid untouched.
func (q *QDistribution) Update(rho DensityState) error { return q.update(rho) }

// Grid returns the current grid.
func (q *QDistribution) Grid() *Grid { return q.grid }

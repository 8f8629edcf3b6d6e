package compute

import (
	"fmt"
	"time"

	"github.com/aristath/phasespace/internal/modules/distribution"
	"github.com/aristath/phasespace/internal/modules/phasespace"
	"github.com/aristath/phasespace/internal/modules/states"
)

const maxModes = 2

// Session owns one distribution builder and feeds it successive states.
// A Session is not safe for concurrent use.
type Session struct {
	kind   string
	limits Limits
	update func(spec states.Spec) error
	grid   func() *distribution.Grid
}

func newSession(kind string, p Params, limits Limits) (*Session, error) {
	cfg := distribution.Config{Steps: p.Steps}
	if p.Extent != nil {
		cfg.Extent = *p.Extent
	}

	s := &Session{kind: kind, limits: limits}
	switch kind {
	case KindWigner:
		b, err := distribution.NewWignerDistribution(cfg, phasespace.WignerTransform(limits.G))
		if err != nil {
			return nil, err
		}
		s.update = func(spec states.Spec) error {
			rho, err := spec.Density()
			if err != nil {
				return err
			}
			return b.Update(rho)
		}
		s.grid = b.Grid
	case KindQFunc:
		b, err := distribution.NewQDistribution(cfg, phasespace.QFuncTransform(limits.G))
		if err != nil {
			return nil, err
		}
		s.update = func(spec states.Spec) error {
			rho, err := spec.Density()
			if err != nil {
				return err
			}
			return b.Update(rho)
		}
		s.grid = b.Grid
	case KindQuadrature:
		b, err := distribution.NewTwoModeQuadratureCorrelation(distribution.QuadratureConfig{
			Extent: cfg.Extent,
			Steps:  cfg.Steps,
			Theta1: p.Theta1,
			Theta2: p.Theta2,
		})
		if err != nil {
			return nil, err
		}
		s.update = func(spec states.Spec) error {
			psi, err := spec.Ket()
			if err != nil {
				return err
			}
			return b.Update(psi)
		}
		s.grid = b.Grid
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

// Kind returns the distribution kind the session builds.
func (s *Session) Kind() string { return s.kind }

// Grid returns the most recent grid. It has no data until Update succeeds.
func (s *Session) Grid() *distribution.Grid { return s.grid() }

// Update builds spec and installs it in the session's builder.
func (s *Session) Update(spec states.Spec) (*distribution.Grid, error) {
	if err := s.checkLimits(spec); err != nil {
		return nil, err
	}

	start := time.Now()
	err := s.update(spec)
	computeDuration.WithLabelValues(s.kind).Observe(time.Since(start).Seconds())
	computationsTotal.WithLabelValues(s.kind, result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to update %s distribution: %w", s.kind, err)
	}

	g := s.grid()
	gridSamples.Observe(float64(len(g.Data())))
	return g, nil
}

// checkLimits bounds the per-mode truncation, the mode count and, for kinds
// that build a density operator over the joint space, its dimension.
func (s *Session) checkLimits(spec states.Spec) error {
	if modes := spec.ModeCount(); modes > maxModes {
		return fmt.Errorf("%w: %d modes exceeds %d", ErrLimitExceeded, modes, maxModes)
	}
	if limit := s.limits.MaxTruncation; limit > 0 && spec.Truncation() > limit {
		return fmt.Errorf("%w: truncation %d exceeds %d", ErrLimitExceeded, spec.Truncation(), limit)
	}
	if s.kind == KindQuadrature {
		return nil
	}
	if limit := s.limits.MaxHilbertDim; limit > 0 && spec.HilbertDim() > limit {
		return fmt.Errorf("%w: joint dimension %d exceeds %d", ErrLimitExceeded, spec.HilbertDim(), limit)
	}
	return nil
}

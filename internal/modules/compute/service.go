// Package compute runs distribution builders on request and stores their
// grids as snapshots.
package compute

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/phasespace/internal/modules/charts"
	"github.com/aristath/phasespace/internal/modules/distribution"
	"github.com/aristath/phasespace/internal/modules/phasespace"
	"github.com/aristath/phasespace/internal/modules/snapshots"
	"github.com/aristath/phasespace/internal/modules/states"
)

// Distribution kinds.
const (
	KindWigner     = "wigner"
	KindQFunc      = "qfunc"
	KindQuadrature = "quadrature"
)

// Reduction operations.
const (
	OpMarginal = "marginal"
	OpProject  = "project"
)

var (
	// ErrUnknownKind is returned for a distribution kind with no builder.
	ErrUnknownKind = errors.New("unknown distribution kind")
	// ErrUnknownOperation is returned for a reduction other than marginal or project.
	ErrUnknownOperation = errors.New("unknown reduction operation")
	// ErrLimitExceeded is returned when a request exceeds the configured resolution or truncation.
	ErrLimitExceeded = errors.New("request exceeds configured limits")
)

// Store is the snapshot persistence used by Service.
type Store interface {
	Save(s *snapshots.Snapshot) error
	Get(id string) (*snapshots.Snapshot, error)
	GetRaw(id string) ([]byte, error)
	Delete(id string) error
	List(limit int) ([]snapshots.Summary, error)
}

// Limits bounds the work a single request may ask for.
type Limits struct {
	DefaultSteps  int
	MaxSteps      int
	MaxTruncation int
	// MaxHilbertDim bounds the joint dimension of states turned into a
	// density operator (the Wigner and Q kinds).
	MaxHilbertDim int
	// G is the phase-space scaling factor passed to the Wigner and Q transforms.
	G   float64
	TTL time.Duration
}

// Params are the grid parameters of a computation.
type Params struct {
	Extent *distribution.Extent `json:"extent,omitempty"`
	Steps  int                  `json:"steps,omitempty" validate:"omitempty,min=2"`
	Theta1 float64              `json:"theta1"`
	Theta2 float64              `json:"theta2"`
}

// Request is a one-shot computation of a distribution for a state.
type Request struct {
	Params
	State states.Spec `json:"state"`
}

// Service computes, reduces and stores distributions.
type Service struct {
	store  Store
	limits Limits
	log    zerolog.Logger
}

// NewService creates a new compute service.
func NewService(store Store, limits Limits, log zerolog.Logger) *Service {
	if limits.G == 0 {
		limits.G = phasespace.DefaultG
	}
	return &Service{
		store:  store,
		limits: limits,
		log:    log.With().Str("service", "compute").Logger(),
	}
}

// NewSession creates a builder session for kind with p's grid parameters.
func (s *Service) NewSession(kind string, p Params) (*Session, error) {
	p, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	return newSession(kind, p, s.limits)
}

func (s *Service) resolve(p Params) (Params, error) {
	if p.Steps == 0 {
		p.Steps = s.limits.DefaultSteps
	}
	if limit := s.limits.MaxSteps; limit > 0 && p.Steps > limit {
		return p, fmt.Errorf("%w: steps %d exceeds %d", ErrLimitExceeded, p.Steps, limit)
	}
	return p, nil
}

// Compute builds the kind distribution of req.State and stores it.
func (s *Service) Compute(kind string, req Request) (*snapshots.Snapshot, error) {
	sess, err := s.NewSession(kind, req.Params)
	if err != nil {
		return nil, err
	}
	g, err := sess.Update(req.State)
	if err != nil {
		return nil, err
	}

	snap := &snapshots.Snapshot{
		Kind:      kind,
		Params:    computeParams(kind, req, g),
		Grid:      g,
		ExpiresAt: s.expiry(),
	}
	if err := s.store.Save(snap); err != nil {
		return nil, fmt.Errorf("failed to store %s distribution: %w", kind, err)
	}

	s.log.Info().
		Str("id", snap.ID).
		Str("kind", kind).
		Ints("shape", g.Shape()).
		Msg("Computed distribution")
	return snap, nil
}

// Reduce applies op along axis to the stored snapshot id and stores the
// result as a child snapshot.
func (s *Service) Reduce(id, op string, axis int) (*snapshots.Snapshot, error) {
	parent, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	var g *distribution.Grid
	switch op {
	case OpMarginal:
		g, err = parent.Grid.Marginal(axis)
	case OpProject:
		g, err = parent.Grid.Project(axis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	reductionsTotal.WithLabelValues(op, result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to %s snapshot %s: %w", op, id, err)
	}

	child := &snapshots.Snapshot{
		ParentID: parent.ID,
		Kind:     op,
		Params: map[string]interface{}{
			"axis":        axis,
			"axis_label":  parent.Grid.AxisLabel(axis),
			"source_kind": parent.Kind,
		},
		Grid:      g,
		ExpiresAt: s.expiry(),
	}
	if err := s.store.Save(child); err != nil {
		return nil, fmt.Errorf("failed to store %s of %s: %w", op, id, err)
	}
	return child, nil
}

// Get returns a stored snapshot.
func (s *Service) Get(id string) (*snapshots.Snapshot, error) { return s.store.Get(id) }

// GetRaw returns the stored msgpack encoding of snapshot id's grid.
func (s *Service) GetRaw(id string) ([]byte, error) { return s.store.GetRaw(id) }

// Delete removes a stored snapshot.
func (s *Service) Delete(id string) error { return s.store.Delete(id) }

// List returns the most recent snapshot summaries.
func (s *Service) List(limit int) ([]snapshots.Summary, error) { return s.store.List(limit) }

// Chart renders the stored snapshot id in the given style.
func (s *Service) Chart(id, style string) (*charts.Chart, error) {
	snap, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return charts.Render(snap.Grid, style)
}

func (s *Service) expiry() *time.Time {
	if s.limits.TTL <= 0 {
		return nil
	}
	t := time.Now().Add(s.limits.TTL)
	return &t
}

func computeParams(kind string, req Request, g *distribution.Grid) map[string]interface{} {
	axes := g.AxisVectors()
	extent := make([][2]float64, len(axes))
	for i, a := range axes {
		extent[i] = [2]float64{a[0], a[len(a)-1]}
	}

	p := map[string]interface{}{
		"steps":      g.Shape()[0],
		"extent":     extent,
		"truncation": req.State.Truncation(),
	}
	if req.State.Preset != "" {
		p["preset"] = req.State.Preset
	}
	if kind == KindQuadrature {
		p["theta1"] = req.Theta1
		p["theta2"] = req.Theta2
	}
	return p
}

// Package snapshots persists computed distribution grids so that they can
// be fetched, reduced and charted after the request that built them.
package snapshots

import (
	"errors"
	"time"

	"github.com/aristath/phasespace/internal/modules/distribution"
)

// ErrNotFound is returned when no snapshot has the requested ID.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a stored distribution grid.
type Snapshot struct {
	ID        string
	ParentID  string // set on marginals and projections
	Kind      string // wigner, qfunc, quadrature, marginal, project
	Params    map[string]interface{}
	Grid      *distribution.Grid
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Summary describes a snapshot without its grid payload.
type Summary struct {
	ID        string     `json:"id"`
	ParentID  string     `json:"parent_id,omitempty"`
	Kind      string     `json:"kind"`
	Rank      int        `json:"rank"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

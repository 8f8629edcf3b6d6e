package snapshots

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository handles snapshot database operations.
// Grids are stored as msgpack blobs in the snapshots table.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "snapshots").Logger(),
	}
}

// Save stores s, assigning an ID and creation time when they are unset.
func (r *Repository) Save(s *Snapshot) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	blob, err := Encode(s.Grid)
	if err != nil {
		return err
	}
	params, err := json.Marshal(s.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot params: %w", err)
	}

	var expiresAt interface{}
	if s.ExpiresAt != nil {
		expiresAt = s.ExpiresAt.Unix()
	}
	var parentID interface{}
	if s.ParentID != "" {
		parentID = s.ParentID
	}

	_, err = r.db.Exec(`
		INSERT INTO snapshots (id, parent_id, kind, rank, params, grid, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, parentID, s.Kind, s.Grid.Rank(), string(params), blob, s.CreatedAt.Unix(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", s.ID, err)
	}

	r.log.Debug().
		Str("id", s.ID).
		Str("kind", s.Kind).
		Int("bytes", len(blob)).
		Msg("Saved snapshot")
	return nil
}

// Get loads the snapshot with the given ID.
func (r *Repository) Get(id string) (*Snapshot, error) {
	var (
		s         Snapshot
		parentID  sql.NullString
		params    string
		blob      []byte
		createdAt int64
		expiresAt sql.NullInt64
	)
	err := r.db.QueryRow(`
		SELECT id, parent_id, kind, params, grid, created_at, expires_at
		FROM snapshots WHERE id = ?
	`, id).Scan(&s.ID, &parentID, &s.Kind, &params, &blob, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}

	s.Grid, err = Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(params), &s.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params of snapshot %s: %w", id, err)
	}
	s.ParentID = parentID.String
	s.CreatedAt = time.Unix(createdAt, 0)
	if expiresAt.Valid {
		t := time.Unix(expiresAt.Int64, 0)
		s.ExpiresAt = &t
	}
	return &s, nil
}

// GetRaw returns the encoded grid of a snapshot without decoding it.
func (r *Repository) GetRaw(id string) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRow("SELECT grid FROM snapshots WHERE id = ?", id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}
	return blob, nil
}

// Delete removes a snapshot and returns ErrNotFound if it did not exist.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns summaries of the most recent snapshots, newest first.
func (r *Repository) List(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(`
		SELECT id, parent_id, kind, rank, created_at, expires_at
		FROM snapshots ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s         Summary
			parentID  sql.NullString
			createdAt int64
			expiresAt sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &parentID, &s.Kind, &s.Rank, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		s.ParentID = parentID.String
		s.CreatedAt = time.Unix(createdAt, 0)
		if expiresAt.Valid {
			t := time.Unix(expiresAt.Int64, 0)
			s.ExpiresAt = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteExpired removes snapshots whose expiry is at or before now.
func (r *Repository) DeleteExpired(now time.Time) (int64, error) {
	res, err := r.db.Exec("DELETE FROM snapshots WHERE expires_at IS NOT NULL AND expires_at <= ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired snapshots: %w", err)
	}
	if n > 0 {
		r.log.Info().Int64("deleted", n).Msg("Deleted expired snapshots")
	}
	return n, nil
}

// Count returns the number of stored snapshots.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

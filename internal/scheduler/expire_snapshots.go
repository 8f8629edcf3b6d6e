package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotExpirer deletes snapshots whose expiry has passed
type SnapshotExpirer interface {
	DeleteExpired(now time.Time) (int64, error)
}

// ExpireSnapshotsJob removes expired distribution snapshots
type ExpireSnapshotsJob struct {
	repo SnapshotExpirer
	now  func() time.Time
	log  zerolog.Logger
}

// NewExpireSnapshotsJob creates a new ExpireSnapshotsJob
func NewExpireSnapshotsJob(repo SnapshotExpirer, log zerolog.Logger) *ExpireSnapshotsJob {
	return &ExpireSnapshotsJob{
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("job", "expire_snapshots").Logger(),
	}
}

// Name returns the job name
func (j *ExpireSnapshotsJob) Name() string {
	return "expire_snapshots"
}

// Run executes the expiry job
func (j *ExpireSnapshotsJob) Run() error {
	n, err := j.repo.DeleteExpired(j.now())
	if err != nil {
		return fmt.Errorf("failed to expire snapshots: %w", err)
	}
	j.log.Debug().Int64("deleted", n).Msg("Snapshot expiry completed")
	return nil
}

package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
	"github.com/campus-hub/campus-lms/internal/infrastructure/persistence/redis"
)

// RebuildLeaderboardJob periodically rebuilds the leaderboard
// projection from XP stats. The progression service already rebuilds
// after each award; the periodic sweep covers drift after manual
// ledger corrections and repopulates the cache after restarts.
//
// A Redis lock keeps concurrent workers from rebuilding at once.
type RebuildLeaderboardJob struct {
	projector leaderboard.Projector
	locks     *redis.Cache
	logger    *slog.Logger
}

// NewRebuildLeaderboardJob creates the job. The lock cache is
// optional: without it the job always rebuilds.
func NewRebuildLeaderboardJob(projector leaderboard.Projector, locks *redis.Cache, logger *slog.Logger) *RebuildLeaderboardJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RebuildLeaderboardJob{
		projector: projector,
		locks:     locks,
		logger:    logger,
	}
}

// Name returns the unique name of the job.
func (j *RebuildLeaderboardJob) Name() string {
	return "rebuild_leaderboard"
}

// Description returns a human-readable description of the job.
func (j *RebuildLeaderboardJob) Description() string {
	return "Rebuilds the leaderboard projection from XP stats"
}

// Run rebuilds the projection unless another worker holds the lock.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	if j.locks != nil {
		acquired, err := j.locks.SetNX(ctx, redis.LockKey(j.Name()), "1", redis.TTLJobLock)
		if err != nil {
			return fmt.Errorf("acquire rebuild lock: %w", err)
		}
		if !acquired {
			j.logger.Debug("rebuild lock held by another worker, skipping")
			return nil
		}
		defer func() {
			if err := j.locks.Delete(context.WithoutCancel(ctx), redis.LockKey(j.Name())); err != nil {
				j.logger.Warn("failed to release rebuild lock", "error", err)
			}
		}()
	}

	total, err := j.projector.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild leaderboard: %w", err)
	}

	j.logger.Info("leaderboard rebuilt", "total_users", total)
	return nil
}

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campus-hub/campus-lms/internal/domain/challenge"
)

// expireBatchSize limits how many assignments one sweep processes.
const expireBatchSize = 500

// ExpireAssignmentsJob sweeps assignments whose window has closed and
// marks them expired. Only in-progress assignments are touched:
// a completed but unclaimed assignment stays claimable.
type ExpireAssignmentsJob struct {
	assignments challenge.AssignmentRepository
	logger      *slog.Logger
}

// NewExpireAssignmentsJob creates the job.
func NewExpireAssignmentsJob(assignments challenge.AssignmentRepository, logger *slog.Logger) *ExpireAssignmentsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpireAssignmentsJob{
		assignments: assignments,
		logger:      logger,
	}
}

// Name returns the unique name of the job.
func (j *ExpireAssignmentsJob) Name() string {
	return "expire_assignments"
}

// Description returns a human-readable description of the job.
func (j *ExpireAssignmentsJob) Description() string {
	return "Marks in-progress assignments with closed windows as expired"
}

// Run expires due assignments in batches until none remain.
func (j *ExpireAssignmentsJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	var expired int

	for {
		due, err := j.assignments.ListDueForExpiry(ctx, now, expireBatchSize)
		if err != nil {
			return fmt.Errorf("list due assignments: %w", err)
		}
		if len(due) == 0 {
			break
		}

		for _, a := range due {
			if err := a.Expire(now); err != nil {
				// Raced with a progress update or another sweep.
				j.logger.Debug("assignment no longer expirable",
					"assignment_id", a.ID,
					"error", err,
				)
				continue
			}

			if err := j.assignments.Update(ctx, a); err != nil {
				return fmt.Errorf("expire assignment %s: %w", a.ID, err)
			}
			expired++
		}

		if len(due) < expireBatchSize {
			break
		}
	}

	if expired > 0 {
		j.logger.Info("assignment expiry completed", "expired", expired)
	}

	return nil
}

// Package jobs contains the scheduled jobs of the progression worker:
// challenge issuance, assignment expiry and leaderboard rebuilds.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-lms/internal/domain/challenge"
	"github.com/campus-hub/campus-lms/internal/domain/gamification"
)

// IssueChallengesJob pre-issues assignments for every active challenge
// to every known learner for the current window. Issuance is idempotent
// per (challenge, user, window), so the job can run on several workers
// and alongside lazy issuance from event handlers.
type IssueChallengesJob struct {
	kind        challenge.Kind
	challenges  challenge.Repository
	assignments challenge.AssignmentRepository
	stats       gamification.StatsRepository
	logger      *slog.Logger
}

// NewIssueChallengesJob creates the job for one challenge kind, so the
// daily and weekly cadences can be scheduled independently.
func NewIssueChallengesJob(
	kind challenge.Kind,
	challenges challenge.Repository,
	assignments challenge.AssignmentRepository,
	stats gamification.StatsRepository,
	logger *slog.Logger,
) *IssueChallengesJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &IssueChallengesJob{
		kind:        kind,
		challenges:  challenges,
		assignments: assignments,
		stats:       stats,
		logger:      logger,
	}
}

// Name returns the unique name of the job.
func (j *IssueChallengesJob) Name() string {
	return fmt.Sprintf("issue_%s_challenges", j.kind)
}

// Description returns a human-readable description of the job.
func (j *IssueChallengesJob) Description() string {
	return "Issues current-window challenge assignments to active learners"
}

// Run issues assignments for all open challenges.
func (j *IssueChallengesJob) Run(ctx context.Context) error {
	now := time.Now().UTC()

	all, err := j.challenges.ListActive(ctx, now)
	if err != nil {
		return fmt.Errorf("list active challenges: %w", err)
	}

	active := all[:0:0]
	for _, c := range all {
		if c.Kind == j.kind {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		j.logger.Debug("no active challenges to issue", "kind", j.kind)
		return nil
	}

	// Learners are taken from the stats table: anyone who has ever
	// earned XP. Users without stats get their assignment lazily on
	// first qualifying activity.
	learners, err := j.stats.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list learners: %w", err)
	}

	var issued int
	for _, c := range active {
		for _, learner := range learners {
			assignment, err := c.Issue(uuid.NewString(), learner.UserID, now)
			if err != nil {
				j.logger.Warn("skipping assignment",
					"challenge_id", c.ID,
					"user_id", learner.UserID,
					"error", err,
				)
				continue
			}

			stored, err := j.assignments.Create(ctx, assignment)
			if err != nil {
				return fmt.Errorf("create assignment for user %d: %w", learner.UserID, err)
			}
			if stored.ID == assignment.ID {
				issued++
			}
		}
	}

	j.logger.Info("challenge issuance completed",
		"kind", j.kind,
		"challenges", len(active),
		"learners", len(learners),
		"newly_issued", issued,
	)

	return nil
}

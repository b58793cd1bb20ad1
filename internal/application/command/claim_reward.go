package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-lms/internal/domain/challenge"
	"github.com/campus-hub/campus-lms/internal/domain/gamification"
	"github.com/campus-hub/campus-lms/internal/domain/notification"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
	"github.com/campus-hub/campus-lms/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/campus-lms/internal/infrastructure/service"
	"github.com/campus-hub/campus-lms/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLAIM REWARD COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// ClaimRewardCommand contains the data for claiming a challenge reward.
type ClaimRewardCommand struct {
	// UserID is the student claiming the reward.
	UserID int64

	// AssignmentID is the completed assignment being claimed.
	AssignmentID string
}

// Validate validates the command.
func (c ClaimRewardCommand) Validate() error {
	if c.UserID <= 0 {
		return fmt.Errorf("claim_reward: invalid user_id: %d", c.UserID)
	}

	if !shared.IsUUID(c.AssignmentID) {
		return fmt.Errorf("claim_reward: invalid assignment_id: %s", c.AssignmentID)
	}

	return nil
}

// ClaimRewardResult contains the result of claiming a reward.
type ClaimRewardResult struct {
	// AssignmentID is the claimed assignment.
	AssignmentID string

	// XPAwarded is the amount of XP credited.
	XPAwarded int

	// BadgeCode is the badge awarded alongside the XP (empty if none).
	BadgeCode string

	// NewLevel is the student's level after the award.
	NewLevel int

	// LeveledUp reports whether the award crossed a level threshold.
	LeveledUp bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ClaimRewardHandler handles the ClaimRewardCommand.
//
// The claim flip, the completion snapshot and the XP award commit in
// one transaction: a failed award rolls the claim back, so a retry
// finds the assignment still claimable.
type ClaimRewardHandler struct {
	challenges  challenge.Repository
	assignments func(tx pgx.Tx) challenge.AssignmentRepository
	progression *service.ProgressionService
	events      shared.EventPublisher
	notifier    Notifier
}

// NewClaimRewardHandler creates a new ClaimRewardHandler.
func NewClaimRewardHandler(
	challenges challenge.Repository,
	progression *service.ProgressionService,
	events shared.EventPublisher,
	notifier Notifier,
) *ClaimRewardHandler {
	return &ClaimRewardHandler{
		challenges: challenges,
		assignments: func(tx pgx.Tx) challenge.AssignmentRepository {
			return postgres.NewAssignmentRepositoryTx(tx)
		},
		progression: progression,
		events:      events,
		notifier:    notifier,
	}
}

// Handle executes the claim reward command.
func (h *ClaimRewardHandler) Handle(ctx context.Context, cmd ClaimRewardCommand) (*ClaimRewardResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("claim_reward: validation failed: %w", err)
	}

	now := timeutil.Now()

	var claimed *challenge.Assignment
	var ch *challenge.Challenge

	outcome, err := h.progression.AwardXPWithin(ctx, func(tx pgx.Tx) (service.AwardParams, error) {
		assignments := h.assignments(tx)

		a, err := assignments.GetByIDForUpdate(ctx, cmd.AssignmentID)
		if err != nil {
			return service.AwardParams{}, fmt.Errorf("failed to get assignment: %w", err)
		}

		if a.UserID != cmd.UserID {
			return service.AwardParams{}, shared.ErrForbidden
		}

		if err := a.Claim(now); err != nil {
			return service.AwardParams{}, err
		}

		if err := assignments.Update(ctx, a); err != nil {
			return service.AwardParams{}, fmt.Errorf("failed to update assignment: %w", err)
		}

		c, err := h.challenges.GetByID(ctx, a.ChallengeID)
		if err != nil {
			return service.AwardParams{}, fmt.Errorf("failed to get challenge: %w", err)
		}

		snapshot := a.CompletionSnapshot(uuid.NewString(), c.XPReward)
		if err := assignments.RecordCompletion(ctx, snapshot); err != nil {
			return service.AwardParams{}, fmt.Errorf("failed to record completion: %w", err)
		}

		claimed, ch = a, c
		return service.AwardParams{
			UserID:     cmd.UserID,
			Amount:     c.XPReward,
			SourceType: gamification.SourceChallenge,
			SourceID:   a.ID,
			BadgeCode:  c.BadgeCode,
			BadgeTitle: c.Title,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim_reward: %w", err)
	}

	if h.events != nil {
		event := shared.NewRewardClaimedEvent(claimed.ID, ch.ID, cmd.UserID, ch.XPReward, ch.BadgeCode)
		_ = h.events.Publish(event)
	}

	if h.notifier != nil {
		_ = h.notifier.Notify(ctx, cmd.UserID, notification.TypeRewardClaimed, ch.Title, ch.XPReward)
	}

	return &ClaimRewardResult{
		AssignmentID: claimed.ID,
		XPAwarded:    ch.XPReward,
		BadgeCode:    ch.BadgeCode,
		NewLevel:     outcome.NewLevel,
		LeveledUp:    outcome.LeveledUp(),
	}, nil
}

// Package service wires the domain packages into the progression
// pipeline: atomic XP awards, the leaderboard projection and outbound
// notifications.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-lms/internal/domain/gamification"
	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
	"github.com/campus-hub/campus-lms/internal/infrastructure/persistence/postgres"
)

// TxRunner runs a function inside a database transaction.
// *postgres.Connection satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

// AwardRepos bundles the tx-scoped repositories an XP award touches.
// A nil Leaderboard disables the in-transaction projection rebuild.
type AwardRepos struct {
	Ledger      gamification.LedgerRepository
	Stats       gamification.StatsRepository
	Badges      gamification.BadgeRepository
	Leaderboard leaderboard.Repository
}

// ProjectionRebuilder recomputes the leaderboard projection from stats.
// RebuildFrom runs inside the award transaction; Refresh handles the
// post-commit side effects (cache, events).
type ProjectionRebuilder interface {
	RebuildFrom(ctx context.Context, stats gamification.StatsRepository, repo leaderboard.Repository) ([]*leaderboard.Entry, error)
	Refresh(ctx context.Context, entries []*leaderboard.Entry)
}

// ProgressionService applies XP awards atomically: the ledger entry,
// the derived stats, the badge grant and the leaderboard projection
// all commit in one transaction.
type ProgressionService struct {
	runner    TxRunner
	repos     func(tx pgx.Tx) AwardRepos
	projector ProjectionRebuilder
	events    shared.EventBus
	logger    *slog.Logger
}

// NewProgressionService creates a service backed by PostgreSQL.
// The projector and event bus are optional.
func NewProgressionService(
	conn *postgres.Connection,
	projector ProjectionRebuilder,
	events shared.EventBus,
	logger *slog.Logger,
) *ProgressionService {
	return NewProgressionServiceWith(conn, postgresAwardRepos, projector, events, logger)
}

// NewProgressionServiceWith creates a service with explicit transaction
// runner and repository factory.
func NewProgressionServiceWith(
	runner TxRunner,
	repos func(tx pgx.Tx) AwardRepos,
	projector ProjectionRebuilder,
	events shared.EventBus,
	logger *slog.Logger,
) *ProgressionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressionService{
		runner:    runner,
		repos:     repos,
		projector: projector,
		events:    events,
		logger:    logger,
	}
}

func postgresAwardRepos(tx pgx.Tx) AwardRepos {
	return AwardRepos{
		Ledger:      postgres.NewLedgerRepositoryTx(tx),
		Stats:       postgres.NewStatsRepositoryTx(tx),
		Badges:      postgres.NewBadgeRepositoryTx(tx),
		Leaderboard: postgres.NewLeaderboardRepositoryTx(tx),
	}
}

// AwardParams describes a single XP award.
type AwardParams struct {
	UserID     int64
	Amount     int
	SourceType gamification.SourceType
	SourceID   string

	// BadgeCode optionally grants a badge together with the XP
	// (challenge rewards carry one).
	BadgeCode  string
	BadgeTitle string
}

// AwardXP credits XP to a user. A repeat of the same (user, source
// type, source id) for a non-repeatable source is a no-op and is
// reported as a duplicate, not an error. A non-positive amount leaves
// the ledger and stats untouched but still grants the badge, so a
// badge-only reward works.
//
// The ledger entry, stats update, badge grant and leaderboard rebuild
// commit in one transaction; events publish after commit.
func (s *ProgressionService) AwardXP(ctx context.Context, params AwardParams) (*gamification.AwardOutcome, error) {
	return s.AwardXPWithin(ctx, func(pgx.Tx) (AwardParams, error) {
		return params, nil
	})
}

// AwardXPWithin is AwardXP with a prepare step that runs first inside
// the same transaction and resolves the award parameters. A claim
// flips its assignment in prepare so that a failed award rolls the
// claim back too.
func (s *ProgressionService) AwardXPWithin(
	ctx context.Context,
	prepare func(tx pgx.Tx) (AwardParams, error),
) (*gamification.AwardOutcome, error) {
	var params AwardParams
	var outcome gamification.AwardOutcome
	var projection []*leaderboard.Entry

	err := s.runner.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		params, err = prepare(tx)
		if err != nil {
			return err
		}

		repos := s.repos(tx)

		if params.Amount <= 0 {
			return s.awardBadgeOnly(ctx, repos, params, &outcome)
		}

		entry, err := gamification.NewLedgerEntry(gamification.NewLedgerEntryParams{
			ID:         uuid.NewString(),
			UserID:     params.UserID,
			Amount:     params.Amount,
			SourceType: params.SourceType,
			SourceID:   params.SourceID,
		})
		if err != nil {
			return fmt.Errorf("build ledger entry: %w", err)
		}

		inserted, err := repos.Ledger.Insert(ctx, entry)
		if err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}

		stats, err := repos.Stats.Get(ctx, params.UserID)
		if err != nil {
			return fmt.Errorf("load user stats: %w", err)
		}

		if !inserted {
			outcome = gamification.AwardOutcome{
				Duplicate: true,
				NewTotal:  stats.TotalXP,
				OldLevel:  stats.Level,
				NewLevel:  stats.Level,
			}
			return nil
		}

		oldLevel := stats.Level
		stats.Apply(entry)

		if err := repos.Stats.Upsert(ctx, stats); err != nil {
			return fmt.Errorf("upsert user stats: %w", err)
		}

		if err := s.grantBadge(ctx, repos.Badges, params); err != nil {
			return err
		}

		outcome = gamification.AwardOutcome{
			Amount:   entry.Amount,
			NewTotal: stats.TotalXP,
			OldLevel: oldLevel,
			NewLevel: stats.Level,
		}

		if s.projector != nil && repos.Leaderboard != nil {
			projection, err = s.projector.RebuildFrom(ctx, repos.Stats, repos.Leaderboard)
			if err != nil {
				return fmt.Errorf("rebuild leaderboard: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Duplicate {
		s.logger.Debug("duplicate xp award ignored",
			"user_id", params.UserID,
			"source_type", params.SourceType,
			"source_id", params.SourceID,
		)
		return &outcome, nil
	}

	if outcome.Amount > 0 {
		s.logger.Info("xp awarded",
			"user_id", params.UserID,
			"amount", outcome.Amount,
			"new_total", outcome.NewTotal,
			"source_type", params.SourceType,
		)
	}

	if projection != nil {
		s.projector.Refresh(ctx, projection)
	}

	s.publishAwardEvents(params, outcome)

	return &outcome, nil
}

// awardBadgeOnly handles a non-positive amount: the XP state stays as
// it is, only the badge (if any) is granted.
func (s *ProgressionService) awardBadgeOnly(
	ctx context.Context,
	repos AwardRepos,
	params AwardParams,
	outcome *gamification.AwardOutcome,
) error {
	stats, err := repos.Stats.Get(ctx, params.UserID)
	if err != nil {
		return fmt.Errorf("load user stats: %w", err)
	}

	if err := s.grantBadge(ctx, repos.Badges, params); err != nil {
		return err
	}

	*outcome = gamification.AwardOutcome{
		NewTotal: stats.TotalXP,
		OldLevel: stats.Level,
		NewLevel: stats.Level,
	}
	return nil
}

func (s *ProgressionService) grantBadge(ctx context.Context, badges gamification.BadgeRepository, params AwardParams) error {
	if params.BadgeCode == "" {
		return nil
	}

	badge, err := badges.GetOrCreateByCode(ctx, params.BadgeCode, params.BadgeTitle, "")
	if err != nil {
		return fmt.Errorf("resolve badge %s: %w", params.BadgeCode, err)
	}

	if err := badges.Award(ctx, params.UserID, badge.ID); err != nil {
		return fmt.Errorf("award badge %s: %w", params.BadgeCode, err)
	}

	return nil
}

func (s *ProgressionService) publishAwardEvents(params AwardParams, outcome gamification.AwardOutcome) {
	if s.events == nil || outcome.Amount <= 0 {
		return
	}

	awarded := shared.NewXPAwardedEvent(
		params.UserID,
		outcome.Amount,
		outcome.NewTotal,
		string(params.SourceType),
		params.SourceID,
	)
	if err := s.events.Publish(awarded); err != nil {
		s.logger.Error("failed to publish xp awarded event", "error", err)
	}

	if outcome.LeveledUp() {
		levelUp := shared.NewLevelUpEvent(params.UserID, outcome.OldLevel, outcome.NewLevel, outcome.NewTotal)
		if err := s.events.Publish(levelUp); err != nil {
			s.logger.Error("failed to publish level up event", "error", err)
		}
	}
}

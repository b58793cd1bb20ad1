package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campus-hub/campus-lms/internal/domain/gamification"
	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// LeaderboardProjector implements leaderboard.Projector. The ranking
// is a pure projection of the XP stats: rebuilding from the same
// stats always yields the same board.
type LeaderboardProjector struct {
	stats    gamification.StatsRepository
	repo     leaderboard.Repository
	cache    leaderboard.Cache
	cacheTTL time.Duration
	events   shared.EventBus
	logger   *slog.Logger
}

// NewLeaderboardProjector creates a projector. Cache and event bus
// are optional.
func NewLeaderboardProjector(
	stats gamification.StatsRepository,
	repo leaderboard.Repository,
	cache leaderboard.Cache,
	cacheTTL time.Duration,
	events shared.EventBus,
	logger *slog.Logger,
) *LeaderboardProjector {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardProjector{
		stats:    stats,
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		events:   events,
		logger:   logger,
	}
}

// Rebuild recomputes the ranking from stats and atomically replaces
// the stored projection. Returns the number of ranked users.
func (p *LeaderboardProjector) Rebuild(ctx context.Context) (int, error) {
	entries, err := p.RebuildFrom(ctx, p.stats, p.repo)
	if err != nil {
		return 0, err
	}

	p.Refresh(ctx, entries)

	return len(entries), nil
}

// RebuildFrom recomputes the ranking from the given stats source and
// replaces the projection through the given repository. Passing
// tx-scoped repositories makes the rebuild part of the surrounding
// transaction; cache and events are left to Refresh after commit.
func (p *LeaderboardProjector) RebuildFrom(
	ctx context.Context,
	stats gamification.StatsRepository,
	repo leaderboard.Repository,
) ([]*leaderboard.Entry, error) {
	all, err := stats.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user stats: %w", err)
	}

	now := time.Now().UTC()
	ranking := leaderboard.NewRanking()
	for _, s := range all {
		entry := &leaderboard.Entry{
			UserID:    s.UserID,
			TotalXP:   s.TotalXP,
			Level:     s.Level,
			UpdatedAt: now,
		}
		if err := ranking.Add(entry); err != nil {
			return nil, fmt.Errorf("add user %d to ranking: %w", s.UserID, err)
		}
	}
	ranking.Sort()

	entries := ranking.All()
	if err := repo.Replace(ctx, entries); err != nil {
		return nil, fmt.Errorf("replace leaderboard: %w", err)
	}

	return entries, nil
}

// Refresh pushes a rebuilt ranking into the cache and announces it.
// Both are best-effort: a cold cache falls back to the projection
// table, and subscribers tolerate a missed announcement.
func (p *LeaderboardProjector) Refresh(ctx context.Context, entries []*leaderboard.Entry) {
	if p.cache != nil {
		if err := p.cache.SetRanking(ctx, entries, p.cacheTTL); err != nil {
			p.logger.Warn("failed to cache leaderboard", "error", err)
		}
	}

	if p.events != nil {
		event := shared.NewLeaderboardRebuiltEvent("global", len(entries))
		if err := p.events.Publish(event); err != nil {
			p.logger.Error("failed to publish leaderboard rebuilt event", "error", err)
		}
	}
}

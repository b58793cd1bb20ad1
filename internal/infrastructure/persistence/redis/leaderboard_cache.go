package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
)

// Leaderboard cache keys. Entries are keyed by rank in one hash, with
// a second hash mapping user ID to rank for point lookups.
const (
	keyLeaderboardEntries = PrefixLeaderboard + "entries"
	keyLeaderboardUsers   = PrefixLeaderboard + "users"
)

// LeaderboardCache implements leaderboard.Cache on Redis hashes.
//
// A sorted set keyed by XP cannot reproduce the projection's order:
// ties are broken by ascending user ID, and ZSET tie-breaking is
// lexicographic on the member string. Ranks are therefore assigned by
// the projector and stored as-is.
type LeaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a LeaderboardCache on top of a Cache client.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{client: cache.Client()}
}

// cachedEntry is the JSON shape stored per rank.
type cachedEntry struct {
	Rank      int       `json:"rank"`
	UserID    int64     `json:"user_id"`
	TotalXP   int       `json:"total_xp"`
	Level     int       `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCached(e *leaderboard.Entry) cachedEntry {
	return cachedEntry{
		Rank:      e.Rank,
		UserID:    e.UserID,
		TotalXP:   e.TotalXP,
		Level:     e.Level,
		UpdatedAt: e.UpdatedAt,
	}
}

func (c cachedEntry) toEntry() *leaderboard.Entry {
	return &leaderboard.Entry{
		Rank:      c.Rank,
		UserID:    c.UserID,
		TotalXP:   c.TotalXP,
		Level:     c.Level,
		UpdatedAt: c.UpdatedAt,
	}
}

// SetRanking replaces the cached ranking with a new one.
func (c *LeaderboardCache) SetRanking(ctx context.Context, entries []*leaderboard.Entry, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrCacheInvalidTTL
	}

	entryFields := make(map[string]interface{}, len(entries))
	userFields := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(toCached(e))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		entryFields[strconv.Itoa(e.Rank)] = data
		userFields[strconv.FormatInt(e.UserID, 10)] = e.Rank
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keyLeaderboardEntries, keyLeaderboardUsers)
	if len(entryFields) > 0 {
		pipe.HSet(ctx, keyLeaderboardEntries, entryFields)
		pipe.HSet(ctx, keyLeaderboardUsers, userFields)
		pipe.Expire(ctx, keyLeaderboardEntries, ttl)
		pipe.Expire(ctx, keyLeaderboardUsers, ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// GetTop returns ranks 1..n from the cache.
func (c *LeaderboardCache) GetTop(ctx context.Context, n int) ([]*leaderboard.Entry, error) {
	return c.GetRange(ctx, 1, n)
}

// GetRange returns entries with ranks in [fromRank, toRank].
// Returns ErrCacheMiss when the ranking is not cached.
func (c *LeaderboardCache) GetRange(ctx context.Context, fromRank, toRank int) ([]*leaderboard.Entry, error) {
	if fromRank < 1 {
		fromRank = 1
	}
	if toRank < fromRank {
		return nil, nil
	}

	exists, err := c.client.Exists(ctx, keyLeaderboardEntries).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrCacheMiss
	}

	fields := make([]string, 0, toRank-fromRank+1)
	for rank := fromRank; rank <= toRank; rank++ {
		fields = append(fields, strconv.Itoa(rank))
	}

	values, err := c.client.HMGet(ctx, keyLeaderboardEntries, fields...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*leaderboard.Entry, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}

		var cached cachedEntry
		if err := json.Unmarshal([]byte(val.(string)), &cached); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		entries = append(entries, cached.toEntry())
	}

	return entries, nil
}

// GetByUser returns a user's cached entry.
// Returns leaderboard.ErrUserNotRanked when the cached ranking does
// not contain the user, ErrCacheMiss when nothing is cached.
func (c *LeaderboardCache) GetByUser(ctx context.Context, userID int64) (*leaderboard.Entry, error) {
	rankStr, err := c.client.HGet(ctx, keyLeaderboardUsers, strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			exists, exErr := c.client.Exists(ctx, keyLeaderboardUsers).Result()
			if exErr != nil {
				return nil, exErr
			}
			if exists == 0 {
				return nil, ErrCacheMiss
			}
			return nil, leaderboard.ErrUserNotRanked
		}
		return nil, err
	}

	data, err := c.client.HGet(ctx, keyLeaderboardEntries, rankStr).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var cached cachedEntry
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	return cached.toEntry(), nil
}

// Invalidate drops the cached ranking.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, keyLeaderboardEntries, keyLeaderboardUsers).Err()
}

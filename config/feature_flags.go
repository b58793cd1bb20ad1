package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollouts.
// Supports per-user consistent bucketing, user overrides and
// time-based activation windows.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[int64]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID  int64
	IsAdmin bool
}

// Predefined feature flag names.
const (
	// === Event Bus Features ===
	FeatureEventsRedisBus = "events.redis_bus" // Redis Pub/Sub instead of in-memory fan-out

	// === Leaderboard Features ===
	FeatureLeaderboardCache     = "leaderboard.cache"     // Redis cache in front of the projection
	FeatureLeaderboardNeighbors = "leaderboard.neighbors" // ±K window queries

	// === Notification Features ===
	FeatureNotifyLevelUp    = "notify.level_up"    // "You reached level N!"
	FeatureNotifyEnrollment = "notify.enrollment"  // Approval/decline messages
	FeatureNotifyChallenges = "notify.challenges"  // Challenge completed / reward claimed

	// === Challenge Features ===
	FeatureChallengesLazyIssue = "challenges.lazy_issue" // Issue assignments on first qualifying event
	FeatureChallengesSpecial   = "challenges.special"    // One-off challenges with fixed windows

	// === Scheduler Features ===
	FeatureSchedulerIssuance = "scheduler.issuance" // Pre-issue daily/weekly assignments
	FeatureSchedulerExpiry   = "scheduler.expiry"   // Periodic expiry sweep
	FeatureSchedulerRebuild  = "scheduler.rebuild"  // Periodic leaderboard rebuild
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[int64]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Event bus: in-memory by default, Redis bus opt-in per deployment
	ff.features[FeatureEventsRedisBus] = &Feature{
		Name:           FeatureEventsRedisBus,
		Description:    "Publish domain events over Redis Pub/Sub",
		Enabled:        false,
		RolloutPercent: 0,
	}

	// Leaderboard features - enabled by default
	ff.features[FeatureLeaderboardCache] = &Feature{
		Name:           FeatureLeaderboardCache,
		Description:    "Serve leaderboard reads from Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboardNeighbors] = &Feature{
		Name:           FeatureLeaderboardNeighbors,
		Description:    "Enable neighbor window queries",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Notification features - carefully tuned to avoid spam
	ff.features[FeatureNotifyLevelUp] = &Feature{
		Name:           FeatureNotifyLevelUp,
		Description:    "Congratulate on new levels",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyEnrollment] = &Feature{
		Name:           FeatureNotifyEnrollment,
		Description:    "Notify on enrollment decisions",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyChallenges] = &Feature{
		Name:           FeatureNotifyChallenges,
		Description:    "Notify on challenge completion and rewards",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Challenge features
	ff.features[FeatureChallengesLazyIssue] = &Feature{
		Name:           FeatureChallengesLazyIssue,
		Description:    "Issue assignments lazily on qualifying events",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureChallengesSpecial] = &Feature{
		Name:           FeatureChallengesSpecial,
		Description:    "One-off special challenges",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Scheduler features
	ff.features[FeatureSchedulerIssuance] = &Feature{
		Name:           FeatureSchedulerIssuance,
		Description:    "Pre-issue daily/weekly assignments",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureSchedulerExpiry] = &Feature{
		Name:           FeatureSchedulerExpiry,
		Description:    "Expire overdue assignments",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureSchedulerRebuild] = &Feature{
		Name:           FeatureSchedulerRebuild,
		Description:    "Rebuild leaderboard periodically",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_EVENTS_REDIS_BUS=true
// Example: FEATURE_NOTIFY_LEVEL_UP=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "events.redis_bus" -> "FEATURE_EVENTS_REDIS_BUS"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != 0 {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != 0 {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID int64, featureName string, percent int) bool {
	// Create a consistent hash for this user+feature combination
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(strconv.FormatInt(userID, 10)))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetUserOverride sets a feature override for a specific user.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID int64, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID int64) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Convenience methods for common checks ---

// NotificationsEnabled checks if any notifications are enabled.
func (ff *FeatureFlags) NotificationsEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureNotifyLevelUp, ctx) ||
		ff.IsEnabled(FeatureNotifyEnrollment, ctx) ||
		ff.IsEnabled(FeatureNotifyChallenges, ctx)
}

// UseRedisEventBus checks if domain events should go over Redis.
func (ff *FeatureFlags) UseRedisEventBus() bool {
	return ff.IsEnabled(FeatureEventsRedisBus, nil)
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}

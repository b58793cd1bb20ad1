package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_courses_enrollments", UpSQL: migration001Up},
		{Version: 2, Name: "create_assessment", UpSQL: migration002Up},
		{Version: 3, Name: "create_challenges", UpSQL: migration003Up},
		{Version: 4, Name: "create_gamification", UpSQL: migration004Up},
		{Version: 5, Name: "create_leaderboard", UpSQL: migration005Up},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: Courses & Enrollments
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS courses (
    id UUID PRIMARY KEY,
    title TEXT NOT NULL,
    mode TEXT NOT NULL DEFAULT 'auto_accept',
    key_hash TEXT NOT NULL DEFAULT '',
    published BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS enrollments (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL,
    course_id UUID NOT NULL REFERENCES courses(id),
    status TEXT NOT NULL,
    mode TEXT NOT NULL,
    requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    activated_at TIMESTAMPTZ,
    completed_at TIMESTAMPTZ,
    decided_by BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- At most one blocking enrollment per (user, course). A completed
-- course keeps the seat: cancelled and declined enrollments are the
-- only ones that free it up.
CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_one_open
    ON enrollments(user_id, course_id)
    WHERE status IN ('pending', 'active', 'completed');

CREATE INDEX IF NOT EXISTS idx_enrollments_course_status
    ON enrollments(course_id, status);

CREATE INDEX IF NOT EXISTS idx_enrollments_user
    ON enrollments(user_id);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: Exercises, Questions, Attempts
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS exercises (
    id UUID PRIMARY KEY,
    course_id UUID NOT NULL REFERENCES courses(id),
    title TEXT NOT NULL,
    published BOOLEAN NOT NULL DEFAULT FALSE,
    xp_reward INTEGER NOT NULL DEFAULT 0,
    available_from TIMESTAMPTZ,
    available_until TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_exercises_course
    ON exercises(course_id);

CREATE TABLE IF NOT EXISTS questions (
    id UUID PRIMARY KEY,
    exercise_id UUID NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    prompt TEXT NOT NULL,
    score_weight INTEGER NOT NULL DEFAULT 1,
    position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_questions_exercise
    ON questions(exercise_id, position);

CREATE TABLE IF NOT EXISTS question_options (
    id UUID PRIMARY KEY,
    question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    text TEXT NOT NULL,
    is_correct BOOLEAN NOT NULL DEFAULT FALSE,
    position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_options_question
    ON question_options(question_id, position);

CREATE TABLE IF NOT EXISTS attempts (
    id UUID PRIMARY KEY,
    exercise_id UUID NOT NULL REFERENCES exercises(id),
    user_id BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'in_progress',
    total_score INTEGER,
    started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at TIMESTAMPTZ,
    duration_seconds INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_attempts_user_exercise
    ON attempts(user_id, exercise_id);

CREATE TABLE IF NOT EXISTS answers (
    id UUID PRIMARY KEY,
    attempt_id UUID NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
    question_id UUID NOT NULL REFERENCES questions(id),
    selected_option_id UUID,
    text_response TEXT NOT NULL DEFAULT '',
    file_url TEXT NOT NULL DEFAULT '',
    score_awarded INTEGER,
    is_correct BOOLEAN,
    submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (attempt_id, question_id)
);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: Challenges & Assignments
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS challenges (
    id UUID PRIMARY KEY,
    kind TEXT NOT NULL,
    objective TEXT NOT NULL,
    title TEXT NOT NULL,
    target INTEGER NOT NULL,
    xp_reward INTEGER NOT NULL DEFAULT 0,
    badge_code TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    starts_at TIMESTAMPTZ,
    ends_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_challenges_active
    ON challenges(active, objective);

CREATE TABLE IF NOT EXISTS challenge_assignments (
    id UUID PRIMARY KEY,
    challenge_id UUID NOT NULL REFERENCES challenges(id),
    user_id BIGINT NOT NULL,
    window_key TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    progress INTEGER NOT NULL DEFAULT 0,
    target INTEGER NOT NULL,
    issued_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ,
    claimed_at TIMESTAMPTZ,
    UNIQUE (challenge_id, user_id, window_key)
);

CREATE INDEX IF NOT EXISTS idx_assignments_user_status
    ON challenge_assignments(user_id, status);

-- Expiry sweep scans only open assignments.
CREATE INDEX IF NOT EXISTS idx_assignments_expiry
    ON challenge_assignments(expires_at)
    WHERE status IN ('pending', 'in_progress');

-- Snapshot of a claimed assignment: progress and XP as they were at
-- claim time.
CREATE TABLE IF NOT EXISTS challenge_completions (
    id UUID PRIMARY KEY,
    challenge_id UUID NOT NULL REFERENCES challenges(id),
    user_id BIGINT NOT NULL,
    progress INTEGER NOT NULL,
    target INTEGER NOT NULL,
    xp_earned INTEGER NOT NULL DEFAULT 0,
    claimed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_completions_user
    ON challenge_completions(user_id, claimed_at DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: XP Ledger, Stats, Badges
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
CREATE TABLE IF NOT EXISTS xp_ledger (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    source_type TEXT NOT NULL,
    source_id TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- One XP award per action, except manual adjustments which may repeat.
CREATE UNIQUE INDEX IF NOT EXISTS idx_xp_ledger_dedup
    ON xp_ledger(user_id, source_type, source_id)
    WHERE source_type <> 'manual';

CREATE INDEX IF NOT EXISTS idx_xp_ledger_user_created
    ON xp_ledger(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS user_stats (
    user_id BIGINT PRIMARY KEY,
    total_xp INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1,
    lessons_completed INTEGER NOT NULL DEFAULT 0,
    attempts_completed INTEGER NOT NULL DEFAULT 0,
    courses_completed INTEGER NOT NULL DEFAULT 0,
    challenges_completed INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_user_stats_ranking
    ON user_stats(total_xp DESC, user_id ASC);

CREATE TABLE IF NOT EXISTS badges (
    id UUID PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_badges (
    user_id BIGINT NOT NULL,
    badge_id UUID NOT NULL REFERENCES badges(id),
    awarded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, badge_id)
);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 005: Materialized Leaderboard
// ══════════════════════════════════════════════════════════════════════════════

const migration005Up = `
CREATE TABLE IF NOT EXISTS leaderboard_entries (
    rank INTEGER PRIMARY KEY,
    user_id BIGINT NOT NULL UNIQUE,
    total_xp INTEGER NOT NULL,
    level INTEGER NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

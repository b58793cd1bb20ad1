// Package main - точка входа фонового процесса (Worker) Campus LMS.
//
// Worker обслуживает конвейер прогрессии:
// - Подписки на доменные события (уроки, попытки, курсы) с начислением XP
// - Выдача ежедневных и еженедельных челленджей по расписанию
// - Просрочка назначений с истёкшим окном
// - Периодическая пересборка проекции лидерборда и её кеша
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/campus-hub/campus-lms/config"
	"github.com/campus-hub/campus-lms/internal/application/eventhandler"
	"github.com/campus-hub/campus-lms/internal/domain/challenge"
	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
	"github.com/campus-hub/campus-lms/internal/infrastructure/messaging"
	"github.com/campus-hub/campus-lms/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/campus-lms/internal/infrastructure/persistence/redis"
	"github.com/campus-hub/campus-lms/internal/infrastructure/scheduler"
	"github.com/campus-hub/campus-lms/internal/infrastructure/scheduler/jobs"
	"github.com/campus-hub/campus-lms/internal/infrastructure/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Campus LMS worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. МИГРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache *redis.Cache
		lbCache    leaderboard.Cache
	)

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info("Redis connection established")
			if cfg.Features.IsEnabled(config.FeatureLeaderboardCache, nil) {
				lbCache = redis.NewLeaderboardCache(redisCache)
			}
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = log
	localBusConfig.WorkerPoolSize = cfg.Events.MaxConcurrentHandlers

	var eventBus shared.EventBus
	if cfg.Features.UseRedisEventBus() && redisCache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redis.NewPubSubAdapter(redisCache),
			ChannelName:    cfg.Events.Channel,
			LocalBusConfig: localBusConfig,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis event bus: %w", err)
		}
		defer func() { _ = redisBus.Close() }()
		eventBus = redisBus
		log.Info("using Redis event bus", "channel", cfg.Events.Channel)
	} else {
		localBus := messaging.NewInMemoryEventBus(localBusConfig)
		defer func() { _ = localBus.Close() }()
		eventBus = localBus
		log.Info("using in-memory event bus")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. РЕПОЗИТОРИИ И СЕРВИСЫ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories and services...")
	challengeRepo := postgres.NewChallengeRepository(dbConn)
	assignmentRepo := postgres.NewAssignmentRepository(dbConn)
	statsRepo := postgres.NewStatsRepository(dbConn)
	leaderboardRepo := postgres.NewLeaderboardRepository(dbConn)
	exerciseRepo := postgres.NewExerciseRepository(dbConn)

	projector := service.NewLeaderboardProjector(
		statsRepo,
		leaderboardRepo,
		lbCache,
		cfg.Gamification.LeaderboardCacheTTL,
		eventBus,
		log,
	)

	progression := service.NewProgressionService(dbConn, projector, eventBus, log)
	notifier := service.NewNotificationService(log, service.NewLogChannel(log))

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ПОДПИСКИ НА ДОМЕННЫЕ СОБЫТИЯ
	// ─────────────────────────────────────────────────────────────────────────
	tracker := eventhandler.NewChallengeProgressTracker(dbConn, challengeRepo, eventBus, notifier, log)

	lessonHandler := eventhandler.NewOnLessonCompletedHandler(progression, tracker, log, eventhandler.LessonCompletedConfig{
		XPPerLesson: cfg.Gamification.XPPerLesson,
	})
	attemptHandler := eventhandler.NewOnAttemptCompletedHandler(exerciseRepo, progression, tracker, log)
	courseHandler := eventhandler.NewOnCourseCompletedHandler(progression, tracker, log, eventhandler.CourseCompletedConfig{
		XPPerCourse: cfg.Gamification.XPPerCourse,
	})
	levelUpHandler := eventhandler.NewOnLevelUpHandler(notifier, log)

	if err := eventBus.Subscribe(lessonHandler.EventType(), lessonHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe lesson handler: %w", err)
	}
	if err := eventBus.Subscribe(attemptHandler.EventType(), attemptHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe attempt handler: %w", err)
	}
	if err := eventBus.Subscribe(courseHandler.EventType(), courseHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe course handler: %w", err)
	}
	if cfg.Features.IsEnabled(config.FeatureNotifyLevelUp, nil) {
		if err := eventBus.Subscribe(levelUpHandler.EventType(), levelUpHandler.Handle); err != nil {
			return fmt.Errorf("failed to subscribe level up handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Scheduler.Enabled {
		log.Info("starting scheduler...")
		sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Logger:        log,
			EnableMetrics: cfg.Observability.MetricsEnabled,
		})

		if cfg.Features.IsEnabled(config.FeatureSchedulerIssuance, nil) {
			dailyJob := jobs.NewIssueChallengesJob(challenge.KindDaily, challengeRepo, assignmentRepo, statsRepo, log)
			daily := scheduler.NewDailySchedule(cfg.Scheduler.DailyIssueHour, cfg.Scheduler.DailyIssueMinute)
			if err := sched.Register(dailyJob, daily); err != nil {
				return fmt.Errorf("failed to register daily issue job: %w", err)
			}

			weeklyJob := jobs.NewIssueChallengesJob(challenge.KindWeekly, challengeRepo, assignmentRepo, statsRepo, log)
			weekly := scheduler.NewWeeklySchedule(cfg.Scheduler.WeeklyIssueWeekday, cfg.Scheduler.WeeklyIssueHour, cfg.Scheduler.WeeklyIssueMinute)
			if err := sched.Register(weeklyJob, weekly); err != nil {
				return fmt.Errorf("failed to register weekly issue job: %w", err)
			}
		}

		if cfg.Features.IsEnabled(config.FeatureSchedulerExpiry, nil) {
			expireJob := jobs.NewExpireAssignmentsJob(assignmentRepo, log)
			interval := scheduler.NewIntervalSchedule(cfg.Scheduler.ExpireAssignmentsInterval)
			if err := sched.Register(expireJob, interval); err != nil {
				return fmt.Errorf("failed to register expiry job: %w", err)
			}
		}

		if cfg.Features.IsEnabled(config.FeatureSchedulerRebuild, nil) {
			rebuildJob := jobs.NewRebuildLeaderboardJob(projector, redisCache, log)
			interval := scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildLeaderboardInterval)
			if err := sched.Register(rebuildJob, interval); err != nil {
				return fmt.Errorf("failed to register rebuild job: %w", err)
			}
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Campus LMS worker is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

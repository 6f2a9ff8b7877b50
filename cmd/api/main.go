package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/zenithcode/zenith-api/internal/config"
	"github.com/zenithcode/zenith-api/internal/database"
	"github.com/zenithcode/zenith-api/internal/events"
	"github.com/zenithcode/zenith-api/internal/handler"
	"github.com/zenithcode/zenith-api/internal/middleware"
	"github.com/zenithcode/zenith-api/internal/models"
	"github.com/zenithcode/zenith-api/internal/observability"
	"github.com/zenithcode/zenith-api/internal/repository"
	"github.com/zenithcode/zenith-api/internal/router"
	"github.com/zenithcode/zenith-api/internal/service"
	"github.com/zenithcode/zenith-api/pkg/judge"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.TestCase{},
		&models.Submission{},
		&models.LevelSubmission{},
		&models.LevelProblemSubmission{},
		&models.Test{},
		&models.MCQ{},
		&models.TestSubmission{},
		&models.MCQAnswer{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, stats caching disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, grading events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	observability.RegisterMetrics()

	judgeClient := judge.NewHTTPClient(judge.Config{
		URL:     cfg.JudgeURL,
		Timeout: cfg.JudgeTimeout,
	}, logger)
	publisher := events.NewNATSPublisher(natsConn, "", logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	levelRepo := repository.NewLevelSubmissionRepository(db)
	testRepo := repository.NewTestRepository(db)
	testSubmissionRepo := repository.NewTestSubmissionRepository(db)

	authService := service.NewAuthService(userRepo, validate, logger, cfg.JWTSecret, cfg.TokenTTL)
	problemService := service.NewProblemService(problemRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, judgeClient, publisher, validate, logger, cfg.JudgeTimeout)
	levelService := service.NewLevelSessionService(levelRepo, submissionRepo, problemRepo, validate, logger)
	testService := service.NewTestService(testRepo, testSubmissionRepo, validate, logger)
	statsService := service.NewStatsService(problemRepo, submissionRepo, redisClient, cfg.StatsCacheTTL, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	problemHandler := handler.NewProblemHandler(problemService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	levelHandler := handler.NewLevelSubmissionHandler(levelService, logger)
	testHandler := handler.NewTestHandler(testService, logger)
	statsHandler := handler.NewStatsHandler(statsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:            authHandler,
		ProblemHandler:         problemHandler,
		SubmissionHandler:      submissionHandler,
		LevelSubmissionHandler: levelHandler,
		TestHandler:            testHandler,
		StatsHandler:           statsHandler,
		JWTMiddleware:          middleware.JWTProtected(cfg.JWTSecret),
		SubmitRateLimit:        cfg.SubmitRateLimit,
		SubmitRateWindow:       cfg.SubmitRateWindow,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"portfolio-api/src/api"
	"portfolio-api/src/api/controllers"
	"portfolio-api/src/api/handlers"
	"portfolio-api/src/clients/marketdata"
	"portfolio-api/src/config"
	"portfolio-api/src/database"
	"portfolio-api/src/repositories"
	"portfolio-api/src/scheduler"
	"portfolio-api/src/services"
	"portfolio-api/src/utils"
	redis_utils "portfolio-api/src/utils/redis"
)

func main() {
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		logrus.WithError(err).Fatal("error while loading config")
	}

	logger := utils.NewLogger(cfg.Service.Debug)

	errC, err := run(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("couldn't run")
	}

	if err := <-errC; err != nil {
		logger.WithError(err).Error("error while running")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) (<-chan error, error) {
	ctx := utils.WithLogger(context.Background(), logrus.NewEntry(logger))

	pool, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(ctx, cfg); err != nil {
		return nil, err
	}

	userRepo := repositories.NewUserRepository(pool)
	tickerRepo := repositories.NewTickerRepository(pool)
	priceRepo := repositories.NewPriceRepository(pool)

	authService := services.NewAuthService(userRepo, cfg)
	if cfg.Auth.DemoUserEnabled {
		if err := authService.EnsureDemoUser(ctx); err != nil {
			return nil, err
		}
	}

	var cache *redis_utils.RedisHandler
	if cfg.Redis.Host != "" {
		cache, err = redis_utils.NewRedisHandler(cfg)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, portfolio cache disabled")
			cache = nil
		}
	}

	portfolioService := services.NewPortfolioService(tickerRepo, priceRepo, cache, cfg)
	etlService := services.NewETLService(tickerRepo, priceRepo, marketdata.NewClient(), marketdata.NewMockClient(), cfg)

	// The universe must be loaded before the first portfolio request.
	if err := etlService.Run(ctx); err != nil {
		return nil, err
	}

	var etlTask *scheduler.ScheduledTask
	if cfg.ETL.ScheduleEnabled {
		etlTask, err = scheduler.NewScheduledTask(ctx, "etl", cfg.ETL.ScheduleCron, etlService.Run)
		if err != nil {
			return nil, err
		}
		logger.WithField("cron", cfg.ETL.ScheduleCron).Info("ETL schedule enabled")
	}

	controller := controllers.NewController(pool, authService, portfolioService)
	handler := handlers.NewHandler(controller)
	server := api.NewServer(cfg, handler, authService.TokenAuth(), logger)
	httpServer := api.NewHTTPServer(cfg, server)

	errC := make(chan error, 1)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if etlTask != nil {
			etlTask.Cancel()
		}
		if cache != nil {
			_ = cache.Close()
		}

		err := httpServer.Shutdown(shutdownCtx)
		pool.Close()
		errC <- err
	}()

	go func() {
		logger.WithField("port", cfg.Service.Port).Info("starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	return errC, nil
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/controllers"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/routes"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/auth"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/calendar"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/dashboard"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/messages"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/notifier"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/sales"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/schedules"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/stars"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/tenants"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/tests"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/training"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/users"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/config"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/push"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := dbClient.AutoMigrate(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to run migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, login throttling disabled")
	}

	tenantService, err := tenants.NewService(tenants.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create tenant service", err)
		os.Exit(1)
	}
	if _, err := tenantService.Seed(context.Background(), cfg.Tenant); err != nil {
		logg.Error(context.Background(), "failed to seed default tenant", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	hub := push.NewHub(logg)

	messageService, err := messages.NewService(messages.NewRepository(dbClient.DB()), userService, hub)
	if err != nil {
		logg.Error(context.Background(), "failed to create message service", err)
		os.Exit(1)
	}

	notifierService, err := notifier.NewService(messageService, userService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(sales.NewRepository(dbClient.DB()), userService, dbClient, notifierService)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	starsService, err := stars.NewService(stars.NewRepository(dbClient.DB()), userService, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create stars service", err)
		os.Exit(1)
	}

	scheduleService, err := schedules.NewService(schedules.NewRepository(dbClient.DB()), notifierService)
	if err != nil {
		logg.Error(context.Background(), "failed to create schedule service", err)
		os.Exit(1)
	}

	trainingService, err := training.NewService(training.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create training service", err)
		os.Exit(1)
	}

	testsService, err := tests.NewService(tests.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create tests service", err)
		os.Exit(1)
	}

	calendarService, err := calendar.NewService(calendar.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create calendar service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(
		sales.NewRepository(dbClient.DB()),
		stars.NewRepository(dbClient.DB()),
		messages.NewRepository(dbClient.DB()),
		schedules.NewRepository(dbClient.DB()),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	var authService auth.Service
	if redisClient != nil {
		authService, err = auth.NewService(userService, cfg.JWT, cfg.Password, cfg.AuthRateLimit, redisClient)
	} else {
		authService, err = auth.NewService(userService, cfg.JWT, cfg.Password, cfg.AuthRateLimit, nil)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	healthDeps := map[string]controllers.Pinger{"db": dbClient, "redis": nil}
	if redisClient != nil {
		healthDeps["redis"] = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, healthDeps, hub,
			authService, userService, tenantService, messageService,
			scheduleService, salesService, starsService, trainingService, testsService,
			calendarService, dashboardService,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

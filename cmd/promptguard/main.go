// @title PromptGuard API
// @version 0.1.0
// @description Two-tier prompt firewall with per-session escalation.
// @BasePath /
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/NeuralTrust/PromptGuard/docs"
	"github.com/NeuralTrust/PromptGuard/pkg/config"
	"github.com/NeuralTrust/PromptGuard/pkg/dependency_container"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/database"
	infraLogger "github.com/NeuralTrust/PromptGuard/pkg/infra/logger"
	_ "github.com/NeuralTrust/PromptGuard/pkg/infra/migrations"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/PromptGuard/pkg/server"
	"github.com/NeuralTrust/PromptGuard/pkg/server/router"
	"github.com/NeuralTrust/PromptGuard/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, closeLogger, err := infraLogger.NewLogger(infraLogger.Config{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLogger()

	logger.WithFields(logrus.Fields{
		"version":       version.Version,
		"session_store": cfg.Sessions.Store,
		"tier1":         cfg.Firewall.Tier1.Provider + "/" + cfg.Firewall.Tier1.Model,
		"tier2":         cfg.Firewall.Tier2.Provider + "/" + cfg.Firewall.Tier2.Model,
	}).Info("starting " + version.AppName)

	if cfg.Metrics.Enabled {
		prometheus.Initialize(prometheus.MetricsConfig{
			EnableLatency:     cfg.Metrics.EnableLatency,
			EnableTierLatency: cfg.Metrics.EnableTierLatency,
		})
	}

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.NewDB(logger, &database.Config{
			Enabled:  cfg.Database.Enabled,
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatalf("failed to initialize database: %v", err)
		}
	}

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
		DB:     db,
	})
	if err != nil {
		logger.Fatalf("failed to initialize dependencies: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	container.Start(ctx, cfg)

	srv := server.NewFirewallServer(server.FirewallServerDI{
		Config: cfg,
		Logger: logger,
		Routers: []router.ServerRouter{
			router.NewFirewallRouter(container.MiddlewareTransport, container.HandlerTransport),
		},
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("error shutting down server")
	}
	cancel()
	container.Close()
	logger.Info("server gracefully stopped")
}

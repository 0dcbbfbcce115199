package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quegate/quegate/config"
	"github.com/quegate/quegate/internal/alert"
	"github.com/quegate/quegate/internal/core/conn"
	"github.com/quegate/quegate/internal/core/gateway"
	"github.com/quegate/quegate/internal/recon"
	"github.com/quegate/quegate/internal/store"
	"github.com/quegate/quegate/pkg/logger"
	"github.com/quegate/quegate/pkg/metrics"
	"github.com/quegate/quegate/web"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the daemon command: HTTP API, background jobs, and
// a warm backend connection.
func NewServeCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(version)
		},
	}
}

func runServe(version string) error {
	// Load configuration from .env file, environment variables, or defaults
	cfg, err := config.LoadConfig(version)
	if err != nil {
		return err
	}

	// Initialize logger with configured log level
	logger.Init(cfg.LogLevel)
	log.Info().Str("version", cfg.Version).Str("backend", cfg.Backend).Msg("Starting QueGate")

	collector := metrics.NewCollector(nil)

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open cache store: %w", err)
		}
		defer st.Close()
	} else {
		log.Info().Msg("Cache store disabled - no queue cache, journal, or alert history")
	}

	var notifiers []alert.Notifier
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout()))
		log.Info().Str("url", cfg.WebhookURL).Msg("Webhook notifications enabled")
	}
	alerts := alert.NewService(st, cfg.AlertDedupWindow(), notifiers...)

	manager := conn.New(cfg, collector)
	svc := gateway.NewService(cfg, manager, nil, collector, st, alerts)

	// Warm up the connection. Failure is not fatal: operations reconnect on
	// demand and the probe job keeps trying.
	if err := manager.Connect(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Initial connection failed, will retry on demand")
	}

	scheduler := recon.NewScheduler(cfg, manager, st)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	// Conditionally start web server based on EnableWebAPI flag
	var app *fiber.App
	if cfg.EnableWebAPI {
		log.Info().Msg("Web API enabled - initializing web server...")

		webServer, err := web.NewWebServer(cfg, svc, collector)
		if err != nil {
			return fmt.Errorf("failed to create web server: %w", err)
		}

		// open "server.log" for appending
		logfile, err := web.OpenLogFile("server.log")
		if err != nil {
			return err
		}
		defer logfile.Close()

		app = webServer.SetupApp(logfile)

		// Start the web server in a goroutine
		go func() {
			if err := webServer.Listen(app); err != nil {
				log.Fatal().Err(err).Msg("Web server error")
			}
		}()
	} else {
		log.Info().Msg("Web API disabled - skipping web server initialization")
	}

	// Handle OS signals for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info().Msg("Shutting down QueGate...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if app != nil {
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown web server")
		} else {
			log.Info().Msg("Web server gracefully stopped")
		}
	}

	if err := manager.Disconnect(); err != nil {
		log.Warn().Err(err).Msg("Failed to close backend connection")
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

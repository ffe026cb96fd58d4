package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/planline/adapter/cli"
	"github.com/felixgeelhaar/planline/internal/app"
	"github.com/felixgeelhaar/planline/pkg/config"
	"github.com/google/uuid"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	// Update logger level based on config
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	cli.SetLogger(logger)

	// Try to initialize the full container
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
			// In development, allow CLI to run without database
			cliApp = nil
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		// Start outbox processor in background (optional in CLI)
		if cfg.OutboxProcessorEnabled {
			if err := container.OutboxProcessor.Start(ctx); err != nil {
				logger.Error("failed to start outbox processor", "error", err)
				os.Exit(1)
			}
		}

		// Create CLI app with handlers
		cliApp = cli.NewApp(
			container.CreateScheduleHandler,
			container.AddTaskHandler,
			container.ChangeTaskDateHandler,
			container.MoveTaskHandler,
			container.LinkTasksHandler,
			container.UnlinkTaskHandler,
			container.RemoveTaskHandler,
			container.GetScheduleHandler,
		)

		actorID, err := uuid.Parse(cfg.ActorID)
		if err != nil {
			logger.Error("invalid PLANLINE_ACTOR_ID", "error", err)
			os.Exit(1)
		}
		cliApp.SetCurrentActorID(actorID)

		if container.Exporter != nil {
			cliApp.SetExporter(container.Exporter)
		}
		cliApp.SetMetrics(container.Metrics)
	}

	// Set the CLI app and run
	cli.SetApp(cliApp)
	cli.Execute()
}

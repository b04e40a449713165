package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/adapter/cli/project"
	"github.com/lenslate/darkroom/adapter/cli/resource"
	"github.com/lenslate/darkroom/adapter/cli/timeline"
	"github.com/lenslate/darkroom/internal/app"
	"github.com/lenslate/darkroom/pkg/config"
	"github.com/lenslate/darkroom/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	if cfg.LogLevel != "" {
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
	}
	if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	logCfg.ServiceVersion = cli.Version
	logger = observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	// Without DATABASE_URL the CLI runs against a local SQLite file,
	// which is the common single-studio setup.
	var container *app.Container
	if cfg.IsLocalMode() {
		container, err = app.NewLocalContainer(ctx, cfg, logger)
	} else {
		container, err = app.NewContainer(ctx, cfg, logger)
	}

	var cliApp *cli.App
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		if cfg.OutboxProcessorEnabled {
			go container.OutboxProcessor.Start(ctx)
		} else {
			logger.Info("outbox processor disabled in CLI")
		}

		cliApp = &cli.App{
			CreateProjectHandler:        container.CreateProjectHandler,
			AdvanceStageHandler:         container.AdvanceStageHandler,
			UpdateStageProgressHandler:  container.UpdateStageProgressHandler,
			ArchiveProjectHandler:       container.ArchiveProjectHandler,
			GetProjectSnapshotHandler:   container.GetProjectSnapshotHandler,
			ListProjectsHandler:         container.ListProjectsHandler,
			GetTimelineHandler:          container.GetTimelineHandler,
			GetEstimatedDeliveryHandler: container.GetEstimatedDeliveryHandler,
			CreateLedgerHandler:         container.CreateLedgerHandler,
			EquipmentHandler:            container.EquipmentHandler,
			ConsumeStorageHandler:       container.ConsumeStorageHandler,
			GetLedgerHandler:            container.GetLedgerHandler,
			Templates:                   container.Templates,
		}
	}

	cli.SetApp(cliApp)

	cli.AddCommand(project.Cmd)
	cli.AddCommand(timeline.Cmd)
	cli.AddCommand(resource.Cmd)

	cli.Execute()
}

// Package main contains the entrypoint for the study-advisor Telegram bot.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/edgard/edubot/internal/bot"
	"github.com/edgard/edubot/internal/bot/handlers"
	"github.com/edgard/edubot/internal/bot/tasks"
	"github.com/edgard/edubot/internal/config"
	"github.com/edgard/edubot/internal/database"
	"github.com/edgard/edubot/internal/engine"
	"github.com/edgard/edubot/internal/extract"
	"github.com/edgard/edubot/internal/gemini"
	"github.com/edgard/edubot/internal/logger"
	"github.com/edgard/edubot/internal/memory"
	"github.com/edgard/edubot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "edubot",
		Short:         "Telegram study advisor",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "./config.yaml", "Path to configuration file")

	cmd.AddCommand(&cobra.Command{
		Use:           "migrate",
		Short:         "Apply database migrations and exit",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrateOnly(configPath)
		},
	})

	return cmd
}

func setup(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return nil, nil, err
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)
	return cfg, log, nil
}

func migrateOnly(configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return err
	}
	defer database.CloseDB(db)

	if err := database.ApplyMigrations(db.DB, database.ExtractDBNameFromPath(cfg.Database.Path)); err != nil {
		log.Error("Failed to apply migrations", "error", err)
		return err
	}
	log.Info("Migrations applied", "path", cfg.Database.Path)
	return nil
}

// run wires every component, starts the bot and blocks until ctx is cancelled.
func run(ctx context.Context, configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return err
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return err
	}

	extractor, err := extract.New(cfg.Memory.Extractor, gemClient, cfg.Memory.ExtractTimeout, log)
	if err != nil {
		log.Error("Failed to create fact extractor", "strategy", cfg.Memory.Extractor, "error", err)
		return err
	}
	mem := memory.NewStore(extractor, memory.Options{
		Capacity:      cfg.Memory.ShortTermCapacity,
		TruncateRunes: cfg.Memory.TruncateRunes,
	}, log)

	orchestrator := engine.NewOrchestrator(engine.Deps{
		Logger:    log,
		Gate:      engine.NewGate(cfg.Messages.ProfileMissing, cfg.Messages.ProfileIncomplete),
		Router:    engine.DefaultRouter(cfg.Messages.ProfileRetry),
		Generator: gemClient,
		Memory:    mem,
		Profiles:  store,
	}, engine.Options{
		GenerateTimeout: cfg.Engine.GenerateTimeout,
		PersistTimeout:  cfg.Engine.PersistTimeout,
		ShortWindow:     cfg.Memory.ShortWindow,
		FactWindow:      cfg.Memory.FactWindow,
		Apology:         cfg.Messages.Apology,
	})

	sessions := handlers.NewSessions()
	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Engine:   orchestrator,
		Memory:   mem,
		Sessions: sessions,
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewTextHandler(hDeps)),
	)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return err
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return err
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return err
	}

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Memory:   mem,
		Sessions: sessions,
		Config:   cfg,
	})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return err
	}

	log.Info("Starting bot...")
	runErr := bot.NewBot(log, store, tg, sched).Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	// Give buffered log output a moment before the process exits.
	defer time.Sleep(time.Second)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return runErr
	}
	log.Info("Bot stopped gracefully.")
	return nil
}

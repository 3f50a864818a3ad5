package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/edgard/tg2site/internal/bot"
	"github.com/edgard/tg2site/internal/bot/tasks"
	"github.com/edgard/tg2site/internal/config"
	"github.com/edgard/tg2site/internal/gitrepo"
	"github.com/edgard/tg2site/internal/logger"
	"github.com/edgard/tg2site/internal/mirror"
	"github.com/edgard/tg2site/internal/telegram"
)

// runBridge bootstraps every component and runs the bridge until ctx is
// cancelled or a component fails. An interruption is not an error.
func runBridge(ctx context.Context, envFile string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	env, err := config.ReadEnv()
	if err != nil {
		return err
	}

	log, closer := logger.NewLogger(logger.Options{
		Level: env.LogLevel,
		JSON:  env.LogFormat == "json",
		File:  env.LogFile,
	})
	defer closer.Close()
	log.Info("Logger initialized", "level", env.LogLevel, "format", env.LogFormat)

	err = run(ctx, env, log)
	if err != nil && ctx.Err() != nil {
		log.Info("Interrupted during shutdown", "error", err)
		return nil
	}
	if err != nil {
		log.Error("tg2site stopped due to error", "error", err)
		return err
	}
	log.Info("tg2site stopped gracefully.")
	return nil
}

func run(ctx context.Context, env *config.Env, log *slog.Logger) error {
	cfg, err := config.Load(env)
	if err != nil {
		return err
	}
	log.Info("Configuration loaded", "config", cfg)

	api, err := telegram.NewAPI(cfg.Secrets.TelegramToken, cfg.APIURL, log)
	if err != nil {
		return err
	}
	if _, err := telegram.Preflight(ctx, api, log); err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "tg2site-*")
	if err != nil {
		return fmt.Errorf("failed to create worktree directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("Failed to remove worktree", "dir", workDir, "error", err)
		}
	}()

	repo, err := gitrepo.Clone(ctx, gitrepo.ExecRunner{Logger: log}, gitrepo.CloneOptions{
		URL:       cfg.Secrets.RepositoryURL,
		Branch:    cfg.PublishBranch,
		Dir:       workDir,
		UserName:  cfg.CommitterName,
		UserEmail: cfg.CommitterEmail,
	}, log)
	if err != nil {
		return err
	}

	messagesDir := filepath.Join(repo.Dir(), cfg.MessagesDir)
	if err := os.MkdirAll(messagesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create messages directory: %w", err)
	}
	cursor, err := mirror.RecoverCursor(messagesDir)
	if err != nil {
		return err
	}
	log.Info("Recovered cursor", "cursor", cursor, "messages_dir", cfg.MessagesDir)

	client := telegram.NewClient(telegram.ClientOptions{
		APIURL:         cfg.APIURL,
		Token:          cfg.Secrets.TelegramToken,
		PollTimeout:    cfg.PollTimeout,
		RequestTimeout: cfg.RequestTimeout,
	}, log)
	syncer := mirror.NewRepoSync(repo, messagesDir, cfg.CommitMessage, log)
	loop := mirror.New(client, syncer, cfg.ChannelID, cursor, log)

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{Logger: log, Stats: loop, Config: cfg})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		return err
	}

	return bot.NewBot(log, loop, sched).Run(ctx)
}

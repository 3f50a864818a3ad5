// Package bot orchestrates the lifecycle of the bridge: the mirror loop and
// the scheduler for periodic tasks run side by side until one fails or the
// process is asked to stop.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Loop is the long-running mirror loop.
type Loop interface {
	Run(ctx context.Context) error
}

// Bot represents the running bridge and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	loop      Loop
	scheduler *Scheduler
}

// NewBot creates a new orchestrator around the loop and the scheduler.
func NewBot(logger *slog.Logger, loop Loop, scheduler *Scheduler) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		loop:      loop,
		scheduler: scheduler,
	}
}

// Run starts all components and blocks until ctx is cancelled or one of
// them fails. Cancellation of ctx is a graceful stop and yields nil.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting mirror loop...")
		err := b.loop.Run(gCtx)
		b.logger.Info("Mirror loop stopped.")

		if err == nil && gCtx.Err() == nil {
			return errors.New("mirror loop stopped unexpectedly")
		}
		return err
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && ctx.Err() == nil {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// Package tasks implements the periodic tasks run next to the mirror loop.
package tasks

import (
	"log/slog"

	"github.com/edgard/tg2site/internal/config"
	"github.com/edgard/tg2site/internal/mirror"
)

// StatsSource exposes the progress of the mirror loop.
type StatsSource interface {
	Stats() mirror.Stats
}

// TaskDeps contains the dependencies shared by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Stats  StatsSource
	Config *config.Config
}

// Package config provides configuration loading, validation, and management
// for tg2site. Process-level settings come from the environment, the bridge
// configuration from a JSON blob and the credentials from a JSON secrets file.
package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/edgard/tg2site/internal/redact"
)

// ErrConfiguration is wrapped by every error caused by missing or malformed
// configuration values.
var ErrConfiguration = errors.New("configuration error")

// Config holds the immutable settings of one bridge process.
type Config struct {
	PublishBranch string `mapstructure:"publish_branch" validate:"required"`
	ChannelID     int64  `mapstructure:"channel_id"     validate:"required"`

	MessagesDir    string `mapstructure:"messages_dir"    validate:"required"`
	CommitMessage  string `mapstructure:"commit_message"  validate:"required"`
	CommitterName  string `mapstructure:"committer_name"  validate:"required"`
	CommitterEmail string `mapstructure:"committer_email" validate:"required"`

	APIURL         string        `mapstructure:"api_url"         validate:"required,url"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout"    validate:"min=0s,max=10m"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gtfield=PollTimeout,max=15m"`

	Scheduler SchedulerConfig `mapstructure:"scheduler"`

	Secrets Secrets `mapstructure:"-"`
}

// Secrets holds the values read from the secrets file.
type Secrets struct {
	RepositoryURL string `mapstructure:"repository_url" validate:"required"`
	TelegramToken string `mapstructure:"telegram_token" validate:"required"`
}

// SchedulerConfig holds settings for the scheduled task runner.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig defines the settings for a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// LogValue implements slog.LogValuer so the credentials never reach the logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("publish_branch", c.PublishBranch),
		slog.Int64("channel_id", c.ChannelID),
		slog.String("messages_dir", c.MessagesDir),
		slog.String("api_url", c.APIURL),
		slog.Duration("poll_timeout", c.PollTimeout),
		slog.Duration("request_timeout", c.RequestTimeout),
		slog.Int("scheduled_tasks", len(c.Scheduler.Tasks)),
		slog.String("repository_url", redact.URL(c.Secrets.RepositoryURL)),
	)
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrWebhookActive is returned by Preflight when the bot has a webhook
// registered, in which case the Bot API refuses getUpdates.
var ErrWebhookActive = errors.New("webhook is active")

// NewAPI creates a go-telegram/bot instance for one-off Bot API calls. It
// does not contact the API; use Preflight for that.
func NewAPI(token, serverURL string, logger *slog.Logger) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	opts := []bot.Option{bot.WithSkipGetMe()}
	if serverURL != "" {
		opts = append(opts, bot.WithServerURL(serverURL))
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return b, nil
}

// Preflight checks that the token is valid and that updates can be polled.
// It returns the bot's own user record.
func Preflight(ctx context.Context, b *bot.Bot, logger *slog.Logger) (*models.User, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	me, err := b.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: getMe failed: %w", ErrTransport, scrubError(err))
	}
	log.InfoContext(ctx, "Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	info, err := b.GetWebhookInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: getWebhookInfo failed: %w", ErrTransport, scrubError(err))
	}
	if info.URL != "" {
		return nil, fmt.Errorf("%w: %s is registered, remove it to poll updates", ErrWebhookActive, info.URL)
	}
	log.DebugContext(ctx, "No webhook registered", "pending_update_count", info.PendingUpdateCount)

	return me, nil
}

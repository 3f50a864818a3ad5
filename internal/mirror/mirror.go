// Package mirror implements the poll-filter-persist loop that copies the
// posts of one Telegram channel into a git repository, one JSON file per
// update. The loop keeps no state of its own: its cursor is recovered from
// the files already committed.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/edgard/tg2site/internal/telegram"
)

// Fetcher returns the updates with an identifier of at least offset.
type Fetcher interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
}

// Syncer durably persists a non-empty batch of entries.
type Syncer interface {
	Sync(ctx context.Context, entries []Entry) error
}

// Stats is a snapshot of the loop's progress.
type Stats struct {
	Cursor            int64
	Polls             uint64
	UpdatesSeen       uint64
	MessagesPersisted uint64
	Syncs             uint64
	StartedAt         time.Time
	LastSync          time.Time
}

// Mirror drives the loop for one channel. It is not safe for concurrent
// use, except for Stats.
type Mirror struct {
	fetcher   Fetcher
	syncer    Syncer
	channelID int64
	cursor    int64
	logger    *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a loop starting after cursor.
func New(fetcher Fetcher, syncer Syncer, channelID, cursor int64, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		fetcher:   fetcher,
		syncer:    syncer,
		channelID: channelID,
		cursor:    cursor,
		logger:    logger.With("component", "mirror", "channel_id", channelID),
		stats:     Stats{Cursor: cursor, StartedAt: time.Now()},
	}
}

// Cursor returns the highest update identifier handled so far.
func (m *Mirror) Cursor() int64 {
	return m.cursor
}

// Stats returns a snapshot of the loop statistics.
func (m *Mirror) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Run polls until ctx is done or a step fails. Every error is fatal to the
// loop; restarting the process resumes from the persisted files.
func (m *Mirror) Run(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Starting mirror loop", "cursor", m.cursor)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Step(ctx); err != nil {
			return err
		}
	}
}

// Step runs one fetch, filter and optional sync cycle.
func (m *Mirror) Step(ctx context.Context) error {
	offset := m.cursor + 1
	updates, err := m.fetcher.GetUpdates(ctx, offset)
	if err != nil {
		return fmt.Errorf("failed to fetch updates from offset %d: %w", offset, err)
	}

	entries := Filter(updates, m.channelID)
	if len(updates) > 0 {
		m.logger.DebugContext(ctx, "Got updates",
			"count", len(updates),
			"matched", len(entries),
			"chats", chatIDs(updates))
	}

	if len(entries) > 0 {
		if err := m.syncer.Sync(ctx, entries); err != nil {
			return fmt.Errorf("failed to persist %d messages (updates %d..%d): %w",
				len(entries), entries[0].UpdateID, entries[len(entries)-1].UpdateID, err)
		}
	}

	next := NextCursor(m.cursor, updates)
	if next != m.cursor {
		m.logger.DebugContext(ctx, "Advanced cursor", "from", m.cursor, "to", next)
	}
	m.cursor = next

	m.mu.Lock()
	m.stats.Cursor = next
	m.stats.Polls++
	m.stats.UpdatesSeen += uint64(len(updates))
	if len(entries) > 0 {
		m.stats.Syncs++
		m.stats.MessagesPersisted += uint64(len(entries))
		m.stats.LastSync = time.Now()
	}
	m.mu.Unlock()

	return nil
}

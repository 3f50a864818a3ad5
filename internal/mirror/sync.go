package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/edgard/tg2site/internal/telegram"
)

// Repository is the set of git operations a sync transaction runs.
type Repository interface {
	Pull(ctx context.Context) error
	AddAll(ctx context.Context) error
	HasChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
}

// RepoSync persists entries into a git worktree: pull, write one file per
// entry, then commit and push. The first failing step aborts the
// transaction; nothing is rolled back or retried.
type RepoSync struct {
	repo          Repository
	messagesDir   string
	commitMessage string
	logger        *slog.Logger
}

// NewRepoSync creates a sync transaction writing into messagesDir, which
// must lie inside the worktree of repo.
func NewRepoSync(repo Repository, messagesDir, commitMessage string, logger *slog.Logger) *RepoSync {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepoSync{
		repo:          repo,
		messagesDir:   messagesDir,
		commitMessage: commitMessage,
		logger:        logger.With("component", "sync"),
	}
}

// Sync runs one transaction. It does nothing for an empty batch.
func (s *RepoSync) Sync(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	if err := s.repo.Pull(ctx); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	if err := os.MkdirAll(s.messagesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create messages directory: %w", err)
	}
	for _, e := range entries {
		data, err := compact(e.Message)
		if err != nil {
			return fmt.Errorf("update %d: %w", e.UpdateID, err)
		}
		path := filepath.Join(s.messagesDir, FileName(e.UpdateID))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		s.logger.InfoContext(ctx, "Wrote message file",
			append([]any{"update_id", e.UpdateID, "kind", e.Kind, "path", path}, telegram.MessageAttrs(e.Message)...)...)
	}

	if err := s.repo.AddAll(ctx); err != nil {
		return fmt.Errorf("stage failed: %w", err)
	}
	changed, err := s.repo.HasChanges(ctx)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	if !changed {
		s.logger.InfoContext(ctx, "Messages already present upstream, nothing to commit", "count", len(entries))
		return nil
	}
	if err := s.repo.Commit(ctx, s.commitMessage); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	if err := s.repo.Push(ctx); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	s.logger.InfoContext(ctx, "Committed and pushed messages", "count", len(entries))
	return nil
}

func compact(raw json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("invalid message payload: %w", err)
	}
	return buf.Bytes(), nil
}

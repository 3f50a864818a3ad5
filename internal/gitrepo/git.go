// Package gitrepo drives the git command line for the mirror worktree:
// a shallow single-branch clone that is pulled, committed to and pushed.
package gitrepo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edgard/tg2site/internal/redact"
)

const defaultRemote = "origin"

// CloneOptions describes the worktree to create.
type CloneOptions struct {
	URL    string
	Branch string
	// Dir is the destination; it must not exist or be empty.
	Dir string

	UserName  string
	UserEmail string
}

// Repo is a local clone of one branch of a remote repository.
type Repo struct {
	dir    string
	branch string
	runner Runner
	logger *slog.Logger
}

// Clone makes a depth-1 clone of a single branch and sets the committer
// identity used for later commits.
func Clone(ctx context.Context, runner Runner, opts CloneOptions, logger *slog.Logger) (*Repo, error) {
	if opts.URL == "" || opts.Branch == "" || opts.Dir == "" {
		return nil, fmt.Errorf("clone requires a url, a branch and a directory")
	}
	if logger == nil {
		logger = slog.Default()
	}

	args := []string{"clone", "--depth", "1", "--single-branch", "--branch", opts.Branch, opts.URL, opts.Dir}
	if _, err := runner.Run(ctx, "", args...); err != nil {
		return nil, err
	}

	r := Open(runner, opts.Dir, opts.Branch, logger)
	if opts.UserEmail != "" {
		if _, err := runner.Run(ctx, opts.Dir, "config", "user.email", opts.UserEmail); err != nil {
			return nil, err
		}
	}
	if opts.UserName != "" {
		if _, err := runner.Run(ctx, opts.Dir, "config", "user.name", opts.UserName); err != nil {
			return nil, err
		}
	}

	r.logger.InfoContext(ctx, "Cloned repository", "url", redact.URL(opts.URL), "branch", opts.Branch, "dir", opts.Dir)
	return r, nil
}

// Open wraps an existing worktree checked out at branch.
func Open(runner Runner, dir, branch string, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repo{
		dir:    dir,
		branch: branch,
		runner: runner,
		logger: logger.With("component", "git"),
	}
}

// Dir returns the worktree root.
func (r *Repo) Dir() string {
	return r.dir
}

// Pull fast-forwards the worktree to the remote branch.
func (r *Repo) Pull(ctx context.Context) error {
	_, err := r.runner.Run(ctx, r.dir, "pull", "--ff-only", defaultRemote, r.branch)
	return err
}

// AddAll stages every change in the worktree.
func (r *Repo) AddAll(ctx context.Context) error {
	_, err := r.runner.Run(ctx, r.dir, "add", "-A")
	return err
}

// HasChanges reports whether the worktree or index differs from HEAD.
func (r *Repo) HasChanges(ctx context.Context) (bool, error) {
	output, err := r.runner.Run(ctx, r.dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// Commit records the staged changes.
func (r *Repo) Commit(ctx context.Context, message string) error {
	if message == "" {
		return fmt.Errorf("commit message is required")
	}
	_, err := r.runner.Run(ctx, r.dir, "commit", "-m", message)
	return err
}

// Push sends the branch to the remote. A refused push yields an error
// wrapping both ErrCommand and ErrPushRejected.
func (r *Repo) Push(ctx context.Context) error {
	output, err := r.runner.Run(ctx, r.dir, "push", defaultRemote, r.branch)
	if err != nil {
		out := string(output)
		if strings.Contains(out, "rejected") || strings.Contains(out, "non-fast-forward") {
			return fmt.Errorf("%w: %w", ErrPushRejected, err)
		}
		return err
	}
	return nil
}

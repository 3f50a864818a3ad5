package gitrepo

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/edgard/tg2site/internal/redact"
)

// Runner executes git with the given arguments in dir and returns its
// combined output.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner runs the git binary found in PATH.
type ExecRunner struct {
	Logger *slog.Logger
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	// Never block on a credential prompt.
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := cmd.CombinedOutput()
	if r.Logger != nil {
		r.Logger.DebugContext(ctx, "Ran git command",
			"args", redact.Args(args),
			"dir", dir,
			"output", strings.TrimSpace(redact.Text(string(output))))
	}
	if err != nil {
		return output, fmt.Errorf("%w: git %s: %w\n%s",
			ErrCommand, strings.Join(redact.Args(args), " "), err, redact.Text(string(output)))
	}
	return output, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"dovimux/internal/logging"
)

// Runner abstracts command execution so tool clients stay testable
// without the real binaries installed.
type Runner interface {
	Run(ctx context.Context, binary string, args ...string) error
}

// CommandRunner executes commands via os/exec, blocking until exit.
// Output is captured and folded into the returned error on failure;
// successful tool chatter is discarded.
type CommandRunner struct {
	Logger *slog.Logger
}

func (r CommandRunner) Run(ctx context.Context, binary string, args ...string) error {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Debug("exec", logging.String("binary", binary), logging.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", binary, err, tail(output, 400))
	}
	return nil
}

func tail(output []byte, max int) string {
	text := strings.TrimSpace(string(output))
	if len(text) <= max {
		return text
	}
	return "..." + text[len(text)-max:]
}

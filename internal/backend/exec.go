package backend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelfetch/modelfetch/internal/logctx"
)

const stderrTailLimit = 2048

// runTool executes an external download tool. Exit status plus the
// resulting file are the only success signals; progress output is not
// parsed. On failure the stderr tail is folded into the error so the
// attempt trail stays actionable.
func runTool(ctx context.Context, name string, args ...string) error {
	logger := logctx.LoggerFromContext(ctx)
	logger.Debug("invoking download tool", "tool", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if tail := stderrTail(stderr.Bytes()); tail != "" {
			return fmt.Errorf("%w: %s", err, tail)
		}

		return err
	}

	return nil
}

// stderrTail keeps only the last line of a tool's stderr; download
// tools tend to print the actual cause last.
func stderrTail(b []byte) string {
	if len(b) > stderrTailLimit {
		b = b[len(b)-stderrTailLimit:]
	}

	s := strings.TrimSpace(string(b))
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		s = strings.TrimSpace(s[idx+1:])
	}

	return s
}

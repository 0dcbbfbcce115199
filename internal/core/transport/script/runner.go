package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/internal/core/qerrors"
)

// DefaultHost is the executable tried first when no host is configured.
const DefaultHost = "powershell"

const fallbackHost = "pwsh"

// hostRunner executes one generated script synchronously and returns its
// stdout. Tests swap in a canned implementation.
type hostRunner interface {
	run(ctx context.Context, script string, extra time.Duration) (string, error)
	available() error
}

// runner invokes the external script host, one process per operation.
type runner struct {
	exe     string
	timeout time.Duration
}

func newRunner(exe string, timeout time.Duration) *runner {
	if exe == "" {
		exe = DefaultHost
	}
	return &runner{exe: exe, timeout: timeout}
}

// resolve locates the host executable, falling back from the configured name
// to the portable one.
func (r *runner) resolve() (string, error) {
	candidates := []string{r.exe}
	if r.exe != fallbackHost {
		candidates = append(candidates, fallbackHost)
	}
	var errs []error
	for _, name := range candidates {
		path, err := exec.LookPath(name)
		if err == nil {
			return path, nil
		}
		errs = append(errs, err)
	}
	return "", errors.Join(errs...)
}

func (r *runner) available() error {
	if _, err := r.resolve(); err != nil {
		return qerrors.Connection(qerrors.CodeHostSpawn, "script host not found", err)
	}
	return nil
}

// run blocks until the host exits or the deadline passes. The deadline is
// the configured invocation cap plus whatever wait the operation itself
// carries, so a receive timeout is not eaten by the process budget. A child
// still running at the deadline is killed, never left behind.
func (r *runner) run(ctx context.Context, script string, extra time.Duration) (string, error) {
	path, err := r.resolve()
	if err != nil {
		return "", qerrors.Connection(qerrors.CodeHostSpawn, "script host not found", err)
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout+extra)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, path, "-NoProfile", "-NonInteractive", "-Command", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	log.Debug().
		Str("host", path).
		Dur("elapsed", time.Since(start)).
		Bool("ok", runErr == nil).
		Msg("Script host invocation finished")

	if runErr != nil {
		if runCtx.Err() != nil {
			return "", qerrors.System(qerrors.CodeTimeout, "script host killed after timeout", runCtx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return "", qerrors.Connection(qerrors.CodeHostSpawn,
				fmt.Sprintf("script host exited with status %d: %s", exitErr.ExitCode(), tail(stderr.String())),
				runErr)
		}
		return "", qerrors.Connection(qerrors.CodeHostSpawn, "script host failed to start", runErr)
	}
	return stdout.String(), nil
}

// tail keeps error output loggable: last line, bounded length.
func tail(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}
	const max = 200
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}

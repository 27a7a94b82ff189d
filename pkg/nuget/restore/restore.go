// Package restore runs the dotnet CLI to materialize restore artifacts.
//
// [Runner.GenerateGraph] writes a restore graph (dgspec) for a solution or
// project and restores it, leaving project.assets.json files and the packages
// folder in place for the [nuget] loader.
//
// [nuget]: github.com/matzehuels/depdistill/pkg/nuget
package restore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depdistill/pkg/observability"
)

// DefaultTimeout bounds a single dotnet invocation.
const DefaultTimeout = 10 * time.Minute

// ErrFailed is returned when a dotnet invocation does not succeed.
var ErrFailed = errors.New("dotnet invocation failed")

// Status is the captured outcome of a dotnet invocation.
type Status struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the invocation exited with 0 and wrote nothing to
// stderr. dotnet reports some restore problems on stderr with a zero exit.
func (s Status) Success() bool {
	return s.ExitCode == 0 && strings.TrimSpace(s.Stderr) == ""
}

// Error carries the status of a failed invocation.
type Error struct {
	Step   string
	Status Status
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Status.Stderr)
	if msg == "" {
		msg = lastLine(e.Status.Stdout)
	}
	return fmt.Sprintf("dotnet %s exited with %d: %s", e.Step, e.Status.ExitCode, msg)
}

func (e *Error) Unwrap() error { return ErrFailed }

// execFunc runs a command and captures its output. A non-nil error means the
// command could not be run at all.
type execFunc func(ctx context.Context, name string, args ...string) (Status, error)

// Runner invokes the dotnet CLI.
type Runner struct {
	Dotnet  string        // dotnet executable (default: "dotnet")
	Timeout time.Duration // Per-invocation timeout (default: 10m)
	Logger  *log.Logger   // Command output at debug level (default: discard)

	exec execFunc
}

// NewRunner returns a Runner using the dotnet executable on PATH.
func NewRunner() *Runner {
	return &Runner{}
}

// GenerateGraph writes the restore graph of target into tempDir and runs
// restore for target. It returns the dgspec path. An empty tempDir creates a
// fresh temporary directory; it is removed again if a step fails, otherwise
// the caller is responsible for removing it.
func (r *Runner) GenerateGraph(ctx context.Context, target, tempDir string) (dgspec string, err error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", target, err)
	}
	if tempDir == "" {
		if tempDir, err = os.MkdirTemp("", "depdistill-"); err != nil {
			return "", fmt.Errorf("create temp dir: %w", err)
		}
		created := tempDir
		defer func() {
			if err != nil {
				os.RemoveAll(created)
			}
		}()
	} else if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	dgspec = filepath.Join(tempDir, base+".dgspec.json")

	if err := r.run(ctx, "msbuild", abs,
		"msbuild", abs,
		"-t:GenerateRestoreGraphFile",
		"-p:RestoreGraphOutputPath="+dgspec,
		"-nologo",
	); err != nil {
		return "", err
	}
	if err := r.run(ctx, "restore", abs, "restore", abs); err != nil {
		return "", err
	}
	return dgspec, nil
}

func (r *Runner) run(ctx context.Context, step, target string, args ...string) error {
	hooks := observability.Restore()
	logger := r.logger()
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	hooks.OnRestoreStart(ctx, step, target)
	logger.Debug("running dotnet", "args", strings.Join(args, " "))

	status, err := r.execFunc()(ctx, r.dotnet(), args...)
	if err == nil && !status.Success() {
		err = &Error{Step: step, Status: status}
	}
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("dotnet %s timed out after %s: %w", step, timeout, ctx.Err())
	}
	hooks.OnRestoreComplete(ctx, step, target, status.ExitCode, time.Since(start), err)
	if err != nil {
		return err
	}
	logger.Debug("dotnet finished", "step", step, "output", lastLine(status.Stdout))
	return nil
}

func (r *Runner) dotnet() string {
	if r.Dotnet != "" {
		return r.Dotnet
	}
	return "dotnet"
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.New(io.Discard)
}

func (r *Runner) execFunc() execFunc {
	if r.exec != nil {
		return r.exec
	}
	return runCommand
}

func runCommand(ctx context.Context, name string, args ...string) (Status, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	status := Status{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		status.ExitCode = exitErr.ExitCode()
	default:
		return status, fmt.Errorf("run %s: %w", name, err)
	}
	return status, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

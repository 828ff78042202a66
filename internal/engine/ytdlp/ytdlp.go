// Package ytdlp runs the yt-dlp command-line downloader as a subprocess.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytdlp/internal/engine"
	"golang.org/x/time/rate"
)

// DefaultBinary is the executable looked up on PATH when no path is configured.
const DefaultBinary = "yt-dlp"

// CommentArgs returns the fixed argument list for a comment dump of url.
// url is always a single argv element; no shell is involved.
func CommentArgs(url string) []string {
	return []string{
		"--skip-download",
		"--write-comments",
		"--dump-single-json",
		url,
	}
}

// Runner starts a process in dir and returns its full standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// waitDelay bounds how long Run waits for inherited stdout/stderr pipes to
// close after the process has been killed.
const waitDelay = 2 * time.Second

// ExecRunner runs processes with os/exec. Cancelling ctx kills the process
// and, on Unix, every process it forked.
type ExecRunner struct{}

// Run waits for the process to exit. Non-zero exit and spawn failures are
// returned as *ProcessError with the captured stderr.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		pe := &ProcessError{
			Binary:   name,
			Args:     args,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			pe.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			pe.Err = ctxErr
		}
		return "", pe
	}
	return stdout.String(), nil
}

// ProcessError reports a downloader that could not be started or exited non-zero.
type ProcessError struct {
	Binary   string
	Args     []string
	ExitCode int // -1 when the process never exited normally
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	var sb strings.Builder
	if e.ExitCode >= 0 {
		fmt.Fprintf(&sb, "%s exited with code %d", e.Binary, e.ExitCode)
	} else {
		fmt.Fprintf(&sb, "%s: %v", e.Binary, e.Err)
	}
	if e.Stderr != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Stderr)
	}
	return sb.String()
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Client invokes yt-dlp for comment extraction.
type Client struct {
	Path    string        // empty = DefaultBinary
	Runner  Runner        // nil = ExecRunner
	Limiter *rate.Limiter // nil = unthrottled
}

// NewLimiter builds the invocation limiter; perSecond <= 0 returns nil.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// DumpComments runs the comment dump for url inside dir and returns stdout verbatim.
func (c *Client) DumpComments(ctx context.Context, dir, url string) (string, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("ytdlp: rate limit wait: %w", err)
		}
	}

	bin := c.Path
	if bin == "" {
		bin = DefaultBinary
	}
	runner := c.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	engine.IncrYtDlpRuns()
	out, err := runner.Run(ctx, dir, bin, CommentArgs(url)...)
	if err != nil {
		engine.IncrYtDlpFailures()
		return "", err
	}
	return out, nil
}

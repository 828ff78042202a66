package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test: ExecRunner tests re-execute the test
// binary with GO_WANT_HELPER_PROCESS=1 so it behaves like a fake yt-dlp.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}
	switch args[1] {
	case "echo":
		fmt.Fprint(os.Stdout, `{"id":"vid1","comments":[]}`)
		os.Exit(0)
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Fprint(os.Stdout, wd)
		os.Exit(0)
	case "args":
		for _, a := range args[2:] {
			fmt.Fprintln(os.Stdout, a)
		}
		os.Exit(0)
	case "fail":
		fmt.Fprint(os.Stderr, "ERROR: [youtube] test123: Video unavailable\n")
		os.Exit(3)
	case "sleep":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	case "fork":
		// Leave a child holding our stdout, like a self-extracting yt-dlp build.
		child := exec.Command(os.Args[0], "-test.run=TestHelperProcess", "--", "sleep")
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr
		if err := child.Start(); err != nil {
			os.Exit(4)
		}
		time.Sleep(10 * time.Second)
		os.Exit(0)
	}
	os.Exit(2)
}

func helperArgs(mode string, extra ...string) []string {
	return append([]string{"-test.run=TestHelperProcess", "--", mode}, extra...)
}

func TestExecRunner(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	ctx := context.Background()
	r := ExecRunner{}

	t.Run("stdout verbatim", func(t *testing.T) {
		out, err := r.Run(ctx, t.TempDir(), os.Args[0], helperArgs("echo")...)
		require.NoError(t, err)
		assert.Equal(t, `{"id":"vid1","comments":[]}`, out)
	})

	t.Run("runs in dir", func(t *testing.T) {
		dir := t.TempDir()
		out, err := r.Run(ctx, dir, os.Args[0], helperArgs("pwd")...)
		require.NoError(t, err)
		want, _ := filepath.EvalSymlinks(dir)
		got, _ := filepath.EvalSymlinks(out)
		assert.Equal(t, want, got)
	})

	t.Run("url stays one argument", func(t *testing.T) {
		url := "https://www.youtube.com/watch?v=a b;echo pwned"
		out, err := r.Run(ctx, t.TempDir(), os.Args[0], helperArgs("args", url)...)
		require.NoError(t, err)
		assert.Equal(t, url+"\n", out)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		_, err := r.Run(ctx, t.TempDir(), os.Args[0], helperArgs("fail")...)
		var pe *ProcessError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 3, pe.ExitCode)
		assert.Equal(t, "ERROR: [youtube] test123: Video unavailable", pe.Stderr)
		assert.Contains(t, pe.Error(), "exited with code 3")
		assert.Contains(t, pe.Error(), "Video unavailable")
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := r.Run(ctx, t.TempDir(), filepath.Join(t.TempDir(), "no-such-yt-dlp"))
		var pe *ProcessError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, -1, pe.ExitCode)
	})

	t.Run("context cancel kills process", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		start := time.Now()
		_, err := r.Run(ctx, t.TempDir(), os.Args[0], helperArgs("sleep")...)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("context cancel kills forked children", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
		limit := 1500 * time.Millisecond
		if runtime.GOOS == "windows" {
			limit = waitDelay + 3*time.Second
		}
		start := time.Now()
		_, err := r.Run(ctx, t.TempDir(), os.Args[0], helperArgs("fork")...)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), limit)
	})
}

type fakeRunner struct {
	out   string
	err   error
	calls []call
}

type call struct {
	dir  string
	name string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	return f.out, f.err
}

func TestClientDumpComments(t *testing.T) {
	url := "https://www.youtube.com/watch?v=test123"

	t.Run("fixed invocation", func(t *testing.T) {
		f := &fakeRunner{out: "{}"}
		c := &Client{Runner: f}
		out, err := c.DumpComments(context.Background(), "/tmp/ytdlp-x", url)
		require.NoError(t, err)
		assert.Equal(t, "{}", out)
		require.Len(t, f.calls, 1)
		assert.Equal(t, "yt-dlp", f.calls[0].name)
		assert.Equal(t, "/tmp/ytdlp-x", f.calls[0].dir)
		assert.Equal(t, []string{"--skip-download", "--write-comments", "--dump-single-json", url}, f.calls[0].args)
	})

	t.Run("custom path", func(t *testing.T) {
		f := &fakeRunner{out: "{}"}
		c := &Client{Path: "/opt/bin/yt-dlp", Runner: f}
		_, err := c.DumpComments(context.Background(), "", url)
		require.NoError(t, err)
		assert.Equal(t, "/opt/bin/yt-dlp", f.calls[0].name)
	})

	t.Run("runner error passes through", func(t *testing.T) {
		pe := &ProcessError{Binary: "yt-dlp", ExitCode: 1, Stderr: "nope"}
		c := &Client{Runner: &fakeRunner{err: pe}}
		_, err := c.DumpComments(context.Background(), "", url)
		assert.Same(t, pe, err)
	})

	t.Run("limiter honours context", func(t *testing.T) {
		f := &fakeRunner{out: "{}"}
		c := &Client{Runner: f, Limiter: NewLimiter(0.001, 1)}
		_, err := c.DumpComments(context.Background(), "", url)
		require.NoError(t, err, "first call uses the burst")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = c.DumpComments(ctx, "", url)
		require.Error(t, err)
		assert.Len(t, f.calls, 1, "throttled call must not spawn")
	})
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5))
	l := NewLimiter(2, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}

func TestProcessErrorMessage(t *testing.T) {
	e := &ProcessError{Binary: "yt-dlp", ExitCode: -1, Err: errors.New(`exec: "yt-dlp": executable file not found in $PATH`)}
	assert.Equal(t, `yt-dlp: exec: "yt-dlp": executable file not found in $PATH`, e.Error())

	e = &ProcessError{Binary: "yt-dlp", ExitCode: 1}
	assert.Equal(t, "yt-dlp exited with code 1", e.Error())
}

// comments-probe downloads comments for one video and prints a short summary.
// It exercises the same pipeline as the MCP tool without starting a server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_ytdlp/internal/engine"
	"github.com/anatolykoptev/go_ytdlp/internal/engine/comments"
	"github.com/jessevdk/go-flags"
)

const defaultURL = "https://youtu.be/5fLKwtGp4jA"

type options struct {
	YtDlpPath string        `long:"yt-dlp" env:"YTDLP_PATH" default:"yt-dlp" description:"Path to the yt-dlp binary"`
	Timeout   time.Duration `long:"timeout" env:"PROBE_TIMEOUT" default:"30s" description:"Give up after this long"`
	Prefix    string        `long:"prefix" env:"TEMP_DIR_PREFIX" default:"ytdlp-" description:"Temp directory name prefix"`
	Sample    int           `long:"sample" default:"3" description:"Number of comments to print"`
	AnyHost   bool          `long:"any-host" description:"Skip the host allow-list"`
	Verbose   bool          `short:"v" long:"verbose" description:"Enable debug logging"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [URL]"

	args, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if opts.Verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	url := defaultURL
	if len(args) > 0 {
		url = args[0]
	}

	if err := run(context.Background(), os.Stdout, url, opts); err != nil {
		fmt.Fprintln(os.Stderr, "Error testing comment download:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, url string, opts options) error {
	cfg := engine.DefaultConfig()
	cfg.YtDlpPath = opts.YtDlpPath
	cfg.File.TempDirPrefix = opts.Prefix
	if opts.AnyHost {
		cfg.AllowedHosts = []string{"*"}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	fmt.Fprintf(w, "Testing comment download for: %s\n", url)
	fmt.Fprintln(w, "Downloading comments...")

	start := time.Now()
	out, err := comments.Download(ctx, url, cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("operation timed out after %s: %w", opts.Timeout, err)
		}
		return err
	}
	slog.Debug("probe: download finished", slog.Duration("elapsed", time.Since(start)))

	fmt.Fprintln(w, "Comments downloaded successfully!")
	return report(w, out, opts.Sample)
}

type probeComment struct {
	Author    any    `json:"author"`
	Text      any    `json:"text"`
	Time      string `json:"time"`
	LikeCount any    `json:"like_count"`
}

// report prints the envelope summary and up to sample comments.
func report(w io.Writer, envelope string, sample int) error {
	var env struct {
		Comments     []json.RawMessage `json:"comments"`
		CommentCount any               `json:"comment_count"`
		VideoTitle   any               `json:"video_title"`
	}
	if err := json.Unmarshal([]byte(envelope), &env); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}

	fmt.Fprintln(w, "Sample of comments:")
	fmt.Fprintf(w, "Total comments: %s\n", show(env.CommentCount))
	fmt.Fprintf(w, "Video title: %s\n", show(env.VideoTitle))

	if len(env.Comments) == 0 {
		fmt.Fprintln(w, "No comments found or comments are disabled for this video.")
		return nil
	}

	var pretty any
	if err := json.Unmarshal(env.Comments[0], &pretty); err == nil {
		if b, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			fmt.Fprintln(w, "\nFirst comment structure:")
			fmt.Fprintln(w, string(b))
		}
	}

	for i, raw := range env.Comments {
		if i >= sample {
			break
		}
		var c probeComment
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("decode comment %d: %w", i, err)
		}
		t := c.Time
		if t == "" {
			t = "Not available"
		}
		fmt.Fprintf(w, "\nComment #%d:\n", i+1)
		fmt.Fprintf(w, "Author: %s\n", show(c.Author))
		fmt.Fprintf(w, "Text: %s\n", show(c.Text))
		fmt.Fprintf(w, "Time: %s\n", t)
		fmt.Fprintf(w, "Likes: %s\n", show(c.LikeCount))
	}
	return nil
}

// show renders a decoded JSON value the way a console would print it.
func show(v any) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// Package comments downloads video comments through yt-dlp and reshapes them
// into a stable JSON envelope.
package comments

import (
	"context"
	"log/slog"

	"github.com/anatolykoptev/go_ytdlp/internal/engine"
	"github.com/anatolykoptev/go_ytdlp/internal/engine/ytdlp"
	"golang.org/x/time/rate"
)

// Downloader runs validate → acquire scratch dir → yt-dlp → normalize →
// release. It holds no per-call state and is safe for concurrent use when
// its Runner and Scratch are.
type Downloader struct {
	Runner  ytdlp.Runner   // nil = ytdlp.ExecRunner
	Limiter *rate.Limiter  // shared by all calls; nil = unthrottled
	Scratch engine.Scratch // nil = engine.TempScratch rooted at cfg.File.TempRoot
}

// NewDownloader builds a Downloader that spawns real processes.
func NewDownloader(cfg engine.Config) *Downloader {
	return &Downloader{
		Runner:  ytdlp.ExecRunner{},
		Limiter: ytdlp.NewLimiter(cfg.YtDlpRate, cfg.YtDlpBurst),
	}
}

// Download fetches comments for url with a throwaway Downloader. It is not
// throttled: YtDlpRate and YtDlpBurst only apply across calls that share one
// Downloader.
func Download(ctx context.Context, url string, cfg engine.Config) (string, error) {
	d := &Downloader{Runner: ytdlp.ExecRunner{}}
	return d.Download(ctx, url, cfg)
}

// Download returns the normalized envelope for url as JSON text.
// A URL rejected by the allow-list returns ErrInvalidURL before any directory
// is created; every later failure is a *DownloadError.
func (d *Downloader) Download(ctx context.Context, url string, cfg engine.Config) (string, error) {
	engine.IncrCommentRequests()

	if !engine.ValidateURL(url, cfg.AllowedHosts) {
		engine.IncrValidationRejects()
		return "", ErrInvalidURL
	}

	if cfg.YtDlpTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.YtDlpTimeout)
		defer cancel()
	}

	client := &ytdlp.Client{Path: cfg.YtDlpPath, Runner: d.Runner, Limiter: d.Limiter}

	var out string
	err := engine.WithScratch(d.scratch(cfg), cfg.File.TempDirPrefix, func(dir string) error {
		payload, err := client.DumpComments(ctx, dir, url)
		if err != nil {
			return err
		}
		out, err = Normalize(payload)
		return err
	})
	if err != nil {
		engine.IncrCommentErrors()
		slog.Debug("comments: download failed", slog.String("url", url), slog.Any("error", err))
		return "", &DownloadError{Err: err}
	}
	return out, nil
}

func (d *Downloader) scratch(cfg engine.Config) engine.Scratch {
	if d.Scratch != nil {
		return d.Scratch
	}
	return engine.TempScratch{Root: cfg.File.TempRoot}
}

package engine

import (
	"fmt"
	"log/slog"
	"os"
)

// Scratch hands out per-call working directories.
type Scratch interface {
	Acquire(prefix string) (string, error)
	Release(dir string) error
}

// TempScratch creates directories under Root (os.TempDir() when empty).
type TempScratch struct {
	Root string
}

// Acquire creates a uniquely named directory whose name starts with prefix.
func (s TempScratch) Acquire(prefix string) (string, error) {
	dir, err := os.MkdirTemp(s.Root, prefix)
	if err != nil {
		return "", err
	}
	metrics.ScratchCreated.Add(1)
	return dir, nil
}

// Release removes dir and everything below it. A missing dir is not an error.
func (s TempScratch) Release(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	metrics.ScratchRemoved.Add(1)
	return nil
}

// WithScratch acquires a directory, runs fn in it and releases the directory
// on every exit path, panics included. A release failure is reported only
// when fn itself succeeded.
func WithScratch(s Scratch, prefix string, fn func(dir string) error) (err error) {
	dir, err := s.Acquire(prefix)
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if rerr := s.Release(dir); rerr != nil {
			slog.Warn("scratch: release failed", slog.String("dir", dir), slog.Any("error", rerr))
			if err == nil {
				err = fmt.Errorf("remove temp dir: %w", rerr)
			}
		}
	}()
	return fn(dir)
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	CommentRequests   atomic.Int64
	CommentErrors     atomic.Int64
	ValidationRejects atomic.Int64
	YtDlpRuns         atomic.Int64
	YtDlpFailures     atomic.Int64
	ScratchCreated    atomic.Int64
	ScratchRemoved    atomic.Int64
	HistoryWrites     atomic.Int64
}

// SlowOpThreshold is the duration after which TrackOperation logs a warning.
var SlowOpThreshold = 20 * time.Second

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"comment_requests":   metrics.CommentRequests.Load(),
		"comment_errors":     metrics.CommentErrors.Load(),
		"validation_rejects": metrics.ValidationRejects.Load(),
		"ytdlp_runs":         metrics.YtDlpRuns.Load(),
		"ytdlp_failures":     metrics.YtDlpFailures.Load(),
		"scratch_created":    metrics.ScratchCreated.Load(),
		"scratch_removed":    metrics.ScratchRemoved.Load(),
		"history_writes":     metrics.HistoryWrites.Load(),
		"cache_hits":         hits,
		"cache_misses":       misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"comment_requests", "comment_errors", "validation_rejects",
		"ytdlp_runs", "ytdlp_failures",
		"scratch_created", "scratch_removed",
		"history_writes",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrCommentRequests()   { metrics.CommentRequests.Add(1) }
func IncrCommentErrors()     { metrics.CommentErrors.Add(1) }
func IncrValidationRejects() { metrics.ValidationRejects.Add(1) }
func IncrYtDlpRuns()         { metrics.YtDlpRuns.Add(1) }
func IncrYtDlpFailures()     { metrics.YtDlpFailures.Add(1) }
func IncrHistoryWrites()     { metrics.HistoryWrites.Add(1) }

// TrackOperation logs a warning if an operation takes longer than SlowOpThreshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if SlowOpThreshold > 0 && elapsed > SlowOpThreshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}

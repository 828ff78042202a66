package engine

import "time"

// FileConfig holds filesystem settings for per-call scratch directories.
type FileConfig struct {
	TempDirPrefix string // name prefix passed to os.MkdirTemp
	TempRoot      string // empty = os.TempDir()
}

// Config holds all engine configuration, loaded in main and passed explicitly
// to every operation that needs it.
type Config struct {
	YtDlpPath    string
	YtDlpTimeout time.Duration // 0 = no bound beyond the caller's context
	YtDlpRate    float64       // invocations per second; <= 0 disables throttling
	YtDlpBurst   int

	File         FileConfig
	AllowedHosts []string // validator allow-list; "*" admits any host

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HistoryPath     string // SQLite file; empty disables history
	SlowOpThreshold time.Duration
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		YtDlpPath:            "yt-dlp",
		YtDlpRate:            2,
		YtDlpBurst:           4,
		File:                 FileConfig{TempDirPrefix: "ytdlp-"},
		AllowedHosts:         append([]string(nil), DefaultAllowedHosts...),
		CacheMaxEntries:      500,
		CacheCleanupInterval: 5 * time.Minute,
		SlowOpThreshold:      20 * time.Second,
	}
}

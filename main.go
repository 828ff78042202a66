// go_ytdlp: YouTube comment download MCP server.
//
// Exposes two MCP tools: ytdlp_download_video_comments, ytdlp_comment_history.
// Comments are fetched by spawning yt-dlp in a throwaway temp directory.
package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_ytdlp/internal/engine"
	"github.com/anatolykoptev/go_ytdlp/internal/engine/comments"
	"github.com/anatolykoptev/go_ytdlp/internal/engine/history"
	"github.com/anatolykoptev/go_ytdlp/internal/ytserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	cfg := loadConfig()

	deps := ytserver.Deps{
		Config:     cfg,
		Downloader: comments.NewDownloader(cfg),
	}
	if store := openHistory(cfg.HistoryPath); store != nil {
		defer store.Close()
		deps.History = store
	}

	slog.Info("starting go_ytdlp",
		slog.String("port", mcpPort),
		slog.String("yt_dlp", cfg.YtDlpPath),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytdlp",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, deps)
	slog.Info("tools registered", slog.Int("count", ytserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytdlp",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	d := engine.DefaultConfig()
	c := engine.Config{
		YtDlpPath:    env.Str("YTDLP_PATH", d.YtDlpPath),
		YtDlpTimeout: env.Duration("YTDLP_TIMEOUT", 0),
		YtDlpRate:    env.Float("YTDLP_RATE", d.YtDlpRate),
		YtDlpBurst:   env.Int("YTDLP_BURST", d.YtDlpBurst),
		File: engine.FileConfig{
			TempDirPrefix: env.Str("TEMP_DIR_PREFIX", d.File.TempDirPrefix),
			TempRoot:      env.Str("TEMP_ROOT", ""),
		},
		AllowedHosts:         env.List("ALLOWED_HOSTS", strings.Join(engine.DefaultAllowedHosts, ",")),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", d.CacheMaxEntries),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", d.CacheCleanupInterval),
		HistoryPath:          env.Str("HISTORY_PATH", history.DefaultPath()),
		SlowOpThreshold:      env.Duration("SLOW_OP_THRESHOLD", d.SlowOpThreshold),
	}
	engine.SlowOpThreshold = c.SlowOpThreshold

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return c
}

// openHistory returns nil when history is disabled or cannot be opened.
func openHistory(path string) *history.Store {
	if path == "" || strings.EqualFold(path, "off") {
		slog.Info("history: disabled")
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		slog.Warn("history: open failed, running without history", slog.Any("error", err))
		return nil
	}
	slog.Info("history: ready", slog.String("path", path))
	return store
}

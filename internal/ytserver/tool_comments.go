package ytserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_ytdlp/internal/engine"
	"github.com/anatolykoptev/go_ytdlp/internal/engine/comments"
	"github.com/anatolykoptev/go_ytdlp/internal/engine/history"
	"github.com/anatolykoptev/go_ytdlp/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const downloadCommentsTool = "ytdlp_download_video_comments"

func registerDownloadComments(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        downloadCommentsTool,
		Description: "Download comments from a YouTube video with yt-dlp. Returns JSON with comments (id, text, author, author_id, time, timestamp, like_count, is_favorited, parent), video_id, video_title and comment_count. Videos without comments return an empty list and a message.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.CommentsInput) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		var out string
		var hit bool
		err := engine.TrackOperation(ctx, downloadCommentsTool, func(ctx context.Context) error {
			var err error
			out, hit, err = toolutil.CachedText(ctx, engine.CacheKey(downloadCommentsTool, input.URL), func() (string, error) {
				return deps.Downloader.Download(ctx, input.URL, deps.Config)
			})
			return err
		})

		if !hit {
			recordAttempt(ctx, deps.History, input.URL, out, err, time.Since(start))
		}
		if err != nil {
			slog.Warn("ytdlp_download_video_comments failed", slog.String("url", input.URL), slog.Any("error", err))
			return nil, nil, err
		}
		return toolutil.TextResult(out), nil, nil
	})
}

// recordAttempt writes one history row. It uses a detached context so a
// cancelled call is still logged.
func recordAttempt(ctx context.Context, h HistoryStore, url, out string, err error, elapsed time.Duration) {
	if h == nil {
		return
	}
	e := history.Entry{
		URL:        url,
		Status:     history.StatusOK,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		e.Status = history.StatusError
		e.Error = err.Error()
	} else {
		e.VideoID, e.CommentCount = comments.Summary(out)
	}
	if e.URL == "" {
		e.URL = "(empty)"
	}
	if _, rerr := h.Record(context.WithoutCancel(ctx), e); rerr != nil {
		slog.Warn("history: record failed", slog.Any("error", rerr))
	}
}

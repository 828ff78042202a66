package ytserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_ytdlp/internal/engine"
	"github.com/anatolykoptev/go_ytdlp/internal/engine/history"
	"github.com/anatolykoptev/go_ytdlp/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerCommentHistory(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ytdlp_comment_history",
		Description: "List recent comment download attempts, newest first. Optionally filter by status: ok, error. Each entry has url, video_id, comment_count, duration_ms and the error text for failures.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.HistoryInput) (*mcp.CallToolResult, *history.ListResult, error) {
		if deps.History == nil {
			return nil, nil, errors.New("download history is disabled")
		}
		result, err := deps.History.List(ctx, history.Query{
			Status: input.Status,
			Limit:  toolutil.ClampLimit(input.Limit, history.DefaultLimit, history.MaxLimit),
		})
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	})
}

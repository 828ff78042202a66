// Package ytserver exposes the comment downloader as MCP tools.
package ytserver

import (
	"context"

	"github.com/anatolykoptev/go_ytdlp/internal/engine"
	"github.com/anatolykoptev/go_ytdlp/internal/engine/history"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Downloader fetches the normalized comment envelope for a URL.
type Downloader interface {
	Download(ctx context.Context, url string, cfg engine.Config) (string, error)
}

// HistoryStore records and lists download attempts.
type HistoryStore interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
	List(ctx context.Context, q history.Query) (*history.ListResult, error)
}

// Deps is everything the tools need. History may be nil.
type Deps struct {
	Config     engine.Config
	Downloader Downloader
	History    HistoryStore
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 2

// RegisterTools registers the comment tools on the given MCP server:
// ytdlp_download_video_comments, ytdlp_comment_history.
func RegisterTools(server *mcp.Server, deps Deps) {
	registerDownloadComments(server, deps)
	registerCommentHistory(server, deps)
}

// Package toolutil provides shared helper functions for go_ytdlp MCP tools.
package toolutil

import (
	"context"

	"github.com/anatolykoptev/go_ytdlp/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TextResult wraps text as the single content block of a tool result.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ClampLimit normalises a user-supplied limit: <= 0 → def, > max → max.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// CachedText returns the cached value for key, or calls fn and caches its
// result on success. The second return reports a cache hit.
func CachedText(ctx context.Context, key string, fn func() (string, error)) (string, bool, error) {
	if cached, ok := engine.CacheGet(ctx, key); ok {
		return cached, true, nil
	}
	text, err := fn()
	if err != nil {
		return "", false, err
	}
	engine.CacheSet(ctx, key, text)
	return text, false, nil
}

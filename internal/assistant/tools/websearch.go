package tools

import (
	"context"
	"strings"

	"github.com/savvythreads/server/internal/assistant/model"
	logx "github.com/savvythreads/server/pkg/logger"
)

const defaultMaxSearchResults = 10

// SearchProvider is the external web-search collaborator: a query and a
// result cap in, an ordered list of formatted snippets out. An empty or
// invalid query yields an empty list rather than an error.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// WebSearchTool exposes a SearchProvider to the executor.
type WebSearchTool struct {
	provider SearchProvider
}

func NewWebSearchTool(p SearchProvider) *WebSearchTool {
	return &WebSearchTool{provider: p}
}

func (t *WebSearchTool) Name() string { return model.ToolWebSearch }

func (t *WebSearchTool) Invoke(ctx context.Context, state *model.AgentState, args map[string]any) (string, error) {
	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		logx.Warn().Str("chat_id", state.ChatID).Msg("web_search_tool: empty query, returning no results")
		return "No search results.", nil
	}

	maxResults := intArg(args, "max_results")
	if maxResults <= 0 {
		maxResults = defaultMaxSearchResults
	}

	results, err := t.provider.Search(ctx, query, maxResults)
	if err != nil {
		return "", err
	}

	logx.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("web_search_tool completed")

	if len(results) == 0 {
		return "No search results.", nil
	}
	return strings.Join(results, "\n"), nil
}

var _ Tool = (*WebSearchTool)(nil)

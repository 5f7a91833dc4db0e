package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/retriever"

	"github.com/savvythreads/server/internal/assistant/model"
	logx "github.com/savvythreads/server/pkg/logger"
)

// maxRetrievedDocs caps how many ranked documents feed into context; the
// ranking internals belong to the retriever.
const maxRetrievedDocs = 5

// RAGTool retrieves internal documents for a query and accumulates them in
// the request's retrieval state, keyed by chat id.
type RAGTool struct {
	retriever retriever.Retriever
}

func NewRAGTool(r retriever.Retriever) *RAGTool {
	return &RAGTool{retriever: r}
}

func (t *RAGTool) Name() string { return model.ToolRAG }

func (t *RAGTool) Invoke(ctx context.Context, state *model.AgentState, args map[string]any) (string, error) {
	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		query = state.Processing.UserInput
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("rag_tool: empty query")
	}

	docs, err := t.retriever.Retrieve(ctx, query)
	if err != nil {
		return "", fmt.Errorf("rag_tool: %w", err)
	}
	if len(docs) > maxRetrievedDocs {
		docs = docs[:maxRetrievedDocs]
	}

	contents := make([]string, 0, len(docs))
	for _, d := range docs {
		if d == nil || strings.TrimSpace(d.Content) == "" {
			continue
		}
		contents = append(contents, d.Content)
	}
	state.Retrieval.AddDocuments(state.ChatID, contents)

	logx.Debug().
		Str("chat_id", state.ChatID).
		Int("documents", len(contents)).
		Msg("rag_tool retrieved documents")

	if len(contents) == 0 {
		return "No matching documents found.", nil
	}
	return strings.Join(contents, "\n---\n"), nil
}

var _ Tool = (*RAGTool)(nil)

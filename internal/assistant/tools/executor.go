package tools

import (
	"context"
	"fmt"

	"github.com/savvythreads/server/internal/assistant/model"
	logx "github.com/savvythreads/server/pkg/logger"
)

// Execute runs the given tool calls strictly in order against the registry.
// Unknown tool names are skipped with a warning. A failing tool degrades to
// an "Error: <message>" entry and never aborts the remaining calls; every
// executed call produces exactly one entry, in plan order. The final list is
// written back into the shared state.
func Execute(ctx context.Context, reg Registry, state *model.AgentState, calls []model.ToolCall) []model.ToolResponse {
	responses := make([]model.ToolResponse, 0, len(calls))

	for _, call := range calls {
		t, ok := reg[call.Tool]
		if !ok {
			logx.Warn().
				Str("tool", call.Tool).
				Str("chat_id", state.ChatID).
				Msg("unknown tool in plan, skipping")
			continue
		}

		logx.Debug().
			Str("tool", call.Tool).
			Interface("args", call.Args).
			Msg("executing tool")

		resp, err := t.Invoke(ctx, state, call.Args)
		if err != nil {
			logx.Error().Err(err).Str("tool", call.Tool).Msg("tool execution failed")
			resp = fmt.Sprintf("Error: %s", err.Error())
		}
		state.Processing.LastTool = call.Tool

		responses = append(responses, model.ToolResponse{
			Tool:     call.Tool,
			Args:     call.Args,
			Response: resp,
		})
	}

	state.Response.ToolResponses = responses
	return responses
}

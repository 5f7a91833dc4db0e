// Package tools holds the fixed tool registry and the executor that runs
// planned tool invocations against it.
package tools

import (
	"context"

	"github.com/savvythreads/server/internal/assistant/model"
)

// Tool is a planned capability the executor can invoke. Tools receive the
// shared request state so they can accumulate results (e.g. retrieved
// documents) alongside their direct string response.
type Tool interface {
	Name() string
	Invoke(ctx context.Context, state *model.AgentState, args map[string]any) (string, error)
}

// Registry is the fixed mapping from tool name to implementation. Unknown
// names are ignored by the executor, never fatal.
type Registry map[string]Tool

// NewRegistry indexes the given tools by name.
func NewRegistry(ts ...Tool) Registry {
	reg := make(Registry, len(ts))
	for _, t := range ts {
		reg[t.Name()] = t
	}
	return reg
}

// stringArg extracts a string argument, tolerating missing or mistyped
// values from loosely structured plans.
func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg extracts an integer argument. JSON numbers decode as float64.
func intArg(args map[string]any, key string) int {
	if args == nil {
		return 0
	}
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

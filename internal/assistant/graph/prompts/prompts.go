// Package prompts renders the system prompts for every agent from embedded
// templates via the Eino prompt component, which also emits prompt callbacks.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/savvythreads/server/internal/assistant/model"
)

//go:embed template/router_prompt.txt
var routerSystemPrompt string

//go:embed template/planner_prompt.txt
var plannerSystemPrompt string

//go:embed template/conversation_prompt.txt
var conversationSystemPrompt string

//go:embed template/moderation_prompt.txt
var moderationSystemPrompt string

//go:embed template/synthesis_prompt.txt
var synthesisSystemPrompt string

//go:embed template/feedback_prompt.txt
var feedbackSystemPrompt string

//go:embed template/fallback_prompt.txt
var fallbackSystemPrompt string

func render(ctx context.Context, tpl string, vars map[string]any) (string, error) {
	t := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(tpl),
	)
	msgs, err := t.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("render prompt: empty result")
	}
	return msgs[0].Content, nil
}

func nowVar() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// RouterSystem renders the routing system prompt.
func RouterSystem(ctx context.Context) (string, error) {
	return render(ctx, routerSystemPrompt, map[string]any{"Now": nowVar()})
}

// PlannerSystem renders the planning system prompt with the registry of
// dispatchable agents and their tools.
func PlannerSystem(ctx context.Context) (string, error) {
	return render(ctx, plannerSystemPrompt, map[string]any{
		"Now":           nowVar(),
		"AgentRegistry": AgentRegistry(),
	})
}

// ConversationSystem renders the conversation system prompt.
func ConversationSystem(ctx context.Context) (string, error) {
	return render(ctx, conversationSystemPrompt, map[string]any{"Now": nowVar()})
}

// ModerationSystem renders the content moderation system prompt.
func ModerationSystem(ctx context.Context) (string, error) {
	return render(ctx, moderationSystemPrompt, map[string]any{"Now": nowVar()})
}

// SynthesisSystem renders the specialist synthesis prompt with the collected
// tool outputs as context.
func SynthesisSystem(ctx context.Context, agentRole string, toolResponses []model.ToolResponse) (string, error) {
	var b strings.Builder
	if len(toolResponses) == 0 {
		b.WriteString("(no tool outputs)")
	}
	for i, tr := range toolResponses {
		fmt.Fprintf(&b, "[%d] %s: %s\n", i+1, tr.Tool, tr.Response)
	}
	return render(ctx, synthesisSystemPrompt, map[string]any{
		"Now":         nowVar(),
		"AgentRole":   agentRole,
		"ToolContext": b.String(),
	})
}

// FeedbackSystem renders the feedback system prompt.
func FeedbackSystem(ctx context.Context) (string, error) {
	return render(ctx, feedbackSystemPrompt, map[string]any{"Now": nowVar()})
}

// FallbackSystem renders the fallback system prompt.
func FallbackSystem(ctx context.Context) (string, error) {
	return render(ctx, fallbackSystemPrompt, map[string]any{"Now": nowVar()})
}

// AgentRegistry describes the dispatchable specialist agents and their
// available tools for the planner.
func AgentRegistry() string {
	lines := []string{
		fmt.Sprintf("- %s: analyzing, comparing or synthesizing information (tools: %s {query}, %s {query, max_results})",
			model.AgentAnalysis, model.ToolRAG, model.ToolWebSearch),
		fmt.Sprintf("- %s: summarizing documents or chat history (tools: %s {query}, %s {query, max_results})",
			model.AgentSummarization, model.ToolRAG, model.ToolWebSearch),
	}
	return strings.Join(lines, "\n")
}

// WithFallbackNotice extends a system prompt for an agent being re-entered
// after a fallback recovery. The agent must use the remediation and must not
// mention the error or the solution in user-visible text.
func WithFallbackNotice(system, originalErr, solution string) string {
	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\nYou are being rerun due to a previous error.\n")
	fmt.Fprintf(&b, "Error: %s\n", originalErr)
	fmt.Fprintf(&b, "Fallback solution: %s\n", solution)
	b.WriteString("Use the fallback solution and the original input, and ensure the previous error does not repeat.\n")
	b.WriteString("Do not mention the error or the fallback solution in your response.")
	return b.String()
}

// BuildMessages assembles the standard prompt shape: system prompt, recent
// dialogue turns, then the current user input.
func BuildMessages(system string, history []model.Message, userInput string, historyTurns int) []*schema.Message {
	if historyTurns > 0 && len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(system))
	msgs = append(msgs, model.HistoryToSchema(history)...)
	msgs = append(msgs, schema.UserMessage(userInput))
	return msgs
}

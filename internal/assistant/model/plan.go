package model

import (
	"fmt"
	"strings"
)

// Workflow node names. RouteDecision, plan steps and rerun signals all refer
// to agents by these names.
const (
	AgentRouter        = "router_agent"
	AgentConversation  = "conversation_agent"
	AgentPlanning      = "planning_agent"
	AgentDispatcher    = "dispatcher_agent"
	AgentAnalysis      = "analysis_agent"
	AgentSummarization = "summarization_agent"
	AgentModeration    = "content_moderation_agent"
	AgentFeedback      = "feedback_agent"
	AgentFallback      = "fallback_agent"
	NodeFinalResponse  = "final_response"
)

// Tool names known to the executor registry.
const (
	ToolRAG       = "rag_tool"
	ToolWebSearch = "web_search_tool"
)

// ToolCall is a single planned tool invocation.
type ToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// AgentStep assigns a list of tool calls to one specialist agent.
type AgentStep struct {
	Agent string     `json:"agent"`
	Tools []ToolCall `json:"tools,omitempty"`
}

// Plan is the ordered list of steps produced by the planning agent.
type Plan []AgentStep

// StepFor returns the first step assigned to the named agent, or nil.
func (p Plan) StepFor(agent string) *AgentStep {
	for i := range p {
		if p[i].Agent == agent {
			return &p[i]
		}
	}
	return nil
}

// Contains reports whether any step names the given agent.
func (p Plan) Contains(agent string) bool {
	return p.StepFor(agent) != nil
}

// Validate rejects malformed plans at the planning-agent output boundary.
// Steps naming unknown agents are an error; tool names are checked by the
// executor (unknown tools are skipped there, not here).
func (p Plan) Validate() error {
	for i, step := range p {
		name := strings.TrimSpace(step.Agent)
		if name == "" {
			return fmt.Errorf("plan step %d: empty agent name", i)
		}
		switch name {
		case AgentAnalysis, AgentSummarization:
		default:
			return fmt.Errorf("plan step %d: unknown agent %q", i, name)
		}
		for j, tc := range step.Tools {
			if strings.TrimSpace(tc.Tool) == "" && len(tc.Args) > 0 {
				return fmt.Errorf("plan step %d tool %d: args without a tool name", i, j)
			}
		}
	}
	return nil
}

// ToolResponse records the outcome of one executed tool call, in plan order.
// Failed calls carry a response of the form "Error: <message>".
type ToolResponse struct {
	Tool     string         `json:"tool"`
	Args     map[string]any `json:"args,omitempty"`
	Response string         `json:"response"`
}

// RouteDecision is the structured output of the router agent.
type RouteDecision struct {
	Agent           string  `json:"agent"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
	RequiresContext bool    `json:"requires_context"`
	IsGreeting      bool    `json:"is_greeting"`
}

// PlanOutput is the structured output of the planning agent.
type PlanOutput struct {
	Plan Plan `json:"plan"`
}

// FallbackDecision is the structured output of the fallback agent: which
// agent to rerun and a remediation hint for it.
type FallbackDecision struct {
	RerunAgent string `json:"rerun_agent"`
	Solution   string `json:"solution"`
}

// FeedbackVerdict is the structured output of the feedback agent.
type FeedbackVerdict struct {
	Proceed bool `json:"proceed"`
}

// KnownRerunTarget reports whether the name identifies a node the fallback
// agent may re-enter. The fallback agent itself is excluded to avoid
// self-recursion.
func KnownRerunTarget(name string) bool {
	switch name {
	case AgentRouter, AgentConversation, AgentPlanning, AgentModeration,
		AgentAnalysis, AgentSummarization, AgentFeedback:
		return true
	}
	return false
}

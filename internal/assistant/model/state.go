package model

import (
	"time"
)

// AgentState is the per-request unit of work threaded through the workflow
// graph. Exactly one instance flows through a single run; every node mutates
// it in place and hands it to the next. Loop-backs re-enter with the same
// instance, accumulating ExecutedSteps and the retry counters.
type AgentState struct {
	UserID string `json:"user_id"`
	ChatID string `json:"chat_id"`

	// ChatHistory is a snapshot of the context window taken at request
	// start. Read-only for agents.
	ChatHistory []Message `json:"chat_history"`

	Processing ProcessingState `json:"processing"`
	Retrieval  RetrievalState  `json:"retrieval"`
	Response   ResponseState   `json:"response"`
	Error      ErrorState      `json:"error"`

	// LongTermHistory is a read-only reference into the owning UserState,
	// for agents needing context beyond the window.
	LongTermHistory *LongTermHistory `json:"-"`
}

// ProcessingState tracks the control-flow side of one request.
type ProcessingState struct {
	UserInput        string   `json:"user_input"`
	IsProcessing     bool     `json:"is_processing"`
	CurrentAgent     string   `json:"current_agent"`
	RouteDecision    string   `json:"route_decision"`
	ConfidenceScore  float64  `json:"confidence_score"`
	Plan             Plan     `json:"plan"`
	ReplanAttempts   int      `json:"replan_attempts"`
	FallbackAttempts int      `json:"fallback_attempts"`
	ExecutedSteps    []string `json:"executed_steps"`
	LastTool         string   `json:"last_tool"`
}

// RetrievalState accumulates retrieved documents across agents within one
// request, keyed by chat id.
type RetrievalState struct {
	ChatID    string              `json:"chat_id"`
	Documents map[string][]string `json:"retrieved_documents"`
}

// AddDocuments appends retrieved document texts under the given key.
func (r *RetrievalState) AddDocuments(key string, docs []string) {
	if r.Documents == nil {
		r.Documents = map[string][]string{}
	}
	r.Documents[key] = append(r.Documents[key], docs...)
}

// ResponseState carries the user-visible answer plus typed cross-agent
// signals. Control signals live in explicit fields rather than an open
// metadata bag; Extra remains for informational values only.
type ResponseState struct {
	Response      string           `json:"response"`
	ToolResponses []ToolResponse   `json:"tool_responses"`
	Metadata      ResponseMetadata `json:"response_metadata"`
}

// ResponseMetadata is the typed replacement for the old free-form
// response_metadata mapping. Only fields actually read downstream exist.
type ResponseMetadata struct {
	// Rerun signal written by the fallback agent.
	RerunAgent string `json:"rerun_agent,omitempty"`
	Fallback   string `json:"fallback,omitempty"`

	// Feedback verdict written by the feedback agent.
	Feedback *FeedbackVerdict `json:"feedback,omitempty"`

	AgentType           string    `json:"agent_type,omitempty"`
	ProcessingTime      time.Time `json:"processing_time,omitempty"`
	FinalProcessingTime time.Time `json:"final_processing_time,omitempty"`
	WorkflowCompleted   bool      `json:"workflow_completed"`

	Extra map[string]any `json:"extra,omitempty"`
}

// ClearRerun drops a consumed rerun signal so a second pass through the same
// agent does not re-trigger fallback handling.
func (m *ResponseMetadata) ClearRerun() {
	m.RerunAgent = ""
	m.Fallback = ""
}

// ErrorState records an agent-boundary failure for the graph's
// error-detection edges.
type ErrorState struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"error_details,omitempty"`
}

// NewAgentState builds the state for one user turn.
func NewAgentState(userID, chatID, userInput string, history []Message, longTerm *LongTermHistory) *AgentState {
	return &AgentState{
		UserID:      userID,
		ChatID:      chatID,
		ChatHistory: history,
		Processing: ProcessingState{
			UserInput:     userInput,
			IsProcessing:  true,
			ExecutedSteps: []string{},
		},
		Retrieval: RetrievalState{
			ChatID:    chatID,
			Documents: map[string][]string{},
		},
		Response: ResponseState{
			ToolResponses: []ToolResponse{},
		},
		LongTermHistory: longTerm,
	}
}

// MarkExecuted records that the named agent ran, in order.
func (s *AgentState) MarkExecuted(agent string) {
	s.Processing.ExecutedSteps = append(s.Processing.ExecutedSteps, agent)
}

// FallbackRerunFor reports whether the named agent is being re-entered after
// a fallback recovery, returning the remediation solution and original error
// when it is. Agents incorporate both and must not re-surface the error.
func (s *AgentState) FallbackRerunFor(agent string) (solution, originalErr string, ok bool) {
	if s.Processing.CurrentAgent == AgentFallback &&
		s.Response.Metadata.RerunAgent == agent &&
		s.Response.Metadata.Fallback != "" {
		return s.Response.Metadata.Fallback, s.Error.Error, true
	}
	return "", "", false
}

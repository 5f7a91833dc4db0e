package graph

import (
	"github.com/savvythreads/server/internal/assistant/model"
)

// RouteTarget resolves the router's decision to the next node. A recorded
// error always wins so malformed or empty routing lands in recovery.
func RouteTarget(state *model.AgentState) string {
	if state.Error.Error != "" {
		return model.AgentFallback
	}
	switch state.Processing.RouteDecision {
	case model.AgentConversation, model.AgentPlanning, model.AgentModeration:
		return state.Processing.RouteDecision
	}
	return model.AgentFallback
}

// DispatchTarget picks the specialist for the current plan. Analysis wins
// over summarization when both are planned; an empty plan skips straight to
// the final response.
func DispatchTarget(plan model.Plan) string {
	if plan.Contains(model.AgentAnalysis) {
		return model.AgentAnalysis
	}
	if plan.Contains(model.AgentSummarization) {
		return model.AgentSummarization
	}
	return model.NodeFinalResponse
}

// FeedbackTarget decides whether a rejected draft earns another planning
// round. The replan ceiling is checked before the verdict so a turn that
// arrives at the limit is forced through regardless of what feedback said.
func FeedbackTarget(state *model.AgentState, maxReplans int) string {
	if state.Error.Error != "" {
		return model.AgentFallback
	}
	if state.Processing.ReplanAttempts >= maxReplans {
		return model.NodeFinalResponse
	}
	if v := state.Response.Metadata.Feedback; v != nil && !v.Proceed {
		return model.AgentPlanning
	}
	return model.NodeFinalResponse
}

// FallbackTarget routes recovery: re-enter the proposed agent when the
// fallback produced one, otherwise end the turn.
func FallbackTarget(state *model.AgentState) string {
	target := state.Response.Metadata.RerunAgent
	if target != "" && model.KnownRerunTarget(target) {
		return target
	}
	return model.NodeFinalResponse
}

// errorOr routes to the fallback agent when the node recorded a failure,
// otherwise to next.
func errorOr(state *model.AgentState, next string) string {
	if state.Error.Error != "" {
		return model.AgentFallback
	}
	return next
}

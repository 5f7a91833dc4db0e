// Package parsers turns raw completion output into the structured decisions
// the workflow graph branches on. Models are asked for bare JSON but often
// wrap it in markdown fences or prose, so extraction is defensive.
package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/savvythreads/server/internal/assistant/model"
)

// basic safety limit to avoid pathological inputs
const maxContentLen = 64 * 1024

// extractJSON returns the first top-level JSON object found in the content.
func extractJSON(content string) (string, error) {
	if len(content) > maxContentLen {
		content = content[:maxContentLen]
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("empty completion content")
	}

	// Strip a markdown code fence when present.
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.Index(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object in completion output")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in completion output")
}

// ParseRouteDecision parses the router agent's JSON output.
func ParseRouteDecision(content string) (*model.RouteDecision, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}
	var out model.RouteDecision
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode route decision: %w", err)
	}
	if strings.TrimSpace(out.Agent) == "" {
		return nil, fmt.Errorf("route decision missing agent")
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return &out, nil
}

// ParsePlan parses and validates the planning agent's JSON output. An empty
// plan is valid; the dispatcher routes it straight to the final response.
func ParsePlan(content string) (model.Plan, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}
	var out model.PlanOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if out.Plan == nil {
		out.Plan = model.Plan{}
	}
	if err := out.Plan.Validate(); err != nil {
		return nil, err
	}
	return out.Plan, nil
}

// ParseFallbackDecision parses the fallback agent's JSON output.
func ParseFallbackDecision(content string) (*model.FallbackDecision, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}
	var out model.FallbackDecision
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode fallback decision: %w", err)
	}
	if strings.TrimSpace(out.Solution) == "" {
		return nil, fmt.Errorf("fallback decision missing solution")
	}
	return &out, nil
}

// ParseFeedbackVerdict parses the feedback agent's JSON output.
func ParseFeedbackVerdict(content string) (*model.FeedbackVerdict, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}
	var out model.FeedbackVerdict
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode feedback verdict: %w", err)
	}
	return &out, nil
}

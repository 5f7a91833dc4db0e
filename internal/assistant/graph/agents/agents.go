// Package agents implements the workflow nodes. Every agent consumes and
// produces the shared AgentState and never lets an error escape its own
// boundary: failures are recorded in the state's ErrorState and the graph's
// error-detection edges route recovery.
package agents

import (
	"errors"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/savvythreads/server/internal/assistant/graph/prompts"
	"github.com/savvythreads/server/internal/assistant/model"
	"github.com/savvythreads/server/internal/assistant/tools"
	logx "github.com/savvythreads/server/pkg/logger"
)

// Apology is the generic user-visible text substituted when an agent fails
// internally. Users never see raw errors.
const Apology = "I'm sorry, I encountered an error while processing your request. Please try again."

var errEmptyResponse = errors.New("empty completion")

// Deps bundles everything agent nodes need. Structured is the
// low-temperature model for JSON decisions; Responder writes user-visible
// text.
type Deps struct {
	Structured   einomodel.BaseChatModel
	Responder    einomodel.BaseChatModel
	Registry     tools.Registry
	Conversation model.ConversationConfig
}

// succeed finalizes an agent's happy path: records the agent as current,
// appends it to the audit trail, stamps metadata, and clears any error plus
// a consumed rerun signal so recovery loops terminate.
func succeed(state *model.AgentState, agent string) {
	state.Processing.CurrentAgent = agent
	state.MarkExecuted(agent)
	state.Response.Metadata.AgentType = agent
	state.Response.Metadata.ProcessingTime = time.Now().UTC()
	state.Error.Error = ""
	state.Response.Metadata.ClearRerun()
}

// fail records an agent-boundary failure: a domain-prefixed error message,
// the agent as current, and the generic apology in place of a response. The
// original error never propagates past the node.
func fail(state *model.AgentState, agent, domain string, err error) {
	state.Error.Error = fmt.Sprintf("%s: %s", domain, err.Error())
	state.Processing.CurrentAgent = agent
	state.Response.Response = Apology
	logx.Error().Err(err).Str("agent", agent).Msg("agent failed")
}

// rerunSystem extends the system prompt with the fallback remediation when
// this agent is being re-entered after a recovery.
func rerunSystem(state *model.AgentState, agent, system string) string {
	if solution, origErr, ok := state.FallbackRerunFor(agent); ok {
		logx.Debug().
			Str("agent", agent).
			Msg("re-entering with fallback solution")
		return prompts.WithFallbackNotice(system, origErr, solution)
	}
	return system
}

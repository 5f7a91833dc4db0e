// Package graph wires the agent nodes into the compiled workflow: routing,
// planning, dispatch, specialists, feedback and recovery, ending in a single
// final-response node.
package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/savvythreads/server/internal/assistant/graph/agents"
	"github.com/savvythreads/server/internal/assistant/graph/observers"
	"github.com/savvythreads/server/internal/assistant/model"
	logx "github.com/savvythreads/server/pkg/logger"
)

// Runner executes the compiled workflow over one turn's state.
type Runner interface {
	Run(ctx context.Context, state *model.AgentState) (*model.AgentState, error)
}

type graphRunner struct {
	runnable compose.Runnable[*model.AgentState, *model.AgentState]
}

func (r *graphRunner) Run(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
	return r.runnable.Invoke(ctx, state, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// GraphBuilder handles the construction of the workflow graph.
type GraphBuilder struct {
	deps  agents.Deps
	graph *compose.Graph[*model.AgentState, *model.AgentState]
}

// Build validates the dependencies, constructs the workflow graph and
// returns a Runner over the compiled result.
func Build(ctx context.Context, deps agents.Deps) (Runner, error) {
	if deps.Structured == nil || deps.Responder == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("tool registry is nil")
	}

	b := &GraphBuilder{
		deps:  deps,
		graph: compose.NewGraph[*model.AgentState, *model.AgentState](),
	}

	b.addNodes()
	b.addEdges()
	if err := b.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := b.compile(ctx)
	if err != nil {
		return nil, err
	}
	return &graphRunner{runnable: runnable}, nil
}

// addNodes adds all agent nodes to the graph, keyed by agent name.
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(model.AgentRouter, agents.NewRouterNode(b.deps))
	b.graph.AddLambdaNode(model.AgentConversation, agents.NewConversationNode(b.deps))
	b.graph.AddLambdaNode(model.AgentPlanning, agents.NewPlanningNode(b.deps))
	b.graph.AddLambdaNode(model.AgentDispatcher, newDispatcherNode())
	b.graph.AddLambdaNode(model.AgentAnalysis, agents.NewAnalysisNode(b.deps))
	b.graph.AddLambdaNode(model.AgentSummarization, agents.NewSummarizationNode(b.deps))
	b.graph.AddLambdaNode(model.AgentModeration, agents.NewModerationNode(b.deps))
	b.graph.AddLambdaNode(model.AgentFeedback, agents.NewFeedbackNode(b.deps))
	b.graph.AddLambdaNode(model.AgentFallback, agents.NewFallbackNode(b.deps))
	b.graph.AddLambdaNode(model.NodeFinalResponse, newFinalResponseNode())
}

// addEdges creates the unconditional flow connections.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, model.AgentRouter},
		{model.NodeFinalResponse, compose.END},
	}
	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the conditional routing branches. Every agent exit
// checks the recorded error first so any failure reaches recovery.
func (b *GraphBuilder) addBranches() error {
	type branch struct {
		from    string
		cond    func(context.Context, *model.AgentState) (string, error)
		targets map[string]bool
	}

	branches := []branch{
		{
			from: model.AgentRouter,
			cond: func(ctx context.Context, state *model.AgentState) (string, error) {
				target := RouteTarget(state)
				logx.Debug().Str("target", target).Msg("routing decision")
				return target, nil
			},
			targets: map[string]bool{
				model.AgentConversation: true,
				model.AgentPlanning:     true,
				model.AgentModeration:   true,
				model.AgentFallback:     true,
			},
		},
		{
			from: model.AgentConversation,
			cond: func(ctx context.Context, state *model.AgentState) (string, error) {
				return errorOr(state, model.NodeFinalResponse), nil
			},
			targets: map[string]bool{
				model.NodeFinalResponse: true,
				model.AgentFallback:     true,
			},
		},
		{
			from: model.AgentModeration,
			cond: func(ctx context.Context, state *model.AgentState) (string, error) {
				return errorOr(state, model.NodeFinalResponse), nil
			},
			targets: map[string]bool{
				model.NodeFinalResponse: true,
				model.AgentFallback:     true,
			},
		},
		{
			from: model.AgentPlanning,
			cond: func(ctx context.Context, state *model.AgentState) (string, error) {
				return errorOr(state, model.AgentDispatcher), nil
			},
			targets: map[string]bool{
				model.AgentDispatcher: true,
				model.AgentFallback:   true,
			},
		},
		{
			from: model.AgentDispatcher,
			cond: func(ctx context.Context, state *model.AgentState) (string, error) {
				return DispatchTarget(state.Processing.Plan), nil
			},
			targets: map[string]bool{
				model.AgentAnalysis:      true,
				model.AgentSummarization: true,
				model.NodeFinalResponse:  true,
			},
		},
		{
			from: model.AgentAnalysis,
			cond: func(ctx context.Context, state *model.AgentState) (string, error) {
				return errorOr(state, model.AgentFeedback), nil
			},
			targets: map[string]bool{
				model.AgentFeedback: true,
				model.AgentFallback: true,
			},
		},
		{
			from: model.AgentSummarization,
			cond: func(ctx context.Context, state *model.AgentState) (string, error) {
				return errorOr(state, model.AgentFeedback), nil
			},
			targets: map[string]bool{
				model.AgentFeedback: true,
				model.AgentFallback: true,
			},
		},
		{
			from: model.AgentFeedback,
			cond: func(ctx context.Context, state *model.AgentState) (string, error) {
				target := FeedbackTarget(state, b.deps.Conversation.MaxReplans)
				logx.Debug().Str("target", target).Msg("feedback decision")
				return target, nil
			},
			targets: map[string]bool{
				model.NodeFinalResponse: true,
				model.AgentPlanning:     true,
				model.AgentFallback:     true,
			},
		},
		{
			from: model.AgentFallback,
			cond: func(ctx context.Context, state *model.AgentState) (string, error) {
				target := FallbackTarget(state)
				logx.Debug().Str("target", target).Msg("recovery decision")
				return target, nil
			},
			targets: map[string]bool{
				model.AgentRouter:        true,
				model.AgentConversation:  true,
				model.AgentPlanning:      true,
				model.AgentModeration:    true,
				model.AgentAnalysis:      true,
				model.AgentSummarization: true,
				model.AgentFeedback:      true,
				model.NodeFinalResponse:  true,
			},
		},
	}

	for _, br := range branches {
		if err := b.graph.AddBranch(br.from, compose.NewGraphBranch(br.cond, br.targets)); err != nil {
			logx.Error().Err(err).Str("from", br.from).Msg("error adding branch")
			return fmt.Errorf("error adding branch from %s: %w", br.from, err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.AgentState, *model.AgentState], error) {
	// Worst case walks planning loops and recovery reruns; cap total steps
	// so a misbehaving model cannot spin forever.
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(50))
	if err != nil {
		logx.Error().Err(err).Msg("error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("workflow graph compiled")
	return runnable, nil
}

package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/model"
	"github.com/hupe1980/agentchat/tool"
)

// State enumerates the phases of a single turn.
type State int

const (
	// StateReasoning is the initial state; the model decides whether to
	// answer or request tools.
	StateReasoning State = iota
	// StateToolExecution runs the requested tool calls in emission order.
	StateToolExecution
	// StateDone is terminal; a final answer was produced.
	StateDone
	// StateAborted is terminal; the iteration cap was hit or the model
	// failed, and the fallback answer is returned instead.
	StateAborted
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateReasoning:
		return "reasoning"
	case StateToolExecution:
		return "tool_execution"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// FallbackAnswer is returned whenever a turn aborts: model transport failure,
// unparsable model output or iteration-cap breach. The caller always receives
// a well-formed reply, never an error, for these conditions.
const FallbackAnswer = "Sorry, I could not process your question."

// DefaultMaxIterations bounds reasoning-to-tool round-trips per turn so a
// model that keeps requesting tools cannot loop forever.
const DefaultMaxIterations = 10

// Options configures an Agent.
type Options struct {
	// MaxIterations caps reasoning<->tool round-trips per turn.
	MaxIterations int
	// Instructions is the optional system prompt forwarded to the model.
	Instructions string
	// Logger receives structured turn and tool execution records.
	Logger logging.Logger
}

// Agent orchestrates the reasoning model and the tool registry for one turn
// at a time: it alternates between a reasoning step and a tool-execution step
// until the model produces a final answer or the iteration cap is reached.
// An Agent holds no per-turn state and is safe for concurrent use.
type Agent struct {
	model         model.Model
	registry      *tool.Registry
	definitions   []model.ToolDefinition
	maxIterations int
	instructions  string
	logger        logging.Logger
}

// New creates an Agent bound to a model and an immutable tool registry.
func New(m model.Model, registry *tool.Registry, optFns ...func(o *Options)) *Agent {
	opts := Options{
		MaxIterations: DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}

	return &Agent{
		model:         m,
		registry:      registry,
		definitions:   toolDefinitions(registry),
		maxIterations: opts.MaxIterations,
		instructions:  opts.Instructions,
		logger:        opts.Logger,
	}
}

// RunTurn executes one full reasoning->(tool)*->answer cycle over the given
// history and returns the updated history plus the final answer. The history
// is borrowed: RunTurn appends to its own copy and never mutates the input.
//
// RunTurn never returns an error. Tool-level failures become tool-role
// messages the model can react to; model failures and iteration-cap breaches
// resolve to FallbackAnswer with the history accumulated so far preserved.
func (a *Agent) RunTurn(ctx context.Context, history []core.Message) ([]core.Message, string) {
	history = core.CloneHistory(history)
	state := StateReasoning

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		a.logger.Debug("agent.turn.state", "state", state.String(), "iteration", iteration)

		response, err := a.model.Decide(ctx, model.Request{
			Instructions: a.instructions,
			History:      history,
			Tools:        a.definitions,
		})
		if err != nil {
			state = StateAborted
			a.logger.Error("agent.turn.aborted", "state", state.String(), "iteration", iteration, "error", err.Error())
			return history, FallbackAnswer
		}

		response.Role = core.RoleAssistant
		history = append(history, response)

		if !response.HasToolCalls() {
			state = StateDone
			a.logger.Debug("agent.turn.state", "state", state.String(), "iteration", iteration)
			if response.Content == "" {
				return history, FallbackAnswer
			}
			return history, response.Content
		}

		// Tool calls execute strictly in the order the model emitted them so
		// the next reasoning step sees a deterministic history.
		state = StateToolExecution
		for _, call := range response.ToolCalls {
			history = append(history, core.NewToolResultMessage(call.ID, a.executeCall(ctx, call)))
		}
		state = StateReasoning
	}

	state = StateAborted
	a.logger.Warn("agent.turn.aborted", "state", state.String(), "reason", "iteration cap exceeded", "max_iterations", a.maxIterations)
	return history, FallbackAnswer
}

// executeCall resolves and invokes a single tool call. An unknown tool name
// or an undecodable argument payload is not fatal: it is rendered as an error
// string so the model can recover or apologize in the next reasoning step.
func (a *Agent) executeCall(ctx context.Context, call core.ToolCall) string {
	t, ok := a.registry.Get(call.Name)
	if !ok {
		a.logger.Warn("agent.tool.unknown", "tool", call.Name, "call_id", call.ID)
		return fmt.Sprintf("Unknown tool %q.", call.Name)
	}

	args := map[string]any{}
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			a.logger.Warn("agent.tool.bad_arguments", "tool", call.Name, "call_id", call.ID, "error", err.Error())
			return fmt.Sprintf("Invalid arguments for %s: %v", call.Name, err)
		}
	}

	result := t.Call(ctx, args)
	a.logger.Info("agent.tool.executed", "tool", call.Name, "call_id", call.ID)
	return result
}

// toolDefinitions snapshots the registry into model-facing declarations.
func toolDefinitions(registry *tool.Registry) []model.ToolDefinition {
	tools := registry.All()
	defs := make([]model.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return defs
}

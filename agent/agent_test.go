package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/model"
	"github.com/hupe1980/agentchat/tool"
)

func echoTool(name string) tool.Tool {
	return tool.NewFuncTool(
		name,
		"echoes the text argument",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		nil,
		func(_ context.Context, args map[string]any) string {
			s, _ := args["text"].(string)
			return fmt.Sprintf("%s:%s", name, s)
		},
	)
}

func TestRunTurn_DirectAnswer(t *testing.T) {
	m := model.NewMockModel(core.NewAssistantMessage("Hello there!"))
	a := New(m, tool.NewRegistry())

	input := []core.Message{core.NewUserMessage("Hi")}
	history, answer := a.RunTurn(context.Background(), input)

	assert.Equal(t, "Hello there!", answer)
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleAssistant, history[1].Role)

	// Input history is borrowed, never mutated.
	assert.Len(t, input, 1)
	assert.Equal(t, 1, m.Calls())
}

func TestRunTurn_ToolRoundTrip(t *testing.T) {
	m := model.NewMockModel(
		core.NewToolCallMessage(core.ToolCall{
			ID:        "call-1",
			Name:      "calculator",
			Arguments: json.RawMessage(`{"expression":"12*7"}`),
		}),
		core.NewAssistantMessage("12*7 is 84."),
	)
	a := New(m, tool.NewRegistry(tool.NewCalculator()))

	history, answer := a.RunTurn(context.Background(), []core.Message{core.NewUserMessage("what is 12*7?")})

	assert.Equal(t, "12*7 is 84.", answer)
	require.Len(t, history, 4)
	assert.Equal(t, core.RoleTool, history[2].Role)
	assert.Equal(t, "call-1", history[2].ToolCallID)
	assert.Equal(t, "84", history[2].Content)
	assert.Equal(t, 2, m.Calls())
}

func TestRunTurn_ToolCallsExecuteInEmissionOrder(t *testing.T) {
	m := model.NewMockModel(
		core.NewToolCallMessage(
			core.ToolCall{ID: "c1", Name: "first", Arguments: json.RawMessage(`{"text":"a"}`)},
			core.ToolCall{ID: "c2", Name: "second", Arguments: json.RawMessage(`{"text":"b"}`)},
			core.ToolCall{ID: "c3", Name: "third", Arguments: json.RawMessage(`{"text":"c"}`)},
		),
		core.NewAssistantMessage("done"),
	)
	a := New(m, tool.NewRegistry(echoTool("first"), echoTool("second"), echoTool("third")))

	history, answer := a.RunTurn(context.Background(), nil)

	assert.Equal(t, "done", answer)
	require.Len(t, history, 5)
	assert.Equal(t, "first:a", history[1].Content)
	assert.Equal(t, "c1", history[1].ToolCallID)
	assert.Equal(t, "second:b", history[2].Content)
	assert.Equal(t, "c2", history[2].ToolCallID)
	assert.Equal(t, "third:c", history[3].Content)
	assert.Equal(t, "c3", history[3].ToolCallID)
}

func TestRunTurn_UnknownToolRecovers(t *testing.T) {
	m := model.NewMockModel(
		core.NewToolCallMessage(core.ToolCall{ID: "c1", Name: "bogus"}),
		core.NewAssistantMessage("I cannot do that."),
	)
	a := New(m, tool.NewRegistry())

	history, answer := a.RunTurn(context.Background(), nil)

	assert.Equal(t, "I cannot do that.", answer)
	require.Len(t, history, 3)
	assert.Equal(t, `Unknown tool "bogus".`, history[1].Content)
}

func TestRunTurn_InvalidToolArguments(t *testing.T) {
	m := model.NewMockModel(
		core.NewToolCallMessage(core.ToolCall{
			ID:        "c1",
			Name:      "calculator",
			Arguments: json.RawMessage(`{not json`),
		}),
		core.NewAssistantMessage("sorry"),
	)
	a := New(m, tool.NewRegistry(tool.NewCalculator()))

	history, answer := a.RunTurn(context.Background(), nil)

	assert.Equal(t, "sorry", answer)
	require.Len(t, history, 3)
	assert.Contains(t, history[1].Content, "Invalid arguments for calculator")
}

func TestRunTurn_IterationCap(t *testing.T) {
	m := model.NewMockModel(
		core.NewToolCallMessage(core.ToolCall{
			ID:        "loop",
			Name:      "calculator",
			Arguments: json.RawMessage(`{"expression":"1+1"}`),
		}),
	).RepeatLast()
	a := New(m, tool.NewRegistry(tool.NewCalculator()), func(o *Options) {
		o.MaxIterations = 3
	})

	history, answer := a.RunTurn(context.Background(), []core.Message{core.NewUserMessage("loop forever")})

	assert.Equal(t, FallbackAnswer, answer)
	assert.Equal(t, 3, m.Calls())
	// user + 3 x (tool call + tool result)
	assert.Len(t, history, 7)
}

func TestRunTurn_ModelFailure(t *testing.T) {
	m := model.NewMockModel().FailWith(errors.New("upstream unavailable"))
	a := New(m, tool.NewRegistry())

	history, answer := a.RunTurn(context.Background(), []core.Message{core.NewUserMessage("hi")})

	assert.Equal(t, FallbackAnswer, answer)
	assert.Len(t, history, 1)
}

func TestRunTurn_EmptyAnswerFallsBack(t *testing.T) {
	m := model.NewMockModel(core.NewAssistantMessage(""))
	a := New(m, tool.NewRegistry())

	history, answer := a.RunTurn(context.Background(), []core.Message{core.NewUserMessage("hi")})

	assert.Equal(t, FallbackAnswer, answer)
	// The empty assistant message is still recorded.
	assert.Len(t, history, 2)
}

func TestRunTurn_ForcesAssistantRole(t *testing.T) {
	m := model.NewMockModel(core.Message{Role: core.RoleUser, Content: "mislabeled"})
	a := New(m, tool.NewRegistry())

	history, answer := a.RunTurn(context.Background(), nil)

	assert.Equal(t, "mislabeled", answer)
	require.Len(t, history, 1)
	assert.Equal(t, core.RoleAssistant, history[0].Role)
}

func TestNew_InvalidMaxIterationsUsesDefault(t *testing.T) {
	a := New(model.NewMockModel(), tool.NewRegistry(), func(o *Options) {
		o.MaxIterations = -1
	})
	assert.Equal(t, DefaultMaxIterations, a.maxIterations)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "reasoning", StateReasoning.String())
	assert.Equal(t, "tool_execution", StateToolExecution.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.Equal(t, "unknown", State(99).String())
}

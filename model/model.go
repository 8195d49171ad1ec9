package model

import (
	"context"
	"sync"

	"github.com/hupe1980/agentchat/core"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input for one reasoning step.
type Request struct {
	Instructions string           `json:"instructions,omitempty"`
	History      []core.Message   `json:"history"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to drive one reasoning step. Decide
// must return an assistant message: either final text content or one or more
// tool calls. Transport failures and unparsable provider output surface as
// errors; the caller converts those into its fallback path and never lets
// them escape further.
type Model interface {
	Decide(ctx context.Context, req Request) (core.Message, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples. It
// replays scripted assistant messages in order; once the script is exhausted
// it either repeats the last message (RepeatLast) or returns a canned text
// answer. Safe for concurrent use.
type MockModel struct {
	mu         sync.Mutex
	info       Info
	script     []core.Message
	next       int
	repeatLast bool
	err        error
	handler    func(req Request) (core.Message, error)
	calls      int
}

// NewMockModel constructs a MockModel replaying the given messages in order.
func NewMockModel(script ...core.Message) *MockModel {
	return &MockModel{
		info:   Info{Name: "mock", Provider: "mock", SupportsTools: true},
		script: script,
	}
}

// RepeatLast makes the model keep returning the final scripted message after
// the script is exhausted. Useful for exercising iteration caps.
func (m *MockModel) RepeatLast() *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repeatLast = true
	return m
}

// FailWith makes every subsequent Decide call return err.
func (m *MockModel) FailWith(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// OnDecide installs a handler that computes responses from the request,
// overriding any script. Useful when one mock serves several sessions.
func (m *MockModel) OnDecide(fn func(req Request) (core.Message, error)) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn
	return m
}

// Calls returns how many times Decide has been invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Decide implements Model.
func (m *MockModel) Decide(_ context.Context, req Request) (core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return core.Message{}, m.err
	}
	if m.handler != nil {
		return m.handler(req)
	}
	if m.next < len(m.script) {
		msg := m.script[m.next]
		m.next++
		return msg, nil
	}
	if m.repeatLast && len(m.script) > 0 {
		return m.script[len(m.script)-1], nil
	}
	return core.NewAssistantMessage("Mock response"), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

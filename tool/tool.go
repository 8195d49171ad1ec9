// Package tool implements the tool-calling subsystem: a fixed registry of
// named capabilities the reasoning model can invoke, each with a declared
// argument schema and a plain string result.
//
// Tools never return errors and never panic. Since tool output flows back
// into the conversation as ordinary content, every failure mode (bad input,
// upstream timeout, upstream 4xx/5xx, missing data) is caught internally and
// rendered as a descriptive string the model can recover from or apologize
// for in its next reasoning step.
package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentchat/internal/util"
	"github.com/hupe1980/agentchat/logging"
)

// Tool defines a named capability with a typed input contract.
//
// Implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Define a proper JSON schema for Parameters
//   - Encode all failures in the returned string, never panic
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the model
	// so it understands when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with decoded arguments. The result is always a
	// string suitable for rendering into the conversation; failures are
	// encoded in the string rather than raised.
	Call(ctx context.Context, args map[string]any) string
}

// Registry is a fixed, name-keyed set of tools. It is immutable after
// construction and safe to share read-only across concurrent turns.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from the given tools. A later tool with a
// duplicate name replaces the earlier one.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; !exists {
			r.order = append(r.order, t.Name())
		}
		r.tools[t.Name()] = t
	}
	return r
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FuncTool adapts a plain Go function into a Tool. It validates arguments
// against the declared schema before execution and converts validation
// failures and panics into result strings, upholding the never-fail contract
// for the wrapped function's callers.
type FuncTool struct {
	name        string
	description string
	parameters  map[string]any
	logger      logging.Logger
	fn          func(ctx context.Context, args map[string]any) string
}

// NewFuncTool constructs a FuncTool from an explicit schema and function.
func NewFuncTool(
	name, description string,
	parameters map[string]any,
	logger logging.Logger,
	fn func(ctx context.Context, args map[string]any) string,
) *FuncTool {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &FuncTool{
		name:        name,
		description: description,
		parameters:  parameters,
		logger:      logger,
		fn:          fn,
	}
}

// Name returns the unique tool name used in tool call routing.
func (t *FuncTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FuncTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FuncTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema then invokes the wrapped
// function, recovering any panic into an error string.
func (t *FuncTool) Call(ctx context.Context, args map[string]any) (result string) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("tool.call.panic", "tool", t.name, "recover", fmt.Sprintf("%v", r))
			result = fmt.Sprintf("Tool %s failed: internal error.", t.name)
		}
	}()

	if err := util.ValidateArguments(args, t.parameters); err != nil {
		t.logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())
		return fmt.Sprintf("Invalid arguments for %s: %v", t.name, err)
	}

	t.logger.Debug("tool.call.start", "tool", t.name)
	return t.fn(ctx, args)
}

// stringArg extracts a string argument, trimmed of surrounding whitespace.
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// floatArg extracts a numeric argument, falling back to def when absent.
// JSON decoding yields float64 for all numbers; integer Go values are
// accepted for direct callers.
func floatArg(args map[string]any, key string, def float64) float64 {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}

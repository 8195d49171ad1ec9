package core

import "encoding/json"

// Role identifies the author of a conversation message. The set is closed:
// every message is authored by the user, the assistant or a tool.
type Role string

const (
	// RoleUser marks a message written by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the reasoning model. It may
	// carry tool calls instead of (or in addition to) text content.
	RoleAssistant Role = "assistant"
	// RoleTool marks the result of a tool invocation. It must reference the
	// ToolCall it answers via ToolCallID.
	RoleTool Role = "tool"
)

// ToolCall is a request by the assistant to invoke a named tool. The ID is
// unique within one assistant turn and correlates the eventual tool result.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Message is the unit of conversation history. Content may be empty when an
// assistant message only carries tool calls. ToolCallID is set on tool-role
// messages only.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage creates an assistant text message without tool calls.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// NewToolCallMessage creates an assistant message that requests the given
// tool invocations in order.
func NewToolCallMessage(calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

// NewToolResultMessage records the string outcome of the tool call with the
// given id.
func NewToolResultMessage(callID, result string) Message {
	return Message{Role: RoleTool, Content: result, ToolCallID: callID}
}

// HasToolCalls reports whether the message carries at least one tool call.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// CloneHistory returns a copy of the history slice so callers can append or
// mutate without affecting the original. ToolCall slices are copied as well;
// the raw argument payloads are treated as immutable.
func CloneHistory(history []Message) []Message {
	if history == nil {
		return nil
	}
	clone := make([]Message, len(history))
	copy(clone, history)
	for i := range clone {
		if len(clone[i].ToolCalls) > 0 {
			calls := make([]ToolCall, len(clone[i].ToolCalls))
			copy(calls, clone[i].ToolCalls)
			clone[i].ToolCalls = calls
		}
	}
	return clone
}

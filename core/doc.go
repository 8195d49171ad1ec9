// Package core provides the foundational domain types used by agentchat. It
// defines the core abstractions for:
//
//   - Messages (role-tagged conversation units with optional tool calls)
//   - ToolCalls (requests emitted by the reasoning model)
//   - RequestContext (per-request trace id and tool-usage marker)
//
// The package intentionally keeps implementation concerns (model providers,
// tool execution, persistence) out of scope so that higher layers can depend
// on a small, stable contract.
package core

// Package agent contains the bounded state machine that drives one
// conversational turn: it alternates between a reasoning step (the model
// decides to answer or to invoke tools) and a tool-execution step, appending
// every intermediate message to the history until a terminal answer is
// produced or the iteration cap aborts the turn.
//
// Design principles:
//   - No hidden global state: observability flows through core.RequestContext
//     carried on the context.Context
//   - Nothing escapes as an error: tool failures become tool-role messages,
//     model failures become the fixed fallback answer
//   - Deterministic histories: tool results are appended in the exact order
//     the model emitted the calls
package agent

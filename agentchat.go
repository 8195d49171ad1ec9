// Package agentchat provides a high-level façade over the agent loop, the
// tool registry and session storage, enabling construction of a conversational
// assistant that answers directly or routes through external tools. Most
// applications interact with this package by:
//  1. Creating an Assistant via New() with a model and a tool registry
//  2. Calling Chat per user message (sessions are created lazily)
//  3. Calling Reset to clear a conversation
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable session store and a structured
// logger.
package agentchat

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentchat/agent"
	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/model"
	"github.com/hupe1980/agentchat/session"
	"github.com/hupe1980/agentchat/tool"
)

// ToolUsedLLM is reported when a turn completed without any tool firing.
const ToolUsedLLM = "llm"

// Options configures the Assistant instance.
type Options struct {
	// SessionStore persists conversation histories (defaults to in-memory).
	SessionStore session.Store
	// MaxIterations caps reasoning<->tool round-trips per turn.
	MaxIterations int
	// Instructions is the optional system prompt for the model.
	Instructions string
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	Reply    string `json:"reply"`
	ToolUsed string `json:"tool_used"`
	TraceID  string `json:"trace_id"`
}

// Assistant is the high-level façade aggregating the agent loop and session
// storage. It is safe for concurrent use; turns against the same session id
// are serialized so each turn's history replacement applies atomically and in
// arrival order.
type Assistant struct {
	agent    *agent.Agent
	sessions session.Store
	logger   logging.Logger

	mu        sync.Mutex
	turnLocks map[string]*sync.Mutex
}

// New creates an Assistant with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(m model.Model, registry *tool.Registry, optFns ...func(o *Options)) *Assistant {
	opts := Options{
		SessionStore:  session.NewInMemoryStore(),
		MaxIterations: agent.DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := agent.New(m, registry, func(o *agent.Options) {
		o.MaxIterations = opts.MaxIterations
		o.Instructions = opts.Instructions
		o.Logger = opts.Logger
	})

	return &Assistant{
		agent:     a,
		sessions:  opts.SessionStore,
		logger:    opts.Logger,
		turnLocks: make(map[string]*sync.Mutex),
	}
}

// Chat processes one user message within the given session: it appends the
// message to the session history, runs the agent loop and persists the
// updated history. The returned result always carries a well-formed reply,
// the tool-used indicator (ToolUsedLLM when no tool fired) and the per
// request trace id. An error is returned only for session-store failures or
// an empty session id, never for model or tool failures.
func (a *Assistant) Chat(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id must not be empty")
	}

	reqCtx := core.NewRequestContext()
	ctx = core.WithRequestContext(ctx, reqCtx)

	lock := a.turnLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	history, err := a.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	history = append(history, core.NewUserMessage(message))

	history, answer := a.agent.RunTurn(ctx, history)

	if err := a.sessions.ReplaceHistory(ctx, sessionID, history); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	toolUsed := ToolUsedLLM
	if name, ok := reqCtx.ToolUsed(); ok {
		toolUsed = name
	}

	a.logger.Info("assistant.chat.complete",
		"session_id", sessionID,
		"trace_id", reqCtx.TraceID(),
		"tool_used", toolUsed,
		"history_len", len(history),
	)

	return &ChatResult{Reply: answer, ToolUsed: toolUsed, TraceID: reqCtx.TraceID()}, nil
}

// Reset clears the conversation history for the given session. Resetting an
// unknown session id succeeds.
func (a *Assistant) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id must not be empty")
	}

	lock := a.turnLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := a.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	a.logger.Info("assistant.session.reset", "session_id", sessionID)
	return nil
}

// turnLock returns the mutex serializing turns for a session id, creating it
// lazily. Locks are never evicted; they are tiny and bounded by the number of
// distinct sessions, matching the unbounded-history policy of the store.
func (a *Assistant) turnLock(sessionID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.turnLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		a.turnLocks[sessionID] = lock
	}
	return lock
}

package core

import (
	"context"
	"sync"
	"testing"
)

func TestRequestContext_TraceIDUnique(t *testing.T) {
	a := NewRequestContext()
	b := NewRequestContext()
	if a.TraceID() == "" || a.TraceID() == b.TraceID() {
		t.Fatalf("expected distinct non-empty trace ids, got %q and %q", a.TraceID(), b.TraceID())
	}
}

func TestRequestContext_MarkToolLastWriteWins(t *testing.T) {
	rc := NewRequestContext()
	if _, ok := rc.ToolUsed(); ok {
		t.Fatal("fresh context should have no tool marked")
	}
	rc.MarkTool("calculator")
	rc.MarkTool("fx")
	name, ok := rc.ToolUsed()
	if !ok || name != "fx" {
		t.Fatalf("expected last marked tool fx, got %q (ok=%v)", name, ok)
	}
}

func TestRequestContext_ContextPlumbing(t *testing.T) {
	rc := NewRequestContext()
	ctx := WithRequestContext(context.Background(), rc)

	MarkTool(ctx, "crypto")
	if name, _ := rc.ToolUsed(); name != "crypto" {
		t.Fatalf("expected crypto, got %q", name)
	}

	// Marking on a bare context must not panic.
	MarkTool(context.Background(), "calculator")

	if _, ok := RequestContextFrom(context.Background()); ok {
		t.Error("bare context should carry no request context")
	}
}

func TestRequestContext_ConcurrentIsolation(t *testing.T) {
	a := NewRequestContext()
	b := NewRequestContext()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx := WithRequestContext(context.Background(), a)
		for i := 0; i < 100; i++ {
			MarkTool(ctx, "fx")
		}
	}()
	go func() {
		defer wg.Done()
		ctx := WithRequestContext(context.Background(), b)
		_ = ctx // request b never fires a tool
	}()
	wg.Wait()

	if name, _ := a.ToolUsed(); name != "fx" {
		t.Errorf("request a should report fx, got %q", name)
	}
	if _, ok := b.ToolUsed(); ok {
		t.Error("request b should report no tool")
	}
}

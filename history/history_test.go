package history

import (
	"strings"
	"testing"
)

func TestRenderContextEmpty(t *testing.T) {
	h := New()
	if got := h.RenderContext(); got != "" {
		t.Errorf("Expected empty context for empty history, got %q", got)
	}
}

func TestRenderContextOrder(t *testing.T) {
	h := New()
	h.Append(RoleUser, "a")
	h.Append(RoleAssistant, "b")

	got := h.RenderContext()
	want := contextHeader + "user: a\nassistant: b\n"
	if got != want {
		t.Errorf("RenderContext mismatch:\n got: %q\nwant: %q", got, want)
	}
	if strings.Index(got, "user: a") > strings.Index(got, "assistant: b") {
		t.Error("Turns rendered out of insertion order")
	}
}

func TestAppendIsPreserving(t *testing.T) {
	h := New()
	h.Append(RoleUser, "first")
	h.Append(RoleAssistant, "second")
	h.Append(RoleUser, "third")

	if h.Len() != 3 {
		t.Fatalf("Expected 3 turns, got %d", h.Len())
	}
	turns := h.Turns()
	if turns[0].Content != "first" || turns[2].Content != "third" {
		t.Errorf("Turns not in insertion order: %+v", turns)
	}
	if turns[1].Role != RoleAssistant {
		t.Errorf("Expected assistant role for second turn, got %s", turns[1].Role)
	}
}

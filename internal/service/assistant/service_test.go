package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/config"
)

func TestChatWithoutModelUsesFallback(t *testing.T) {
	svc, err := NewService(context.Background(), config.AIConfig{})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	if svc.ModelEnabled() {
		t.Fatal("expected fallback-only service without credentials")
	}

	resp := svc.Chat(context.Background(), Request{Message: "hello there", Mood: "neutral", SessionID: "s-1"})
	if !resp.UsingFallback {
		t.Fatal("expected fallback flag")
	}
	if resp.InCrisis {
		t.Fatal("greeting should not flag crisis")
	}
	if !strings.Contains(resp.Response, "Kiran") {
		t.Fatalf("unexpected greeting fallback: %q", resp.Response)
	}
}

func TestChatFlagsCrisisIndependently(t *testing.T) {
	svc := &Service{}

	resp := svc.Chat(context.Background(), Request{Message: "I want to end my life", Mood: "sad"})
	if !resp.InCrisis {
		t.Fatal("expected crisis flag from responder-side scan")
	}
	if !strings.Contains(resp.Response, "not alone") {
		t.Fatalf("expected crisis-focused fallback, got %q", resp.Response)
	}
}

func TestFallbackResponseKeys(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"hi", "Hello! I'm Kiran"},
		{"I feel so sad today", "feeling down"},
		{"exam stress is too much", "stress and anxiety"},
		{"thank you", "You're welcome"},
		{"I need help", "share what's on your mind"},
		{"the weather is nice", "tell me more"},
	}

	for _, tc := range cases {
		got := fallbackResponse(tc.message, false)
		if !strings.Contains(got, tc.want) {
			t.Errorf("fallbackResponse(%q) = %q, want substring %q", tc.message, got, tc.want)
		}
	}
}

func TestContainsCrisisWord(t *testing.T) {
	if !containsCrisisWord("I think about SUICIDE sometimes") {
		t.Fatal("expected case-insensitive crisis match")
	}
	if !containsCrisisWord("मैं मरना चाहता हूँ") {
		t.Fatal("expected Hindi crisis match")
	}
	if containsCrisisWord("what a lovely day") {
		t.Fatal("unexpected crisis match")
	}
}

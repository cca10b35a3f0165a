package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestWithLoggingPassesThrough(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{response: strings.Repeat("r", 50)}

	g := WithLogging(stub, zap.New(core), 10)
	out, err := g.GenerateContent(context.Background(), "system", strings.Repeat("p", 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != stub.response {
		t.Fatalf("unexpected output %q", out)
	}
	if stub.lastSystem != "system" {
		t.Fatalf("expected system instruction to be forwarded, got %q", stub.lastSystem)
	}

	entries := observed.FilterMessage("generate content request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request entry, got %d", len(entries))
	}
	if preview := entries[0].ContextMap()["prompt_preview"]; preview != strings.Repeat("p", 10)+"..." {
		t.Fatalf("unexpected prompt preview %q", preview)
	}
	if observed.FilterMessage("generate content response").Len() != 1 {
		t.Fatal("expected a response entry")
	}
}

func TestWithLoggingReturnsError(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	g := WithLogging(&stubGenerator{err: errors.New("boom")}, zap.New(core), 0)

	if _, err := g.GenerateContent(context.Background(), "s", "m"); err == nil {
		t.Fatal("expected error")
	}
	if observed.FilterMessage("generate content failed").Len() != 1 {
		t.Fatal("expected a failure entry")
	}
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.GenerateContent(context.Background(), "s", "m")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// Package ai defines the generative backend contract used by the interview engine.
package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by Unavailable for every call.
var ErrUnavailable = errors.New("generative backend is not configured")

// Generator produces a reply for message under the given system instruction.
// The system instruction carries the persona (interviewer or evaluator).
type Generator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Unavailable is a Generator that always fails. It is used when no provider is
// configured, so every turn degrades to the engine's fallback text.
type Unavailable struct{}

func (Unavailable) GenerateContent(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}

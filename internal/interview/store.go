package interview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoChange may be returned by an Update mutator to commit nothing.
	ErrNoChange = errors.New("no change")
	// ErrInvalidUpdate marks a mutation that breaks a session invariant.
	ErrInvalidUpdate = errors.New("invalid session update")
)

// Store owns sessions. Implementations must serialize Update calls per session id
// for the whole duration of the mutator.
type Store interface {
	// Create stores s under a new id and returns it.
	Create(ctx context.Context, s *Session) (string, error)
	// Get returns a snapshot of the session.
	Get(ctx context.Context, id string) (*Session, error)
	// Update applies mutate to a private copy and commits it when mutate returns nil
	// and the result passes ValidateUpdate. ErrNoChange from mutate commits nothing
	// and Update returns the current snapshot.
	Update(ctx context.Context, id string, mutate func(*Session) error) (*Session, error)
	// Expire removes sessions not updated since olderThan and returns how many were removed.
	Expire(ctx context.Context, olderThan time.Time) (int, error)
}

// ValidateUpdate checks that after is a legal successor of before.
func ValidateUpdate(before, after *Session) error {
	switch {
	case after.ID != before.ID:
		return fmt.Errorf("%w: id changed", ErrInvalidUpdate)
	case after.CandidateName != before.CandidateName,
		after.CandidateID != before.CandidateID,
		after.InterviewRef != before.InterviewRef,
		after.Role != before.Role,
		after.Difficulty != before.Difficulty,
		after.DurationMinutes != before.DurationMinutes:
		return fmt.Errorf("%w: metadata is immutable", ErrInvalidUpdate)
	case len(before.Questions) > 0 && !slices.Equal(before.Questions, after.Questions):
		return fmt.Errorf("%w: questions are fixed once set", ErrInvalidUpdate)
	case after.CurrentQuestionIndex < before.CurrentQuestionIndex:
		return fmt.Errorf("%w: question index decreased from %d to %d", ErrInvalidUpdate, before.CurrentQuestionIndex, after.CurrentQuestionIndex)
	case before.Completed() && !after.Completed():
		return fmt.Errorf("%w: completed session cannot be reopened", ErrInvalidUpdate)
	case after.Status != StatusActive && after.Status != StatusCompleted:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidUpdate, after.Status)
	case len(after.Transcript) < len(before.Transcript):
		return fmt.Errorf("%w: transcript shrank", ErrInvalidUpdate)
	}

	for i, turn := range before.Transcript {
		if !sameTurn(turn, after.Transcript[i]) {
			return fmt.Errorf("%w: transcript turn %d rewritten", ErrInvalidUpdate, i)
		}
	}

	return nil
}

func sameTurn(a, b Turn) bool {
	if a.Speaker != b.Speaker || a.Content != b.Content {
		return false
	}
	if a.TimestampMillis == nil || b.TimestampMillis == nil {
		return a.TimestampMillis == b.TimestampMillis
	}
	return *a.TimestampMillis == *b.TimestampMillis
}

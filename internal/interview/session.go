// Package interview runs the mock interview state machine: it sequences
// interviewer and evaluator calls, advances through the question list and
// decides when an interview is over.
package interview

import (
	"time"

	"github.com/spigell/hh-interviewer/internal/analysis"
)

// Speaker identifies who produced a transcript turn.
type Speaker string

const (
	SpeakerCandidate   Speaker = "candidate"
	SpeakerInterviewer Speaker = "interviewer"
)

// Status is the lifecycle state of a session. Active moves to Completed once.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Turn is one visible transcript entry.
type Turn struct {
	Speaker         Speaker `json:"speaker"`
	Content         string  `json:"content"`
	TimestampMillis *int64  `json:"timestampMillis,omitempty"`
}

// Session is the state of one interview.
type Session struct {
	ID              string `json:"id"`
	CandidateName   string `json:"candidateName"`
	CandidateID     string `json:"candidateId"`
	InterviewRef    string `json:"interviewRef"`
	Role            string `json:"role"`
	Difficulty      string `json:"difficulty"`
	DurationMinutes int    `json:"durationMinutes"`

	Questions            []string `json:"questions"`
	CurrentQuestionIndex int      `json:"currentQuestionIndex"`
	// FollowUpCount is persisted but does not drive branching.
	FollowUpCount int `json:"followUpCount"`

	Transcript []Turn `json:"transcript"`
	Status     Status `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Completed reports whether the session accepts no more turns.
func (s *Session) Completed() bool {
	return s.Status == StatusCompleted
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	c := *s
	c.Questions = append([]string(nil), s.Questions...)
	c.Transcript = make([]Turn, len(s.Transcript))
	for i, t := range s.Transcript {
		c.Transcript[i] = t
		if t.TimestampMillis != nil {
			ts := *t.TimestampMillis
			c.Transcript[i].TimestampMillis = &ts
		}
	}

	return &c
}

// AnalysisTranscript converts the transcript into the analysis message format.
func (s *Session) AnalysisTranscript() []analysis.Message {
	out := make([]analysis.Message, 0, len(s.Transcript))
	for _, t := range s.Transcript {
		role := analysis.RoleAssistant
		if t.Speaker == SpeakerCandidate {
			role = analysis.RoleUser
		}

		msg := analysis.Message{Role: role, Content: t.Content}
		if t.TimestampMillis != nil {
			ts := float64(*t.TimestampMillis)
			msg.Timestamp = &ts
		}
		out = append(out, msg)
	}
	return out
}

package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	personaInterviewer = "interviewer"
	personaEvaluator   = "evaluator"
)

// StartRequest carries the metadata of a new interview. Empty Questions are
// generated once.
type StartRequest struct {
	CandidateName   string
	CandidateID     string
	InterviewRef    string
	Role            string
	Difficulty      string
	DurationMinutes int
	Questions       []string
}

// StartResult is returned when an interview is created.
type StartResult struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Status    Status `json:"status"`
}

// RespondResult is the outcome of one candidate turn.
type RespondResult struct {
	Message        string `json:"message"`
	Status         Status `json:"status"`
	Final          bool   `json:"final"`
	ClosingMessage string `json:"closingMessage,omitempty"`
	Summary        string `json:"summary,omitempty"`
}

// EndResult acknowledges an explicit termination. Summary is always empty.
type EndResult struct {
	Message string         `json:"message"`
	Summary map[string]any `json:"summary"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine advances interview sessions. It keeps no per-session state of its own;
// personas are rebuilt from the stored snapshot on every call.
type Engine struct {
	store     Store
	generator ai.Generator
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates an Engine. A nil generator makes every turn use fallback text.
func NewEngine(store Store, generator ai.Generator, log *zap.Logger, opts ...Option) *Engine {
	if generator == nil {
		generator = ai.Unavailable{}
	}
	e := &Engine{
		store:     store,
		generator: generator,
		logger:    logger.WithFields(log),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start creates a session, fixes its question list and produces the opening turn.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	s := &Session{
		CandidateName:   req.CandidateName,
		CandidateID:     req.CandidateID,
		InterviewRef:    req.InterviewRef,
		Role:            req.Role,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
		Questions:       cleanQuestions(req.Questions),
		Status:          StatusActive,
	}
	log := logger.WithSession(e.logger, "", s.Role, s.Difficulty)

	if len(s.Questions) == 0 {
		s.Questions = e.generateQuestions(ctx, log, s)
	}

	opening, err := e.generator.GenerateContent(ctx, interviewerPersona(s), startDirective)
	if err != nil || strings.TrimSpace(opening) == "" {
		e.warnFallback(log, personaInterviewer, "opening turn", err)
		opening = greeting(s)
	}
	s.Transcript = append(s.Transcript, e.turn(SpeakerInterviewer, opening))

	id, err := e.store.Create(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	log.Info("interview started",
		zap.String(logger.FieldSessionID, id),
		zap.Int("questions", len(s.Questions)),
	)

	return &StartResult{SessionID: id, Message: opening, Status: StatusActive}, nil
}

// Respond records the candidate input and produces the next interviewer turn.
// Calls for the same session are serialized by the store.
func (e *Engine) Respond(ctx context.Context, id, input string) (*RespondResult, error) {
	var result *RespondResult

	_, err := e.store.Update(ctx, id, func(s *Session) error {
		if s.Completed() {
			result = &RespondResult{Message: AlreadyFinished, Status: StatusCompleted, Final: true}
			return ErrNoChange
		}
		result = e.advance(ctx, s, input)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("respond to session %s: %w", id, err)
	}

	return result, nil
}

// advance applies one candidate turn to s. The question index moves forward on
// every turn; the evaluator's recommendation only shapes the interviewer prompt.
func (e *Engine) advance(ctx context.Context, s *Session, input string) *RespondResult {
	log := logger.WithSession(e.logger, s.ID, s.Role, s.Difficulty)

	answered := e.answerMillis(s)
	s.Transcript = append(s.Transcript, stamped(SpeakerCandidate, input, answered))

	assessment, err := e.generator.GenerateContent(ctx, evaluatorPersona, input)
	if err != nil {
		e.warnFallback(log, personaEvaluator, "assessment", err)
		assessment = ""
	}

	reply, err := e.generator.GenerateContent(ctx, interviewerPersona(s), replyMessage(assessment, input))
	if err != nil || strings.TrimSpace(reply) == "" {
		e.warnFallback(log, personaInterviewer, "reply", err)
		reply = probeFallback
	}
	s.Transcript = append(s.Transcript, stamped(SpeakerInterviewer, reply, answered))

	s.CurrentQuestionIndex++
	if s.CurrentQuestionIndex < len(s.Questions) {
		log.Debug("turn completed", zap.Int("question_index", s.CurrentQuestionIndex))
		return &RespondResult{Message: reply, Status: StatusActive}
	}

	s.Status = StatusCompleted

	summary, err := e.generator.GenerateContent(ctx, evaluatorPersona, summaryMessage(s))
	if err != nil || strings.TrimSpace(summary) == "" {
		e.warnFallback(log, personaEvaluator, "summary", err)
		summary = summaryFallback
	}

	log.Info("interview completed", zap.Int("turns", len(s.Transcript)))

	return &RespondResult{
		Message:        reply,
		Status:         StatusCompleted,
		Final:          true,
		ClosingMessage: ClosingMessage,
		Summary:        summary,
	}
}

// End forces the session into the completed state. Scoring is not run here;
// clients call the analysis endpoint with the transcript instead.
func (e *Engine) End(ctx context.Context, id string) (*EndResult, error) {
	_, err := e.store.Update(ctx, id, func(s *Session) error {
		if s.Completed() {
			return ErrNoChange
		}
		s.Status = StatusCompleted
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("end session %s: %w", id, err)
	}

	e.logger.Info("interview ended", zap.String(logger.FieldSessionID, id))

	return &EndResult{Message: EndedMessage, Summary: map[string]any{}}, nil
}

// Session returns a snapshot of the session.
func (e *Engine) Session(ctx context.Context, id string) (*Session, error) {
	s, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return s, nil
}

func (e *Engine) generateQuestions(ctx context.Context, log *zap.Logger, s *Session) []string {
	raw, err := e.generator.GenerateContent(ctx, interviewerPersona(s), questionsMessage(s))
	if err != nil {
		e.warnFallback(log, personaInterviewer, "questions", err)
		return FallbackQuestions()
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		e.warnFallback(log, personaInterviewer, "questions", err)
		return FallbackQuestions()
	}

	return questions
}

func (e *Engine) turn(speaker Speaker, content string) Turn {
	return stamped(speaker, content, e.now().UnixMilli())
}

func stamped(speaker Speaker, content string, ts int64) Turn {
	return Turn{Speaker: speaker, Content: content, TimestampMillis: &ts}
}

// answerMillis places a candidate answer on the transcript clock. Generation
// time is left out of that clock: a reply carries the timestamp of the answer
// it follows, and the next answer lands after it by the time the candidate
// spent since the reply was stored (s.UpdatedAt).
func (e *Engine) answerMillis(s *Session) int64 {
	now := e.now()

	var last *int64
	if n := len(s.Transcript); n > 0 {
		last = s.Transcript[n-1].TimestampMillis
	}
	if last == nil || s.UpdatedAt.IsZero() {
		return now.UnixMilli()
	}

	return *last + max(now.Sub(s.UpdatedAt).Milliseconds(), 0)
}

func (e *Engine) warnFallback(log *zap.Logger, persona, step string, err error) {
	if err == nil {
		err = errEmptyReply
	}
	log.Warn("generative call failed, using fallback",
		zap.String(logger.FieldPersona, persona),
		zap.String("call", step),
		zap.Error(err),
	)
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
)

// Interviewer is the part of interview.Engine the HTTP surface needs.
type Interviewer interface {
	Start(ctx context.Context, req interview.StartRequest) (*interview.StartResult, error)
	Respond(ctx context.Context, id, input string) (*interview.RespondResult, error)
	End(ctx context.Context, id string) (*interview.EndResult, error)
	Session(ctx context.Context, id string) (*interview.Session, error)
}

type startRequest struct {
	UserName    string   `json:"userName"`
	UserID      string   `json:"userId"`
	InterviewID string   `json:"interviewId"`
	Difficulty  string   `json:"difficulty"`
	Duration    int      `json:"duration"`
	Role        string   `json:"role"`
	Questions   []string `json:"questions"`
}

type respondRequest struct {
	SessionID string `json:"sessionId"`
	UserInput string `json:"userInput"`
}

type endRequest struct {
	SessionID string `json:"session_id"`
}

// InterviewHandler serves the interview lifecycle endpoints.
type InterviewHandler struct {
	engine Interviewer
	logger *zap.Logger
}

func NewInterviewHandler(engine Interviewer, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{engine: engine, logger: logger}
}

// Start handles POST /interview/start
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Duration < 0 {
		writeError(w, http.StatusBadRequest, "duration must not be negative")
		return
	}

	res, err := h.engine.Start(r.Context(), interview.StartRequest{
		CandidateName:   req.UserName,
		CandidateID:     req.UserID,
		InterviewRef:    req.InterviewID,
		Role:            req.Role,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.Duration,
		Questions:       req.Questions,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Respond handles POST /interview/respond
func (h *InterviewHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	res, err := h.engine.Respond(r.Context(), req.SessionID, req.UserInput)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// End handles POST /interview/end. The id comes from the body or the session_id query parameter.
func (h *InterviewHandler) End(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.URL.Query().Get("session_id")
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	res, err := h.engine.End(r.Context(), req.SessionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Get handles GET /interview/{id}
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

func (h *InterviewHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, interview.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	h.logger.Error("interview request failed",
		zap.String("request_id", GetRequestID(r)),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

package api

import (
	"net/http"

	"github.com/spigell/hh-interviewer/internal/analysis"
)

// Analyzer scores transcripts.
type Analyzer interface {
	Analyze(req analysis.Request) analysis.Report
	ModelLoaded() bool
}

type AnalyzeHandler struct {
	analyzer Analyzer
}

func NewAnalyzeHandler(analyzer Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

// Analyze handles POST /analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.analyzer.Analyze(req))
}

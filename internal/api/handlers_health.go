package api

import (
	"net/http"
)

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Generator   string `json:"generator"`
}

type HealthHandler struct {
	analyzer  Analyzer
	generator string
}

func NewHealthHandler(analyzer Analyzer, generator string) *HealthHandler {
	return &HealthHandler{analyzer: analyzer, generator: generator}
}

// Health reports readiness. A missing model or generator degrades scoring and
// replies to fallbacks but does not make the service unavailable.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		ModelLoaded: h.analyzer.ModelLoaded(),
		Generator:   h.generator,
	}
	if !resp.ModelLoaded || h.generator == "" {
		resp.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, resp)
}

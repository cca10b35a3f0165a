// Package analysis turns interview transcripts into a preparedness report:
// feature extraction, regression scoring and rule-based feedback.
package analysis

import (
	"go.uber.org/zap"
)

// Request is the input of one analysis call.
type Request struct {
	Transcript []Message `json:"transcript"`
	Difficulty string    `json:"difficulty"`
	Role       string    `json:"role"`
}

// Analyzer runs the Extractor and the Scorer in sequence.
type Analyzer struct {
	extractor *Extractor
	scorer    *Scorer
	logger    *zap.Logger
}

// NewAnalyzer wires an extractor and a scorer together.
func NewAnalyzer(extractor *Extractor, scorer *Scorer, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{extractor: extractor, scorer: scorer, logger: logger}
}

// Analyze scores req. Difficulty is carried for logging only.
func (a *Analyzer) Analyze(req Request) Report {
	features := a.extractor.Extract(req.Transcript, req.Role)
	report := a.scorer.Score(features)

	a.logger.Debug("transcript analyzed",
		zap.String("role", req.Role),
		zap.String("difficulty", req.Difficulty),
		zap.Int("messages", len(req.Transcript)),
		zap.Float64s("features", features.Vector()),
		zap.Int("score", report.PreparednessScore),
	)

	return report
}

// ModelLoaded reports whether scoring is backed by a regression model.
func (a *Analyzer) ModelLoaded() bool {
	return a.scorer != nil && a.scorer.model != nil
}

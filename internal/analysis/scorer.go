package analysis

import (
	"math"

	"go.uber.org/zap"
)

// FallbackScore is reported when the regression model cannot produce a usable value.
const FallbackScore = 70

const (
	strongKeywordDensity = 0.05
	lowFillerRatio       = 0.02
	frequentPauses       = 3
	inconsistentVariance = 50
)

const (
	strengthKeywords     = "High density of relevant technical keywords"
	strengthLowFiller    = "Clear and concise communication with minimal fillers"
	weaknessPauses       = "Frequent long pauses during responses"
	weaknessInconsistent = "Inconsistent answer lengths"

	fallbackStrength = "General competence shown"
	fallbackWeakness = "No major red flags identified"
)

// ImprovementAreas is reported verbatim for every transcript.
var ImprovementAreas = []string{
	"Work on reducing filler words to sound more professional",
	"Try to maintain a consistent pace and avoid long silences",
	"Incorporate more specific technical terminology in your answers",
}

// Predictor is a regression model over the feature vector.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// Report is the preparedness assessment of one transcript.
type Report struct {
	PreparednessScore     int      `json:"preparedness_score"`
	Strengths             []string `json:"strengths"`
	Weaknesses            []string `json:"weaknesses"`
	ImprovementAreas      []string `json:"improvement_areas"`
	TechnicalKeywordUsage float64  `json:"technical_keyword_usage"`
	FillerWordRatio       float64  `json:"filler_word_ratio"`
}

// Scorer turns Features into a Report.
type Scorer struct {
	model  Predictor
	logger *zap.Logger
}

// NewScorer creates a Scorer. model may be nil, in which case every score is FallbackScore.
func NewScorer(model Predictor, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if b, ok := model.(*Booster); ok && b == nil {
		model = nil
	}
	return &Scorer{model: model, logger: logger}
}

// Score never fails: model errors degrade to FallbackScore.
func (s *Scorer) Score(f Features) Report {
	return Report{
		PreparednessScore:     s.predict(f),
		Strengths:             strengths(f),
		Weaknesses:            weaknesses(f),
		ImprovementAreas:      append([]string(nil), ImprovementAreas...),
		TechnicalKeywordUsage: f.KeywordDensity,
		FillerWordRatio:       f.FillerRatio,
	}
}

func (s *Scorer) predict(f Features) int {
	if s.model == nil {
		s.logger.Warn("prediction skipped", zap.Error(ErrModelNotLoaded), zap.Int("score", FallbackScore))
		return FallbackScore
	}

	raw, err := s.model.Predict(f.Vector())
	if err != nil {
		s.logger.Warn("prediction failed", zap.Error(err), zap.Int("score", FallbackScore))
		return FallbackScore
	}

	if math.IsNaN(raw) {
		s.logger.Warn("prediction is not a number", zap.Int("score", FallbackScore))
		return FallbackScore
	}

	return ClampScore(raw)
}

// ClampScore truncates raw toward zero and clamps it to [0, 100]. Infinities
// saturate; NaN maps to FallbackScore.
func ClampScore(raw float64) int {
	switch {
	case math.IsNaN(raw):
		return FallbackScore
	case raw >= 100:
		return 100
	case raw <= 0:
		return 0
	default:
		return int(math.Trunc(raw))
	}
}

func strengths(f Features) []string {
	var out []string
	if f.KeywordDensity > strongKeywordDensity {
		out = append(out, strengthKeywords)
	}
	if f.FillerRatio < lowFillerRatio {
		out = append(out, strengthLowFiller)
	}
	if len(out) == 0 {
		out = []string{fallbackStrength}
	}
	return out
}

func weaknesses(f Features) []string {
	var out []string
	if f.LongPauseCount > frequentPauses {
		out = append(out, weaknessPauses)
	}
	if f.AnsLengthVariance > inconsistentVariance {
		out = append(out, weaknessInconsistent)
	}
	if len(out) == 0 {
		out = []string{fallbackWeakness}
	}
	return out
}

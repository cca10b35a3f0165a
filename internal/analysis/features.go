package analysis

import (
	"strings"
)

const (
	// RoleUser marks candidate messages in analysis transcripts.
	RoleUser = "user"
	// RoleAssistant marks interviewer messages in analysis transcripts.
	RoleAssistant = "assistant"

	roleCandidate = "candidate"

	longPauseSeconds = 1.5
)

// FeatureNames is the order the regression model expects its inputs in.
var FeatureNames = []string{
	"filler_ratio",
	"long_pause_count",
	"avg_sentence_length",
	"ans_length_variance",
	"keyword_density",
}

var fillerWords = map[string]struct{}{
	"um":        {},
	"ah":        {},
	"uh":        {},
	"like":      {},
	"actually":  {},
	"basically": {},
	"literally": {},
	"you know":  {},
}

// Message is one transcript entry. Timestamp is in milliseconds.
type Message struct {
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Timestamp *float64 `json:"timestamp,omitempty"`
}

func (m Message) fromCandidate() bool {
	return m.Role == RoleUser || m.Role == roleCandidate
}

// Features is the feature vector computed from one transcript.
type Features struct {
	FillerRatio       float64 `json:"filler_ratio"`
	LongPauseCount    float64 `json:"long_pause_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AnsLengthVariance float64 `json:"ans_length_variance"`
	KeywordDensity    float64 `json:"keyword_density"`
}

// Vector returns the features in FeatureNames order.
func (f Features) Vector() []float64 {
	return []float64{
		f.FillerRatio,
		f.LongPauseCount,
		f.AvgSentenceLength,
		f.AnsLengthVariance,
		f.KeywordDensity,
	}
}

// Extractor computes Features from transcripts. It holds no mutable state.
type Extractor struct {
	keywords *Keywords
}

// NewExtractor creates an Extractor using kw, or the built-in table when kw is nil.
func NewExtractor(kw *Keywords) *Extractor {
	if kw == nil {
		kw = DefaultKeywords()
	}
	return &Extractor{keywords: kw}
}

// Extract computes the feature vector for transcript. A transcript without
// candidate messages yields all-zero features.
func (e *Extractor) Extract(transcript []Message, role string) Features {
	var lengths []float64
	var tokens []string

	for _, m := range transcript {
		if !m.fromCandidate() {
			continue
		}
		words := strings.Fields(strings.ToLower(m.Content))
		lengths = append(lengths, float64(len(words)))
		tokens = append(tokens, words...)
	}

	if len(lengths) == 0 {
		return Features{}
	}

	mean, variance := meanVariance(lengths)

	return Features{
		FillerRatio:       ratio(countFillers(tokens), len(tokens)),
		LongPauseCount:    float64(countLongPauses(transcript)),
		AvgSentenceLength: mean,
		AnsLengthVariance: variance,
		KeywordDensity:    ratio(countKeywords(tokens, e.keywords.For(role)), len(tokens)),
	}
}

func countFillers(tokens []string) int {
	n := 0
	for _, t := range tokens {
		if _, ok := fillerWords[t]; ok {
			n++
		}
	}
	return n
}

func countKeywords(tokens, keywords []string) int {
	n := 0
	for _, t := range tokens {
		for _, kw := range keywords {
			if strings.Contains(t, kw) {
				n++
				break
			}
		}
	}
	return n
}

// countLongPauses walks every adjacent pair of the whole transcript, both speakers included.
func countLongPauses(transcript []Message) int {
	n := 0
	for i := 1; i < len(transcript); i++ {
		prev, curr := transcript[i-1].Timestamp, transcript[i].Timestamp
		if prev == nil || curr == nil {
			continue
		}
		if (*curr-*prev)/1000 > longPauseSeconds {
			n++
		}
	}
	return n
}

// meanVariance returns the mean and population variance of values.
func meanVariance(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	return mean, sq / float64(len(values))
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

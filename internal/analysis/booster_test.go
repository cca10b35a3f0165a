package analysis

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func loadTestBooster(t *testing.T) *Booster {
	t.Helper()

	b, err := LoadBooster(filepath.Join("testdata", "model.json"))
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	return b
}

func TestBoosterPredict(t *testing.T) {
	b := loadTestBooster(t)
	if b.Trees() != 2 {
		t.Fatalf("expected 2 trees, got %d", b.Trees())
	}

	tests := map[string]struct {
		features []float64
		want     float64
	}{
		"dense keywords":         {features: []float64{0, 0, 0, 0, 0.1}, want: 75},
		"many pauses":            {features: []float64{0, 5, 0, 0, 0}, want: 25},
		"split value goes right": {features: []float64{0, 3.5, 0, 0, 0.05}, want: 55},
		"missing goes default":   {features: []float64{0, 0, 0, 0, math.NaN()}, want: 45},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := b.Predict(tt.features)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBoosterComparesInFloat32(t *testing.T) {
	// 5.00000007E-2 is float32(0.05) as XGBoost prints it.
	model := `{"learner":{"learner_model_param":{"base_score":"0","num_feature":"5"},
		"gradient_booster":{"name":"gbtree","model":{"trees":[
			{"left_children":[1,-1,-1],"right_children":[2,-1,-1],"split_indices":[4,0,0],
			 "split_conditions":[5.00000007E-2,-10,20],"default_left":[0,0,0]}
		]}},"objective":{"name":"reg:squarederror"}}}`

	b, err := ParseBooster(strings.NewReader(model))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]struct {
		density float64
		want    float64
	}{
		"one keyword in twenty tokens": {density: 1.0 / 20, want: 20},
		"just below in float64":        {density: 0.0499999999, want: 20},
		"clearly below":                {density: 0.04, want: -10},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := b.Predict([]float64{0, 0, 0, 0, tt.density})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBoosterPredictShortVector(t *testing.T) {
	if _, err := loadTestBooster(t).Predict([]float64{1, 2}); err == nil {
		t.Fatal("expected error for short feature vector")
	}
}

func TestNilBoosterPredict(t *testing.T) {
	var b *Booster
	if _, err := b.Predict(make([]float64, 5)); !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("expected ErrModelNotLoaded, got %v", err)
	}
}

func TestParseBoosterBracketedBaseScore(t *testing.T) {
	model := `{"learner":{"learner_model_param":{"base_score":"[1E1]","num_feature":"1"},
		"gradient_booster":{"name":"gbtree","model":{"trees":[
			{"left_children":[-1],"right_children":[-1],"split_indices":[0],"split_conditions":[2.5],"default_left":[false]}
		]}},"objective":{"name":"reg:squarederror"}}}`

	b, err := ParseBooster(strings.NewReader(model))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := b.Predict([]float64{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
}

func TestParseBoosterRejectsInvalidModels(t *testing.T) {
	tests := map[string]string{
		"not json":        `{`,
		"no trees":        `{"learner":{"gradient_booster":{"name":"gbtree","model":{"trees":[]}}}}`,
		"linear":          `{"learner":{"gradient_booster":{"name":"gblinear"}}}`,
		"logistic":        `{"learner":{"objective":{"name":"binary:logistic"},"gradient_booster":{"model":{"trees":[{"left_children":[-1],"right_children":[-1],"split_indices":[0],"split_conditions":[1]}]}}}}`,
		"length mismatch": `{"learner":{"gradient_booster":{"model":{"trees":[{"left_children":[1,-1],"right_children":[-1],"split_indices":[0],"split_conditions":[1]}]}}}}`,
		"cycle":           `{"learner":{"gradient_booster":{"model":{"trees":[{"left_children":[0],"right_children":[0],"split_indices":[0],"split_conditions":[1]}]}}}}`,
		"bad base":        `{"learner":{"learner_model_param":{"base_score":"abc"},"gradient_booster":{"model":{"trees":[{"left_children":[-1],"right_children":[-1],"split_indices":[0],"split_conditions":[1]}]}}}}`,
	}

	for name, model := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseBooster(strings.NewReader(model)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadBoosterMissingFile(t *testing.T) {
	if _, err := LoadBooster(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing model")
	}
}

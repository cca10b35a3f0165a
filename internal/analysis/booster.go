package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrModelNotLoaded is returned by a nil Booster.
var ErrModelNotLoaded = errors.New("regression model is not loaded")

var identityObjectives = map[string]struct{}{
	"reg:squarederror":     {},
	"reg:linear":           {},
	"reg:absoluteerror":    {},
	"reg:pseudohubererror": {},
}

// Booster evaluates a gradient-boosted tree ensemble saved in the XGBoost JSON format.
// Thresholds, leaves and the running sum are float32, as in XGBoost itself.
type Booster struct {
	baseScore  float32
	numFeature int
	trees      []tree
}

type tree struct {
	left        []int
	right       []int
	splitIndex  []int
	splitValue  []float32
	defaultLeft []bool
}

type rawModel struct {
	Learner struct {
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees []rawTree `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
}

type rawTree struct {
	LeftChildren    []int     `json:"left_children"`
	RightChildren   []int     `json:"right_children"`
	SplitIndices    []int     `json:"split_indices"`
	SplitConditions []float32 `json:"split_conditions"`
	DefaultLeft     []bool    `json:"default_left"`
}

// LoadBooster reads a model artifact from path.
func LoadBooster(path string) (*Booster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	return ParseBooster(f)
}

// ParseBooster decodes an XGBoost JSON model. Numeric fields that XGBoost
// writes as strings and 0/1 flags are accepted through weak typing.
func ParseBooster(r io.Reader) (*Booster, error) {
	var generic map[string]any
	if err := json.NewDecoder(r).Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode model json: %w", err)
	}

	var raw rawModel
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create model decoder: %w", err)
	}
	if err := decoder.Decode(generic); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	learner := raw.Learner
	if name := learner.GradientBooster.Name; name != "" && name != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q", name)
	}
	if name := learner.Objective.Name; name != "" {
		if _, ok := identityObjectives[name]; !ok {
			return nil, fmt.Errorf("unsupported objective %q", name)
		}
	}

	baseScore, err := parseModelFloat(learner.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, fmt.Errorf("parse base_score: %w", err)
	}

	numFeature := 0
	if s := strings.TrimSpace(learner.LearnerModelParam.NumFeature); s != "" {
		if numFeature, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("parse num_feature: %w", err)
		}
	}

	rawTrees := learner.GradientBooster.Model.Trees
	if len(rawTrees) == 0 {
		return nil, errors.New("model has no trees")
	}

	trees := make([]tree, 0, len(rawTrees))
	for i, rt := range rawTrees {
		t, err := buildTree(rt)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, t)
	}

	return &Booster{baseScore: baseScore, numFeature: numFeature, trees: trees}, nil
}

// XGBoost 2.x stores base_score as a bracketed vector, e.g. "[5E-1]".
func parseModelFloat(s string) (float32, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func buildTree(rt rawTree) (tree, error) {
	n := len(rt.LeftChildren)
	if n == 0 {
		return tree{}, errors.New("empty tree")
	}
	if len(rt.RightChildren) != n || len(rt.SplitIndices) != n || len(rt.SplitConditions) != n {
		return tree{}, errors.New("node arrays have different lengths")
	}

	defaultLeft := rt.DefaultLeft
	if len(defaultLeft) == 0 {
		defaultLeft = make([]bool, n)
	}
	if len(defaultLeft) != n {
		return tree{}, errors.New("default_left length mismatch")
	}

	// Children always follow their parent, which also rules out cycles.
	for i := 0; i < n; i++ {
		l, r := rt.LeftChildren[i], rt.RightChildren[i]
		if l == -1 && r == -1 {
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return tree{}, fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if rt.SplitIndices[i] < 0 {
			return tree{}, fmt.Errorf("node %d has negative split index", i)
		}
	}

	return tree{
		left:        rt.LeftChildren,
		right:       rt.RightChildren,
		splitIndex:  rt.SplitIndices,
		splitValue:  rt.SplitConditions,
		defaultLeft: defaultLeft,
	}, nil
}

// Predict returns the raw model output for one feature row.
func (b *Booster) Predict(features []float64) (float64, error) {
	if b == nil {
		return 0, ErrModelNotLoaded
	}
	if len(features) < b.numFeature {
		return 0, fmt.Errorf("expected %d features, got %d", b.numFeature, len(features))
	}

	sum := b.baseScore
	for _, t := range b.trees {
		sum += t.eval(features)
	}

	return float64(sum), nil
}

// Trees returns the number of trees in the ensemble.
func (b *Booster) Trees() int {
	if b == nil {
		return 0
	}
	return len(b.trees)
}

// Features are narrowed to float32 before the comparison, so a value that
// rounds onto a stored threshold goes right.
func (t tree) eval(features []float64) float32 {
	node := 0
	for t.left[node] != -1 {
		value := float32(math.NaN())
		if idx := t.splitIndex[node]; idx < len(features) {
			value = float32(features[idx])
		}

		switch {
		case math.IsNaN(float64(value)):
			if t.defaultLeft[node] {
				node = t.left[node]
			} else {
				node = t.right[node]
			}
		case value < t.splitValue[node]:
			node = t.left[node]
		default:
			node = t.right[node]
		}
	}

	return t.splitValue[node]
}

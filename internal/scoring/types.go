package scoring

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Canonical prediction labels.
const (
	LabelFraud    = "Fraud"
	LabelNonFraud = "Non-Fraud"
)

// Prediction is the model verdict for one address.
type Prediction struct {
	Address          string  `json:"address"`
	Label            string  `json:"prediction"`        // LabelFraud, LabelNonFraud or the raw status
	ProbabilityFraud float64 `json:"probability_fraud"` // 0..1
	Confidence       float64 `json:"confidence"`        // confidence in Label, 0..1
	Percent          float64 `json:"percent"`           // as reported, else ProbabilityFraud*100
}

// IsFraud reports whether the model flagged the address.
func (p *Prediction) IsFraud() bool {
	return p != nil && p.Label == LabelFraud
}

// Explanation is the model's account of a prediction.
type Explanation struct {
	Summary           string             `json:"explanation,omitempty"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
}

// Assessment combines a prediction and its explanation.
type Assessment struct {
	Prediction  *Prediction
	Explanation *Explanation
}

// Factor is one feature's contribution to a prediction.
type Factor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// TopFactors returns up to n factors ordered by absolute weight, strongest
// first. Equal magnitudes are ordered by name.
func TopFactors(importance map[string]float64, n int) []Factor {
	if n <= 0 || len(importance) == 0 {
		return nil
	}
	factors := make([]Factor, 0, len(importance))
	for name, w := range importance {
		factors = append(factors, Factor{Name: name, Weight: w})
	}
	sort.Slice(factors, func(i, j int) bool {
		ai, aj := math.Abs(factors[i].Weight), math.Abs(factors[j].Weight)
		if ai != aj {
			return ai > aj
		}
		return factors[i].Name < factors[j].Name
	})
	if len(factors) > n {
		factors = factors[:n]
	}
	return factors
}

// Level is a coarse risk bucket for display.
type Level string

const (
	LevelHigh         Level = "high"
	LevelMedium       Level = "medium"
	LevelSafe         Level = "safe"
	LevelUndetermined Level = "undetermined"
)

// RiskLevel maps a prediction label or wallet status to a Level.
func RiskLevel(label string) Level {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "high", "fraud":
		return LevelHigh
	case "medium":
		return LevelMedium
	case "safe", "non-fraud":
		return LevelSafe
	default:
		return LevelUndetermined
	}
}

// analyzeResponse accepts every response shape the scoring API has used:
// a prediction string or numeric class with probability_fraud, or a
// status/percent/confidence_score triple.
type analyzeResponse struct {
	Address          string          `json:"address"`
	Prediction       json.RawMessage `json:"prediction"`
	ProbabilityFraud *float64        `json:"probability_fraud"`
	Confidence       *float64        `json:"confidence"`
	Status           string          `json:"status"`
	Percent          *float64        `json:"percent"`
	ConfidenceScore  *float64        `json:"confidence_score"`
}

func (r *analyzeResponse) toPrediction(address string) *Prediction {
	p := &Prediction{Address: r.Address}
	if p.Address == "" {
		p.Address = address
	}

	p.Label = predictionLabel(r.Prediction)
	if p.Label == "" {
		p.Label = normalizeLabel(r.Status)
	}

	confidence, hasConfidence := firstOf(r.ConfidenceScore, r.Confidence)
	if !hasConfidence && r.Percent != nil {
		confidence, hasConfidence = *r.Percent/100, true
	}
	p.Confidence = clamp01(confidence)

	switch {
	case r.ProbabilityFraud != nil:
		p.ProbabilityFraud = clamp01(*r.ProbabilityFraud)
	case hasConfidence && p.Label == LabelFraud:
		p.ProbabilityFraud = p.Confidence
	case hasConfidence && p.Label == LabelNonFraud:
		p.ProbabilityFraud = 1 - p.Confidence
	}
	if !hasConfidence && r.ProbabilityFraud != nil {
		p.Confidence = p.ProbabilityFraud
		if p.Label == LabelNonFraud {
			p.Confidence = 1 - p.ProbabilityFraud
		}
	}

	if r.Percent != nil {
		p.Percent = *r.Percent
	} else {
		p.Percent = p.ProbabilityFraud * 100
	}
	return p
}

// predictionLabel decodes a string label or a numeric class (1 = fraud).
func predictionLabel(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return normalizeLabel(s)
	}
	if n, err := strconv.ParseFloat(string(raw), 64); err == nil {
		if n >= 1 {
			return LabelFraud
		}
		return LabelNonFraud
	}
	return ""
}

func normalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "fraud", "1", "true":
		return LabelFraud
	case "non-fraud", "non_fraud", "nonfraud", "not fraud", "0", "false":
		return LabelNonFraud
	}
	return s
}

// explainResponse accepts explanation as free text or as [name, weight] pairs.
type explainResponse struct {
	Explanation       json.RawMessage    `json:"explanation"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

func (r *explainResponse) toExplanation() *Explanation {
	e := &Explanation{FeatureImportance: r.FeatureImportance}

	raw := bytes.TrimSpace(r.Explanation)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return e
	}

	var summary string
	if err := json.Unmarshal(raw, &summary); err == nil {
		e.Summary = summary
		return e
	}

	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return e
	}
	if e.FeatureImportance == nil {
		e.FeatureImportance = make(map[string]float64, len(pairs))
	}
	for _, pair := range pairs {
		var name string
		var weight float64
		if json.Unmarshal(pair[0], &name) != nil || json.Unmarshal(pair[1], &weight) != nil {
			continue
		}
		if _, ok := e.FeatureImportance[name]; !ok {
			e.FeatureImportance[name] = weight
		}
	}
	return e
}

// errorResponse is the FastAPI error body; detail is a string or a list.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

func (r *errorResponse) message() string {
	raw := bytes.TrimSpace(r.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func firstOf(values ...*float64) (float64, bool) {
	for _, v := range values {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

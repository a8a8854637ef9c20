// Package ml owns the trained scoring strategy: estimator families, the
// training pipeline, driver attribution, and the lifecycle manager that
// hot-swaps the active model.
package ml

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	"github.com/cardiometrix/riskd/internal/risk"
)

// Estimator family tags, recorded in metadata as model_type.
const (
	FamilyLogistic = "logistic_regression"
	FamilyBoosting = "gradient_boosting"
)

// Predictor is a fitted binary-risk model. Concrete predictors additionally
// implement one or more of the capability interfaces below; which ones is a
// property of the family, fixed at build time, never probed per call.
type Predictor interface {
	ModelType() string
}

// ProbabilityScorer yields a calibrated probability directly.
type ProbabilityScorer interface {
	PredictProba(x []float64) float64
}

// MarginScorer yields a raw decision score in log-odds space.
type MarginScorer interface {
	DecisionScore(x []float64) float64
}

// HardScorer yields only a class prediction.
type HardScorer interface {
	Predict(x []float64) float64
}

// LinearAttributor exposes per-feature linear coefficients.
type LinearAttributor interface {
	Coefficients() []float64
}

// ImportanceAttributor exposes per-feature importances.
type ImportanceAttributor interface {
	FeatureImportances() []float64
}

func init() {
	gob.Register(&LogisticModel{})
	gob.Register(&GradientBoostModel{})
}

// Trainable is a predictor that can be fitted from labeled rows.
type Trainable interface {
	Predictor
	Fit(x [][]float64, y []int)
}

// NewEstimator returns an unfitted predictor of the configured family.
func NewEstimator(family string) (Trainable, error) {
	switch family {
	case FamilyLogistic:
		return &LogisticModel{}, nil
	case FamilyBoosting:
		return &GradientBoostModel{}, nil
	default:
		return nil, fmt.Errorf("unknown estimator family %q", family)
	}
}

// Probability resolves a predictor's risk probability for one vector, in
// capability priority order: native probability, then sigmoid of the margin,
// then the hard prediction clipped into [0, 1].
func Probability(p Predictor, x []float64) (float64, error) {
	switch m := p.(type) {
	case ProbabilityScorer:
		return m.PredictProba(x), nil
	case MarginScorer:
		return sigmoid(m.DecisionScore(x)), nil
	case HardScorer:
		return risk.Clip(m.Predict(x), 0, 1), nil
	}
	return 0, fmt.Errorf("predictor %q exposes no scoring interface", p.ModelType())
}

// ContributionSource returns the per-feature weights attribution multiplies
// against the centered vector: linear coefficients when the model is linear,
// importances for tree ensembles, neither for opaque predictors.
func ContributionSource(p Predictor) ([]float64, bool) {
	switch m := p.(type) {
	case LinearAttributor:
		return m.Coefficients(), true
	case ImportanceAttributor:
		return m.FeatureImportances(), true
	}
	return nil, false
}

func sigmoid(v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}

type predictorEnvelope struct {
	Model Predictor
}

// EncodePredictor serializes a fitted predictor to the binary blob format
// the artifact store persists.
func EncodePredictor(p Predictor) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&predictorEnvelope{Model: p}); err != nil {
		return nil, fmt.Errorf("encode predictor: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePredictor restores a predictor from a persisted blob.
func DecodePredictor(blob []byte) (Predictor, error) {
	var env predictorEnvelope
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode predictor: %w", err)
	}
	if env.Model == nil {
		return nil, fmt.Errorf("decode predictor: empty envelope")
	}
	return env.Model, nil
}

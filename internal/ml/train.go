package ml

import (
	"errors"
	"math/rand"

	"github.com/cardiometrix/riskd/internal/risk"
)

const (
	// datasets below this size are evaluated on their own training rows;
	// the optimistic bias is accepted for small datasets
	holdoutMinRows  = 20
	holdoutFraction = 0.2
	splitSeed       = 42
)

// ValidationError marks caller mistakes (bad labels, malformed input) that
// map to a client error and never mutate state.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(msg string) error { return &ValidationError{msg: msg} }

// IsValidationError reports whether err is a caller-input failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TrainRow is one labeled example. The continuous label is thresholded at
// 0.5 into a binary class before fitting.
type TrainRow struct {
	Features *risk.Features
	Label    float64
}

func buildDataset(rows []TrainRow) ([][]float64, []int) {
	x := make([][]float64, len(rows))
	y := make([]int, len(rows))
	for i, row := range rows {
		x[i] = row.Features.Vector()
		if row.Label >= 0.5 {
			y[i] = 1
		}
	}
	return x, y
}

func classCount(y []int) (pos, neg int) {
	for _, label := range y {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	return pos, neg
}

// splitDataset holds out a stratified evaluation fraction when the dataset is
// large enough and both classes are present; otherwise the model is evaluated
// on the rows it was fitted to. The shuffle is seeded, so retraining on the
// same rows reproduces the same split.
func splitDataset(x [][]float64, y []int) (trainX, evalX [][]float64, trainY, evalY []int) {
	pos, neg := classCount(y)
	if len(y) < holdoutMinRows || pos == 0 || neg == 0 {
		return x, x, y, y
	}

	rng := rand.New(rand.NewSource(splitSeed))
	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	for _, label := range []int{0, 1} {
		indices := byClass[label]
		rng.Shuffle(len(indices), func(a, b int) {
			indices[a], indices[b] = indices[b], indices[a]
		})
		nEval := int(float64(len(indices)) * holdoutFraction)
		if nEval < 1 {
			nEval = 1
		}
		for k, i := range indices {
			if k < nEval {
				evalX = append(evalX, x[i])
				evalY = append(evalY, y[i])
			} else {
				trainX = append(trainX, x[i])
				trainY = append(trainY, y[i])
			}
		}
	}
	return trainX, evalX, trainY, evalY
}

func featureMeans(x [][]float64) []float64 {
	means := make([]float64, len(risk.FeatureNames))
	if len(x) == 0 {
		return means
	}
	for _, row := range x {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(x))
	}
	return means
}

func evaluate(p Predictor, evalX [][]float64, evalY []int) (auc, logloss *float64) {
	probs := make([]float64, len(evalX))
	for i, row := range evalX {
		prob, err := Probability(p, row)
		if err != nil {
			return nil, nil
		}
		probs[i] = prob
	}
	return SafeAUC(evalY, probs), SafeLogLoss(evalY, probs)
}

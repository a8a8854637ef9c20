package ml

import "math"

const (
	logisticMaxIter   = 1000
	logisticLearnRate = 0.1
	logisticTolerance = 1e-6
)

// LogisticModel is a binary logistic regression fitted by full-batch gradient
// descent. Training standardizes features internally and folds the scaling
// back into the stored weights, so Weights and Bias apply to raw vectors and
// Coefficients line up with the raw feature layout for attribution.
type LogisticModel struct {
	Weights []float64
	Bias    float64
}

func (m *LogisticModel) ModelType() string { return FamilyLogistic }

func (m *LogisticModel) DecisionScore(x []float64) float64 {
	score := m.Bias
	for i, w := range m.Weights {
		score += w * x[i]
	}
	return score
}

func (m *LogisticModel) PredictProba(x []float64) float64 {
	return sigmoid(m.DecisionScore(x))
}

func (m *LogisticModel) Coefficients() []float64 { return m.Weights }

// Fit runs deterministic gradient descent on standardized features, at most
// logisticMaxIter iterations, stopping early once the gradient norm falls
// below tolerance. Zero initialization keeps the fit fully reproducible.
func (m *LogisticModel) Fit(x [][]float64, y []int) {
	n := len(x)
	d := len(x[0])

	means := make([]float64, d)
	stds := make([]float64, d)
	for j := 0; j < d; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += x[i][j]
		}
		means[j] = sum / float64(n)
		var ss float64
		for i := 0; i < n; i++ {
			diff := x[i][j] - means[j]
			ss += diff * diff
		}
		stds[j] = math.Sqrt(ss / float64(n))
		if stds[j] == 0 {
			stds[j] = 1 // constant feature, leave it centered at zero
		}
	}

	scaled := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, d)
		for j := 0; j < d; j++ {
			row[j] = (x[i][j] - means[j]) / stds[j]
		}
		scaled[i] = row
	}

	weights := make([]float64, d)
	bias := 0.0
	grad := make([]float64, d)

	for iter := 0; iter < logisticMaxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0

		for i := 0; i < n; i++ {
			score := bias
			for j := 0; j < d; j++ {
				score += weights[j] * scaled[i][j]
			}
			residual := sigmoid(score) - float64(y[i])
			for j := 0; j < d; j++ {
				grad[j] += residual * scaled[i][j]
			}
			gradBias += residual
		}

		norm := gradBias * gradBias
		for j := 0; j < d; j++ {
			norm += grad[j] * grad[j]
		}
		if math.Sqrt(norm)/float64(n) < logisticTolerance {
			break
		}

		for j := 0; j < d; j++ {
			weights[j] -= logisticLearnRate * grad[j] / float64(n)
		}
		bias -= logisticLearnRate * gradBias / float64(n)
	}

	// fold standardization back into raw-space weights
	m.Weights = make([]float64, d)
	m.Bias = bias
	for j := 0; j < d; j++ {
		m.Weights[j] = weights[j] / stds[j]
		m.Bias -= weights[j] * means[j] / stds[j]
	}
}

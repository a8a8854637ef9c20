package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiometrix/riskd/internal/risk"
)

// separableDataset builds rows where the first feature cleanly separates
// the classes.
func separableDataset(n int) ([][]float64, []int) {
	d := len(risk.FeatureNames)
	x := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		row := make([]float64, d)
		if i%2 == 0 {
			row[0] = 10.0 + float64(i%5)
			y[i] = 1
		} else {
			row[0] = -10.0 - float64(i%5)
		}
		row[1] = float64(i % 3) // uninformative noise column
		x[i] = row
	}
	return x, y
}

func TestLogisticModel_FitSeparable(t *testing.T) {
	x, y := separableDataset(40)
	model := &LogisticModel{}
	model.Fit(x, y)

	d := len(risk.FeatureNames)
	require.Len(t, model.Weights, d)

	high := make([]float64, d)
	high[0] = 12.0
	low := make([]float64, d)
	low[0] = -12.0

	assert.Greater(t, model.PredictProba(high), 0.5)
	assert.Less(t, model.PredictProba(low), 0.5)
	assert.Greater(t, model.PredictProba(high), model.PredictProba(low))
	assert.Greater(t, model.Weights[0], 0.0, "separating feature must carry positive weight")
}

func TestLogisticModel_FitDeterministic(t *testing.T) {
	x, y := separableDataset(30)

	a := &LogisticModel{}
	a.Fit(x, y)
	b := &LogisticModel{}
	b.Fit(x, y)

	assert.Equal(t, a.Weights, b.Weights)
	assert.Equal(t, a.Bias, b.Bias)
}

func TestGradientBoostModel_FitSeparable(t *testing.T) {
	x, y := separableDataset(40)
	model := &GradientBoostModel{}
	model.Fit(x, y)

	require.Len(t, model.Trees, boostRounds)

	d := len(risk.FeatureNames)
	high := make([]float64, d)
	high[0] = 12.0
	low := make([]float64, d)
	low[0] = -12.0

	assert.Greater(t, model.DecisionScore(high), 0.0)
	assert.Less(t, model.DecisionScore(low), 0.0)

	importances := model.FeatureImportances()
	require.Len(t, importances, d)
	var total float64
	for _, v := range importances {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, importances[0], 0.5, "the separating feature should dominate the split gain")
}

func TestProbability_DispatchPriority(t *testing.T) {
	d := len(risk.FeatureNames)
	x := make([]float64, d)

	t.Run("ProbabilityScorerPreferred", func(t *testing.T) {
		// LogisticModel exposes both a probability and a margin; the native
		// probability must win.
		model := &LogisticModel{Weights: make([]float64, d), Bias: 2.0}
		p, err := Probability(model, x)
		require.NoError(t, err)
		assert.InDelta(t, sigmoid(2.0), p, 1e-12)
	})

	t.Run("MarginMappedThroughSigmoid", func(t *testing.T) {
		model := &GradientBoostModel{InitialScore: -1.5, LearnRate: boostLearnRate}
		p, err := Probability(model, x)
		require.NoError(t, err)
		assert.InDelta(t, sigmoid(-1.5), p, 1e-12)
	})

	t.Run("HardPredictionClipped", func(t *testing.T) {
		p, err := Probability(hardOnly{value: 3.0}, x)
		require.NoError(t, err)
		assert.Equal(t, 1.0, p)
	})

	t.Run("NoScoringInterface", func(t *testing.T) {
		_, err := Probability(opaque{}, x)
		assert.Error(t, err)
	})
}

type hardOnly struct{ value float64 }

func (h hardOnly) ModelType() string           { return "hard_only" }
func (h hardOnly) Predict(x []float64) float64 { return h.value }

type opaque struct{}

func (opaque) ModelType() string { return "opaque" }

func TestContributionSource(t *testing.T) {
	d := len(risk.FeatureNames)

	logistic := &LogisticModel{Weights: make([]float64, d)}
	source, ok := ContributionSource(logistic)
	assert.True(t, ok)
	assert.Len(t, source, d)

	boost := &GradientBoostModel{Importances: make([]float64, d)}
	source, ok = ContributionSource(boost)
	assert.True(t, ok)
	assert.Len(t, source, d)

	_, ok = ContributionSource(opaque{})
	assert.False(t, ok, "an opaque predictor yields no attribution source")
}

func TestPredictorCodec_RoundTrip(t *testing.T) {
	x, y := separableDataset(30)

	t.Run("Logistic", func(t *testing.T) {
		model := &LogisticModel{}
		model.Fit(x, y)

		blob, err := EncodePredictor(model)
		require.NoError(t, err)
		restored, err := DecodePredictor(blob)
		require.NoError(t, err)

		assert.Equal(t, FamilyLogistic, restored.ModelType())
		probe := make([]float64, len(risk.FeatureNames))
		probe[0] = 7.0
		got, err := Probability(restored, probe)
		require.NoError(t, err)
		assert.InDelta(t, model.PredictProba(probe), got, 1e-12)
	})

	t.Run("Boosting", func(t *testing.T) {
		model := &GradientBoostModel{}
		model.Fit(x, y)

		blob, err := EncodePredictor(model)
		require.NoError(t, err)
		restored, err := DecodePredictor(blob)
		require.NoError(t, err)

		assert.Equal(t, FamilyBoosting, restored.ModelType())
		probe := make([]float64, len(risk.FeatureNames))
		probe[0] = 7.0
		want, err := Probability(model, probe)
		require.NoError(t, err)
		got, err := Probability(restored, probe)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12)
	})

	t.Run("CorruptBlob", func(t *testing.T) {
		_, err := DecodePredictor([]byte("not a gob stream"))
		assert.Error(t, err)
	})
}

package ml

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cardiometrix/riskd/internal/artifact"
	"github.com/cardiometrix/riskd/internal/risk"
)

// ScoreResult is the outcome of scoring one feature vector, regardless of
// which strategy produced it.
type ScoreResult struct {
	Risk         float64       `json:"risk"`
	Band         string        `json:"band"`
	Drivers      []risk.Driver `json:"drivers"`
	ModelVersion string        `json:"model_version"`
}

// TrainSummary is returned to the caller after a successful training run.
type TrainSummary struct {
	ModelVersion string           `json:"model_version"`
	Metrics      artifact.Metrics `json:"metrics"`
	NSamples     int              `json:"n_samples"`
}

// Manager owns the active model generation. It is either unloaded, in which
// case every score delegates to the rule engine, or holds a fitted predictor
// plus its metadata as one unit. Retraining replaces the pair in place after
// persistence succeeds; there is no rollback and no failure-driven unload.
type Manager struct {
	store  *artifact.Store
	family string
	logger *zap.Logger

	mu    sync.RWMutex
	model Predictor
	meta  *artifact.Metadata
}

// NewManager builds a manager over the given artifact store and attempts to
// load an existing pair. A missing pair is the normal cold start; a corrupt
// pair is logged and left unloaded so the rule engine serves traffic.
func NewManager(store *artifact.Store, family string, logger *zap.Logger) (*Manager, error) {
	if _, err := NewEstimator(family); err != nil {
		return nil, err
	}
	m := &Manager{store: store, family: family, logger: logger}
	if err := m.Reload(); err != nil && !errors.Is(err, artifact.ErrNotFound) {
		logger.Warn("existing artifact unusable, starting unloaded", zap.Error(err))
	}
	return m, nil
}

// ModelLoaded reports whether a trained artifact is active.
func (m *Manager) ModelLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.model != nil
}

// ModelVersion returns the active version tag, or the reserved rule-engine
// tag when no model is loaded.
func (m *Manager) ModelVersion() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.model == nil || m.meta == nil || m.meta.ModelVersion == "" {
		return risk.RuleModelVersion
	}
	return m.meta.ModelVersion
}

// ScoreOne scores a single feature vector with the active strategy. With no
// model loaded it is exactly the rule engine; with a model loaded the
// predictor's probability is dispatched by capability and explained against
// the training-set means.
func (m *Manager) ScoreOne(f *risk.Features) (*ScoreResult, error) {
	m.mu.RLock()
	model, meta := m.model, m.meta
	m.mu.RUnlock()

	if model == nil {
		riskScore, band, drivers, version := risk.ScoreRule(f)
		return &ScoreResult{Risk: riskScore, Band: band, Drivers: drivers, ModelVersion: version}, nil
	}

	vector := f.Vector()
	prob, err := Probability(model, vector)
	if err != nil {
		return nil, fmt.Errorf("model predict: %w", err)
	}
	riskScore := risk.Round6(risk.Clip(prob, 0, 1))

	var drivers []risk.Driver
	if source, ok := ContributionSource(model); ok {
		drivers = Attribute(vector, meta.FeatureMeans, source)
	}
	if len(drivers) == 0 {
		drivers = []risk.Driver{risk.BaselineDriver("Model baseline", 0.0)}
	}

	return &ScoreResult{
		Risk:         riskScore,
		Band:         risk.BandForRisk(riskScore),
		Drivers:      drivers,
		ModelVersion: meta.ModelVersion,
	}, nil
}

// TrainAndSave runs the full pipeline: threshold labels, fit the configured
// estimator family, evaluate, version, persist, then swap the in-memory pair.
// A failed persist leaves the previously active model serving.
func (m *Manager) TrainAndSave(rows []TrainRow) (*TrainSummary, error) {
	x, y := buildDataset(rows)
	if pos, neg := classCount(y); pos == 0 || neg == 0 {
		return nil, validationErrorf("training labels must contain at least two classes after thresholding at 0.5")
	}

	estimator, err := NewEstimator(m.family)
	if err != nil {
		return nil, err
	}

	trainX, evalX, trainY, evalY := splitDataset(x, y)
	estimator.Fit(trainX, trainY)

	auc, logloss := evaluate(estimator, evalX, evalY)

	prevVersion, err := m.store.LoadVersion()
	if err != nil && !errors.Is(err, artifact.ErrNotFound) {
		return nil, fmt.Errorf("read previous version: %w", err)
	}
	version := NextModelVersion(prevVersion)

	meta := &artifact.Metadata{
		ModelVersion:    version,
		TrainedAt:       time.Now().UTC().Format(time.RFC3339),
		FeatureNames:    risk.FeatureNames,
		FeatureMeans:    featureMeans(trainX),
		TrainingMetrics: artifact.Metrics{AUC: auc, LogLoss: logloss},
		NSamples:        len(rows),
		ModelType:       estimator.ModelType(),
		LabelMode:       artifact.LabelModeBinaryThreshold,
	}

	blob, err := EncodePredictor(estimator)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(blob, meta); err != nil {
		return nil, fmt.Errorf("persist artifact: %w", err)
	}

	m.mu.Lock()
	m.model = estimator
	m.meta = meta
	m.mu.Unlock()

	m.logger.Info("model trained",
		zap.String("model_version", version),
		zap.String("model_type", meta.ModelType),
		zap.Int("n_samples", len(rows)))

	return &TrainSummary{ModelVersion: version, Metrics: meta.TrainingMetrics, NSamples: len(rows)}, nil
}

// Reload replaces the active pair from storage. Used at startup and by the
// artifact watcher when a sibling writer commits a new generation. A version
// already active is left untouched.
func (m *Manager) Reload() error {
	blob, meta, err := m.store.Load()
	if err != nil {
		return err
	}

	m.mu.RLock()
	current := ""
	if m.meta != nil {
		current = m.meta.ModelVersion
	}
	m.mu.RUnlock()
	if current == meta.ModelVersion {
		return nil
	}

	model, err := DecodePredictor(blob)
	if err != nil {
		return err
	}
	if model.ModelType() != meta.ModelType {
		return fmt.Errorf("artifact pair mismatch: blob %q vs metadata %q", model.ModelType(), meta.ModelType)
	}

	m.mu.Lock()
	m.model = model
	m.meta = meta
	m.mu.Unlock()

	m.logger.Info("model loaded",
		zap.String("model_version", meta.ModelVersion),
		zap.String("model_type", meta.ModelType))
	return nil
}

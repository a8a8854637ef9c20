// Package artifact persists one trained model generation as a pair of
// companion files: a compressed binary predictor blob and a JSON metadata
// record. The pair is committed atomically; a half-written pair is never
// observed as loaded.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"go.uber.org/zap"
)

const (
	modelFile    = "model.bin"
	metadataFile = "metadata.json"
)

// LabelModeBinaryThreshold is the only label mode this service trains with.
const LabelModeBinaryThreshold = "binary_threshold_0.5"

// ErrNotFound reports that no artifact pair exists at the store path. It is
// distinct from a decode failure: absence is a normal cold-start state,
// corruption is not.
var ErrNotFound = errors.New("artifact: not found")

// Metrics holds the evaluation metrics recorded at training time. Either
// value may be null when computation was undefined for the evaluation split.
type Metrics struct {
	AUC     *float64 `json:"auc"`
	LogLoss *float64 `json:"logloss"`
}

// Metadata is the persisted companion record for a model blob. The layout
// must round-trip exactly; trained artifacts from prior deployments are read
// with this schema.
type Metadata struct {
	ModelVersion    string    `json:"model_version"`
	TrainedAt       string    `json:"trained_at"`
	FeatureNames    []string  `json:"feature_names"`
	FeatureMeans    []float64 `json:"feature_means"`
	TrainingMetrics Metrics   `json:"training_metrics"`
	NSamples        int       `json:"n_samples"`
	ModelType       string    `json:"model_type"`
	LabelMode       string    `json:"label_mode"`
}

// Store reads and writes artifact pairs under a single directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir returns the directory the store commits into.
func (s *Store) Dir() string { return s.dir }

// MetadataPath returns the path of the metadata record, the file whose
// appearance marks a committed pair.
func (s *Store) MetadataPath() string { return filepath.Join(s.dir, metadataFile) }

// Exists reports whether both companion files are present.
func (s *Store) Exists() bool {
	for _, name := range []string{modelFile, metadataFile} {
		if _, err := os.Stat(filepath.Join(s.dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Load returns the model blob and metadata. Both files must exist; one
// without the other is treated as not found so a torn write from a crashed
// producer is skipped rather than half-loaded.
func (s *Store) Load() ([]byte, *Metadata, error) {
	if !s.Exists() {
		return nil, nil, ErrNotFound
	}

	compressed, err := os.ReadFile(filepath.Join(s.dir, modelFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read model blob: %w", err)
	}
	blob, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("decompress model blob: %w", err)
	}

	raw, err := os.ReadFile(s.MetadataPath())
	if err != nil {
		return nil, nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, fmt.Errorf("decode metadata: %w", err)
	}
	if len(meta.FeatureMeans) != len(meta.FeatureNames) {
		return nil, nil, fmt.Errorf("metadata feature_means length %d does not match feature_names length %d",
			len(meta.FeatureMeans), len(meta.FeatureNames))
	}

	return blob, &meta, nil
}

// LoadVersion returns the persisted model version without decoding the blob.
// Used to derive the next version for a retrain.
func (s *Store) LoadVersion() (string, error) {
	raw, err := os.ReadFile(s.MetadataPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", ErrNotFound
	}
	return meta.ModelVersion, nil
}

// Save commits a blob+metadata pair. Both files are staged to temp names and
// renamed into place, metadata last: a reader that sees the new metadata is
// guaranteed to see the new blob, and any failure leaves the previous pair
// intact on disk.
func (s *Store) Save(blob []byte, meta *Metadata) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	modelPath := filepath.Join(s.dir, modelFile)
	metaPath := s.MetadataPath()
	modelTmp := modelPath + ".tmp"
	metaTmp := metaPath + ".tmp"

	if err := os.WriteFile(modelTmp, snappy.Encode(nil, blob), 0o640); err != nil {
		return fmt.Errorf("stage model blob: %w", err)
	}
	if err := os.WriteFile(metaTmp, raw, 0o640); err != nil {
		_ = os.Remove(modelTmp)
		return fmt.Errorf("stage metadata: %w", err)
	}

	if err := os.Rename(modelTmp, modelPath); err != nil {
		_ = os.Remove(modelTmp)
		_ = os.Remove(metaTmp)
		return fmt.Errorf("commit model blob: %w", err)
	}
	if err := os.Rename(metaTmp, metaPath); err != nil {
		_ = os.Remove(metaTmp)
		return fmt.Errorf("commit metadata: %w", err)
	}

	s.logger.Info("artifact saved",
		zap.String("model_version", meta.ModelVersion),
		zap.String("model_type", meta.ModelType),
		zap.String("dir", s.dir))
	return nil
}

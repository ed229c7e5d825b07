package models

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"bagging/internal/features"
)

func init() {
	gob.Register(&DecisionTree{})
	gob.Register(&KNN{})
	gob.Register(&Perceptron{})
	gob.Register(&GradientDescent{})
	gob.Register(&TwoLayerNN{})
}

type baggingSnapshot struct {
	Config  BaggingConfig
	Members []Classifier
}

func (b *Bagging) GobEncode() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(baggingSnapshot{Config: b.cfg, Members: b.members}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores configuration and members. The factory and logger are
// reset to their defaults.
func (b *Bagging) GobDecode(p []byte) error {
	var s baggingSnapshot
	if err := gob.NewDecoder(bytes.NewReader(p)).Decode(&s); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = s.Config
	b.members = s.Members
	if b.factory == nil {
		b.factory = NewClassifier
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return nil
}

// Artifact is what the trainer writes and the API serves: the ensemble and
// the scaler its inputs went through, if any.
type Artifact struct {
	Ensemble     *Bagging
	Scaler       *features.Standardizer
	FeatureNames []string
}

func (a *Artifact) Prepare(x []float64) ([]float64, error) {
	if a.Scaler == nil {
		return x, nil
	}
	return a.Scaler.Vectorize(x)
}

func SaveArtifact(path string, a *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(a); err != nil {
		return fmt.Errorf("models: encode artifact: %w", err)
	}
	return f.Sync()
}

func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var a Artifact
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("models: decode artifact %s: %w", path, err)
	}
	if a.Ensemble == nil {
		return nil, fmt.Errorf("models: artifact %s: %w", path, ErrUntrainedModel)
	}
	return &a, nil
}

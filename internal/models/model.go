package models

//go:generate mockgen -source=model.go -destination=mocks/mock_model.go -package=mocks

import (
	"errors"
	"fmt"

	"bagging/internal/data"
)

var (
	ErrUntrainedModel         = errors.New("models: classifier has not been trained")
	ErrInvalidConfiguration   = errors.New("models: invalid configuration")
	ErrInvalidHyperparameters = errors.New("models: invalid hyperparameters")
	ErrDimensionMismatch      = errors.New("models: feature dimension mismatch")
	ErrNotBinary              = errors.New("models: classifier supports at most two labels")
	ErrEmptyTrainingSet       = errors.New("models: empty training set")
)

// Classifier is the capability every ensemble member provides. Confidence is
// a non-negative score for the label Classify returns.
type Classifier interface {
	Train(ds *data.DataSet) error
	Classify(e data.Example) (float64, error)
	Confidence(e data.Example) (float64, error)
	Name() string
}

// featureWidth returns the feature count shared by every example of ds.
func featureWidth(ds *data.DataSet) (int, error) {
	width := ds.NumFeatures()
	for i, e := range ds.Examples {
		if len(e.Features) != width {
			return 0, fmt.Errorf("%w: example %d has %d features, want %d", ErrDimensionMismatch, i, len(e.Features), width)
		}
	}
	return width, nil
}

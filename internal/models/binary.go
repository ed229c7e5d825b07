package models

import (
	"fmt"

	"bagging/internal/data"
)

// BinaryLabels maps the two training labels onto -1 (smaller) and +1
// (larger). A sample holding a single label maps both sides to it.
type BinaryLabels struct {
	Negative float64
	Positive float64
}

func fitBinaryLabels(ds *data.DataSet) (BinaryLabels, error) {
	labels := ds.Labels()
	switch len(labels) {
	case 0:
		return BinaryLabels{}, ErrEmptyTrainingSet
	case 1:
		return BinaryLabels{Negative: labels[0], Positive: labels[0]}, nil
	case 2:
		return BinaryLabels{Negative: labels[0], Positive: labels[1]}, nil
	default:
		return BinaryLabels{}, fmt.Errorf("%w: got %v", ErrNotBinary, labels)
	}
}

func (b BinaryLabels) target(label float64) float64 {
	if label == b.Positive && b.Positive != b.Negative {
		return 1
	}
	return -1
}

func (b BinaryLabels) label(score float64) float64 {
	if score > 0 {
		return b.Positive
	}
	return b.Negative
}

// linearScore computes w·x+b.
func linearScore(w []float64, bias float64, x []float64) (float64, error) {
	if len(w) == 0 {
		return 0, ErrUntrainedModel
	}
	if len(x) != len(w) {
		return 0, ErrDimensionMismatch
	}
	s := bias
	for j, v := range x {
		s += w[j] * v
	}
	return s, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

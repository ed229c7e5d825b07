package features

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"bagging/internal/data"
)

var (
	ErrNotFitted         = errors.New("features: standardizer not fitted")
	ErrDimensionMismatch = errors.New("features: dimension mismatch")
)

// Standardizer rescales every feature to zero mean and unit variance using
// statistics of the data set it was fitted on. Constant features keep a scale
// of 1.
type Standardizer struct {
	Mean  []float64
	Scale []float64
}

func Fit(ds *data.DataSet) (*Standardizer, error) {
	n := ds.Len()
	if n == 0 {
		return nil, data.ErrEmptyDataSet
	}
	d := ds.NumFeatures()
	s := &Standardizer{Mean: make([]float64, d), Scale: make([]float64, d)}
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		for i, e := range ds.Examples {
			if len(e.Features) != d {
				return nil, fmt.Errorf("%w: example %d has %d features, want %d", ErrDimensionMismatch, i, len(e.Features), d)
			}
			col[i] = e.Features[j]
		}
		s.Mean[j], s.Scale[j] = stat.PopMeanStdDev(col, nil)
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return s, nil
}

func (s *Standardizer) Vectorize(x []float64) ([]float64, error) {
	if s == nil || len(s.Mean) == 0 {
		return nil, ErrNotFitted
	}
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrDimensionMismatch, len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

func (s *Standardizer) TransformExample(e data.Example) (data.Example, error) {
	v, err := s.Vectorize(e.Features)
	if err != nil {
		return data.Example{}, err
	}
	return data.Example{Features: v, Label: e.Label}, nil
}

// Transform returns a new data set with every example rescaled.
func (s *Standardizer) Transform(ds *data.DataSet, opts ...data.Option) (*data.DataSet, error) {
	out := make([]data.Example, ds.Len())
	for i, e := range ds.Examples {
		t, err := s.TransformExample(e)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
		out[i] = t
	}
	opts = append([]data.Option{data.WithFeatureNames(ds.FeatureNames)}, opts...)
	return data.NewDataSet(out, opts...), nil
}

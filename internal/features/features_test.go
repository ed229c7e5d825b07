package features_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagging/internal/data"
	"bagging/internal/features"
)

func TestStandardizer(t *testing.T) {
	ds := data.NewDataSet([]data.Example{
		{Features: []float64{1, 5}, Label: 0},
		{Features: []float64{3, 5}, Label: 1},
	}, data.WithFeatureNames([]string{"a", "b"}))

	s, err := features.Fit(ds)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Scale)

	out, err := s.Transform(ds, data.WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0}, out.Examples[0].Features)
	assert.Equal(t, []float64{1, 0}, out.Examples[1].Features)
	assert.Equal(t, 1.0, out.Examples[1].Label)
	assert.Equal(t, []string{"a", "b"}, out.FeatureNames)
}

func TestStandardizer_Errors(t *testing.T) {
	_, err := features.Fit(data.NewDataSet(nil))
	assert.True(t, errors.Is(err, data.ErrEmptyDataSet))

	var s *features.Standardizer
	_, err = s.Vectorize([]float64{1})
	assert.True(t, errors.Is(err, features.ErrNotFitted))

	_, err = features.Fit(data.NewDataSet([]data.Example{
		{Features: []float64{1, 2}},
		{Features: []float64{3}},
	}))
	assert.ErrorIs(t, err, features.ErrDimensionMismatch)

	s = &features.Standardizer{Mean: []float64{0, 0}, Scale: []float64{1, 1}}
	_, err = s.Vectorize([]float64{1})
	assert.ErrorIs(t, err, features.ErrDimensionMismatch)
}

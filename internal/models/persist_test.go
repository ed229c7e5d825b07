package models_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagging/internal/data"
	"bagging/internal/features"
	"bagging/internal/models"
)

func TestArtifact_RoundTrip(t *testing.T) {
	train := twoBlobs(120, 0, 1, 8)
	scaler, err := features.Fit(train)
	require.NoError(t, err)
	scaled, err := scaler.Transform(train, data.WithSeed(3))
	require.NoError(t, err)

	for _, typ := range allTypes() {
		t.Run(typ.String(), func(t *testing.T) {
			b := models.NewBaggingWith(typ, 5, 0.6)
			b.SetUseConfidenceVoting(true)
			require.NoError(t, b.Train(scaled))

			path := filepath.Join(t.TempDir(), "models", "ensemble.gob")
			require.NoError(t, models.SaveArtifact(path, &models.Artifact{Ensemble: b, Scaler: scaler, FeatureNames: []string{"x", "y"}}))

			got, err := models.LoadArtifact(path)
			require.NoError(t, err)
			assert.Equal(t, b.Config(), got.Ensemble.Config())
			assert.Equal(t, 5, got.Ensemble.Size())
			assert.Equal(t, []string{"x", "y"}, got.FeatureNames)

			for _, e := range train.Examples[:20] {
				x, err := got.Prepare(e.Features)
				require.NoError(t, err)
				in := data.Example{Features: x}

				want, err := b.Classify(in)
				require.NoError(t, err)
				have, err := got.Ensemble.Classify(in)
				require.NoError(t, err)
				assert.Equal(t, want, have)

				wc, err := b.Confidence(in)
				require.NoError(t, err)
				hc, err := got.Ensemble.Confidence(in)
				require.NoError(t, err)
				assert.InDelta(t, wc, hc, 1e-12)
			}

			// a restored ensemble can keep growing with the default factory
			require.NoError(t, got.Ensemble.Train(scaled))
			assert.Equal(t, 10, got.Ensemble.Size())
		})
	}
}

func TestArtifact_PrepareWithoutScaler(t *testing.T) {
	a := &models.Artifact{Ensemble: models.NewBagging()}
	x, err := a.Prepare([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, x)
}

func TestLoadArtifact_Missing(t *testing.T) {
	_, err := models.LoadArtifact(filepath.Join(t.TempDir(), "none.gob"))
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	ds := twoBlobs(60, 0, 1, 5)
	b := models.NewBaggingWith(models.KNNModel, 3, 1, 1)
	require.NoError(t, b.Train(ds))
	r, err := models.Evaluate(b, ds)
	require.NoError(t, err)
	assert.Equal(t, 60, r.Examples)
	assert.Equal(t, r.Correct, int(r.Accuracy*60+0.5))
	assert.Equal(t, "Bagging(knn x3)", r.Model)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagging/internal/config"
	"bagging/internal/models"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "bagging.yaml", `
data:
  test_size: 0.3
  synthetic:
    n: 500
    classes: 2
    features: 6
    noise: 0.8
    seed: 3
ensemble:
  model_type: knn
  ensemble_size: 25
  sample_proportion: 0.7
  use_confidence_voting: true
  hyperparameters: [5]
  workers: 4
output:
  model: out/knn.gob
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, models.KNNModel, cfg.Ensemble.ModelType)
	assert.Equal(t, 25, cfg.Ensemble.EnsembleSize)
	assert.Equal(t, 0.7, cfg.Ensemble.SampleProportion)
	assert.True(t, cfg.Ensemble.UseConfidenceVoting)
	assert.Equal(t, []int{5}, cfg.Ensemble.Hyperparameters)
	assert.Equal(t, 4, cfg.Ensemble.Workers)
	assert.Equal(t, 0.3, cfg.Data.TestSize)
	assert.Equal(t, 500, cfg.Data.Synthetic.N)
	assert.Equal(t, 6, cfg.Data.Synthetic.Features)
	assert.Equal(t, "out/knn.gob", cfg.Output.Model)
	// untouched keys keep their defaults
	assert.Equal(t, "data/report.json", cfg.Output.Report)
	assert.True(t, cfg.Data.Scale)
}

func TestLoad_TOML(t *testing.T) {
	path := write(t, "bagging.toml", `
[ensemble]
model_type = "gd"
ensemble_size = 8
sample_proportion = 0.4
hyperparameters = [1, 2, 1, 5, 20]
replace_on_retrain = true
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, models.GradientDescentModel, cfg.Ensemble.ModelType)
	assert.Equal(t, 8, cfg.Ensemble.EnsembleSize)
	assert.Equal(t, 0.4, cfg.Ensemble.SampleProportion)
	assert.Equal(t, []int{1, 2, 1, 5, 20}, cfg.Ensemble.Hyperparameters)
	assert.True(t, cfg.Ensemble.ReplaceOnRetrain)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		file string
		body string
		is   error
	}{
		{"Format", "bagging.json", `{}`, config.ErrUnsupportedFormat},
		{"EnsembleSize", "bad.yaml", "ensemble:\n  ensemble_size: 0\n", models.ErrInvalidConfiguration},
		{"Proportion", "bad.toml", "[ensemble]\nsample_proportion = 1.5\n", models.ErrInvalidConfiguration},
		{"ModelType", "bad.yaml", "ensemble:\n  model_type: forest\n", nil},
		{"TestSize", "bad.yaml", "data:\n  test_size: 1.5\n", nil},
		{"OutputModel", "bad.yaml", "output:\n  model: \"\"\n", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(write(t, tc.file, tc.body))
			require.Error(t, err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, config.Validate(config.Default()))
}

package main

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"bagging/internal/config"
	"bagging/internal/data"
	"bagging/internal/models"
)

func TestParseSizes(t *testing.T) {
	got, err := parseSizes("10, 1,5")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 10}, got)

	for _, bad := range []string{"", "0", "a,2"} {
		_, err := parseSizes(bad)
		assert.Error(t, err, bad)
	}
}

func TestSweep(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Path = ""
	cfg.Data.Synthetic = data.SyntheticConfig{N: 200, Classes: 2, Features: 3, Noise: 0.8, Seed: 9}
	cfg.Ensemble.ModelType = models.KNNModel

	points, err := sweep(cfg, []int{1, 3, 7}, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, points, 3)
	for i, m := range []int{1, 3, 7} {
		assert.Equal(t, m, points[i].Size)
		for _, acc := range []float64{points[i].TrainAcc, points[i].TestAcc, points[i].TrainConfAcc, points[i].TestConfAcc} {
			assert.GreaterOrEqual(t, acc, 0.0)
			assert.LessOrEqual(t, acc, 1.0)
		}
	}

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out", "curve.csv")
	require.NoError(t, writeCSV(csvPath, points))
	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"size", "train_acc", "test_acc", "train_conf_acc", "test_conf_acc"}, rows[0])
	assert.Equal(t, "7", rows[3][0])

	imgPath := filepath.Join(dir, "out", "curve.png")
	require.NoError(t, plotCurve(imgPath, cfg.Ensemble.ModelType, points))
	assert.FileExists(t, imgPath)
}

func TestSweep_Limit(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Path = ""
	cfg.Data.Synthetic = data.SyntheticConfig{N: 200, Classes: 2, Features: 2, Noise: 0.5, Seed: 4}
	cfg.Data.Scale = false
	cfg.Ensemble.ModelType = models.KNNModel
	cfg.Ensemble.Hyperparameters = []int{1}
	cfg.Ensemble.SampleProportion = 1

	points, err := sweep(cfg, []int{1}, 5, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 1, points[0].Size)
	// accuracy over five training examples moves in steps of 0.2
	steps := points[0].TrainAcc * 5
	assert.InDelta(t, math.Round(steps), steps, 1e-9)
	assert.GreaterOrEqual(t, points[0].TrainAcc, 0.2)
}

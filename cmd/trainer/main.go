package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"bagging/internal/config"
	"bagging/internal/data"
	"bagging/internal/features"
	"bagging/internal/models"
	"bagging/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfgPath := flag.String("config", "", "Config file (.yaml|.yml|.toml)")
	dataPath := flag.String("data", "data/synthetic.csv", "CSV data set (last column is the label)")
	regen := flag.Bool("regen", true, "Regenerate the synthetic data set before training")
	n := flag.Int("n", 2000, "Synthetic examples")
	classes := flag.Int("classes", 2, "Synthetic classes")
	nFeatures := flag.Int("features", 4, "Synthetic features")
	noise := flag.Float64("noise", 1.0, "Synthetic noise")
	seed := flag.Int64("seed", 42, "Seed for splits and synthetic data")
	model := flag.String("model", "dt", "Base learner: dt|knn|perceptron|gd|nn")
	m := flag.Int("m", 10, "Ensemble size")
	p := flag.Float64("p", 0.5, "Bootstrap sample proportion")
	confidence := flag.Bool("confidence", false, "Confidence-weighted voting")
	params := flag.String("params", "", "Base learner hyperparameters, comma separated")
	workers := flag.Int("workers", 0, "Parallel training workers (0 = sequential)")
	scale := flag.Bool("scale", true, "Standardize features")
	testSize := flag.Float64("test", 0.2, "Held-out fraction")
	out := flag.String("out", "models/bagging.gob", "Model artifact path")
	report := flag.String("report", "data/report.json", "JSON report path (empty to skip)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			logger.Fatal("Failed to load config", zap.String("path", *cfgPath), zap.Error(err))
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	override := func(name string, apply func()) {
		if set[name] || *cfgPath == "" {
			apply()
		}
	}
	override("data", func() { cfg.Data.Path = *dataPath })
	override("regen", func() { cfg.Data.Regen = *regen })
	override("n", func() { cfg.Data.Synthetic.N = *n })
	override("classes", func() { cfg.Data.Synthetic.Classes = *classes })
	override("features", func() { cfg.Data.Synthetic.Features = *nFeatures })
	override("noise", func() { cfg.Data.Synthetic.Noise = *noise })
	override("seed", func() { cfg.Data.Seed = *seed; cfg.Data.Synthetic.Seed = *seed })
	override("scale", func() { cfg.Data.Scale = *scale })
	override("test", func() { cfg.Data.TestSize = *testSize })
	override("m", func() { cfg.Ensemble.EnsembleSize = *m })
	override("p", func() { cfg.Ensemble.SampleProportion = *p })
	override("confidence", func() { cfg.Ensemble.UseConfidenceVoting = *confidence })
	override("workers", func() { cfg.Ensemble.Workers = *workers })
	override("out", func() { cfg.Output.Model = *out })
	override("report", func() { cfg.Output.Report = *report })
	var err error
	override("model", func() {
		if cfg.Ensemble.ModelType, err = models.ParseModelType(*model); err != nil {
			logger.Fatal("Invalid model", zap.Error(err))
		}
	})
	override("params", func() {
		if cfg.Ensemble.Hyperparameters, err = parseParams(*params); err != nil {
			logger.Fatal("Invalid params", zap.Error(err))
		}
	})
	if err := config.Validate(cfg); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	res, err := run(cfg, logger)
	if err != nil {
		logger.Fatal("Training failed", zap.Error(err))
	}
	fmt.Printf("%s accuracy=%.4f | single %s accuracy=%.4f\n",
		res.Ensemble.Model, res.Ensemble.Accuracy, res.Baseline.Model, res.Baseline.Accuracy)
}

func parseParams(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

type result struct {
	Config    models.BaggingConfig `json:"config"`
	TrainSize int                  `json:"train_size"`
	TestSize  int                  `json:"test_size"`
	Ensemble  models.Report        `json:"ensemble"`
	Baseline  models.Report        `json:"baseline"`
	Duration  string               `json:"duration"`
}

func loadData(cfg config.DataConfig, logger *zap.Logger) (*data.DataSet, error) {
	if cfg.Regen || cfg.Path == "" {
		logger.Info("Generating synthetic data set", zap.Int("n", cfg.Synthetic.N), zap.Int("classes", cfg.Synthetic.Classes))
		ds := data.GenerateSynthetic(cfg.Synthetic)
		if cfg.Path != "" {
			if err := data.WriteCSV(cfg.Path, ds); err != nil {
				return nil, err
			}
		}
		return ds, nil
	}
	return data.LoadCSV(cfg.Path, data.WithSeed(cfg.Seed))
}

func run(cfg config.Config, logger *zap.Logger) (*result, error) {
	start := time.Now()
	ds, err := loadData(cfg.Data, logger)
	if err != nil {
		return nil, err
	}
	train, test, err := ds.TrainTestSplit(cfg.Data.TestSize)
	if err != nil {
		return nil, err
	}
	if test.Len() == 0 {
		test = train
	}
	logger.Info("Class distribution", zap.Float64s("labels", ds.Labels()), zap.Int("train", train.Len()), zap.Int("test", test.Len()))

	var scaler *features.Standardizer
	if cfg.Data.Scale {
		if scaler, err = features.Fit(train); err != nil {
			return nil, err
		}
		if train, err = scaler.Transform(train, data.WithSeed(cfg.Data.Seed)); err != nil {
			return nil, err
		}
		if test, err = scaler.Transform(test); err != nil {
			return nil, err
		}
	}

	bag := models.NewBagging(models.WithConfig(cfg.Ensemble), models.WithLogger(logger))
	if err := bag.Train(train); err != nil {
		return nil, fmt.Errorf("train ensemble: %w", err)
	}
	single, err := bag.SingleClassifier()
	if err != nil {
		return nil, err
	}
	if err := single.Train(train); err != nil {
		return nil, fmt.Errorf("train single %s: %w", single.Name(), err)
	}

	res := &result{Config: bag.Config(), TrainSize: train.Len(), TestSize: test.Len()}
	if res.Ensemble, err = models.Evaluate(bag, test); err != nil {
		return nil, err
	}
	if res.Baseline, err = models.Evaluate(single, test); err != nil {
		return nil, err
	}
	res.Duration = time.Since(start).String()
	logger.Info("Holdout metrics",
		zap.String("model", res.Ensemble.Model),
		zap.Float64("accuracy", res.Ensemble.Accuracy),
		zap.String("baseline", res.Baseline.Model),
		zap.Float64("baseline_accuracy", res.Baseline.Accuracy),
	)

	artifact := &models.Artifact{Ensemble: bag, Scaler: scaler, FeatureNames: ds.FeatureNames}
	if err := models.SaveArtifact(cfg.Output.Model, artifact); err != nil {
		return nil, err
	}
	logger.Info("Model saved", zap.String("path", cfg.Output.Model))

	if cfg.Output.Report != "" {
		if err := writeReport(cfg.Output.Report, res); err != nil {
			logger.Warn("Failed to write report", zap.Error(err))
		}
	}
	return res, nil
}

func writeReport(path string, res *result) error {
	raw, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

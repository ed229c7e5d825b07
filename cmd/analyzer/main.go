package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

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
	model := flag.String("model", "", "Base learner override: dt|knn|perceptron|gd|nn")
	sizes := flag.String("sizes", "1,2,5,10,20", "Ensemble sizes to sweep, comma separated")
	limit := flag.Int("limit", 0, "Train on at most this many examples (0 = all)")
	outImg := flag.String("out_img", "data/ensemble_curve.png", "PNG output")
	outCsv := flag.String("out_csv", "data/ensemble_curve.csv", "CSV output")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			logger.Fatal("Failed to load config", zap.String("path", *cfgPath), zap.Error(err))
		}
	}
	if *model != "" {
		t, err := models.ParseModelType(*model)
		if err != nil {
			logger.Fatal("Invalid model", zap.Error(err))
		}
		cfg.Ensemble.ModelType = t
		cfg.Ensemble.Hyperparameters = nil
	}
	ms, err := parseSizes(*sizes)
	if err != nil {
		logger.Fatal("Invalid sizes", zap.Error(err))
	}

	points, err := sweep(cfg, ms, *limit, logger)
	if err != nil {
		logger.Fatal("Sweep failed", zap.Error(err))
	}
	for _, pt := range points {
		fmt.Printf("m=%d | train=%.3f | test=%.3f | test(conf)=%.3f\n", pt.Size, pt.TrainAcc, pt.TestAcc, pt.TestConfAcc)
	}

	if err := writeCSV(*outCsv, points); err != nil {
		logger.Error("Failed to write CSV", zap.Error(err))
	} else {
		logger.Info("Curve saved", zap.String("path", *outCsv))
	}
	if err := plotCurve(*outImg, cfg.Ensemble.ModelType, points); err != nil {
		logger.Error("Failed to write PNG", zap.Error(err))
	} else {
		logger.Info("Plot saved", zap.String("path", *outImg))
	}
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if m < 1 {
			return nil, fmt.Errorf("ensemble size must be >= 1, got %d", m)
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no ensemble sizes in %q", s)
	}
	sort.Ints(out)
	return out, nil
}

type point struct {
	Size         int
	TrainAcc     float64
	TestAcc      float64
	TrainConfAcc float64
	TestConfAcc  float64
}

// sweep grows one ensemble through the requested sizes. Each step trains only
// the missing members, relying on Train appending to the existing ones. A
// positive limit caps the training split.
func sweep(cfg config.Config, sizes []int, limit int, logger *zap.Logger) ([]point, error) {
	var ds *data.DataSet
	var err error
	if cfg.Data.Regen || cfg.Data.Path == "" {
		ds = data.GenerateSynthetic(cfg.Data.Synthetic)
	} else if ds, err = data.LoadCSV(cfg.Data.Path, data.WithSeed(cfg.Data.Seed)); err != nil {
		return nil, err
	}
	train, test, err := ds.TrainTestSplit(cfg.Data.TestSize)
	if err != nil {
		return nil, err
	}
	if test.Len() == 0 {
		test = train
	}
	if limit > 0 {
		train = train.Subset(limit)
	}
	if cfg.Data.Scale {
		sc, err := features.Fit(train)
		if err != nil {
			return nil, err
		}
		if train, err = sc.Transform(train, data.WithSeed(cfg.Data.Seed)); err != nil {
			return nil, err
		}
		if test, err = sc.Transform(test); err != nil {
			return nil, err
		}
	}

	ens := cfg.Ensemble
	ens.ReplaceOnRetrain = false
	bag := models.NewBagging(models.WithConfig(ens), models.WithLogger(logger))
	out := make([]point, 0, len(sizes))
	for _, m := range sizes {
		if missing := m - bag.Size(); missing > 0 {
			bag.SetEnsembleSize(missing)
			if err := bag.Train(train); err != nil {
				return nil, fmt.Errorf("size %d: %w", m, err)
			}
		}
		pt := point{Size: bag.Size()}
		bag.SetUseConfidenceVoting(false)
		if pt.TrainAcc, err = models.Accuracy(bag, train); err != nil {
			return nil, err
		}
		if pt.TestAcc, err = models.Accuracy(bag, test); err != nil {
			return nil, err
		}
		bag.SetUseConfidenceVoting(true)
		if pt.TrainConfAcc, err = models.Accuracy(bag, train); err != nil {
			return nil, err
		}
		if pt.TestConfAcc, err = models.Accuracy(bag, test); err != nil {
			return nil, err
		}
		logger.Info("Ensemble evaluated", zap.Int("size", pt.Size), zap.Float64("test_acc", pt.TestAcc), zap.Float64("test_conf_acc", pt.TestConfAcc))
		out = append(out, pt)
	}
	return out, nil
}

func writeCSV(path string, points []point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"size", "train_acc", "test_acc", "train_conf_acc", "test_conf_acc"}); err != nil {
		return err
	}
	for _, pt := range points {
		rec := []string{
			strconv.Itoa(pt.Size),
			fmt.Sprintf("%.6f", pt.TrainAcc),
			fmt.Sprintf("%.6f", pt.TestAcc),
			fmt.Sprintf("%.6f", pt.TrainConfAcc),
			fmt.Sprintf("%.6f", pt.TestConfAcc),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func plotCurve(path string, t models.ModelType, points []point) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Bagging accuracy by ensemble size (%s)", t)
	p.X.Label.Text = "Ensemble size"
	p.Y.Label.Text = "Accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	toXY := func(acc func(point) float64) plotter.XYs {
		pts := make(plotter.XYs, len(points))
		for i, pt := range points {
			pts[i].X = float64(pt.Size)
			pts[i].Y = acc(pt)
		}
		return pts
	}
	if err := plotutil.AddLinePoints(p,
		"Train", toXY(func(pt point) float64 { return pt.TrainAcc }),
		"Test", toXY(func(pt point) float64 { return pt.TestAcc }),
		"Test (confidence)", toXY(func(pt point) float64 { return pt.TestConfAcc }),
	); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

package data

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

type SyntheticConfig struct {
	N        int     `yaml:"n" toml:"n" validate:"gte=1"`
	Classes  int     `yaml:"classes" toml:"classes" validate:"gte=2"`
	Features int     `yaml:"features" toml:"features" validate:"gte=1"`
	Noise    float64 `yaml:"noise" toml:"noise" validate:"gte=0"`
	Seed     int64   `yaml:"seed" toml:"seed"`
}

func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{N: 2000, Classes: 2, Features: 4, Noise: 1.0, Seed: 1}
}

// GenerateSynthetic draws Gaussian blobs, one centre per class. Centres are
// spread on a grid 3 units apart so noise around 1 yields overlapping but
// learnable classes. Labels run 0..Classes-1.
func GenerateSynthetic(cfg SyntheticConfig) *DataSet {
	rng := rand.New(rand.NewSource(cfg.Seed))
	centres := make([][]float64, cfg.Classes)
	for c := range centres {
		centres[c] = make([]float64, cfg.Features)
		for j := range centres[c] {
			centres[c][j] = float64(rng.Intn(cfg.Classes+1)) * 3
		}
		centres[c][c%cfg.Features] += 3 * float64(c)
	}

	examples := make([]Example, cfg.N)
	for i := range examples {
		c := rng.Intn(cfg.Classes)
		v := make([]float64, cfg.Features)
		for j := range v {
			v[j] = centres[c][j] + rng.NormFloat64()*cfg.Noise
		}
		examples[i] = Example{Features: v, Label: float64(c)}
	}
	names := make([]string, cfg.Features)
	for j := range names {
		names[j] = "f" + strconv.Itoa(j)
	}
	return NewDataSet(examples, WithSeed(cfg.Seed+1), WithFeatureNames(names))
}

func WriteCSV(path string, ds *DataSet) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, 0, ds.NumFeatures()+1)
	for j := 0; j < ds.NumFeatures(); j++ {
		if j < len(ds.FeatureNames) {
			header = append(header, ds.FeatureNames[j])
		} else {
			header = append(header, "f"+strconv.Itoa(j))
		}
	}
	header = append(header, "label")
	if err := w.Write(header); err != nil {
		return err
	}
	for _, e := range ds.Examples {
		rec := make([]string, 0, len(e.Features)+1)
		for _, v := range e.Features {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		rec = append(rec, strconv.FormatFloat(e.Label, 'g', -1, 64))
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadCSV reads a header row followed by numeric rows whose last column is
// the label.
func LoadCSV(path string, opts ...Option) (*DataSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data: read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("data: %s: %w", path, ErrEmptyDataSet)
	}
	header := rows[0]
	examples := make([]Example, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("data: %s line %d: want %d columns, got %d", path, i+2, len(header), len(row))
		}
		v := make([]float64, len(row)-1)
		for j := range v {
			if v[j], err = strconv.ParseFloat(row[j], 64); err != nil {
				return nil, fmt.Errorf("data: %s line %d column %d: %w", path, i+2, j+1, err)
			}
		}
		label, err := strconv.ParseFloat(row[len(row)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("data: %s line %d label: %w", path, i+2, err)
		}
		examples = append(examples, Example{Features: v, Label: label})
	}
	opts = append([]Option{WithFeatureNames(header[:len(header)-1])}, opts...)
	return NewDataSet(examples, opts...), nil
}

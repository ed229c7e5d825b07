// Package config loads trainer and analyzer settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"bagging/internal/data"
	"bagging/internal/models"
)

var ErrUnsupportedFormat = errors.New("config: unsupported file format (want .yaml, .yml or .toml)")

type DataConfig struct {
	// Path of a CSV data set. Empty means generate one from Synthetic.
	Path      string               `yaml:"path" toml:"path"`
	Regen     bool                 `yaml:"regen" toml:"regen"`
	Synthetic data.SyntheticConfig `yaml:"synthetic" toml:"synthetic"`
	TestSize  float64              `yaml:"test_size" toml:"test_size" validate:"gte=0,lt=1"`
	Scale     bool                 `yaml:"scale" toml:"scale"`
	Seed      int64                `yaml:"seed" toml:"seed"`
}

type OutputConfig struct {
	Model  string `yaml:"model" toml:"model" validate:"required"`
	Report string `yaml:"report" toml:"report"`
}

type Config struct {
	Data     DataConfig           `yaml:"data" toml:"data"`
	Ensemble models.BaggingConfig `yaml:"ensemble" toml:"ensemble"`
	Output   OutputConfig         `yaml:"output" toml:"output"`
}

func Default() Config {
	return Config{
		Data: DataConfig{
			Path:      "data/synthetic.csv",
			Regen:     true,
			Synthetic: data.DefaultSyntheticConfig(),
			TestSize:  0.2,
			Scale:     true,
			Seed:      42,
		},
		Ensemble: models.DefaultBaggingConfig(),
		Output:   OutputConfig{Model: "models/bagging.gob", Report: "data/report.json"},
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &cfg)
	case ".toml":
		err = toml.Unmarshal(raw, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, Validate(cfg)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Validate(cfg Config) error {
	if err := cfg.Ensemble.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

package models

import (
	"fmt"
	"strings"
)

type ModelType int

const (
	DecisionTreeModel ModelType = iota
	KNNModel
	PerceptronModel
	GradientDescentModel
	TwoLayerNNModel
)

var modelTypeNames = [...]string{"dt", "knn", "perceptron", "gd", "nn"}

func (t ModelType) String() string {
	if t < 0 || int(t) >= len(modelTypeNames) {
		return fmt.Sprintf("ModelType(%d)", int(t))
	}
	return modelTypeNames[t]
}

func (t ModelType) Valid() bool { return t >= 0 && int(t) < len(modelTypeNames) }

func ParseModelType(s string) (ModelType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range modelTypeNames {
		if n == s {
			return ModelType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown model type %q (want dt|knn|perceptron|gd|nn)", ErrInvalidConfiguration, s)
}

func (t ModelType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown model type %d", ErrInvalidConfiguration, int(t))
	}
	return []byte(t.String()), nil
}

func (t *ModelType) UnmarshalText(b []byte) error {
	v, err := ParseModelType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// FactoryConfig selects a base learner and its positional hyperparameters.
//
//	dt:         [depth limit]
//	knn:        [k]
//	perceptron: [iterations]
//	gd:         [loss, regularization, lambda*100, eta*100, iterations]
//	nn:         [eta*100, iterations]
//
// An empty Params keeps the learner's defaults.
type FactoryConfig struct {
	Type   ModelType
	Params []int
}

type Factory func(FactoryConfig) (Classifier, error)

// NewClassifier returns a fresh, untrained classifier for cfg.
func NewClassifier(cfg FactoryConfig) (Classifier, error) {
	p := cfg.Params
	switch cfg.Type {
	case DecisionTreeModel:
		dt := NewDecisionTree()
		if len(p) > 0 {
			if err := arity(cfg, 1); err != nil {
				return nil, err
			}
			if p[0] < 0 {
				return nil, paramErr(cfg, "depth limit must be >= 0")
			}
			dt.MaxDepth = p[0]
		}
		return dt, nil
	case KNNModel:
		knn := NewKNN()
		if len(p) > 0 {
			if err := arity(cfg, 1); err != nil {
				return nil, err
			}
			if p[0] < 1 {
				return nil, paramErr(cfg, "k must be >= 1")
			}
			knn.K = p[0]
		}
		return knn, nil
	case PerceptronModel:
		pc := NewPerceptron()
		if len(p) > 0 {
			if err := arity(cfg, 1); err != nil {
				return nil, err
			}
			if p[0] < 1 {
				return nil, paramErr(cfg, "iterations must be >= 1")
			}
			pc.Iterations = p[0]
		}
		return pc, nil
	case GradientDescentModel:
		gd := NewGradientDescent()
		if len(p) > 0 {
			if err := arity(cfg, 5); err != nil {
				return nil, err
			}
			if p[0] < int(ExponentialLoss) || p[0] > int(SquaredLoss) {
				return nil, paramErr(cfg, "loss must be 0 (exponential), 1 (hinge) or 2 (squared)")
			}
			if p[1] < int(NoRegularization) || p[1] > int(L2Regularization) {
				return nil, paramErr(cfg, "regularization must be 0 (none), 1 (L1) or 2 (L2)")
			}
			if p[2] < 0 || p[3] <= 0 || p[4] < 1 {
				return nil, paramErr(cfg, "lambda*100 >= 0, eta*100 > 0, iterations >= 1")
			}
			gd.Loss = LossKind(p[0])
			gd.Regularization = RegularizationKind(p[1])
			gd.Lambda = float64(p[2]) / 100
			gd.Eta = float64(p[3]) / 100
			gd.Iterations = p[4]
		}
		return gd, nil
	case TwoLayerNNModel:
		nn := NewTwoLayerNN()
		if len(p) > 0 {
			if err := arity(cfg, 2); err != nil {
				return nil, err
			}
			if p[0] <= 0 || p[1] < 1 {
				return nil, paramErr(cfg, "eta*100 > 0, iterations >= 1")
			}
			nn.Eta = float64(p[0]) / 100
			nn.Iterations = p[1]
		}
		return nn, nil
	default:
		return nil, fmt.Errorf("%w: unknown model type %d", ErrInvalidConfiguration, int(cfg.Type))
	}
}

func arity(cfg FactoryConfig, want int) error {
	if len(cfg.Params) != want {
		return fmt.Errorf("%w: %s takes %d values, got %v", ErrInvalidHyperparameters, cfg.Type, want, cfg.Params)
	}
	return nil
}

func paramErr(cfg FactoryConfig, msg string) error {
	return fmt.Errorf("%w: %s %v: %s", ErrInvalidHyperparameters, cfg.Type, cfg.Params, msg)
}

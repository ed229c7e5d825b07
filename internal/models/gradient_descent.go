package models

import (
	"math"

	"bagging/internal/data"
)

type LossKind int

const (
	ExponentialLoss LossKind = iota
	HingeLoss
	SquaredLoss
)

type RegularizationKind int

const (
	NoRegularization RegularizationKind = iota
	L1Regularization
	L2Regularization
)

// exponential loss gradients are clipped at exp(maxExponent)
const maxExponent = 50

// GradientDescent is a linear classifier fitted by per-example gradient
// steps on the selected loss and regularizer.
type GradientDescent struct {
	Loss           LossKind
	Regularization RegularizationKind
	Lambda         float64
	Eta            float64
	Iterations     int
	Weights        []float64
	Bias           float64
	Labels         BinaryLabels
}

func NewGradientDescent() *GradientDescent {
	return &GradientDescent{Loss: ExponentialLoss, Regularization: NoRegularization, Lambda: 0.01, Eta: 0.01, Iterations: 10}
}

func (gd *GradientDescent) Name() string { return "GradientDescent" }

func (gd *GradientDescent) Train(ds *data.DataSet) error {
	labels, err := fitBinaryLabels(ds)
	if err != nil {
		return err
	}
	gd.Labels = labels
	gd.Weights = make([]float64, ds.NumFeatures())
	gd.Bias = 0
	for it := 0; it < gd.Iterations; it++ {
		for _, e := range ds.Examples {
			y := labels.target(e.Label)
			s, err := linearScore(gd.Weights, gd.Bias, e.Features)
			if err != nil {
				return err
			}
			g := gd.lossGradient(y, s)
			for j, v := range e.Features {
				gd.Weights[j] += gd.Eta * (g*v - gd.Lambda*gd.regGradient(gd.Weights[j]))
			}
			gd.Bias += gd.Eta * g
		}
	}
	return nil
}

// lossGradient is the negative derivative of the loss with respect to the
// score, so stepping along it lowers the loss.
func (gd *GradientDescent) lossGradient(y, s float64) float64 {
	switch gd.Loss {
	case HingeLoss:
		if y*s < 1 {
			return y
		}
		return 0
	case SquaredLoss:
		return y - s
	default:
		return y * math.Exp(math.Min(-y*s, maxExponent))
	}
}

func (gd *GradientDescent) regGradient(w float64) float64 {
	switch gd.Regularization {
	case L1Regularization:
		switch {
		case w > 0:
			return 1
		case w < 0:
			return -1
		}
		return 0
	case L2Regularization:
		return w
	default:
		return 0
	}
}

func (gd *GradientDescent) Classify(e data.Example) (float64, error) {
	s, err := linearScore(gd.Weights, gd.Bias, e.Features)
	if err != nil {
		return 0, err
	}
	return gd.Labels.label(s), nil
}

func (gd *GradientDescent) Confidence(e data.Example) (float64, error) {
	s, err := linearScore(gd.Weights, gd.Bias, e.Features)
	if err != nil {
		return 0, err
	}
	return abs(s), nil
}

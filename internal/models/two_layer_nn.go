package models

import (
	"math"
	"math/rand"

	"bagging/internal/data"
)

// TwoLayerNN has one tanh hidden layer and a single tanh output unit trained
// by online backpropagation on squared error. Weights start from a seeded
// generator so training is reproducible.
type TwoLayerNN struct {
	Eta         float64
	Iterations  int
	HiddenNodes int
	Seed        int64
	Hidden      [][]float64 // HiddenNodes x (features+1), last column is the bias
	Output      []float64   // HiddenNodes+1, last entry is the bias
	Labels      BinaryLabels
}

func NewTwoLayerNN() *TwoLayerNN {
	return &TwoLayerNN{Eta: 0.1, Iterations: 200, HiddenNodes: 3, Seed: 1}
}

func (nn *TwoLayerNN) Name() string { return "TwoLayerNN" }

func (nn *TwoLayerNN) Train(ds *data.DataSet) error {
	labels, err := fitBinaryLabels(ds)
	if err != nil {
		return err
	}
	nn.Labels = labels
	d := ds.NumFeatures()
	rng := rand.New(rand.NewSource(nn.Seed))
	initWeight := func() float64 { return rng.Float64()*0.2 - 0.1 }
	nn.Hidden = make([][]float64, nn.HiddenNodes)
	for k := range nn.Hidden {
		nn.Hidden[k] = make([]float64, d+1)
		for j := range nn.Hidden[k] {
			nn.Hidden[k][j] = initWeight()
		}
	}
	nn.Output = make([]float64, nn.HiddenNodes+1)
	for k := range nn.Output {
		nn.Output[k] = initWeight()
	}

	for it := 0; it < nn.Iterations; it++ {
		for _, e := range ds.Examples {
			if len(e.Features) != d {
				return ErrDimensionMismatch
			}
			y := labels.target(e.Label)
			h, out := nn.forward(e.Features)
			deltaOut := (y - out) * (1 - out*out)
			for k := range nn.Hidden {
				deltaK := deltaOut * nn.Output[k] * (1 - h[k]*h[k])
				for j, v := range e.Features {
					nn.Hidden[k][j] += nn.Eta * deltaK * v
				}
				nn.Hidden[k][d] += nn.Eta * deltaK
			}
			for k := range h {
				nn.Output[k] += nn.Eta * deltaOut * h[k]
			}
			nn.Output[nn.HiddenNodes] += nn.Eta * deltaOut
		}
	}
	return nil
}

func (nn *TwoLayerNN) forward(x []float64) ([]float64, float64) {
	d := len(x)
	h := make([]float64, len(nn.Hidden))
	out := nn.Output[len(nn.Hidden)]
	for k, w := range nn.Hidden {
		s := w[d]
		for j, v := range x {
			s += w[j] * v
		}
		h[k] = math.Tanh(s)
		out += nn.Output[k] * h[k]
	}
	return h, math.Tanh(out)
}

func (nn *TwoLayerNN) predict(e data.Example) (float64, error) {
	if len(nn.Hidden) == 0 {
		return 0, ErrUntrainedModel
	}
	if len(e.Features) != len(nn.Hidden[0])-1 {
		return 0, ErrDimensionMismatch
	}
	_, out := nn.forward(e.Features)
	return out, nil
}

func (nn *TwoLayerNN) Classify(e data.Example) (float64, error) {
	out, err := nn.predict(e)
	if err != nil {
		return 0, err
	}
	return nn.Labels.label(out), nil
}

func (nn *TwoLayerNN) Confidence(e data.Example) (float64, error) {
	out, err := nn.predict(e)
	if err != nil {
		return 0, err
	}
	return abs(out), nil
}

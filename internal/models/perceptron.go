package models

import "bagging/internal/data"

type Perceptron struct {
	Iterations int
	Weights    []float64
	Bias       float64
	Labels     BinaryLabels
}

func NewPerceptron() *Perceptron { return &Perceptron{Iterations: 10} }

func (p *Perceptron) Name() string { return "Perceptron" }

func (p *Perceptron) Train(ds *data.DataSet) error {
	labels, err := fitBinaryLabels(ds)
	if err != nil {
		return err
	}
	p.Labels = labels
	p.Weights = make([]float64, ds.NumFeatures())
	p.Bias = 0
	for it := 0; it < p.Iterations; it++ {
		for _, e := range ds.Examples {
			y := labels.target(e.Label)
			s, err := linearScore(p.Weights, p.Bias, e.Features)
			if err != nil {
				return err
			}
			if y*s <= 0 {
				for j, v := range e.Features {
					p.Weights[j] += y * v
				}
				p.Bias += y
			}
		}
	}
	return nil
}

func (p *Perceptron) Classify(e data.Example) (float64, error) {
	s, err := linearScore(p.Weights, p.Bias, e.Features)
	if err != nil {
		return 0, err
	}
	return p.Labels.label(s), nil
}

func (p *Perceptron) Confidence(e data.Example) (float64, error) {
	s, err := linearScore(p.Weights, p.Bias, e.Features)
	if err != nil {
		return 0, err
	}
	return abs(s), nil
}

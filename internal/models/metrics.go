package models

import "bagging/internal/data"

type Report struct {
	Model    string  `json:"model"`
	Examples int     `json:"examples"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

func Evaluate(c Classifier, ds *data.DataSet) (Report, error) {
	r := Report{Model: c.Name(), Examples: ds.Len()}
	var preds []float64
	if b, ok := c.(*Bagging); ok {
		p, err := b.ClassifyBatch(ds)
		if err != nil {
			return r, err
		}
		preds = p
	} else {
		preds = make([]float64, ds.Len())
		for i, e := range ds.Examples {
			p, err := c.Classify(e)
			if err != nil {
				return r, err
			}
			preds[i] = p
		}
	}
	for i, e := range ds.Examples {
		if preds[i] == e.Label {
			r.Correct++
		}
	}
	if r.Examples > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.Examples)
	}
	return r, nil
}

func Accuracy(c Classifier, ds *data.DataSet) (float64, error) {
	r, err := Evaluate(c, ds)
	return r.Accuracy, err
}

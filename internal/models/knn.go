package models

import (
	"sort"

	"bagging/internal/data"
)

// KNN keeps its training examples and votes among the K nearest (Euclidean).
// Confidence is the share of neighbours that voted for the winning label.
type KNN struct {
	K        int
	Examples []data.Example
}

func NewKNN() *KNN { return &KNN{K: 3} }

func (k *KNN) Name() string { return "KNN" }

func (k *KNN) Train(ds *data.DataSet) error {
	if ds.Len() == 0 {
		return ErrEmptyTrainingSet
	}
	if _, err := featureWidth(ds); err != nil {
		return err
	}
	k.Examples = append([]data.Example(nil), ds.Examples...)
	return nil
}

func (k *KNN) Classify(e data.Example) (float64, error) {
	label, _, err := k.vote(e)
	return label, err
}

func (k *KNN) Confidence(e data.Example) (float64, error) {
	_, conf, err := k.vote(e)
	return conf, err
}

func (k *KNN) vote(e data.Example) (float64, float64, error) {
	if len(k.Examples) == 0 {
		return 0, 0, ErrUntrainedModel
	}
	if len(e.Features) != len(k.Examples[0].Features) {
		return 0, 0, ErrDimensionMismatch
	}
	type neighbour struct {
		dist  float64
		label float64
	}
	ns := make([]neighbour, len(k.Examples))
	for i, t := range k.Examples {
		d := 0.0
		for j, v := range t.Features {
			dv := v - e.Features[j]
			d += dv * dv
		}
		ns[i] = neighbour{d, t.Label}
	}
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].dist < ns[j].dist })

	kk := k.K
	if kk > len(ns) {
		kk = len(ns)
	}
	votes := labelScores{}
	for _, n := range ns[:kk] {
		votes.add(n.label, 1)
	}
	label, count, _ := votes.best()
	return label, count / float64(kk), nil
}

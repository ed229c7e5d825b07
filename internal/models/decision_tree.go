package models

import (
	"math"
	"sort"

	"bagging/internal/data"
)

type DTNode struct {
	Feature   int
	Threshold float64
	Left      *DTNode
	Right     *DTNode
	IsLeaf    bool
	Label     float64
	Purity    float64
}

// DecisionTree is a Gini-split classification tree. MaxDepth is the depth
// limit: 0 yields a single majority leaf.
type DecisionTree struct {
	MaxDepth           int
	MinSamplesSplit    int
	MaxThresholdsPerFe int
	NumFeatures        int
	Root               *DTNode
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 6, MinSamplesSplit: 2, MaxThresholdsPerFe: 64}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Train(ds *data.DataSet) error {
	if ds.Len() == 0 {
		return ErrEmptyTrainingSet
	}
	width, err := featureWidth(ds)
	if err != nil {
		return err
	}
	idx := make([]int, ds.Len())
	for i := range idx {
		idx[i] = i
	}
	dt.NumFeatures = width
	dt.Root = dt.build(ds.Examples, idx, 0)
	return nil
}

func (dt *DecisionTree) Classify(e data.Example) (float64, error) {
	n, err := dt.leaf(e)
	if err != nil {
		return 0, err
	}
	return n.Label, nil
}

func (dt *DecisionTree) Confidence(e data.Example) (float64, error) {
	n, err := dt.leaf(e)
	if err != nil {
		return 0, err
	}
	return n.Purity, nil
}

func (dt *DecisionTree) leaf(e data.Example) (*DTNode, error) {
	n := dt.Root
	if n == nil {
		return nil, ErrUntrainedModel
	}
	if len(e.Features) != dt.NumFeatures {
		return nil, ErrDimensionMismatch
	}
	for !n.IsLeaf {
		if e.Features[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n, nil
}

func (dt *DecisionTree) build(ex []data.Example, idx []int, depth int) *DTNode {
	label, purity := majority(ex, idx)
	node := &DTNode{IsLeaf: true, Label: label, Purity: purity}
	if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || purity == 1 {
		return node
	}

	bestFeature := -1
	bestThr := 0.0
	bestImp := giniOf(ex, idx)
	var leftBest, rightBest []int
	for f := 0; f < dt.NumFeatures; f++ {
		for _, thr := range candidateThresholds(ex, idx, f, dt.MaxThresholdsPerFe) {
			l, r := splitIdx(ex, idx, f, thr)
			if len(l) == 0 || len(r) == 0 {
				continue
			}
			imp := weightedGini(ex, l, r)
			if imp < bestImp {
				bestImp = imp
				bestFeature = f
				bestThr = thr
				leftBest, rightBest = l, r
			}
		}
	}
	if bestFeature == -1 {
		return node
	}
	node.IsLeaf = false
	node.Feature = bestFeature
	node.Threshold = bestThr
	node.Left = dt.build(ex, leftBest, depth+1)
	node.Right = dt.build(ex, rightBest, depth+1)
	return node
}

// majority returns the most frequent label among idx and its share.
func majority(ex []data.Example, idx []int) (float64, float64) {
	counts := labelScores{}
	for _, i := range idx {
		counts.add(ex[i].Label, 1)
	}
	label, n, _ := counts.best()
	return label, n / float64(len(idx))
}

func giniOf(ex []data.Example, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	counts := map[float64]int{}
	for _, i := range idx {
		counts[ex[i].Label]++
	}
	// Sum in label order: map order would change the rounding and with it
	// the split chosen between near-equal candidates.
	labels := make([]float64, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Float64s(labels)
	g := 1.0
	for _, l := range labels {
		p := float64(counts[l]) / float64(len(idx))
		g -= p * p
	}
	return g
}

func weightedGini(ex []data.Example, l, r []int) float64 {
	wl := float64(len(l))
	wr := float64(len(r))
	n := wl + wr
	return (wl/n)*giniOf(ex, l) + (wr/n)*giniOf(ex, r)
}

func splitIdx(ex []data.Example, idx []int, f int, thr float64) ([]int, []int) {
	l := make([]int, 0, len(idx))
	r := make([]int, 0, len(idx))
	for _, i := range idx {
		if ex[i].Features[f] <= thr {
			l = append(l, i)
		} else {
			r = append(r, i)
		}
	}
	return l, r
}

// candidateThresholds returns midpoints between consecutive distinct values,
// evenly thinned to at most maxC.
func candidateThresholds(ex []data.Example, idx []int, f int, maxC int) []float64 {
	values := make([]float64, len(idx))
	for j, i := range idx {
		values[j] = ex[i].Features[f]
	}
	sort.Float64s(values)
	mids := make([]float64, 0, len(values))
	for j := 1; j < len(values); j++ {
		if values[j] != values[j-1] {
			mids = append(mids, (values[j]+values[j-1])/2)
		}
	}
	if maxC <= 0 || len(mids) <= maxC {
		return mids
	}
	out := make([]float64, 0, maxC)
	step := float64(len(mids)) / float64(maxC)
	for k := 0; k < maxC; k++ {
		out = append(out, mids[int(math.Floor(float64(k)*step))])
	}
	return out
}

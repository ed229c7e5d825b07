package data

import (
	"fmt"
	"math"
)

// Split draws a bootstrap sample of round(proportion*n) examples with
// replacement (at least one). The holdout holds the out-of-bag examples, in
// their original order. Every call produces a new resample.
func (ds *DataSet) Split(proportion float64) (train, holdout *DataSet, err error) {
	n := len(ds.Examples)
	if n == 0 {
		return nil, nil, ErrEmptyDataSet
	}
	if !(proportion > 0 && proportion <= 1) {
		return nil, nil, fmt.Errorf("%w: got %v", ErrInvalidProportion, proportion)
	}
	size := int(math.Round(proportion * float64(n)))
	if size < 1 {
		size = 1
	}

	drawn := make([]bool, n)
	sample := make([]Example, size)
	ds.mu.Lock()
	for i := 0; i < size; i++ {
		j := ds.rng.Intn(n)
		drawn[j] = true
		sample[i] = ds.Examples[j]
	}
	ds.mu.Unlock()

	oob := make([]Example, 0, n)
	for i, e := range ds.Examples {
		if !drawn[i] {
			oob = append(oob, e)
		}
	}
	return ds.derive(sample), ds.derive(oob), nil
}

// TrainTestSplit shuffles without replacement and holds out testFraction of
// the examples.
func (ds *DataSet) TrainTestSplit(testFraction float64) (train, test *DataSet, err error) {
	n := len(ds.Examples)
	if n == 0 {
		return nil, nil, ErrEmptyDataSet
	}
	if !(testFraction >= 0 && testFraction < 1) {
		return nil, nil, fmt.Errorf("data: test fraction must be in [0, 1): got %v", testFraction)
	}
	ds.mu.Lock()
	idx := ds.rng.Perm(n)
	ds.mu.Unlock()

	nTest := int(float64(n) * testFraction)
	testEx := make([]Example, 0, nTest)
	trainEx := make([]Example, 0, n-nTest)
	for i, j := range idx {
		if i < nTest {
			testEx = append(testEx, ds.Examples[j])
		} else {
			trainEx = append(trainEx, ds.Examples[j])
		}
	}
	return ds.derive(trainEx), ds.derive(testEx), nil
}

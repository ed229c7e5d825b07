package data

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"
)

var (
	ErrEmptyDataSet      = errors.New("data: empty data set")
	ErrInvalidProportion = errors.New("data: proportion must be in (0, 1]")
)

type Example struct {
	Features []float64 `json:"features"`
	Label    float64   `json:"label"`
}

// DataSet is an ordered collection of examples. Resampling draws from a
// private generator, so Split and TrainTestSplit are safe for concurrent use.
type DataSet struct {
	Examples     []Example
	FeatureNames []string

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*DataSet)

func WithSeed(seed int64) Option {
	return func(ds *DataSet) { ds.rng = rand.New(rand.NewSource(seed)) }
}

func WithFeatureNames(names []string) Option {
	return func(ds *DataSet) { ds.FeatureNames = append([]string(nil), names...) }
}

func NewDataSet(examples []Example, opts ...Option) *DataSet {
	ds := &DataSet{Examples: examples}
	for _, o := range opts {
		o(ds)
	}
	if ds.rng == nil {
		ds.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return ds
}

func (ds *DataSet) Len() int { return len(ds.Examples) }

func (ds *DataSet) NumFeatures() int {
	if len(ds.Examples) == 0 {
		return len(ds.FeatureNames)
	}
	return len(ds.Examples[0].Features)
}

// Labels returns the distinct labels in ascending order.
func (ds *DataSet) Labels() []float64 {
	seen := map[float64]bool{}
	out := []float64{}
	for _, e := range ds.Examples {
		if !seen[e.Label] {
			seen[e.Label] = true
			out = append(out, e.Label)
		}
	}
	sort.Float64s(out)
	return out
}

// Subset returns a data set sharing the first n examples.
func (ds *DataSet) Subset(n int) *DataSet {
	n = max(0, min(n, len(ds.Examples)))
	return ds.derive(ds.Examples[:n])
}

// derive builds a child data set whose generator is seeded from the parent's,
// keeping seeded pipelines reproducible. Callers must not hold ds.mu.
func (ds *DataSet) derive(examples []Example) *DataSet {
	ds.mu.Lock()
	seed := ds.rng.Int63()
	ds.mu.Unlock()
	return NewDataSet(examples, WithSeed(seed), WithFeatureNames(ds.FeatureNames))
}

package models

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bagging/internal/data"
)

// BaggingConfig holds the ensemble settings. Hyperparameters are forwarded
// verbatim to the factory for every member.
type BaggingConfig struct {
	ModelType           ModelType `yaml:"model_type" toml:"model_type" json:"model_type"`
	EnsembleSize        int       `yaml:"ensemble_size" toml:"ensemble_size" json:"ensemble_size" validate:"gte=1"`
	SampleProportion    float64   `yaml:"sample_proportion" toml:"sample_proportion" json:"sample_proportion" validate:"gt=0,lte=1"`
	UseConfidenceVoting bool      `yaml:"use_confidence_voting" toml:"use_confidence_voting" json:"use_confidence_voting"`
	Hyperparameters     []int     `yaml:"hyperparameters" toml:"hyperparameters" json:"hyperparameters"`
	Workers             int       `yaml:"workers" toml:"workers" json:"workers" validate:"gte=0"`
	// ReplaceOnRetrain makes a repeated Train replace the members instead of
	// appending EnsembleSize more.
	ReplaceOnRetrain bool `yaml:"replace_on_retrain" toml:"replace_on_retrain" json:"replace_on_retrain"`
}

func DefaultBaggingConfig() BaggingConfig {
	return BaggingConfig{ModelType: DecisionTreeModel, EnsembleSize: 10, SampleProportion: 0.5}
}

func (c BaggingConfig) Validate() error {
	var err error
	if !c.ModelType.Valid() {
		err = multierr.Append(err, fmt.Errorf("unknown model type %d", int(c.ModelType)))
	}
	if c.EnsembleSize < 1 {
		err = multierr.Append(err, fmt.Errorf("ensemble size must be >= 1, got %d", c.EnsembleSize))
	}
	if !(c.SampleProportion > 0 && c.SampleProportion <= 1) {
		err = multierr.Append(err, fmt.Errorf("sample proportion must be in (0, 1], got %v", c.SampleProportion))
	}
	if c.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

// Bagging trains EnsembleSize members on bootstrap samples and combines them
// by majority vote or, when UseConfidenceVoting is set, by summed confidence.
// Ties go to the smallest label.
type Bagging struct {
	mu      sync.RWMutex
	cfg     BaggingConfig
	factory Factory
	logger  *zap.Logger
	members []Classifier
}

var _ Classifier = (*Bagging)(nil)

type Option func(*Bagging)

func WithConfig(cfg BaggingConfig) Option {
	return func(b *Bagging) {
		cfg.Hyperparameters = append([]int(nil), cfg.Hyperparameters...)
		b.cfg = cfg
	}
}

func WithLogger(l *zap.Logger) Option { return func(b *Bagging) { b.logger = l } }

func WithFactory(f Factory) Option { return func(b *Bagging) { b.factory = f } }

func WithWorkers(n int) Option { return func(b *Bagging) { b.cfg.Workers = n } }

func NewBagging(opts ...Option) *Bagging {
	b := &Bagging{cfg: DefaultBaggingConfig(), factory: NewClassifier, logger: zap.NewNop()}
	for _, o := range opts {
		o(b)
	}
	return b
}

func NewBaggingWith(modelType ModelType, m int, p float64, params ...int) *Bagging {
	b := NewBagging()
	b.SetHyperparameters(modelType, m, p)
	if len(params) > 0 {
		b.SetSubclassifierHyperparameters(params)
	}
	return b
}

func (b *Bagging) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return fmt.Sprintf("Bagging(%s x%d)", b.cfg.ModelType, len(b.members))
}

func (b *Bagging) SetModelType(t ModelType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.ModelType = t
}

func (b *Bagging) SetEnsembleSize(m int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.EnsembleSize = m
}

func (b *Bagging) SetSampleProportion(p float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.SampleProportion = p
}

func (b *Bagging) SetUseConfidenceVoting(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.UseConfidenceVoting = on
}

func (b *Bagging) SetHyperparameters(t ModelType, m int, p float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.ModelType = t
	b.cfg.EnsembleSize = m
	b.cfg.SampleProportion = p
}

// SetSubclassifierHyperparameters sets the vector handed to the factory for
// members trained from now on. Trained members keep theirs.
func (b *Bagging) SetSubclassifierHyperparameters(params []int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.Hyperparameters = append([]int(nil), params...)
}

func (b *Bagging) Config() BaggingConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cfg := b.cfg
	cfg.Hyperparameters = append([]int(nil), cfg.Hyperparameters...)
	return cfg
}

func (b *Bagging) factoryConfig() FactoryConfig {
	return FactoryConfig{Type: b.cfg.ModelType, Params: append([]int(nil), b.cfg.Hyperparameters...)}
}

// SingleClassifier returns a fresh, untrained classifier configured like the
// members.
func (b *Bagging) SingleClassifier() (Classifier, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.factory(b.factoryConfig())
}

func (b *Bagging) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.members)
}

func (b *Bagging) Members() []Classifier {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Classifier(nil), b.members...)
}

func (b *Bagging) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.members = nil
}

// Train fits EnsembleSize new members, each on its own bootstrap sample of
// ds. Samples are drawn in member order before any training starts, so a
// seeded data set gives the same ensemble whether training runs sequentially
// or across Workers goroutines. Any collaborator error aborts the call and
// leaves the existing members untouched.
func (b *Bagging) Train(ds *data.DataSet) error {
	if ds == nil {
		return data.ErrEmptyDataSet
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.cfg.Validate(); err != nil {
		return err
	}

	m := b.cfg.EnsembleSize
	fc := b.factoryConfig()
	samples := make([]*data.DataSet, m)
	built := make([]Classifier, m)
	for i := 0; i < m; i++ {
		train, _, err := ds.Split(b.cfg.SampleProportion)
		if err != nil {
			b.logger.Error("bootstrap sample failed", zap.Int("member", i), zap.Error(err))
			return err
		}
		c, err := b.factory(fc)
		if err != nil {
			b.logger.Error("classifier factory failed", zap.Int("member", i), zap.Stringer("model_type", fc.Type), zap.Error(err))
			return err
		}
		samples[i], built[i] = train, c
	}

	fit := func(i int) error {
		if err := built[i].Train(samples[i]); err != nil {
			b.logger.Error("member training failed", zap.Int("member", i), zap.String("model", built[i].Name()), zap.Error(err))
			return err
		}
		b.logger.Debug("member trained", zap.Int("member", i), zap.Int("sample_size", samples[i].Len()))
		return nil
	}
	if b.cfg.Workers > 1 {
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(b.cfg.Workers)
		for i := 0; i < m; i++ {
			i := i
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				return fit(i)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for i := 0; i < m; i++ {
			if err := fit(i); err != nil {
				return err
			}
		}
	}

	if b.cfg.ReplaceOnRetrain {
		b.members = built
	} else {
		b.members = append(b.members, built...)
	}
	b.logger.Info("ensemble trained",
		zap.Stringer("model_type", fc.Type),
		zap.Int("added", m),
		zap.Int("size", len(b.members)),
		zap.Float64("sample_proportion", b.cfg.SampleProportion),
		zap.Int("workers", b.cfg.Workers),
	)
	return nil
}

// tally accumulates one score per predicted label: a vote each, or the
// member's confidence when weighted.
func (b *Bagging) tally(e data.Example, weighted bool) (labelScores, error) {
	if len(b.members) == 0 {
		return nil, ErrUntrainedModel
	}
	scores := labelScores{}
	for _, c := range b.members {
		label, err := c.Classify(e)
		if err != nil {
			return nil, err
		}
		w := 1.0
		if weighted {
			if w, err = c.Confidence(e); err != nil {
				return nil, err
			}
		}
		scores.add(label, w)
	}
	return scores, nil
}

func (b *Bagging) winner(e data.Example, weighted bool) (float64, float64, error) {
	scores, err := b.tally(e, weighted)
	if err != nil {
		return 0, 0, err
	}
	label, score, _ := scores.best()
	return label, score, nil
}

// Classify returns the label with the most member votes, or delegates to
// ClassifyUsingConfidence when confidence voting is on.
func (b *Bagging) Classify(e data.Example) (float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	label, _, err := b.winner(e, b.cfg.UseConfidenceVoting)
	return label, err
}

// ClassifyUsingConfidence returns the label with the largest summed member
// confidence, whatever the voting flag says.
func (b *Bagging) ClassifyUsingConfidence(e data.Example) (float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	label, _, err := b.winner(e, true)
	return label, err
}

// Confidence is the summed confidence of the members that agree with the
// confidence-weighted winner. It is not normalized.
func (b *Bagging) Confidence(e data.Example) (float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, score, err := b.winner(e, true)
	return score, err
}

// Votes returns the tally for e under the active voting mode, best first.
func (b *Bagging) Votes(e data.Example) ([]LabelScore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	scores, err := b.tally(e, b.cfg.UseConfidenceVoting)
	if err != nil {
		return nil, err
	}
	return scores.ranked(), nil
}

// Prediction describes one query: the label Classify returns, the summed
// confidence of the members that voted for it and the ranked tally of the
// active voting mode.
type Prediction struct {
	Label      float64      `json:"label"`
	Confidence float64      `json:"confidence"`
	Votes      []LabelScore `json:"votes"`
}

// Predict asks every member once and reports the winner under the active
// voting mode. Unlike Confidence, the confidence returned always belongs to
// Label, also when majority voting picks a different label than the
// confidence-weighted tally would.
func (b *Bagging) Predict(e data.Example) (Prediction, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.members) == 0 {
		return Prediction{}, ErrUntrainedModel
	}
	counts, conf := labelScores{}, labelScores{}
	for _, c := range b.members {
		label, err := c.Classify(e)
		if err != nil {
			return Prediction{}, err
		}
		w, err := c.Confidence(e)
		if err != nil {
			return Prediction{}, err
		}
		counts.add(label, 1)
		conf.add(label, w)
	}
	active := counts
	if b.cfg.UseConfidenceVoting {
		active = conf
	}
	label, _, _ := active.best()
	return Prediction{Label: label, Confidence: conf[label], Votes: active.ranked()}, nil
}

// ClassifyBatch classifies every example of ds, spreading the work over
// Workers goroutines. Output order follows ds.
func (b *Bagging) ClassifyBatch(ds *data.DataSet) ([]float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.members) == 0 {
		return nil, ErrUntrainedModel
	}
	if ds == nil {
		return nil, data.ErrEmptyDataSet
	}
	weighted := b.cfg.UseConfidenceVoting
	out := make([]float64, ds.Len())
	var g errgroup.Group
	g.SetLimit(max(b.cfg.Workers, 1))
	for i, e := range ds.Examples {
		i, e := i, e
		g.Go(func() error {
			label, _, err := b.winner(e, weighted)
			if err != nil {
				return fmt.Errorf("example %d: %w", i, err)
			}
			out[i] = label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

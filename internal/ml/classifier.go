// Package ml provides the direction classifier: a binary probabilistic model
// that learns, from the indicator table of a price series, whether the next
// close will be higher than the current one.
//
// Two variants share the Classifier contract: a regularised logistic
// regression ("simple") and a gradient boosted tree ensemble ("advanced").
// Callers pick one by Kind. Each Train call is a full refit; fitted
// parameters are replaced atomically on success, so concurrent predictions
// always read a complete model and a failed fit leaves the previous one intact.
package ml

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"direction-bot/internal/features"
	"direction-bot/internal/labels"
	"direction-bot/internal/market"

	"github.com/rs/zerolog/log"
)

// Kind selects a classifier variant.
type Kind string

const (
	Simple   Kind = "simple"
	Advanced Kind = "advanced"
)

// ParseKind maps a configuration value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Simple, Advanced:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown model kind %q (want %q or %q)", s, Simple, Advanced)
}

// Prediction is the probability of an upward move and the derived label.
type Prediction struct {
	Probability float64 `json:"probability"`
	Up          bool    `json:"up"`
}

// NewPrediction derives the label from p; exactly 0.5 is not up.
func NewPrediction(p float64) Prediction {
	return Prediction{Probability: p, Up: p > 0.5}
}

// Classifier is the contract shared by both variants.
type Classifier interface {
	Train(series market.Series) error
	Predict(series market.Series) (Prediction, error)
	Trained() bool
	Kind() Kind
	Info() Info
}

// MetricsInterface defines metrics methods needed by the classifier
type MetricsInterface interface {
	MLTrainingsInc()
	MLTrainingFailuresInc()
	MLTrainingDurationObserve(float64)
	MLTrainingRowsSet(float64)
	MLPredictionsInc()
	MLFailuresInc()
	MLLatencyObserve(float64)
	MLPredictionScoresObserve(float64)
}

// Info describes the current state of a model.
type Info struct {
	Kind         Kind      `json:"kind"`
	Trained      bool      `json:"trained"`
	TrainingRows int       `json:"training_rows"`
	PositiveRate float64   `json:"positive_rate"`
	TrainedAt    time.Time `json:"trained_at,omitempty"`
	Features     []string  `json:"features"`
}

// estimator learns parameters from a training set.
type estimator interface {
	fit(x [][]float64, y []bool) (scorer, error)
}

// scorer returns P(up) for one feature vector.
type scorer interface {
	probability(x []float64) float64
}

type fitted struct {
	scorer       scorer
	rows         int
	positiveRate float64
	trainedAt    time.Time
}

// Model wraps an estimator with the untrained/trained lifecycle.
type Model struct {
	kind      Kind
	estimator estimator
	metrics   MetricsInterface
	current   atomic.Pointer[fitted]
}

// New builds an untrained model of the kind named in opts.
func New(opts Options) (*Model, error) {
	opts = opts.withDefaults()
	switch opts.Kind {
	case Simple:
		return NewLinear(opts), nil
	case Advanced:
		return NewBoosted(opts), nil
	}
	return nil, fmt.Errorf("unknown model kind %q", opts.Kind)
}

// NewLinear builds an untrained logistic regression model.
func NewLinear(opts Options) *Model {
	opts = opts.withDefaults()
	return &Model{
		kind: Simple,
		estimator: LogisticRegression{
			C:         opts.C,
			MaxIter:   opts.MaxIter,
			Tolerance: opts.Tolerance,
		},
		metrics: opts.Metrics,
	}
}

// NewBoosted builds an untrained gradient boosted tree model.
func NewBoosted(opts Options) *Model {
	opts = opts.withDefaults()
	return &Model{
		kind: Advanced,
		estimator: GradientBoosting{
			Estimators:     opts.Estimators,
			LearningRate:   opts.LearningRate,
			MaxDepth:       opts.MaxDepth,
			MinSamplesLeaf: opts.MinSamplesLeaf,
		},
		metrics: opts.Metrics,
	}
}

func (m *Model) Kind() Kind { return m.kind }

// Trained reports whether a Train call has succeeded.
func (m *Model) Trained() bool { return m.current.Load() != nil }

// Info reports the model kind and, once trained, the training summary.
func (m *Model) Info() Info {
	info := Info{Kind: m.kind, Features: append([]string(nil), features.Names[:]...)}
	if f := m.current.Load(); f != nil {
		info.Trained = true
		info.TrainingRows = f.rows
		info.PositiveRate = f.positiveRate
		info.TrainedAt = f.trainedAt
	}
	return info
}

// Train fits the model on every labelled feature row of series, replacing
// any previous fit. On error the previous state is left unchanged.
func (m *Model) Train(series market.Series) error {
	start := time.Now()

	x, y, err := TrainingSet(series)
	if err != nil {
		m.trainingFailed()
		return err
	}

	s, err := m.estimator.fit(x, y)
	if err != nil {
		m.trainingFailed()
		return fmt.Errorf("fit %s model: %w", m.kind, err)
	}

	m.current.Store(&fitted{
		scorer:       s,
		rows:         len(x),
		positiveRate: positiveRate(y),
		trainedAt:    time.Now(),
	})

	if m.metrics != nil {
		m.metrics.MLTrainingsInc()
		m.metrics.MLTrainingRowsSet(float64(len(x)))
		m.metrics.MLTrainingDurationObserve(time.Since(start).Seconds())
	}

	log.Debug().
		Str("kind", string(m.kind)).
		Int("rows", len(x)).
		Dur("took", time.Since(start)).
		Msg("model trained")
	return nil
}

// Predict scores the most recent row of series.
func (m *Model) Predict(series market.Series) (Prediction, error) {
	start := time.Now()

	f := m.current.Load()
	if f == nil {
		m.predictionFailed()
		return Prediction{}, ErrNotTrained
	}

	row, ok := features.Latest(series)
	if !ok {
		m.predictionFailed()
		return Prediction{}, fmt.Errorf("%w: latest of %d observations lacks complete history", ErrInsufficientData, series.Len())
	}

	p := clampProbability(f.scorer.probability(row.Vector()))
	pred := NewPrediction(p)

	if m.metrics != nil {
		m.metrics.MLPredictionsInc()
		m.metrics.MLPredictionScoresObserve(p)
		m.metrics.MLLatencyObserve(time.Since(start).Seconds())
	}
	return pred, nil
}

func (m *Model) trainingFailed() {
	if m.metrics != nil {
		m.metrics.MLTrainingFailuresInc()
	}
}

func (m *Model) predictionFailed() {
	if m.metrics != nil {
		m.metrics.MLFailuresInc()
	}
}

// TrainingSet returns the feature vectors and labels of every index that has
// both a complete feature row and a next observation.
func TrainingSet(series market.Series) ([][]float64, []bool, error) {
	table := features.Compute(series)
	lbl := labels.Generate(series, table.Indices())

	x := make([][]float64, 0, len(lbl))
	y := make([]bool, 0, len(lbl))
	for _, r := range table.Rows {
		up, ok := lbl[r.Index]
		if !ok {
			continue
		}
		x = append(x, r.Vector())
		y = append(y, up)
	}

	if len(x) == 0 {
		return nil, nil, fmt.Errorf("%w: no labelled feature rows in %d observations", ErrInsufficientData, series.Len())
	}
	return x, y, nil
}

func positiveRate(y []bool) float64 {
	var pos int
	for _, v := range y {
		if v {
			pos++
		}
	}
	return float64(pos) / float64(len(y))
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 0.5
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

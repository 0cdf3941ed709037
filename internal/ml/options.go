package ml

// Options configures both classifier variants; fields that do not apply to
// the selected Kind are ignored.
type Options struct {
	Kind Kind

	// Logistic regression.
	C         float64 // inverse L2 regularisation strength
	MaxIter   int
	Tolerance float64

	// Gradient boosting.
	Estimators     int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int

	Metrics MetricsInterface
}

// DefaultOptions returns the defaults for kind.
func DefaultOptions(kind Kind) Options {
	return Options{Kind: kind}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Kind == "" {
		o.Kind = Advanced
	}
	if o.C <= 0 {
		o.C = 1.0
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 100
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-8
	}
	if o.Estimators <= 0 {
		o.Estimators = 200
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 0.1
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 3
	}
	if o.MinSamplesLeaf <= 0 {
		o.MinSamplesLeaf = 1
	}
	return o
}

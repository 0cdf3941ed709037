// Package metrics provides Prometheus metrics for the prediction bot.
// It covers model training and inference, the decision and order path,
// user notifications and general error counts, all exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	// Model metrics
	MLTrainings        prometheus.Counter   // Successful training runs
	MLTrainingFailures prometheus.Counter   // Failed training runs
	MLTrainingDuration prometheus.Histogram // Training wall time in seconds
	MLTrainingRows     prometheus.Gauge     // Rows in the last successful training set
	MLModelTrained     prometheus.Gauge     // 1 once a model is trained
	MLPredictions      prometheus.Counter   // Predictions served
	MLFailures         prometheus.Counter   // Predictions that failed
	MLLatency          prometheus.Histogram // Prediction latency in seconds
	MLPredictionScores prometheus.Histogram // Distribution of P(up)

	// Cycle and order metrics
	Cycles                 prometheus.Counter   // Inference cycles started
	TradesSkipped          prometheus.Counter   // Cycles below the confidence threshold
	OrdersTotal            prometheus.Counter   // Orders accepted by the venue
	OrderFailures          prometheus.Counter   // Orders the venue refused or failed
	OrderExecutionDuration prometheus.Histogram // Venue round trip in seconds

	// Notification metrics
	Notifications        prometheus.Counter
	NotificationFailures prometheus.Counter

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		MLTrainings: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_trainings_total",
			Help: "Total number of successful model trainings",
		}),
		MLTrainingFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_training_failures_total",
			Help: "Total number of failed model trainings",
		}),
		MLTrainingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_training_duration_seconds",
			Help:    "Model training duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		MLTrainingRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ml_training_rows",
			Help: "Number of labelled rows in the last training set",
		}),
		MLModelTrained: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ml_model_trained",
			Help: "Whether the session holds a trained model (1) or not (0)",
		}),
		MLPredictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of ML predictions made",
		}),
		MLFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_failures_total",
			Help: "Total number of ML prediction failures",
		}),
		MLLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_latency_seconds",
			Help:    "ML prediction latency in seconds (features included)",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		MLPredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_prediction_scores",
			Help:    "Distribution of predicted probabilities of an upward move",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "cycles_total",
			Help: "Total number of inference cycles run",
		}),
		TradesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "trades_skipped_total",
			Help: "Total number of cycles whose confidence was below the threshold",
		}),
		OrdersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of orders placed",
		}),
		OrderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "order_failures_total",
			Help: "Total number of orders that failed at the venue",
		}),
		OrderExecutionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "order_execution_duration_seconds",
			Help:    "Duration of order execution attempts in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		Notifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of messages delivered to the user",
		}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Total number of messages that could not be delivered",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}

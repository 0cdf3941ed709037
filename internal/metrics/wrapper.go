package metrics

// MetricsWrapper adapts Metrics to the narrow interfaces of the ml and exec
// packages.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

// ml.MetricsInterface

func (w *MetricsWrapper) MLTrainingsInc()        { w.m.MLTrainings.Inc() }
func (w *MetricsWrapper) MLTrainingFailuresInc() { w.m.MLTrainingFailures.Inc() }

func (w *MetricsWrapper) MLTrainingDurationObserve(v float64) { w.m.MLTrainingDuration.Observe(v) }
func (w *MetricsWrapper) MLTrainingRowsSet(v float64)         { w.m.MLTrainingRows.Set(v) }

func (w *MetricsWrapper) MLPredictionsInc() { w.m.MLPredictions.Inc() }
func (w *MetricsWrapper) MLFailuresInc()    { w.m.MLFailures.Inc() }

func (w *MetricsWrapper) MLLatencyObserve(v float64)          { w.m.MLLatency.Observe(v) }
func (w *MetricsWrapper) MLPredictionScoresObserve(v float64) { w.m.MLPredictionScores.Observe(v) }

// exec.MetricsInterface

func (w *MetricsWrapper) CyclesInc()        { w.m.Cycles.Inc() }
func (w *MetricsWrapper) TradesSkippedInc() { w.m.TradesSkipped.Inc() }
func (w *MetricsWrapper) OrdersInc()        { w.m.OrdersTotal.Inc() }
func (w *MetricsWrapper) OrderFailuresInc() { w.m.OrderFailures.Inc() }

func (w *MetricsWrapper) OrderDurationObserve(v float64) { w.m.OrderExecutionDuration.Observe(v) }

func (w *MetricsWrapper) NotificationsInc()        { w.m.Notifications.Inc() }
func (w *MetricsWrapper) NotificationFailuresInc() { w.m.NotificationFailures.Inc() }
func (w *MetricsWrapper) ErrorsInc()               { w.m.ErrorsTotal.Inc() }

func (w *MetricsWrapper) ModelTrainedSet(trained bool) {
	if trained {
		w.m.MLModelTrained.Set(1)
		return
	}
	w.m.MLModelTrained.Set(0)
}

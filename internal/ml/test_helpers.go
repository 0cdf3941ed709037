package ml

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu               sync.Mutex
	trainings        int
	trainingFailures int
	trainingSeconds  float64
	trainingRows     float64
	predictions      int
	failures         int
	latencySum       float64
	predictionScores []float64
}

func (m *MockMetrics) MLTrainingsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainings++
}

func (m *MockMetrics) MLTrainingFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainingFailures++
}

func (m *MockMetrics) MLTrainingDurationObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainingSeconds += v
}

func (m *MockMetrics) MLTrainingRowsSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainingRows = v
}

func (m *MockMetrics) MLPredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) MLFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) MLLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) MLPredictionScoresObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionScores = append(m.predictionScores, v)
}

// Package exec runs the prediction cycle: score the latest prices, tell the
// user, decide, and forward any trade to the venue.
package exec

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"direction-bot/internal/decision"
	"direction-bot/internal/exchange"
	"direction-bot/internal/market"
	"direction-bot/internal/ml"
	"direction-bot/internal/notify"
	"direction-bot/internal/storage"

	"github.com/rs/zerolog/log"
)

// User-facing replies.
const (
	msgNotTrained   = "Model not trained yet."
	msgNotEnough    = "Not enough data for indicators"
	msgPredictError = "Error during prediction"
	msgTradePlaced  = "Demo trade placed"
)

// MetricsInterface defines metrics methods needed by the session
type MetricsInterface interface {
	CyclesInc()
	TradesSkippedInc()
	OrdersInc()
	OrderFailuresInc()
	OrderDurationObserve(float64)
	NotificationsInc()
	NotificationFailuresInc()
	ErrorsInc()
	ModelTrainedSet(bool)
}

// Journal records predictions and orders.
type Journal interface {
	StorePrediction(storage.PredictionRecord) error
	StoreOrder(storage.OrderRecord) error
}

// Config holds the trade parameters and how to build a fresh model.
type Config struct {
	Policy         decision.Policy
	HorizonMinutes int
	NewModel       func() (ml.Classifier, error)
}

// Outcome is the result of one cycle.
type Outcome struct {
	Pair        string                     `json:"pair"`
	Prediction  *ml.Prediction             `json:"prediction,omitempty"`
	Instruction *decision.TradeInstruction `json:"instruction,omitempty"`
	Order       *exchange.OrderReference   `json:"order,omitempty"`
	Messages    []string                   `json:"messages"`
	Error       string                     `json:"error,omitempty"`
}

// Session is the explicit per-process context shared by every request
// handler. Cycles run one at a time.
type Session struct {
	cfg     Config
	venue   exchange.Venue
	metrics MetricsInterface
	journal Journal
	now     func() time.Time

	mu     sync.Mutex
	model  ml.Classifier
	series market.Series
}

func New(c Config, model ml.Classifier, series market.Series, venue exchange.Venue, m MetricsInterface) *Session {
	s := &Session{
		cfg:     c,
		venue:   venue,
		metrics: m,
		now:     time.Now,
		model:   model,
		series:  series,
	}
	s.reportTrained()
	return s
}

// SetJournal enables journalling of predictions and orders.
func (s *Session) SetJournal(j Journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = j
}

// Info describes the current model, or reports false without one.
func (s *Session) Info() (ml.Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return ml.Info{}, false
	}
	return s.model.Info(), true
}

// Series returns the price series cycles are scored on.
func (s *Session) Series() market.Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.series
}

// UpdateSeries replaces the price series used by later cycles.
func (s *Session) UpdateSeries(series market.Series) error {
	if err := series.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = series
	return nil
}

// Retrain fits a new model on series and, on success, swaps both the model
// and the series in. On error the session keeps its current model.
func (s *Session) Retrain(series market.Series) error {
	if s.cfg.NewModel == nil {
		return errors.New("retrain: no model factory configured")
	}
	if err := series.Validate(); err != nil {
		return fmt.Errorf("retrain: %w", err)
	}
	model, err := s.cfg.NewModel()
	if err != nil {
		return fmt.Errorf("retrain: %w", err)
	}
	if err := model.Train(series); err != nil {
		s.errorsInc()
		return fmt.Errorf("retrain: %w", err)
	}

	s.mu.Lock()
	s.model = model
	s.series = series
	s.mu.Unlock()

	s.reportTrained()
	log.Info().
		Str("kind", string(model.Kind())).
		Int("observations", series.Len()).
		Msg("model retrained")
	return nil
}

// Cycle runs one prediction cycle and sends every user-facing message to
// reply. The returned error is the first failure, already reported to reply.
func (s *Session) Cycle(ctx context.Context, reply notify.Notifier) (Outcome, error) {
	if s.metrics != nil {
		s.metrics.CyclesInc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	policy := s.cfg.Policy
	out := Outcome{Pair: policy.Pair}
	say := func(text string) {
		out.Messages = append(out.Messages, text)
		s.notify(ctx, reply, text)
	}

	if s.model == nil || !s.model.Trained() {
		say(msgNotTrained)
		out.Error = ml.ErrNotTrained.Error()
		return out, ml.ErrNotTrained
	}

	pred, err := s.model.Predict(s.series)
	if err != nil {
		s.errorsInc()
		log.Error().Err(err).Str("pair", policy.Pair).Msg("prediction failed")
		if errors.Is(err, ml.ErrInsufficientData) {
			say(msgNotEnough)
		} else {
			say(msgPredictError)
		}
		out.Error = err.Error()
		return out, err
	}
	out.Prediction = &pred
	say(PredictionMessage(policy.Pair, s.cfg.HorizonMinutes, pred))

	instr, ok := policy.Decide(pred)
	s.journalPrediction(pred, ok)
	if !ok {
		if s.metrics != nil {
			s.metrics.TradesSkippedInc()
		}
		log.Debug().
			Float64("probability", pred.Probability).
			Float64("threshold", policy.Threshold).
			Msg("confidence below threshold; no trade")
		return out, nil
	}
	out.Instruction = &instr

	ref, err := s.place(ctx, instr)
	if err != nil {
		say(fmt.Sprintf("Error placing trade: %v", err))
		out.Error = err.Error()
		return out, err
	}
	out.Order = &ref
	say(msgTradePlaced)
	return out, nil
}

func (s *Session) place(ctx context.Context, instr decision.TradeInstruction) (exchange.OrderReference, error) {
	if s.venue == nil {
		return exchange.OrderReference{}, errors.New("no execution venue configured")
	}

	start := time.Now()
	ref, err := s.venue.PlaceOrder(ctx, instr)
	if s.metrics != nil {
		s.metrics.OrderDurationObserve(time.Since(start).Seconds())
	}

	rec := storage.OrderRecord{
		Pair:            instr.Pair,
		Timestamp:       s.now(),
		Direction:       string(instr.Direction),
		Amount:          instr.Amount,
		DurationMinutes: instr.DurationMinutes,
	}

	if err != nil {
		s.errorsInc()
		if s.metrics != nil {
			s.metrics.OrderFailuresInc()
		}
		log.Warn().Err(err).Str("pair", instr.Pair).Str("direction", string(instr.Direction)).Msg("order failed")
		rec.Error = err.Error()
		s.journalOrder(rec)
		return exchange.OrderReference{}, err
	}

	if s.metrics != nil {
		s.metrics.OrdersInc()
	}
	rec.OrderID, rec.Venue = ref.ID, ref.Venue
	s.journalOrder(rec)

	log.Info().
		Str("pair", instr.Pair).
		Str("direction", string(instr.Direction)).
		Float64("amount", instr.Amount).
		Int("duration", instr.DurationMinutes).
		Str("order_id", ref.ID).
		Msg("trade placed")
	return ref, nil
}

func (s *Session) notify(ctx context.Context, n notify.Notifier, text string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, text); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationFailuresInc()
		}
		log.Warn().Err(err).Str("message", text).Msg("notification failed")
		return
	}
	if s.metrics != nil {
		s.metrics.NotificationsInc()
	}
}

func (s *Session) journalPrediction(pred ml.Prediction, traded bool) {
	if s.journal == nil {
		return
	}
	err := s.journal.StorePrediction(storage.PredictionRecord{
		Pair:        s.cfg.Policy.Pair,
		Timestamp:   s.now(),
		Model:       string(s.model.Kind()),
		Probability: pred.Probability,
		Up:          pred.Up,
		Traded:      traded,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to store prediction record")
	}
}

func (s *Session) journalOrder(rec storage.OrderRecord) {
	if s.journal == nil {
		return
	}
	if err := s.journal.StoreOrder(rec); err != nil {
		log.Warn().Err(err).Msg("failed to store order record")
	}
}

func (s *Session) errorsInc() {
	if s.metrics != nil {
		s.metrics.ErrorsInc()
	}
}

func (s *Session) reportTrained() {
	if s.metrics == nil {
		return
	}
	s.mu.Lock()
	trained := s.model != nil && s.model.Trained()
	s.mu.Unlock()
	s.metrics.ModelTrainedSet(trained)
}

// PredictionMessage formats a prediction for the user, e.g.
// "Prediction for EURUSD-OTC in 3m: UP (71.23%)".
func PredictionMessage(pair string, horizon int, p ml.Prediction) string {
	dir := "DOWN"
	if p.Up {
		dir = "UP"
	}
	return fmt.Sprintf("Prediction for %s in %dm: %s (%.2f%%)", pair, horizon, dir, p.Probability*100)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"direction-bot/internal/cfg"
	"direction-bot/internal/common"
	"direction-bot/internal/decision"
	"direction-bot/internal/exchange"
	"direction-bot/internal/exchange/paper"
	"direction-bot/internal/exchange/rest"
	"direction-bot/internal/exec"
	"direction-bot/internal/market"
	"direction-bot/internal/metrics"
	"direction-bot/internal/ml"
	"direction-bot/internal/notify"
	"direction-bot/internal/notify/telegram"
	"direction-bot/internal/server"
	"direction-bot/internal/storage"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	newModel := modelFactory(c, mw)
	model, err := newModel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build model")
	}

	source := historySource(c, store)
	series := market.LoadOrFallback(ctx, source)
	if err := model.Train(series); err != nil {
		log.Warn().Err(err).Str("kind", string(model.Kind())).Msg("initial training failed; predictions disabled until retrain")
	}

	venue, err := initializeVenue(c)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect venue")
	}
	defer func() {
		if err := venue.Close(); err != nil {
			log.Warn().Err(err).Msg("venue close failed")
		}
	}()

	session := exec.New(exec.Config{
		Policy: decision.Policy{
			Pair:            c.Pair,
			Amount:          c.TradeAmount,
			DurationMinutes: c.HorizonMinutes,
			Threshold:       c.ConfidenceThreshold,
		},
		HorizonMinutes: c.HorizonMinutes,
		NewModel:       newModel,
	}, model, series, venue, mw)
	if store != nil {
		session.SetJournal(store)
	}

	var notifier notify.Notifier = notify.Log{}
	var bot *telegram.Bot
	if c.TelegramToken != "" {
		bot, err = telegram.NewBot(c.TelegramToken, c.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("telegram unavailable; notifications go to the log")
		} else if c.TelegramChatID != 0 {
			notifier = notify.Tee{notify.Log{}, bot}
		}
	}

	srv := server.New(session, notifier, prometheus.DefaultGatherer, c.MetricsPort)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	if bot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := bot.Run(ctx, func(ctx context.Context, reply notify.Notifier) {
				if _, err := session.Cycle(ctx, reply); err != nil {
					log.Debug().Err(err).Msg("telegram cycle failed")
				}
			})
			if err != nil {
				log.Error().Err(err).Msg("telegram loop stopped")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		retrainOnHangup(ctx, session, source)
	}()

	log.Info().
		Str("pair", c.Pair).
		Str("model", c.ModelKind).
		Str("venue", c.Venue).
		Bool("trained", model.Trained()).
		Msg("bot started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	wg.Wait()
	log.Info().Msg("shutdown complete")
}

func setupLogging(c cfg.Settings) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// initializeStorage opens the bbolt store if DATA_PATH is configured
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without persistence")
		return nil
	}
	return store
}

func modelFactory(c cfg.Settings, mw *metrics.MetricsWrapper) func() (ml.Classifier, error) {
	opts := ml.Options{
		Kind:         ml.Kind(c.ModelKind),
		C:            c.C,
		MaxIter:      c.MaxIter,
		Estimators:   c.Estimators,
		LearningRate: c.LearningRate,
		MaxDepth:     c.MaxDepth,
		Metrics:      mw,
	}
	return func() (ml.Classifier, error) {
		return ml.New(opts)
	}
}

func historySource(c cfg.Settings, store *storage.Store) market.Source {
	switch c.HistorySource {
	case common.HistoryStore:
		if store == nil {
			return nil
		}
		return storage.HistorySource{Store: store, Pair: c.Pair, Limit: c.HistoryLimit}
	case common.HistoryREST:
		return rest.CandleSource{
			Client:   rest.New(c.Key, c.Secret, c.BaseURL, c.RESTTimeout),
			Pair:     c.Pair,
			Interval: rest.Interval(c.HistoryInterval),
			Limit:    c.HistoryLimit,
		}
	default:
		return market.CSVSource{Path: c.HistoryPath}
	}
}

func initializeVenue(c cfg.Settings) (exchange.Venue, error) {
	switch c.Venue {
	case common.VenueREST:
		log.Info().Str("base", c.BaseURL).Msg("using rest venue")
		return rest.New(c.Key, c.Secret, c.BaseURL, c.RESTTimeout), nil
	default:
		log.Info().Float64("balance", c.PaperBalance).Msg("using practice account")
		return paper.New(c.PaperBalance), nil
	}
}

// retrainOnHangup reloads history and refits the model on every SIGHUP.
func retrainOnHangup(ctx context.Context, session *exec.Session, source market.Source) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			series := market.LoadOrFallback(ctx, source)
			if err := session.Retrain(series); err != nil {
				log.Error().Err(err).Msg("retrain failed; keeping current model")
			}
		}
	}
}

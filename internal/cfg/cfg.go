package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"direction-bot/internal/common"
	"direction-bot/internal/ml"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	// Trading
	Pair                string
	HorizonMinutes      int
	TradeAmount         float64
	ConfidenceThreshold float64

	// Model
	ModelKind    string
	Estimators   int
	LearningRate float64
	MaxDepth     int
	C            float64
	MaxIter      int

	// History
	HistorySource   string
	HistoryPath     string
	HistoryLimit    int
	HistoryInterval string
	DataPath        string

	// Venue
	Venue        string
	Key, Secret  string
	BaseURL      string
	RESTTimeout  time.Duration
	PaperBalance float64

	// Telegram
	TelegramToken  string
	TelegramChatID int64

	// System
	MetricsPort int
	LogLevel    string
	LogPretty   bool
}

type ConfigFile struct {
	Trading struct {
		Pair                string  `yaml:"pair"`
		HorizonMinutes      int     `yaml:"horizonMinutes"`
		Amount              float64 `yaml:"amount"`
		ConfidenceThreshold float64 `yaml:"confidenceThreshold"`
	} `yaml:"trading"`

	Model struct {
		Kind         string  `yaml:"kind"`
		Estimators   int     `yaml:"estimators"`
		LearningRate float64 `yaml:"learningRate"`
		MaxDepth     int     `yaml:"maxDepth"`
		C            float64 `yaml:"c"`
		MaxIter      int     `yaml:"maxIter"`
	} `yaml:"model"`

	History struct {
		Source   string `yaml:"source"`
		Path     string `yaml:"path"`
		Limit    int    `yaml:"limit"`
		Interval string `yaml:"interval"`
	} `yaml:"history"`

	Venue struct {
		Kind         string  `yaml:"kind"`
		Key          string  `yaml:"key"`
		Secret       string  `yaml:"secret"`
		BaseURL      string  `yaml:"baseURL"`
		RESTTimeout  string  `yaml:"restTimeout"`
		PaperBalance float64 `yaml:"paperBalance"`
	} `yaml:"venue"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chatID"`
	} `yaml:"telegram"`

	System struct {
		DataPath    string `yaml:"dataPath"`
		MetricsPort int    `yaml:"metricsPort"`
		LogLevel    string `yaml:"logLevel"`
		LogPretty   bool   `yaml:"logPretty"`
	} `yaml:"system"`
}

// Load reads CONFIG_FILE when set and overlays environment variables;
// otherwise it reads environment variables over the defaults.
func Load() (Settings, error) {
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Pair:                common.DefaultPair,
		HorizonMinutes:      common.DefaultHorizonMinutes,
		TradeAmount:         common.DefaultTradeAmount,
		ConfidenceThreshold: common.DefaultConfidenceThreshold,
		ModelKind:           common.DefaultModelKind,
		Estimators:          common.DefaultEstimators,
		LearningRate:        common.DefaultLearningRate,
		MaxDepth:            common.DefaultMaxDepth,
		C:                   common.DefaultRegularizeC,
		MaxIter:             common.DefaultMaxIter,
		HistorySource:       common.DefaultHistorySource,
		HistoryPath:         common.DefaultHistoryPath,
		HistoryLimit:        common.DefaultHistoryLimit,
		HistoryInterval:     common.DefaultHistoryInterval,
		Venue:               common.DefaultVenue,
		RESTTimeout:         5 * time.Second,
		PaperBalance:        common.DefaultPaperBalance,
		MetricsPort:         common.DefaultMetricsPort,
		LogLevel:            common.DefaultLogLevel,
	}
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	s := Defaults()
	if err := applyFile(&s, config); err != nil {
		return Settings{}, err
	}
	applyEnv(&s)

	if err := validateSettings(&s); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return s, nil
}

func loadFromEnv() (Settings, error) {
	s := Defaults()
	applyEnv(&s)

	if err := validateSettings(&s); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return s, nil
}

// applyFile copies every non-zero value of config into s.
func applyFile(s *Settings, config ConfigFile) error {
	setString(&s.Pair, config.Trading.Pair)
	setInt(&s.HorizonMinutes, config.Trading.HorizonMinutes)
	setFloat(&s.TradeAmount, config.Trading.Amount)
	setFloat(&s.ConfidenceThreshold, config.Trading.ConfidenceThreshold)

	setString(&s.ModelKind, config.Model.Kind)
	setInt(&s.Estimators, config.Model.Estimators)
	setFloat(&s.LearningRate, config.Model.LearningRate)
	setInt(&s.MaxDepth, config.Model.MaxDepth)
	setFloat(&s.C, config.Model.C)
	setInt(&s.MaxIter, config.Model.MaxIter)

	setString(&s.HistorySource, config.History.Source)
	setString(&s.HistoryPath, config.History.Path)
	setInt(&s.HistoryLimit, config.History.Limit)
	setString(&s.HistoryInterval, config.History.Interval)

	setString(&s.Venue, config.Venue.Kind)
	setString(&s.Key, config.Venue.Key)
	setString(&s.Secret, config.Venue.Secret)
	setString(&s.BaseURL, config.Venue.BaseURL)
	setFloat(&s.PaperBalance, config.Venue.PaperBalance)
	if config.Venue.RESTTimeout != "" {
		d, err := time.ParseDuration(config.Venue.RESTTimeout)
		if err != nil {
			return fmt.Errorf("invalid venue.restTimeout %q: %w", config.Venue.RESTTimeout, err)
		}
		s.RESTTimeout = d
	}

	setString(&s.TelegramToken, config.Telegram.Token)
	if config.Telegram.ChatID != 0 {
		s.TelegramChatID = config.Telegram.ChatID
	}

	setString(&s.DataPath, config.System.DataPath)
	setInt(&s.MetricsPort, config.System.MetricsPort)
	setString(&s.LogLevel, config.System.LogLevel)
	s.LogPretty = s.LogPretty || config.System.LogPretty
	return nil
}

// applyEnv overrides s with every environment variable that is set and parses.
func applyEnv(s *Settings) {
	s.Pair = getEnvOrDefault(common.EnvPair, s.Pair)
	s.HorizonMinutes = getIntOrDefault(common.EnvHorizonMinutes, s.HorizonMinutes)
	s.TradeAmount = getFloatOrDefault(common.EnvTradeAmount, s.TradeAmount)
	s.ConfidenceThreshold = getFloatOrDefault(common.EnvConfidenceThreshold, s.ConfidenceThreshold)

	s.ModelKind = getEnvOrDefault(common.EnvModelKind, s.ModelKind)
	s.Estimators = getIntOrDefault(common.EnvEstimators, s.Estimators)
	s.LearningRate = getFloatOrDefault(common.EnvLearningRate, s.LearningRate)
	s.MaxDepth = getIntOrDefault(common.EnvMaxDepth, s.MaxDepth)
	s.C = getFloatOrDefault(common.EnvRegularizeC, s.C)
	s.MaxIter = getIntOrDefault(common.EnvMaxIter, s.MaxIter)

	s.HistorySource = getEnvOrDefault(common.EnvHistorySource, s.HistorySource)
	s.HistoryPath = getEnvOrDefault(common.EnvHistoryPath, s.HistoryPath)
	s.HistoryLimit = getIntOrDefault(common.EnvHistoryLimit, s.HistoryLimit)
	s.HistoryInterval = getEnvOrDefault(common.EnvHistoryInterval, s.HistoryInterval)
	s.DataPath = getEnvOrDefault(common.EnvDataPath, s.DataPath)

	s.Venue = getEnvOrDefault(common.EnvVenue, s.Venue)
	s.Key = getEnvOrDefault(common.EnvAPIKey, s.Key)
	s.Secret = getEnvOrDefault(common.EnvSecretKey, s.Secret)
	s.BaseURL = getEnvOrDefault(common.EnvBaseURL, s.BaseURL)
	s.RESTTimeout = getDurationOrDefault(common.EnvRESTTimeout, s.RESTTimeout)
	s.PaperBalance = getFloatOrDefault(common.EnvPaperBalance, s.PaperBalance)

	s.TelegramToken = getEnvOrDefault(common.EnvTelegramToken, s.TelegramToken)
	s.TelegramChatID = getInt64OrDefault(common.EnvTelegramChatID, s.TelegramChatID)

	s.MetricsPort = getIntOrDefault(common.EnvMetricsPort, s.MetricsPort)
	s.LogLevel = getEnvOrDefault(common.EnvLogLevel, s.LogLevel)
	s.LogPretty = getBoolOrDefault(common.EnvLogPretty, s.LogPretty)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(s *Settings) error {
	if s.Pair == "" {
		return fmt.Errorf("trading pair cannot be empty")
	}
	if s.HorizonMinutes <= 0 || s.HorizonMinutes > common.MaxHorizonMinutes {
		return fmt.Errorf("prediction horizon must be between 1 and %d minutes, got %d", common.MaxHorizonMinutes, s.HorizonMinutes)
	}
	if s.TradeAmount <= 0 {
		return fmt.Errorf("trade amount must be positive, got %f", s.TradeAmount)
	}
	if s.ConfidenceThreshold <= 0 || s.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in (0, 1], got %f", s.ConfidenceThreshold)
	}

	if _, err := ml.ParseKind(s.ModelKind); err != nil {
		return err
	}
	if s.Estimators <= 0 || s.Estimators > common.MaxEstimators {
		return fmt.Errorf("estimators must be between 1 and %d, got %d", common.MaxEstimators, s.Estimators)
	}
	if s.LearningRate <= 0 || s.LearningRate > 1 {
		return fmt.Errorf("learning rate must be in (0, 1], got %f", s.LearningRate)
	}
	if s.MaxDepth <= 0 || s.MaxDepth > common.MaxDepthLimit {
		return fmt.Errorf("max depth must be between 1 and %d, got %d", common.MaxDepthLimit, s.MaxDepth)
	}
	if s.C <= 0 {
		return fmt.Errorf("regularization C must be positive, got %f", s.C)
	}
	if s.MaxIter <= 0 || s.MaxIter > common.MaxIterLimit {
		return fmt.Errorf("max iterations must be between 1 and %d, got %d", common.MaxIterLimit, s.MaxIter)
	}

	switch s.HistorySource {
	case common.HistoryCSV:
		if s.HistoryPath == "" {
			return fmt.Errorf("history path is required for the csv source")
		}
	case common.HistoryStore:
		if s.DataPath == "" {
			return fmt.Errorf("data path is required for the store history source")
		}
	case common.HistoryREST:
		if s.BaseURL == "" {
			return fmt.Errorf("venue base URL is required for the rest history source")
		}
	default:
		return fmt.Errorf("history source must be csv, store or rest, got %q", s.HistorySource)
	}
	if s.HistoryLimit < 0 || s.HistoryLimit > common.MaxHistoryLimit {
		return fmt.Errorf("history limit must be between 0 and %d, got %d", common.MaxHistoryLimit, s.HistoryLimit)
	}

	switch s.Venue {
	case common.VenuePaper:
		if s.PaperBalance <= 0 {
			return fmt.Errorf("paper balance must be positive, got %f", s.PaperBalance)
		}
	case common.VenueREST:
		if s.Key == "" || s.Secret == "" {
			return fmt.Errorf("API key and secret are required for the rest venue")
		}
		if s.BaseURL == "" {
			return fmt.Errorf("base URL cannot be empty")
		}
	default:
		return fmt.Errorf("venue must be paper or rest, got %q", s.Venue)
	}
	if s.RESTTimeout < time.Second || s.RESTTimeout > time.Minute {
		return fmt.Errorf("REST timeout must be between 1s and 1m, got %v", s.RESTTimeout)
	}

	if s.MetricsPort < common.MinMetricsPort || s.MetricsPort > common.MaxMetricsPort {
		return fmt.Errorf("metrics port must be between %d and %d, got %d", common.MinMetricsPort, common.MaxMetricsPort, s.MetricsPort)
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	return nil
}

package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, "EURUSD-OTC", settings.Pair)
				assert.Equal(t, 3, settings.HorizonMinutes)
				assert.Equal(t, 1.0, settings.TradeAmount)
				assert.Equal(t, 0.7, settings.ConfidenceThreshold)
				assert.Equal(t, "advanced", settings.ModelKind)
				assert.Equal(t, "csv", settings.HistorySource)
				assert.Equal(t, "sample_data.csv", settings.HistoryPath)
				assert.Equal(t, "paper", settings.Venue)
				assert.Equal(t, 8080, settings.MetricsPort)
				assert.Equal(t, 5*time.Second, settings.RESTTimeout)
				assert.Empty(t, settings.TelegramToken)
			},
		},
		{
			name: "custom trading settings",
			envVars: map[string]string{
				"DEFAULT_PAIR":               "GBPUSD",
				"PREDICTION_HORIZON_MINUTES": "5",
				"TRADE_AMOUNT":               "2.5",
				"TRADE_CONFIDENCE_THRESHOLD": "0.8",
				"MODEL_KIND":                 "simple",
				"MODEL_C":                    "0.5",
				"TELEGRAM_BOT_TOKEN":         "token",
				"TELEGRAM_CHAT_ID":           "-1001234",
				"LOG_PRETTY":                 "true",
			},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, "GBPUSD", settings.Pair)
				assert.Equal(t, 5, settings.HorizonMinutes)
				assert.Equal(t, 2.5, settings.TradeAmount)
				assert.Equal(t, 0.8, settings.ConfidenceThreshold)
				assert.Equal(t, "simple", settings.ModelKind)
				assert.Equal(t, 0.5, settings.C)
				assert.Equal(t, "token", settings.TelegramToken)
				assert.Equal(t, int64(-1001234), settings.TelegramChatID)
				assert.True(t, settings.LogPretty)
			},
		},
		{
			name:    "threshold of one is allowed",
			envVars: map[string]string{"TRADE_CONFIDENCE_THRESHOLD": "1"},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, 1.0, settings.ConfidenceThreshold)
			},
		},
		{
			name:    "unparsable value keeps default",
			envVars: map[string]string{"PREDICTION_HORIZON_MINUTES": "soon"},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, 3, settings.HorizonMinutes)
			},
		},
		{
			name: "rest venue with credentials",
			envVars: map[string]string{
				"VENUE":            "rest",
				"VENUE_API_KEY":    "key",
				"VENUE_SECRET_KEY": "secret",
				"VENUE_BASE_URL":   "https://venue.example",
				"REST_TIMEOUT":     "10s",
			},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, "rest", settings.Venue)
				assert.Equal(t, 10*time.Second, settings.RESTTimeout)
			},
		},
		{
			name:    "zero threshold",
			envVars: map[string]string{"TRADE_CONFIDENCE_THRESHOLD": "0"},
			wantErr: true,
		},
		{
			name:    "threshold above one",
			envVars: map[string]string{"TRADE_CONFIDENCE_THRESHOLD": "1.2"},
			wantErr: true,
		},
		{
			name:    "negative amount",
			envVars: map[string]string{"TRADE_AMOUNT": "-1"},
			wantErr: true,
		},
		{
			name:    "zero horizon",
			envVars: map[string]string{"PREDICTION_HORIZON_MINUTES": "0"},
			wantErr: true,
		},
		{
			name:    "unknown model kind",
			envVars: map[string]string{"MODEL_KIND": "forest"},
			wantErr: true,
		},
		{
			name:    "unknown history source",
			envVars: map[string]string{"HISTORY_SOURCE": "ftp"},
			wantErr: true,
		},
		{
			name:    "store history without data path",
			envVars: map[string]string{"HISTORY_SOURCE": "store"},
			wantErr: true,
		},
		{
			name:    "rest venue without credentials",
			envVars: map[string]string{"VENUE": "rest", "VENUE_BASE_URL": "https://venue.example"},
			wantErr: true,
		},
		{
			name:    "privileged metrics port",
			envVars: map[string]string{"METRICS_PORT": "80"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			envVars: map[string]string{"LOG_LEVEL": "loud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
trading:
  pair: "BTC-OTC"
  horizonMinutes: 5
  amount: 3
  confidenceThreshold: 0.65
model:
  kind: simple
  maxIter: 50
history:
  source: store
  limit: 300
venue:
  kind: paper
  paperBalance: 500
  restTimeout: 20s
system:
  dataPath: ` + dir + `
  metricsPort: 9090
  logLevel: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "BTC-OTC", settings.Pair)
	assert.Equal(t, 5, settings.HorizonMinutes)
	assert.Equal(t, 3.0, settings.TradeAmount)
	assert.Equal(t, 0.65, settings.ConfidenceThreshold)
	assert.Equal(t, "simple", settings.ModelKind)
	assert.Equal(t, 50, settings.MaxIter)
	assert.Equal(t, "store", settings.HistorySource)
	assert.Equal(t, 300, settings.HistoryLimit)
	assert.Equal(t, 500.0, settings.PaperBalance)
	assert.Equal(t, 20*time.Second, settings.RESTTimeout)
	assert.Equal(t, dir, settings.DataPath)
	assert.Equal(t, 9090, settings.MetricsPort)
	assert.Equal(t, "debug", settings.LogLevel)
	// untouched sections keep their defaults
	assert.Equal(t, 200, settings.Estimators)
}

func TestLoadFromYAML_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trading:\n  pair: FILE\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DEFAULT_PAIR", "ENV")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ENV", settings.Pair)
}

func TestLoadFromYAML_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("trading: [unclosed"), 0o644))
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("venue:\n  restTimeout: later\n"), 0o644))
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("trading:\n  confidenceThreshold: 2\n"), 0o644))
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidateSettings_Defaults(t *testing.T) {
	s := Defaults()
	assert.NoError(t, validateSettings(&s))
}

package common

// Environment variable keys
const (
	EnvConfigFile = "CONFIG_FILE"

	EnvPair                = "DEFAULT_PAIR"
	EnvHorizonMinutes      = "PREDICTION_HORIZON_MINUTES"
	EnvTradeAmount         = "TRADE_AMOUNT"
	EnvConfidenceThreshold = "TRADE_CONFIDENCE_THRESHOLD"

	EnvModelKind    = "MODEL_KIND"
	EnvEstimators   = "MODEL_ESTIMATORS"
	EnvLearningRate = "MODEL_LEARNING_RATE"
	EnvMaxDepth     = "MODEL_MAX_DEPTH"
	EnvRegularizeC  = "MODEL_C"
	EnvMaxIter      = "MODEL_MAX_ITER"

	EnvHistorySource   = "HISTORY_SOURCE"
	EnvHistoryPath     = "HISTORY_PATH"
	EnvHistoryLimit    = "HISTORY_LIMIT"
	EnvHistoryInterval = "HISTORY_INTERVAL"
	EnvDataPath        = "DATA_PATH"

	EnvVenue        = "VENUE"
	EnvAPIKey       = "VENUE_API_KEY"
	EnvSecretKey    = "VENUE_SECRET_KEY"
	EnvBaseURL      = "VENUE_BASE_URL"
	EnvRESTTimeout  = "REST_TIMEOUT"
	EnvPaperBalance = "PAPER_BALANCE"

	EnvTelegramToken  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"

	EnvMetricsPort = "METRICS_PORT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogPretty   = "LOG_PRETTY"
)

// History sources
const (
	HistoryCSV   = "csv"
	HistoryStore = "store"
	HistoryREST  = "rest"
)

// Execution venues
const (
	VenuePaper = "paper"
	VenueREST  = "rest"
)

// Configuration defaults
const (
	DefaultPair                = "EURUSD-OTC"
	DefaultHorizonMinutes      = 3
	DefaultTradeAmount         = 1.0
	DefaultConfidenceThreshold = 0.7
	DefaultModelKind           = "advanced"
	DefaultEstimators          = 200
	DefaultLearningRate        = 0.1
	DefaultMaxDepth            = 3
	DefaultRegularizeC         = 1.0
	DefaultMaxIter             = 100
	DefaultHistorySource       = HistoryCSV
	DefaultHistoryPath         = "sample_data.csv"
	DefaultHistoryLimit        = 500
	DefaultHistoryInterval     = "1m"
	DefaultVenue               = VenuePaper
	DefaultPaperBalance        = 10000.0
	DefaultMetricsPort         = 8080
	DefaultLogLevel            = "info"
)

// Validation constants
const (
	MaxHorizonMinutes = 24 * 60
	MaxEstimators     = 5000
	MaxDepthLimit     = 16
	MaxIterLimit      = 10000
	MaxHistoryLimit   = 100000
	MinMetricsPort    = 1024
	MaxMetricsPort    = 65535
)

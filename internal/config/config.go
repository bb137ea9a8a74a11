package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
)

const (
	OutputCSV      = "csv"
	OutputJSONL    = "jsonl"
	OutputSQLite   = "sqlite"
	OutputPostgres = "postgres"
)

const (
	RunLedgerSQLite = "sqlite"
	RunLedgerMemory = "memory"
)

// DefaultSeasonIDs are the seasons fetched when SPORTRADAR_SEASON_IDS is not set.
var DefaultSeasonIDs = []string{"sr:season:106501", "sr:season:118691", "sr:season:130805"}

// Config stores runtime configuration for the ETL commands.
type Config struct {
	AppEnv         string        `validate:"oneof=dev stage prod"`
	ServiceName    string        `validate:"required"`
	ServiceVersion string        `validate:"required"`
	LogLevel       logging.Level `validate:"-"`
	LogFormat      string        `validate:"oneof=json console"`

	GamesDir      string   `validate:"required"`
	OutputDir     string   `validate:"required"`
	OutputFormats []string `validate:"min=1,dive,oneof=csv jsonl sqlite postgres"`
	SQLitePath    string   `validate:"required"`
	TablePrefix   string   `validate:"omitempty,max=32"`
	StatsOnly     bool

	DBEnabled        bool
	DBURL            string        `validate:"required_if=DBEnabled true"`
	DBDefaultSSLMode string        `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	DBMaxOpenConns   int           `validate:"gte=1"`
	RunCacheTTL      time.Duration `validate:"gt=0"`
	RunLedger        string        `validate:"oneof=sqlite memory"`

	SportradarBaseURL               string        `validate:"required,url"`
	SportradarAPIKey                string        `validate:"-"`
	SportradarTimeout               time.Duration `validate:"gt=0"`
	SportradarMaxRetries            int           `validate:"gte=0"`
	SportradarRetryDelay            time.Duration `validate:"gte=0"`
	SportradarCircuitEnabled        bool
	SportradarCircuitFailureCount   int           `validate:"gte=1"`
	SportradarCircuitOpenTimeout    time.Duration `validate:"gt=0"`
	SportradarCircuitHalfOpenMaxReq int           `validate:"gte=1"`
	SportradarSeasonIDs             []string      `validate:"min=1,dive,required"`
	SportradarDownloadSpacing       time.Duration `validate:"gte=0"`
	SportradarWorkers               int           `validate:"gte=1,lte=32"`
	SportradarSkipExisting          bool

	UptraceEnabled         bool
	UptraceDSN             string `validate:"required_if=UptraceEnabled true"`
	UptraceLogsEnabled     bool
	PyroscopeEnabled       bool
	PyroscopeServerAddress string        `validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAppName       string        `validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAuthToken     string        `validate:"-"`
	PyroscopeUploadRate    time.Duration `validate:"gt=0"`
}

// HasOutput reports whether format is one of the configured sinks.
func (c Config) HasOutput(format string) bool {
	for _, item := range c.OutputFormats {
		if item == format {
			return true
		}
	}
	return false
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	statsOnly, err := strconv.ParseBool(getEnv("ETL_STATS_ONLY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ETL_STATS_ONLY: %w", err)
	}

	dbEnabled, err := strconv.ParseBool(getEnv("DB_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_ENABLED: %w", err)
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	runCacheTTL, err := time.ParseDuration(getEnv("RUN_CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RUN_CACHE_TTL: %w", err)
	}

	sportradarTimeout, err := time.ParseDuration(getEnv("SPORTRADAR_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_TIMEOUT: %w", err)
	}
	sportradarMaxRetries, err := getEnvAsInt("SPORTRADAR_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_MAX_RETRIES: %w", err)
	}
	sportradarRetryDelay, err := time.ParseDuration(getEnv("SPORTRADAR_RETRY_DELAY", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_RETRY_DELAY: %w", err)
	}
	sportradarCircuitEnabled, err := strconv.ParseBool(getEnv("SPORTRADAR_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_CIRCUIT_ENABLED: %w", err)
	}
	sportradarCircuitFailureCount, err := getEnvAsInt("SPORTRADAR_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	sportradarCircuitOpenTimeout, err := time.ParseDuration(getEnv("SPORTRADAR_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	sportradarCircuitHalfOpenMaxReq, err := getEnvAsInt("SPORTRADAR_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	sportradarDownloadSpacing, err := time.ParseDuration(getEnv("SPORTRADAR_DOWNLOAD_SPACING", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_DOWNLOAD_SPACING: %w", err)
	}
	sportradarWorkers, err := getEnvAsInt("SPORTRADAR_WORKERS", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_WORKERS: %w", err)
	}
	sportradarSkipExisting, err := strconv.ParseBool(getEnv("SPORTRADAR_SKIP_EXISTING", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTRADAR_SKIP_EXISTING: %w", err)
	}
	seasonIDs := splitCSV(getEnv("SPORTRADAR_SEASON_IDS", ""))
	if len(seasonIDs) == 0 {
		seasonIDs = append([]string(nil), DefaultSeasonIDs...)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	outputDir := strings.TrimSpace(getEnv("OUTPUT_DIR", "output"))
	cfg := Config{
		AppEnv:                          appEnv,
		ServiceName:                     getEnv("APP_SERVICE_NAME", "matchstats-etl"),
		ServiceVersion:                  getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                        logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                       strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", logging.FormatConsole))),
		GamesDir:                        strings.TrimSpace(getEnv("GAMES_DIR", "games")),
		OutputDir:                       outputDir,
		OutputFormats:                   lowerAll(splitCSV(getEnv("OUTPUT_FORMATS", OutputCSV))),
		SQLitePath:                      strings.TrimSpace(getEnv("SQLITE_PATH", outputDir+"/matchstats.db")),
		TablePrefix:                     strings.TrimSpace(getEnv("TABLE_PREFIX", "")),
		StatsOnly:                       statsOnly,
		DBEnabled:                       dbEnabled,
		DBURL:                           strings.TrimSpace(getEnv("DB_URL", "")),
		DBDefaultSSLMode:                strings.ToLower(strings.TrimSpace(getEnv("DB_DEFAULT_SSLMODE", "disable"))),
		DBMaxOpenConns:                  dbMaxOpenConns,
		RunCacheTTL:                     runCacheTTL,
		RunLedger:                       strings.ToLower(strings.TrimSpace(getEnv("RUN_LEDGER", RunLedgerSQLite))),
		SportradarBaseURL:               strings.TrimRight(strings.TrimSpace(getEnv("SPORTRADAR_BASE_URL", "https://api.sportradar.com/soccer-extended/production/v4/en")), "/"),
		SportradarAPIKey:                strings.TrimSpace(getEnv("SPORTRADAR_API_KEY", "")),
		SportradarTimeout:               sportradarTimeout,
		SportradarMaxRetries:            sportradarMaxRetries,
		SportradarRetryDelay:            sportradarRetryDelay,
		SportradarCircuitEnabled:        sportradarCircuitEnabled,
		SportradarCircuitFailureCount:   sportradarCircuitFailureCount,
		SportradarCircuitOpenTimeout:    sportradarCircuitOpenTimeout,
		SportradarCircuitHalfOpenMaxReq: sportradarCircuitHalfOpenMaxReq,
		SportradarSeasonIDs:             seasonIDs,
		SportradarDownloadSpacing:       sportradarDownloadSpacing,
		SportradarWorkers:               sportradarWorkers,
		SportradarSkipExisting:          sportradarSkipExisting,
		UptraceEnabled:                  uptraceEnabled,
		UptraceDSN:                      uptraceDSN,
		UptraceLogsEnabled:              uptraceLogsEnabled,
		PyroscopeEnabled:                pyroscopeEnabled,
		PyroscopeServerAddress:          strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:              strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:             pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules tags cannot
// express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.HasOutput(OutputPostgres) && !c.DBEnabled {
		return fmt.Errorf("invalid config: OUTPUT_FORMATS=postgres requires DB_ENABLED=true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func lowerAll(items []string) []string {
	for i, item := range items {
		items[i] = strings.ToLower(item)
	}
	return items
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

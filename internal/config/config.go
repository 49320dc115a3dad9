package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                       string
	ServiceName                  string
	ServiceVersion               string
	HTTPAddr                     string
	CORSAllowedOrigins           []string
	ReadTimeout                  time.Duration
	WriteTimeout                 time.Duration
	PprofEnabled                 bool
	PprofAddr                    string
	UptraceEnabled               bool
	UptraceDSN                   string
	PyroscopeEnabled             bool
	PyroscopeServerAddress       string
	PyroscopeAppName             string
	PyroscopeAuthToken           string
	PyroscopeBasicAuthUser       string
	PyroscopeBasicAuthPassword   string
	PyroscopeUploadRate          time.Duration
	CartolaBaseURL               string
	CartolaTimeout               time.Duration
	CartolaCircuitEnabled        bool
	CartolaCircuitFailureCount   int
	CartolaCircuitOpenTimeout    time.Duration
	CartolaCircuitHalfOpenMaxReq int
	GloboIDTokenURL              string
	GloboIDClientID              string
	GloboIDRefreshToken          string
	GloboIDTimeout               time.Duration
	LeagueSlug                   string
	RoundScoreCacheTTL           time.Duration
	ReportAwardedCount           int
	ReportWorkers                int
	LogLevel                     logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cartolaTimeout, err := time.ParseDuration(getEnv("CARTOLA_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CARTOLA_TIMEOUT: %w", err)
	}
	if cartolaTimeout <= 0 {
		return Config{}, fmt.Errorf("CARTOLA_TIMEOUT must be > 0")
	}
	cartolaCircuitEnabled, err := strconv.ParseBool(getEnv("CARTOLA_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CARTOLA_CIRCUIT_ENABLED: %w", err)
	}
	cartolaCircuitFailureCount, err := getEnvAsInt("CARTOLA_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CARTOLA_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cartolaCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CARTOLA_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cartolaCircuitOpenTimeout, err := time.ParseDuration(getEnv("CARTOLA_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CARTOLA_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cartolaCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CARTOLA_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cartolaCircuitHalfOpenMaxReq, err := getEnvAsInt("CARTOLA_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CARTOLA_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cartolaCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("CARTOLA_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	globoidTimeout, err := time.ParseDuration(getEnv("GLOBOID_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GLOBOID_TIMEOUT: %w", err)
	}
	if globoidTimeout <= 0 {
		return Config{}, fmt.Errorf("GLOBOID_TIMEOUT must be > 0")
	}

	leagueSlug := strings.TrimSpace(getEnv("LEAGUE_SLUG", ""))
	if leagueSlug == "" {
		return Config{}, fmt.Errorf("LEAGUE_SLUG is required")
	}

	roundScoreCacheTTL, err := time.ParseDuration(getEnv("ROUND_SCORE_CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ROUND_SCORE_CACHE_TTL: %w", err)
	}
	if roundScoreCacheTTL <= 0 {
		return Config{}, fmt.Errorf("ROUND_SCORE_CACHE_TTL must be > 0")
	}

	reportAwardedCount, err := getEnvAsInt("REPORT_AWARDED_COUNT", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse REPORT_AWARDED_COUNT: %w", err)
	}
	if reportAwardedCount < 1 {
		return Config{}, fmt.Errorf("REPORT_AWARDED_COUNT must be >= 1")
	}

	reportWorkers, err := getEnvAsInt("REPORT_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse REPORT_WORKERS: %w", err)
	}
	if reportWorkers < 1 {
		return Config{}, fmt.Errorf("REPORT_WORKERS must be >= 1")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "cartola-mensagens"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:           splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                  readTimeout,
		WriteTimeout:                 writeTimeout,
		PprofEnabled:                 pprofEnabled,
		PprofAddr:                    pprofAddr,
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
		CartolaBaseURL:               strings.TrimSpace(getEnv("CARTOLA_BASE_URL", "https://api.cartola.globo.com")),
		CartolaTimeout:               cartolaTimeout,
		CartolaCircuitEnabled:        cartolaCircuitEnabled,
		CartolaCircuitFailureCount:   cartolaCircuitFailureCount,
		CartolaCircuitOpenTimeout:    cartolaCircuitOpenTimeout,
		CartolaCircuitHalfOpenMaxReq: cartolaCircuitHalfOpenMaxReq,
		GloboIDTokenURL:              strings.TrimSpace(getEnv("GLOBOID_TOKEN_URL", "")),
		GloboIDClientID:              strings.TrimSpace(getEnv("GLOBOID_CLIENT_ID", "")),
		GloboIDRefreshToken:          strings.TrimSpace(getEnv("GLOBOID_REFRESH_TOKEN", "")),
		GloboIDTimeout:               globoidTimeout,
		LeagueSlug:                   leagueSlug,
		RoundScoreCacheTTL:           roundScoreCacheTTL,
		ReportAwardedCount:           reportAwardedCount,
		ReportWorkers:                reportWorkers,
		LogLevel:                     parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
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

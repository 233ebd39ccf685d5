package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	// CORSAllowedHosts lists front-end hosts (host[:port]) allowed by the CORS middleware.
	CORSAllowedHosts []string

	DB        DatabaseConfig
	Redis     RedisConfig
	Predictor PredictorConfig
	Upload    UploadConfig
	Workbench WorkbenchConfig
	Worker    WorkerConfig
	S3        S3Config
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int

	// PredictionTTL controls how long predictions are cached per uploaded file hash.
	PredictionTTL time.Duration
}

// PredictorConfig selects and tunes the demand prediction backend.
type PredictorConfig struct {
	Mode      string // mock, local or remote
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	MockDelay time.Duration
	TopN      int
}

// UploadConfig contains the file intake constraints.
type UploadConfig struct {
	Accept   string
	MaxBytes int64
}

// WorkbenchConfig contains per-account slot workbench settings.
type WorkbenchConfig struct {
	Slots   int
	IdleTTL time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	WorkbenchSweepInterval time.Duration
	HistoryPruneInterval   time.Duration
	HistoryRetention       time.Duration
}

// S3Config contains the bucket used to archive uploaded sales files.
// Archiving is disabled when Bucket is empty.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Predictor modes.
const (
	PredictorModeMock   = "mock"
	PredictorModeLocal  = "local"
	PredictorModeRemote = "remote"
)

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedHosts = getEnvList("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Predictor
	cfg.Predictor = PredictorConfig{
		Mode:    strings.ToLower(getEnv("PREDICTOR_MODE", PredictorModeMock)),
		BaseURL: getEnv("PREDICTOR_BASE_URL", "http://localhost:8000"),
		APIKey:  getEnv("PREDICTOR_API_KEY", ""),
		TopN:    getEnvInt("PREDICTOR_TOP_N", 5),
	}

	// Upload intake
	cfg.Upload = UploadConfig{
		Accept:   getEnv("UPLOAD_ACCEPT", ".csv"),
		MaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
	}

	// Workbench
	cfg.Workbench.Slots = getEnvInt("WORKBENCH_SLOTS", 6)

	// S3 archive of uploaded files
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-southeast-1"),
		Bucket:          getEnv("S3_BUCKET", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// Durations
	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Redis.PredictionTTL, err = parseDurationEnv("PREDICTION_CACHE_TTL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid PREDICTION_CACHE_TTL: %w", err)
	}
	if cfg.Predictor.Timeout, err = parseDurationEnv("PREDICTOR_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_TIMEOUT: %w", err)
	}
	if cfg.Predictor.MockDelay, err = parseDurationEnv("PREDICTOR_MOCK_DELAY", "1500ms"); err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_MOCK_DELAY: %w", err)
	}
	if cfg.Workbench.IdleTTL, err = parseDurationEnv("WORKBENCH_IDLE_TTL", "2h"); err != nil {
		return nil, fmt.Errorf("invalid WORKBENCH_IDLE_TTL: %w", err)
	}
	if cfg.Worker.WorkbenchSweepInterval, err = parseDurationEnv("WORKBENCH_SWEEP_INTERVAL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid WORKBENCH_SWEEP_INTERVAL: %w", err)
	}
	if cfg.Worker.HistoryPruneInterval, err = parseDurationEnv("HISTORY_PRUNE_INTERVAL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid HISTORY_PRUNE_INTERVAL: %w", err)
	}
	if cfg.Worker.HistoryRetention, err = parseDurationEnv("HISTORY_RETENTION", "720h"); err != nil {
		return nil, fmt.Errorf("invalid HISTORY_RETENTION: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for authentication")
	}
	switch c.Predictor.Mode {
	case PredictorModeMock, PredictorModeLocal:
	case PredictorModeRemote:
		if c.Predictor.BaseURL == "" {
			return errors.New("PREDICTOR_BASE_URL must be set when PREDICTOR_MODE=remote")
		}
	default:
		return fmt.Errorf("PREDICTOR_MODE must be one of mock, local, remote (got %q)", c.Predictor.Mode)
	}
	if c.Predictor.TopN <= 0 {
		return errors.New("PREDICTOR_TOP_N must be greater than zero")
	}
	if c.Workbench.Slots <= 0 {
		return errors.New("WORKBENCH_SLOTS must be greater than zero")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be greater than zero")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key, def string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

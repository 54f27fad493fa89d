package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Seed        SeedConfig
	Geocode     GeocodeConfig
	LocalSearch LocalSearchConfig
	Readers     ReadersConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string // "postgres" | "sqlite"
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds daemon-related configuration
type ServerConfig struct {
	GRPCAddr    string
	MetricsAddr string
	Interval    time.Duration
}

// SeedConfig holds orchestrator configuration
type SeedConfig struct {
	BaseDir            string
	Limit              int
	CommitEvery        int
	Workers            int
	FileTimeout        time.Duration
	CommitRetries      int
	CommitRetryDelay   time.Duration
	AllowNoGeocode     bool
	FillAddressFromGeo bool
	VocabPath          string
}

// GeocodeConfig holds geocoding API configuration
type GeocodeConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	RegionHints  []string
	Timeout      time.Duration
	Retries      int
	CacheSize    int
}

// LocalSearchConfig holds local search API configuration
type LocalSearchConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
	Retries      int
	CacheSize    int
	RadiusMeters float64
	Display      int
}

// ReadersConfig holds the external converters used by document readers
type ReadersConfig struct {
	PDFToText string
	Soffice   string
	TempDir   string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_URL", "file:restaurants.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr:    getEnv("GRPC_ADDR", ":8080"),
			MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
			Interval:    getEnvAsDuration("SEED_INTERVAL", 6*time.Hour),
		},
		Seed: SeedConfig{
			BaseDir:            getEnv("PDF_BASE_DIR", "pdf_data"),
			Limit:              getEnvAsInt("SEED_LIMIT", 0),
			CommitEvery:        getEnvAsInt("SEED_COMMIT_EVERY", 200),
			Workers:            getEnvAsInt("SEED_WORKERS", 4),
			FileTimeout:        getEnvAsDuration("SEED_FILE_TIMEOUT", 2*time.Minute),
			CommitRetries:      getEnvAsInt("SEED_COMMIT_RETRIES", 3),
			CommitRetryDelay:   getEnvAsDuration("SEED_COMMIT_RETRY_DELAY", 500*time.Millisecond),
			AllowNoGeocode:     getEnvAsBool("ALLOW_NO_GEOCODE", true),
			FillAddressFromGeo: getEnvAsBool("GEOCODE_FILL_ADDRESS", false),
			VocabPath:          getEnv("VOCAB_PATH", ""),
		},
		Geocode: GeocodeConfig{
			ClientID:     getEnv("NAVER_CLIENT_ID", ""),
			ClientSecret: getEnv("NAVER_CLIENT_SECRET", ""),
			BaseURL:      getEnv("NAVER_GEOCODE_URL", "https://maps.apigw.ntruss.com/map-geocode/v2/geocode"),
			RegionHints:  getEnvAsList("GEOCODE_REGION_HINT", "|"),
			Timeout:      getEnvAsDuration("GEOCODE_TIMEOUT", 7*time.Second),
			Retries:      getEnvAsInt("GEOCODE_RETRIES", 2),
			CacheSize:    getEnvAsInt("GEOCODE_CACHE_SIZE", 512),
		},
		LocalSearch: LocalSearchConfig{
			Enabled:      getEnvAsBool("LOCAL_SEARCH_ENABLED", false),
			ClientID:     getEnv("NAVER_SEARCH_CLIENT_ID", ""),
			ClientSecret: getEnv("NAVER_SEARCH_CLIENT_SECRET", ""),
			BaseURL:      getEnv("NAVER_LOCAL_SEARCH_URL", "https://openapi.naver.com/v1/search/local.json"),
			Timeout:      getEnvAsDuration("LOCAL_SEARCH_TIMEOUT", 5*time.Second),
			Retries:      getEnvAsInt("LOCAL_SEARCH_RETRIES", 2),
			CacheSize:    getEnvAsInt("LOCAL_SEARCH_CACHE_SIZE", 1024),
			RadiusMeters: getEnvAsFloat64("LOCAL_SEARCH_RADIUS_M", 300),
			Display:      getEnvAsInt("LOCAL_SEARCH_DISPLAY", 5),
		},
		Readers: ReadersConfig{
			PDFToText: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Soffice:   getEnv("SOFFICE_BIN", "soffice"),
			TempDir:   getEnv("READER_TEMP_DIR", os.TempDir()),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key, sep string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DB_URL", c.Database.DSN, Required).
		Field("DB_DRIVER", c.Database.Driver, OneOf("postgres", "sqlite")).
		Field("PDF_BASE_DIR", c.Seed.BaseDir, Required).
		Field("SEED_LIMIT", c.Seed.Limit, NonNegative).
		Field("SEED_COMMIT_EVERY", c.Seed.CommitEvery, Positive).
		Field("SEED_WORKERS", c.Seed.Workers, Positive).
		Field("SEED_COMMIT_RETRIES", c.Seed.CommitRetries, Positive).
		Field("GEOCODE_CACHE_SIZE", c.Geocode.CacheSize, Positive).
		Field("LOCAL_SEARCH_CACHE_SIZE", c.LocalSearch.CacheSize, Positive)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	HTTPAddr    string

	// Identity of this supplier towards DataHub.
	SupplierGln  string
	SupplierName string
	DatahubGln   string
	DefaultArea  string
	EnerginetURL string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	Workers WorkerConfig
}

// WorkerConfig carries cadences and ceilings for the background workers.
type WorkerConfig struct {
	InboxPollInterval  time.Duration
	OutboxPollInterval time.Duration
	SchedulerInterval  time.Duration
	SpotFetchInterval  time.Duration
	InboxBatchSize     int
	OutboxBatchSize    int
	SettlementBatch    int
	MaxAttempts        int
}

// Module provides Config through fx.
var Module = fx.Module("config", fx.Provide(Load))

// Load reads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "elcore"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		SupplierGln:  getenv("SUPPLIER_GLN", "5790002502699"),
		SupplierName: getenv("SUPPLIER_NAME", "Nordlux Energi A/S"),
		DatahubGln:   getenv("DATAHUB_GLN", "5790001330552"),
		DefaultArea:  getenv("DEFAULT_PRICE_AREA", "DK1"),
		EnerginetURL: getenv("ENERGINET_URL", "https://api.energidataservice.dk/dataset/DayAheadPrices"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "elcore"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		Workers: WorkerConfig{
			InboxPollInterval:  getenvDuration("INBOX_POLL_INTERVAL", time.Second),
			OutboxPollInterval: getenvDuration("OUTBOX_POLL_INTERVAL", time.Second),
			SchedulerInterval:  getenvDuration("SCHEDULER_INTERVAL", 30*time.Second),
			SpotFetchInterval:  getenvDuration("SPOT_FETCH_INTERVAL", 24*time.Hour),
			InboxBatchSize:     getenvInt("INBOX_BATCH_SIZE", 50),
			OutboxBatchSize:    getenvInt("OUTBOX_BATCH_SIZE", 50),
			SettlementBatch:    getenvInt("SETTLEMENT_BATCH_SIZE", 25),
			MaxAttempts:        getenvInt("MESSAGE_MAX_ATTEMPTS", 8),
		},
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}

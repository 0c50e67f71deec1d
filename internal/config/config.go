package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Kafka    KafkaConfig
	Ingest   IngestConfig
	Worker   WorkerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds fast-store configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds cache-entry behavior
type CacheConfig struct {
	TTL time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// IngestConfig holds dataset download configuration
type IngestConfig struct {
	Symbols    []string
	BaseURL    string
	DatasetDir string
}

// WorkerConfig holds the refresh schedule
type WorkerConfig struct {
	CronSpec   string
	RunOnStart bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stockswatcher"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvInt("CACHE_TTL_SECONDS", 86400)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "bar-events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "stocks-watcher"),
		},
		Ingest: IngestConfig{
			Symbols:    strings.Split(getEnv("INGEST_SYMBOLS", "GOOGL.US,META.US,AMZN.US,AAPL.US"), ","),
			BaseURL:    getEnv("INGEST_BASE_URL", "https://stooq.com/q/d/l/"),
			DatasetDir: getEnv("INGEST_DATASET_DIR", "datasets"),
		},
		Worker: WorkerConfig{
			// Daily at midnight UTC.
			CronSpec:   getEnv("WORKER_CRON", "0 0 * * *"),
			RunOnStart: getEnv("WORKER_RUN_ON_START", "false") == "true",
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Store     StoreConfig
	Quotes    QuotesConfig
	Orders    OrdersConfig
	Portfolio PortfolioConfig
	Polling   PollingConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// Addr returns the listen address
func (s *ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

// StoreConfig selects the key-value backend for positions, orders and the account
type StoreConfig struct {
	Backend    string // memory, sqlite, redis, postgres
	SQLitePath string
}

// QuotesConfig holds quote provider and cache configuration
type QuotesConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	CacheTTL     time.Duration
	CacheBackend string // memory, redis
	Symbols      []string
}

// OrdersConfig holds simulated execution settings
type OrdersConfig struct {
	FillDelay          time.Duration
	EnforceBuyingPower bool
	SeedDemoData       bool
}

// PortfolioConfig holds ledger settings
type PortfolioConfig struct {
	DayChangeMode string // quote, placeholder
}

// PollingConfig holds per-screen refresh intervals
type PollingConfig struct {
	Recommendations time.Duration
	Portfolio       time.Duration
	Watchlist       time.Duration
	Alerts          time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // json, console
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "tradeadvisor"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "db/migrations"),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "tradeadvisor:"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "order-events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "trade-advisor-journal"),
		},
		Store: StoreConfig{
			Backend:    getEnv("STORE_BACKEND", "sqlite"),
			SQLitePath: getEnv("SQLITE_PATH", "tradeadvisor.db"),
		},
		Quotes: QuotesConfig{
			APIKey:       getEnv("ALPHAVANTAGE_API_KEY", "demo"),
			BaseURL:      getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co"),
			Timeout:      getEnvDuration("QUOTE_TIMEOUT", 10*time.Second),
			CacheTTL:     getEnvDuration("QUOTE_CACHE_TTL", 60*time.Second),
			CacheBackend: getEnv("QUOTE_CACHE_BACKEND", "memory"),
			Symbols:      getEnvList("RECOMMENDATION_SYMBOLS", []string{"AAPL", "TSLA", "NVDA", "MSFT", "AMD", "GOOGL", "AMZN"}),
		},
		Orders: OrdersConfig{
			FillDelay:          getEnvDuration("ORDER_FILL_DELAY", 2*time.Second),
			EnforceBuyingPower: getEnvBool("ORDER_ENFORCE_BUYING_POWER", false),
			SeedDemoData:       getEnvBool("SEED_DEMO_DATA", true),
		},
		Portfolio: PortfolioConfig{
			DayChangeMode: getEnv("PORTFOLIO_DAY_CHANGE_MODE", "quote"),
		},
		Polling: PollingConfig{
			Recommendations: getEnvDuration("POLL_RECOMMENDATIONS", 30*time.Second),
			Portfolio:       getEnvDuration("POLL_PORTFOLIO", 30*time.Second),
			Watchlist:       getEnvDuration("POLL_WATCHLIST", 30*time.Second),
			Alerts:          getEnvDuration("POLL_ALERTS", time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

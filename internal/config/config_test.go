package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := Load()

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "sqlite", cfg.Store.Backend)
		assert.Equal(t, 60*time.Second, cfg.Quotes.CacheTTL)
		assert.Equal(t, 10*time.Second, cfg.Quotes.Timeout)
		assert.Equal(t, 2*time.Second, cfg.Orders.FillDelay)
		assert.False(t, cfg.Orders.EnforceBuyingPower)
		assert.Equal(t, []string{"AAPL", "TSLA", "NVDA", "MSFT", "AMD", "GOOGL", "AMZN"}, cfg.Quotes.Symbols)
		assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "redis")
		t.Setenv("QUOTE_CACHE_TTL", "5s")
		t.Setenv("ORDER_ENFORCE_BUYING_POWER", "true")
		t.Setenv("REDIS_DB", "3")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
		t.Setenv("RECOMMENDATION_SYMBOLS", "AAPL,IBM")

		cfg := Load()

		assert.Equal(t, "redis", cfg.Store.Backend)
		assert.Equal(t, 5*time.Second, cfg.Quotes.CacheTTL)
		assert.True(t, cfg.Orders.EnforceBuyingPower)
		assert.Equal(t, 3, cfg.Redis.DB)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, []string{"AAPL", "IBM"}, cfg.Quotes.Symbols)
	})

	t.Run("malformed values fall back to defaults", func(t *testing.T) {
		t.Setenv("QUOTE_TIMEOUT", "soon")
		t.Setenv("REDIS_DB", "x")

		cfg := Load()

		assert.Equal(t, 10*time.Second, cfg.Quotes.Timeout)
		assert.Equal(t, 0, cfg.Redis.DB)
	})
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", d.ConnectionString())
}

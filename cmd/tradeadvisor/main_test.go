package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/trade-advisor/internal/config"
	"github.com/trogers1052/trade-advisor/internal/orders"
)

type recordingActivator struct{ calls []string }

func (r *recordingActivator) Activate(name string) error {
	r.calls = append(r.calls, "on:"+name)
	return nil
}

func (r *recordingActivator) Deactivate(name string) error {
	r.calls = append(r.calls, "off:"+name)
	return nil
}

func TestPinnedActivator(t *testing.T) {
	inner := &recordingActivator{}
	p := pinnedActivator{ScreenActivator: inner, pinned: map[string]bool{"alerts": true}}

	require.NoError(t, p.Activate("alerts"))
	require.NoError(t, p.Deactivate("alerts"))
	require.NoError(t, p.Activate("watchlist"))
	require.NoError(t, p.Deactivate("watchlist"))

	assert.Equal(t, []string{"on:watchlist", "off:watchlist"}, inner.calls)
}

func TestNewLogger(t *testing.T) {
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger = newLogger(config.LogConfig{Level: "nonsense"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logLevel = "debug"
	defer func() { logLevel = "" }()
	logger = newLogger(config.LogConfig{Level: "error", Format: "console"})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewAppInMemory(t *testing.T) {
	ctx := context.Background()
	cfg := config.Load()
	cfg.Store.Backend = "memory"
	cfg.Quotes.CacheBackend = "memory"

	a, err := newApp(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.journal.(*orders.Journal)
	assert.True(t, ok)

	require.NoError(t, a.seed(ctx))
	positions, err := a.ledger.ListPositions(ctx)
	require.NoError(t, err)
	assert.Len(t, positions, 3)

	items, err := a.watchlist.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 4)

	// seeding twice leaves data alone
	require.NoError(t, a.seed(ctx))
	positions, _ = a.ledger.ListPositions(ctx)
	assert.Len(t, positions, 3)
}

func TestNewAppUnknownBackends(t *testing.T) {
	cfg := config.Load()
	cfg.Store.Backend = "etcd"
	_, err := newApp(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown store backend")

	cfg.Store.Backend = "memory"
	cfg.Quotes.CacheBackend = "memcached"
	_, err = newApp(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown quote cache backend")
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/trogers1052/trade-advisor/internal/alerts"
	"github.com/trogers1052/trade-advisor/internal/config"
	"github.com/trogers1052/trade-advisor/internal/database"
	"github.com/trogers1052/trade-advisor/internal/kafka"
	"github.com/trogers1052/trade-advisor/internal/market"
	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/orders"
	"github.com/trogers1052/trade-advisor/internal/portfolio"
	"github.com/trogers1052/trade-advisor/internal/quotes"
	"github.com/trogers1052/trade-advisor/internal/recommend"
	"github.com/trogers1052/trade-advisor/internal/store"
	"github.com/trogers1052/trade-advisor/internal/watchlist"
)

// executionJournal is satisfied by both database.DB and orders.Journal
type executionJournal interface {
	kafka.ExecutionRepository
	ListExecutions(ctx context.Context) ([]*models.Execution, error)
}

// app holds the wired services shared by the commands
type app struct {
	cfg *config.Config
	log zerolog.Logger
	dir *market.Directory

	store   store.Store
	quotes  *quotes.Source
	journal executionJournal

	board     *recommend.Board
	ledger    *portfolio.Ledger
	accounts  *portfolio.Accounts
	watchlist *watchlist.Service
	alerts    *alerts.Service

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, dir: market.Default()}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	cache, err := a.openQuoteCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	provider := quotes.NewAlphaVantage(cfg.Quotes.BaseURL, cfg.Quotes.APIKey, cfg.Quotes.Timeout)
	a.quotes = quotes.NewSource(cache, provider, quotes.NewFallback(a.dir, 0), log, quotes.WithTimeout(cfg.Quotes.Timeout))

	engine := recommend.NewEngine(a.quotes, a.dir, time.Now)
	a.board = recommend.NewBoard(engine, a.quotes, cfg.Quotes.Symbols, log)
	a.ledger = portfolio.NewLedger(a.store, a.quotes, log, portfolio.WithDayChangeMode(cfg.Portfolio.DayChangeMode))
	a.accounts = portfolio.NewAccounts(a.store)
	a.watchlist = watchlist.NewService(a.store, a.quotes, a.dir, log)
	a.alerts = alerts.NewService(a.store, a.quotes, log)
	if a.journal == nil {
		a.journal = orders.NewJournal(a.store)
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	cfg := a.cfg
	switch cfg.Store.Backend {
	case "memory":
		a.store = store.NewMemory()
	case "sqlite":
		s, err := store.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		a.store = s
		a.closers = append(a.closers, s.Close)
	case "redis":
		s, err := store.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
		if err != nil {
			return err
		}
		a.store = s
		a.closers = append(a.closers, s.Close)
	case "postgres":
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			return err
		}
		a.store = db
		a.journal = db
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	a.log.Info().Str("backend", cfg.Store.Backend).Msg("store opened")
	return nil
}

func (a *app) openQuoteCache(ctx context.Context) (quotes.Cache, error) {
	cfg := a.cfg
	switch cfg.Quotes.CacheBackend {
	case "memory":
		return quotes.NewMemoryCache(cfg.Quotes.CacheTTL, time.Now), nil
	case "redis":
		var client *redis.Client
		if rs, ok := a.store.(*store.Redis); ok {
			client = rs.Client()
		} else {
			rs, err := store.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, rs.Close)
			client = rs.Client()
		}
		return quotes.NewRedisCache(client, cfg.Redis.KeyPrefix, cfg.Quotes.CacheTTL, a.log), nil
	default:
		return nil, fmt.Errorf("unknown quote cache backend %q", cfg.Quotes.CacheBackend)
	}
}

// seed writes demo data into any section that has never been written
func (a *app) seed(ctx context.Context) error {
	if _, err := a.ledger.SeedDemo(ctx); err != nil {
		return fmt.Errorf("failed to seed portfolio: %w", err)
	}
	if _, err := a.accounts.SeedDemo(ctx); err != nil {
		return fmt.Errorf("failed to seed account: %w", err)
	}
	if _, err := a.watchlist.SeedDemo(ctx); err != nil {
		return fmt.Errorf("failed to seed watchlist: %w", err)
	}
	return nil
}

// Close releases backends in reverse order of opening
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("error closing backend")
		}
	}
	a.closers = nil
}

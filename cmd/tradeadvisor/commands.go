package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/trogers1052/trade-advisor/internal/api"
	"github.com/trogers1052/trade-advisor/internal/config"
	"github.com/trogers1052/trade-advisor/internal/database"
	"github.com/trogers1052/trade-advisor/internal/kafka"
	"github.com/trogers1052/trade-advisor/internal/orders"
	"github.com/trogers1052/trade-advisor/internal/poller"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, order simulator and polling controllers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := newLogger(cfg.Log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if cfg.Orders.SeedDemoData {
				if err := a.seed(ctx); err != nil {
					return err
				}
			}

			var wg sync.WaitGroup

			var publisher orders.EventPublisher
			if cfg.Kafka.Enabled {
				producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
				defer producer.Close()
				publisher = producer

				consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, a.journal, log)
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := consumer.Start(ctx); err != nil {
						log.Error().Err(err).Msg("kafka consumer stopped with error")
					}
				}()
			}

			manager := orders.NewManager(a.store, a.quotes, a.ledger, a.accounts, a.dir, publisher, orders.Config{
				FillDelay:          cfg.Orders.FillDelay,
				EnforceBuyingPower: cfg.Orders.EnforceBuyingPower,
			}, log)
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = manager.Run(ctx)
			}()

			scheduler := poller.NewScheduler(log)
			hub := api.NewHub(pinnedActivator{
				ScreenActivator: scheduler,
				pinned:          map[string]bool{poller.ScreenAlerts: true},
			}, []string{
				poller.ScreenRecommendations,
				poller.ScreenPortfolio,
				poller.ScreenWatchlist,
				poller.ScreenAlerts,
			}, log)

			controllers := []struct {
				name     string
				interval time.Duration
				task     poller.Task
			}{
				{poller.ScreenRecommendations, cfg.Polling.Recommendations, poller.RecommendationsTask(a.board, hub)},
				{poller.ScreenPortfolio, cfg.Polling.Portfolio, poller.PortfolioTask(a.ledger, hub)},
				{poller.ScreenWatchlist, cfg.Polling.Watchlist, poller.WatchlistTask(a.watchlist, hub)},
				{poller.ScreenAlerts, cfg.Polling.Alerts, poller.AlertsTask(a.alerts, hub)},
			}
			for _, c := range controllers {
				if err := scheduler.Register(c.name, c.interval, c.task); err != nil {
					return err
				}
			}
			// alerts are checked whether or not anyone watches the screen
			if err := scheduler.Activate(poller.ScreenAlerts); err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			handler := api.NewHandler(api.Deps{
				Board:     a.board,
				Ledger:    a.ledger,
				Accounts:  a.accounts,
				Orders:    manager,
				Watchlist: a.watchlist,
				Alerts:    a.alerts,
				Quotes:    a.quotes,
				Journal:   a.journal,
			}, log)

			srv := &http.Server{
				Addr:              cfg.Server.Addr(),
				Handler:           api.SetupRoutes(handler, hub),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("starting HTTP server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				stop()
				wg.Wait()
				return fmt.Errorf("http server failed: %w", err)
			}

			log.Info().Msg("shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("http shutdown failed")
			}
			wg.Wait()
			return nil
		},
	}
}

// pinnedActivator keeps pinned controllers running regardless of subscribers
type pinnedActivator struct {
	api.ScreenActivator
	pinned map[string]bool
}

func (p pinnedActivator) Activate(name string) error {
	if p.pinned[name] {
		return nil
	}
	return p.ScreenActivator.Activate(name)
}

func (p pinnedActivator) Deactivate(name string) error {
	if p.pinned[name] {
		return nil
	}
	return p.ScreenActivator.Deactivate(name)
}

func recommendCmd() *cobra.Command {
	var (
		asJSON  bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "recommend [symbols...]",
		Short: "Print recommendations for the configured or given symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if len(args) > 0 {
				cfg.Quotes.Symbols = args
			}
			// a one-shot run needs no shared state
			cfg.Store.Backend = "memory"
			log := newLogger(cfg.Log)

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			list := a.board.List
			if refresh {
				list = a.board.Refresh
			}
			recs, err := list(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SYMBOL\tPRICE\tBUY\tSELL\tSTOP\tCONF\tRISK\tTIMEFRAME")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f\t%s\t%s\n",
					r.Symbol, r.CurrentPrice, r.RecommendedBuyPrice, r.TargetSellPrice,
					r.StopLoss, r.ConfidenceScore, r.Analysis.RiskLevel, r.Timeframe)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the quote cache")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := newLogger(cfg.Log)

			db, err := database.New(cfg.Database.ConnectionString())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
				return err
			}
			log.Info().Str("path", cfg.Database.MigrationsPath).Msg("migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the demo portfolio, account and watchlist if absent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := newLogger(cfg.Log)

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.seed(cmd.Context()); err != nil {
				return err
			}
			log.Info().Str("backend", cfg.Store.Backend).Msg("demo data seeded")
			return nil
		},
	}
}

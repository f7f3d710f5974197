package poller

import (
	"context"

	"github.com/trogers1052/trade-advisor/internal/models"
)

// Screen names double as controller names and websocket channels
const (
	ScreenRecommendations = "recommendations"
	ScreenPortfolio       = "portfolio"
	ScreenWatchlist       = "watchlist"
	ScreenAlerts          = "alerts"
)

// Broadcaster pushes a refreshed payload to a screen's subscribers
type Broadcaster interface {
	Broadcast(screen string, payload any)
}

type RecommendationPoller interface {
	Poll(ctx context.Context) ([]models.Recommendation, error)
}

type PortfolioRefresher interface {
	RefreshPrices(ctx context.Context) ([]*models.Position, error)
	Summary(ctx context.Context) (*models.PortfolioSummary, error)
}

type WatchlistRefresher interface {
	Refresh(ctx context.Context) ([]models.WatchlistItem, error)
}

type AlertChecker interface {
	Check(ctx context.Context) ([]*models.PriceAlert, error)
}

// RecommendationsTask regenerates recommendations from the quote cache as it
// stands. Ticks never invalidate the cache.
func RecommendationsTask(board RecommendationPoller, out Broadcaster) Task {
	return func(ctx context.Context) error {
		recs, err := board.Poll(ctx)
		if err != nil {
			return err
		}
		out.Broadcast(ScreenRecommendations, recs)
		return nil
	}
}

// PortfolioTask reprices positions and pushes the new summary
func PortfolioTask(ledger PortfolioRefresher, out Broadcaster) Task {
	return func(ctx context.Context) error {
		if _, err := ledger.RefreshPrices(ctx); err != nil {
			return err
		}
		summary, err := ledger.Summary(ctx)
		if err != nil {
			return err
		}
		out.Broadcast(ScreenPortfolio, summary)
		return nil
	}
}

// WatchlistTask reprices the watchlist
func WatchlistTask(list WatchlistRefresher, out Broadcaster) Task {
	return func(ctx context.Context) error {
		items, err := list.Refresh(ctx)
		if err != nil {
			return err
		}
		out.Broadcast(ScreenWatchlist, items)
		return nil
	}
}

// AlertsTask checks active alerts and pushes any that fired
func AlertsTask(alerts AlertChecker, out Broadcaster) Task {
	return func(ctx context.Context) error {
		triggered, err := alerts.Check(ctx)
		if err != nil {
			return err
		}
		if len(triggered) > 0 {
			out.Broadcast(ScreenAlerts, triggered)
		}
		return nil
	}
}

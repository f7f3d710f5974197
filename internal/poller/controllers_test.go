package poller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/trade-advisor/internal/models"
)

type recordingBroadcaster struct {
	mu       sync.Mutex
	screens  []string
	payloads []any
}

func (r *recordingBroadcaster) Broadcast(screen string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screens = append(r.screens, screen)
	r.payloads = append(r.payloads, payload)
}

type fakeBoard struct {
	recs []models.Recommendation
	err  error
}

func (f *fakeBoard) Poll(context.Context) ([]models.Recommendation, error) { return f.recs, f.err }

type fakeLedger struct {
	refreshed int
	summary   *models.PortfolioSummary
}

func (f *fakeLedger) RefreshPrices(context.Context) ([]*models.Position, error) {
	f.refreshed++
	return nil, nil
}

func (f *fakeLedger) Summary(context.Context) (*models.PortfolioSummary, error) {
	return f.summary, nil
}

type fakeWatchlist struct{ items []models.WatchlistItem }

func (f *fakeWatchlist) Refresh(context.Context) ([]models.WatchlistItem, error) { return f.items, nil }

type fakeAlerts struct{ fired []*models.PriceAlert }

func (f *fakeAlerts) Check(context.Context) ([]*models.PriceAlert, error) { return f.fired, nil }

func TestRecommendationsTask(t *testing.T) {
	ctx := context.Background()

	t.Run("broadcasts the regenerated list", func(t *testing.T) {
		out := &recordingBroadcaster{}
		board := &fakeBoard{recs: []models.Recommendation{{Symbol: "TSLA"}}}

		require.NoError(t, RecommendationsTask(board, out)(ctx))
		assert.Equal(t, []string{ScreenRecommendations}, out.screens)
		assert.Equal(t, board.recs, out.payloads[0])
	})

	t.Run("failure broadcasts nothing", func(t *testing.T) {
		out := &recordingBroadcaster{}
		board := &fakeBoard{err: errors.New("failed to load recommendations")}

		assert.Error(t, RecommendationsTask(board, out)(ctx))
		assert.Empty(t, out.screens)
	})
}

func TestPortfolioTask(t *testing.T) {
	out := &recordingBroadcaster{}
	ledger := &fakeLedger{summary: &models.PortfolioSummary{}}

	require.NoError(t, PortfolioTask(ledger, out)(context.Background()))
	assert.Equal(t, 1, ledger.refreshed)
	assert.Equal(t, []string{ScreenPortfolio}, out.screens)
	assert.Same(t, ledger.summary, out.payloads[0])
}

func TestWatchlistTask(t *testing.T) {
	out := &recordingBroadcaster{}
	list := &fakeWatchlist{items: []models.WatchlistItem{{Symbol: "MSFT"}}}

	require.NoError(t, WatchlistTask(list, out)(context.Background()))
	assert.Equal(t, []string{ScreenWatchlist}, out.screens)
}

func TestAlertsTask(t *testing.T) {
	ctx := context.Background()

	out := &recordingBroadcaster{}
	require.NoError(t, AlertsTask(&fakeAlerts{}, out)(ctx))
	assert.Empty(t, out.screens)

	fired := []*models.PriceAlert{{ID: "alert_1"}}
	require.NoError(t, AlertsTask(&fakeAlerts{fired: fired}, out)(ctx))
	assert.Equal(t, []string{ScreenAlerts}, out.screens)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/trogers1052/trade-advisor/internal/alerts"
	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/orders"
	"github.com/trogers1052/trade-advisor/internal/portfolio"
	"github.com/trogers1052/trade-advisor/internal/recommend"
	"github.com/trogers1052/trade-advisor/internal/watchlist"
)

// QuoteSource is the subset of quotes.Source the handlers need
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) models.Quote
}

// ExecutionLister reads the execution journal
type ExecutionLister interface {
	ListExecutions(ctx context.Context) ([]*models.Execution, error)
}

// Deps are the services behind the screen-facing API
type Deps struct {
	Board     *recommend.Board
	Ledger    *portfolio.Ledger
	Accounts  *portfolio.Accounts
	Orders    *orders.Manager
	Watchlist *watchlist.Service
	Alerts    *alerts.Service
	Quotes    QuoteSource
	Journal   ExecutionLister
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	Deps
	log zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(deps Deps, log zerolog.Logger) *Handler {
	return &Handler{
		Deps: deps,
		log:  log.With().Str("component", "api").Logger(),
	}
}

// ListRecommendations handles GET /recommendations
func (h *Handler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Board.List(r.Context())
	if err != nil {
		h.loadFailed(w, "recommendations", err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

// RefreshRecommendations handles POST /recommendations/refresh
func (h *Handler) RefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Board.Refresh(r.Context())
	if err != nil {
		h.loadFailed(w, "recommendations", err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

// ToggleWatchlist handles POST /recommendations/{id}/watchlist
func (h *Handler) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Board.ToggleWatchlist(mux.Vars(r)["id"])
	if errors.Is(err, recommend.ErrRecommendationNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// GetPortfolioSummary handles GET /portfolio
func (h *Handler) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Ledger.Summary(r.Context())
	if err != nil {
		h.loadFailed(w, "portfolio", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// ListPositions handles GET /portfolio/positions
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Ledger.ListPositions(r.Context())
	if err != nil {
		h.loadFailed(w, "positions", err)
		return
	}
	respondJSON(w, http.StatusOK, positions)
}

// ListClosedTrades handles GET /portfolio/closed-trades
func (h *Handler) ListClosedTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.Ledger.ClosedTrades(r.Context())
	if err != nil {
		h.loadFailed(w, "closed trades", err)
		return
	}
	respondJSON(w, http.StatusOK, trades)
}

// GetPerformance handles GET /portfolio/performance
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.Ledger.Performance(r.Context())
	if err != nil {
		h.loadFailed(w, "performance", err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

// GetAccount handles GET /account
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Accounts.Get(r.Context())
	if errors.Is(err, portfolio.ErrAccountNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.loadFailed(w, "account", err)
		return
	}
	respondJSON(w, http.StatusOK, acct)
}

// PlaceOrder handles POST /orders. The buying-power check here is advisory:
// it rejects obviously unaffordable buys before they are accepted.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var draft orders.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := draft.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if draft.Side == models.OrderSideBuy {
		if err := h.checkBuyingPower(r.Context(), draft); err != nil {
			if errors.Is(err, portfolio.ErrInsufficientBuyingPower) {
				respondError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			h.loadFailed(w, "account", err)
			return
		}
	}

	order, err := h.Orders.Place(r.Context(), draft)
	if err != nil {
		h.orderError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handler) checkBuyingPower(ctx context.Context, d orders.Draft) error {
	price := decimal.Zero
	if d.Price != nil {
		price = *d.Price
	} else if q := h.Quotes.FetchQuote(ctx, d.Symbol); q.Price > 0 {
		price = decimal.NewFromFloat(q.Price)
	}

	err := h.Accounts.CheckBuyingPower(ctx, d.Quantity.Mul(price))
	if errors.Is(err, portfolio.ErrAccountNotFound) {
		h.log.Warn().Msg("no trading account, skipping buying power check")
		return nil
	}
	return err
}

// CancelOrder handles POST /orders/{id}/cancel
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Cancel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.orderError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Orders.List(r.Context())
	if err != nil {
		h.loadFailed(w, "orders", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.orderError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) orderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orders.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrManagerStopped):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.loadFailed(w, "orders", err)
	}
}

// ListWatchlist handles GET /watchlist
func (h *Handler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.Watchlist.List(r.Context())
	if err != nil {
		h.loadFailed(w, "watchlist", err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// AddToWatchlist handles POST /watchlist
func (h *Handler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Watchlist.Add(r.Context(), req.Symbol)
	if errors.Is(err, watchlist.ErrInvalidSymbol) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.loadFailed(w, "watchlist", err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// RemoveFromWatchlist handles DELETE /watchlist/{id}
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	err := h.Watchlist.Remove(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, watchlist.ErrItemNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.loadFailed(w, "watchlist", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetQuote handles GET /quotes/{symbol}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Quotes.FetchQuote(r.Context(), mux.Vars(r)["symbol"]))
}

// GetIndicators handles GET /quotes/{symbol}/indicators
func (h *Handler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	q := h.Quotes.FetchQuote(r.Context(), mux.Vars(r)["symbol"])
	respondJSON(w, http.StatusOK, recommend.Indicators(q))
}

// ListAlerts handles GET /alerts
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Alerts.List(r.Context())
	if err != nil {
		h.loadFailed(w, "price alerts", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// CreateAlert handles POST /alerts
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var draft alerts.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, err := h.Alerts.Create(r.Context(), draft)
	if errors.Is(err, alerts.ErrInvalidAlert) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.loadFailed(w, "price alerts", err)
		return
	}
	respondJSON(w, http.StatusCreated, alert)
}

// DeleteAlert handles DELETE /alerts/{id}
func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	err := h.Alerts.Delete(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, alerts.ErrAlertNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.loadFailed(w, "price alerts", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckAlerts handles POST /alerts/check
func (h *Handler) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	triggered, err := h.Alerts.Check(r.Context())
	if err != nil {
		h.loadFailed(w, "price alerts", err)
		return
	}
	if triggered == nil {
		triggered = []*models.PriceAlert{}
	}
	respondJSON(w, http.StatusOK, triggered)
}

// ListExecutions handles GET /executions
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Journal.ListExecutions(r.Context())
	if err != nil {
		h.loadFailed(w, "executions", err)
		return
	}
	if entries == nil {
		entries = []*models.Execution{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// loadFailed logs the cause and reports the caller-visible load failure
func (h *Handler) loadFailed(w http.ResponseWriter, what string, err error) {
	h.log.Error().Err(err).Str("resource", what).Msg("request failed")
	respondError(w, http.StatusInternalServerError, "failed to load "+what)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

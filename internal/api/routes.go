package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// SetupRoutes configures all API routes. hub may be nil, in which case
// /ws is not served.
func SetupRoutes(handler *Handler, hub *Hub) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(handler.log))

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if hub != nil {
		r.HandleFunc("/ws", hub.ServeWS).Methods("GET")
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/recommendations", handler.ListRecommendations).Methods("GET")
	api.HandleFunc("/recommendations/refresh", handler.RefreshRecommendations).Methods("POST")
	api.HandleFunc("/recommendations/{id}/watchlist", handler.ToggleWatchlist).Methods("POST")

	api.HandleFunc("/portfolio", handler.GetPortfolioSummary).Methods("GET")
	api.HandleFunc("/portfolio/positions", handler.ListPositions).Methods("GET")
	api.HandleFunc("/portfolio/closed-trades", handler.ListClosedTrades).Methods("GET")
	api.HandleFunc("/portfolio/performance", handler.GetPerformance).Methods("GET")
	api.HandleFunc("/account", handler.GetAccount).Methods("GET")

	api.HandleFunc("/orders", handler.ListOrders).Methods("GET")
	api.HandleFunc("/orders", handler.PlaceOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", handler.GetOrder).Methods("GET")
	api.HandleFunc("/orders/{id}/cancel", handler.CancelOrder).Methods("POST")

	api.HandleFunc("/watchlist", handler.ListWatchlist).Methods("GET")
	api.HandleFunc("/watchlist", handler.AddToWatchlist).Methods("POST")
	api.HandleFunc("/watchlist/{id}", handler.RemoveFromWatchlist).Methods("DELETE")

	api.HandleFunc("/quotes/{symbol}", handler.GetQuote).Methods("GET")
	api.HandleFunc("/quotes/{symbol}/indicators", handler.GetIndicators).Methods("GET")

	api.HandleFunc("/alerts", handler.ListAlerts).Methods("GET")
	api.HandleFunc("/alerts", handler.CreateAlert).Methods("POST")
	api.HandleFunc("/alerts/check", handler.CheckAlerts).Methods("POST")
	api.HandleFunc("/alerts/{id}", handler.DeleteAlert).Methods("DELETE")

	api.HandleFunc("/executions", handler.ListExecutions).Methods("GET")

	return r
}

func requestLogger(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	}
}

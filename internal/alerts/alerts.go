// Package alerts evaluates one-shot price alerts against current quotes.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trogers1052/trade-advisor/internal/market"
	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/store"
)

var (
	ErrInvalidAlert  = errors.New("invalid alert")
	ErrAlertNotFound = errors.New("alert not found")
)

// QuoteSource is the subset of quotes.Source alerts need
type QuoteSource interface {
	FetchMultiple(ctx context.Context, symbols []string) map[string]models.Quote
}

// Draft is a new alert as submitted by the user
type Draft struct {
	Symbol        string           `json:"symbol"`
	Type          models.AlertType `json:"type"`
	TargetPrice   *float64         `json:"target_price,omitempty"`
	ChangePercent *float64         `json:"change_percent,omitempty"`
}

// Validate checks that the condition for the alert type is present
func (d Draft) Validate() error {
	if market.Normalize(d.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidAlert)
	}
	switch d.Type {
	case models.AlertTypeAbove, models.AlertTypeBelow:
		if d.TargetPrice == nil || *d.TargetPrice <= 0 {
			return fmt.Errorf("%w: %s alerts need a positive target price", ErrInvalidAlert, d.Type)
		}
	case models.AlertTypeChangePercent:
		if d.ChangePercent == nil || *d.ChangePercent == 0 {
			return fmt.Errorf("%w: change_percent alerts need a non-zero percent", ErrInvalidAlert)
		}
	default:
		return fmt.Errorf("%w: unknown alert type %q", ErrInvalidAlert, d.Type)
	}
	return nil
}

// Service owns the price alerts key
type Service struct {
	store  store.Store
	quotes QuoteSource
	now    func() time.Time
	log    zerolog.Logger

	mu sync.Mutex
}

// NewService creates an alert service
func NewService(st store.Store, quotes QuoteSource, log zerolog.Logger) *Service {
	return &Service{
		store:  st,
		quotes: quotes,
		now:    time.Now,
		log:    log.With().Str("component", "alerts").Logger(),
	}
}

// Create stores a new active alert
func (s *Service) Create(ctx context.Context, d Draft) (*models.PriceAlert, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	alert := &models.PriceAlert{
		ID:        "alert_" + uuid.NewString(),
		Symbol:    market.Normalize(d.Symbol),
		Type:      d.Type,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if d.Type == models.AlertTypeChangePercent {
		alert.ChangePercent = d.ChangePercent
	} else {
		alert.TargetPrice = d.TargetPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alerts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, append(alerts, alert)); err != nil {
		return nil, err
	}
	s.log.Info().Str("alert_id", alert.ID).Str("symbol", alert.Symbol).Str("type", string(alert.Type)).Msg("alert created")
	return alert, nil
}

// List returns all alerts, triggered ones included
func (s *Service) List(ctx context.Context) ([]*models.PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Delete removes an alert
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, a := range alerts {
		if a.ID == id {
			return s.save(ctx, append(alerts[:i], alerts[i+1:]...))
		}
	}
	return ErrAlertNotFound
}

// Check evaluates every active alert against its quote. Alerts that fire are
// deactivated and returned. Symbols without a usable quote are skipped.
func (s *Service) Check(ctx context.Context) ([]*models.PriceAlert, error) {
	s.mu.Lock()
	alerts, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var symbols []string
	for _, a := range alerts {
		if a.IsActive {
			symbols = append(symbols, a.Symbol)
		}
	}
	if len(symbols) == 0 {
		return nil, nil
	}
	quotes := s.quotes.FetchMultiple(ctx, symbols)

	s.mu.Lock()
	defer s.mu.Unlock()

	alerts, err = s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var triggered []*models.PriceAlert
	for _, a := range alerts {
		if !a.IsActive {
			continue
		}
		q, ok := quotes[a.Symbol]
		if !ok || q.Price <= 0 || !Triggered(a, q) {
			continue
		}
		price := q.Price
		a.IsActive = false
		a.TriggeredAt = &now
		a.TriggerPrice = &price
		triggered = append(triggered, a)
		s.log.Info().Str("alert_id", a.ID).Str("symbol", a.Symbol).Float64("price", price).Msg("alert triggered")
	}

	if len(triggered) > 0 {
		if err := s.save(ctx, alerts); err != nil {
			return nil, err
		}
	}
	return triggered, nil
}

// Triggered reports whether q satisfies the alert's condition
func Triggered(a *models.PriceAlert, q models.Quote) bool {
	switch a.Type {
	case models.AlertTypeAbove:
		return a.TargetPrice != nil && q.Price >= *a.TargetPrice
	case models.AlertTypeBelow:
		return a.TargetPrice != nil && q.Price <= *a.TargetPrice
	case models.AlertTypeChangePercent:
		return a.ChangePercent != nil && math.Abs(q.ChangePercent) >= math.Abs(*a.ChangePercent)
	}
	return false
}

func (s *Service) load(ctx context.Context) ([]*models.PriceAlert, error) {
	alerts := []*models.PriceAlert{}
	if _, err := store.LoadJSON(ctx, s.store, store.KeyPriceAlerts, &alerts); err != nil {
		return nil, fmt.Errorf("failed to load price alerts: %w", err)
	}
	return alerts, nil
}

func (s *Service) save(ctx context.Context, alerts []*models.PriceAlert) error {
	return store.SaveJSON(ctx, s.store, store.KeyPriceAlerts, alerts)
}

// Package orders simulates order placement and execution against the local
// ledger. Every mutation of the order list runs on one worker goroutine, so a
// scheduled fill and a user cancel can never interleave their writes.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/trogers1052/trade-advisor/internal/market"
	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/portfolio"
	"github.com/trogers1052/trade-advisor/internal/store"
)

// EventSource tags every order event published by this service
const EventSource = "simulator"

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrManagerStopped = errors.New("order manager stopped")
)

// QuoteSource is the subset of quotes.Source the manager needs
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) models.Quote
}

// EventPublisher receives order lifecycle events
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

// Draft is a user-submitted order before it is accepted
type Draft struct {
	Symbol      string           `json:"symbol"`
	CompanyName string           `json:"company_name"`
	Side        models.OrderSide `json:"type"`
	OrderType   models.OrderType `json:"order_type"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	StopPrice   *decimal.Decimal `json:"stop_price,omitempty"`
}

// Validate checks the fields required to accept the draft
func (d Draft) Validate() error {
	if market.Normalize(d.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidOrder)
	}
	if d.Side != models.OrderSideBuy && d.Side != models.OrderSideSell {
		return fmt.Errorf("%w: type must be buy or sell", ErrInvalidOrder)
	}
	switch d.OrderType {
	case models.OrderTypeMarket, models.OrderTypeLimit, models.OrderTypeStop:
	default:
		return fmt.Errorf("%w: unknown order type %q", ErrInvalidOrder, d.OrderType)
	}
	if !d.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}
	if d.OrderType == models.OrderTypeLimit && (d.Price == nil || !d.Price.IsPositive()) {
		return fmt.Errorf("%w: limit orders need a positive price", ErrInvalidOrder)
	}
	if d.StopPrice != nil && !d.StopPrice.IsPositive() {
		return fmt.Errorf("%w: stop price must be positive", ErrInvalidOrder)
	}
	return nil
}

// Config holds manager settings
type Config struct {
	FillDelay          time.Duration
	EnforceBuyingPower bool
}

type job struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// Manager owns the orders key
type Manager struct {
	store     store.Store
	quotes    QuoteSource
	ledger    *portfolio.Ledger
	accounts  *portfolio.Accounts
	dir       *market.Directory
	publisher EventPublisher
	cfg       Config
	now       func() time.Time
	log       zerolog.Logger

	jobs    chan job
	stopped chan struct{}

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// NewManager creates a manager. publisher may be nil.
func NewManager(
	st store.Store,
	quotes QuoteSource,
	ledger *portfolio.Ledger,
	accounts *portfolio.Accounts,
	dir *market.Directory,
	publisher EventPublisher,
	cfg Config,
	log zerolog.Logger,
) *Manager {
	return &Manager{
		store:     st,
		quotes:    quotes,
		ledger:    ledger,
		accounts:  accounts,
		dir:       dir,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		log:       log.With().Str("component", "orders").Logger(),
		jobs:      make(chan job),
		stopped:   make(chan struct{}),
		timers:    make(map[string]*time.Timer),
	}
}

// Run processes order jobs until ctx is cancelled. Orders still pending from
// a previous run are rescheduled on start.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.stopped)
	defer m.stopTimers()

	if pending, err := m.pending(ctx); err != nil {
		m.log.Error().Err(err).Msg("failed to load pending orders")
	} else {
		for _, o := range pending {
			m.schedule(o.ID)
		}
		if len(pending) > 0 {
			m.log.Info().Int("count", len(pending)).Msg("rescheduled pending orders")
		}
	}

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("order manager shutting down")
			return nil
		case j := <-m.jobs:
			j.done <- j.run(j.ctx)
		}
	}
}

// submit runs fn on the worker and waits for its result
func (m *Manager) submit(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, run: fn, done: make(chan error, 1)}
	select {
	case m.jobs <- j:
	case <-m.stopped:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-j.done
}

// Place accepts a draft as a pending order and schedules its fill
func (m *Manager) Place(ctx context.Context, d Draft) (*models.Order, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	symbol := market.Normalize(d.Symbol)
	order := &models.Order{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		CompanyName: d.CompanyName,
		Side:        d.Side,
		OrderType:   d.OrderType,
		Quantity:    d.Quantity,
		Price:       d.Price,
		StopPrice:   d.StopPrice,
		Status:      models.OrderStatusPending,
		CreatedAt:   m.now(),
	}
	if order.CompanyName == "" {
		order.CompanyName = m.dir.CompanyName(symbol)
	}

	err := m.submit(ctx, func(ctx context.Context) error {
		orders, err := m.load(ctx)
		if err != nil {
			return err
		}
		return m.save(ctx, append(orders, order))
	})
	if err != nil {
		return nil, err
	}

	m.schedule(order.ID)
	m.log.Info().
		Str("order_id", order.ID).
		Str("symbol", symbol).
		Str("side", string(order.Side)).
		Str("quantity", order.Quantity.String()).
		Msg("order placed")
	m.publish(ctx, models.EventOrderPlaced, order)

	placed := *order
	return &placed, nil
}

// Fill executes a pending order at the current market price. Orders that are
// no longer pending are left alone. If no usable quote is available the order
// stays pending.
func (m *Manager) Fill(ctx context.Context, id string) (*models.Order, error) {
	var result *models.Order
	var eventType string

	err := m.submit(ctx, func(ctx context.Context) error {
		orders, err := m.load(ctx)
		if err != nil {
			return err
		}
		order := find(orders, id)
		if order == nil {
			return ErrOrderNotFound
		}
		result = order
		if !order.IsPending() {
			return nil
		}

		q := m.quotes.FetchQuote(ctx, order.Symbol)
		if q.Price <= 0 {
			m.log.Warn().Str("order_id", id).Str("symbol", order.Symbol).Msg("no usable quote, order stays pending")
			return nil
		}
		price := decimal.NewFromFloat(q.Price)
		total := order.Quantity.Mul(price)

		if m.cfg.EnforceBuyingPower && order.Side == models.OrderSideBuy {
			if err := m.accounts.CheckBuyingPower(ctx, total); err != nil {
				if !errors.Is(err, portfolio.ErrInsufficientBuyingPower) {
					return err
				}
				order.Status = models.OrderStatusRejected
				order.RejectReason = err.Error()
				eventType = models.EventOrderRejected
				m.log.Warn().Str("order_id", id).Err(err).Msg("order rejected at fill time")
				return m.save(ctx, orders)
			}
		}

		now := m.now()
		qty := order.Quantity
		order.Status = models.OrderStatusFilled
		order.FilledAt = &now
		order.FilledPrice = &price
		order.FilledQuantity = &qty
		if err := m.save(ctx, orders); err != nil {
			return err
		}
		eventType = models.EventOrderFilled

		m.settle(ctx, order, price)
		return nil
	})
	m.forget(id)
	if err != nil {
		return nil, err
	}

	if eventType != "" {
		m.log.Info().
			Str("order_id", id).
			Str("status", string(result.Status)).
			Msg("order executed")
		m.publish(ctx, eventType, result)
	}
	out := *result
	return &out, nil
}

// settle applies a filled order to the ledger and the account. Each write is
// independent of the order-status write; failures are logged.
func (m *Manager) settle(ctx context.Context, order *models.Order, price decimal.Decimal) {
	trade, err := m.ledger.ApplyFill(ctx, portfolio.Fill{
		OrderID:     order.ID,
		Symbol:      order.Symbol,
		CompanyName: order.CompanyName,
		Side:        order.Side,
		Quantity:    order.Quantity,
		Price:       price,
		Sector:      m.dir.Sector(order.Symbol),
	})
	if errors.Is(err, portfolio.ErrNoPosition) {
		return
	}
	if err != nil {
		m.log.Error().Err(err).Str("order_id", order.ID).Msg("failed to apply fill to ledger")
		return
	}

	total := order.Quantity.Mul(price)
	if trade != nil {
		total = trade.Quantity.Mul(price)
	}
	if err := m.accounts.ApplyFill(ctx, order.Side, total); err != nil {
		m.log.Error().Err(err).Str("order_id", order.ID).Msg("failed to apply fill to account")
	}
}

// Cancel moves a pending order to cancelled. Cancelling an order in any other
// state returns it unchanged.
func (m *Manager) Cancel(ctx context.Context, id string) (*models.Order, error) {
	var result *models.Order
	var cancelled bool

	err := m.submit(ctx, func(ctx context.Context) error {
		orders, err := m.load(ctx)
		if err != nil {
			return err
		}
		order := find(orders, id)
		if order == nil {
			return ErrOrderNotFound
		}
		result = order
		if !order.IsPending() {
			return nil
		}
		order.Status = models.OrderStatusCancelled
		cancelled = true
		return m.save(ctx, orders)
	})
	if err != nil {
		return nil, err
	}

	if cancelled {
		m.forget(id)
		m.log.Info().Str("order_id", id).Msg("order cancelled")
		m.publish(ctx, models.EventOrderCancelled, result)
	}
	out := *result
	return &out, nil
}

// List returns all orders in placement order
func (m *Manager) List(ctx context.Context) ([]*models.Order, error) {
	return m.load(ctx)
}

// Get returns one order
func (m *Manager) Get(ctx context.Context, id string) (*models.Order, error) {
	orders, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if o := find(orders, id); o != nil {
		return o, nil
	}
	return nil, ErrOrderNotFound
}

func (m *Manager) pending(ctx context.Context) ([]*models.Order, error) {
	orders, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Order
	for _, o := range orders {
		if o.IsPending() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *Manager) schedule(id string) {
	m.timersMu.Lock()
	defer m.timersMu.Unlock()

	m.timers[id] = time.AfterFunc(m.cfg.FillDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := m.Fill(ctx, id); err != nil && !errors.Is(err, ErrManagerStopped) {
			m.log.Error().Err(err).Str("order_id", id).Msg("scheduled fill failed")
		}
	})
}

// forget stops and drops the fill timer for id
func (m *Manager) forget(id string) {
	m.timersMu.Lock()
	defer m.timersMu.Unlock()

	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
	}
}

func (m *Manager) stopTimers() {
	m.timersMu.Lock()
	defer m.timersMu.Unlock()

	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}

func (m *Manager) publish(ctx context.Context, eventType string, order *models.Order) {
	if m.publisher == nil {
		return
	}
	snapshot := *order
	event := &models.OrderEvent{
		EventType: eventType,
		Source:    EventSource,
		Order:     &snapshot,
		Symbol:    order.Symbol,
		Timestamp: m.now(),
	}
	if err := m.publisher.PublishOrderEvent(ctx, event); err != nil {
		m.log.Warn().Err(err).Str("order_id", order.ID).Str("event", eventType).Msg("failed to publish order event")
	}
}

func (m *Manager) load(ctx context.Context) ([]*models.Order, error) {
	orders := []*models.Order{}
	if _, err := store.LoadJSON(ctx, m.store, store.KeyOrders, &orders); err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

func (m *Manager) save(ctx context.Context, orders []*models.Order) error {
	return store.SaveJSON(ctx, m.store, store.KeyOrders, orders)
}

func find(orders []*models.Order, id string) *models.Order {
	for _, o := range orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

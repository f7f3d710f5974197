package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/trogers1052/trade-advisor/internal/models"
)

var (
	ErrRateLimited    = errors.New("alpha vantage rate limit or information note")
	ErrMalformedQuote = errors.New("malformed global quote")
)

// Provider returns a live quote for a symbol
type Provider interface {
	GlobalQuote(ctx context.Context, symbol string) (models.Quote, error)
}

// AlphaVantage queries the GLOBAL_QUOTE endpoint
type AlphaVantage struct {
	client *resty.Client
	apiKey string
}

// NewAlphaVantage creates a provider against baseURL with a per-request timeout
func NewAlphaVantage(baseURL, apiKey string, timeout time.Duration) *AlphaVantage {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "trade-advisor/1.0")

	return &AlphaVantage{client: client, apiKey: apiKey}
}

// GlobalQuote fetches and parses one quote
func (a *AlphaVantage) GlobalQuote(ctx context.Context, symbol string) (models.Quote, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "GLOBAL_QUOTE",
			"symbol":   symbol,
			"apikey":   a.apiKey,
		}).
		Get("/query")
	if err != nil {
		return models.Quote{}, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.Quote{}, fmt.Errorf("alphavantage http %d", resp.StatusCode())
	}
	return parseGlobalQuote(resp.Body())
}

func parseGlobalQuote(body []byte) (models.Quote, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.Quote{}, fmt.Errorf("%w: %v", ErrMalformedQuote, err)
	}
	if _, ok := raw["Note"]; ok {
		return models.Quote{}, ErrRateLimited
	}
	if _, ok := raw["Information"]; ok {
		return models.Quote{}, ErrRateLimited
	}

	var gq map[string]string
	if err := json.Unmarshal(raw["Global Quote"], &gq); err != nil || len(gq) == 0 {
		return models.Quote{}, fmt.Errorf("%w: missing Global Quote", ErrMalformedQuote)
	}

	field := func(name string) (string, error) {
		v, ok := gq[name]
		if !ok || strings.TrimSpace(v) == "" {
			return "", fmt.Errorf("%w: missing %q", ErrMalformedQuote, name)
		}
		return strings.TrimSpace(v), nil
	}
	number := func(name string) (float64, error) {
		v, err := field(name)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrMalformedQuote, name, err)
		}
		return f, nil
	}

	symbol, err := field("01. symbol")
	if err != nil {
		return models.Quote{}, err
	}
	price, err := number("05. price")
	if err != nil {
		return models.Quote{}, err
	}
	volumeStr, err := field("06. volume")
	if err != nil {
		return models.Quote{}, err
	}
	volume, err := strconv.ParseInt(volumeStr, 10, 64)
	if err != nil {
		return models.Quote{}, fmt.Errorf("%w: 06. volume: %v", ErrMalformedQuote, err)
	}
	change, err := number("09. change")
	if err != nil {
		return models.Quote{}, err
	}
	changePercent, err := number("10. change percent")
	if err != nil {
		return models.Quote{}, err
	}

	return models.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
	}, nil
}

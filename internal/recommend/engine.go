// Package recommend turns quotes into day-trade recommendations.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/trogers1052/trade-advisor/internal/market"
	"github.com/trogers1052/trade-advisor/internal/models"
)

const (
	highVolumeThreshold       = 10_000_000
	veryHighVolumeThreshold   = 50_000_000
	maxConfidence             = 9.5
	highVolatilityThreshold   = 3
	mediumVolatilityThreshold = 1.5
	minVolatility             = 1
)

// Indicator tags attached to a recommendation's analysis
const (
	TagBullishMomentum   = "Bullish Momentum"
	TagHighVolume        = "High Volume"
	TagHighVolatility    = "High Volatility"
	TagStrongUptrend     = "Strong Uptrend"
	TagOversoldCondition = "Oversold Condition"
	TagNeutralTrend      = "Neutral Trend"
)

// QuoteSource is the subset of quotes.Source the engine needs
type QuoteSource interface {
	FetchMultiple(ctx context.Context, symbols []string) map[string]models.Quote
	Invalidate(ctx context.Context)
}

// Recommend scores a single quote. It returns false when the quote carries no
// usable signal: a flat or falling price that moved less than one percent.
func Recommend(q models.Quote, now time.Time, dir *market.Directory) (*models.Recommendation, bool) {
	trendUp := q.Change > 0
	highVolume := q.Volume > highVolumeThreshold
	volatility := math.Abs(q.ChangePercent)

	if !trendUp && volatility < minVolatility {
		return nil, false
	}

	confidence := 5.0
	if trendUp {
		confidence += 2
	}
	if highVolume {
		confidence += 1.5
	}
	if volatility > 2 {
		confidence += 1
	}
	confidence = round(math.Min(maxConfidence, confidence), 1)

	buyFactor := 1.002
	if trendUp {
		buyFactor = 0.998
	}
	buyPrice := round(q.Price*buyFactor, 2)
	sellPrice := round(q.Price*(1+volatility/100+0.03), 2)
	stopLoss := round(q.Price*0.97, 2)

	timeframe := "2-5 days"
	if volatility > highVolatilityThreshold {
		timeframe = "1-2 days"
	}

	var profitPct float64
	if q.Price != 0 {
		profitPct = (sellPrice - q.Price) / q.Price * 100
	}

	marketCap := q.MarketCap
	if marketCap == "" {
		marketCap = "N/A"
	}

	return &models.Recommendation{
		ID:                     fmt.Sprintf("trade_%s_%d", q.Symbol, now.UnixMilli()),
		Symbol:                 q.Symbol,
		CompanyName:            dir.CompanyName(q.Symbol),
		CurrentPrice:           q.Price,
		RecommendedBuyPrice:    buyPrice,
		TargetSellPrice:        sellPrice,
		StopLoss:               stopLoss,
		ConfidenceScore:        confidence,
		PotentialProfit:        sellPrice - q.Price,
		PotentialProfitPercent: profitPct,
		Timeframe:              timeframe,
		Volume:                 q.Volume,
		MarketCap:              marketCap,
		Sector:                 dir.Sector(q.Symbol),
		Analysis:               analyze(q, trendUp, highVolume, volatility),
		Timestamp:              now,
	}, true
}

func analyze(q models.Quote, trendUp, highVolume bool, volatility float64) models.Analysis {
	a := models.Analysis{
		TechnicalIndicators: indicatorTags(q),
		NewsSentiment:       "neutral",
		MarketTrend:         "sideways",
		RiskLevel:           riskLevel(volatility),
		KeyFactors: []string{
			"Current price: $" + strconv.FormatFloat(q.Price, 'f', -1, 64),
			fmt.Sprintf("24h change: %.2f%%", q.ChangePercent),
			fmt.Sprintf("Volume: %.1fM", float64(q.Volume)/1_000_000),
			"Normal trading volume",
		},
	}
	if trendUp {
		a.NewsSentiment = "positive"
		a.MarketTrend = "bullish"
	}
	if highVolume {
		a.KeyFactors[3] = "High trading volume"
	}
	return a
}

func indicatorTags(q models.Quote) []string {
	var tags []string
	if q.Change > 0 {
		tags = append(tags, TagBullishMomentum)
	}
	if q.Volume > veryHighVolumeThreshold {
		tags = append(tags, TagHighVolume)
	}
	if math.Abs(q.ChangePercent) > highVolatilityThreshold {
		tags = append(tags, TagHighVolatility)
	}
	if q.ChangePercent > 2 {
		tags = append(tags, TagStrongUptrend)
	} else if q.ChangePercent < -2 {
		tags = append(tags, TagOversoldCondition)
	}
	if len(tags) == 0 {
		return []string{TagNeutralTrend}
	}
	return tags
}

func riskLevel(volatility float64) string {
	switch {
	case volatility > highVolatilityThreshold:
		return models.RiskHigh
	case volatility > mediumVolatilityThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// round rounds to the given number of decimal places, halves rounding up
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}

// Engine generates recommendation lists
type Engine struct {
	quotes QuoteSource
	dir    *market.Directory
	now    func() time.Time
}

// NewEngine creates an engine; a nil clock uses time.Now
func NewEngine(quotes QuoteSource, dir *market.Directory, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{quotes: quotes, dir: dir, now: now}
}

// Generate fetches every symbol and returns the recommendations sorted by
// confidence, highest first. Equal scores keep the input order.
func (e *Engine) Generate(ctx context.Context, symbols []string) ([]*models.Recommendation, error) {
	quotes := e.quotes.FetchMultiple(ctx, symbols)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation interrupted: %w", err)
	}

	now := e.now()
	recs := []*models.Recommendation{}
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		sym = market.Normalize(sym)
		if seen[sym] {
			continue
		}
		seen[sym] = true

		q, ok := quotes[sym]
		if !ok {
			continue
		}
		if rec, ok := Recommend(q, now, e.dir); ok {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ConfidenceScore > recs[j].ConfidenceScore
	})
	return recs, nil
}

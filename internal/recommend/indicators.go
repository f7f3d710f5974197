package recommend

import (
	"math"

	"github.com/trogers1052/trade-advisor/internal/models"
)

// Indicators derives single-quote technical readings. RSI is approximated
// from the day's percent change since no price history is kept.
func Indicators(q models.Quote) []models.IndicatorReading {
	rsi := approximateRSI(q.ChangePercent)
	volatility := math.Abs(q.ChangePercent)

	readings := make([]models.IndicatorReading, 0, 4)

	r := models.IndicatorReading{Name: models.IndicatorRSI14, Value: rsi, Signal: models.SignalNeutral, Description: "Neutral momentum"}
	switch {
	case rsi > 70:
		r.Signal, r.Description = models.SignalSell, "Overbought condition"
	case rsi < 30:
		r.Signal, r.Description = models.SignalBuy, "Oversold condition"
	}
	readings = append(readings, r)

	r = models.IndicatorReading{Name: models.IndicatorMASignal, Value: q.Price, Signal: models.SignalNeutral, Description: "Price near moving average"}
	switch {
	case q.ChangePercent > 0:
		r.Signal, r.Description = models.SignalBuy, "Price above moving average"
	case q.ChangePercent < -2:
		r.Signal, r.Description = models.SignalSell, "Price below moving average"
	}
	readings = append(readings, r)

	r = models.IndicatorReading{Name: models.IndicatorVolume, Value: float64(q.Volume), Signal: models.SignalNeutral, Description: "Normal volume"}
	if q.Volume > veryHighVolumeThreshold {
		r.Signal, r.Description = models.SignalBuy, "High volume confirms trend"
	}
	readings = append(readings, r)

	r = models.IndicatorReading{Name: models.IndicatorVolatility, Value: volatility, Signal: models.SignalBuy, Description: "Low volatility - stable"}
	switch {
	case volatility > highVolatilityThreshold:
		r.Signal, r.Description = models.SignalSell, "High volatility - risky"
	case volatility > 1:
		r.Signal, r.Description = models.SignalNeutral, "Moderate volatility"
	}
	readings = append(readings, r)

	return readings
}

func approximateRSI(changePercent float64) float64 {
	change := math.Abs(changePercent)
	if changePercent > 0 {
		return math.Min(100, 50+change*5)
	}
	return math.Max(0, 50-change*5)
}

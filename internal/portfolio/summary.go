package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/trogers1052/trade-advisor/internal/models"
)

// Summarize aggregates positions. It does not reprice them.
func Summarize(positions []*models.Position) *models.PortfolioSummary {
	s := &models.PortfolioSummary{
		Positions:        positions,
		SectorAllocation: []models.SectorAllocation{},
	}
	if s.Positions == nil {
		s.Positions = []*models.Position{}
	}

	sectorValues := make(map[string]decimal.Decimal)
	var sectorOrder []string

	for _, p := range positions {
		s.TotalValue = s.TotalValue.Add(p.TotalValue)
		s.TotalCost = s.TotalCost.Add(p.CostBasis())
		s.DayChange = s.DayChange.Add(p.DayChange)

		if _, ok := sectorValues[p.Sector]; !ok {
			sectorOrder = append(sectorOrder, p.Sector)
		}
		sectorValues[p.Sector] = sectorValues[p.Sector].Add(p.TotalValue)

		if s.TopGainer == nil || p.UnrealizedPnLPercent.GreaterThan(s.TopGainer.UnrealizedPnLPercent) {
			s.TopGainer = p
		}
		if s.TopLoser == nil || p.UnrealizedPnLPercent.LessThan(s.TopLoser.UnrealizedPnLPercent) {
			s.TopLoser = p
		}
	}

	s.TotalPnL = s.TotalValue.Sub(s.TotalCost)
	if s.TotalCost.IsPositive() {
		s.TotalPnLPercent = s.TotalPnL.Div(s.TotalCost).Mul(hundred)
	}
	if s.TotalValue.IsPositive() {
		s.DayChangePercent = s.DayChange.Div(s.TotalValue).Mul(hundred)
	}

	for _, sector := range sectorOrder {
		alloc := models.SectorAllocation{Sector: sector, Value: sectorValues[sector]}
		if s.TotalValue.IsPositive() {
			alloc.Percentage = alloc.Value.Div(s.TotalValue).Mul(hundred)
		}
		s.SectorAllocation = append(s.SectorAllocation, alloc)
	}
	return s
}

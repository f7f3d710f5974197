// Package market holds static reference data about tradable symbols.
package market

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/trogers1052/trade-advisor/internal/models"
)

//go:embed symbols.yaml
var defaultSymbols []byte

// Directory resolves company names, sectors and fallback quotes by symbol
type Directory struct {
	defaultSector string
	companies     map[string]models.Company
	quotes        map[string]models.Quote
}

type directoryFile struct {
	DefaultSector string         `yaml:"default_sector"`
	Companies     []companyEntry `yaml:"companies"`
}

type companyEntry struct {
	Symbol string      `yaml:"symbol"`
	Name   string      `yaml:"name"`
	Sector string      `yaml:"sector"`
	Quote  *quoteEntry `yaml:"quote"`
}

type quoteEntry struct {
	Price         float64 `yaml:"price"`
	Change        float64 `yaml:"change"`
	ChangePercent float64 `yaml:"change_percent"`
	Volume        int64   `yaml:"volume"`
	MarketCap     string  `yaml:"market_cap"`
}

// Default returns the directory built from the embedded symbol table
func Default() *Directory {
	d, err := Parse(defaultSymbols)
	if err != nil {
		panic(fmt.Sprintf("market: embedded symbol table is invalid: %v", err))
	}
	return d
}

// Parse builds a directory from YAML
func Parse(data []byte) (*Directory, error) {
	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse symbol directory: %w", err)
	}

	d := &Directory{
		defaultSector: file.DefaultSector,
		companies:     make(map[string]models.Company, len(file.Companies)),
		quotes:        make(map[string]models.Quote),
	}
	if d.defaultSector == "" {
		d.defaultSector = "Technology"
	}

	for _, c := range file.Companies {
		symbol := Normalize(c.Symbol)
		if symbol == "" {
			return nil, fmt.Errorf("symbol directory entry without symbol")
		}
		d.companies[symbol] = models.Company{Symbol: symbol, Name: c.Name, Sector: c.Sector}
		if c.Quote != nil {
			d.quotes[symbol] = models.Quote{
				Symbol:        symbol,
				Price:         c.Quote.Price,
				Change:        c.Quote.Change,
				ChangePercent: c.Quote.ChangePercent,
				Volume:        c.Quote.Volume,
				MarketCap:     c.Quote.MarketCap,
			}
		}
	}
	return d, nil
}

// CompanyName returns the listed name, or "<SYMBOL> Corp." for unknown symbols
func (d *Directory) CompanyName(symbol string) string {
	symbol = Normalize(symbol)
	if c, ok := d.companies[symbol]; ok && c.Name != "" {
		return c.Name
	}
	return symbol + " Corp."
}

// Sector returns the listed sector, or the directory default
func (d *Directory) Sector(symbol string) string {
	if c, ok := d.companies[Normalize(symbol)]; ok && c.Sector != "" {
		return c.Sector
	}
	return d.defaultSector
}

// FallbackQuote returns the fixed quote for a known symbol
func (d *Directory) FallbackQuote(symbol string) (models.Quote, bool) {
	q, ok := d.quotes[Normalize(symbol)]
	return q, ok
}

// Normalize upper-cases and trims a ticker symbol
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDirectory(t *testing.T) {
	d := Default()

	t.Run("known symbols resolve", func(t *testing.T) {
		assert.Equal(t, "Apple Inc.", d.CompanyName("AAPL"))
		assert.Equal(t, "Automotive", d.Sector("tsla"))
		assert.Equal(t, "E-commerce", d.Sector(" amzn "))
	})

	t.Run("unknown symbols get defaults", func(t *testing.T) {
		assert.Equal(t, "ZZZ Corp.", d.CompanyName("zzz"))
		assert.Equal(t, "Technology", d.Sector("ZZZ"))
	})

	t.Run("fallback quotes for the known table", func(t *testing.T) {
		q, ok := d.FallbackQuote("AAPL")
		require.True(t, ok)
		assert.Equal(t, 185.25, q.Price)
		assert.Equal(t, 2.15, q.Change)
		assert.Equal(t, 1.17, q.ChangePercent)
		assert.Equal(t, int64(45678900), q.Volume)
		assert.Equal(t, "$2.85T", q.MarketCap)

		_, ok = d.FallbackQuote("IBM")
		assert.False(t, ok)
	})
}

func TestParse(t *testing.T) {
	t.Run("rejects entries without symbol", func(t *testing.T) {
		_, err := Parse([]byte("companies:\n  - name: Nameless\n"))
		require.Error(t, err)
	})

	t.Run("defaults sector when omitted", func(t *testing.T) {
		d, err := Parse([]byte("companies:\n  - symbol: ibm\n    name: IBM\n"))
		require.NoError(t, err)
		assert.Equal(t, "IBM", d.CompanyName("IBM"))
		assert.Equal(t, "Technology", d.Sector("IBM"))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("companies: [unterminated"))
		require.Error(t, err)
	})
}

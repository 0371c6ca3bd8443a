package feed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/TheBitty/TradingApp/internal/model"
)

// CoinGecko serves crypto price history from the CoinGecko market_chart API.
// The API returns a sampled price series rather than candles, so bars carry
// the sampled price in every OHLC field.
type CoinGecko struct {
	transport
	ids map[string]string
}

// NewCoinGecko creates a CoinGecko source. ids maps upper-case tickers to
// CoinGecko coin ids (e.g. BTC to bitcoin); symbols without a mapping are
// rejected at fetch time.
func NewCoinGecko(baseURL string, ids map[string]string, opts ...Option) *CoinGecko {
	m := make(map[string]string, len(ids))
	for ticker, id := range ids {
		m[strings.ToUpper(ticker)] = id
	}
	return &CoinGecko{
		transport: newTransport("coingecko", baseURL, opts...),
		ids:       m,
	}
}

// Name implements Source.
func (c *CoinGecko) Name() string { return "coingecko" }

// marketChartResponse from GET /coins/{id}/market_chart.
// Points arrive as [unix milliseconds, value] pairs.
type marketChartResponse struct {
	Prices       [][]float64 `json:"prices"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// Fetch implements Source.
func (c *CoinGecko) Fetch(ctx context.Context, symbol string, lookbackDays int) ([]model.Bar, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	id, ok := c.ids[sym]
	if !ok {
		return nil, fmt.Errorf("coingecko: no coin id configured for symbol %q", symbol)
	}
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("days", strconv.Itoa(lookbackDays))

	var resp marketChartResponse
	if err := c.getJSON(ctx, "/coins/"+id+"/market_chart", query, &resp); err != nil {
		return nil, err
	}

	bars := make([]model.Bar, 0, len(resp.Prices))
	for i, point := range resp.Prices {
		if len(point) < 2 {
			return nil, fmt.Errorf("%w: price point %d has %d elements", ErrInvalidResponse, i, len(point))
		}
		price := point[1]
		bar := model.Bar{
			Timestamp: int64(point[0]) / 1000, // ms to whole seconds
			Symbol:    sym,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Price:     price,
			Source:    c.Name(),
		}
		if i < len(resp.TotalVolumes) && len(resp.TotalVolumes[i]) >= 2 {
			bar.Volume = resp.TotalVolumes[i][1]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/TheBitty/TradingApp/internal/model"
)

// Yahoo serves daily equity candles from the Yahoo Finance chart API.
type Yahoo struct {
	transport
}

// NewYahoo creates a Yahoo source.
func NewYahoo(baseURL string, opts ...Option) *Yahoo {
	return &Yahoo{transport: newTransport("yahoo", baseURL, opts...)}
}

// Name implements Source.
func (y *Yahoo) Name() string { return "yahoo" }

// yahooChartResponse from GET /v8/finance/chart/{symbol}. Holidays and
// halts arrive as JSON nulls; close is decoded as pointers so those rows
// can be told apart from real zeros and dropped.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64  `json:"open"`
					High   []float64  `json:"high"`
					Low    []float64  `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []float64  `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch implements Source.
func (y *Yahoo) Fetch(ctx context.Context, symbol string, lookbackDays int) ([]model.Bar, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil, fmt.Errorf("yahoo: symbol is required")
	}
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	query := url.Values{}
	query.Set("range", fmt.Sprintf("%dd", lookbackDays))
	query.Set("interval", "1d")

	var resp yahooChartResponse
	if err := y.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(sym), query, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: chart result has no quote block", ErrInvalidResponse)
	}
	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return nil, fmt.Errorf("%w: %d close values for %d timestamps",
			ErrInvalidResponse, len(quote.Close), len(result.Timestamp))
	}

	at := func(vals []float64, i int) float64 {
		if i < len(vals) {
			return vals[i]
		}
		return 0
	}

	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if quote.Close[i] == nil {
			continue // market holiday or halt, no sample for that day
		}
		closePrice := *quote.Close[i]
		bars = append(bars, model.Bar{
			Timestamp: ts,
			Symbol:    sym,
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Close:     closePrice,
			Volume:    at(quote.Volume, i),
			Price:     closePrice,
			Source:    y.Name(),
		})
	}
	return bars, nil
}

package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestYahooFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/v8/finance/chart/AAPL")
		}
		if r.URL.Query().Get("range") != "5d" {
			t.Errorf("range = %q, want 5d", r.URL.Query().Get("range"))
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %q, want 1d", r.URL.Query().Get("interval"))
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"timestamp": [1700000000, 1700086400],
					"indicators": {
						"quote": [{
							"open":   [189.5, 190.1],
							"high":   [191.0, 192.25],
							"low":    [188.75, 189.9],
							"close":  [190.5, 191.75],
							"volume": [52000000, 48000000]
						}]
					}
				}],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	y := NewYahoo(server.URL)
	bars, err := y.Fetch(context.Background(), "aapl", 5)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(bars) != 2 {
		t.Fatalf("Fetch returned %d bars, want 2", len(bars))
	}
	first := bars[0]
	if first.Timestamp != 1700000000 {
		t.Errorf("Timestamp = %d, want 1700000000", first.Timestamp)
	}
	if first.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", first.Symbol)
	}
	if first.Open != 189.5 || first.High != 191.0 || first.Low != 188.75 || first.Close != 190.5 {
		t.Errorf("OHLC = %v/%v/%v/%v, want 189.5/191/188.75/190.5", first.Open, first.High, first.Low, first.Close)
	}
	if first.Price != first.Close {
		t.Errorf("Price = %v, want close %v", first.Price, first.Close)
	}
	if first.Volume != 52000000 {
		t.Errorf("Volume = %v, want 52000000", first.Volume)
	}
	if first.Source != "yahoo" {
		t.Errorf("Source = %q, want yahoo", first.Source)
	}
}

func TestYahooFetchNullSamples(t *testing.T) {
	// Yahoo fills holidays with nulls; those rows are dropped, not errors.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"timestamp": [1700000000, 1700086400],
					"indicators": {
						"quote": [{
							"open":   [null, 190.1],
							"high":   [null, 192.25],
							"low":    [null, 189.9],
							"close":  [null, 191.75],
							"volume": [null, 48000000]
						}]
					}
				}],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	y := NewYahoo(server.URL)
	bars, err := y.Fetch(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("Fetch returned %d bars, want 1 (null close dropped)", len(bars))
	}
	if bars[0].Timestamp != 1700086400 || bars[0].Close != 191.75 {
		t.Errorf("surviving bar = ts %d close %v, want 1700086400 and 191.75", bars[0].Timestamp, bars[0].Close)
	}
}

func TestYahooFetchNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
	}))
	defer server.Close()

	y := NewYahoo(server.URL)
	bars, err := y.Fetch(context.Background(), "AAPL", 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(bars) != 0 {
		t.Errorf("Fetch returned %d bars, want 0", len(bars))
	}
}

func TestYahooFetchChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"chart": {
				"result": null,
				"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
			}
		}`))
	}))
	defer server.Close()

	y := NewYahoo(server.URL)
	_, err := y.Fetch(context.Background(), "GONE", 1)
	if err == nil {
		t.Fatal("expected error for chart error payload, got nil")
	}
}

func TestYahooFetchQuoteMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"timestamp": [1700000000, 1700086400],
					"indicators": {"quote": [{"close": [190.5]}]}
				}],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	y := NewYahoo(server.URL)
	_, err := y.Fetch(context.Background(), "AAPL", 1)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestYahooFetchEmptySymbol(t *testing.T) {
	y := NewYahoo("http://127.0.0.1:0")
	if _, err := y.Fetch(context.Background(), "  ", 1); err == nil {
		t.Error("Fetch with blank symbol expected error, got nil")
	}
}

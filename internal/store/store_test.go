package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TheBitty/TradingApp/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func testBar(ts int64, price float64) model.Bar {
	return model.Bar{
		Timestamp: ts,
		Open:      price,
		High:      price + 1,
		Low:       price - 1,
		Close:     price,
		Volume:    100,
		Price:     price,
		Source:    "test",
	}
}

func TestNewCreatesPartitions(t *testing.T) {
	dir := t.TempDir()
	if _, err := New(dir); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for _, class := range model.AssetClasses() {
		if _, err := os.Stat(filepath.Join(dir, string(class))); err != nil {
			t.Errorf("partition %s missing: %v", class, err)
		}
	}
	if _, err := New(""); err == nil {
		t.Error("New(\"\") expected error, got nil")
	}
}

func TestAppendLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	bars := []model.Bar{testBar(100, 50.5), testBar(160, 51.25)}

	if err := s.Append(model.AssetCrypto, "btc", bars); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := s.Load(model.AssetCrypto, "BTC")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(bars) {
		t.Fatalf("Load returned %d bars, want %d", len(got), len(bars))
	}
	for i := range bars {
		want := bars[i]
		want.Symbol = "BTC" // store keys rows by the normalized symbol
		if got[i] != want {
			t.Errorf("bar %d = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestAppendPreservesOrderAcrossBatches(t *testing.T) {
	s := newTestStore(t)
	first := []model.Bar{testBar(100, 1), testBar(200, 2)}
	second := []model.Bar{testBar(150, 3), testBar(300, 4)}

	if err := s.Append(model.AssetStocks, "AAPL", first); err != nil {
		t.Fatalf("first Append failed: %v", err)
	}
	if err := s.Append(model.AssetStocks, "AAPL", second); err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	got, err := s.Load(model.AssetStocks, "AAPL")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	wantTS := []int64{100, 200, 150, 300}
	if len(got) != len(wantTS) {
		t.Fatalf("Load returned %d bars, want %d", len(got), len(wantTS))
	}
	for i, ts := range wantTS {
		if got[i].Timestamp != ts {
			t.Errorf("bar %d timestamp = %d, want %d (insertion order)", i, got[i].Timestamp, ts)
		}
	}
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append(model.AssetForex, "EURUSD", []model.Bar{testBar(1, 1.1)}); err != nil {
		t.Fatalf("first Append failed: %v", err)
	}
	if err := s.Append(model.AssetForex, "EURUSD", []model.Bar{testBar(2, 1.2)}); err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	path, err := s.SeriesPath(model.AssetForex, "EURUSD")
	if err != nil {
		t.Fatalf("SeriesPath failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read series file: %v", err)
	}
	if got := strings.Count(string(raw), "timestamp,symbol,"); got != 1 {
		t.Errorf("header appears %d times, want 1", got)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Errorf("series file has %d lines, want 3 (header + 2 rows)", len(lines))
	}
}

func TestAppendKeepsDuplicates(t *testing.T) {
	s := newTestStore(t)
	bar := testBar(500, 9.75)
	if err := s.Append(model.AssetCrypto, "ETH", []model.Bar{bar}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(model.AssetCrypto, "ETH", []model.Bar{bar}); err != nil {
		t.Fatalf("duplicate Append failed: %v", err)
	}

	got, err := s.Load(model.AssetCrypto, "ETH")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Load returned %d bars, want 2 (duplicates preserved)", len(got))
	}
}

func TestAppendEmptyBatchIsNoOp(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append(model.AssetStocks, "MSFT", nil); err != nil {
		t.Fatalf("Append(nil) failed: %v", err)
	}
	if _, err := s.Load(model.AssetStocks, "MSFT"); !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("Load after empty append error = %v, want ErrSeriesNotFound", err)
	}
}

func TestAppendRejectsBadInput(t *testing.T) {
	s := newTestStore(t)
	bars := []model.Bar{testBar(1, 1)}

	if err := s.Append("bonds", "X", bars); err == nil {
		t.Error("Append with unknown class expected error, got nil")
	}
	if err := s.Append(model.AssetStocks, "", bars); err == nil {
		t.Error("Append with empty symbol expected error, got nil")
	}
	if err := s.Append(model.AssetStocks, "../escape", bars); err == nil {
		t.Error("Append with path traversal symbol expected error, got nil")
	}
}

func TestLoadMissingSeries(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(model.AssetStocks, "NOPE")
	if !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("Load error = %v, want ErrSeriesNotFound", err)
	}
}

func TestLoadCorruptSeries(t *testing.T) {
	s := newTestStore(t)
	path, err := s.SeriesPath(model.AssetCrypto, "BAD")
	if err != nil {
		t.Fatalf("SeriesPath failed: %v", err)
	}
	raw := "timestamp,symbol,open,high,low,close,volume,price,source\n" +
		"not-a-number,BAD,1,1,1,1,1,1,test\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("failed to write corrupt series: %v", err)
	}

	if _, err := s.Load(model.AssetCrypto, "BAD"); err == nil {
		t.Error("Load of corrupt series expected error, got nil")
	}
}

func TestFindSearchesClassesInPriorityOrder(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append(model.AssetCrypto, "DUAL", []model.Bar{testBar(1, 10)}); err != nil {
		t.Fatalf("Append crypto failed: %v", err)
	}
	if err := s.Append(model.AssetStocks, "DUAL", []model.Bar{testBar(2, 20)}); err != nil {
		t.Fatalf("Append stocks failed: %v", err)
	}

	bars, class, err := s.Find("DUAL")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if class != model.AssetStocks {
		t.Errorf("Find class = %q, want stocks before crypto", class)
	}
	if len(bars) != 1 || bars[0].Timestamp != 2 {
		t.Errorf("Find bars = %+v, want the stocks series", bars)
	}

	if _, _, err := s.Find("ABSENT"); !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("Find(ABSENT) error = %v, want ErrSeriesNotFound", err)
	}
}

func TestTail(t *testing.T) {
	s := newTestStore(t)
	bars := []model.Bar{testBar(1, 1), testBar(2, 2), testBar(3, 3), testBar(4, 4)}
	if err := s.Append(model.AssetCrypto, "BTC", bars); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	t.Run("shorter than series", func(t *testing.T) {
		got, err := s.Tail("BTC", 2)
		if err != nil {
			t.Fatalf("Tail failed: %v", err)
		}
		if len(got) != 2 || got[0].Timestamp != 3 || got[1].Timestamp != 4 {
			t.Errorf("Tail(2) = %+v, want last two bars in order", got)
		}
	})

	t.Run("longer than series", func(t *testing.T) {
		got, err := s.Tail("BTC", 10)
		if err != nil {
			t.Fatalf("Tail failed: %v", err)
		}
		if len(got) != len(bars) {
			t.Errorf("Tail(10) returned %d bars, want %d", len(got), len(bars))
		}
	})

	t.Run("non-positive limit", func(t *testing.T) {
		if _, err := s.Tail("BTC", 0); err == nil {
			t.Error("Tail(0) expected error, got nil")
		}
	})
}

func TestLatest(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append(model.AssetForex, "EURUSD", []model.Bar{testBar(10, 1.1), testBar(20, 1.2)}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	bar, class, err := s.Latest("eurusd")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if class != model.AssetForex {
		t.Errorf("Latest class = %q, want forex", class)
	}
	if bar.Timestamp != 20 || bar.Price != 1.2 {
		t.Errorf("Latest = %+v, want the last appended bar", bar)
	}
}

func TestLatestHeaderOnlySeries(t *testing.T) {
	s := newTestStore(t)
	path, err := s.SeriesPath(model.AssetStocks, "EMPTY")
	if err != nil {
		t.Fatalf("SeriesPath failed: %v", err)
	}
	header := "timestamp,symbol,open,high,low,close,volume,price,source\n"
	if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
		t.Fatalf("failed to write header-only series: %v", err)
	}

	if _, _, err := s.Latest("EMPTY"); !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("Latest on header-only series error = %v, want ErrSeriesNotFound", err)
	}
}

func TestListSymbols(t *testing.T) {
	s := newTestStore(t)
	seed := map[model.AssetClass][]string{
		model.AssetCrypto: {"ETH", "BTC"},
		model.AssetStocks: {"AAPL"},
	}
	for class, syms := range seed {
		for _, sym := range syms {
			if err := s.Append(class, sym, []model.Bar{testBar(1, 1)}); err != nil {
				t.Fatalf("Append %s/%s failed: %v", class, sym, err)
			}
		}
	}

	got, err := s.ListSymbols()
	if err != nil {
		t.Fatalf("ListSymbols failed: %v", err)
	}
	if len(got[model.AssetCrypto]) != 2 || got[model.AssetCrypto][0] != "BTC" || got[model.AssetCrypto][1] != "ETH" {
		t.Errorf("crypto symbols = %v, want [BTC ETH] sorted", got[model.AssetCrypto])
	}
	if len(got[model.AssetStocks]) != 1 || got[model.AssetStocks][0] != "AAPL" {
		t.Errorf("stocks symbols = %v, want [AAPL]", got[model.AssetStocks])
	}
	if len(got[model.AssetForex]) != 0 {
		t.Errorf("forex symbols = %v, want empty", got[model.AssetForex])
	}
}

func TestExportAndClear(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append(model.AssetCrypto, "BTC", []model.Bar{testBar(1, 1)}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(model.AssetStocks, "AAPL", []model.Bar{testBar(2, 2)}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	dst := t.TempDir()
	copied, err := s.Export(dst)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if copied != 2 {
		t.Errorf("Export copied %d files, want 2", copied)
	}
	want, err := os.ReadFile(filepath.Join(s.Root(), "crypto", "BTC.csv"))
	if err != nil {
		t.Fatalf("failed to read source series: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dst, "crypto", "BTC.csv"))
	if err != nil {
		t.Fatalf("failed to read exported series: %v", err)
	}
	if string(got) != string(want) {
		t.Error("exported series differs from source")
	}

	removed, err := s.Clear()
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Clear removed %d files, want 2", removed)
	}
	if _, _, err := s.Find("BTC"); !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("Find after Clear error = %v, want ErrSeriesNotFound", err)
	}
	// Partitions survive so the store keeps working.
	if err := s.Append(model.AssetCrypto, "BTC", []model.Bar{testBar(3, 3)}); err != nil {
		t.Errorf("Append after Clear failed: %v", err)
	}
}

func TestFloatFormatting(t *testing.T) {
	s := newTestStore(t)
	bar := testBar(1, 0.00001)
	bar.Volume = 1234567.5
	if err := s.Append(model.AssetCrypto, "TINY", []model.Bar{bar}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	got, err := s.Load(model.AssetCrypto, "TINY")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got[0].Price != 0.00001 || got[0].Volume != 1234567.5 {
		t.Errorf("round trip = price %v volume %v, want 0.00001 and 1234567.5", got[0].Price, got[0].Volume)
	}
}

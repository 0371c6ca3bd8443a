package model

import (
	"testing"
)

// TestModelTypes validates that model types can be instantiated correctly.
func TestModelTypes(t *testing.T) {
	t.Run("Bar", func(t *testing.T) {
		b := Bar{
			Timestamp: 1705321845,
			Symbol:    "BTC",
			Open:      42000.5,
			High:      42500.0,
			Low:       41800.25,
			Close:     42250.75,
			Volume:    1234.5,
			Price:     42250.75,
			Source:    "coingecko",
		}

		if b.Symbol != "BTC" {
			t.Errorf("Symbol = %q, want %q", b.Symbol, "BTC")
		}
		if b.Timestamp != 1705321845 {
			t.Errorf("Timestamp = %d, want %d", b.Timestamp, 1705321845)
		}
		if b.Close != 42250.75 {
			t.Errorf("Close = %v, want %v", b.Close, 42250.75)
		}
		if b.Source != "coingecko" {
			t.Errorf("Source = %q, want %q", b.Source, "coingecko")
		}
	})

	t.Run("zero value Bar", func(t *testing.T) {
		var b Bar
		if b.Symbol != "" {
			t.Errorf("zero Bar.Symbol = %q, want empty", b.Symbol)
		}
		if b.Volume != 0 {
			t.Errorf("zero Bar.Volume = %v, want 0", b.Volume)
		}
	})
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name string
		bar  Bar
		want float64
	}{
		{"price set", Bar{Price: 101.5, Close: 100.0}, 101.5},
		{"price unset falls back to close", Bar{Close: 100.0}, 100.0},
		{"both zero", Bar{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bar.EffectivePrice(); got != tt.want {
				t.Errorf("EffectivePrice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssetClasses(t *testing.T) {
	classes := AssetClasses()

	if len(classes) != 3 {
		t.Fatalf("len(AssetClasses()) = %d, want 3", len(classes))
	}

	// Search priority order is part of the contract: series lookups without
	// an explicit class probe stocks first, crypto last.
	want := []AssetClass{AssetStocks, AssetForex, AssetCrypto}
	for i, c := range classes {
		if c != want[i] {
			t.Errorf("AssetClasses()[%d] = %q, want %q", i, c, want[i])
		}
	}
}

func TestAssetClassValid(t *testing.T) {
	tests := []struct {
		class AssetClass
		want  bool
	}{
		{AssetStocks, true},
		{AssetForex, true},
		{AssetCrypto, true},
		{AssetClass(""), false},
		{AssetClass("bonds"), false},
		{AssetClass("Stocks"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			if got := tt.class.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

func TestParseAssetClass(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AssetClass
		wantErr bool
	}{
		{"lowercase", "stocks", AssetStocks, false},
		{"uppercase", "CRYPTO", AssetCrypto, false},
		{"mixed case with spaces", "  Forex ", AssetForex, false},
		{"unknown", "bonds", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAssetClass(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAssetClass(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAssetClass(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAssetClass(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

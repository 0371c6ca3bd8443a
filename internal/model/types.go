package model

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Asset Classes
// -----------------------------------------------------------------------------

// AssetClass is the coarse category partitioning the durable store.
type AssetClass string

const (
	// AssetStocks covers equities (and anything fetched from the stock feed).
	AssetStocks AssetClass = "stocks"

	// AssetForex covers currency pairs.
	AssetForex AssetClass = "forex"

	// AssetCrypto covers cryptocurrencies.
	AssetCrypto AssetClass = "crypto"
)

// AssetClasses returns all known classes in fixed search-priority order.
// Lookups that omit the class probe these in order and take the first hit.
func AssetClasses() []AssetClass {
	return []AssetClass{AssetStocks, AssetForex, AssetCrypto}
}

// Valid reports whether c is one of the known asset classes.
func (c AssetClass) Valid() bool {
	switch c {
	case AssetStocks, AssetForex, AssetCrypto:
		return true
	}
	return false
}

// ParseAssetClass parses a class name, case-insensitively.
func ParseAssetClass(s string) (AssetClass, error) {
	c := AssetClass(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown asset class %q (want stocks, forex, or crypto)", s)
	}
	return c, nil
}

// -----------------------------------------------------------------------------
// Time-Series Types
// -----------------------------------------------------------------------------

// Bar is one OHLCV sample of a symbol's time series.
type Bar struct {
	Timestamp int64   // Unix seconds (bar open time)
	Symbol    string  // Ticker (e.g., "BTC")
	Open      float64 // Opening price
	High      float64 // Period high
	Low       float64 // Period low
	Close     float64 // Closing price
	Volume    float64 // Traded volume
	Price     float64 // Representative price; equals Close for non-OHLC feeds
	Source    string  // Provenance tag (e.g., "coingecko", "yahoo", "binance")
}

// EffectivePrice returns Price, falling back to Close when Price is unset.
// Older series files may predate the price column being populated.
func (b Bar) EffectivePrice() float64 {
	if b.Price != 0 {
		return b.Price
	}
	return b.Close
}

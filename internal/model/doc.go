// Package model defines shared data types used across the trading bridge.
//
// Conventions:
//   - Timestamps: int64 seconds since Unix epoch (the granularity of both
//     the durable store and the shared segment)
//   - Prices and volumes: float64; Price equals Close for feeds that do not
//     provide genuine OHLC
//   - Symbols: uppercase ticker strings (e.g., "AAPL", "BTC")
package model

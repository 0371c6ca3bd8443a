// Package feed pulls historical bars from remote market-data providers.
//
// Each provider implements Source: given a symbol and a lookback window it
// returns time-ordered bars, or an empty slice when the provider simply has
// nothing for that window. Transport failures and malformed payloads are
// errors; "no data" is not.
//
// Providers that serve only a price series (no real OHLC) publish bars with
// open, high, low, and close all set to the sampled price.
package feed

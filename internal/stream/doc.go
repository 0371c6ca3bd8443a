// Package stream ingests live kline data over WebSocket.
//
// The ingestor holds one connection per configured pair and appends each
// closed kline to the bar store under the crypto asset class, keyed by
// the exchange pair symbol. In-progress kline updates are counted but
// not stored. Sessions reconnect with capped exponential backoff.
package stream

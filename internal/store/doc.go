// Package store persists per-symbol bar history as append-only CSV series.
//
// Layout under the store root, one file per symbol:
//
//	<root>/stocks/AAPL.csv
//	<root>/forex/EURUSD.csv
//	<root>/crypto/BTC.csv
//
// Each file starts with a single header row written at creation; appends add
// rows without repeating it. Rows are kept in insertion order and never
// deduplicated, so repeated feed pulls over an overlapping range leave
// duplicate timestamps in place. The files are plain CSV on purpose: outside
// tooling reads them directly, and a whole-batch append keeps a concurrent
// reader from seeing a half-written row set.
package store

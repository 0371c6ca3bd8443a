// Package shm implements the shared-memory channel to the pricing engine.
//
// The engine publishes a single fixed-size record into a named segment under
// the platform shared-memory mount (/dev/shm). This package:
//   - Encodes/decodes the two record layouts observed in the wild (compact
//     24-byte and extended 48-byte); the variant is explicit configuration,
//     never guessed from bytes
//   - Maps the segment and reads/writes the whole record in one pass
//   - Tracks consumer-side freshness (valid flag + timestamp progression)
//
// There is no cross-process lock. A read that races the producer's write may
// observe a torn record (mixed old/new bytes); this is expected and
// non-fatal. Callers screen with Record.Valid, Record.Plausible, and the
// Tracker rather than assuming reads are atomic.
package shm

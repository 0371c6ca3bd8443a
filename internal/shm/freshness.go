package shm

// Freshness classifies one observed record against the previous one.
type Freshness int

const (
	// FreshnessInvalid means the valid flag was unset. The producer is
	// idle, mid-write, or has never published.
	FreshnessInvalid Freshness = iota

	// FreshnessNoChange means the record is valid but its timestamp did
	// not advance past the last accepted one.
	FreshnessNoChange

	// FreshnessFresh means the record is valid and its timestamp strictly
	// advanced. The tracker's watermark moves to it.
	FreshnessFresh
)

func (f Freshness) String() string {
	switch f {
	case FreshnessInvalid:
		return "invalid"
	case FreshnessNoChange:
		return "no_change"
	case FreshnessFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// Tracker decides whether successive records carry new data. The zero value
// is ready to use; the first valid record observed is always fresh.
//
// Invalid records never advance the watermark, so a producer blip between
// two identical timestamps still classifies the repeat as no_change.
type Tracker struct {
	lastTS int64
	primed bool
}

// Observe classifies r and, when fresh, advances the watermark.
func (t *Tracker) Observe(r Record) Freshness {
	if !r.Valid {
		return FreshnessInvalid
	}
	if t.primed && r.Timestamp <= t.lastTS {
		return FreshnessNoChange
	}
	t.lastTS = r.Timestamp
	t.primed = true
	return FreshnessFresh
}

// LastTimestamp returns the watermark and whether any record has been
// accepted yet.
func (t *Tracker) LastTimestamp() (int64, bool) {
	return t.lastTS, t.primed
}

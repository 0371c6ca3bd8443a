package shm

import "sync"

// LazyChannel defers Connect until the first operation and redials after
// failures. It lets the bridge run as a backstop publisher: start before the
// pricing engine, keep cycling while the segment is absent, and attach the
// moment the engine creates it.
type LazyChannel struct {
	cfg    Config
	mu     sync.Mutex
	ch     *Channel
	closed bool
}

// NewLazy wraps cfg without touching the segment.
func NewLazy(cfg Config) *LazyChannel {
	return &LazyChannel{cfg: cfg}
}

// Config returns the configuration the wrapper was built with.
func (l *LazyChannel) Config() Config {
	return l.cfg
}

// Connected reports whether a live mapping is currently held.
func (l *LazyChannel) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ch != nil
}

// Read connects if needed and reads the current record. On failure the
// mapping is dropped so the next call dials again.
func (l *LazyChannel) Read() (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.connectLocked(); err != nil {
		return Record{}, err
	}
	rec, err := l.ch.Read()
	if err != nil {
		l.dropLocked()
		return Record{}, err
	}
	return rec, nil
}

// Write connects if needed and publishes rec. On failure the mapping is
// dropped so the next call dials again.
func (l *LazyChannel) Write(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.connectLocked(); err != nil {
		return err
	}
	if err := l.ch.Write(rec); err != nil {
		l.dropLocked()
		return err
	}
	return nil
}

// Close drops the current mapping, if any. The wrapper stays closed; later
// operations return ErrNotConnected.
func (l *LazyChannel) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	ch := l.ch
	l.ch = nil
	if ch == nil {
		return nil
	}
	return ch.Close()
}

func (l *LazyChannel) connectLocked() error {
	if l.closed {
		return ErrNotConnected
	}
	if l.ch != nil {
		return nil
	}
	ch, err := Connect(l.cfg)
	if err != nil {
		return err
	}
	l.ch = ch
	return nil
}

func (l *LazyChannel) dropLocked() {
	if l.ch != nil {
		l.ch.Close()
		l.ch = nil
	}
}

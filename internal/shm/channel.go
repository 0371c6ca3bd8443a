package shm

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Channel is one mapped shared-memory segment. It is safe for concurrent use.
type Channel struct {
	cfg  Config
	mu   sync.Mutex
	file *os.File
	data []byte
}

// Connect opens and maps the configured segment.
//
// The segment must already exist and its size must match the configured
// layout exactly; the channel never creates or resizes segments, the
// producer owns the lifecycle. Errors wrap ErrNotFound, ErrPermission, or
// ErrLayoutMismatch so callers can distinguish the absent-producer case.
func Connect(cfg Config) (*Channel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	flags := os.O_RDONLY
	if cfg.Mode == ReadWrite {
		flags = os.O_RDWR
	}
	path := cfg.Path()
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		case errors.Is(err, os.ErrPermission):
			return nil, fmt.Errorf("%w: %s", ErrPermission, path)
		default:
			return nil, fmt.Errorf("shm: open %s: %w", path, err)
		}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shm: stat %s: %w", path, err)
	}
	want := cfg.Layout.Size()
	if info.Size() != int64(want) {
		f.Close()
		return nil, fmt.Errorf("%w: segment %s is %d bytes, want %d for %s layout",
			ErrLayoutMismatch, path, info.Size(), want, cfg.Layout)
	}

	prot := unix.PROT_READ
	if cfg.Mode == ReadWrite {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, want, prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}

	return &Channel{cfg: cfg, file: f, data: data}, nil
}

// Config returns the configuration the channel was opened with.
func (c *Channel) Config() Config {
	return c.cfg
}

// Read copies the whole record out of the segment and decodes it.
//
// The copy is a single pass over the mapping, but the producer writes
// without synchronization, so the result may still be torn. Callers screen
// with Record.Valid and Record.Plausible.
func (c *Channel) Read() (Record, error) {
	if c == nil {
		return Record{}, ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return Record{}, ErrNotConnected
	}
	buf := make([]byte, len(c.data))
	copy(buf, c.data)
	return c.cfg.Layout.Decode(buf)
}

// Write encodes rec and stores it into the segment in one pass, then flushes
// the mapping so external consumers observe the update promptly.
func (c *Channel) Write(rec Record) error {
	if c == nil {
		return ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return ErrNotConnected
	}
	if c.cfg.Mode != ReadWrite {
		return ErrReadOnly
	}
	b, err := c.cfg.Layout.Encode(rec)
	if err != nil {
		return err
	}
	copy(c.data, b)
	if err := unix.Msync(c.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("shm: msync %s: %w", c.cfg.Path(), err)
	}
	return nil
}

// Close unmaps the segment and releases the descriptor. It never removes the
// segment itself. Close is idempotent and safe on a nil channel.
func (c *Channel) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil
	}
	err := unix.Munmap(c.data)
	c.data = nil
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	c.file = nil
	if err != nil {
		return fmt.Errorf("shm: close %s: %w", c.cfg.Path(), err)
	}
	return nil
}

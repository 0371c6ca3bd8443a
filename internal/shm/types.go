package shm

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors for channel operations.
var (
	// ErrNotFound indicates the named segment does not exist yet. The
	// producer has not started, or it publishes under a different name.
	ErrNotFound = errors.New("shm: segment not found")

	// ErrPermission indicates the segment exists but the process cannot
	// open it with the requested mode.
	ErrPermission = errors.New("shm: permission denied")

	// ErrLayoutMismatch indicates the segment size does not match the
	// configured record layout.
	ErrLayoutMismatch = errors.New("shm: layout mismatch")

	// ErrNotConnected indicates an operation on a closed or never-opened
	// channel.
	ErrNotConnected = errors.New("shm: not connected")

	// ErrReadOnly indicates a write on a channel opened read-only.
	ErrReadOnly = errors.New("shm: channel is read-only")
)

// Mode selects the access mode for a channel.
type Mode string

const (
	// ReadOnly maps the segment for reading.
	ReadOnly Mode = "read_only"

	// ReadWrite maps the segment for reading and writing.
	ReadWrite Mode = "read_write"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ReadOnly || m == ReadWrite
}

// ParseMode parses a mode string as it appears in configuration.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown shared-memory mode %q (want read_only or read_write)", s)
	}
	return m, nil
}

// Config describes one shared-memory segment.
type Config struct {
	// Name is the segment name with its leading slash, e.g. "/trading_data".
	Name string

	// Dir is the shared-memory mount point. Empty means DefaultDir.
	Dir string

	// Mode is the access mode.
	Mode Mode

	// Layout is the record layout. It must be set explicitly; the channel
	// never infers the layout from the segment contents.
	Layout Layout
}

// DefaultDir is the conventional shared-memory mount on Linux.
const DefaultDir = "/dev/shm"

// Path returns the filesystem path of the segment.
func (c Config) Path() string {
	dir := c.Dir
	if dir == "" {
		dir = DefaultDir
	}
	return dir + "/" + strings.TrimPrefix(c.Name, "/")
}

func (c Config) validate() error {
	if strings.TrimPrefix(c.Name, "/") == "" {
		return errors.New("shm: segment name is required")
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("shm: invalid mode %q", c.Mode)
	}
	if !c.Layout.Valid() {
		return fmt.Errorf("shm: invalid layout %q", c.Layout)
	}
	return nil
}

// Record is the single market-data record a segment carries.
//
// The compact layout has no symbol field; records decoded from it carry an
// empty Symbol, and the field is ignored when encoding to it.
type Record struct {
	Price     float64 // last trade price
	Volume    float64 // traded volume; whole units under the compact layout
	Timestamp int64   // Unix seconds of the bar this record was taken from
	Symbol    string  // instrument symbol; extended layout only
	Valid     bool    // producer's published flag; false while idle
}

// Plausible reports whether the record's numeric fields are in range for a
// real quote. A torn read can produce bit patterns that decode to NaN,
// infinities, or negative values; those are screened out here.
func (r Record) Plausible() bool {
	if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) || r.Price < 0 {
		return false
	}
	if math.IsNaN(r.Volume) || math.IsInf(r.Volume, 0) || r.Volume < 0 {
		return false
	}
	return r.Timestamp >= 0
}

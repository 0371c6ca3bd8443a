package shm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Layout identifies a record wire layout. Both are little-endian.
type Layout string

const (
	// LayoutCompact is the 24-byte record:
	//
	//	offset  0  price     float64
	//	offset  8  timestamp uint64
	//	offset 16  volume    int32
	//	offset 20  valid     uint8
	//	offset 21  padding   [3]byte
	LayoutCompact Layout = "compact"

	// LayoutExtended is the 48-byte record:
	//
	//	offset  0  price     float64
	//	offset  8  volume    float64
	//	offset 16  timestamp int64
	//	offset 24  symbol    [16]byte, NUL padded
	//	offset 40  valid     uint8
	//	offset 41  padding   [7]byte
	LayoutExtended Layout = "extended"
)

const (
	compactSize  = 24
	extendedSize = 48
	symbolBytes  = 16
)

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l == LayoutCompact || l == LayoutExtended
}

// Size returns the record size in bytes.
func (l Layout) Size() int {
	switch l {
	case LayoutCompact:
		return compactSize
	case LayoutExtended:
		return extendedSize
	default:
		return 0
	}
}

// ParseLayout parses a layout string as it appears in configuration.
func ParseLayout(s string) (Layout, error) {
	l := Layout(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown record layout %q (want compact or extended)", s)
	}
	return l, nil
}

// Encode serializes r into a fresh buffer of exactly Size bytes. Padding is
// always zeroed so repeated encodes of the same record are byte-identical.
func (l Layout) Encode(r Record) ([]byte, error) {
	switch l {
	case LayoutCompact:
		return encodeCompact(r)
	case LayoutExtended:
		return encodeExtended(r)
	default:
		return nil, fmt.Errorf("shm: cannot encode with invalid layout %q", l)
	}
}

// Decode deserializes a record from b, which must be exactly Size bytes.
func (l Layout) Decode(b []byte) (Record, error) {
	if len(b) != l.Size() {
		return Record{}, fmt.Errorf("%w: got %d bytes, want %d for %s layout",
			ErrLayoutMismatch, len(b), l.Size(), l)
	}
	switch l {
	case LayoutCompact:
		return decodeCompact(b), nil
	case LayoutExtended:
		return decodeExtended(b), nil
	default:
		return Record{}, fmt.Errorf("shm: cannot decode with invalid layout %q", l)
	}
}

func encodeCompact(r Record) ([]byte, error) {
	if r.Volume > math.MaxInt32 || r.Volume < math.MinInt32 {
		return nil, fmt.Errorf("shm: volume %v overflows the compact layout", r.Volume)
	}
	if r.Timestamp < 0 {
		return nil, fmt.Errorf("shm: negative timestamp %d in the compact layout", r.Timestamp)
	}
	b := make([]byte, compactSize)
	binary.LittleEndian.PutUint64(b[0:8], math.Float64bits(r.Price))
	binary.LittleEndian.PutUint64(b[8:16], uint64(r.Timestamp))
	binary.LittleEndian.PutUint32(b[16:20], uint32(int32(r.Volume)))
	if r.Valid {
		b[20] = 1
	}
	return b, nil
}

func decodeCompact(b []byte) Record {
	return Record{
		Price:     math.Float64frombits(binary.LittleEndian.Uint64(b[0:8])),
		Timestamp: int64(binary.LittleEndian.Uint64(b[8:16])),
		Volume:    float64(int32(binary.LittleEndian.Uint32(b[16:20]))),
		Valid:     b[20] != 0,
	}
}

func encodeExtended(r Record) ([]byte, error) {
	if len(r.Symbol) > symbolBytes {
		return nil, fmt.Errorf("shm: symbol %q exceeds %d bytes", r.Symbol, symbolBytes)
	}
	b := make([]byte, extendedSize)
	binary.LittleEndian.PutUint64(b[0:8], math.Float64bits(r.Price))
	binary.LittleEndian.PutUint64(b[8:16], math.Float64bits(r.Volume))
	binary.LittleEndian.PutUint64(b[16:24], uint64(r.Timestamp))
	copy(b[24:24+symbolBytes], r.Symbol)
	if r.Valid {
		b[40] = 1
	}
	return b, nil
}

func decodeExtended(b []byte) Record {
	// A writer mid-update can leave stray control bytes in the symbol field,
	// so trim those along with the NUL padding.
	sym := b[24 : 24+symbolBytes]
	if i := bytes.IndexByte(sym, 0); i >= 0 {
		sym = sym[:i]
	}
	sym = bytes.TrimRightFunc(sym, unicode.IsControl)
	return Record{
		Price:     math.Float64frombits(binary.LittleEndian.Uint64(b[0:8])),
		Volume:    math.Float64frombits(binary.LittleEndian.Uint64(b[8:16])),
		Timestamp: int64(binary.LittleEndian.Uint64(b[16:24])),
		Symbol:    string(sym),
		Valid:     b[40] != 0,
	}
}

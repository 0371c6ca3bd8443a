package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/TheBitty/TradingApp/internal/model"
)

// ErrSeriesNotFound indicates no series file exists for the symbol, or the
// file exists but holds no rows yet.
var ErrSeriesNotFound = errors.New("store: series not found")

// Store is a handle to one store root. The zero value is not usable; create
// with New. Appends are serialized within the process; reads are lock-free
// over immutable prefixes of the files.
type Store struct {
	root string
	mu   sync.Mutex
}

// New opens the store rooted at dir, creating the root and the asset-class
// partitions if needed.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store: root directory is required")
	}
	for _, class := range model.AssetClasses() {
		if err := os.MkdirAll(filepath.Join(dir, string(class)), 0o755); err != nil {
			return nil, fmt.Errorf("store: create %s partition: %w", class, err)
		}
	}
	return &Store{root: dir}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// SeriesPath returns the file path that backs the series, whether or not it
// exists yet.
func (s *Store) SeriesPath(class model.AssetClass, symbol string) (string, error) {
	if !class.Valid() {
		return "", fmt.Errorf("store: invalid asset class %q", class)
	}
	sym, err := normalizeSymbol(symbol)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, string(class), sym+".csv"), nil
}

// Append adds bars to the symbol's series in the given class, creating the
// series (with its header row) on first use. The batch is encoded up front
// and written in a single append so a failure never leaves a partial batch
// behind. Duplicate timestamps are preserved as-is.
func (s *Store) Append(class model.AssetClass, symbol string, bars []model.Bar) error {
	path, err := s.SeriesPath(class, symbol)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return nil
	}
	sym := seriesSymbol(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(path)
	newSeries := errors.Is(statErr, os.ErrNotExist)
	if statErr != nil && !newSeries {
		return fmt.Errorf("store: stat %s: %w", path, statErr)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if newSeries {
		if err := w.Write(seriesHeader); err != nil {
			return fmt.Errorf("store: encode header: %w", err)
		}
	}
	for _, b := range bars {
		if err := w.Write(encodeRow(sym, b)); err != nil {
			return fmt.Errorf("store: encode row for %s: %w", sym, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("store: encode batch for %s: %w", sym, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("store: append %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", path, err)
	}
	return nil
}

// Load returns the symbol's full series from the given class in file order.
func (s *Store) Load(class model.AssetClass, symbol string) ([]model.Bar, error) {
	path, err := s.SeriesPath(class, symbol)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSeriesNotFound, class, seriesSymbol(path))
		}
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	bars := make([]model.Bar, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		bar, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("store: %s row %d: %w", path, i+1, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// Find locates the symbol by searching asset classes in the fixed priority
// order (stocks, then forex, then crypto) and returns the first series found
// along with its class.
func (s *Store) Find(symbol string) ([]model.Bar, model.AssetClass, error) {
	sym, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, "", err
	}
	for _, class := range model.AssetClasses() {
		bars, err := s.Load(class, sym)
		if err == nil {
			return bars, class, nil
		}
		if !errors.Is(err, ErrSeriesNotFound) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("%w: %s in any asset class", ErrSeriesNotFound, sym)
}

// Tail returns the last limit bars of the symbol's series in chronological
// order, or the whole series when it is shorter.
func (s *Store) Tail(symbol string, limit int) ([]model.Bar, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("store: tail limit must be positive, got %d", limit)
	}
	bars, _, err := s.Find(symbol)
	if err != nil {
		return nil, err
	}
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

// Latest returns the last bar of the symbol's series and the class it was
// found in. A series with a header but no rows reports ErrSeriesNotFound.
func (s *Store) Latest(symbol string) (model.Bar, model.AssetClass, error) {
	bars, class, err := s.Find(symbol)
	if err != nil {
		return model.Bar{}, "", err
	}
	if len(bars) == 0 {
		return model.Bar{}, "", fmt.Errorf("%w: %s has no rows", ErrSeriesNotFound, symbol)
	}
	return bars[len(bars)-1], class, nil
}

// Symbols lists the symbols that have a series in the given class, sorted.
func (s *Store) Symbols(class model.AssetClass) ([]string, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("store: invalid asset class %q", class)
	}
	entries, err := os.ReadDir(filepath.Join(s.root, string(class)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: scan %s partition: %w", class, err)
	}

	var symbols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(name, ".csv"))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ListSymbols scans every asset-class partition and returns the sorted
// symbol list per class. Classes with no series map to an empty list.
func (s *Store) ListSymbols() (map[model.AssetClass][]string, error) {
	out := make(map[model.AssetClass][]string, len(model.AssetClasses()))
	for _, class := range model.AssetClasses() {
		symbols, err := s.Symbols(class)
		if err != nil {
			return nil, err
		}
		out[class] = symbols
	}
	return out, nil
}

// normalizeSymbol uppercases and validates a symbol for use as a series file
// name. Path metacharacters are rejected rather than escaped.
func normalizeSymbol(symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return "", errors.New("store: symbol is required")
	}
	if strings.ContainsAny(sym, `/\`) || strings.Contains(sym, "..") {
		return "", fmt.Errorf("store: invalid symbol %q", symbol)
	}
	return sym, nil
}

// seriesSymbol recovers the normalized symbol from a series path.
func seriesSymbol(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".csv")
}

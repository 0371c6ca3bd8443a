// Package symbols derives the known-symbol universe from the series store.
//
// The store's directory layout is the only source of truth: a symbol exists
// exactly when its series file does. Nothing is cached; the store changes
// slowly and a directory scan per call keeps the view trivially consistent.
package symbols

import (
	"fmt"

	"github.com/TheBitty/TradingApp/internal/model"
)

// Lister enumerates stored symbols grouped by asset class.
type Lister interface {
	ListSymbols() (map[model.AssetClass][]string, error)
}

// Summary is one point-in-time view of the symbol universe.
type Summary struct {
	Classes map[model.AssetClass][]string
	Total   int
}

// Count returns the number of symbols in one class.
func (s Summary) Count(class model.AssetClass) int {
	return len(s.Classes[class])
}

// Index builds symbol views over a store.
type Index struct {
	store Lister
}

// New creates an index over the given store.
func New(store Lister) *Index {
	return &Index{store: store}
}

// Snapshot scans the store and returns the current universe.
func (i *Index) Snapshot() (Summary, error) {
	classes, err := i.store.ListSymbols()
	if err != nil {
		return Summary{}, fmt.Errorf("symbols: scan store: %w", err)
	}
	sum := Summary{Classes: classes}
	for _, syms := range classes {
		sum.Total += len(syms)
	}
	return sum, nil
}

// Worklist flattens the universe into one processing order: classes in
// their fixed priority order, symbols sorted within each class. A symbol
// stored under more than one class appears once, at its highest-priority
// position, matching how lookups resolve it.
func (i *Index) Worklist() ([]string, error) {
	sum, err := i.Snapshot()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, sum.Total)
	list := make([]string, 0, sum.Total)
	for _, class := range model.AssetClasses() {
		for _, sym := range sum.Classes[class] {
			if seen[sym] {
				continue
			}
			seen[sym] = true
			list = append(list, sym)
		}
	}
	return list, nil
}

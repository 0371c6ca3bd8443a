package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheBitty/TradingApp/internal/model"
)

// Export copies every series file into dst, preserving the class layout.
// It returns the number of files copied. Export before Clear is the only
// sanctioned way to truncate history.
func (s *Store) Export(dst string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := 0
	for _, class := range model.AssetClasses() {
		symbols, err := s.Symbols(class)
		if err != nil {
			return copied, err
		}
		if len(symbols) == 0 {
			continue
		}
		outDir := filepath.Join(dst, string(class))
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return copied, fmt.Errorf("store: create export dir %s: %w", outDir, err)
		}
		for _, sym := range symbols {
			src := filepath.Join(s.root, string(class), sym+".csv")
			data, err := os.ReadFile(src)
			if err != nil {
				return copied, fmt.Errorf("store: export read %s: %w", src, err)
			}
			out := filepath.Join(outDir, sym+".csv")
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return copied, fmt.Errorf("store: export write %s: %w", out, err)
			}
			copied++
		}
	}
	return copied, nil
}

// Clear removes every series file while keeping the partition directories.
// It returns the number of files removed.
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, class := range model.AssetClasses() {
		symbols, err := s.Symbols(class)
		if err != nil {
			return removed, err
		}
		for _, sym := range symbols {
			path := filepath.Join(s.root, string(class), sym+".csv")
			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("store: remove %s: %w", path, err)
			}
			removed++
		}
	}
	return removed, nil
}

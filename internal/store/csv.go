package store

import (
	"fmt"
	"strconv"

	"github.com/TheBitty/TradingApp/internal/model"
)

// seriesHeader is written once when a series file is created. Column order
// is part of the on-disk contract with outside tooling.
var seriesHeader = []string{
	"timestamp", "symbol", "open", "high", "low", "close", "volume", "price", "source",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func encodeRow(symbol string, b model.Bar) []string {
	return []string{
		strconv.FormatInt(b.Timestamp, 10),
		symbol,
		formatFloat(b.Open),
		formatFloat(b.High),
		formatFloat(b.Low),
		formatFloat(b.Close),
		formatFloat(b.Volume),
		formatFloat(b.Price),
		b.Source,
	}
}

func decodeRow(row []string) (model.Bar, error) {
	if len(row) != len(seriesHeader) {
		return model.Bar{}, fmt.Errorf("row has %d columns, want %d", len(row), len(seriesHeader))
	}

	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return model.Bar{}, fmt.Errorf("bad timestamp %q: %w", row[0], err)
	}

	bar := model.Bar{Timestamp: ts, Symbol: row[1], Source: row[8]}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open", row[2], &bar.Open},
		{"high", row[3], &bar.High},
		{"low", row[4], &bar.Low},
		{"close", row[5], &bar.Close},
		{"volume", row[6], &bar.Volume},
		{"price", row[7], &bar.Price},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("bad %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = v
	}
	return bar, nil
}

func isHeaderRow(row []string) bool {
	return len(row) > 0 && row[0] == seriesHeader[0]
}

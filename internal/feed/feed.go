package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/TheBitty/TradingApp/internal/model"
)

// ErrInvalidResponse indicates the provider answered but the payload did not
// have the expected shape.
var ErrInvalidResponse = errors.New("feed: invalid response")

// Source returns time-ordered bars for one symbol.
type Source interface {
	// Name identifies the provider; it is also stamped into Bar.Source.
	Name() string

	// Fetch returns bars covering roughly the last lookbackDays. An empty
	// slice with a nil error means the provider has no data for the
	// window; errors are reserved for transport and payload failures.
	Fetch(ctx context.Context, symbol string, lookbackDays int) ([]model.Bar, error)
}

// StatusError represents a non-2xx answer from a provider.
type StatusError struct {
	Source     string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s feed error %d: %s", e.Source, e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

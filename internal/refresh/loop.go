package refresh

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/TheBitty/TradingApp/internal/feed"
	"github.com/TheBitty/TradingApp/internal/model"
	"github.com/TheBitty/TradingApp/internal/shm"
	"github.com/TheBitty/TradingApp/internal/store"
)

// ErrAlreadyRunning is returned by Start on a loop that is not idle.
var ErrAlreadyRunning = errors.New("refresh: loop already running")

// BarStore is the durable side the loop reads from and appends to.
type BarStore interface {
	Latest(symbol string) (model.Bar, model.AssetClass, error)
	Append(class model.AssetClass, symbol string, bars []model.Bar) error
}

// Publisher pushes one record into the shared channel.
type Publisher interface {
	Write(rec shm.Record) error
}

// Worklist yields the symbols to process. It is re-evaluated at the top of
// every cycle so series created mid-run join the next pass.
type Worklist interface {
	Worklist() ([]string, error)
}

// StaticWorklist adapts a fixed symbol list.
type StaticWorklist []string

// Worklist implements Worklist.
func (w StaticWorklist) Worklist() ([]string, error) {
	return w, nil
}

// Sink receives bars the loop ingested from a feed. Implementations must
// not block; the loop calls it inline between symbols.
type Sink interface {
	Enqueue(class model.AssetClass, bar model.Bar)
}

// State of the loop.
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Config holds refresh loop settings.
type Config struct {
	Interval      time.Duration // full cycle period (default: 30s)
	Pacing        time.Duration // delay between symbols (default: 1s)
	LookbackDays  int           // feed pull window (default: 1)
	CryptoTickers []string      // symbols routed to the crypto feed
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:      30 * time.Second,
		Pacing:        time.Second,
		LookbackDays:  1,
		CryptoTickers: []string{"BTC", "ETH", "BTCUSD", "ETHUSD"},
	}
}

// Loop is the background refresh scheduler.
type Loop struct {
	cfg      Config
	bars     BarStore
	channel  Publisher
	crypto   feed.Source // nil disables feed ingest
	worklist Worklist
	logger   *slog.Logger

	sink      Sink
	cryptoSet map[string]bool

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Loop.
type Option func(*Loop)

// WithSink mirrors every ingested bar into sink.
func WithSink(sink Sink) Option {
	return func(l *Loop) {
		l.sink = sink
	}
}

// New creates a new Loop. crypto may be nil, which disables feed ingest and
// leaves the loop publishing durable bars only.
func New(cfg Config, bars BarStore, channel Publisher, crypto feed.Source, worklist Worklist, logger *slog.Logger, opts ...Option) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	cryptoSet := make(map[string]bool, len(cfg.CryptoTickers))
	for _, t := range cfg.CryptoTickers {
		cryptoSet[strings.ToUpper(strings.TrimSpace(t))] = true
	}
	l := &Loop{
		cfg:       cfg,
		bars:      bars,
		channel:   channel,
		crypto:    crypto,
		worklist:  worklist,
		logger:    logger,
		cryptoSet: cryptoSet,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the loop's current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start transitions Idle to Running and begins cycling in the background.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.state == StateRunning {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state = StateRunning
	l.wg.Add(1)
	l.mu.Unlock()

	go l.run(runCtx)

	l.logger.Info("refresh loop started",
		"interval", l.cfg.Interval,
		"pacing", l.cfg.Pacing,
		"lookback_days", l.cfg.LookbackDays,
	)
	return nil
}

// Stop transitions Running to Idle. It blocks until the in-flight cycle
// finishes, bounded by ctx. Stopping an idle or never-started loop is a
// no-op.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.state != StateRunning {
		l.mu.Unlock()
		return nil
	}
	cancel := l.cancel
	l.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.mu.Lock()
		l.state = StateIdle
		l.mu.Unlock()
		l.logger.Info("refresh loop stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run cycles until cancelled. The first cycle starts immediately.
func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()

	for {
		start := time.Now()
		l.runCycle(ctx)
		if ctx.Err() != nil {
			return
		}

		// Sleep out the remainder of the interval. A cycle that overran
		// rolls straight into the next one.
		wait := l.cfg.Interval - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// cycleStats summarizes one pass over the worklist.
type cycleStats struct {
	symbols   int
	published int
	ingested  int
	errors    int
}

// runCycle walks the worklist once. Per-symbol failures are logged and do
// not abort the pass; cancellation is honored between symbol steps.
func (l *Loop) runCycle(ctx context.Context) cycleStats {
	start := time.Now()
	var stats cycleStats

	symbols, err := l.worklist.Worklist()
	if err != nil {
		l.logger.Error("failed to build worklist", "error", err)
		stats.errors++
		return stats
	}
	if len(symbols) == 0 {
		l.logger.Debug("no symbols to refresh")
		return stats
	}
	stats.symbols = len(symbols)

	for i, symbol := range symbols {
		if ctx.Err() != nil {
			return stats
		}

		switch err := l.publishLatest(symbol); {
		case err == nil:
			stats.published++
		case errors.Is(err, store.ErrSeriesNotFound):
			l.logger.Debug("no durable bars to publish", "symbol", symbol)
		default:
			l.logger.Warn("failed to publish latest bar",
				"symbol", symbol,
				"error", err,
			)
			stats.errors++
		}

		if l.crypto != nil && l.isCrypto(symbol) {
			n, err := l.ingestFeed(ctx, symbol)
			if err != nil {
				l.logger.Warn("failed to ingest feed bars",
					"symbol", symbol,
					"source", l.crypto.Name(),
					"error", err,
				)
				stats.errors++
			} else {
				stats.ingested += n
			}
		}

		if i < len(symbols)-1 && l.cfg.Pacing > 0 {
			select {
			case <-ctx.Done():
				return stats
			case <-time.After(l.cfg.Pacing):
			}
		}
	}

	l.logger.Info("refresh cycle complete",
		"symbols", stats.symbols,
		"published", stats.published,
		"ingested", stats.ingested,
		"errors", stats.errors,
		"duration", time.Since(start),
	)
	return stats
}

// publishLatest pushes the symbol's most recent durable bar to the channel.
func (l *Loop) publishLatest(symbol string) error {
	bar, _, err := l.bars.Latest(symbol)
	if err != nil {
		return err
	}
	return l.channel.Write(shm.Record{
		Price:     bar.EffectivePrice(),
		Volume:    bar.Volume,
		Timestamp: bar.Timestamp,
		Symbol:    bar.Symbol,
		Valid:     true,
	})
}

// ingestFeed pulls the lookback window for a crypto symbol and appends it
// to the store, mirroring into the sink when one is attached.
func (l *Loop) ingestFeed(ctx context.Context, symbol string) (int, error) {
	bars, err := l.crypto.Fetch(ctx, symbol, l.cfg.LookbackDays)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, nil
	}
	if err := l.bars.Append(model.AssetCrypto, symbol, bars); err != nil {
		return 0, err
	}
	if l.sink != nil {
		for _, b := range bars {
			l.sink.Enqueue(model.AssetCrypto, b)
		}
	}
	return len(bars), nil
}

func (l *Loop) isCrypto(symbol string) bool {
	return l.cryptoSet[strings.ToUpper(strings.TrimSpace(symbol))]
}

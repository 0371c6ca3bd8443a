package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TheBitty/TradingApp/internal/model"
)

// Config controls the kline ingestor.
type Config struct {
	// URL is the WebSocket base endpoint.
	URL string

	// Symbols are the exchange pair symbols to subscribe, e.g. BTCUSDT.
	Symbols []string

	// Interval is the kline interval, e.g. "1m".
	Interval string

	// ReconnectBaseDelay is the first wait after a session drops; the
	// wait doubles per failure up to ReconnectMaxDelay.
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
}

// DefaultConfig returns the default ingestor configuration.
func DefaultConfig() Config {
	return Config{
		URL:                "wss://stream.binance.com:9443/ws",
		Interval:           "1m",
		ReconnectBaseDelay: time.Second,
		ReconnectMaxDelay:  60 * time.Second,
	}
}

// BarStore persists streamed bars.
type BarStore interface {
	Append(class model.AssetClass, symbol string, bars []model.Bar) error
}

// Sink receives every appended bar. Implementations must not block.
type Sink interface {
	Enqueue(class model.AssetClass, bar model.Bar)
}

// Metrics tracks ingestor activity.
type Metrics struct {
	Bars         int64 // closed klines appended
	Partials     int64 // in-progress updates skipped
	ParseErrors  int64
	AppendErrors int64
	Reconnects   int64
}

// Ingestor maintains one kline subscription per configured symbol.
type Ingestor struct {
	cfg    Config
	store  BarStore
	logger *slog.Logger
	sink   Sink

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metricsMu sync.Mutex
	metrics   Metrics
}

// Option configures optional ingestor collaborators.
type Option func(*Ingestor)

// WithSink forwards every appended bar to s.
func WithSink(s Sink) Option {
	return func(i *Ingestor) { i.sink = s }
}

// New creates a kline ingestor.
func New(cfg Config, store BarStore, logger *slog.Logger, opts ...Option) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	ing := &Ingestor{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Start opens one subscription per symbol. Sessions that drop are
// redialed until Stop.
func (i *Ingestor) Start(ctx context.Context) error {
	if len(i.cfg.Symbols) == 0 {
		return fmt.Errorf("stream: no symbols configured")
	}

	i.ctx, i.cancel = context.WithCancel(ctx)

	for _, symbol := range i.cfg.Symbols {
		i.wg.Add(1)
		go i.run(symbol)
	}

	i.logger.Info("stream ingestor started",
		"symbols", i.cfg.Symbols,
		"interval", i.cfg.Interval,
	)
	return nil
}

// Stop closes all subscriptions and waits for the session goroutines.
func (i *Ingestor) Stop(ctx context.Context) error {
	if i.cancel != nil {
		i.cancel()
	}

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("stream shutdown timed out: %w", ctx.Err())
	}

	i.logger.Info("stream ingestor stopped")
	return nil
}

// Stats returns a snapshot of ingestor metrics.
func (i *Ingestor) Stats() Metrics {
	i.metricsMu.Lock()
	defer i.metricsMu.Unlock()
	return i.metrics
}

// run redials one symbol's subscription until the ingestor stops.
func (i *Ingestor) run(symbol string) {
	defer i.wg.Done()

	backoff := i.cfg.ReconnectBaseDelay
	for {
		if i.ctx.Err() != nil {
			return
		}

		err := i.session(i.ctx, symbol)
		if err == nil || i.ctx.Err() != nil {
			backoff = i.cfg.ReconnectBaseDelay
			continue
		}

		i.logger.Warn("stream session ended",
			"symbol", symbol,
			"error", err,
			"retry_in", backoff,
		)
		i.count(func(m *Metrics) { m.Reconnects++ })

		select {
		case <-time.After(backoff):
		case <-i.ctx.Done():
			return
		}

		backoff *= 2
		if backoff > i.cfg.ReconnectMaxDelay {
			backoff = i.cfg.ReconnectMaxDelay
		}
	}
}

// session holds a single WebSocket connection for symbol until the
// context is cancelled or the connection fails.
func (i *Ingestor) session(ctx context.Context, symbol string) error {
	url := i.cfg.URL + "/" + strings.ToLower(symbol) + "@kline_" + i.cfg.Interval

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessionCtx.Done()
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}()

	i.logger.Info("stream connected", "symbol", symbol, "url", url)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		i.handleMessage(data)
	}
}

func (i *Ingestor) handleMessage(data []byte) {
	bar, closed, err := parseKline(data)
	if err != nil {
		i.count(func(m *Metrics) { m.ParseErrors++ })
		i.logger.Debug("stream parse error", "error", err)
		return
	}
	if !closed {
		i.count(func(m *Metrics) { m.Partials++ })
		return
	}

	if err := i.store.Append(model.AssetCrypto, bar.Symbol, []model.Bar{bar}); err != nil {
		i.count(func(m *Metrics) { m.AppendErrors++ })
		i.logger.Error("stream append failed", "symbol", bar.Symbol, "error", err)
		return
	}
	i.count(func(m *Metrics) { m.Bars++ })

	if i.sink != nil {
		i.sink.Enqueue(model.AssetCrypto, bar)
	}

	i.logger.Debug("stream bar appended",
		"symbol", bar.Symbol,
		"timestamp", bar.Timestamp,
		"close", bar.Close,
	)
}

func (i *Ingestor) count(fn func(*Metrics)) {
	i.metricsMu.Lock()
	fn(&i.metrics)
	i.metricsMu.Unlock()
}

package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TheBitty/TradingApp/internal/model"
)

const insertBarSQL = `
	INSERT INTO bars (run_id, symbol, asset_class, bar_ts, open, high, low, close, volume, price, source, ingested_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (symbol, asset_class, bar_ts, source) DO NOTHING
`

// Archiver buffers ingested bars and writes them to Postgres in batches.
// Enqueue satisfies the refresh loop's sink contract: it appends under a
// mutex and never blocks on the database.
type Archiver struct {
	db     *pgxpool.Pool
	logger *slog.Logger
	config Config
	runID  string

	batch   []barRow
	batchMu sync.Mutex

	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics   Metrics
	metricsMu sync.Mutex
}

// New creates an archiver tagging every row with a fresh run id.
func New(config Config, db *pgxpool.Pool, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		db:     db,
		logger: logger,
		config: config,
		runID:  uuid.NewString(),
		batch:  make([]barRow, 0, config.BatchSize),
	}
}

// RunID returns the run id stamped on every archived row.
func (a *Archiver) RunID() string {
	return a.runID
}

// Start begins the periodic flush loop.
func (a *Archiver) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.flushTicker = time.NewTicker(a.config.FlushInterval)

	a.wg.Add(1)
	go a.flushLoop()

	a.logger.Info("archiver started",
		"run_id", a.runID,
		"batch_size", a.config.BatchSize,
		"flush_interval", a.config.FlushInterval,
	)
	return nil
}

// Stop halts the flush loop and flushes any remaining rows. The passed
// context bounds both the shutdown wait and the final flush.
func (a *Archiver) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.flushTicker != nil {
		a.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("archiver shutdown timed out: %w", ctx.Err())
	}

	a.flush(ctx)
	a.logger.Info("archiver stopped", "run_id", a.runID)
	return nil
}

// Enqueue adds one bar to the pending batch, flushing when the batch
// reaches the configured size.
func (a *Archiver) Enqueue(class model.AssetClass, bar model.Bar) {
	row := a.transform(class, bar)

	a.batchMu.Lock()
	a.batch = append(a.batch, row)
	shouldFlush := len(a.batch) >= a.config.BatchSize
	a.batchMu.Unlock()

	if shouldFlush {
		a.flush(a.ctx)
	}
}

// Stats returns a snapshot of archiver metrics.
func (a *Archiver) Stats() Metrics {
	a.metricsMu.Lock()
	defer a.metricsMu.Unlock()
	return a.metrics
}

func (a *Archiver) transform(class model.AssetClass, bar model.Bar) barRow {
	return barRow{
		RunID:      a.runID,
		Symbol:     bar.Symbol,
		AssetClass: string(class),
		BarTs:      bar.Timestamp,
		Open:       bar.Open,
		High:       bar.High,
		Low:        bar.Low,
		Close:      bar.Close,
		Volume:     bar.Volume,
		Price:      bar.Price,
		Source:     bar.Source,
		IngestedAt: time.Now().UnixMicro(),
	}
}

func (a *Archiver) flushLoop() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.flushTicker.C:
			a.flush(a.ctx)
		}
	}
}

// flush takes ownership of the current batch and writes it out. A nil
// context falls back to Background so an archiver that was never started
// can still be drained.
func (a *Archiver) flush(ctx context.Context) {
	a.batchMu.Lock()
	if len(a.batch) == 0 {
		a.batchMu.Unlock()
		return
	}
	rows := a.batch
	a.batch = make([]barRow, 0, a.config.BatchSize)
	a.batchMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	if a.db == nil {
		a.metricsMu.Lock()
		a.metrics.Errors += int64(len(rows))
		a.metricsMu.Unlock()
		a.logger.Warn("archiver flush dropped rows, no database pool", "rows", len(rows))
		return
	}

	start := time.Now()
	conflicts, err := a.batchInsert(ctx, rows)

	a.metricsMu.Lock()
	if err != nil {
		a.metrics.Errors += int64(len(rows))
	} else {
		a.metrics.Inserts += int64(len(rows) - conflicts)
		a.metrics.Conflicts += int64(conflicts)
	}
	a.metrics.Flushes++
	a.metricsMu.Unlock()

	if err != nil {
		a.logger.Error("archive batch insert failed",
			"error", err,
			"rows", len(rows),
		)
		return
	}

	a.logger.Debug("archive batch flushed",
		"rows", len(rows),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

func (a *Archiver) batchInsert(ctx context.Context, rows []barRow) (int, error) {
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertBarSQL,
			row.RunID,
			row.Symbol,
			row.AssetClass,
			row.BarTs,
			row.Open,
			row.High,
			row.Low,
			row.Close,
			row.Volume,
			row.Price,
			row.Source,
			row.IngestedAt,
		)
	}

	results := a.db.SendBatch(ctx, batch)
	defer results.Close()

	conflicts := 0
	for range rows {
		tag, err := results.Exec()
		if err != nil {
			return conflicts, fmt.Errorf("batch insert: %w", err)
		}
		if tag.RowsAffected() == 0 {
			conflicts++
		}
	}
	return conflicts, nil
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
	"CoinPager/internal/service/coinbase"
	"CoinPager/pkg/cache"
	applogger "CoinPager/pkg/logger"
	"CoinPager/pkg/util"
)

const exportLockKey = "export:active"

// ErrJobRunning is returned when a submission races an already-active job.
var ErrJobRunning = errors.New("an export job is already running")

// ErrNoSymbols is returned when normalization leaves nothing to export.
var ErrNoSymbols = errors.New("no symbols to export")

// Exporter runs export jobs: one backfill per symbol, results streamed into
// a fresh durable snapshot, progress published through the job registry.
type Exporter struct {
	source      drepo.CandleSource
	store       drepo.SnapshotStore
	backfill    *Backfiller
	registry    *JobRegistry
	cache       cache.Service
	metrics     drepo.Metrics
	logger      *applogger.Logger
	symbolDelay time.Duration
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// NewExporter wires an exporter.
func NewExporter(
	source drepo.CandleSource,
	store drepo.SnapshotStore,
	backfill *Backfiller,
	registry *JobRegistry,
	c cache.Service,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	opts ...ExporterOption,
) *Exporter {
	e := &Exporter{
		source:      source,
		store:       store,
		backfill:    backfill,
		registry:    registry,
		cache:       c,
		metrics:     metrics,
		logger:      logger,
		symbolDelay: 350 * time.Millisecond,
		now:         time.Now,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithSymbolDelay sets the pause between symbols.
func WithSymbolDelay(d time.Duration) ExporterOption {
	return func(e *Exporter) {
		e.symbolDelay = d
	}
}

// WithExporterClock overrides the clock (tests).
func WithExporterClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) {
		e.now = now
	}
}

// WithExporterSleeper overrides the inter-symbol sleep (tests).
func WithExporterSleeper(fn func(ctx context.Context, d time.Duration) error) ExporterOption {
	return func(e *Exporter) {
		e.sleep = fn
	}
}

// Submit registers a job and starts it in the background. Symbols are
// trimmed, uppercased and deduplicated preserving order; years is clamped
// to [1, 15]. At most one job runs at a time.
func (e *Exporter) Submit(ctx context.Context, symbols []string, years int) (string, error) {
	normalized := NormalizeSymbols(symbols)
	if len(normalized) == 0 {
		return "", ErrNoSymbols
	}
	years = util.ClampInt(years, 1, 15)

	locked, err := e.cache.TryLock(ctx, exportLockKey, 24*time.Hour)
	if err != nil {
		return "", err
	}
	if !locked {
		return "", ErrJobRunning
	}

	jobID := uuid.NewString()
	jobCtx, cancel := context.WithCancel(context.Background())

	e.registry.Add(models.ExportJob{
		JobID:     jobID,
		Status:    models.JobQueued,
		Total:     len(normalized),
		Years:     years,
		CreatedAt: e.now(),
	}, cancel)

	e.logger.Info("export job submitted",
		applogger.String("job_id", jobID),
		applogger.Int("symbols", len(normalized)),
		applogger.Int("years", years),
	)

	go e.run(jobCtx, jobID, normalized, years)
	return jobID, nil
}

// Stop cancels the job with the given id, or the active job when the id is
// empty. It reports the targeted id and whether anything was cancelled.
func (e *Exporter) Stop(jobID string) (string, bool) {
	if jobID != "" {
		return jobID, e.registry.Cancel(jobID)
	}
	return e.registry.CancelActive()
}

// Status returns a snapshot of the job's state.
func (e *Exporter) Status(jobID string) (models.ExportJob, bool) {
	return e.registry.Get(jobID)
}

func (e *Exporter) run(ctx context.Context, jobID string, symbols []string, years int) {
	started := e.now()
	defer func() {
		e.cache.Unlock(context.Background(), exportLockKey)
		e.metrics.RecordLatency("export_job", e.now().Sub(started).Seconds())
	}()

	e.registry.Update(jobID, func(j *models.ExportJob) {
		j.Status = models.JobRunning
	})

	if err := e.store.Cleanup(); err != nil {
		e.fail(jobID, "cleanup failed: "+err.Error())
		return
	}

	products, err := e.source.Products(ctx)
	if err != nil {
		e.metrics.RecordUpstreamError("coinbase")
		e.fail(jobID, "product catalog fetch failed: "+err.Error())
		return
	}
	productIDs := coinbase.USDProductMap(products)

	writer, err := e.store.Create(e.now())
	if err != nil {
		e.fail(jobID, "snapshot create failed: "+err.Error())
		return
	}
	defer writer.Close()

	for i, sym := range symbols {
		if ctx.Err() != nil {
			e.logger.Info("export job cancelled",
				applogger.String("job_id", jobID),
				applogger.String("at_symbol", sym),
			)
			break
		}

		e.registry.Update(jobID, func(j *models.ExportJob) {
			j.Current = sym
		})

		stopped := e.exportSymbol(ctx, jobID, writer, productIDs, sym, years)
		if stopped {
			break
		}

		e.registry.Update(jobID, func(j *models.ExportJob) {
			j.Done++
			j.Current = ""
		})

		if i < len(symbols)-1 && e.symbolDelay > 0 {
			if err := e.sleep(ctx, e.symbolDelay); err != nil {
				break
			}
		}
	}

	e.registry.Update(jobID, func(j *models.ExportJob) {
		j.Status = models.JobDone
		j.Current = ""
		j.Filename = writer.Filename()
		j.SavedTo = writer.Path()
	})
	e.logger.Info("export job finished", applogger.String("job_id", jobID))
}

// exportSymbol processes one symbol and reports whether the job should stop.
// A per-symbol failure is written as an error row and never aborts the job.
func (e *Exporter) exportSymbol(ctx context.Context, jobID string, writer drepo.SnapshotWriter, productIDs map[string]string, sym string, years int) bool {
	productID, ok := productIDs[sym]
	if !ok {
		e.writeErrorRow(jobID, writer, sym, "", "NO_COINBASE_USD_PAIR")
		e.countError(jobID, "no_pair")
		return false
	}

	series, err := e.backfill.DailyCloses(ctx, productID, years)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		e.metrics.RecordUpstreamError("coinbase")
		e.writeErrorRow(jobID, writer, sym, productID, err.Error())
		e.countError(jobID, "error")
		e.logger.Warn("symbol backfill failed",
			applogger.String("job_id", jobID),
			applogger.String("symbol", sym),
			applogger.Error(err),
		)
		return false
	}

	if len(series) == 0 {
		e.writeErrorRow(jobID, writer, sym, productID, "NO_DATA")
		e.countError(jobID, "no_data")
		return false
	}

	if err := writer.WriteSeries(sym, productID, series); err != nil {
		e.writeErrorRow(jobID, writer, sym, productID, err.Error())
		e.countError(jobID, "error")
		return false
	}
	e.metrics.RecordSymbolExported("ok")
	e.metrics.RecordLastClose(sym, series.LastClose())
	return false
}

func (e *Exporter) writeErrorRow(jobID string, writer drepo.SnapshotWriter, sym, productID, reason string) {
	if err := writer.WriteError(sym, productID, reason); err != nil {
		e.logger.Error("error row write failed",
			applogger.String("job_id", jobID),
			applogger.String("symbol", sym),
			applogger.Error(err),
		)
	}
}

func (e *Exporter) countError(jobID, result string) {
	e.metrics.RecordSymbolExported(result)
	e.registry.Update(jobID, func(j *models.ExportJob) {
		j.Errors++
	})
}

func (e *Exporter) fail(jobID, reason string) {
	e.registry.Update(jobID, func(j *models.ExportJob) {
		j.Status = models.JobFailed
		j.Current = ""
		j.FailReason = reason
	})
	e.logger.Error("export job failed",
		applogger.String("job_id", jobID),
		applogger.String("reason", reason),
	)
}

// NormalizeSymbols trims, uppercases and deduplicates symbols preserving
// first-seen order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

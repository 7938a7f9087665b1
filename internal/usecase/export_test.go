package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
	"CoinPager/pkg/cache"
)

type nopMetrics struct{}

func (nopMetrics) RecordSymbolExported(string)     {}
func (nopMetrics) RecordUpstreamError(string)      {}
func (nopMetrics) RecordLastClose(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}

type memWriter struct {
	rows       [][]string
	onSeries   func(symbol string)
	errOnWrite error
}

func (w *memWriter) WriteSeries(symbol, productID string, series models.PriceSeries) error {
	for range series {
		w.rows = append(w.rows, []string{symbol, productID, ""})
	}
	if w.onSeries != nil {
		w.onSeries(symbol)
	}
	return nil
}

func (w *memWriter) WriteError(symbol, productID, tag string) error {
	if w.errOnWrite != nil {
		return w.errOnWrite
	}
	w.rows = append(w.rows, []string{symbol, productID, tag})
	return nil
}

func (w *memWriter) Filename() string { return "coinbase_daily_test.csv" }
func (w *memWriter) Path() string     { return "/tmp/coinbase_daily_test.csv" }
func (w *memWriter) Close() error     { return nil }

type memStore struct {
	writer   *memWriter
	cleanups int
}

func (s *memStore) Cleanup() error { s.cleanups++; return nil }

func (s *memStore) Create(_ time.Time) (drepo.SnapshotWriter, error) { return s.writer, nil }

func (s *memStore) Load() (map[string]models.PriceSeries, string, error) {
	return nil, "", drepo.ErrNoSnapshot
}

func usdProducts() []models.Product {
	return []models.Product{
		{ID: "BTC-USD", BaseCurrency: "BTC", QuoteCurrency: "USD", Status: "online"},
		{ID: "ETH-USD", BaseCurrency: "ETH", QuoteCurrency: "USD", Status: "online"},
		{ID: "SOL-USD", BaseCurrency: "SOL", QuoteCurrency: "USD", Status: "online"},
	}
}

func newTestExporter(t *testing.T, src *fakeSource, store *memStore) *Exporter {
	t.Helper()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	backfill := newTestBackfiller(t, src, now)
	registry := NewJobRegistry()
	return NewExporter(src, store, backfill, registry, cache.NewMemoryCache(), nopMetrics{}, testLogger(t),
		WithSymbolDelay(0),
		WithExporterSleeper(noSleep),
		WithExporterClock(func() time.Time { return now }),
	)
}

func waitTerminal(t *testing.T, ex *Exporter, jobID string) models.ExportJob {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		job, ok := ex.Status(jobID)
		if !ok {
			t.Fatalf("job %s vanished", jobID)
		}
		if job.Status.Terminal() {
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s never finished: %+v", jobID, job)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestExportUnknownSymbolBecomesErrorRow(t *testing.T) {
	yesterday := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC).Unix()
	src := &fakeSource{products: usdProducts()}
	blocks := map[string]bool{}
	src.candles = func(productID string, _, _ time.Time) ([]models.Candle, error) {
		if blocks[productID] {
			return nil, nil
		}
		blocks[productID] = true
		return []models.Candle{{Timestamp: yesterday, Close: 60000}}, nil
	}
	store := &memStore{writer: &memWriter{}}
	ex := newTestExporter(t, src, store)

	jobID, err := ex.Submit(context.Background(), []string{"BTC", "FAKE"}, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, ex, jobID)
	if job.Status != models.JobDone {
		t.Fatalf("status = %s, want done (%+v)", job.Status, job)
	}
	if job.Done != 2 || job.Errors != 1 || job.Total != 2 {
		t.Fatalf("unexpected counters: %+v", job)
	}
	if store.cleanups != 1 {
		t.Fatalf("old snapshots must be cleaned once, got %d", store.cleanups)
	}

	found := false
	for _, row := range store.writer.rows {
		if row[0] == "FAKE" && row[2] == "NO_COINBASE_USD_PAIR" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected NO_COINBASE_USD_PAIR row, rows: %v", store.writer.rows)
	}
}

func TestExportNoDataSymbol(t *testing.T) {
	src := &fakeSource{products: usdProducts()}
	store := &memStore{writer: &memWriter{}}
	ex := newTestExporter(t, src, store)

	jobID, err := ex.Submit(context.Background(), []string{"BTC"}, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, ex, jobID)
	if job.Status != models.JobDone || job.Done != 1 || job.Errors != 1 {
		t.Fatalf("unexpected job state: %+v", job)
	}
	if len(store.writer.rows) != 1 || store.writer.rows[0][2] != "NO_DATA" {
		t.Fatalf("expected a single NO_DATA row, got %v", store.writer.rows)
	}
}

func TestExportStopAfterFirstSymbol(t *testing.T) {
	yesterday := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC).Unix()
	src := &fakeSource{products: usdProducts()}
	blocks := map[string]bool{}
	src.candles = func(productID string, _, _ time.Time) ([]models.Candle, error) {
		if blocks[productID] {
			return nil, nil
		}
		blocks[productID] = true
		return []models.Candle{{Timestamp: yesterday, Close: 100}}, nil
	}
	store := &memStore{writer: &memWriter{}}
	ex := newTestExporter(t, src, store)
	store.writer.onSeries = func(string) {
		ex.Stop("")
	}

	jobID, err := ex.Submit(context.Background(), []string{"BTC", "ETH", "SOL"}, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, ex, jobID)
	if job.Status != models.JobDone {
		t.Fatalf("cancelled job must end done, got %s", job.Status)
	}
	if job.Done >= job.Total {
		t.Fatalf("expected done < total after stop: %+v", job)
	}
	for _, row := range store.writer.rows {
		if row[0] != "BTC" {
			t.Fatalf("no rows expected after the stopped symbol, got %v", store.writer.rows)
		}
	}
}

func TestExportSetupFailure(t *testing.T) {
	src := &fakeSource{productsErr: context.DeadlineExceeded}
	store := &memStore{writer: &memWriter{}}
	ex := newTestExporter(t, src, store)

	jobID, err := ex.Submit(context.Background(), []string{"BTC"}, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, ex, jobID)
	if job.Status != models.JobFailed || job.FailReason == "" {
		t.Fatalf("expected failed job with reason, got %+v", job)
	}

	// lock must be released so a new job can start
	if _, err := ex.Submit(context.Background(), []string{"BTC"}, 1); err != nil {
		t.Fatalf("submit after failure: %v", err)
	}
}

func TestExportSurvivesErrorRowWriteFailure(t *testing.T) {
	src := &fakeSource{products: usdProducts()}
	store := &memStore{writer: &memWriter{errOnWrite: errors.New("disk full")}}
	ex := newTestExporter(t, src, store)

	jobID, err := ex.Submit(context.Background(), []string{"FAKE"}, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, ex, jobID)
	if job.Status != models.JobDone || job.Done != 1 || job.Errors != 1 {
		t.Fatalf("a failing error row must still be counted: %+v", job)
	}
}

func TestSubmitClampsYears(t *testing.T) {
	src := &fakeSource{products: usdProducts()}
	store := &memStore{writer: &memWriter{}}
	ex := newTestExporter(t, src, store)

	jobID, err := ex.Submit(context.Background(), []string{"BTC"}, 99)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	job, _ := ex.Status(jobID)
	if job.Years != 15 {
		t.Fatalf("years = %d, want 15", job.Years)
	}
}

func TestSubmitClampsNegativeYears(t *testing.T) {
	src := &fakeSource{products: usdProducts()}
	ex := newTestExporter(t, src, &memStore{writer: &memWriter{}})

	jobID, err := ex.Submit(context.Background(), []string{"BTC"}, -3)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	job, _ := ex.Status(jobID)
	if job.Years != 1 {
		t.Fatalf("years = %d, want 1", job.Years)
	}
}

func TestSubmitRejectsEmptySymbolList(t *testing.T) {
	src := &fakeSource{products: usdProducts()}
	ex := newTestExporter(t, src, &memStore{writer: &memWriter{}})

	if _, err := ex.Submit(context.Background(), []string{"  ", ""}, 1); err != ErrNoSymbols {
		t.Fatalf("expected ErrNoSymbols, got %v", err)
	}
}

func TestNormalizeSymbols(t *testing.T) {
	got := NormalizeSymbols([]string{" btc ", "ETH", "btc", "", "sol"})
	want := []string{"BTC", "ETH", "SOL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

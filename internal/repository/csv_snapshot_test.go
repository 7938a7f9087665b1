package repository

import (
	"errors"
	"testing"
	"time"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadNoSnapshot(t *testing.T) {
	store, err := NewCSVSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, _, err := store.Load(); !errors.Is(err, drepo.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	store, err := NewCSVSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	w, err := store.Create(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	series := models.PriceSeries{
		{Date: day(2024, 4, 29), Close: 61000.5},
		{Date: day(2024, 4, 30), Close: 60000},
	}
	if err := w.WriteSeries("BTC", "BTC-USD", series); err != nil {
		t.Fatalf("write series: %v", err)
	}
	if err := w.WriteError("FAKE", "", "NO_COINBASE_USD_PAIR"); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, filename, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if filename != "coinbase_daily_2024-05-01_120000.csv" {
		t.Fatalf("unexpected filename %q", filename)
	}
	if _, ok := data["FAKE"]; ok {
		t.Fatalf("error rows must be skipped")
	}
	got := data["BTC"]
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if !got[0].Date.Equal(day(2024, 4, 29)) || got[0].Close != 61000.5 {
		t.Fatalf("unexpected first point %+v", got[0])
	}
	if !got[1].Date.Equal(day(2024, 4, 30)) {
		t.Fatalf("series must be sorted ascending, got %+v", got)
	}
}

func TestLoadPicksNewestByEncodedTimestamp(t *testing.T) {
	store, err := NewCSVSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	older, _ := store.Create(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	older.WriteSeries("BTC", "BTC-USD", models.PriceSeries{{Date: day(2024, 4, 29), Close: 1}})
	older.Close()

	newer, _ := store.Create(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	newer.WriteSeries("BTC", "BTC-USD", models.PriceSeries{{Date: day(2024, 4, 29), Close: 2}})
	newer.Close()

	data, filename, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if filename != "coinbase_daily_2024-05-01_090000.csv" {
		t.Fatalf("expected newest snapshot, got %q", filename)
	}
	if data["BTC"][0].Close != 2 {
		t.Fatalf("expected data from newest snapshot, got %+v", data["BTC"])
	}
}

func TestCleanupRemovesAllSnapshots(t *testing.T) {
	store, err := NewCSVSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	w, _ := store.Create(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	w.Close()

	if err := store.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, _, err := store.Load(); !errors.Is(err, drepo.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot after cleanup, got %v", err)
	}
}

package usecase

import (
	"errors"
	"testing"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
)

func TestHistoryForKnownSymbol(t *testing.T) {
	store := &fixedStore{
		data: map[string]models.PriceSeries{
			"BTC": {
				{Date: day(2023, 1, 1), Close: 100},
				{Date: day(2023, 1, 2), Close: 105},
			},
		},
		name: "coinbase_daily_test.csv",
	}
	prices := NewPriceStore(store, testLogger(t))

	payload, err := prices.History(" btc ")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !payload.Available || payload.Symbol != "BTC" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(payload.Labels) != 2 || payload.Labels[0] != "2023-01-01" {
		t.Fatalf("unexpected labels %v", payload.Labels)
	}
	if payload.Data[1] != 105 {
		t.Fatalf("unexpected data %v", payload.Data)
	}
}

func TestHistoryForUnknownSymbol(t *testing.T) {
	store := &fixedStore{
		data: map[string]models.PriceSeries{},
		name: "coinbase_daily_test.csv",
	}
	prices := NewPriceStore(store, testLogger(t))

	payload, err := prices.History("DOGE")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if payload.Available {
		t.Fatalf("unknown symbol must report available=false")
	}
	if payload.Labels == nil || payload.Data == nil {
		t.Fatalf("labels/data must be empty arrays, not null")
	}
}

func TestHistoryWithoutSnapshot(t *testing.T) {
	prices := NewPriceStore(&fixedStore{}, testLogger(t))

	if _, err := prices.History("BTC"); !errors.Is(err, drepo.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

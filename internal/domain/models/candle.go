package models

import "time"

// Candle is a raw upstream daily candle. Only the close survives past the
// backfill stage; candles are never persisted directly.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // epoch seconds
	Close     float64 `json:"close"`
}

// DailyPrice is the canonical per-day close for one symbol. Date is always
// a UTC midnight.
type DailyPrice struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a symbol's daily closes, sorted ascending by date with
// unique dates. It is rebuilt wholesale on each load and never mutated in
// place.
type PriceSeries []DailyPrice

// Since returns the sub-series with dates >= from. The receiver is sorted,
// so the result is a contiguous suffix.
func (s PriceSeries) Since(from time.Time) PriceSeries {
	for i, p := range s {
		if !p.Date.Before(from) {
			return s[i:]
		}
	}
	return nil
}

// LastClose returns the close of the newest point, or 0 for an empty series.
func (s PriceSeries) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

// Product is one tradable instrument from the exchange catalog.
type Product struct {
	ID            string `json:"id"`
	BaseCurrency  string `json:"base_currency"`
	QuoteCurrency string `json:"quote_currency"`
	Status        string `json:"status"`
}

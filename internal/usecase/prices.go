package usecase

import (
	"strings"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
	applogger "CoinPager/pkg/logger"
)

// PriceStore is the read side of the durable snapshots. Loads are stateless
// and re-run on demand so readers always see the latest completed job.
type PriceStore struct {
	store  drepo.SnapshotStore
	logger *applogger.Logger
}

// NewPriceStore creates the read-side loader.
func NewPriceStore(store drepo.SnapshotStore, logger *applogger.Logger) *PriceStore {
	return &PriceStore{store: store, logger: logger}
}

// LoadLatest returns per-symbol series from the newest snapshot plus its
// filename. Returns repository.ErrNoSnapshot when no export has run yet.
func (p *PriceStore) LoadLatest() (map[string]models.PriceSeries, string, error) {
	data, filename, err := p.store.Load()
	if err != nil {
		return nil, "", err
	}
	p.logger.Debug("snapshot loaded",
		applogger.String("filename", filename),
		applogger.Int("symbols", len(data)),
	)
	return data, filename, nil
}

// History returns one symbol's date/close track. A symbol absent from the
// snapshot yields available=false, not an error.
func (p *PriceStore) History(symbol string) (models.HistoryPayload, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	data, _, err := p.LoadLatest()
	if err != nil {
		return models.HistoryPayload{}, err
	}

	series := data[symbol]
	payload := models.HistoryPayload{
		Symbol:    symbol,
		Available: len(series) > 0,
		Labels:    make([]string, 0, len(series)),
		Data:      make([]float64, 0, len(series)),
	}
	for _, point := range series {
		payload.Labels = append(payload.Labels, point.Date.Format("2006-01-02"))
		payload.Data = append(payload.Data, point.Close)
	}
	return payload, nil
}

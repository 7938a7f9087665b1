package models

// SavingsResult is the outcome of a fixed monthly savings-plan replay.
type SavingsResult struct {
	ResultUSD   float64 `json:"result_usd"`
	CashOnlyUSD float64 `json:"cash_only_usd"`
}

// DynamicSavingsResult is the outcome of the moving-average-driven plan.
// TotalValueUSD = ResultUSD + CashBufferUSD.
type DynamicSavingsResult struct {
	ResultUSD     float64 `json:"result_usd"`
	CashBufferUSD float64 `json:"cash_buffer_usd"`
	TotalValueUSD float64 `json:"total_value_usd"`
}

// ScreenMatch is one symbol that passed the change-percentage filter.
type ScreenMatch struct {
	Symbol        string  `json:"symbol"`
	StartPrice    float64 `json:"start_price"`
	EndPrice      float64 `json:"end_price"`
	ChangePercent float64 `json:"change_percent"`
	Period        string  `json:"period"`
}

// HistoryPayload is a symbol's date/close track from the latest snapshot.
type HistoryPayload struct {
	Symbol    string    `json:"symbol"`
	Available bool      `json:"available"`
	Labels    []string  `json:"labels"`
	Data      []float64 `json:"data"`
}

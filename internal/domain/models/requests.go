package models

// Requests for the HTTP surface. Defined in domain for consistency and reuse.
// Out-of-range limit and whole-year values are clamped by the use cases, not
// rejected, so they carry no range validation here.

type CoinsRequest struct {
	Limit int    `query:"limit" json:"limit" default:"100"`
	Quote string `query:"quote" json:"quote" default:"USD"`
}

type HistoryRequest struct {
	Years int `query:"years" json:"years" default:"10"`
}

type ExportStartRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,dive,required"`
	Years   int      `json:"years" default:"10"`
}

type ExportStopRequest struct {
	JobID string `json:"job_id"`
}

type FilterRequest struct {
	Years     float64 `json:"years" default:"3" validate:"gt=0"`
	Percent   float64 `json:"percent" default:"20" validate:"gte=0"`
	Direction string  `json:"direction" default:"up" validate:"oneof=up down"`
}

type SavingsRequest struct {
	Symbol     string  `json:"symbol" validate:"required"`
	Years      float64 `json:"years" default:"1" validate:"gt=0"`
	MonthlyUSD float64 `json:"monthly_usd" validate:"required,gt=0"`
}

type DynamicSavingsRequest struct {
	Symbol       string  `json:"symbol" validate:"required"`
	Years        float64 `json:"years" default:"1" validate:"gt=0"`
	MonthlyUSD   float64 `json:"monthly_usd" validate:"required,gt=0"`
	ThresholdPct float64 `json:"threshold_pct" validate:"gte=0,lte=100"`
	AdjustPct    float64 `json:"adjust_pct" validate:"gte=0,lte=100"`
	MADays       int     `json:"ma_days" default:"50" validate:"gte=1"`
}

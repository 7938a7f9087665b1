package models

// MarketCoin is one row of the market-overview table, sourced from the
// CoinGecko markets listing.
type MarketCoin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChangePercentage24H *float64 `json:"price_change_percentage_24h"`
}

// CoinsPayload is the cached market listing.
type CoinsPayload struct {
	VsCurrency string       `json:"vs_currency"`
	Count      int          `json:"count"`
	Coins      []MarketCoin `json:"coins"`
}

// SpotPrice is a live ticker quote for one product.
type SpotPrice struct {
	Source   string  `json:"source"`
	Symbol   string  `json:"symbol"`
	PriceUSD float64 `json:"price_usd"`
}

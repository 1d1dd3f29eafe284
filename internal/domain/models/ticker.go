package models

// TickerRecord is the canonical resolution of one company name against the
// search endpoint. Identity is Symbol; records are immutable once built.
type TickerRecord struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
	Exchange  string `json:"exchange"`
}

// Candle represents one OHLCV bar of price history.
type Candle struct {
	Date   int64   `json:"date"` // unix seconds
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

package models

// Chart is a plotly-figure-shaped document. It is built server-side and
// rendered by whatever consumes the JSON; nothing here depends on a renderer.
type Chart struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one series within a chart.
type Trace struct {
	Type string    `json:"type"` // "ohlc" or "scatter"
	Name string    `json:"name,omitempty"`
	X    []int64   `json:"x"` // unix seconds
	Y    []float64 `json:"y,omitempty"`

	// OHLC-only fields
	Open  []float64 `json:"open,omitempty"`
	High  []float64 `json:"high,omitempty"`
	Low   []float64 `json:"low,omitempty"`
	Close []float64 `json:"close,omitempty"`
}

type Layout struct {
	Title string `json:"title"`
}

// NewOHLCChart builds a candlestick figure from price history.
func NewOHLCChart(title string, candles []Candle) *Chart {
	t := Trace{Type: "ohlc"}
	for _, c := range candles {
		t.X = append(t.X, c.Date)
		t.Open = append(t.Open, c.Open)
		t.High = append(t.High, c.High)
		t.Low = append(t.Low, c.Low)
		t.Close = append(t.Close, c.Close)
	}
	return &Chart{
		Data:   []Trace{t},
		Layout: Layout{Title: title},
	}
}

// NewLineChart builds a figure of scatter traces sharing one x axis. Traces
// keep the order they are passed in.
func NewLineChart(title string, traces ...Trace) *Chart {
	return &Chart{Data: traces, Layout: Layout{Title: title}}
}

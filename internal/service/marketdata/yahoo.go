// Package marketdata fetches quote and price history data and hands out
// cached per-symbol handles.
package marketdata

import (
	"context"
	"fmt"

	"FinChat/internal/domain/models"
	xhttp "FinChat/pkg/http"
)

type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  *apiError                `json:"error"`
	} `json:"quoteResponse"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// YahooQuotes pulls quotes from the v7 quote endpoint and candles from the
// v8 chart endpoint.
type YahooQuotes struct {
	client    *xhttp.Client
	quoteURL  string
	chartURL  string
	userAgent string
}

func NewYahooQuotes(client *xhttp.Client, quoteURL, chartURL, userAgent string) *YahooQuotes {
	return &YahooQuotes{
		client:    client,
		quoteURL:  quoteURL,
		chartURL:  chartURL,
		userAgent: userAgent,
	}
}

// Quote returns the full quote field map for one symbol.
func (y *YahooQuotes) Quote(ctx context.Context, symbol string) (map[string]interface{}, error) {
	var parsed quoteResponse
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         y.quoteURL,
		Headers:     map[string]string{"User-Agent": y.userAgent},
		QueryParams: map[string][]string{"symbols": {symbol}},
	}, &parsed)
	if err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}

	if e := parsed.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("yahoo quote %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("yahoo quote %s: no result", symbol)
	}
	return parsed.QuoteResponse.Result[0], nil
}

// History returns daily candles for symbol over period ("1mo", "1y", "2y",
// "max" and the other range values the chart endpoint accepts).
func (y *YahooQuotes) History(ctx context.Context, symbol, period string) ([]models.Candle, error) {
	var parsed chartResponse
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/%s", y.chartURL, symbol),
		Headers: map[string]string{"User-Agent": y.userAgent},
		QueryParams: map[string][]string{
			"range":    {period},
			"interval": {"1d"},
		},
	}, &parsed)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	if e := parsed.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: no result", symbol)
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: no quote indicators", symbol)
	}
	q := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) {
			break
		}
		candles = append(candles, models.Candle{
			Date:   ts,
			Open:   at(q.Open, i),
			High:   at(q.High, i),
			Low:    at(q.Low, i),
			Close:  at(q.Close, i),
			Volume: at(q.Volume, i),
		})
	}
	return candles, nil
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

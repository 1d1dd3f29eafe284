// Package ticker resolves free-form company names to exchange symbols.
package ticker

import (
	"context"
	"fmt"

	"FinChat/internal/domain/models"
	xhttp "FinChat/pkg/http"
)

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
	} `json:"quotes"`
}

// YahooSearch queries the Yahoo Finance symbol search endpoint.
type YahooSearch struct {
	client    *xhttp.Client
	searchURL string
	userAgent string
}

func NewYahooSearch(client *xhttp.Client, searchURL, userAgent string) *YahooSearch {
	return &YahooSearch{
		client:    client,
		searchURL: searchURL,
		userAgent: userAgent,
	}
}

// Search returns the best-ranked quote for name, or nil when the endpoint
// has no match.
func (y *YahooSearch) Search(ctx context.Context, name string) (*models.TickerRecord, error) {
	var parsed searchResponse
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         y.searchURL,
		Headers:     map[string]string{"User-Agent": y.userAgent},
		QueryParams: map[string][]string{"q": {name}},
	}, &parsed)
	if err != nil {
		return nil, fmt.Errorf("yahoo search %q: %w", name, err)
	}

	if len(parsed.Quotes) == 0 {
		return nil, nil
	}

	best := parsed.Quotes[0]
	return &models.TickerRecord{
		Symbol:    best.Symbol,
		ShortName: best.ShortName,
		LongName:  best.LongName,
		Exchange:  best.Exchange,
	}, nil
}

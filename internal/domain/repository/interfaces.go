package repository

import (
	"context"

	"FinChat/internal/domain/models"
)

// Oracle is the external language model making extraction, selection, and
// synthesis decisions. Implementations wrap one chat-completion API; every
// method returns an *models.OracleError on transport failure.
type Oracle interface {
	// Complete runs a plain prompt-completion call and returns the raw text.
	Complete(ctx context.Context, op, model, prompt string) (string, error)

	// SelectTools submits the query together with the tool catalog and returns
	// the invocations the model chose, possibly none.
	SelectTools(ctx context.Context, query string, catalog []ToolSchema) ([]models.ToolInvocation, error)
}

// ToolSchema describes one registry entry for the oracle's catalog.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema object, nil when the tool takes only the question
}

// TickerSearch is the external free-text symbol search endpoint.
type TickerSearch interface {
	// Search returns the best-match ticker for a company name, or nil when the
	// endpoint has no match. Transport and payload errors also yield nil.
	Search(ctx context.Context, name string) (*models.TickerRecord, error)
}

// QuoteSource provides per-symbol quote and history data.
type QuoteSource interface {
	// Quote returns the raw quote-summary field map for a symbol.
	Quote(ctx context.Context, symbol string) (map[string]interface{}, error)

	// History returns daily OHLCV candles for the period ("1d".."max").
	History(ctx context.Context, symbol, period string) ([]models.Candle, error)
}

// Metrics records pipeline observability signals.
type Metrics interface {
	RecordDispatch(outcome string)
	RecordToolInvocation(tool string)
	RecordOracleCall(op string, seconds float64)
	RecordCacheLookup(cache string, hit bool)
	RecordError(kind string)
}

package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinChat/internal/domain/models"
	drepo "FinChat/internal/domain/repository"
	"FinChat/pkg/cache"
	xlogger "FinChat/pkg/logger"
)

// DefaultHistoryPeriod is used when a tool call omits the period argument.
const DefaultHistoryPeriod = "2y"

// FullHistoryPeriod requests the complete available candle series. Return
// series feeding performance statistics always span full history.
const FullHistoryPeriod = "max"

// fastInfoKeys is the reduced field set surfaced by Handle.FastInfo.
var fastInfoKeys = []string{
	"currency",
	"marketCap",
	"regularMarketPrice",
	"regularMarketOpen",
	"regularMarketDayHigh",
	"regularMarketDayLow",
	"regularMarketPreviousClose",
	"regularMarketVolume",
	"fiftyDayAverage",
	"twoHundredDayAverage",
	"fiftyTwoWeekHigh",
	"fiftyTwoWeekLow",
	"fullExchangeName",
}

// Config sizes the provider's caches.
type Config struct {
	InfoTTL        time.Duration
	InfoMaxSize    int
	ReturnsTTL     time.Duration
	ReturnsMaxSize int
}

// Provider hands out per-symbol handles backed by a quote source. Handles
// are cached so every question about the same symbol within the TTL shares
// one quote fetch.
type Provider struct {
	source     drepo.QuoteSource
	handles    *cache.MemoryCache
	returns    *cache.MemoryCache
	infoTTL    time.Duration
	returnsTTL time.Duration
	logger     *xlogger.Logger
	metrics    drepo.Metrics
}

func NewProvider(source drepo.QuoteSource, cfg Config, logger *xlogger.Logger, metrics drepo.Metrics) *Provider {
	return &Provider{
		source:     source,
		handles:    cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.InfoMaxSize)),
		returns:    cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.ReturnsMaxSize)),
		infoTTL:    cfg.InfoTTL,
		returnsTTL: cfg.ReturnsTTL,
		logger:     logger,
		metrics:    metrics,
	}
}

// Get returns the handle for symbol, reusing a cached one when present.
func (p *Provider) Get(ctx context.Context, symbol string) *Handle {
	key := cache.GenerateKey("handle", symbol)

	var cached *Handle
	if err := p.handles.Get(ctx, key, &cached); err == nil {
		p.metrics.RecordCacheLookup("info", true)
		return cached
	}
	p.metrics.RecordCacheLookup("info", false)

	h := &Handle{symbol: symbol, source: p.source}
	if err := p.handles.Set(ctx, key, h, p.infoTTL); err != nil {
		p.logger.Warn("failed to cache handle", xlogger.Error(err))
	}
	return h
}

// Returns computes the symbol's daily percentage returns over full history,
// cached independently of handles.
func (p *Provider) Returns(ctx context.Context, symbol string) ([]float64, error) {
	key := cache.GenerateKey("returns", symbol)

	var cached []float64
	if err := p.returns.Get(ctx, key, &cached); err == nil {
		p.metrics.RecordCacheLookup("returns", true)
		return cached, nil
	}
	p.metrics.RecordCacheLookup("returns", false)

	candles, err := p.Get(ctx, symbol).History(ctx, FullHistoryPeriod)
	if err != nil {
		return nil, err
	}

	returns := DailyReturns(candles)
	if err := p.returns.Set(ctx, key, returns, p.returnsTTL); err != nil {
		p.logger.Warn("failed to cache returns", xlogger.Error(err))
	}
	return returns, nil
}

// DailyReturns converts a candle series to day-over-day percentage changes.
// Days with a zero prior close are skipped.
func DailyReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, candles[i].Close/prev-1)
	}
	return returns
}

// Handle is a lazily populated view over a single symbol. The quote map is
// fetched once per handle lifetime.
type Handle struct {
	symbol string
	source drepo.QuoteSource

	mu   sync.Mutex
	info map[string]interface{}
}

func (h *Handle) Symbol() string { return h.symbol }

// Info returns the full quote field map, fetching it on first use.
func (h *Handle) Info(ctx context.Context) (map[string]interface{}, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.info != nil {
		return h.info, nil
	}

	info, err := h.source.Quote(ctx, h.symbol)
	if err != nil {
		return nil, err
	}
	h.info = info
	return info, nil
}

// FastInfo returns the reduced quote field set. Missing fields are omitted
// rather than zero-filled.
func (h *Handle) FastInfo(ctx context.Context) (map[string]interface{}, error) {
	info, err := h.Info(ctx)
	if err != nil {
		return nil, err
	}

	fast := make(map[string]interface{}, len(fastInfoKeys))
	for _, key := range fastInfoKeys {
		if value, ok := info[key]; ok {
			fast[key] = value
		}
	}
	return fast, nil
}

// History fetches daily candles for the handle's symbol. An empty period
// falls back to the default.
func (h *Handle) History(ctx context.Context, period string) ([]models.Candle, error) {
	if period == "" {
		period = DefaultHistoryPeriod
	}
	candles, err := h.source.History(ctx, h.symbol, period)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", h.symbol, err)
	}
	return candles, nil
}

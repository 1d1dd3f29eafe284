package ticker

import (
	"context"

	"FinChat/internal/domain/models"
	drepo "FinChat/internal/domain/repository"
	"FinChat/pkg/cache"
	xlogger "FinChat/pkg/logger"
)

// Extracting is the slice of the extract service the resolver composes.
type Extracting interface {
	Extract(ctx context.Context, query string) ([]string, error)
}

// Resolver maps company names to ticker records, memoizing successful
// lookups. Failed lookups are soft: they log a warning and resolve to nil so
// one unknown name never sinks a multi-company question.
type Resolver struct {
	search    drepo.TickerSearch
	extractor Extracting
	cache     cache.Service
	logger    *xlogger.Logger
	metrics   drepo.Metrics
}

func NewResolver(search drepo.TickerSearch, extractor Extracting, c cache.Service, logger *xlogger.Logger, metrics drepo.Metrics) *Resolver {
	return &Resolver{
		search:    search,
		extractor: extractor,
		cache:     c,
		logger:    logger,
		metrics:   metrics,
	}
}

// Resolve returns the ticker record for a company name, or nil when the
// lookup fails for any reason.
func (r *Resolver) Resolve(ctx context.Context, name string) *models.TickerRecord {
	key := cache.GenerateKey("ticker", cache.HashKey(name))

	var cached models.TickerRecord
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		r.metrics.RecordCacheLookup("ticker", true)
		return &cached
	}
	r.metrics.RecordCacheLookup("ticker", false)

	record, err := r.search.Search(ctx, name)
	if err != nil {
		r.logger.Warn("ticker lookup failed", xlogger.String("name", name), xlogger.Error(err))
		return nil
	}
	if record == nil {
		r.logger.Warn("no ticker match", xlogger.String("name", name))
		return nil
	}

	if err := r.cache.Set(ctx, key, *record, 0); err != nil {
		r.logger.Warn("failed to cache ticker record", xlogger.Error(err))
	}
	return record
}

// ResolveAll resolves a batch of names, preserving order and skipping names
// that do not resolve.
func (r *Resolver) ResolveAll(ctx context.Context, names []string) []models.TickerRecord {
	records := make([]models.TickerRecord, 0, len(names))
	for _, name := range names {
		if record := r.Resolve(ctx, name); record != nil {
			records = append(records, *record)
		}
	}
	return records
}

// TickersFromQuery extracts company names from a free-form question and
// resolves each to a ticker record. Extraction errors propagate; resolution
// misses are skipped.
func (r *Resolver) TickersFromQuery(ctx context.Context, query string) ([]models.TickerRecord, error) {
	names, err := r.extractor.Extract(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.ResolveAll(ctx, names), nil
}

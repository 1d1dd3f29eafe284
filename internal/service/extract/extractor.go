// Package extract pulls company names out of free-form questions with a
// single oracle completion per distinct question.
package extract

import (
	"context"
	"sort"
	"time"

	drepo "FinChat/internal/domain/repository"
	"FinChat/pkg/cache"
	xlogger "FinChat/pkg/logger"
)

type Extractor struct {
	oracle  drepo.Oracle
	model   string
	cache   cache.Service
	logger  *xlogger.Logger
	metrics drepo.Metrics
}

func New(oracle drepo.Oracle, model string, c cache.Service, logger *xlogger.Logger, metrics drepo.Metrics) *Extractor {
	return &Extractor{
		oracle:  oracle,
		model:   model,
		cache:   c,
		logger:  logger,
		metrics: metrics,
	}
}

// Extract returns the company names mentioned in query, deduplicated and
// sorted. Results are memoized per query text, so repeated questions cost no
// oracle calls.
func (e *Extractor) Extract(ctx context.Context, query string) ([]string, error) {
	key := cache.GenerateKey("extract", cache.HashKey(query))

	var cached []string
	if err := e.cache.Get(ctx, key, &cached); err == nil {
		e.metrics.RecordCacheLookup("extract", true)
		return cached, nil
	}
	e.metrics.RecordCacheLookup("extract", false)

	raw, err := e.oracle.Complete(ctx, "extract", e.model, renderPrompt(query))
	if err != nil {
		return nil, err
	}

	names := e.parseResponse(raw)

	if err := e.cache.Set(ctx, key, names, time.Duration(0)); err != nil {
		e.logger.Warn("failed to cache extraction result", xlogger.Error(err))
	}
	return names, nil
}

// parseResponse collects every bracketed fragment in the completion, strict
// parse first, loose split as a fallback. Fragments that yield nothing are
// skipped with a warning rather than failing the whole extraction.
func (e *Extractor) parseResponse(raw string) []string {
	seen := make(map[string]struct{})
	for _, fragment := range scanLists(raw) {
		items, err := parseList(fragment)
		if err != nil {
			e.logger.Warn("loose-parsing malformed company list",
				xlogger.String("fragment", fragment),
				xlogger.Error(err))
			items = looseParse(fragment)
		}
		for _, name := range items {
			if name == "" {
				continue
			}
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

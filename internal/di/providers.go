package di

import (
	"fmt"
	"io"

	drepo "FinChat/internal/domain/repository"
	"FinChat/internal/handler/api"
	"FinChat/internal/service/extract"
	"FinChat/internal/service/marketdata"
	"FinChat/internal/service/oracle"
	"FinChat/internal/service/ticker"
	"FinChat/internal/usecase"
	"FinChat/pkg/cache"
	"FinChat/pkg/config"
	xhttp "FinChat/pkg/http"
	xlogger "FinChat/pkg/logger"
	"FinChat/pkg/metrics"
	"FinChat/pkg/server"
)

// ProvideLogger creates the application logger. Development gets console
// output at debug level, everything else structured JSON.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	lcfg := &xlogger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lcfg.Level = "debug"
		lcfg.Format = "console"
	}
	return xlogger.New(lcfg)
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op one when
// metrics are disabled.
func ProvideMetrics(cfg *config.Config) drepo.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.NewNop()
	}
	return metrics.New()
}

// ProvideOracle creates the language-model client.
func ProvideOracle(cfg *config.Config, logger *xlogger.Logger, m drepo.Metrics) drepo.Oracle {
	return oracle.New(&oracle.Config{
		APIKey:      cfg.Oracle.APIKey,
		BaseURL:     cfg.Oracle.BaseURL,
		SelectModel: cfg.Oracle.SelectModel,
		Temperature: cfg.Oracle.Temperature,
		MaxTokens:   cfg.Oracle.MaxTokens,
		Timeout:     cfg.Oracle.Timeout,
	}, logger, m)
}

// Caches bundles the memoization caches so wire can tell them apart.
type Caches struct {
	Extract cache.Service
	Ticker  cache.Service
}

// ProvideCaches creates the extraction and ticker caches. With Redis enabled
// both become layered so resolved mappings survive restarts and are shared
// across replicas.
func ProvideCaches(cfg *config.Config) (*Caches, error) {
	if !cfg.Cache.Redis.Enabled {
		return &Caches{
			Extract: cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.ExtractMaxSize)),
			Ticker:  cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.TickerMaxSize)),
		}, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}

	return &Caches{
		Extract: cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.ExtractMaxSize)),
		Ticker:  cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.TickerMaxSize)),
	}, nil
}

// ProvideExtractor creates the company-name extraction service.
func ProvideExtractor(cfg *config.Config, o drepo.Oracle, caches *Caches, logger *xlogger.Logger, m drepo.Metrics) *extract.Extractor {
	return extract.New(o, cfg.Oracle.ExtractModel, caches.Extract, logger, m)
}

// ProvideResolver creates the ticker resolution service.
func ProvideResolver(cfg *config.Config, extractor *extract.Extractor, caches *Caches, logger *xlogger.Logger, m drepo.Metrics) *ticker.Resolver {
	search := ticker.NewYahooSearch(
		xhttp.NewClient(xhttp.WithTimeout(cfg.Yahoo.Timeout)),
		cfg.Yahoo.SearchURL,
		cfg.Yahoo.UserAgent,
	)
	return ticker.NewResolver(search, extractor, caches.Ticker, logger, m)
}

// ProvideDataProvider creates the market data provider.
func ProvideDataProvider(cfg *config.Config, logger *xlogger.Logger, m drepo.Metrics) *marketdata.Provider {
	source := marketdata.NewYahooQuotes(
		xhttp.NewClient(xhttp.WithTimeout(cfg.Yahoo.Timeout)),
		cfg.Yahoo.QuoteURL,
		cfg.Yahoo.ChartURL,
		cfg.Yahoo.UserAgent,
	)
	return marketdata.NewProvider(source, marketdata.Config{
		InfoTTL:        cfg.Cache.InfoTTL,
		InfoMaxSize:    cfg.Cache.InfoMaxSize,
		ReturnsTTL:     cfg.Cache.ReturnsTTL,
		ReturnsMaxSize: cfg.Cache.ReturnsMaxSize,
	}, logger, m)
}

// ProvideDispatcher creates the tool dispatch loop with the full catalog.
func ProvideDispatcher(o drepo.Oracle, resolver *ticker.Resolver, provider *marketdata.Provider, logger *xlogger.Logger, m drepo.Metrics) *usecase.Dispatcher {
	toolkit := usecase.NewToolkit(resolver, provider, logger)
	return usecase.NewDispatcher(o, usecase.NewRegistry(toolkit.Tools()...), logger, m)
}

// ProvideSynthesizer creates the answer synthesis service.
func ProvideSynthesizer(cfg *config.Config, o drepo.Oracle, logger *xlogger.Logger) *usecase.Synthesizer {
	return usecase.NewSynthesizer(o, cfg.Oracle.SynthesisModel, logger)
}

// ProvideChatHandler creates the HTTP handler for the chat API.
func ProvideChatHandler(
	cfg *config.Config,
	logger *xlogger.Logger,
	dispatcher *usecase.Dispatcher,
	synthesizer *usecase.Synthesizer,
	resolver *ticker.Resolver,
) *api.ChatHandler {
	return api.NewChatHandler(logger, dispatcher, synthesizer, resolver,
		cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideApp assembles the application server.
func ProvideApp(cfg *config.Config, logger *xlogger.Logger, handler *api.ChatHandler, caches *Caches) *server.App {
	closers := []io.Closer{caches.Extract}
	if caches.Ticker != caches.Extract {
		closers = append(closers, caches.Ticker)
	}
	return server.New(cfg, logger, handler, closers...)
}

package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
	drepo "FinChat/internal/domain/repository"
	"FinChat/internal/service/marketdata"
	"FinChat/internal/service/ticker"
	"FinChat/internal/services/analytics"
	"FinChat/pkg/cache"
	xlogger "FinChat/pkg/logger"
	"FinChat/pkg/metrics"
)

type fakeOracle struct {
	invocations []models.ToolInvocation
	selectErr   error
	completion  string
	prompts     []string
}

func (f *fakeOracle) Complete(_ context.Context, _, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.completion, nil
}

func (f *fakeOracle) SelectTools(_ context.Context, _ string, _ []drepo.ToolSchema) ([]models.ToolInvocation, error) {
	return f.invocations, f.selectErr
}

type fakeExtractor struct {
	names []string
}

func (f *fakeExtractor) Extract(context.Context, string) ([]string, error) {
	return f.names, nil
}

type fakeSearch struct {
	records map[string]*models.TickerRecord
}

func (f *fakeSearch) Search(_ context.Context, name string) (*models.TickerRecord, error) {
	return f.records[name], nil
}

type fakeQuotes struct {
	info       map[string]map[string]interface{}
	candles    []models.Candle
	quoteCalls int
	chartCalls int
	periods    []string
}

func (f *fakeQuotes) Quote(_ context.Context, symbol string) (map[string]interface{}, error) {
	f.quoteCalls++
	return f.info[symbol], nil
}

func (f *fakeQuotes) History(_ context.Context, _, period string) ([]models.Candle, error) {
	f.chartCalls++
	f.periods = append(f.periods, period)
	return f.candles, nil
}

func newTestDispatcher(oracle *fakeOracle, quotes *fakeQuotes) *Dispatcher {
	extractor := &fakeExtractor{names: []string{"Microsoft", "Google"}}
	search := &fakeSearch{records: map[string]*models.TickerRecord{
		"Microsoft": {Symbol: "MSFT", ShortName: "Microsoft", LongName: "Microsoft Corporation", Exchange: "NMS"},
		"Google":    {Symbol: "GOOG", ShortName: "Alphabet", LongName: "Alphabet Inc.", Exchange: "NMS"},
	}}

	logger := xlogger.NewNop()
	nop := metrics.NewNop()
	resolver := ticker.NewResolver(search, extractor, cache.NewMemoryCache(), logger, nop)
	provider := marketdata.NewProvider(quotes, marketdata.Config{
		InfoTTL:        10 * time.Minute,
		InfoMaxSize:    16,
		ReturnsTTL:     time.Hour,
		ReturnsMaxSize: 16,
	}, logger, nop)

	toolkit := NewToolkit(resolver, provider, logger)
	return NewDispatcher(oracle, NewRegistry(toolkit.Tools()...), logger, nop)
}

func betaQuotes() *fakeQuotes {
	return &fakeQuotes{
		info: map[string]map[string]interface{}{
			"MSFT": {"symbol": "MSFT", "beta": 0.89, "regularMarketPrice": 410.5},
			"GOOG": {"symbol": "GOOG", "beta": 1.05, "regularMarketPrice": 170.2},
		},
		candles: []models.Candle{
			{Date: 1700000000, Open: 100, High: 103, Low: 99, Close: 102, Volume: 1000},
			{Date: 1700086400, Open: 102, High: 104, Low: 101, Close: 101, Volume: 1100},
			{Date: 1700172800, Open: 101, High: 103, Low: 100, Close: 103, Volume: 900},
		},
	}
}

func TestDispatchTradingInfoCarriesBetaPerTicker(t *testing.T) {
	oracle := &fakeOracle{invocations: []models.ToolInvocation{
		{Name: "get_stock_trading_info", Arguments: map[string]interface{}{}},
	}}
	d := newTestDispatcher(oracle, betaQuotes())

	result, err := d.Dispatch(context.Background(), "Show me microsoft and google beta values")
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	assert.Equal(t, "MSFT", result.Records[0]["symbol"])
	assert.Equal(t, 0.89, result.Records[0]["beta"])
	assert.Equal(t, "GOOG", result.Records[1]["symbol"])
	assert.Equal(t, 1.05, result.Records[1]["beta"])
	assert.Empty(t, result.Charts)
}

func TestDispatchDefaultsMissingFields(t *testing.T) {
	quotes := betaQuotes()
	delete(quotes.info["MSFT"], "beta")
	oracle := &fakeOracle{invocations: []models.ToolInvocation{
		{Name: "get_stock_trading_info"},
	}}
	d := newTestDispatcher(oracle, quotes)

	result, err := d.Dispatch(context.Background(), "microsoft beta")
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "", result.Records[0]["beta"])
	assert.Equal(t, 0, result.Records[0]["enterpriseValue"])
}

func TestDispatchUnknownToolAbortsBeforeExecution(t *testing.T) {
	quotes := betaQuotes()
	oracle := &fakeOracle{invocations: []models.ToolInvocation{
		{Name: "get_stock_trading_info"},
		{Name: "drop_tables"},
	}}
	d := newTestDispatcher(oracle, quotes)

	_, err := d.Dispatch(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, models.IsUnknownTool(err))
	assert.Zero(t, quotes.quoteCalls)
}

func TestDispatchOracleFailureIsFatal(t *testing.T) {
	oracle := &fakeOracle{selectErr: &models.OracleError{Op: "select", Err: assert.AnError}}
	d := newTestDispatcher(oracle, betaQuotes())

	_, err := d.Dispatch(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, models.IsOracleError(err))
}

func TestDispatchEmptySelection(t *testing.T) {
	oracle := &fakeOracle{}
	d := newTestDispatcher(oracle, betaQuotes())

	result, err := d.Dispatch(context.Background(), "What is a P/E ratio?")
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestDispatchDefaultQueryToolYieldsEmpty(t *testing.T) {
	oracle := &fakeOracle{invocations: []models.ToolInvocation{
		{Name: "return_default_query"},
	}}
	d := newTestDispatcher(oracle, betaQuotes())

	result, err := d.Dispatch(context.Background(), "What is a P/E ratio?")
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestDispatchPopsChartsFromRecords(t *testing.T) {
	oracle := &fakeOracle{invocations: []models.ToolInvocation{
		{Name: "show_price_volume_history", Arguments: map[string]interface{}{"period": "1y"}},
	}}
	d := newTestDispatcher(oracle, betaQuotes())

	result, err := d.Dispatch(context.Background(), "show microsoft and google price history")
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Len(t, result.Charts, 2)

	for _, record := range result.Records {
		assert.NotContains(t, record, models.ChartField)
		assert.Contains(t, record, "summary")
	}
	assert.Equal(t, "ohlc", result.Charts[0].Data[0].Type)
	assert.Contains(t, result.Charts[0].Layout.Title, "MSFT OHLC from 2023-11-14 to 2023-11-16")
}

func TestDispatchClampsInvalidHistoryPeriod(t *testing.T) {
	quotes := betaQuotes()
	oracle := &fakeOracle{invocations: []models.ToolInvocation{
		{Name: "show_price_volume_history", Arguments: map[string]interface{}{"period": "1000y; DROP"}},
	}}
	d := newTestDispatcher(oracle, quotes)

	result, err := d.Dispatch(context.Background(), "show microsoft and google price history")
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	require.NotEmpty(t, quotes.periods)
	for _, period := range quotes.periods {
		assert.Equal(t, marketdata.DefaultHistoryPeriod, period)
	}
}

func TestDispatchPerformanceStats(t *testing.T) {
	oracle := &fakeOracle{invocations: []models.ToolInvocation{
		{Name: "get_performance_stats"},
	}}
	d := newTestDispatcher(oracle, betaQuotes())

	result, err := d.Dispatch(context.Background(), "how did microsoft and google perform")
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	expected := analytics.Compute(marketdata.DailyReturns(betaQuotes().candles))
	for _, record := range result.Records {
		assert.Equal(t, expected.CAGR, record["cagr"])
		assert.Equal(t, expected.Sharpe, record["sharpe"])
		assert.Equal(t, expected.MaxDrawdown, record["max_drawdown"])
		assert.Equal(t, expected.VaR95, record["value_at_risk"])
		assert.Equal(t, expected.CVaR, record["cvar"])
	}
}

func TestRegistryCatalogSorted(t *testing.T) {
	d := newTestDispatcher(&fakeOracle{}, betaQuotes())

	catalog := d.registry.Catalog()
	require.Len(t, catalog, 7)
	for i := 1; i < len(catalog); i++ {
		assert.Less(t, catalog[i-1].Name, catalog[i].Name)
	}
}

func TestSynthesizerEmbedsDataAndDate(t *testing.T) {
	oracle := &fakeOracle{completion: "MSFT's beta is 0.89."}
	s := NewSynthesizer(oracle, "m", xlogger.NewNop())
	s.now = func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) }

	answer, err := s.Answer(context.Background(), "msft beta?", []models.Record{{"symbol": "MSFT", "beta": 0.89}})
	require.NoError(t, err)
	assert.Equal(t, "MSFT's beta is 0.89.", answer)

	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], `"beta":0.89`)
	assert.Contains(t, oracle.prompts[0], "2025-03-09")
	assert.Contains(t, oracle.prompts[0], "msft beta?")
}

func TestSynthesizerKeepsPlaceholderTextInQuestion(t *testing.T) {
	oracle := &fakeOracle{completion: "ok"}
	s := NewSynthesizer(oracle, "m", xlogger.NewNop())
	s.now = func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) }

	question := "what do {data} and {today} mean in templates?"
	_, err := s.Answer(context.Background(), question, []models.Record{{"symbol": "MSFT"}})
	require.NoError(t, err)

	require.Len(t, oracle.prompts, 1)
	prompt := oracle.prompts[0]
	assert.Contains(t, prompt, question)
	assert.Contains(t, prompt, "2025-03-09")
	// Only the question's own braces survive; the template slots are filled.
	assert.Equal(t, 1, strings.Count(prompt, "{data}"))
	assert.Equal(t, 1, strings.Count(prompt, "{today}"))
}

func TestSynthesizerDefaultPrompt(t *testing.T) {
	oracle := &fakeOracle{completion: "A P/E ratio is..."}
	s := NewSynthesizer(oracle, "m", xlogger.NewNop())

	answer, err := s.AnswerDefault(context.Background(), "What is a P/E ratio?")
	require.NoError(t, err)
	assert.Equal(t, "A P/E ratio is...", answer)
	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "finance expert")
}

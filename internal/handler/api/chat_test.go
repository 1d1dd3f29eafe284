package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
	drepo "FinChat/internal/domain/repository"
	"FinChat/internal/service/extract"
	"FinChat/internal/service/marketdata"
	"FinChat/internal/service/ticker"
	"FinChat/internal/usecase"
	"FinChat/pkg/cache"
	xlogger "FinChat/pkg/logger"
	"FinChat/pkg/metrics"
)

type scriptedOracle struct {
	completions map[string]string
	invocations []models.ToolInvocation
	selectErr   error
}

func (o *scriptedOracle) Complete(_ context.Context, op, _, _ string) (string, error) {
	return o.completions[op], nil
}

func (o *scriptedOracle) SelectTools(_ context.Context, _ string, _ []drepo.ToolSchema) ([]models.ToolInvocation, error) {
	return o.invocations, o.selectErr
}

type staticSearch struct{}

func (staticSearch) Search(_ context.Context, name string) (*models.TickerRecord, error) {
	if name == "Microsoft" {
		return &models.TickerRecord{Symbol: "MSFT", ShortName: "Microsoft", Exchange: "NMS"}, nil
	}
	return nil, nil
}

type staticQuotes struct{}

func (staticQuotes) Quote(_ context.Context, symbol string) (map[string]interface{}, error) {
	return map[string]interface{}{"symbol": symbol, "beta": 0.89}, nil
}

func (staticQuotes) History(_ context.Context, _, _ string) ([]models.Candle, error) {
	return []models.Candle{{Date: 1, Close: 100}, {Date: 2, Close: 101}}, nil
}

func newTestHandler(oracle *scriptedOracle, rlCapacity float64) *ChatHandler {
	logger := xlogger.NewNop()
	nop := metrics.NewNop()

	extractor := extract.New(oracle, "m", cache.NewMemoryCache(), logger, nop)
	resolver := ticker.NewResolver(staticSearch{}, extractor, cache.NewMemoryCache(), logger, nop)
	provider := marketdata.NewProvider(staticQuotes{}, marketdata.Config{
		InfoTTL:        time.Minute,
		InfoMaxSize:    16,
		ReturnsTTL:     time.Minute,
		ReturnsMaxSize: 16,
	}, logger, nop)

	toolkit := usecase.NewToolkit(resolver, provider, logger)
	dispatcher := usecase.NewDispatcher(oracle, usecase.NewRegistry(toolkit.Tools()...), logger, nop)
	synthesizer := usecase.NewSynthesizer(oracle, "m", logger)

	return NewChatHandler(logger, dispatcher, synthesizer, resolver, rlCapacity, 0)
}

func doChat(t *testing.T, h *ChatHandler, body string) map[string]interface{} {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestChatGroundedAnswer(t *testing.T) {
	oracle := &scriptedOracle{
		completions: map[string]string{
			"extract":    `["Microsoft"]`,
			"synthesize": "Microsoft's beta is 0.89.",
		},
		invocations: []models.ToolInvocation{{Name: "get_stock_trading_info"}},
	}
	envelope := doChat(t, newTestHandler(oracle, 10), `{"question":"microsoft beta?"}`)

	assert.Equal(t, float64(200), envelope["status"])
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "Microsoft's beta is 0.89.", data["answer"])
	assert.Equal(t, true, data["grounded"])
	assert.Len(t, data["data"], 1)
}

func TestChatFallbackWhenNoData(t *testing.T) {
	oracle := &scriptedOracle{
		completions: map[string]string{"fallback": "A P/E ratio compares price to earnings."},
	}
	envelope := doChat(t, newTestHandler(oracle, 10), `{"question":"What is a P/E ratio?"}`)

	assert.Equal(t, float64(200), envelope["status"])
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "A P/E ratio compares price to earnings.", data["answer"])
	assert.Equal(t, false, data["grounded"])
}

func TestChatUnknownToolReportsError(t *testing.T) {
	oracle := &scriptedOracle{
		invocations: []models.ToolInvocation{{Name: "no_such_tool"}},
	}
	envelope := doChat(t, newTestHandler(oracle, 10), `{"question":"q"}`)

	assert.Equal(t, float64(500), envelope["status"])
}

func TestChatOracleDownReportsBadGateway(t *testing.T) {
	oracle := &scriptedOracle{
		selectErr: &models.OracleError{Op: "select", Err: assert.AnError},
	}
	envelope := doChat(t, newTestHandler(oracle, 10), `{"question":"q"}`)

	assert.Equal(t, float64(502), envelope["status"])
}

func TestChatMissingQuestionRejected(t *testing.T) {
	envelope := doChat(t, newTestHandler(&scriptedOracle{}, 10), `{}`)

	assert.Equal(t, float64(400), envelope["status"])
}

func TestChatRateLimitPerSession(t *testing.T) {
	h := newTestHandler(&scriptedOracle{completions: map[string]string{"fallback": "hi"}}, 1)

	first := doChat(t, h, `{"session_id":"s1","question":"q"}`)
	assert.Equal(t, float64(200), first["status"])

	second := doChat(t, h, `{"session_id":"s1","question":"q"}`)
	assert.Equal(t, float64(429), second["status"])

	other := doChat(t, h, `{"session_id":"s2","question":"q"}`)
	assert.Equal(t, float64(200), other["status"])
}

func TestTickersEndpoint(t *testing.T) {
	oracle := &scriptedOracle{completions: map[string]string{"extract": `["Microsoft"]`}}
	h := newTestHandler(oracle, 10)

	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, "/api/tickers?q=tell+me+about+microsoft", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(200), envelope["status"])

	records := envelope["data"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, "MSFT", records[0].(map[string]interface{})["symbol"])
}

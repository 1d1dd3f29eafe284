package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
	xhttp "FinChat/pkg/http"
	xlogger "FinChat/pkg/logger"
	"FinChat/pkg/metrics"
)

const quoteBody = `{"quoteResponse":{"result":[{
	"symbol":"MSFT",
	"currency":"USD",
	"regularMarketPrice":410.5,
	"regularMarketPreviousClose":408.2,
	"marketCap":3050000000000,
	"trailingPE":35.1,
	"longBusinessSummary":"Software company."
}],"error":null}}`

const chartBody = `{"chart":{"result":[{
	"timestamp":[1700000000,1700086400,1700172800,1700259200],
	"indicators":{"quote":[{
		"open":[100,102,101,103],
		"high":[103,104,103,105],
		"low":[99,101,100,102],
		"close":[102,101,103,104],
		"volume":[1000,1100,900,1200]
	}]}
}],"error":null}}`

func newTestProvider(t *testing.T, quoteHits, chartHits *int64) *Provider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/quote" {
			atomic.AddInt64(quoteHits, 1)
			w.Write([]byte(quoteBody))
			return
		}
		atomic.AddInt64(chartHits, 1)
		w.Write([]byte(chartBody))
	}))
	t.Cleanup(srv.Close)

	source := NewYahooQuotes(xhttp.NewClient(), srv.URL+"/quote", srv.URL+"/chart", "test-agent")
	cfg := Config{
		InfoTTL:        10 * time.Minute,
		InfoMaxSize:    16,
		ReturnsTTL:     time.Hour,
		ReturnsMaxSize: 16,
	}
	return NewProvider(source, cfg, xlogger.NewNop(), metrics.NewNop())
}

func TestHandleInfoFetchedOncePerHandle(t *testing.T) {
	var quoteHits, chartHits int64
	p := newTestProvider(t, &quoteHits, &chartHits)

	h := p.Get(context.Background(), "MSFT")
	for i := 0; i < 3; i++ {
		info, err := h.Info(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "USD", info["currency"])
		assert.Equal(t, 35.1, info["trailingPE"])
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&quoteHits))
}

func TestGetReusesCachedHandle(t *testing.T) {
	var quoteHits, chartHits int64
	p := newTestProvider(t, &quoteHits, &chartHits)

	h1 := p.Get(context.Background(), "MSFT")
	_, err := h1.Info(context.Background())
	require.NoError(t, err)

	h2 := p.Get(context.Background(), "MSFT")
	_, err = h2.Info(context.Background())
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Equal(t, int64(1), atomic.LoadInt64(&quoteHits))
}

func TestFastInfoSubsetsKnownKeys(t *testing.T) {
	var quoteHits, chartHits int64
	p := newTestProvider(t, &quoteHits, &chartHits)

	fast, err := p.Get(context.Background(), "MSFT").FastInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 410.5, fast["regularMarketPrice"])
	assert.Equal(t, "USD", fast["currency"])
	assert.NotContains(t, fast, "trailingPE")
	assert.NotContains(t, fast, "longBusinessSummary")
}

func TestHistoryMapsCandles(t *testing.T) {
	var quoteHits, chartHits int64
	p := newTestProvider(t, &quoteHits, &chartHits)

	candles, err := p.Get(context.Background(), "MSFT").History(context.Background(), "1mo")
	require.NoError(t, err)
	require.Len(t, candles, 4)
	assert.Equal(t, int64(1700000000), candles[0].Date)
	assert.Equal(t, 102.0, candles[0].Close)
	assert.Equal(t, 1200.0, candles[3].Volume)
}

func TestReturnsCachedAcrossCalls(t *testing.T) {
	var quoteHits, chartHits int64
	p := newTestProvider(t, &quoteHits, &chartHits)

	first, err := p.Returns(context.Background(), "MSFT")
	require.NoError(t, err)
	second, err := p.Returns(context.Background(), "MSFT")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&chartHits))

	require.Len(t, first, 3)
	assert.InDelta(t, -1.0/102.0, first[0], 1e-12)
	assert.InDelta(t, 2.0/101.0, first[1], 1e-12)
}

func TestReturnsSpanFullHistory(t *testing.T) {
	var gotRange atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange.Store(r.URL.Query().Get("range"))
		w.Write([]byte(chartBody))
	}))
	t.Cleanup(srv.Close)

	source := NewYahooQuotes(xhttp.NewClient(), srv.URL+"/quote", srv.URL+"/chart", "test-agent")
	p := NewProvider(source, Config{InfoMaxSize: 16, ReturnsMaxSize: 16}, xlogger.NewNop(), metrics.NewNop())

	_, err := p.Returns(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "max", gotRange.Load())
}

func TestDailyReturnsSkipsZeroPriorClose(t *testing.T) {
	candles := []models.Candle{
		{Close: 100},
		{Close: 0},
		{Close: 50},
		{Close: 55},
	}
	returns := DailyReturns(candles)
	require.Len(t, returns, 2)
	assert.InDelta(t, -1.0, returns[0], 1e-12)
	assert.InDelta(t, 0.1, returns[1], 1e-12)
}

func TestDailyReturnsShortSeries(t *testing.T) {
	assert.Empty(t, DailyReturns(nil))
	assert.Empty(t, DailyReturns([]models.Candle{{Close: 100}}))
}

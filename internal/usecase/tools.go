package usecase

import (
	"context"
	"fmt"
	"time"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/marketdata"
	"FinChat/internal/service/ticker"
	"FinChat/internal/services/analytics"
	xlogger "FinChat/pkg/logger"
)

// Toolkit carries the shared dependencies every tool draws on.
type Toolkit struct {
	resolver *ticker.Resolver
	provider *marketdata.Provider
	logger   *xlogger.Logger
}

func NewToolkit(resolver *ticker.Resolver, provider *marketdata.Provider, logger *xlogger.Logger) *Toolkit {
	return &Toolkit{
		resolver: resolver,
		provider: provider,
		logger:   logger,
	}
}

// Tools returns the full catalog in its canonical order.
func (tk *Toolkit) Tools() []Tool {
	return []Tool{
		&companyInfoTool{tk},
		&tradingInfoTool{tk},
		&financialInfoTool{tk},
		&priceHistoryTool{tk},
		&performanceChartTool{tk},
		&performanceStatsTool{tk},
		&defaultQueryTool{},
	}
}

func questionParams() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "The user question",
			},
		},
		"required": []string{"question"},
	}
}

// field projects one key from an info map, substituting def when the
// upstream value is missing. Keys are always present in tool output.
func field(info map[string]interface{}, key string, def interface{}) interface{} {
	if v, ok := info[key]; ok && v != nil {
		return v
	}
	return def
}

type companyInfoTool struct{ *Toolkit }

func (t *companyInfoTool) Name() string { return "get_company_info" }

func (t *companyInfoTool) Description() string {
	return "Return the company information when asked for it. The information includes company name, sector, industry, address, phone, website, officers, and description, etc."
}

func (t *companyInfoTool) Parameters() map[string]interface{} { return questionParams() }

func (t *companyInfoTool) Invoke(ctx context.Context, question string, _ map[string]interface{}) ([]models.Record, error) {
	tickers, err := t.resolver.TickersFromQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(tickers))
	for _, tk := range tickers {
		info, err := t.provider.Get(ctx, tk.Symbol).Info(ctx)
		if err != nil {
			t.logger.Warn("company info unavailable", xlogger.String("symbol", tk.Symbol), xlogger.Error(err))
			continue
		}
		records = append(records, models.Record{
			"symbol":              field(info, "symbol", ""),
			"exchange":            field(info, "exchange", ""),
			"address":             field(info, "address1", ""),
			"city":                field(info, "city", ""),
			"state":               field(info, "state", ""),
			"zip":                 field(info, "zip", ""),
			"country":             field(info, "country", ""),
			"phone":               field(info, "phone", ""),
			"website":             field(info, "website", ""),
			"industry":            field(info, "industry", ""),
			"sector":              field(info, "sector", ""),
			"longBusinessSummary": field(info, "longBusinessSummary", ""),
			"longName":            field(info, "longName", ""),
			"shortName":           field(info, "shortName", ""),
			"fullTimeEmployees":   field(info, "fullTimeEmployees", ""),
			"companyOfficers":     field(info, "companyOfficers", []interface{}{}),
		})
	}
	return records, nil
}

type tradingInfoTool struct{ *Toolkit }

func (t *tradingInfoTool) Name() string { return "get_stock_trading_info" }

func (t *tradingInfoTool) Description() string {
	return "Return the stock trading information including current price, open, high, low, close, volume, bid, ask, market cap, beta, P/E, and EPS, etc."
}

func (t *tradingInfoTool) Parameters() map[string]interface{} { return questionParams() }

func (t *tradingInfoTool) Invoke(ctx context.Context, question string, _ map[string]interface{}) ([]models.Record, error) {
	tickers, err := t.resolver.TickersFromQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(tickers))
	for _, tk := range tickers {
		info, err := t.provider.Get(ctx, tk.Symbol).Info(ctx)
		if err != nil {
			t.logger.Warn("trading info unavailable", xlogger.String("symbol", tk.Symbol), xlogger.Error(err))
			continue
		}
		records = append(records, models.Record{
			"symbol":                       field(info, "symbol", ""),
			"exchange":                     field(info, "exchange", ""),
			"regularMarketPrice":           field(info, "regularMarketPrice", ""),
			"regularMarketOpen":            field(info, "regularMarketOpen", ""),
			"regularMarketPreviousClose":   field(info, "regularMarketPreviousClose", ""),
			"regularMarketVolume":          field(info, "regularMarketVolume", ""),
			"regularMarketDayHigh":         field(info, "regularMarketDayHigh", ""),
			"regularMarketDayLow":          field(info, "regularMarketDayLow", ""),
			"regularMarketDayRange":        field(info, "regularMarketDayRange", ""),
			"regularMarketBid":             field(info, "regularMarketBid", ""),
			"regularMarketAsk":             field(info, "regularMarketAsk", ""),
			"marketCap":                    field(info, "marketCap", ""),
			"beta":                         field(info, "beta", ""),
			"trailingPE":                   field(info, "trailingPE", ""),
			"forwardPE":                    field(info, "forwardPE", ""),
			"eps":                          field(info, "epsTrailingTwelveMonths", ""),
			"enterpriseValue":              field(info, "enterpriseValue", 0),
			"currency":                     field(info, "currency", ""),
			"pegRatio":                     field(info, "pegRatio", 0),
			"priceToSalesTrailing12Months": field(info, "priceToSalesTrailing12Months", 0),
			"priceToBook":                  field(info, "priceToBook", 0),
			"enterpriseToRevenue":          field(info, "enterpriseToRevenue", 0),
			"enterpriseToEbitda":           field(info, "enterpriseToEbitda", 0),
			"priceHint":                    field(info, "priceHint", 0),
			"previousClose":                field(info, "previousClose", 0),
			"open":                         field(info, "open", 0),
			"dayLow":                       field(info, "dayLow", 0),
			"dayHigh":                      field(info, "dayHigh", 0),
			"financialCurrency":            field(info, "financialCurrency", ""),
			"currentPrice":                 field(info, "currentPrice", 0),
			"volume":                       field(info, "volume", 0),
			"trailingPegRatio":             field(info, "trailingPegRatio", 0),
			"bid":                          field(info, "bid", 0),
			"ask":                          field(info, "ask", 0),
			"bidSize":                      field(info, "bidSize", 0),
			"askSize":                      field(info, "askSize", 0),
			"targetHighPrice":              field(info, "targetHighPrice", 0),
			"targetLowPrice":               field(info, "targetLowPrice", 0),
			"targetMeanPrice":              field(info, "targetMeanPrice", 0),
			"targetMedianPrice":            field(info, "targetMedianPrice", 0),
			"recommendationMean":           field(info, "recommendationMean", 0),
			"recommendationKey":            field(info, "recommendationKey", ""),
		})
	}
	return records, nil
}

type financialInfoTool struct{ *Toolkit }

func (t *financialInfoTool) Name() string { return "get_financial_info" }

func (t *financialInfoTool) Description() string {
	return "Return the financial information including balance sheet, income statement, debt, revenue, cash flow, and financial ratios, etc."
}

func (t *financialInfoTool) Parameters() map[string]interface{} { return questionParams() }

func (t *financialInfoTool) Invoke(ctx context.Context, question string, _ map[string]interface{}) ([]models.Record, error) {
	tickers, err := t.resolver.TickersFromQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(tickers))
	for _, tk := range tickers {
		info, err := t.provider.Get(ctx, tk.Symbol).Info(ctx)
		if err != nil {
			t.logger.Warn("financial info unavailable", xlogger.String("symbol", tk.Symbol), xlogger.Error(err))
			continue
		}
		records = append(records, models.Record{
			"symbol":                  field(info, "symbol", ""),
			"totalCash":               field(info, "totalCash", 0),
			"totalCashPerShare":       field(info, "totalCashPerShare", 0),
			"ebitda":                  field(info, "ebitda", 0),
			"totalDebt":               field(info, "totalDebt", 0),
			"quickRatio":              field(info, "quickRatio", 0),
			"currentRatio":            field(info, "currentRatio", 0),
			"totalRevenue":            field(info, "totalRevenue", 0),
			"debtToEquity":            field(info, "debtToEquity", 0),
			"revenuePerShare":         field(info, "revenuePerShare", 0),
			"returnOnAssets":          field(info, "returnOnAssets", 0),
			"returnOnEquity":          field(info, "returnOnEquity", 0),
			"freeCashflow":            field(info, "freeCashflow", 0),
			"operatingCashflow":       field(info, "operatingCashflow", 0),
			"earningsQuarterlyGrowth": field(info, "earningsQuarterlyGrowth", 0),
			"netIncomeToCommon":       field(info, "netIncomeToCommon", 0),
			"trailingEps":             field(info, "trailingEps", 0),
			"forwardEps":              field(info, "forwardEps", 0),
			"earningsGrowth":          field(info, "earningsGrowth", 0),
			"revenueGrowth":           field(info, "revenueGrowth", 0),
			"grossMargins":            field(info, "grossMargins", 0),
			"ebitdaMargins":           field(info, "ebitdaMargins", 0),
			"operatingMargins":        field(info, "operatingMargins", 0),
			"financialCurrency":       field(info, "financialCurrency", ""),
		})
	}
	return records, nil
}

// validHistoryPeriods is the closed set of range values the chart endpoint
// accepts. The period argument comes from the oracle and is untrusted;
// anything outside the set falls back to the default.
var validHistoryPeriods = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

type priceHistoryTool struct{ *Toolkit }

func (t *priceHistoryTool) Name() string { return "show_price_volume_history" }

func (t *priceHistoryTool) Description() string {
	return "Show the price history (OHLC) of the stock."
}

func (t *priceHistoryTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "The user question",
			},
			"period": map[string]interface{}{
				"type":        "string",
				"description": "The period of the price history (default is 2y). The valid values are: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max",
			},
		},
		"required": []string{"question"},
	}
}

func (t *priceHistoryTool) Invoke(ctx context.Context, question string, args map[string]interface{}) ([]models.Record, error) {
	tickers, err := t.resolver.TickersFromQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	period, _ := args["period"].(string)
	if !validHistoryPeriods[period] {
		period = marketdata.DefaultHistoryPeriod
	}

	records := make([]models.Record, 0, len(tickers))
	for _, tk := range tickers {
		handle := t.provider.Get(ctx, tk.Symbol)
		candles, err := handle.History(ctx, period)
		if err != nil || len(candles) == 0 {
			t.logger.Warn("price history unavailable", xlogger.String("symbol", tk.Symbol), xlogger.Error(err))
			continue
		}
		fast, err := handle.FastInfo(ctx)
		if err != nil {
			t.logger.Warn("fast info unavailable", xlogger.String("symbol", tk.Symbol), xlogger.Error(err))
			fast = map[string]interface{}{}
		}

		first, last := candles[0], candles[len(candles)-1]
		title := fmt.Sprintf("%s OHLC from %s to %s", tk.Symbol, dateLabel(first.Date), dateLabel(last.Date))
		records = append(records, models.Record{
			"symbol":          tk.Symbol,
			"summary":         fmt.Sprintf("%+v\n-----\n%+v\n-----\nInfo: %v", first, last, fast),
			models.ChartField: models.NewOHLCChart(title, candles),
		})
	}
	return records, nil
}

type performanceChartTool struct{ *Toolkit }

func (t *performanceChartTool) Name() string { return "show_stock_performance" }

func (t *performanceChartTool) Description() string {
	return "Show the stock performance chart including the daily return, drawdown and cumulative returns."
}

func (t *performanceChartTool) Parameters() map[string]interface{} { return questionParams() }

func (t *performanceChartTool) Invoke(ctx context.Context, question string, _ map[string]interface{}) ([]models.Record, error) {
	tickers, err := t.resolver.TickersFromQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(tickers))
	for _, tk := range tickers {
		handle := t.provider.Get(ctx, tk.Symbol)
		candles, err := handle.History(ctx, marketdata.DefaultHistoryPeriod)
		if err != nil || len(candles) == 0 {
			t.logger.Warn("performance history unavailable", xlogger.String("symbol", tk.Symbol), xlogger.Error(err))
			continue
		}
		fast, err := handle.FastInfo(ctx)
		if err != nil {
			fast = map[string]interface{}{}
		}

		records = append(records, models.Record{
			"symbol":          tk.Symbol,
			"summary":         fmt.Sprintf("%v", fast),
			models.ChartField: analytics.Snapshot(tk.Symbol+" Performance", candles),
		})
	}
	return records, nil
}

type performanceStatsTool struct{ *Toolkit }

func (t *performanceStatsTool) Name() string { return "get_performance_stats" }

func (t *performanceStatsTool) Description() string {
	return "Return the performance of the stock, including cagr, sharpe, max_drawdown, sortino, avg_win, avg_loss, volatility, calmar, value_at_risk, cvar."
}

func (t *performanceStatsTool) Parameters() map[string]interface{} { return questionParams() }

func (t *performanceStatsTool) Invoke(ctx context.Context, question string, _ map[string]interface{}) ([]models.Record, error) {
	tickers, err := t.resolver.TickersFromQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(tickers))
	for _, tk := range tickers {
		returns, err := t.provider.Returns(ctx, tk.Symbol)
		if err != nil {
			t.logger.Warn("returns unavailable", xlogger.String("symbol", tk.Symbol), xlogger.Error(err))
			continue
		}
		stats := analytics.Compute(returns)
		records = append(records, models.Record{
			"symbol":        tk.Symbol,
			"cagr":          stats.CAGR,
			"sharpe":        stats.Sharpe,
			"max_drawdown":  stats.MaxDrawdown,
			"sortino":       stats.Sortino,
			"avg_win":       stats.AvgWin,
			"avg_loss":      stats.AvgLoss,
			"volatility":    stats.Volatility,
			"calmar":        stats.Calmar,
			"value_at_risk": stats.VaR95,
			"cvar":          stats.CVaR,
		})
	}
	return records, nil
}

// defaultQueryTool is the explicit "no applicable tool" signal. The oracle
// selects it when the question has no data angle; it never produces records.
type defaultQueryTool struct{}

func (t *defaultQueryTool) Name() string { return "return_default_query" }

func (t *defaultQueryTool) Description() string {
	return "Return an empty response if the question is not related to any specific topic."
}

func (t *defaultQueryTool) Parameters() map[string]interface{} { return questionParams() }

func (t *defaultQueryTool) Invoke(context.Context, string, map[string]interface{}) ([]models.Record, error) {
	return nil, nil
}

func dateLabel(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}

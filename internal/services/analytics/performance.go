// Package analytics computes performance statistics from daily return
// series.
package analytics

import (
	"math"
	"sort"

	"FinChat/internal/domain/models"
)

// TradingDaysPerYear is the annualization factor for daily series.
const TradingDaysPerYear = 252

// Stats is the full performance profile of one return series. Ratios that
// divide by zero come out as 0 rather than NaN so the values survive JSON
// encoding.
type Stats struct {
	CAGR        float64 `json:"cagr"`
	Volatility  float64 `json:"annual_volatility"`
	Sharpe      float64 `json:"sharpe_ratio"`
	Sortino     float64 `json:"sortino_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Calmar      float64 `json:"calmar_ratio"`
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`
	VaR95       float64 `json:"var_95"`
	CVaR        float64 `json:"cvar"`
}

// Compute derives the full stats profile from daily percentage returns.
func Compute(returns []float64) Stats {
	return Stats{
		CAGR:        CAGR(returns),
		Volatility:  Volatility(returns),
		Sharpe:      Sharpe(returns),
		Sortino:     Sortino(returns),
		MaxDrawdown: MaxDrawdown(returns),
		Calmar:      Calmar(returns),
		AvgWin:      AvgWin(returns),
		AvgLoss:     AvgLoss(returns),
		VaR95:       VaR95(returns),
		CVaR:        CVaR(returns),
	}
}

// CAGR annualizes the compound growth of the series.
func CAGR(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	if growth <= 0 {
		return -1
	}
	return math.Pow(growth, TradingDaysPerYear/float64(len(returns))) - 1
}

// Volatility is the annualized standard deviation of daily returns.
func Volatility(returns []float64) float64 {
	return stddev(returns) * math.Sqrt(TradingDaysPerYear)
}

// Sharpe is the annualized mean over volatility, with a zero risk-free rate.
func Sharpe(returns []float64) float64 {
	sd := stddev(returns)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(TradingDaysPerYear)
}

// Sortino is like Sharpe but penalizes only downside deviation.
func Sortino(returns []float64) float64 {
	downside := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	sd := stddev(downside)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(TradingDaysPerYear)
}

// MaxDrawdown is the deepest peak-to-trough loss of the cumulative wealth
// curve, as a negative fraction.
func MaxDrawdown(returns []float64) float64 {
	wealth := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		if dd := wealth/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}

// Calmar is CAGR over the magnitude of the max drawdown.
func Calmar(returns []float64) float64 {
	dd := MaxDrawdown(returns)
	if dd == 0 {
		return 0
	}
	return CAGR(returns) / math.Abs(dd)
}

// AvgWin is the mean of the positive daily returns.
func AvgWin(returns []float64) float64 {
	var wins []float64
	for _, r := range returns {
		if r > 0 {
			wins = append(wins, r)
		}
	}
	return mean(wins)
}

// AvgLoss is the mean of the negative daily returns.
func AvgLoss(returns []float64) float64 {
	var losses []float64
	for _, r := range returns {
		if r < 0 {
			losses = append(losses, r)
		}
	}
	return mean(losses)
}

// VaR95 is the 5th percentile of daily returns.
func VaR95(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	idx := int(math.Floor(0.05 * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// CVaR is the mean of the returns at or below the 95% VaR threshold.
func CVaR(returns []float64) float64 {
	threshold := VaR95(returns)
	var tail []float64
	for _, r := range returns {
		if r <= threshold {
			tail = append(tail, r)
		}
	}
	return mean(tail)
}

// Snapshot builds the performance chart for a candle series: cumulative
// return, drawdown, and daily return traces sharing the candle dates.
func Snapshot(title string, candles []models.Candle) *models.Chart {
	returns := dailyReturns(candles)
	if len(returns) == 0 {
		return models.NewLineChart(title)
	}

	dates := make([]int64, len(returns))
	cumulative := make([]float64, len(returns))
	drawdown := make([]float64, len(returns))

	wealth := 1.0
	peak := 1.0
	for i, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		dates[i] = candles[i+1].Date
		cumulative[i] = wealth - 1
		drawdown[i] = wealth/peak - 1
	}

	return models.NewLineChart(title,
		models.Trace{Type: "scatter", Name: "cumulative_returns", X: dates, Y: cumulative},
		models.Trace{Type: "scatter", Name: "drawdown", X: dates, Y: drawdown},
		models.Trace{Type: "scatter", Name: "daily_returns", X: dates, Y: returns},
	)
}

func dailyReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, candles[i].Close/prev-1)
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum2 := 0.0
	for _, v := range values {
		d := v - m
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(len(values)-1))
}

package backtest

import (
	"math"

	"github.com/Alias1177/insights/internal/model"
)

// Summarize condenses a simulation into its headline metrics
func Summarize(res *Result, capital float64) model.SimulationSummary {
	summary := model.SimulationSummary{InitialCapital: capital, FinalValue: capital}
	if res == nil {
		return summary
	}

	values := res.Values()
	if len(values) > 0 {
		summary.FinalValue = values[len(values)-1]
	}
	if capital > 0 {
		summary.TotalReturnPct = (summary.FinalValue - capital) / capital * 100
	}
	summary.MaxDrawdown = MaxDrawdown(values)
	summary.SharpeRatio = SharpeRatio(values)
	summary.TradeCount = len(res.Trades)
	return summary
}

// SharpeRatio annualizes the mean/stddev of bar-to-bar returns over 252 trading
// days with a zero risk-free rate. Flat curves give 0.
func SharpeRatio(values []float64) float64 {
	var returns []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			returns = append(returns, (values[i]-values[i-1])/values[i-1])
		}
	}
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)
	sd := stdDev(returns, m)
	if sd == 0 {
		return 0
	}
	return m / sd * math.Sqrt(252)
}

// RunLab runs the stop/target policy and compares it with buying and holding from
// the first close
func RunLab(bars []model.Bar, signals []model.Signal, capital, stopLossPct, takeProfitPct float64) (*model.LabResult, error) {
	res, err := Simulate(bars, signals, capital, StopTarget(stopLossPct, takeProfitPct))
	if err != nil {
		return nil, err
	}

	benchmarkShares := 0.0
	if len(bars) > 0 && bars[0].Close > 0 {
		benchmarkShares = capital / bars[0].Close
	}

	chart := make([]model.LabPoint, len(bars))
	benchmark := capital
	for i, bar := range bars {
		if benchmarkShares > 0 && model.IsFinite(bar.Close) {
			benchmark = benchmarkShares * bar.Close
		}
		chart[i] = model.LabPoint{Date: bar.Date, Strategy: res.Equity[i].Value, Benchmark: benchmark}
	}

	// the stop/target policy liquidates at the end, so everything is cash
	final := res.Cash

	return &model.LabResult{
		Metrics: model.LabMetrics{
			FinalValue:      final,
			BenchmarkFinal:  benchmark,
			TotalReturn:     (final - capital) / capital * 100,
			BenchmarkReturn: (benchmark - capital) / capital * 100,
			MaxDrawdown:     MaxDrawdown(res.Values()),
		},
		Trades: res.Trades,
		Chart:  chart,
	}, nil
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

func stdDev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

package calculate

import "github.com/Alias1177/insights/internal/model"

// MACDResult holds the MACD line, its signal line and the histogram between them
type MACDResult struct {
	Line      model.Series
	Signal    model.Series
	Histogram model.Series
}

// MACD calculates EMA(short) - EMA(long) and its EMA(signal).
// Values stay nil until both underlying EMAs exist.
func MACD(bars []model.Bar, short, long, signal int) MACDResult {
	n := len(bars)
	fast := EMACloses(bars, short)
	slow := EMACloses(bars, long)

	line := model.NewSeries(n)
	for i := 0; i < n; i++ {
		f, okF := fast.At(i)
		s, okS := slow.At(i)
		if okF && okS {
			line.Set(i, f-s)
		}
	}

	// EMA would carry the last value over a gap; the signal line must not
	// outlive the MACD line it is derived from.
	sig := EMA(line, signal)
	hist := model.NewSeries(n)
	for i := 0; i < n; i++ {
		l, ok := line.At(i)
		if !ok {
			sig[i] = nil
			continue
		}
		if s, ok := sig.At(i); ok {
			hist.Set(i, l-s)
		}
	}

	return MACDResult{Line: line, Signal: sig, Histogram: hist}
}

package calculate

import "github.com/Alias1177/insights/internal/model"

// RSI calculates Wilder's Relative Strength Index.
// The first window changes are summed and averaged at index window; later bars
// smooth with avg = (avg*(window-1) + current) / window. A zero average loss
// gives exactly 100.
func RSI(bars []model.Bar, window int) model.Series {
	out := model.NewSeries(len(bars))
	if window <= 0 || len(bars) <= window {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i < len(bars); i++ {
		gain, loss := closeChange(bars[i-1], bars[i])

		if i <= window {
			avgGain += gain
			avgLoss += loss
			if i < window {
				continue
			}
			avgGain /= float64(window)
			avgLoss /= float64(window)
		} else {
			avgGain = (avgGain*float64(window-1) + gain) / float64(window)
			avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
		}

		out.Set(i, rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	rsi := 100 - 100/(1+rs)
	return clamp(rsi, 0, 100)
}

// closeChange splits the close-to-close move into gain and loss.
// A non-finite close counts as no change.
func closeChange(prev, cur model.Bar) (gain, loss float64) {
	if !model.IsFinite(prev.Close) || !model.IsFinite(cur.Close) {
		return 0, 0
	}
	change := cur.Close - prev.Close
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

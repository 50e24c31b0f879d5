package calculate

import "github.com/Alias1177/insights/internal/model"

// StochasticResult holds %K and its moving average %D
type StochasticResult struct {
	K model.Series
	D model.Series
}

// Stochastic calculates %K = (close - lowest low) / (highest high - lowest low) * 100
// over kWindow bars and %D = SMA(%K, dWindow). A flat window gives %K = 0.
func Stochastic(bars []model.Bar, kWindow, dWindow int) StochasticResult {
	k := model.NewSeries(len(bars))
	if kWindow > 0 {
		for i := kWindow - 1; i < len(bars); i++ {
			highest, lowest, ok := highLow(bars[i-kWindow+1 : i+1])
			if !ok || !model.IsFinite(bars[i].Close) {
				continue
			}
			rng := highest - lowest
			if rng == 0 {
				k.Set(i, 0)
				continue
			}
			k.Set(i, clamp((bars[i].Close-lowest)/rng*100, 0, 100))
		}
	}

	return StochasticResult{K: k, D: SMAOf(k, dWindow)}
}

// highLow returns the highest high and lowest low of the window
func highLow(window []model.Bar) (highest, lowest float64, ok bool) {
	if len(window) == 0 {
		return 0, 0, false
	}
	for i, b := range window {
		if !model.IsFinite(b.High) || !model.IsFinite(b.Low) {
			return 0, 0, false
		}
		if i == 0 || b.High > highest {
			highest = b.High
		}
		if i == 0 || b.Low < lowest {
			lowest = b.Low
		}
	}
	return highest, lowest, true
}

package calculate

import "github.com/Alias1177/insights/internal/model"

// SMA calculates the simple moving average of closes over window bars.
// The first value appears at index window-1.
func SMA(bars []model.Bar, window int) model.Series {
	return SMAOf(closeSeries(bars), window)
}

// SMAOf averages a series over a trailing window. A window that still contains
// a nil value yields nil.
func SMAOf(values model.Series, window int) model.Series {
	out := model.NewSeries(len(values))
	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		var sum float64
		complete := true
		for j := i - window + 1; j <= i; j++ {
			if values[j] == nil {
				complete = false
				break
			}
			sum += *values[j]
		}
		if complete {
			out.Set(i, sum/float64(window))
		}
	}
	return out
}

// EMA applies exponential smoothing with multiplier 2/(period+1).
// The first non-nil input seeds the average as-is (no SMA warm-up), and a nil
// input repeats the last computed value instead of producing nil.
func EMA(values model.Series, period int) model.Series {
	out := model.NewSeries(len(values))
	if period <= 0 {
		return out
	}

	multiplier := 2.0 / float64(period+1)
	var prev *float64
	for i, v := range values {
		if v == nil {
			if prev != nil {
				out.Set(i, *prev)
			}
			continue
		}
		next := *v
		if prev != nil {
			next = (*v-*prev)*multiplier + *prev
		}
		out.Set(i, next)
		if out[i] != nil {
			prev = out[i]
		}
	}
	return out
}

// EMACloses is EMA over the close prices
func EMACloses(bars []model.Bar, period int) model.Series {
	return EMA(closeSeries(bars), period)
}

func closeSeries(bars []model.Bar) model.Series {
	s := model.NewSeries(len(bars))
	for i, b := range bars {
		s.Set(i, b.Close)
	}
	return s
}

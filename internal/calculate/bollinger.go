package calculate

import (
	"math"

	"github.com/Alias1177/insights/internal/model"
)

// Bands are Bollinger Bands aligned with the input bars
type Bands struct {
	Upper  model.Series
	Middle model.Series
	Lower  model.Series
}

// BollingerBands calculates middle = SMA(window) and upper/lower = middle ± k·σ,
// where σ is the population standard deviation of the window's closes.
func BollingerBands(bars []model.Bar, window int, k float64) Bands {
	n := len(bars)
	bands := Bands{
		Upper:  model.NewSeries(n),
		Middle: SMA(bars, window),
		Lower:  model.NewSeries(n),
	}
	if window <= 0 {
		return bands
	}

	for i := window - 1; i < n; i++ {
		middle, ok := bands.Middle.At(i)
		if !ok {
			continue
		}
		var variance float64
		for j := i - window + 1; j <= i; j++ {
			diff := bars[j].Close - middle
			variance += diff * diff
		}
		sd := math.Sqrt(variance / float64(window))

		bands.Upper.Set(i, middle+k*sd)
		bands.Lower.Set(i, middle-k*sd)
	}
	return bands
}

// Bandwidth calculates (upper-lower)/middle*100, nil where any band is missing
// or the middle band is zero
func Bandwidth(b Bands) model.Series {
	out := model.NewSeries(len(b.Middle))
	for i := range b.Middle {
		upper, okU := b.Upper.At(i)
		middle, okM := b.Middle.At(i)
		lower, okL := b.Lower.At(i)
		if !okU || !okM || !okL || middle == 0 {
			continue
		}
		out.Set(i, (upper-lower)/middle*100)
	}
	return out
}

package calculate

import "github.com/Alias1177/insights/internal/model"

// VWAP calculates the running volume-weighted average of the typical price
// (high+low+close)/3 from the first supplied bar. Bars without volume leave the
// value where it was: nil before any volume has been seen, the last ratio after.
func VWAP(bars []model.Bar) model.Series {
	out := model.NewSeries(len(bars))

	var cumPV, cumVolume float64
	for i, b := range bars {
		volume := b.VolumeOf()
		typical := (b.High + b.Low + b.Close) / 3
		if volume > 0 && model.IsFinite(typical) {
			cumPV += typical * volume
			cumVolume += volume
		}
		if cumVolume > 0 {
			out.Set(i, cumPV/cumVolume)
		}
	}
	return out
}

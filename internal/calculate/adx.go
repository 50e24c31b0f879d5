package calculate

import (
	"math"

	"github.com/Alias1177/insights/internal/model"
)

// ADXResult holds the Average Directional Index and its directional indicators
type ADXResult struct {
	ADX     model.Series
	PlusDI  model.Series
	MinusDI model.Series
}

// ADX calculates the Average Directional Index.
// True range and ±DM come from each bar against the previous one and are smoothed
// with EMA(period); ±DI = smoothed DM / smoothed TR * 100 and ADX = EMA(DX, period).
// Zero denominators are replaced by 1.
func ADX(bars []model.Bar, period int) ADXResult {
	n := len(bars)
	tr := model.NewSeries(n)
	plusDM := model.NewSeries(n)
	minusDM := model.NewSeries(n)

	for i := 1; i < n; i++ {
		cur, prev := bars[i], bars[i-1]
		if !finiteHLC(cur) || !finiteHLC(prev) {
			continue
		}

		highLow := cur.High - cur.Low
		highPrevClose := math.Abs(cur.High - prev.Close)
		lowPrevClose := math.Abs(cur.Low - prev.Close)
		tr.Set(i, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))

		upMove := cur.High - prev.High
		downMove := prev.Low - cur.Low
		pDM, mDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			pDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			mDM = downMove
		}
		plusDM.Set(i, pDM)
		minusDM.Set(i, mDM)
	}

	smoothTR := EMA(tr, period)
	smoothPlus := EMA(plusDM, period)
	smoothMinus := EMA(minusDM, period)

	plusDI := model.NewSeries(n)
	minusDI := model.NewSeries(n)
	dx := model.NewSeries(n)
	for i := 0; i < n; i++ {
		t, okT := smoothTR.At(i)
		p, okP := smoothPlus.At(i)
		m, okM := smoothMinus.At(i)
		if !okT || !okP || !okM {
			continue
		}
		t = nonZero(t)
		pdi := p / t * 100
		mdi := m / t * 100
		plusDI.Set(i, pdi)
		minusDI.Set(i, mdi)
		dx.Set(i, math.Abs(pdi-mdi)/nonZero(pdi+mdi)*100)
	}

	return ADXResult{
		ADX:     EMA(dx, period),
		PlusDI:  plusDI,
		MinusDI: minusDI,
	}
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func finiteHLC(b model.Bar) bool {
	return model.IsFinite(b.High) && model.IsFinite(b.Low) && model.IsFinite(b.Close)
}

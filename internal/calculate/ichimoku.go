package calculate

import "github.com/Alias1177/insights/internal/model"

// Ichimoku periods
const (
	IchimokuConversionPeriod = 9
	IchimokuBasePeriod       = 26
	IchimokuSpanBPeriod      = 52
	IchimokuDisplacement     = 26
)

// IchimokuResult holds the Ichimoku lines.
//
// Conversion and Base are aligned with the bars like every other series. The
// spans are not: LeadingSpanA/B computed on bar i are tagged OffsetIndex
// i+26 and the Lagging span (close of bar i) is tagged i-26, so consumers
// must place them by OffsetIndex rather than by position.
type IchimokuResult struct {
	Conversion   model.Series
	Base         model.Series
	LeadingSpanA []model.OffsetPoint
	LeadingSpanB []model.OffsetPoint
	Lagging      []model.OffsetPoint
}

// Ichimoku calculates the Ichimoku cloud lines with the standard 9/26/52 periods
func Ichimoku(bars []model.Bar) IchimokuResult {
	res := IchimokuResult{
		Conversion:   midpointSeries(bars, IchimokuConversionPeriod),
		Base:         midpointSeries(bars, IchimokuBasePeriod),
		LeadingSpanA: []model.OffsetPoint{},
		LeadingSpanB: []model.OffsetPoint{},
		Lagging:      []model.OffsetPoint{},
	}
	spanB := midpointSeries(bars, IchimokuSpanBPeriod)

	for i := range bars {
		conv, okC := res.Conversion.At(i)
		base, okB := res.Base.At(i)
		if okC && okB {
			res.LeadingSpanA = append(res.LeadingSpanA, model.OffsetPoint{
				OffsetIndex: i + IchimokuDisplacement,
				Value:       (conv + base) / 2,
			})
		}
		if v, ok := spanB.At(i); ok {
			res.LeadingSpanB = append(res.LeadingSpanB, model.OffsetPoint{
				OffsetIndex: i + IchimokuDisplacement,
				Value:       v,
			})
		}
		if i >= IchimokuDisplacement && model.IsFinite(bars[i].Close) {
			res.Lagging = append(res.Lagging, model.OffsetPoint{
				OffsetIndex: i - IchimokuDisplacement,
				Value:       bars[i].Close,
			})
		}
	}
	return res
}

// midpointSeries is (highest high + lowest low) / 2 over a trailing window
func midpointSeries(bars []model.Bar, period int) model.Series {
	out := model.NewSeries(len(bars))
	for i := period - 1; i < len(bars); i++ {
		if highest, lowest, ok := highLow(bars[i-period+1 : i+1]); ok {
			out.Set(i, (highest+lowest)/2)
		}
	}
	return out
}

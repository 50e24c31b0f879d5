package analyze

import "github.com/Alias1177/insights/internal/model"

// Summarize counts signals by direction and by label
func Summarize(signals []model.Signal) model.SignalSummary {
	summary := model.SignalSummary{ByLabel: make(map[model.Label]int)}
	for _, s := range signals {
		summary.ByLabel[s.Label]++
		switch {
		case s.Label.IsBuy():
			summary.Buy++
		case s.Label.IsSell():
			summary.Sell++
		default:
			summary.Hold++
		}
	}
	return summary
}

// Momentum returns the last one-bar close change, or nil with fewer than two bars
func Momentum(bars []model.Bar) *model.Momentum {
	if len(bars) < 2 {
		return nil
	}
	prev := bars[len(bars)-2].Close
	last := bars[len(bars)-1].Close
	if !model.IsFinite(prev) || !model.IsFinite(last) {
		return nil
	}

	m := &model.Momentum{Change: last - prev}
	if prev != 0 {
		m.ChangePercent = m.Change / prev * 100
	}
	return m
}

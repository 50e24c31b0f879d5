package insights

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/Alias1177/insights/internal/model"
)

// SyntheticHistory generates a deterministic random walk for symbol ending on the
// day of end. The same symbol, range, interval and end date always yield the
// same bars. Weekends are skipped for daily bars.
func SyntheticHistory(symbol, rng, interval string, end time.Time) []model.Bar {
	days, ok := model.RangeDays(rng)
	if !ok {
		return nil
	}

	seed := symbolSeed(symbol)
	r := rand.New(rand.NewSource(seed))

	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -days)

	var dates []time.Time
	for d := start; !d.After(end); d = step(d, interval) {
		if interval == "1d" && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		dates = append(dates, d)
	}

	price := 20 + float64(seed%480)
	bars := make([]model.Bar, 0, len(dates))
	for _, d := range dates {
		open := price
		change := r.NormFloat64()*0.018 + 0.0004
		closePrice := math.Max(0.01, open*(1+change))
		high := math.Max(open, closePrice) * (1 + r.Float64()*0.01)
		low := math.Min(open, closePrice) * (1 - r.Float64()*0.01)
		volume := math.Round(500_000 + r.Float64()*4_500_000)

		bars = append(bars, model.Bar{
			Date:   d,
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(closePrice),
			Volume: &volume,
		})
		price = closePrice
	}
	return bars
}

// SynthesizeQuote derives a quote from the last bars of a series. It returns nil for an empty series.
func SynthesizeQuote(symbol string, bars []model.Bar) *model.Quote {
	if len(bars) == 0 {
		return nil
	}
	last := bars[len(bars)-1]
	prev := last.Close
	if len(bars) > 1 {
		prev = bars[len(bars)-2].Close
	}

	q := &model.Quote{
		Symbol:        symbol,
		Price:         last.Close,
		PreviousClose: prev,
		Change:        last.Close - prev,
		Synthetic:     true,
	}
	if prev != 0 {
		q.ChangePercent = (last.Close - prev) / prev * 100
	}

	window := bars
	if len(window) > 10 {
		window = window[len(window)-10:]
	}
	var total float64
	for _, b := range window {
		total += b.VolumeOf()
	}
	q.AverageVolume = total / float64(len(window))
	return q
}

func symbolSeed(symbol string) int64 {
	var seed int64
	for _, c := range strings.ToUpper(symbol) {
		seed = seed*31 + int64(c)
		seed %= 1 << 40
	}
	if seed < 0 {
		seed = -seed
	}
	return seed
}

func step(d time.Time, interval string) time.Time {
	switch interval {
	case "1wk":
		return d.AddDate(0, 0, 7)
	case "1mo":
		return d.AddDate(0, 1, 0)
	default:
		return d.AddDate(0, 0, 1)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

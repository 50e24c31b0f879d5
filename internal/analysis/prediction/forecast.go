package prediction

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Alias1177/insights/internal/model"
)

// ErrUnknownModel is returned by ParseModel for names other than simple, arima and prophet
var ErrUnknownModel = errors.New("unknown forecast model")

// prophetSmoothing is the trailing window the prophet heuristic fits against
const prophetSmoothing = 7

// Target multipliers applied to the last forecast value
const (
	optimisticFactor   = 1.08
	conservativeFactor = 0.92
)

// ParseModel maps a case-insensitive name onto a forecast model
func ParseModel(name string) (model.ForecastModel, error) {
	m := model.ForecastModel(strings.ToLower(strings.TrimSpace(name)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

// PredictFuturePrices projects days closes past the last bar, one calendar day apart
// (weekends included). Empty input or an unknown model gives an empty forecast.
//
//   - simple: last finite close plus (last-first)/count of finite closes per day
//   - arima: least-squares line of close against bar index, extended
//   - prophet: the same line fitted to a 7-bar trailing average of closes
func PredictFuturePrices(bars []model.Bar, m model.ForecastModel, days int) []model.ForecastPoint {
	forecast := []model.ForecastPoint{}
	if len(bars) == 0 || days <= 0 {
		return forecast
	}

	var project func(step int) float64
	closes := model.Closes(bars)
	n := len(closes)

	switch m {
	case model.ForecastSimple:
		first, last, count := finiteEnds(closes)
		if count == 0 {
			return forecast
		}
		trend := (last - first) / float64(count)
		project = func(step int) float64 { return last + trend*float64(step) }
	case model.ForecastARIMA:
		slope, intercept := linearRegression(closes)
		project = func(step int) float64 { return intercept + slope*float64(n-1+step) }
	case model.ForecastProphet:
		slope, intercept := linearRegression(trailingMean(closes, prophetSmoothing))
		project = func(step int) float64 { return intercept + slope*float64(n-1+step) }
	default:
		return forecast
	}

	lastDate := bars[n-1].Date
	for i := 1; i <= days; i++ {
		v := project(i)
		if !model.IsFinite(v) {
			continue
		}
		forecast = append(forecast, model.ForecastPoint{
			Date:  lastDate.AddDate(0, 0, i),
			Value: v,
		})
	}
	return forecast
}

// Targets derives price targets from the last forecast value, nil for an empty forecast
func Targets(forecast []model.ForecastPoint) *model.PriceTargets {
	if len(forecast) == 0 {
		return nil
	}
	base := forecast[len(forecast)-1].Value
	return &model.PriceTargets{
		Base:         base,
		Optimistic:   math.Max(0, base*optimisticFactor),
		Conservative: math.Max(0, base*conservativeFactor),
	}
}

// finiteEnds returns the first and last finite values and how many finite values exist
func finiteEnds(values []float64) (first, last float64, count int) {
	for _, v := range values {
		if !model.IsFinite(v) {
			continue
		}
		if count == 0 {
			first = v
		}
		last = v
		count++
	}
	return first, last, count
}

// linearRegression fits y = intercept + slope*x over x = 0..len-1, skipping
// non-finite points. Fewer than two points give a flat line through their mean.
func linearRegression(values []float64) (slope, intercept float64) {
	var sumX, sumY, sumXY, sumXX, count float64
	for i, y := range values {
		if !model.IsFinite(y) {
			continue
		}
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		count++
	}
	if count == 0 {
		return 0, 0
	}

	denominator := count*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, sumY / count
	}
	slope = (count*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / count
	return slope, intercept
}

// trailingMean averages each value with up to window-1 predecessors; the first
// bars use however many values exist
func trailingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum, count float64
		for _, v := range values[start : i+1] {
			if model.IsFinite(v) {
				sum += v
				count++
			}
		}
		out[i] = math.NaN()
		if count > 0 {
			out[i] = sum / count
		}
	}
	return out
}

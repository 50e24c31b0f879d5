package analyze

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alias1177/insights/internal/calculate"
	"github.com/Alias1177/insights/internal/model"
)

// ErrUnknownIndicator is returned when the requested indicator has no strategy
var ErrUnknownIndicator = errors.New("unknown indicator")

// Classify generates one signal per bar for the selected indicator
func Classify(indicator model.Indicator, bars []model.Bar, set *calculate.Set) ([]model.Signal, error) {
	if set == nil {
		set = calculate.CalculateAll(bars, calculate.DefaultParams())
	}

	switch indicator {
	case model.IndicatorSMA:
		return SMASignals(bars, set.SMA), nil
	case model.IndicatorRSI:
		return RSISignals(bars, set.RSI), nil
	case model.IndicatorMACD:
		return MACDSignals(bars, set.MACD), nil
	case model.IndicatorBollinger:
		return BollingerSignals(bars, set.Bollinger), nil
	case model.IndicatorStochastic:
		return StochasticSignals(bars, set.Stochastic), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, indicator)
	}
}

// SMASignals emits a sell when the SMA crosses from below the close to at or
// above it, and a buy when it crosses from at or above the close to below it.
// Severity is the SMA/close gap as a fraction of close.
func SMASignals(bars []model.Bar, sma model.Series) []model.Signal {
	signals := holdSignals(len(bars))
	for i := 1; i < len(bars); i++ {
		prev, okP := sma.At(i - 1)
		cur, okC := sma.At(i)
		if !okP || !okC || bars[i].Close == 0 {
			continue
		}
		prevClose, close := bars[i-1].Close, bars[i].Close

		gap := math.Abs(cur-close) / close
		switch {
		case prev < prevClose && cur >= close:
			signals[i] = model.SellSignal(grade(gap, 0.02, 0.005))
		case prev >= prevClose && cur < close:
			signals[i] = model.BuySignal(grade(gap, 0.02, 0.005))
		}
	}
	return signals
}

// RSISignals emits a buy below 30 and a sell above 70, graded by distance past the threshold
func RSISignals(bars []model.Bar, rsi model.Series) []model.Signal {
	signals := holdSignals(len(bars))
	for i := range bars {
		v, ok := rsi.At(i)
		if !ok {
			continue
		}
		switch {
		case v < 30:
			signals[i] = model.BuySignal(grade(30-v, 10, 5))
		case v > 70:
			signals[i] = model.SellSignal(grade(v-70, 10, 5))
		}
	}
	return signals
}

// MACDSignals emits signals on MACD/signal line crossovers, graded by their divergence
func MACDSignals(bars []model.Bar, macd calculate.MACDResult) []model.Signal {
	signals := holdSignals(len(bars))
	for i := 1; i < len(bars); i++ {
		prevLine, ok1 := macd.Line.At(i - 1)
		prevSig, ok2 := macd.Signal.At(i - 1)
		line, ok3 := macd.Line.At(i)
		sig, ok4 := macd.Signal.At(i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}

		divergence := math.Abs(line - sig)
		switch {
		case prevLine <= prevSig && line > sig:
			signals[i] = model.BuySignal(grade(divergence, 0.5, 0.1))
		case prevLine >= prevSig && line < sig:
			signals[i] = model.SellSignal(grade(divergence, 0.5, 0.1))
		}
	}
	return signals
}

// BollingerSignals emits a buy below the lower band and a sell above the upper band
func BollingerSignals(bars []model.Bar, bands calculate.Bands) []model.Signal {
	signals := holdSignals(len(bars))
	for i, b := range bars {
		upper, okU := bands.Upper.At(i)
		lower, okL := bands.Lower.At(i)
		if !okU || !okL || b.Close == 0 {
			continue
		}
		switch {
		case b.Close < lower:
			signals[i] = model.BuySignal(grade((lower-b.Close)/b.Close, 0.01, 0.002))
		case b.Close > upper:
			signals[i] = model.SellSignal(grade((b.Close-upper)/b.Close, 0.01, 0.002))
		}
	}
	return signals
}

// StochasticSignals emits a buy on a bullish %K/%D crossover below 20 and a sell
// on a bearish crossover above 80
func StochasticSignals(bars []model.Bar, stoch calculate.StochasticResult) []model.Signal {
	signals := holdSignals(len(bars))
	for i := 1; i < len(bars); i++ {
		prevK, ok1 := stoch.K.At(i - 1)
		prevD, ok2 := stoch.D.At(i - 1)
		k, ok3 := stoch.K.At(i)
		d, ok4 := stoch.D.At(i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}

		switch {
		case prevK <= prevD && k > d && k < 20:
			signals[i] = model.BuySignal(grade(20-k, 10, 5))
		case prevK >= prevD && k < d && k > 80:
			signals[i] = model.SellSignal(grade(k-80, 10, 5))
		}
	}
	return signals
}

// grade maps a deviation onto strong/medium/weak
func grade(v, strong, medium float64) string {
	if v > strong {
		return model.SeverityStrong
	}
	if v > medium {
		return model.SeverityMedium
	}
	return model.SeverityWeak
}

func holdSignals(n int) []model.Signal {
	signals := make([]model.Signal, n)
	for i := range signals {
		signals[i] = model.HoldSignal()
	}
	return signals
}

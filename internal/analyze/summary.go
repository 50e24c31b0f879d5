package analyze

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/insights/internal/model"
)

// SummaryInput carries everything the technical summary is built from
type SummaryInput struct {
	Symbol   string
	Close    float64
	Snapshot model.IndicatorSnapshot
	Signals  model.SignalSummary
	Targets  *model.PriceTargets
}

// TechnicalSummary renders a short rule-based description of the latest indicator
// state. Indicators without a value are left out.
func TechnicalSummary(in SummaryInput) string {
	var factors []string
	s := in.Snapshot

	if s.RSI != nil {
		rsi := *s.RSI
		switch {
		case rsi > 70:
			factors = append(factors, fmt.Sprintf("RSI at %.1f signals overbought conditions.", rsi))
		case rsi < 30:
			factors = append(factors, fmt.Sprintf("RSI at %.1f signals oversold conditions.", rsi))
		default:
			factors = append(factors, fmt.Sprintf("RSI at %.1f is neutral.", rsi))
		}
	}

	if s.MACD != nil && s.MACDSignal != nil {
		divergence := *s.MACD - *s.MACDSignal
		switch {
		case divergence > 0:
			factors = append(factors, fmt.Sprintf("MACD is %.2f above its signal line, a bullish divergence.", divergence))
		case divergence < 0:
			factors = append(factors, fmt.Sprintf("MACD is %.2f below its signal line, a bearish divergence.", -divergence))
		default:
			factors = append(factors, "MACD is flat against its signal line.")
		}
	}

	if s.ADX != nil {
		adx := *s.ADX
		if adx > 25 {
			direction := "upward"
			if s.PlusDI != nil && s.MinusDI != nil && *s.MinusDI > *s.PlusDI {
				direction = "downward"
			}
			factors = append(factors, fmt.Sprintf("ADX at %.1f shows a strong %s trend.", adx, direction))
		} else {
			factors = append(factors, fmt.Sprintf("ADX at %.1f shows a weak or absent trend.", adx))
		}
	}

	if s.BBUpper != nil && s.BBLower != nil {
		switch {
		case in.Close > *s.BBUpper:
			factors = append(factors, fmt.Sprintf("Price %s is above the upper Bollinger Band.", price(in.Close)))
		case in.Close < *s.BBLower:
			factors = append(factors, fmt.Sprintf("Price %s is below the lower Bollinger Band.", price(in.Close)))
		default:
			factors = append(factors, fmt.Sprintf("Price %s is trading inside the Bollinger Bands (%s to %s).",
				price(in.Close), price(*s.BBLower), price(*s.BBUpper)))
		}
	}

	switch net := in.Signals.Buy - in.Signals.Sell; {
	case net > 0:
		factors = append(factors, fmt.Sprintf("Signals lean bullish with %d buy versus %d sell.", in.Signals.Buy, in.Signals.Sell))
	case net < 0:
		factors = append(factors, fmt.Sprintf("Signals lean bearish with %d sell versus %d buy.", in.Signals.Sell, in.Signals.Buy))
	default:
		factors = append(factors, "Signals are balanced.")
	}

	if in.Targets != nil {
		factors = append(factors, fmt.Sprintf("Forecast base target %s (optimistic %s, conservative %s).",
			price(in.Targets.Base), price(in.Targets.Optimistic), price(in.Targets.Conservative)))
	}

	header := "Technical outlook"
	if in.Symbol != "" {
		header = in.Symbol + " technical outlook"
	}
	return header + ": " + strings.Join(factors, " ")
}

func price(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

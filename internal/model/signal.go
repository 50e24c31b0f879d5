package model

import "strings"

// Label is the graded trade signal emitted for one bar
type Label string

const (
	Hold       Label = "hold"
	BuyWeak    Label = "buy_weak"
	BuyMedium  Label = "buy_medium"
	BuyStrong  Label = "buy_strong"
	SellWeak   Label = "sell_weak"
	SellMedium Label = "sell_medium"
	SellStrong Label = "sell_strong"
)

// Severity grades for a buy or sell label
const (
	SeverityWeak   = "weak"
	SeverityMedium = "medium"
	SeverityStrong = "strong"
)

// Signal is the classifier output for one bar
type Signal struct {
	Label   Label `json:"signal"`
	Numeric int   `json:"numericSignal"` // -1 sell, 0 hold, 1 buy
}

// HoldSignal is the neutral default
func HoldSignal() Signal {
	return Signal{Label: Hold}
}

// BuySignal builds a buy label with the given severity
func BuySignal(severity string) Signal {
	return Signal{Label: Label("buy_" + severity), Numeric: 1}
}

// SellSignal builds a sell label with the given severity
func SellSignal(severity string) Signal {
	return Signal{Label: Label("sell_" + severity), Numeric: -1}
}

// IsBuy reports whether the label is any buy grade
func (l Label) IsBuy() bool { return strings.HasPrefix(string(l), "buy") }

// IsSell reports whether the label is any sell grade
func (l Label) IsSell() bool { return strings.HasPrefix(string(l), "sell") }

// Severity returns weak/medium/strong, or "" for hold and ungraded labels
func (l Label) Severity() string {
	s := string(l)
	if i := strings.IndexByte(s, '_'); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// Indicator selects which indicator drives the signal stream
type Indicator string

const (
	IndicatorSMA        Indicator = "sma"
	IndicatorRSI        Indicator = "rsi"
	IndicatorMACD       Indicator = "macd"
	IndicatorBollinger  Indicator = "bollinger"
	IndicatorStochastic Indicator = "stochastic"
)

// Indicators lists every selectable indicator
var Indicators = []Indicator{IndicatorSMA, IndicatorRSI, IndicatorMACD, IndicatorBollinger, IndicatorStochastic}

// Valid reports whether the indicator is one the classifier knows
func (i Indicator) Valid() bool {
	for _, known := range Indicators {
		if i == known {
			return true
		}
	}
	return false
}

// SignalSummary counts signals by direction and label
type SignalSummary struct {
	Buy     int           `json:"buy"`
	Sell    int           `json:"sell"`
	Hold    int           `json:"hold"`
	ByLabel map[Label]int `json:"byLabel"`
}

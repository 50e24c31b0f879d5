package calculate

import "github.com/Alias1177/insights/internal/model"

// Default indicator windows
const (
	DefaultSMAWindow       = 20
	DefaultRSIWindow       = 14
	DefaultMACDShort       = 12
	DefaultMACDLong        = 26
	DefaultMACDSignal      = 9
	DefaultBollingerWindow = 20
	DefaultBollingerK      = 2.0
	DefaultStochasticK     = 14
	DefaultStochasticD     = 3
	DefaultADXPeriod       = 14
)

// Params holds the window parameters for CalculateAll
type Params struct {
	SMAWindow       int
	RSIWindow       int
	MACDShort       int
	MACDLong        int
	MACDSignal      int
	BollingerWindow int
	BollingerK      float64
	StochasticK     int
	StochasticD     int
	ADXPeriod       int
}

// DefaultParams returns the documented default windows
func DefaultParams() Params {
	return Params{
		SMAWindow:       DefaultSMAWindow,
		RSIWindow:       DefaultRSIWindow,
		MACDShort:       DefaultMACDShort,
		MACDLong:        DefaultMACDLong,
		MACDSignal:      DefaultMACDSignal,
		BollingerWindow: DefaultBollingerWindow,
		BollingerK:      DefaultBollingerK,
		StochasticK:     DefaultStochasticK,
		StochasticD:     DefaultStochasticD,
		ADXPeriod:       DefaultADXPeriod,
	}
}

// Set bundles every indicator series computed over one bar sequence
type Set struct {
	SMA        model.Series
	EMAShort   model.Series
	EMALong    model.Series
	RSI        model.Series
	MACD       MACDResult
	Bollinger  Bands
	Bandwidth  model.Series
	Stochastic StochasticResult
	VWAP       model.Series
	ADX        ADXResult
	Ichimoku   IchimokuResult
}

// CalculateAll calculates all technical indicators over bars
func CalculateAll(bars []model.Bar, p Params) *Set {
	bands := BollingerBands(bars, p.BollingerWindow, p.BollingerK)

	return &Set{
		SMA:        SMA(bars, p.SMAWindow),
		EMAShort:   EMACloses(bars, p.MACDShort),
		EMALong:    EMACloses(bars, p.MACDLong),
		RSI:        RSI(bars, p.RSIWindow),
		MACD:       MACD(bars, p.MACDShort, p.MACDLong, p.MACDSignal),
		Bollinger:  bands,
		Bandwidth:  Bandwidth(bands),
		Stochastic: Stochastic(bars, p.StochasticK, p.StochasticD),
		VWAP:       VWAP(bars),
		ADX:        ADX(bars, p.ADXPeriod),
		Ichimoku:   Ichimoku(bars),
	}
}

// Snapshot takes the latest value of every indicator.
// Leading spans report the value computed on the last bar (tagged +26).
func (s *Set) Snapshot() model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		SMA:              s.SMA.Last(),
		EMAShort:         s.EMAShort.Last(),
		EMALong:          s.EMALong.Last(),
		RSI:              s.RSI.Last(),
		MACD:             s.MACD.Line.Last(),
		MACDSignal:       s.MACD.Signal.Last(),
		MACDHist:         s.MACD.Histogram.Last(),
		BBUpper:          s.Bollinger.Upper.Last(),
		BBMiddle:         s.Bollinger.Middle.Last(),
		BBLower:          s.Bollinger.Lower.Last(),
		BBBandwidth:      s.Bandwidth.Last(),
		Stochastic:       s.Stochastic.K.Last(),
		StochasticSignal: s.Stochastic.D.Last(),
		VWAP:             s.VWAP.Last(),
		ADX:              s.ADX.ADX.Last(),
		PlusDI:           s.ADX.PlusDI.Last(),
		MinusDI:          s.ADX.MinusDI.Last(),
		IchimokuConv:     s.Ichimoku.Conversion.Last(),
		IchimokuBase:     s.Ichimoku.Base.Last(),
		IchimokuSpanA:    lastOffset(s.Ichimoku.LeadingSpanA, len(s.SMA)-1+IchimokuDisplacement),
		IchimokuSpanB:    lastOffset(s.Ichimoku.LeadingSpanB, len(s.SMA)-1+IchimokuDisplacement),
	}
}

func lastOffset(points []model.OffsetPoint, offset int) *float64 {
	if len(points) == 0 {
		return nil
	}
	last := points[len(points)-1]
	if last.OffsetIndex != offset {
		return nil
	}
	return model.Float(last.Value)
}

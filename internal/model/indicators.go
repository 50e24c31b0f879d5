package model

// IndicatorSnapshot holds the latest value of every indicator; nil means not enough history
type IndicatorSnapshot struct {
	SMA              *float64 `json:"sma"`
	EMAShort         *float64 `json:"ema12"`
	EMALong          *float64 `json:"ema26"`
	RSI              *float64 `json:"rsi"`
	MACD             *float64 `json:"macd"`
	MACDSignal       *float64 `json:"macd_signal"`
	MACDHist         *float64 `json:"macd_hist"`
	BBUpper          *float64 `json:"bb_upper"`
	BBMiddle         *float64 `json:"bb_middle"`
	BBLower          *float64 `json:"bb_lower"`
	BBBandwidth      *float64 `json:"bb_bandwidth"`
	Stochastic       *float64 `json:"stochastic"`
	StochasticSignal *float64 `json:"stochastic_signal"`
	VWAP             *float64 `json:"vwap"`
	ADX              *float64 `json:"adx"`
	PlusDI           *float64 `json:"plus_di"`
	MinusDI          *float64 `json:"minus_di"`
	IchimokuConv     *float64 `json:"ichimoku_conversion"`
	IchimokuBase     *float64 `json:"ichimoku_base"`
	IchimokuSpanA    *float64 `json:"ichimoku_span_a"`
	IchimokuSpanB    *float64 `json:"ichimoku_span_b"`
}

// Momentum is the one-bar change of the close
type Momentum struct {
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

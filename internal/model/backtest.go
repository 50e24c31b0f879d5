package model

import "time"

// TradeType names a simulated position transition
type TradeType string

const (
	TradeBuy       TradeType = "BUY"
	TradeSell      TradeType = "SELL"
	TradeStop      TradeType = "STOP"
	TradeTarget    TradeType = "TARGET"
	TradeLiquidate TradeType = "LIQUIDATE"
)

// SimulationPoint is the mark-to-market portfolio value at one bar
type SimulationPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Trade is one entry of the simulator's event log
type Trade struct {
	Type      TradeType `json:"type"`
	Date      time.Time `json:"date"`
	Price     float64   `json:"price"`
	Shares    float64   `json:"shares"`
	ChangePct *float64  `json:"changePct,omitempty"` // exit price vs entry price, exits only
}

// SimulationSummary condenses an equity curve
type SimulationSummary struct {
	InitialCapital float64 `json:"initialCapital"`
	FinalValue     float64 `json:"finalValue"`
	TotalReturnPct float64 `json:"totalReturnPct"`
	MaxDrawdown    float64 `json:"maxDrawdown"` // negative fraction, 0 when the curve never dips
	SharpeRatio    float64 `json:"sharpeRatio"`
	TradeCount     int     `json:"tradeCount"`
}

// LabMetrics compares the stop/target strategy against buy-and-hold
type LabMetrics struct {
	FinalValue      float64 `json:"finalValue"`
	BenchmarkFinal  float64 `json:"benchmarkFinal"`
	TotalReturn     float64 `json:"totalReturn"`
	BenchmarkReturn float64 `json:"benchmarkReturn"`
	MaxDrawdown     float64 `json:"maxDrawdown"`
}

// LabPoint is one row of the strategy vs benchmark chart
type LabPoint struct {
	Date      time.Time `json:"date"`
	Strategy  float64   `json:"strategy"`
	Benchmark float64   `json:"benchmark"`
}

// LabResult is the advanced simulator output
type LabResult struct {
	Metrics LabMetrics `json:"metrics"`
	Trades  []Trade    `json:"trades"`
	Chart   []LabPoint `json:"chart"`
}

package model

import "time"

// ForecastModel selects a forecasting heuristic
type ForecastModel string

const (
	ForecastSimple  ForecastModel = "simple"
	ForecastARIMA   ForecastModel = "arima"
	ForecastProphet ForecastModel = "prophet"
)

// Valid reports whether the model name is known
func (m ForecastModel) Valid() bool {
	return m == ForecastSimple || m == ForecastARIMA || m == ForecastProphet
}

// ForecastPoint is a projected close on a future date
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// PriceTargets are derived from the last forecast value
type PriceTargets struct {
	Base         float64 `json:"base"`
	Optimistic   float64 `json:"optimistic"`
	Conservative float64 `json:"conservative"`
}

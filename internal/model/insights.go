package model

import "time"

// Quote is the live (or synthesized) quote for a symbol
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	AverageVolume float64 `json:"averageVolume"`
	Currency      string  `json:"currency,omitempty"`
	Synthetic     bool    `json:"synthetic"` // built from history because the quote provider failed
}

// NewsItem is a headline about the symbol
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Profile is descriptive metadata for a symbol
type Profile struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Options are the per-request parameters of the insights pipeline
type Options struct {
	Range           string        `json:"range"`
	Interval        string        `json:"interval"`
	Indicator       Indicator     `json:"indicator"`
	ForecastModel   ForecastModel `json:"forecastModel"`
	ForecastHorizon int           `json:"forecastHorizon"`
	InitialCapital  float64       `json:"initialCapital"`
	StopLossPct     float64       `json:"stopLossPct"`
	TakeProfitPct   float64       `json:"takeProfitPct"`
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		Range:           "1y",
		Interval:        "1d",
		Indicator:       IndicatorSMA,
		ForecastModel:   ForecastSimple,
		ForecastHorizon: 60,
		InitialCapital:  10000,
		StopLossPct:     5,
		TakeProfitPct:   10,
	}
}

// InsightsResult is the consolidated output for one symbol
type InsightsResult struct {
	Symbol            string            `json:"symbol"`
	Options           Options           `json:"options"`
	History           []Bar             `json:"history"`
	SyntheticHistory  bool              `json:"syntheticHistory"`
	Quote             *Quote            `json:"quote"`
	Profile           *Profile          `json:"profile,omitempty"`
	News              []NewsItem        `json:"news"`
	Indicators        IndicatorSnapshot `json:"indicators"`
	Momentum          *Momentum         `json:"momentum"`
	Signals           []Signal          `json:"signals"`
	SignalSummary     SignalSummary     `json:"signalSummary"`
	Simulation        []SimulationPoint `json:"simulation"`
	SimulationSummary SimulationSummary `json:"simulationSummary"`
	Trades            []Trade           `json:"trades"`
	Forecast          []ForecastPoint   `json:"forecast"`
	PriceTargets      *PriceTargets     `json:"priceTargets"`
	TechnicalSummary  string            `json:"technicalSummary"`
	Warnings          []string          `json:"warnings,omitempty"`
	GeneratedAt       time.Time         `json:"generatedAt"`
}

package model

import (
	"math"
	"time"
)

// Bar represents a single daily price bar
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume *float64  `json:"volume"` // nil when the provider has no volume for the bar
}

// VolumeOf returns the bar volume, or 0 when it is missing or not finite
func (b Bar) VolumeOf() float64 {
	if b.Volume == nil || !IsFinite(*b.Volume) {
		return 0
	}
	return *b.Volume
}

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   string  `json:"volume,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Closes extracts close prices in bar order
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Float returns a pointer to v, or nil when v is not finite
func Float(v float64) *float64 {
	if !IsFinite(v) {
		return nil
	}
	return &v
}

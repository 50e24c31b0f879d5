package model

// Series is an indicator series aligned 1:1 with the bars it was computed from.
// A nil element means the window did not have enough history at that index.
type Series []*float64

// NewSeries returns an all-nil series of length n
func NewSeries(n int) Series {
	return make(Series, n)
}

// Set stores v at i, or nil when v is NaN or infinite
func (s Series) Set(i int, v float64) {
	s[i] = Float(v)
}

// At returns the value at i and whether it is present
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s) || s[i] == nil {
		return 0, false
	}
	return *s[i], true
}

// Last returns the value at the final index, which may be nil
func (s Series) Last() *float64 {
	if len(s) == 0 || s[len(s)-1] == nil {
		return nil
	}
	v := *s[len(s)-1]
	return &v
}

// Valid counts the non-nil elements
func (s Series) Valid() int {
	n := 0
	for _, v := range s {
		if v != nil {
			n++
		}
	}
	return n
}

// OffsetPoint is a value addressed by a shifted bar index instead of its position.
// Ichimoku leading spans sit 26 bars ahead of the bar they were computed on and the
// lagging span 26 bars behind, so OffsetIndex may fall outside [0, len(bars)).
type OffsetPoint struct {
	OffsetIndex int     `json:"offsetIndex"`
	Value       float64 `json:"value"`
}

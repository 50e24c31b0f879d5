package model

import "strings"

// rangeDays maps the supported history ranges onto calendar days
var rangeDays = map[string]int{
	"1mo": 30,
	"3mo": 91,
	"6mo": 182,
	"1y":  365,
	"2y":  730,
	"5y":  1826,
}

// RangeDays returns the calendar days covered by a history range such as "6mo" or "1y"
func RangeDays(r string) (int, bool) {
	days, ok := rangeDays[strings.ToLower(r)]
	return days, ok
}

// ValidInterval reports whether the bar interval is supported
func ValidInterval(interval string) bool {
	switch strings.ToLower(interval) {
	case "1d", "1wk", "1mo":
		return true
	}
	return false
}

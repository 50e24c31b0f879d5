package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/insights/internal/model"
)

// FormatLab renders lab metrics and the trade log as plain text
func FormatLab(symbol string, lab *model.LabResult) string {
	var sb strings.Builder
	m := lab.Metrics

	sb.WriteString(fmt.Sprintf("=== STRATEGY LAB: %s ===\n", symbol))
	sb.WriteString(fmt.Sprintf("Strategy:     %12s  (%+.2f%%)\n", money(m.FinalValue), m.TotalReturn))
	sb.WriteString(fmt.Sprintf("Buy & hold:   %12s  (%+.2f%%)\n", money(m.BenchmarkFinal), m.BenchmarkReturn))
	sb.WriteString(fmt.Sprintf("Max drawdown: %11.2f%%\n", m.MaxDrawdown*100))

	if len(lab.Trades) == 0 {
		sb.WriteString("\nNo trades.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\n%-10s  %-9s  %10s  %12s  %8s\n", "DATE", "TYPE", "PRICE", "SHARES", "CHANGE"))
	for _, t := range lab.Trades {
		change := ""
		if t.ChangePct != nil {
			change = fmt.Sprintf("%+.2f%%", *t.ChangePct)
		}
		sb.WriteString(fmt.Sprintf("%-10s  %-9s  %10s  %12.4f  %8s\n",
			t.Date.Format("2006-01-02"), t.Type, money(t.Price), t.Shares, change))
	}
	return sb.String()
}

func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

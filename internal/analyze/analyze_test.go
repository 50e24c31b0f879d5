package analyze

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/insights/internal/calculate"
	"github.com/Alias1177/insights/internal/model"
)

func generateTestBars(n int, generator func(int) model.Bar) []model.Bar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		bars[i] = generator(i)
		bars[i].Date = start.AddDate(0, 0, i)
	}
	return bars
}

func barsFromCloses(closes ...float64) []model.Bar {
	return generateTestBars(len(closes), func(i int) model.Bar {
		return model.Bar{Open: closes[i], High: closes[i] + 1, Low: closes[i] - 1, Close: closes[i]}
	})
}

// series builds a Series where NaN stands for a missing value
func series(values ...float64) model.Series {
	s := model.NewSeries(len(values))
	for i, v := range values {
		s.Set(i, v)
	}
	return s
}

func labels(signals []model.Signal) []model.Label {
	out := make([]model.Label, len(signals))
	for i, s := range signals {
		out[i] = s.Label
	}
	return out
}

func assertLabels(t *testing.T, got []model.Signal, want ...model.Label) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d signals, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Label != want[i] {
			t.Errorf("bar %d: label = %s, want %s (all: %v)", i, got[i].Label, want[i], labels(got))
		}
	}
}

func TestSMASignals(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		closes []float64
		sma    model.Series
		want   []model.Label
	}{
		{
			name:   "SMA crosses up through close",
			closes: []float64{10, 10},
			sma:    series(9, 10.5),
			want:   []model.Label{model.Hold, model.SellStrong},
		},
		{
			name:   "SMA touches close from below",
			closes: []float64{10, 10},
			sma:    series(9.99, 10),
			want:   []model.Label{model.Hold, model.SellWeak},
		},
		{
			name:   "SMA crosses down through close",
			closes: []float64{10, 10},
			sma:    series(11, 9.96),
			want:   []model.Label{model.Hold, model.BuyWeak},
		},
		{
			name:   "medium gap",
			closes: []float64{100, 100},
			sma:    series(101, 99),
			want:   []model.Label{model.Hold, model.BuyMedium},
		},
		{
			name:   "no crossover",
			closes: []float64{10, 11, 12},
			sma:    series(9, 10, 11),
			want:   []model.Label{model.Hold, model.Hold, model.Hold},
		},
		{
			name:   "missing SMA",
			closes: []float64{10, 10},
			sma:    series(nan, 11),
			want:   []model.Label{model.Hold, model.Hold},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLabels(t, SMASignals(barsFromCloses(tt.closes...), tt.sma), tt.want...)
		})
	}
}

func TestRSISignals(t *testing.T) {
	rsi := series(math.NaN(), 15, 22, 28, 50, 71, 78, 85)
	bars := barsFromCloses(1, 1, 1, 1, 1, 1, 1, 1)

	got := RSISignals(bars, rsi)
	assertLabels(t, got,
		model.Hold, model.BuyStrong, model.BuyMedium, model.BuyWeak,
		model.Hold, model.SellWeak, model.SellMedium, model.SellStrong)

	if got[1].Numeric != 1 || got[7].Numeric != -1 || got[4].Numeric != 0 {
		t.Errorf("unexpected numeric signals: %+v", got)
	}
}

func TestMACDSignals(t *testing.T) {
	macd := calculate.MACDResult{
		Line:   series(0, 1, 1, 0.6),
		Signal: series(0.5, 0.4, 1.2, 0.5),
	}
	got := MACDSignals(barsFromCloses(1, 1, 1, 1), macd)
	assertLabels(t, got, model.Hold, model.BuyStrong, model.SellMedium, model.BuyWeak)
}

func TestBollingerSignals(t *testing.T) {
	bands := calculate.Bands{
		Upper: series(110, 99.5, 110, 110, math.NaN()),
		Lower: series(102, 90, 100.1, 90, 90),
	}
	got := BollingerSignals(barsFromCloses(100, 100, 100, 100, 80), bands)
	assertLabels(t, got, model.BuyStrong, model.SellMedium, model.BuyWeak, model.Hold, model.Hold)
}

func TestStochasticSignals(t *testing.T) {
	tests := []struct {
		name string
		k, d model.Series
		want model.Label
	}{
		{"bullish crossover near 20", series(10, 15), series(12, 12), model.BuyWeak},
		{"bullish crossover deep oversold", series(5, 8), series(6, 7), model.BuyStrong},
		{"bullish crossover above 20", series(18, 25), series(20, 21), model.Hold},
		{"bearish crossover near 80", series(95, 85), series(90, 88), model.SellWeak},
		{"bearish crossover deep overbought", series(96, 92), series(94, 93), model.SellStrong},
		{"no crossover", series(10, 11), series(5, 6), model.Hold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StochasticSignals(barsFromCloses(1, 1), calculate.StochasticResult{K: tt.k, D: tt.d})
			assertLabels(t, got, model.Hold, tt.want)
		})
	}
}

func TestClassify(t *testing.T) {
	bars := generateTestBars(120, func(i int) model.Bar {
		c := 100 + 15*math.Sin(float64(i)/6)
		return model.Bar{Open: c, High: c + 2, Low: c - 2, Close: c}
	})
	set := calculate.CalculateAll(bars, calculate.DefaultParams())

	for _, indicator := range model.Indicators {
		t.Run(string(indicator), func(t *testing.T) {
			signals, err := Classify(indicator, bars, set)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if len(signals) != len(bars) {
				t.Fatalf("got %d signals for %d bars", len(signals), len(bars))
			}
			for i, s := range signals {
				if s.Label == "" {
					t.Fatalf("bar %d has no label", i)
				}
				if (s.Label.IsBuy() && s.Numeric != 1) || (s.Label.IsSell() && s.Numeric != -1) ||
					(s.Label == model.Hold && s.Numeric != 0) {
					t.Errorf("bar %d: label %s with numeric %d", i, s.Label, s.Numeric)
				}
			}
		})
	}

	if _, err := Classify("ichimoku", bars, set); !errors.Is(err, ErrUnknownIndicator) {
		t.Errorf("expected ErrUnknownIndicator, got %v", err)
	}
}

func TestClassifyComputesMissingSet(t *testing.T) {
	bars := barsFromCloses(1, 2, 3)
	signals, err := Classify(model.IndicatorRSI, bars, nil)
	if err != nil || len(signals) != 3 {
		t.Fatalf("Classify() = %v, %v", signals, err)
	}
}

func TestSummarize(t *testing.T) {
	signals := []model.Signal{
		model.HoldSignal(),
		model.BuySignal(model.SeverityStrong),
		model.BuySignal(model.SeverityWeak),
		model.SellSignal(model.SeverityMedium),
		model.HoldSignal(),
	}
	got := Summarize(signals)
	if got.Buy != 2 || got.Sell != 1 || got.Hold != 2 {
		t.Errorf("Summarize() = %+v", got)
	}
	if got.ByLabel[model.BuyStrong] != 1 || got.ByLabel[model.Hold] != 2 {
		t.Errorf("ByLabel = %v", got.ByLabel)
	}
}

func TestMomentum(t *testing.T) {
	tests := []struct {
		name       string
		closes     []float64
		wantNil    bool
		change     float64
		changePerc float64
	}{
		{name: "empty", wantNil: true},
		{name: "single bar", closes: []float64{100}, wantNil: true},
		{name: "rise", closes: []float64{90, 100, 105}, change: 5, changePerc: 5},
		{name: "fall", closes: []float64{200, 150}, change: -50, changePerc: -25},
		{name: "from zero", closes: []float64{0, 3}, change: 3, changePerc: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Momentum(barsFromCloses(tt.closes...))
			if tt.wantNil {
				if got != nil {
					t.Errorf("Momentum() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Momentum() = nil")
			}
			if math.Abs(got.Change-tt.change) > 1e-9 || math.Abs(got.ChangePercent-tt.changePerc) > 1e-9 {
				t.Errorf("Momentum() = %+v, want change %v (%v%%)", got, tt.change, tt.changePerc)
			}
		})
	}
}

func TestTechnicalSummary(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	text := TechnicalSummary(SummaryInput{
		Symbol: "AAPL",
		Close:  101.5,
		Snapshot: model.IndicatorSnapshot{
			RSI:        f(75.2),
			MACD:       f(1.3),
			MACDSignal: f(0.8),
			ADX:        f(31),
			PlusDI:     f(12),
			MinusDI:    f(28),
			BBUpper:    f(110),
			BBLower:    f(90),
		},
		Signals: model.SignalSummary{Buy: 4, Sell: 1},
		Targets: &model.PriceTargets{Base: 120, Optimistic: 129.6, Conservative: 110.4},
	})

	for _, want := range []string{
		"AAPL technical outlook",
		"RSI at 75.2 signals overbought",
		"bullish divergence",
		"strong downward trend",
		"$101.50 is trading inside the Bollinger Bands ($90.00 to $110.00)",
		"lean bullish with 4 buy versus 1 sell",
		"base target $120.00 (optimistic $129.60, conservative $110.40)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary %q does not contain %q", text, want)
		}
	}
}

func TestTechnicalSummaryWithoutIndicators(t *testing.T) {
	text := TechnicalSummary(SummaryInput{Close: 10})
	if text != "Technical outlook: Signals are balanced." {
		t.Errorf("TechnicalSummary() = %q", text)
	}
}

package prediction

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Alias1177/insights/internal/model"
)

const eps = 1e-9

var lastDate = time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC) // a Friday

func barsFromCloses(closes ...float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Date: lastDate.AddDate(0, 0, i-len(closes)+1), Close: c}
	}
	return bars
}

func values(forecast []model.ForecastPoint) []float64 {
	out := make([]float64, len(forecast))
	for i, p := range forecast {
		out[i] = p.Value
	}
	return out
}

func TestPredictFuturePrices_SingleBarSimple(t *testing.T) {
	forecast := PredictFuturePrices(barsFromCloses(100), model.ForecastSimple, 3)
	if len(forecast) != 3 {
		t.Fatalf("got %d points, want 3", len(forecast))
	}
	for i, p := range forecast {
		if p.Value != 100 {
			t.Errorf("point %d = %v, want 100", i, p.Value)
		}
		// calendar days, so Saturday and Sunday are included
		if want := lastDate.AddDate(0, 0, i+1); !p.Date.Equal(want) {
			t.Errorf("point %d date = %v, want %v", i, p.Date, want)
		}
	}
}

func TestPredictFuturePrices_SimpleSkipsNonFiniteCloses(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   []float64
	}{
		{"NaN first close", []float64{math.NaN(), 100}, []float64{100, 100, 100}},
		{"Inf last close", []float64{100, 110, math.Inf(1)}, []float64{115, 120, 125}},
		{"NaN in the middle", []float64{100, math.NaN(), 110}, []float64{115, 120, 125}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := values(PredictFuturePrices(barsFromCloses(tt.closes...), model.ForecastSimple, 3))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d points, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > eps {
					t.Errorf("point %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}

	if got := PredictFuturePrices(barsFromCloses(math.NaN(), math.Inf(-1)), model.ForecastSimple, 3); len(got) != 0 {
		t.Errorf("all non-finite closes gave %d points, want 0", len(got))
	}
}

func TestPredictFuturePrices_Models(t *testing.T) {
	linear := make([]float64, 20)
	for i := range linear {
		linear[i] = 50 + 2*float64(i) // 50..88
	}

	tests := []struct {
		name   string
		closes []float64
		model  model.ForecastModel
		want   []float64
	}{
		{
			name:   "simple trend",
			closes: []float64{10, 12, 14, 16},
			model:  model.ForecastSimple,
			// trend = (16-10)/4
			want: []float64{17.5, 19, 20.5},
		},
		{
			name:   "arima extends a perfect line",
			closes: linear,
			model:  model.ForecastARIMA,
			want:   []float64{90, 92, 94},
		},
		{
			name:   "arima on flat prices",
			closes: []float64{5, 5, 5, 5},
			model:  model.ForecastARIMA,
			want:   []float64{5, 5},
		},
		{
			name:   "prophet on flat prices",
			closes: []float64{7, 7, 7, 7, 7, 7, 7, 7, 7},
			model:  model.ForecastProphet,
			want:   []float64{7, 7, 7, 7},
		},
		{
			name:   "arima with a single bar",
			closes: []float64{42},
			model:  model.ForecastARIMA,
			want:   []float64{42, 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := values(PredictFuturePrices(barsFromCloses(tt.closes...), tt.model, len(tt.want)))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-6 {
					t.Errorf("point %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPredictFuturePrices_ProphetFollowsTrend(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i) + 8*math.Sin(float64(i))
	}
	bars := barsFromCloses(closes...)

	arima := PredictFuturePrices(bars, model.ForecastARIMA, 5)
	prophet := PredictFuturePrices(bars, model.ForecastProphet, 5)
	if len(arima) != 5 || len(prophet) != 5 {
		t.Fatalf("lengths %d/%d", len(arima), len(prophet))
	}
	for i := 1; i < 5; i++ {
		if prophet[i].Value <= prophet[i-1].Value {
			t.Errorf("prophet forecast should follow the upward trend: %v", values(prophet))
		}
	}
}

func TestPredictFuturePrices_LengthProperty(t *testing.T) {
	bars := barsFromCloses(3, 1, 4, 1, 5, 9, 2, 6)
	for _, m := range []model.ForecastModel{model.ForecastSimple, model.ForecastARIMA, model.ForecastProphet} {
		for _, days := range []int{0, 1, 7, 60} {
			if got := PredictFuturePrices(bars, m, days); len(got) != days {
				t.Errorf("%s days=%d: got %d points", m, days, len(got))
			}
			if got := PredictFuturePrices(nil, m, days); len(got) != 0 {
				t.Errorf("%s days=%d on empty input: got %d points", m, days, len(got))
			}
		}
	}
}

func TestPredictFuturePrices_UnknownModel(t *testing.T) {
	got := PredictFuturePrices(barsFromCloses(1, 2, 3), "lstm", 5)
	if got == nil || len(got) != 0 {
		t.Errorf("expected an empty forecast, got %v", got)
	}
}

func TestTargets(t *testing.T) {
	if Targets(nil) != nil {
		t.Error("Targets(nil) should be nil")
	}

	targets := Targets([]model.ForecastPoint{{Value: 90}, {Value: 100}})
	if targets.Base != 100 || math.Abs(targets.Optimistic-108) > eps || math.Abs(targets.Conservative-92) > eps {
		t.Errorf("Targets() = %+v", targets)
	}

	negative := Targets([]model.ForecastPoint{{Value: -10}})
	if negative.Optimistic != 0 || negative.Conservative != 0 {
		t.Errorf("targets must be clamped at zero: %+v", negative)
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		in      string
		want    model.ForecastModel
		wantErr bool
	}{
		{"simple", model.ForecastSimple, false},
		{" ARIMA ", model.ForecastARIMA, false},
		{"Prophet", model.ForecastProphet, false},
		{"", "", true},
		{"holt-winters", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownModel) {
					t.Errorf("ParseModel(%q) error = %v", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseModel(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

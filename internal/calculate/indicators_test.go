package calculate

import (
	"math"
	"testing"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/Alias1177/insights/internal/model"
)

const eps = 1e-9

func generateTestBars(n int, generator func(int) model.Bar) []model.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		bars[i] = generator(i)
		bars[i].Date = start.AddDate(0, 0, i)
	}
	return bars
}

func barsFromCloses(closes ...float64) []model.Bar {
	return generateTestBars(len(closes), func(i int) model.Bar {
		c := closes[i]
		v := 1000.0
		return model.Bar{Open: c, High: c + 1, Low: c - 1, Close: c, Volume: &v}
	})
}

// wave produces a non-monotonic series so oscillators see both gains and losses
func wave(n int) []model.Bar {
	return generateTestBars(n, func(i int) model.Bar {
		c := 100 + 10*math.Sin(float64(i)/3) + float64(i%5)
		v := 1000 + float64(i*10)
		return model.Bar{Open: c - 0.5, High: c + 2, Low: c - 2, Close: c, Volume: &v}
	})
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Abs(b))
}

func TestShortInputIsAllNil(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5)

	tests := []struct {
		name   string
		series model.Series
	}{
		{"SMA(20)", SMA(bars, 20)},
		{"RSI(14)", RSI(bars, 14)},
		{"Bollinger upper(20)", BollingerBands(bars, 20, 2).Upper},
		{"Bollinger middle(20)", BollingerBands(bars, 20, 2).Middle},
		{"Bandwidth(20)", Bandwidth(BollingerBands(bars, 20, 2))},
		{"Stochastic %K(14)", Stochastic(bars, 14, 3).K},
		{"Stochastic %D(14,3)", Stochastic(bars, 14, 3).D},
		{"Ichimoku conversion", Ichimoku(bars).Conversion},
		{"Ichimoku base", Ichimoku(bars).Base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.series) != len(bars) {
				t.Fatalf("len = %d, want %d", len(tt.series), len(bars))
			}
			if got := tt.series.Valid(); got != 0 {
				t.Errorf("expected all nil, got %d values", got)
			}
		})
	}
}

func TestSeriesLengthMatchesBars(t *testing.T) {
	for _, n := range []int{0, 1, 2, 30, 120} {
		bars := wave(n)
		set := CalculateAll(bars, DefaultParams())
		for name, s := range map[string]model.Series{
			"sma": set.SMA, "ema": set.EMAShort, "rsi": set.RSI, "macd": set.MACD.Line,
			"macd signal": set.MACD.Signal, "bb upper": set.Bollinger.Upper, "bandwidth": set.Bandwidth,
			"%K": set.Stochastic.K, "%D": set.Stochastic.D, "vwap": set.VWAP, "adx": set.ADX.ADX,
			"+di": set.ADX.PlusDI, "conversion": set.Ichimoku.Conversion,
		} {
			if len(s) != n {
				t.Errorf("n=%d %s: len = %d", n, name, len(s))
			}
		}
	}
}

func TestSMA_LinearCloses(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	sma := SMA(barsFromCloses(closes...), 20)

	for i := 0; i < 19; i++ {
		if sma[i] != nil {
			t.Fatalf("index %d: expected nil, got %v", i, *sma[i])
		}
	}
	// last 20 closes are 105..124
	got, ok := sma.At(24)
	if !ok || math.Abs(got-114.5) > eps {
		t.Errorf("SMA(20) at last index = %v, want 114.5", got)
	}
}

func TestSMA_IsWindowMean(t *testing.T) {
	bars := wave(80)
	window := 7
	sma := SMA(bars, window)
	for i := window - 1; i < len(bars); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += bars[j].Close
		}
		got, ok := sma.At(i)
		if !ok || math.Abs(got-sum/float64(window)) > eps {
			t.Errorf("index %d: SMA = %v, want %v", i, got, sum/float64(window))
		}
	}
}

func TestSMA_MatchesTalib(t *testing.T) {
	bars := wave(100)
	want := talib.Sma(model.Closes(bars), 20)
	got := SMA(bars, 20)
	for i := 19; i < len(bars); i++ {
		if v, ok := got.At(i); !ok || !almostEqual(v, want[i]) {
			t.Errorf("index %d: SMA = %v, talib = %v", i, v, want[i])
		}
	}
}

func TestEMA_SeedsWithFirstValueAndCarriesForward(t *testing.T) {
	ten, twenty := 10.0, 20.0
	in := model.Series{nil, &ten, nil, &twenty}
	out := EMA(in, 3) // multiplier 0.5

	if out[0] != nil {
		t.Errorf("index 0: expected nil before any input, got %v", *out[0])
	}
	if v, _ := out.At(1); v != 10 {
		t.Errorf("index 1: EMA = %v, want seed 10", v)
	}
	// a nil input repeats the previous value instead of producing nil
	if v, ok := out.At(2); !ok || v != 10 {
		t.Errorf("index 2: EMA = %v (present=%v), want carried 10", v, ok)
	}
	if v, _ := out.At(3); math.Abs(v-15) > eps {
		t.Errorf("index 3: EMA = %v, want 15", v)
	}
}

func TestRSI_AllGainsIs100(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 50 + float64(i)
	}
	rsi := RSI(barsFromCloses(closes...), 14)

	for i := 0; i < 14; i++ {
		if rsi[i] != nil {
			t.Fatalf("index %d: expected nil, got %v", i, *rsi[i])
		}
	}
	if v, ok := rsi.At(14); !ok || v != 100 {
		t.Errorf("RSI at index 14 = %v, want 100", v)
	}
}

func TestRSI_BoundsAndTalib(t *testing.T) {
	bars := wave(150)
	rsi := RSI(bars, 14)
	want := talib.Rsi(model.Closes(bars), 14)

	for i := 14; i < len(bars); i++ {
		v, ok := rsi.At(i)
		if !ok {
			t.Fatalf("index %d: missing RSI", i)
		}
		if v < 0 || v > 100 {
			t.Errorf("index %d: RSI %v out of [0,100]", i, v)
		}
		if !almostEqual(v, want[i]) {
			t.Errorf("index %d: RSI = %v, talib = %v", i, v, want[i])
		}
	}
}

func TestMACD_FlatPricesAreZero(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 42
	}
	res := MACD(barsFromCloses(closes...), 12, 26, 9)
	for i := range closes {
		line, ok := res.Line.At(i)
		if !ok || line != 0 {
			t.Fatalf("index %d: MACD = %v, want 0", i, line)
		}
		if sig, ok := res.Signal.At(i); !ok || sig != 0 {
			t.Fatalf("index %d: signal = %v, want 0", i, sig)
		}
	}
}

func TestMACD_LineIsEMADifference(t *testing.T) {
	bars := wave(60)
	res := MACD(bars, 12, 26, 9)
	fast := EMACloses(bars, 12)
	slow := EMACloses(bars, 26)
	for i := range bars {
		f, _ := fast.At(i)
		s, _ := slow.At(i)
		if v, _ := res.Line.At(i); math.Abs(v-(f-s)) > eps {
			t.Errorf("index %d: MACD = %v, want %v", i, v, f-s)
		}
	}
}

func TestBollinger_MatchesTalib(t *testing.T) {
	bars := wave(90)
	upper, middle, lower := talib.BBands(model.Closes(bars), 20, 2, 2, talib.SMA)
	b := BollingerBands(bars, 20, 2)

	for i := 19; i < len(bars); i++ {
		u, _ := b.Upper.At(i)
		m, _ := b.Middle.At(i)
		l, _ := b.Lower.At(i)
		if !almostEqual(u, upper[i]) || !almostEqual(m, middle[i]) || !almostEqual(l, lower[i]) {
			t.Errorf("index %d: got (%v,%v,%v), talib (%v,%v,%v)", i, u, m, l, upper[i], middle[i], lower[i])
		}
	}
}

func TestBandwidth(t *testing.T) {
	one, two, three, zero := 1.0, 2.0, 3.0, 0.0
	b := Bands{
		Upper:  model.Series{&three, &three, nil},
		Middle: model.Series{&two, &zero, &two},
		Lower:  model.Series{&one, &one, &one},
	}
	bw := Bandwidth(b)
	if v, ok := bw.At(0); !ok || math.Abs(v-100) > eps {
		t.Errorf("bandwidth = %v, want 100", v)
	}
	if bw[1] != nil {
		t.Error("expected nil bandwidth for zero middle band")
	}
	if bw[2] != nil {
		t.Error("expected nil bandwidth when a band is missing")
	}
}

func TestStochastic_FlatRangeIsZero(t *testing.T) {
	bars := generateTestBars(20, func(int) model.Bar {
		return model.Bar{Open: 10, High: 10, Low: 10, Close: 10}
	})
	res := Stochastic(bars, 14, 3)
	for i := 13; i < len(bars); i++ {
		if v, ok := res.K.At(i); !ok || v != 0 {
			t.Errorf("index %d: %%K = %v, want 0", i, v)
		}
	}
	if v, ok := res.D.At(15); !ok || v != 0 {
		t.Errorf("%%D = %v, want 0", v)
	}
}

func TestStochastic_Bounds(t *testing.T) {
	bars := wave(100)
	res := Stochastic(bars, 14, 3)
	for i := 13; i < len(bars); i++ {
		v, ok := res.K.At(i)
		if !ok || v < 0 || v > 100 {
			t.Errorf("index %d: %%K = %v out of range", i, v)
		}
	}
	if res.D[14] != nil {
		t.Error("%D needs dWindow values of %K")
	}
	if res.D[15] == nil {
		t.Error("%D should exist once three %K values exist")
	}
}

func TestVWAP_CarriesForwardOverMissingVolume(t *testing.T) {
	zero, hundred := 0.0, 100.0
	bars := []model.Bar{
		{High: 12, Low: 8, Close: 10, Volume: nil},
		{High: 12, Low: 8, Close: 10, Volume: &zero},
		{High: 22, Low: 18, Close: 20, Volume: &hundred},
		{High: 32, Low: 28, Close: 30, Volume: nil},
		{High: 42, Low: 38, Close: 40, Volume: &hundred},
	}
	vwap := VWAP(bars)

	if vwap[0] != nil || vwap[1] != nil {
		t.Fatal("VWAP must stay nil until volume appears")
	}
	if v, _ := vwap.At(2); math.Abs(v-20) > eps {
		t.Errorf("index 2: VWAP = %v, want 20", v)
	}
	if v, ok := vwap.At(3); !ok || math.Abs(v-20) > eps {
		t.Errorf("index 3: VWAP = %v, want carried 20", v)
	}
	if v, _ := vwap.At(4); math.Abs(v-30) > eps {
		t.Errorf("index 4: VWAP = %v, want 30", v)
	}
}

func TestADX_Bounds(t *testing.T) {
	bars := wave(120)
	res := ADX(bars, 14)
	if res.ADX[0] != nil || res.PlusDI[0] != nil {
		t.Error("first bar has no previous bar to compare with")
	}
	for i := 1; i < len(bars); i++ {
		for name, s := range map[string]model.Series{"adx": res.ADX, "+di": res.PlusDI, "-di": res.MinusDI} {
			v, ok := s.At(i)
			if !ok || v < 0 || v > 100 || !model.IsFinite(v) {
				t.Errorf("index %d: %s = %v", i, name, v)
			}
		}
	}
}

func TestADX_UptrendFavoursPlusDI(t *testing.T) {
	bars := generateTestBars(40, func(i int) model.Bar {
		c := 100 + float64(i)*2
		return model.Bar{Open: c, High: c + 1, Low: c - 1, Close: c}
	})
	res := ADX(bars, 14)
	plus, _ := res.PlusDI.At(39)
	minus, _ := res.MinusDI.At(39)
	if plus <= minus {
		t.Errorf("+DI %v should exceed -DI %v in an uptrend", plus, minus)
	}
}

func TestADX_FlatBarsDoNotProduceNaN(t *testing.T) {
	bars := generateTestBars(30, func(int) model.Bar {
		return model.Bar{Open: 5, High: 5, Low: 5, Close: 5}
	})
	res := ADX(bars, 14)
	for i := 1; i < len(bars); i++ {
		if v, ok := res.ADX.At(i); !ok || v != 0 {
			t.Errorf("index %d: ADX = %v, want 0", i, v)
		}
	}
}

func TestIchimoku_Offsets(t *testing.T) {
	bars := wave(80)
	res := Ichimoku(bars)

	if res.Conversion[7] != nil || res.Conversion[8] == nil {
		t.Error("conversion line starts at index 8")
	}
	if res.Base[24] != nil || res.Base[25] == nil {
		t.Error("base line starts at index 25")
	}
	if len(res.LeadingSpanA) == 0 || res.LeadingSpanA[0].OffsetIndex != 25+IchimokuDisplacement {
		t.Errorf("span A should start at offset %d", 25+IchimokuDisplacement)
	}
	if len(res.LeadingSpanB) == 0 || res.LeadingSpanB[0].OffsetIndex != 51+IchimokuDisplacement {
		t.Errorf("span B should start at offset %d", 51+IchimokuDisplacement)
	}
	last := res.LeadingSpanA[len(res.LeadingSpanA)-1]
	if last.OffsetIndex != len(bars)-1+IchimokuDisplacement {
		t.Errorf("last span A offset = %d, want %d", last.OffsetIndex, len(bars)-1+IchimokuDisplacement)
	}
	if res.Lagging[0].OffsetIndex != 0 || res.Lagging[0].Value != bars[IchimokuDisplacement].Close {
		t.Errorf("lagging span should tag close of bar 26 at offset 0, got %+v", res.Lagging[0])
	}
}

func TestNonFiniteInputBecomesNil(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	bars := barsFromCloses(closes...)
	bars[3].Close = math.NaN()

	sma := SMA(bars, 3)
	for _, i := range []int{3, 4, 5} {
		if sma[i] != nil {
			t.Errorf("index %d: expected nil around NaN close, got %v", i, *sma[i])
		}
	}
	ema := EMACloses(bars, 3)
	if v, ok := ema.At(3); !ok || !model.IsFinite(v) {
		t.Errorf("EMA should carry forward across a NaN close, got %v", v)
	}
	b := BollingerBands(bars, 3, 2)
	if b.Upper[4] != nil {
		t.Error("Bollinger upper should be nil when the window holds a NaN")
	}
}

func TestSnapshot(t *testing.T) {
	bars := wave(100)
	set := CalculateAll(bars, DefaultParams())
	snap := set.Snapshot()

	if snap.SMA == nil || *snap.SMA != *set.SMA[99] {
		t.Error("snapshot SMA should be the last SMA value")
	}
	if snap.RSI == nil || snap.ADX == nil || snap.VWAP == nil || snap.IchimokuSpanA == nil || snap.IchimokuSpanB == nil {
		t.Errorf("expected every indicator to be present for 100 bars: %+v", snap)
	}

	short := CalculateAll(bars[:5], DefaultParams()).Snapshot()
	if short.SMA != nil || short.RSI != nil || short.IchimokuSpanB != nil {
		t.Error("expected nil snapshot values with five bars")
	}
}

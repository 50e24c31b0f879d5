package insights

import (
	"testing"
	"time"

	"github.com/Alias1177/insights/internal/model"
)

func TestSyntheticHistory_Deterministic(t *testing.T) {
	a := SyntheticHistory("AAPL", "6mo", "1d", fixedNow)
	b := SyntheticHistory("AAPL", "6mo", "1d", fixedNow)
	c := SyntheticHistory("MSFT", "6mo", "1d", fixedNow)

	if len(a) == 0 {
		t.Fatal("SyntheticHistory returned no bars")
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Close != b[i].Close || !a[i].Date.Equal(b[i].Date) {
			t.Fatalf("bar %d differs between runs", i)
		}
	}

	same := true
	for i := range a {
		if i < len(c) && a[i].Close != c[i].Close {
			same = false
			break
		}
	}
	if same {
		t.Error("different symbols produced identical series")
	}
}

func TestSyntheticHistory_Shape(t *testing.T) {
	bars := SyntheticHistory("GOOG", "3mo", "1d", fixedNow)

	for i, b := range bars {
		if wd := b.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("bar %d falls on %s", i, wd)
		}
		if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
			t.Errorf("bar %d has inconsistent OHLC: %+v", i, b)
		}
		if b.Close <= 0 {
			t.Errorf("bar %d close = %v, want positive", i, b.Close)
		}
		if b.Volume == nil || *b.Volume <= 0 {
			t.Errorf("bar %d has no volume", i)
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			t.Errorf("bar %d not after bar %d", i, i-1)
		}
	}

	last := bars[len(bars)-1].Date
	if last.After(fixedNow) {
		t.Errorf("last bar %v after end %v", last, fixedNow)
	}
}

func TestSyntheticHistory_Intervals(t *testing.T) {
	weekly := SyntheticHistory("GOOG", "1y", "1wk", fixedNow)
	if len(weekly) < 52 || len(weekly) > 53 {
		t.Errorf("weekly bars = %d, want 52 or 53", len(weekly))
	}
	monthly := SyntheticHistory("GOOG", "1y", "1mo", fixedNow)
	if len(monthly) < 12 || len(monthly) > 13 {
		t.Errorf("monthly bars = %d, want 12 or 13", len(monthly))
	}
	if got := SyntheticHistory("GOOG", "forever", "1d", fixedNow); got != nil {
		t.Errorf("unknown range returned %d bars, want nil", len(got))
	}
}

func TestSynthesizeQuote(t *testing.T) {
	if q := SynthesizeQuote("X", nil); q != nil {
		t.Errorf("SynthesizeQuote(nil) = %+v, want nil", q)
	}

	v := func(f float64) *float64 { return &f }
	bars := []model.Bar{
		{Close: 100, Volume: v(300)},
		{Close: 110, Volume: nil},
	}
	q := SynthesizeQuote("X", bars)
	if q.Price != 110 || q.PreviousClose != 100 || q.Change != 10 {
		t.Errorf("quote = %+v", q)
	}
	if q.ChangePercent != 10 {
		t.Errorf("ChangePercent = %v, want 10", q.ChangePercent)
	}
	if q.AverageVolume != 150 {
		t.Errorf("AverageVolume = %v, want 150", q.AverageVolume)
	}
	if !q.Synthetic {
		t.Error("Synthetic = false")
	}

	single := SynthesizeQuote("X", bars[:1])
	if single.Change != 0 || single.ChangePercent != 0 {
		t.Errorf("single-bar quote = %+v, want zero change", single)
	}
}

package backtest

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alias1177/insights/internal/model"
)

var (
	// ErrInvalidCapital is returned for non-positive or non-finite starting capital
	ErrInvalidCapital = errors.New("initial capital must be positive")
	// ErrSignalCount is returned when signals are not aligned with bars
	ErrSignalCount = errors.New("signal count does not match bar count")
	// ErrInvalidPolicy is returned for negative stop-loss or take-profit percentages
	ErrInvalidPolicy = errors.New("invalid simulation policy")
)

// PolicyKind selects how signals are turned into position changes
type PolicyKind string

const (
	// PolicyGraduated buys or sells a severity-dependent fraction of cash or shares
	PolicyGraduated PolicyKind = "graduated"
	// PolicyStopTarget goes all in or all out and closes on stop-loss or take-profit
	PolicyStopTarget PolicyKind = "stop_target"
)

// Policy configures a simulation. StopLossPct and TakeProfitPct are percentages
// relative to the entry price and only apply to PolicyStopTarget; zero disables them.
type Policy struct {
	Kind          PolicyKind
	StopLossPct   float64
	TakeProfitPct float64
}

// Graduated returns the fractional policy used by the core backtest
func Graduated() Policy {
	return Policy{Kind: PolicyGraduated}
}

// StopTarget returns the all-or-nothing policy with the given exits
func StopTarget(stopLossPct, takeProfitPct float64) Policy {
	return Policy{Kind: PolicyStopTarget, StopLossPct: stopLossPct, TakeProfitPct: takeProfitPct}
}

func (p Policy) validate() error {
	switch p.Kind {
	case PolicyGraduated, PolicyStopTarget:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPolicy, p.Kind)
	}
	if p.StopLossPct < 0 || p.TakeProfitPct < 0 || !model.IsFinite(p.StopLossPct) || !model.IsFinite(p.TakeProfitPct) {
		return fmt.Errorf("%w: stop-loss %.2f%%, take-profit %.2f%%", ErrInvalidPolicy, p.StopLossPct, p.TakeProfitPct)
	}
	return nil
}

// Result is the outcome of a single simulation pass
type Result struct {
	Equity []model.SimulationPoint
	Trades []model.Trade
	Cash   float64
	Shares float64
}

// FinalValue is the last equity value, or 0 for an empty run
func (r *Result) FinalValue() float64 {
	if len(r.Equity) == 0 {
		return 0
	}
	return r.Equity[len(r.Equity)-1].Value
}

// Values returns the equity curve without dates
func (r *Result) Values() []float64 {
	values := make([]float64, len(r.Equity))
	for i, p := range r.Equity {
		values[i] = p.Value
	}
	return values
}

// portfolio is the running state of one simulation
type portfolio struct {
	cash       float64
	shares     float64
	entryPrice float64
	trades     []model.Trade
}

func (p *portfolio) buy(bar model.Bar, amount float64) {
	if amount > p.cash {
		amount = p.cash
	}
	qty := amount / bar.Close
	p.cash -= amount
	if p.cash < 0 {
		p.cash = 0
	}
	p.shares += qty
	p.entryPrice = bar.Close
	p.trades = append(p.trades, model.Trade{Type: model.TradeBuy, Date: bar.Date, Price: bar.Close, Shares: qty})
}

func (p *portfolio) sell(bar model.Bar, qty float64, kind model.TradeType) {
	if qty >= p.shares {
		qty = p.shares
	}
	p.cash += qty * bar.Close
	p.shares -= qty
	if p.shares < 1e-12 {
		p.shares = 0
	}

	trade := model.Trade{Type: kind, Date: bar.Date, Price: bar.Close, Shares: qty}
	if p.entryPrice > 0 {
		change := (bar.Close - p.entryPrice) / p.entryPrice * 100
		trade.ChangePct = &change
	}
	p.trades = append(p.trades, trade)
}

// Simulate replays signals over bars starting from capital. The equity curve has one
// point per bar valued at cash + shares*close.
func Simulate(bars []model.Bar, signals []model.Signal, capital float64, policy Policy) (*Result, error) {
	if capital <= 0 || !model.IsFinite(capital) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidCapital, capital)
	}
	if len(signals) != len(bars) {
		return nil, fmt.Errorf("%w: %d signals for %d bars", ErrSignalCount, len(signals), len(bars))
	}
	if err := policy.validate(); err != nil {
		return nil, err
	}

	p := &portfolio{cash: capital}
	equity := make([]model.SimulationPoint, len(bars))
	lastPrice := 0.0

	for i, bar := range bars {
		tradable := bar.Close > 0 && model.IsFinite(bar.Close)
		if tradable {
			lastPrice = bar.Close
			if policy.Kind == PolicyGraduated {
				stepGraduated(p, bar, signals[i])
			} else {
				stepStopTarget(p, bar, signals[i], policy)
			}
		}
		equity[i] = model.SimulationPoint{Date: bar.Date, Value: p.cash + p.shares*lastPrice}
	}

	if policy.Kind == PolicyStopTarget && p.shares > 0 && lastPrice > 0 {
		last := bars[len(bars)-1]
		last.Close = lastPrice
		p.sell(last, p.shares, model.TradeLiquidate)
	}

	return &Result{Equity: equity, Trades: p.trades, Cash: p.cash, Shares: p.shares}, nil
}

// stepGraduated buys only while flat and sells only while holding
func stepGraduated(p *portfolio, bar model.Bar, signal model.Signal) {
	fraction := severityFraction(signal.Label.Severity())
	switch {
	case signal.Label.IsBuy() && p.shares == 0 && p.cash > 0:
		p.buy(bar, p.cash*fraction)
	case signal.Label.IsSell() && p.shares > 0:
		if fraction >= 1 {
			p.sell(bar, p.shares, model.TradeSell)
			return
		}
		p.sell(bar, p.shares*fraction, model.TradeSell)
	}
}

// stepStopTarget checks the stop and the target before the signal exit.
// A bar that closes a position never reopens one.
func stepStopTarget(p *portfolio, bar model.Bar, signal model.Signal, policy Policy) {
	if p.shares > 0 {
		change := (bar.Close - p.entryPrice) / p.entryPrice * 100
		switch {
		case policy.StopLossPct > 0 && change <= -policy.StopLossPct:
			p.sell(bar, p.shares, model.TradeStop)
		case policy.TakeProfitPct > 0 && change >= policy.TakeProfitPct:
			p.sell(bar, p.shares, model.TradeTarget)
		case signal.Numeric < 0:
			p.sell(bar, p.shares, model.TradeSell)
		}
		return
	}

	if signal.Numeric > 0 && p.cash > 0 {
		p.buy(bar, p.cash)
	}
}

// severityFraction is the share of cash (or shares) a graded signal moves
func severityFraction(severity string) float64 {
	switch severity {
	case model.SeverityStrong:
		return 0.5
	case model.SeverityMedium:
		return 0.3
	case model.SeverityWeak:
		return 0.1
	default:
		return 1
	}
}

// MaxDrawdown is the most negative (value-peak)/peak over the curve, or 0 when the
// curve never falls below its running peak
func MaxDrawdown(values []float64) float64 {
	maxDrawdown := 0.0
	peak := math.Inf(-1)
	for _, v := range values {
		if !model.IsFinite(v) {
			continue
		}
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (v - peak) / peak; dd < maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

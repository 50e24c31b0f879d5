package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/insights/internal/analysis/prediction"
	"github.com/Alias1177/insights/internal/analyze"
	"github.com/Alias1177/insights/internal/calculate"
	"github.com/Alias1177/insights/internal/metrics"
	"github.com/Alias1177/insights/internal/model"
	"github.com/Alias1177/insights/internal/trading/backtest"
)

var (
	// ErrNoHistory is returned when no bars can be obtained, synthetic fallback included
	ErrNoHistory = errors.New("no historical data")
	// ErrInvalidInput is returned for a missing symbol or out-of-range options
	ErrInvalidInput = errors.New("invalid input")
)

// HistoryProvider returns ascending bars for a symbol over a range such as "1y"
type HistoryProvider interface {
	History(ctx context.Context, symbol, rng, interval string) ([]model.Bar, error)
}

// QuoteProvider returns the latest quote for a symbol
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*model.Quote, error)
}

// NewsProvider returns recent headlines for a symbol
type NewsProvider interface {
	News(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error)
}

// ProfileProvider returns descriptive metadata for a symbol
type ProfileProvider interface {
	Profile(ctx context.Context, symbol string) (*model.Profile, error)
}

// Service assembles InsightsResult values from its providers
type Service struct {
	history  HistoryProvider
	quotes   QuoteProvider
	news     NewsProvider
	profiles ProfileProvider

	synthetic bool
	newsLimit int
	params    calculate.Params
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithSyntheticFallback enables the deterministic synthetic series when history is unavailable
func WithSyntheticFallback(enabled bool) Option {
	return func(s *Service) { s.synthetic = enabled }
}

// WithNewsLimit caps the number of headlines requested
func WithNewsLimit(n int) Option {
	return func(s *Service) { s.newsLimit = n }
}

// WithMetrics records pipeline metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger replaces the component logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithParams overrides the indicator windows
func WithParams(p calculate.Params) Option {
	return func(s *Service) { s.params = p }
}

// WithClock overrides the time source used for synthetic series and timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an insights service. Any provider may be nil, in which case
// that subsystem is treated as unavailable.
func NewService(history HistoryProvider, quotes QuoteProvider, news NewsProvider, profiles ProfileProvider, opts ...Option) *Service {
	s := &Service{
		history:   history,
		quotes:    quotes,
		news:      news,
		profiles:  profiles,
		synthetic: true,
		newsLimit: 10,
		params:    calculate.DefaultParams(),
		logger:    log.With().Str("component", "insights").Logger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate builds the full insights result for symbol. Provider failures degrade
// to fallbacks and are listed in Warnings; only missing history is fatal.
func (s *Service) Generate(ctx context.Context, symbol string, opts model.Options) (result *model.InsightsResult, err error) {
	start := s.now()
	defer func() { s.observe("insights", result, err, start) }()

	symbol, opts, err = normalize(symbol, opts)
	if err != nil {
		return nil, err
	}
	logger := s.logger.With().Str("symbol", symbol).Logger()

	f := s.fetch(ctx, symbol, opts)
	bars, synthetic, warnings, err := s.resolveHistory(symbol, opts, f, logger)
	if err != nil {
		return nil, err
	}

	quote := f.quote
	if f.quoteErr != nil || quote == nil {
		s.degrade("quote", &warnings, f.quoteErr, "quote unavailable, derived from history", logger)
		quote = SynthesizeQuote(symbol, bars)
	}

	news := f.news
	if f.newsErr != nil {
		s.degrade("news", &warnings, f.newsErr, "news unavailable", logger)
		news = []model.NewsItem{}
	}
	if news == nil {
		news = []model.NewsItem{}
	}

	profile := f.profile
	if f.profileErr != nil {
		s.degrade("profile", &warnings, f.profileErr, "profile unavailable", logger)
		profile = nil
	}

	computeStart := time.Now()
	result, err = s.compute(symbol, opts, bars)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCompute(len(bars), time.Since(computeStart))

	result.SyntheticHistory = synthetic
	result.Quote = quote
	result.News = news
	result.Profile = profile
	result.Warnings = warnings
	result.GeneratedAt = s.now()

	logger.Info().
		Int("bars", len(bars)).
		Bool("synthetic", synthetic).
		Int("warnings", len(warnings)).
		Msg("Insights generated")
	return result, nil
}

// RunLab runs the stop-loss/take-profit simulator against buy-and-hold for symbol
func (s *Service) RunLab(ctx context.Context, symbol string, opts model.Options) (lab *model.LabResult, err error) {
	start := s.now()
	defer func() { s.observe("lab", nil, err, start) }()

	symbol, opts, err = normalize(symbol, opts)
	if err != nil {
		return nil, err
	}
	logger := s.logger.With().Str("symbol", symbol).Logger()

	bars, histErr := s.fetchHistory(ctx, symbol, opts)
	bars, _, _, err = s.resolveHistory(symbol, opts, fetched{bars: bars, historyErr: histErr}, logger)
	if err != nil {
		return nil, err
	}

	set := calculate.CalculateAll(bars, s.params)
	signals, err := analyze.Classify(opts.Indicator, bars, set)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	lab, err = backtest.RunLab(bars, signals, opts.InitialCapital, opts.StopLossPct, opts.TakeProfitPct)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return lab, nil
}

// compute runs the pure part of the pipeline over bars
func (s *Service) compute(symbol string, opts model.Options, bars []model.Bar) (*model.InsightsResult, error) {
	set := calculate.CalculateAll(bars, s.params)
	snapshot := set.Snapshot()

	signals, err := analyze.Classify(opts.Indicator, bars, set)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	summary := analyze.Summarize(signals)

	sim, err := backtest.Simulate(bars, signals, opts.InitialCapital, backtest.Graduated())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	forecast := prediction.PredictFuturePrices(bars, opts.ForecastModel, opts.ForecastHorizon)
	targets := prediction.Targets(forecast)

	last := bars[len(bars)-1].Close
	return &model.InsightsResult{
		Symbol:            symbol,
		Options:           opts,
		History:           bars,
		Indicators:        snapshot,
		Momentum:          analyze.Momentum(bars),
		Signals:           signals,
		SignalSummary:     summary,
		Simulation:        sim.Equity,
		SimulationSummary: backtest.Summarize(sim, opts.InitialCapital),
		Trades:            nonNilTrades(sim.Trades),
		Forecast:          forecast,
		PriceTargets:      targets,
		TechnicalSummary: analyze.TechnicalSummary(analyze.SummaryInput{
			Symbol:   symbol,
			Close:    last,
			Snapshot: snapshot,
			Signals:  summary,
			Targets:  targets,
		}),
	}, nil
}

// resolveHistory applies the synthetic fallback to a failed or empty history fetch
func (s *Service) resolveHistory(symbol string, opts model.Options, f fetched, logger zerolog.Logger) ([]model.Bar, bool, []string, error) {
	var warnings []string
	if f.historyErr == nil && len(f.bars) > 0 {
		return f.bars, false, warnings, nil
	}

	cause := f.historyErr
	if cause == nil {
		cause = errors.New("provider returned no bars")
	}
	if !s.synthetic {
		logger.Error().Err(cause).Msg("History unavailable")
		return nil, false, nil, fmt.Errorf("%w for %s: %v", ErrNoHistory, symbol, cause)
	}

	s.degrade("history", &warnings, cause, "history unavailable, using a synthetic series", logger)
	bars := SyntheticHistory(symbol, opts.Range, opts.Interval, s.now())
	if len(bars) == 0 {
		return nil, false, nil, fmt.Errorf("%w for %s", ErrNoHistory, symbol)
	}
	return bars, true, warnings, nil
}

func (s *Service) degrade(subsystem string, warnings *[]string, cause error, message string, logger zerolog.Logger) {
	if cause != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: %s (%v)", subsystem, message, cause))
		logger.Warn().Err(cause).Str("subsystem", subsystem).Msg(message)
	} else {
		*warnings = append(*warnings, fmt.Sprintf("%s: %s", subsystem, message))
		logger.Warn().Str("subsystem", subsystem).Msg(message)
	}
	s.metrics.Fallback(subsystem)
}

func (s *Service) observe(operation string, result *model.InsightsResult, err error, start time.Time) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrInvalidInput):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	case result != nil && len(result.Warnings) > 0:
		outcome = "degraded"
	}
	s.metrics.ObserveRequest(operation, outcome, s.now().Sub(start))
}

// normalize fills empty string options with defaults and rejects invalid input.
// Numeric options are never defaulted.
func normalize(symbol string, opts model.Options) (string, model.Options, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", opts, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}

	defaults := model.DefaultOptions()
	if opts.Range == "" {
		opts.Range = defaults.Range
	}
	if opts.Interval == "" {
		opts.Interval = defaults.Interval
	}
	if opts.Indicator == "" {
		opts.Indicator = defaults.Indicator
	}
	if opts.ForecastModel == "" {
		opts.ForecastModel = defaults.ForecastModel
	}
	opts.Indicator = model.Indicator(strings.ToLower(string(opts.Indicator)))
	opts.ForecastModel = model.ForecastModel(strings.ToLower(string(opts.ForecastModel)))

	switch {
	case opts.InitialCapital <= 0 || !model.IsFinite(opts.InitialCapital):
		return "", opts, fmt.Errorf("%w: initial capital must be positive, got %v", ErrInvalidInput, opts.InitialCapital)
	case opts.ForecastHorizon < 0:
		return "", opts, fmt.Errorf("%w: forecast horizon must not be negative, got %d", ErrInvalidInput, opts.ForecastHorizon)
	case opts.StopLossPct < 0 || opts.TakeProfitPct < 0 || !model.IsFinite(opts.StopLossPct) || !model.IsFinite(opts.TakeProfitPct):
		return "", opts, fmt.Errorf("%w: stop-loss and take-profit must be finite and not negative", ErrInvalidInput)
	case !opts.Indicator.Valid():
		return "", opts, fmt.Errorf("%w: unknown indicator %q", ErrInvalidInput, opts.Indicator)
	case !opts.ForecastModel.Valid():
		return "", opts, fmt.Errorf("%w: unknown forecast model %q", ErrInvalidInput, opts.ForecastModel)
	}
	if _, ok := model.RangeDays(opts.Range); !ok {
		return "", opts, fmt.Errorf("%w: unsupported range %q", ErrInvalidInput, opts.Range)
	}
	if !model.ValidInterval(opts.Interval) {
		return "", opts, fmt.Errorf("%w: unsupported interval %q", ErrInvalidInput, opts.Interval)
	}
	return symbol, opts, nil
}

func nonNilTrades(trades []model.Trade) []model.Trade {
	if trades == nil {
		return []model.Trade{}
	}
	return trades
}

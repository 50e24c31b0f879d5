package yahoo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/insights/internal/model"
)

// ErrNotFound is returned when Yahoo has no quote for the symbol
var ErrNotFound = errors.New("symbol not found")

// Client fetches history, quotes and basic profiles from Yahoo Finance
type Client struct {
	maxRetries      int
	maxRetryTimeout time.Duration
	now             func() time.Time
	logger          zerolog.Logger
}

// ClientOptions holds options for creating a new Yahoo client
type ClientOptions struct {
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ClientOptions) *Client {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 20 * time.Second
	}
	return &Client{
		maxRetries:      opts.MaxRetries,
		maxRetryTimeout: opts.MaxRetryTimeout,
		now:             time.Now,
		logger:          log.With().Str("component", "yahoo_client").Logger(),
	}
}

// History fetches bars for the range ending today, oldest first
func (c *Client) History(ctx context.Context, symbol, rng, interval string) ([]model.Bar, error) {
	days, ok := model.RangeDays(rng)
	if !ok {
		return nil, fmt.Errorf("unsupported range %q", rng)
	}
	yInterval, err := toInterval(interval)
	if err != nil {
		return nil, err
	}

	end := c.now()
	start := end.AddDate(0, 0, -days)
	symbol = strings.ToUpper(symbol)

	var bars []model.Bar
	err = c.retry(ctx, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: yInterval,
		}

		iter := chart.Get(params)

		bars = make([]model.Bar, 0)
		for iter.Next() {
			bars = append(bars, toBar(iter.Bar()))
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("symbol", symbol).Int("count", len(bars)).Msg("Fetched bars")
	return bars, nil
}

// Quote fetches the current regular-session quote
func (c *Client) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	symbol = strings.ToUpper(symbol)

	var result *model.Quote
	err := c.retry(ctx, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, symbol))
		}

		result = &model.Quote{
			Symbol:        symbol,
			Price:         q.RegularMarketPrice,
			PreviousClose: q.RegularMarketPreviousClose,
			Change:        q.RegularMarketChange,
			ChangePercent: q.RegularMarketChangePercent,
			AverageVolume: float64(q.AverageDailyVolume10Day),
			Currency:      q.CurrencyID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Profile builds descriptive metadata from the quote endpoint
func (c *Client) Profile(ctx context.Context, symbol string) (*model.Profile, error) {
	symbol = strings.ToUpper(symbol)

	var result *model.Profile
	err := c.retry(ctx, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("failed to get profile for %s: %w", symbol, err)
		}
		if q == nil {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, symbol))
		}
		result = &model.Profile{
			Symbol:   symbol,
			Name:     q.ShortName,
			Exchange: q.FullExchangeName,
			Currency: q.CurrencyID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) retry(ctx context.Context, operation backoff.Operation) error {
	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxRetryTimeout

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Dur("retry_in", wait).Msg("Yahoo request failed, retrying")
	}
	return backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(strategy, uint64(c.maxRetries)), ctx), notify)
}

// toBar converts a finance-go chart bar. Zero volume is reported as missing.
func toBar(b *finance.ChartBar) model.Bar {
	bar := model.Bar{
		Date:  time.Unix(int64(b.Timestamp), 0).UTC(),
		Open:  toFloat(b.Open),
		High:  toFloat(b.High),
		Low:   toFloat(b.Low),
		Close: toFloat(b.Close),
	}
	if b.Volume > 0 {
		v := float64(b.Volume)
		bar.Volume = &v
	}
	return bar
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// toInterval maps pipeline intervals onto Yahoo chart intervals
func toInterval(interval string) (datetime.Interval, error) {
	switch strings.ToLower(interval) {
	case "1d":
		return datetime.OneDay, nil
	case "1wk":
		return datetime.Interval("1wk"), nil
	case "1mo":
		return datetime.OneMonth, nil
	}
	return "", fmt.Errorf("unsupported interval %q", interval)
}

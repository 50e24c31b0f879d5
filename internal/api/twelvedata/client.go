package twelvedata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/insights/internal/model"
	httpClient "github.com/Alias1177/insights/internal/platform/http"
)

const (
	defaultBaseURL = "https://api.twelvedata.com"
	maxOutputSize  = 5000
)

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// History fetches daily (or weekly/monthly) bars covering the range, oldest first
func (c *Client) History(ctx context.Context, symbol, rng, interval string) ([]model.Bar, error) {
	days, ok := model.RangeDays(rng)
	if !ok {
		return nil, fmt.Errorf("unsupported range %q", rng)
	}
	tdInterval, err := toInterval(interval)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", tdInterval)
	params.Set("outputsize", strconv.Itoa(outputSize(tdInterval, days)))
	params.Set("apikey", c.apiKey)

	c.logger.Debug().Str("symbol", symbol).Str("interval", tdInterval).Int("days", days).Msg("Fetching bars")

	var data model.TwelveResponse
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/time_series?"+params.Encode(), &data); err != nil {
		return nil, fmt.Errorf("twelve data time_series: %w", err)
	}
	if data.Status == "error" {
		c.logger.Error().Str("message", data.Message).Msg("Twelve Data API error")
		return nil, fmt.Errorf("twelve data API error: %s", data.Message)
	}
	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No bars in response")
		return nil, fmt.Errorf("empty data returned for %s", symbol)
	}

	// Sort by datetime (oldest first for proper calculations)
	sort.Slice(data.Values, func(i, j int) bool {
		return data.Values[i].Datetime < data.Values[j].Datetime
	})

	bars := make([]model.Bar, 0, len(data.Values))
	for _, v := range data.Values {
		date, err := parseDatetime(v.Datetime)
		if err != nil {
			c.logger.Warn().Err(err).Str("datetime", v.Datetime).Msg("Skipping bar")
			continue
		}
		bars = append(bars, model.Bar{
			Date:   date,
			Open:   v.Open,
			High:   v.High,
			Low:    v.Low,
			Close:  v.Close,
			Volume: parseVolume(v.Volume),
		})
	}

	c.logger.Debug().Int("count", len(bars)).Msg("Fetched bars")
	return bars, nil
}

// quoteResponse is the subset of /quote the pipeline uses
type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Currency      string `json:"currency"`
	Close         string `json:"close"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
	AverageVolume string `json:"average_volume"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// Quote fetches the latest quote for symbol
func (c *Client) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	var data quoteResponse
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/quote?"+params.Encode(), &data); err != nil {
		return nil, fmt.Errorf("twelve data quote: %w", err)
	}
	if data.Status == "error" {
		return nil, fmt.Errorf("twelve data API error: %s", data.Message)
	}

	price, err := strconv.ParseFloat(data.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quote price %q: %w", data.Close, err)
	}
	q := &model.Quote{
		Symbol:   symbol,
		Price:    price,
		Currency: data.Currency,
	}
	q.PreviousClose, _ = strconv.ParseFloat(data.PreviousClose, 64)
	q.Change, _ = strconv.ParseFloat(data.Change, 64)
	q.ChangePercent, _ = strconv.ParseFloat(data.PercentChange, 64)
	q.AverageVolume, _ = strconv.ParseFloat(data.AverageVolume, 64)
	return q, nil
}

// toInterval maps pipeline intervals onto Twelve Data names
func toInterval(interval string) (string, error) {
	switch strings.ToLower(interval) {
	case "1d":
		return "1day", nil
	case "1wk":
		return "1week", nil
	case "1mo":
		return "1month", nil
	}
	return "", fmt.Errorf("unsupported interval %q", interval)
}

// outputSize estimates how many bars cover days calendar days
func outputSize(interval string, days int) int {
	var count float64

	switch interval {
	case "1week":
		count = float64(days) / 7
	case "1month":
		count = float64(days) / 30
	default:
		// roughly 252 trading days per 365 calendar days
		count = float64(days) * 252 / 365
	}

	// Add a buffer for holidays and partial periods
	size := int(count*1.1) + 1
	if size > maxOutputSize {
		size = maxOutputSize
	}
	return size
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

func parseVolume(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return model.Float(v)
}

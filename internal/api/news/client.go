package news

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/insights/internal/model"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	defaultUserAgent = "Mozilla/5.0 (compatible; insights/1.0)"
)

// Client fetches symbol headlines from the Yahoo Finance search endpoint
type Client struct {
	client *resty.Client
	logger zerolog.Logger
}

// ClientOptions holds options for creating a new news client
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	UserAgent  string
}

// searchResponse is the subset of /v1/finance/search the client reads
type searchResponse struct {
	News []struct {
		UUID                string `json:"uuid"`
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// NewClient creates a new news client
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{
		client: client,
		logger: log.With().Str("component", "news_client").Logger(),
	}
}

// News returns up to limit headlines for symbol, newest first as served
func (c *Client) News(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error) {
	if limit <= 0 {
		return []model.NewsItem{}, nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           symbol,
			"newsCount":   strconv.Itoa(limit),
			"quotesCount": "0",
		}).
		SetResult(&searchResponse{}).
		Get("/v1/finance/search")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("news API error %d: %s", resp.StatusCode(), resp.Status())
	}

	result, ok := resp.Result().(*searchResponse)
	if !ok || result == nil {
		return nil, fmt.Errorf("failed to parse news response for %s", symbol)
	}

	items := make([]model.NewsItem, 0, len(result.News))
	for _, n := range result.News {
		if n.Title == "" {
			continue
		}
		items = append(items, model.NewsItem{
			Title:       n.Title,
			Publisher:   n.Publisher,
			Link:        n.Link,
			PublishedAt: time.Unix(n.ProviderPublishTime, 0).UTC(),
		})
		if len(items) == limit {
			break
		}
	}

	c.logger.Debug().Str("symbol", symbol).Int("count", len(items)).Msg("Fetched news")
	return items, nil
}

package cli

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/insights/config"
	"github.com/Alias1177/insights/internal/api/news"
	"github.com/Alias1177/insights/internal/api/twelvedata"
	"github.com/Alias1177/insights/internal/api/yahoo"
	"github.com/Alias1177/insights/internal/database"
	"github.com/Alias1177/insights/internal/insights"
	"github.com/Alias1177/insights/internal/metrics"
)

// deps are the long-lived collaborators shared by every command
type deps struct {
	service *insights.Service
	db      *database.DB // nil without DATABASE_URL
}

func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
}

// buildDeps wires providers, storage and the insights service from cfg
func buildDeps(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*deps, error) {
	yahooClient := yahoo.NewClient(yahoo.ClientOptions{
		MaxRetries:      cfg.MaxRetries,
		MaxRetryTimeout: cfg.Timeout(),
	})

	var (
		history insights.HistoryProvider = yahooClient
		quotes  insights.QuoteProvider   = yahooClient
	)
	if cfg.HistoryProvider == "twelvedata" {
		td := twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:          cfg.TwelveAPIKey,
			BaseURL:         cfg.TwelveBaseURL,
			RequestTimeout:  cfg.Timeout(),
			RequestsPerSec:  cfg.RequestsPerSec,
			MaxRetries:      cfg.MaxRetries,
			MaxRetryTimeout: cfg.Timeout(),
		})
		history, quotes = td, td
	}

	newsClient := news.NewClient(news.ClientOptions{
		BaseURL:    cfg.NewsBaseURL,
		Timeout:    cfg.Timeout(),
		RetryCount: cfg.MaxRetries,
	})

	d := &deps{}
	var repo database.ProfileRepository
	if cfg.DatabaseURL != "" {
		db, err := database.New(ctx, database.ConnectionParams{URL: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		d.db = db
		repo = db
	} else {
		log.Info().Msg("DATABASE_URL not set, profiles are cached in memory only")
	}
	profiles := database.NewProfileStore(repo, yahooClient, cfg.CacheTTL())

	d.service = insights.NewService(history, quotes, newsClient, profiles,
		insights.WithSyntheticFallback(cfg.SyntheticFallback),
		insights.WithNewsLimit(cfg.NewsLimit),
		insights.WithMetrics(m),
	)
	return d, nil
}

package insights

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Alias1177/insights/internal/model"
)

var errNoProvider = errors.New("provider not configured")

// fetched holds the raw outcome of every provider call for one request
type fetched struct {
	bars       []model.Bar
	historyErr error

	quote    *model.Quote
	quoteErr error

	news    []model.NewsItem
	newsErr error

	profile    *model.Profile
	profileErr error
}

// fetch queries all providers concurrently and waits for every call to finish
func (s *Service) fetch(ctx context.Context, symbol string, opts model.Options) fetched {
	var (
		f  fetched
		wg sync.WaitGroup
	)
	wg.Add(4)

	go func() {
		defer wg.Done()
		f.bars, f.historyErr = s.fetchHistory(ctx, symbol, opts)
	}()

	go func() {
		defer wg.Done()
		if s.quotes == nil {
			f.quoteErr = errNoProvider
			return
		}
		f.quote, f.quoteErr = s.quotes.Quote(ctx, symbol)
		s.countError("quote", f.quoteErr)
	}()

	go func() {
		defer wg.Done()
		if s.news == nil {
			f.newsErr = errNoProvider
			return
		}
		f.news, f.newsErr = s.news.News(ctx, symbol, s.newsLimit)
		s.countError("news", f.newsErr)
	}()

	go func() {
		defer wg.Done()
		if s.profiles == nil {
			f.profileErr = errNoProvider
			return
		}
		f.profile, f.profileErr = s.profiles.Profile(ctx, symbol)
		s.countError("profile", f.profileErr)
	}()

	wg.Wait()
	return f
}

// fetchHistory returns provider bars sorted ascending by date
func (s *Service) fetchHistory(ctx context.Context, symbol string, opts model.Options) ([]model.Bar, error) {
	if s.history == nil {
		return nil, errNoProvider
	}
	bars, err := s.history.History(ctx, symbol, opts.Range, opts.Interval)
	if err != nil {
		s.countError("history", err)
		return nil, err
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
	return bars, nil
}

func (s *Service) countError(provider string, err error) {
	if err != nil {
		s.metrics.ProviderError(provider)
	}
}

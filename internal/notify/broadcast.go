package notify

import (
	"context"
	"fmt"

	"github.com/Alias1177/insights/internal/database"
	"github.com/Alias1177/insights/internal/model"
)

// SubscriptionSource lists subscribed chats and records deliveries
type SubscriptionSource interface {
	Subscriptions(ctx context.Context) ([]database.Subscription, error)
	MarkSent(ctx context.Context, chatID int64) error
}

// BroadcastStats summarizes one broadcast run.
// SymbolErrors counts symbols whose insights could not be generated;
// SendFailed counts generated summaries Telegram did not accept.
type BroadcastStats struct {
	Chats        int
	Sent         int
	SymbolErrors int
	SendFailed   int
}

// Broadcaster generates insights once per symbol and delivers them to every subscribed chat
type Broadcaster struct {
	notifier *Notifier
	insights InsightsGenerator
	subs     SubscriptionSource
	opts     model.Options
}

// NewBroadcaster creates a broadcaster. subs may be nil when only static targets are used.
func NewBroadcaster(notifier *Notifier, insights InsightsGenerator, subs SubscriptionSource, opts model.Options) *Broadcaster {
	return &Broadcaster{notifier: notifier, insights: insights, subs: subs, opts: opts}
}

// Run delivers summaries to every subscription plus the optional static chat
func (b *Broadcaster) Run(ctx context.Context, staticChatID int64, staticSymbols []string) (BroadcastStats, error) {
	var targets []database.Subscription
	if b.subs != nil {
		subs, err := b.subs.Subscriptions(ctx)
		if err != nil {
			return BroadcastStats{}, fmt.Errorf("list subscriptions: %w", err)
		}
		targets = subs
	}
	if staticChatID != 0 && len(staticSymbols) > 0 {
		targets = append(targets, database.Subscription{ChatID: staticChatID, Symbols: staticSymbols})
	}

	stats := BroadcastStats{Chats: len(targets)}
	results := make(map[string]*model.InsightsResult)
	failed := make(map[string]bool)

	for _, target := range targets {
		var batch []*model.InsightsResult
		for _, symbol := range target.Symbols {
			if failed[symbol] {
				continue
			}
			res, ok := results[symbol]
			if !ok {
				var err error
				res, err = b.insights.Generate(ctx, symbol, b.opts)
				if err != nil {
					b.notifier.logger.Warn().Err(err).Str("symbol", symbol).Msg("Skipping symbol")
					failed[symbol] = true
					stats.SymbolErrors++
					continue
				}
				results[symbol] = res
			}
			batch = append(batch, res)
		}

		sent, err := b.notifier.Broadcast(target.ChatID, batch)
		stats.Sent += sent
		stats.SendFailed += len(batch) - sent
		if err != nil || sent == 0 || b.subs == nil || target.ChatID == staticChatID {
			continue
		}
		if err := b.subs.MarkSent(ctx, target.ChatID); err != nil {
			b.notifier.logger.Warn().Err(err).Int64("chat_id", target.ChatID).Msg("Failed to record delivery")
		}
	}
	return stats, nil
}

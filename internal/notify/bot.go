package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/insights/internal/model"
)

const helpText = `Commands:
/insights SYMBOL - technical outlook, simulation and forecast
/subscribe SYMBOL [SYMBOL...] - receive a daily summary for these symbols
/help - this message`

// InsightsGenerator produces insights for a symbol
type InsightsGenerator interface {
	Generate(ctx context.Context, symbol string, opts model.Options) (*model.InsightsResult, error)
}

// SubscriptionStore persists the symbols a chat wants broadcast
type SubscriptionStore interface {
	Subscribe(ctx context.Context, chatID int64, symbols []string) error
}

// Bot answers chat commands with insights
type Bot struct {
	notifier *Notifier
	insights InsightsGenerator
	subs     SubscriptionStore
	opts     model.Options
	logger   zerolog.Logger
}

// NewBot creates a command handler. subs may be nil, which disables /subscribe.
func NewBot(notifier *Notifier, insights InsightsGenerator, subs SubscriptionStore, opts model.Options) *Bot {
	return &Bot{
		notifier: notifier,
		insights: insights,
		subs:     subs,
		opts:     opts,
		logger:   log.With().Str("component", "telegram_bot").Logger(),
	}
}

// Run handles updates until ctx is done or the channel closes
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage processes one incoming message
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message == nil || message.Chat == nil {
		return
	}
	chatID := message.Chat.ID

	var err error
	switch message.Command() {
	case "insights":
		err = b.handleInsights(ctx, chatID, message.CommandArguments())
	case "subscribe":
		err = b.handleSubscribe(ctx, chatID, message.CommandArguments())
	default:
		err = b.notifier.SendText(chatID, helpText)
	}
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Str("text", message.Text).Msg("Failed to handle message")
	}
}

func (b *Bot) handleInsights(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return b.notifier.SendText(chatID, "Usage: /insights SYMBOL")
	}
	symbol := strings.ToUpper(fields[0])

	res, err := b.insights.Generate(ctx, symbol, b.opts)
	if err != nil {
		b.logger.Warn().Err(err).Str("symbol", symbol).Msg("Insights failed")
		return b.notifier.SendText(chatID, userMessage(symbol, err))
	}
	return b.notifier.SendInsights(chatID, res)
}

func (b *Bot) handleSubscribe(ctx context.Context, chatID int64, args string) error {
	if b.subs == nil {
		return b.notifier.SendText(chatID, "Subscriptions are not available.")
	}
	symbols := strings.Fields(strings.ToUpper(strings.ReplaceAll(args, ",", " ")))
	if len(symbols) == 0 {
		return b.notifier.SendText(chatID, "Usage: /subscribe SYMBOL [SYMBOL...]")
	}
	if err := b.subs.Subscribe(ctx, chatID, symbols); err != nil {
		b.notifier.SendText(chatID, "Sorry, there was an error. Please try again later.")
		return fmt.Errorf("subscribe: %w", err)
	}
	return b.notifier.SendText(chatID, "Subscribed to "+strings.Join(symbols, ", ")+".")
}

func userMessage(symbol string, err error) string {
	return fmt.Sprintf("Could not build insights for %s: %v", symbol, err)
}

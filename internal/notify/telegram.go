package notify

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/insights/internal/model"
)

// Telegram allows 30 messages per second for bots
const defaultSendDelay = 50 * time.Millisecond

// Sender is the part of *tgbotapi.BotAPI the notifier uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers insights summaries to Telegram chats
type Notifier struct {
	bot    Sender
	delay  time.Duration
	logger zerolog.Logger
}

// NewNotifier creates a notifier over bot
func NewNotifier(bot Sender) *Notifier {
	return &Notifier{
		bot:    bot,
		delay:  defaultSendDelay,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}
}

// SendText sends a plain text message to chatID
func (n *Notifier) SendText(chatID int64, text string) error {
	if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}

// SendInsights formats res and sends it to chatID
func (n *Notifier) SendInsights(chatID int64, res *model.InsightsResult) error {
	return n.SendText(chatID, FormatInsights(res))
}

// Broadcast sends every result to chatID, pausing between messages.
// It returns the number of messages delivered and the first error seen.
func (n *Notifier) Broadcast(chatID int64, results []*model.InsightsResult) (int, error) {
	sent := 0
	var firstErr error
	for i, res := range results {
		if err := n.SendInsights(chatID, res); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Str("symbol", res.Symbol).Msg("Failed to send insights")
			if firstErr == nil {
				firstErr = err
			}
		} else {
			sent++
		}
		if i < len(results)-1 && n.delay > 0 {
			time.Sleep(n.delay)
		}
	}
	return sent, firstErr
}

// FormatInsights renders a compact plain text report for a chat message
func FormatInsights(res *model.InsightsResult) string {
	if res == nil {
		return ""
	}
	var b strings.Builder

	b.WriteString(res.Symbol)
	if q := res.Quote; q != nil {
		fmt.Fprintf(&b, " %s (%+.2f%%)", money(q.Price), q.ChangePercent)
		if q.Synthetic {
			b.WriteString(" [derived]")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(res.TechnicalSummary)
	b.WriteString("\n\n")

	s := res.SignalSummary
	fmt.Fprintf(&b, "Signals (%s): %d buy / %d sell / %d hold\n", res.Options.Indicator, s.Buy, s.Sell, s.Hold)

	sim := res.SimulationSummary
	fmt.Fprintf(&b, "Simulation: %s -> %s (%+.2f%%), max drawdown %.2f%%, %d trades\n",
		money(sim.InitialCapital), money(sim.FinalValue), sim.TotalReturnPct, sim.MaxDrawdown*100, sim.TradeCount)

	if t := res.PriceTargets; t != nil {
		fmt.Fprintf(&b, "Forecast (%s, %dd): %s, range %s to %s\n",
			res.Options.ForecastModel, len(res.Forecast), money(t.Base), money(t.Conservative), money(t.Optimistic))
	}

	if res.SyntheticHistory {
		b.WriteString("\nHistory is synthetic: the price provider was unavailable.\n")
	}
	if len(res.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range res.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/insights/config"
	"github.com/Alias1177/insights/internal/metrics"
	"github.com/Alias1177/insights/internal/model"
	"github.com/Alias1177/insights/internal/notify"
	"github.com/Alias1177/insights/internal/server"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "insights",
		Short:         "Technical insights, strategy simulation and price forecasts for stocks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				loaded.LogLevel = "debug"
			}
			setupLogging(loaded.LogLevel)
			cfg = loaded
			return nil
		},
	}
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	// cfg is only populated once PersistentPreRunE has run
	current := func() *config.Config { return cfg }

	rootCmd.AddCommand(newAnalyzeCmd(current))
	rootCmd.AddCommand(newLabCmd(current))
	rootCmd.AddCommand(newServeCmd(current))
	rootCmd.AddCommand(newBotCmd(current))
	rootCmd.AddCommand(newSubscribeCmd(current))
	rootCmd.AddCommand(newBroadcastCmd(current))
	return rootCmd
}

// setupLogging configures the global logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

func addOptionFlags(cmd *cobra.Command) {
	cmd.Flags().String("range", "", "History range: 1mo, 3mo, 6mo, 1y, 2y, 5y")
	cmd.Flags().String("interval", "", "Bar interval: 1d, 1wk, 1mo")
	cmd.Flags().String("indicator", "", "Signal indicator: sma, rsi, macd, bollinger, stochastic")
	cmd.Flags().String("model", "", "Forecast model: simple, arima, prophet")
	cmd.Flags().Int("horizon", -1, "Forecast horizon in calendar days")
	cmd.Flags().Float64("capital", 0, "Initial capital")
	cmd.Flags().Float64("stop-loss", -1, "Stop-loss percent")
	cmd.Flags().Float64("take-profit", -1, "Take-profit percent")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
}

// optionsFromFlags overlays explicitly set flags on the configured defaults
func optionsFromFlags(cmd *cobra.Command, cfg *config.Config) model.Options {
	opts := cfg.Options()
	flags := cmd.Flags()

	if flags.Changed("range") {
		opts.Range, _ = flags.GetString("range")
	}
	if flags.Changed("interval") {
		opts.Interval, _ = flags.GetString("interval")
	}
	if flags.Changed("indicator") {
		v, _ := flags.GetString("indicator")
		opts.Indicator = model.Indicator(v)
	}
	if flags.Changed("model") {
		v, _ := flags.GetString("model")
		opts.ForecastModel = model.ForecastModel(v)
	}
	if flags.Changed("horizon") {
		opts.ForecastHorizon, _ = flags.GetInt("horizon")
	}
	if flags.Changed("capital") {
		opts.InitialCapital, _ = flags.GetFloat64("capital")
	}
	if flags.Changed("stop-loss") {
		opts.StopLossPct, _ = flags.GetFloat64("stop-loss")
	}
	if flags.Changed("take-profit") {
		opts.TakeProfitPct, _ = flags.GetFloat64("take-profit")
	}
	return opts
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Build the full insights report for a symbol",
		Long: `Fetch history, quote, news and profile for a symbol, compute indicators and
signals, simulate the graduated strategy and project prices.
Example: insights analyze AAPL --indicator=rsi --model=prophet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := buildDeps(ctx, cfg(), nil)
			if err != nil {
				return err
			}
			defer d.Close()

			res, err := d.service.Generate(ctx, args[0], optionsFromFlags(cmd, cfg()))
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), notify.FormatInsights(res))
			return nil
		},
	}
	addOptionFlags(cmd)
	return cmd
}

// newLabCmd creates the lab command
func newLabCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lab SYMBOL",
		Short: "Compare the stop-loss/take-profit strategy against buy-and-hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := buildDeps(ctx, cfg(), nil)
			if err != nil {
				return err
			}
			defer d.Close()

			lab, err := d.service.RunLab(ctx, args[0], optionsFromFlags(cmd, cfg()))
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), lab)
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatLab(strings.ToUpper(args[0]), lab))
			return nil
		},
	}
	addOptionFlags(cmd)
	return cmd
}

// newServeCmd creates the serve command
func newServeCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve insights over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = c.HTTPAddr
			}

			m := metrics.NewMetrics(prometheus.NewRegistry())
			d, err := buildDeps(cmd.Context(), c, m)
			if err != nil {
				return err
			}
			defer d.Close()

			origins, _ := cmd.Flags().GetStringSlice("allow-origin")
			router := server.NewRouter(d.service, m, server.Options{
				Defaults:       c.Options(),
				AllowOrigins:   origins,
				RatePerSecond:  5,
				RateBurst:      15,
				RequestTimeout: 2 * c.Timeout(),
			})

			srv := &http.Server{Addr: addr, Handler: router}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			log.Info().Str("addr", addr).Msg("Server started")

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-cmd.Context().Done():
				log.Info().Msg("Shutdown signal received, stopping server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().String("addr", "", "Listen address (defaults to HTTP_ADDR)")
	cmd.Flags().StringSlice("allow-origin", nil, "CORS origins allowed to call the API")
	return cmd
}

// newBotCmd creates the bot command
func newBotCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Answer /insights and /subscribe commands on Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if c.TelegramToken == "" {
				return errors.New("TELEGRAM_BOT_TOKEN not set in environment")
			}

			d, err := buildDeps(cmd.Context(), c, nil)
			if err != nil {
				return err
			}
			defer d.Close()

			api, err := tgbotapi.NewBotAPI(c.TelegramToken)
			if err != nil {
				return fmt.Errorf("initialize Telegram bot: %w", err)
			}
			log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

			var subs notify.SubscriptionStore
			if d.db != nil {
				subs = d.db
			}
			bot := notify.NewBot(notify.NewNotifier(api), d.service, subs, c.Options())

			updateConfig := tgbotapi.NewUpdate(0)
			updateConfig.Timeout = 60
			updates := api.GetUpdatesChan(updateConfig)
			defer api.StopReceivingUpdates()

			bot.Run(cmd.Context(), updates)
			return nil
		},
	}
}

// newSubscribeCmd creates the subscribe command
func newSubscribeCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe CHAT_ID SYMBOL...",
		Short: "Register the symbols a Telegram chat receives in broadcasts",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var chatID int64
			if _, err := fmt.Sscanf(args[0], "%d", &chatID); err != nil {
				return fmt.Errorf("invalid chat id %q", args[0])
			}

			d, err := buildDeps(cmd.Context(), cfg(), nil)
			if err != nil {
				return err
			}
			defer d.Close()
			if d.db == nil {
				return errors.New("DATABASE_URL is required for subscriptions")
			}

			if err := d.db.Subscribe(cmd.Context(), chatID, args[1:]); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "chat %d subscribed to %s\n", chatID, strings.ToUpper(strings.Join(args[1:], ", ")))
			return nil
		},
	}
}

// newBroadcastCmd creates the broadcast command
func newBroadcastCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "broadcast",
		Short: "Send summaries to every subscribed Telegram chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if c.TelegramToken == "" {
				return errors.New("TELEGRAM_BOT_TOKEN not set in environment")
			}

			d, err := buildDeps(cmd.Context(), c, nil)
			if err != nil {
				return err
			}
			defer d.Close()

			api, err := tgbotapi.NewBotAPI(c.TelegramToken)
			if err != nil {
				return fmt.Errorf("initialize Telegram bot: %w", err)
			}

			var subs notify.SubscriptionSource
			if d.db != nil {
				subs = d.db
			} else if c.TelegramChatID == 0 {
				return errors.New("nothing to broadcast: set DATABASE_URL or TELEGRAM_CHAT_ID")
			}

			stats, err := notify.NewBroadcaster(notify.NewNotifier(api), d.service, subs, c.Options()).
				Run(cmd.Context(), c.TelegramChatID, c.BroadcastSymbols)
			if err != nil {
				return err
			}
			log.Info().
				Int("chats", stats.Chats).
				Int("sent", stats.Sent).
				Int("symbol_errors", stats.SymbolErrors).
				Int("send_failed", stats.SendFailed).
				Msg("Broadcast completed")
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/insights/internal/cli"
)

// broadcast is the cron-friendly entry point for "insights broadcast"
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd()
	root.SetArgs(append([]string{"broadcast"}, os.Args[1:]...))
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Broadcast failed")
		stop()
		os.Exit(1)
	}
}

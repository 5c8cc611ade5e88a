// Command random connects a randomly-acting bot to a server and plays
// until the match ends.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemarena/sdk"
	"github.com/lox/holdemarena/sdk/bots/random"
)

func main() {
	server := flag.String("server", "http://localhost:3000", "server URL")
	gameID := flag.String("game", "", "game to join")
	name := flag.String("name", "random-bot", "bot display name")
	chips := flag.Int("chips", 1000, "buy-in")
	seed := flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *gameID == "" {
		logger.Fatal("-game is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bot := sdk.NewBot(*server, *name, random.New(*seed), logger)
	if err := bot.Join(ctx, *gameID, *chips); err != nil {
		logger.Fatal("failed to join", "error", err)
	}
	logger.Info("playing", "game", *gameID, "player", bot.PlayerID())

	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("bot stopped", "error", err)
	}
}

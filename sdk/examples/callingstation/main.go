// Command callingstation connects a bot that checks or calls every
// decision. If the game does not exist it is created first, so two copies
// of this program make a self-playing table.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemarena/sdk"
	"github.com/lox/holdemarena/sdk/bots/callingstation"
)

func main() {
	server := flag.String("server", "http://localhost:3000", "server URL")
	gameID := flag.String("game", "station", "game to join, created if missing")
	name := flag.String("name", "calling-station", "bot display name")
	chips := flag.Int("chips", 1000, "buy-in")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	api := sdk.NewClient(*server)
	if _, err := api.GameInfo(ctx, *gameID); err != nil {
		var apiErr *sdk.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != "UnknownGame" {
			logger.Fatal("failed to look up game", "error", err)
		}
		if _, err := api.CreateGame(ctx, *gameID, sdk.GameConfig{SmallBlind: 10, BigBlind: 20}); err != nil {
			logger.Fatal("failed to create game", "error", err)
		}
		logger.Info("created game", "game", *gameID)
	}

	bot := sdk.NewBot(*server, *name, callingstation.Agent{}, logger)
	if err := bot.Join(ctx, *gameID, *chips); err != nil {
		logger.Fatal("failed to join", "error", err)
	}
	logger.Info("playing", "game", *gameID, "player", bot.PlayerID())

	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("bot stopped", "error", err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemarena/internal/bus"
	"github.com/lox/holdemarena/internal/controller"
	"github.com/lox/holdemarena/internal/replay"
	"github.com/lox/holdemarena/internal/server"
)

// ServeCmd runs the server until interrupted.
type ServeCmd struct {
	Config  string `kong:"default='holdemarena.hcl',help='Path to HCL config file'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	Monitor bool   `kong:"help='Print a live event feed to stdout'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           logLevel(cfg.Server.LogLevel, c.Debug),
	})

	b := bus.New(logger)
	rec := replay.NewRecorder(logger)
	sink, err := replay.NewFileSink(cfg.Server.ReplayDir, cfg.Server.ExportPHH, logger)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, logger, b, rec, sink)
	clock := quartz.NewReal()
	ctrl := controller.New(logger, clock, b, rec,
		controller.WithTurnNotifier(srv.NotifyTurn))
	srv.SetController(ctrl)

	for _, gb := range cfg.Games {
		if err := ctrl.CreateGame(gb.Name, gb.GameConfig()); err != nil {
			return fmt.Errorf("create game %q: %w", gb.Name, err)
		}
		logger.Info("created configured game", "gameId", gb.Name)
	}

	saver := replay.NewAutoSaver(rec, sink, clock, cfg.AutosaveInterval(), logger)
	saver.Start()

	if c.Monitor || cfg.Server.Monitor {
		monitor := server.NewMonitor(os.Stdout, b)
		defer monitor.Stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})

	err = g.Wait()
	saver.Stop()
	ctrl.Destroy()
	return err
}

func logLevel(configured string, debug bool) log.Level {
	if debug {
		return log.DebugLevel
	}
	level, err := log.ParseLevel(configured)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

package main

import (
	"fmt"
	"os"

	"github.com/sanity-io/litter"

	"github.com/lox/holdemarena/internal/replay"
)

// ReplayCmd groups replay file tooling.
type ReplayCmd struct {
	Inspect InspectCmd `cmd:"" help:"Dump a replay file's structure"`
	Analyze AnalyzeCmd `cmd:"" help:"Print per-player statistics and key moments"`
}

// InspectCmd pretty-prints a replay file.
type InspectCmd struct {
	File   string `kong:"arg,help='Replay JSON file'"`
	Hand   int    `kong:"help='Dump only this hand number'"`
	Events bool   `kong:"help='Include the full event list'"`
}

func (c *InspectCmd) Run() error {
	d, err := loadReplayFile(c.File)
	if err != nil {
		return err
	}

	dumper := litter.Options{HidePrivateFields: true, HomePackage: "replay"}

	fmt.Printf("game %s: %d events, %d hands\n\n", d.GameID, len(d.Events), d.Metadata.HandCount)
	dumper.Dump(d.Metadata)

	if c.Hand > 0 {
		events := d.HandEvents(c.Hand)
		if events == nil {
			return fmt.Errorf("hand %d not found in replay %s", c.Hand, d.GameID)
		}
		fmt.Printf("\nhand %d (%d events):\n", c.Hand, len(events))
		dumper.Dump(events)
		return nil
	}

	fmt.Printf("\ncheckpoints:\n")
	dumper.Dump(d.Checkpoints)

	if c.Events {
		fmt.Printf("\nevents:\n")
		dumper.Dump(d.Events)
	}
	return nil
}

// AnalyzeCmd runs the analyzer over a replay file.
type AnalyzeCmd struct {
	File string `kong:"arg,help='Replay JSON file'"`
}

func (c *AnalyzeCmd) Run() error {
	d, err := loadReplayFile(c.File)
	if err != nil {
		return err
	}

	analysis := replay.Analyze(d)
	litter.Options{HidePrivateFields: true}.Dump(analysis)
	return nil
}

func loadReplayFile(path string) (*replay.Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := replay.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("parse replay %s: %w", path, err)
	}
	return d, nil
}

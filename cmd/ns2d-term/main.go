package main

import (
	"context"
	"flag"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"chosenoffset.com/ns2d/internal/entity"
	"chosenoffset.com/ns2d/internal/logger"
	"chosenoffset.com/ns2d/internal/simulation"
	"chosenoffset.com/ns2d/internal/terminal"
	"chosenoffset.com/ns2d/internal/ui/dialog"
	"chosenoffset.com/ns2d/internal/world/levelscan"
	"chosenoffset.com/ns2d/internal/world/maploader"

	"github.com/gdamore/tcell/v2"
)

func main() {
	dataDir := flag.String("data", "data", "Data directory holding level packs")
	configPath := flag.String("config", "data/simulation.yaml", "Simulation config (JSON or YAML)")
	levelName := flag.String("level", "", "Level to play, as pack/level or level")
	dialogPath := flag.String("dialog", "data/dialog.yaml", "Dialog lines (YAML)")
	logPath := flag.String("log", "", "Write logs to this file (logs are discarded otherwise)")
	flag.Parse()

	// the screen owns stdout, so logs go to a file or nowhere
	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	cfg, err := simulation.LoadConfig(*configPath)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: out})
	log := logger.L()

	levels, err := levelscan.Playlist(*dataDir, *levelName)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	level, err := maploader.LoadLevel(levels[0])
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	lib, err := entity.LoadLibrary(filepath.Join(*dataDir, "entities.json"))
	if err != nil {
		log.Warn("using built-in entities", "error", err)
		lib = entity.DefaultLibrary()
	}
	lines, err := dialog.LoadLines(*dialogPath)
	if err != nil {
		log.Warn("using built-in dialog", "error", err)
	}

	session, err := terminal.NewSession(cfg, level, lib, dialog.NewSpeaker(lines, rand.New(rand.NewSource(time.Now().UnixNano()))))
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("starting", "level", level.Data.Name)
	session.Run(ctx, screen)
}

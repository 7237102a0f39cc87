package main

import (
	"errors"
	"flag"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"chosenoffset.com/ns2d/internal/audio"
	"chosenoffset.com/ns2d/internal/entity"
	"chosenoffset.com/ns2d/internal/game"
	"chosenoffset.com/ns2d/internal/logger"
	ebitenrender "chosenoffset.com/ns2d/internal/render/ebiten"
	"chosenoffset.com/ns2d/internal/simulation"
	"chosenoffset.com/ns2d/internal/ui/dialog"
	"chosenoffset.com/ns2d/internal/world/levelscan"
)

func main() {
	dataDir := flag.String("data", "data", "Data directory holding level packs")
	configPath := flag.String("config", "data/simulation.yaml", "Simulation config (JSON or YAML)")
	levelName := flag.String("level", "", "Level to start with, as pack/level or level")
	dialogPath := flag.String("dialog", "data/dialog.yaml", "Dialog lines (YAML)")
	debug := flag.Bool("debug", false, "Show collision sample points")
	mute := flag.Bool("mute", false, "Disable sound")
	flag.Parse()

	cfg, err := simulation.LoadConfig(*configPath)
	if err != nil {
		logger.L().Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logger.L()

	levels, err := levelscan.Playlist(*dataDir, *levelName)
	if err != nil {
		log.Error("failed to find levels", "error", err)
		os.Exit(1)
	}

	lib, err := entity.LoadLibrary(filepath.Join(*dataDir, "entities.json"))
	if err != nil {
		log.Warn("using built-in entities", "error", err)
		lib = entity.DefaultLibrary()
	}

	lines, err := dialog.LoadLines(*dialogPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("using built-in dialog", "error", err)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	opts := game.Options{
		Renderer: ebitenrender.NewRenderer(),
		Input:    ebitenrender.NewInputManager(),
		Loader:   ebitenrender.NewResourceLoader(),
		Config:   cfg,
		Library:  lib,
		Speaker:  dialog.NewSpeaker(lines, rng),
		Debug:    *debug,
		Rand:     rng,
	}

	if !*mute {
		sound := audio.NewSoundManager()
		if err := sound.Initialize(); err != nil {
			log.Warn("audio unavailable", "error", err)
		} else {
			defer sound.Cleanup()
			opts.Audio = sound
		}
	}

	manager, err := game.NewManager(opts, levels)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}

	engine := ebitenrender.NewEngine()
	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle("ns2d")
	engine.SetWindowResizable(true)
	engine.SetTPS(cfg.Window.TPS)

	log.Info("starting", "levels", len(levels), "tps", cfg.Window.TPS)
	if err := engine.RunGame(manager); err != nil {
		log.Error("game loop failed", "error", err)
		os.Exit(1)
	}
}

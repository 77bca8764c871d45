// ChessRules - a two-player chess game played from the terminal
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/console"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/storage"
)

var (
	white       = flag.String("white", "", "White player's name (default: stored preference)")
	black       = flag.String("black", "", "Black player's name (default: stored preference)")
	event       = flag.String("event", "", "event name")
	site        = flag.String("site", "", "site name")
	round       = flag.String("round", "", "round")
	timeControl = flag.String("timecontrol", "", "time control, recorded as given")
	fen         = flag.String("fen", "", "start from this FEN instead of the initial position")
	notation    = flag.String("notation", "", "move notation: standard or long")
	dataDir     = flag.String("datadir", "", "directory for the database and exports (default: platform data directory)")
	verbose     = flag.Bool("verbose", false, "debug logging")
)

func main() {
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	dirs, err := dataDirs(*dataDir)
	if err != nil {
		logger.Fatal("could not locate data directory", zap.Error(err))
	}
	if err := dirs.Ensure(); err != nil {
		logger.Fatal("could not create data directory", zap.Error(err))
	}
	store, err := storage.Open(dirs.DB)
	if err != nil {
		logger.Fatal("could not open storage", zap.Error(err))
	}
	defer store.Close()

	if first, err := store.IsFirstLaunch(); err == nil && first {
		fmt.Println("Welcome. Type moves such as e4 or Nf3, or 'help' for commands.")
		if err := store.MarkFirstLaunchComplete(); err != nil {
			logger.Warn("could not mark first launch", zap.Error(err))
		}
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		logger.Warn("could not load preferences, using defaults", zap.Error(err))
		prefs = storage.DefaultPreferences()
	}
	override(&prefs.White, *white)
	override(&prefs.Black, *black)
	override(&prefs.Event, *event)
	override(&prefs.Site, *site)
	if *notation != "" {
		mode, err := board.ParseNotation(*notation)
		if err != nil {
			logger.Fatal("bad -notation", zap.Error(err))
		}
		prefs.Notation = mode.String()
	}
	if err := store.SavePreferences(prefs); err != nil {
		logger.Warn("could not save preferences", zap.Error(err))
	}

	c, err := console.New(console.Config{
		Logger: logger,
		Metadata: game.Metadata{
			Event:       prefs.Event,
			Site:        prefs.Site,
			Round:       *round,
			White:       prefs.White,
			Black:       prefs.Black,
			TimeControl: *timeControl,
		},
		StartFEN: *fen,
		Notation: prefs.NotationMode(),
		Archive:  store,
		Dirs:     dirs,
	})
	if err != nil {
		logger.Fatal("could not start game", zap.Error(err))
	}

	logger.Info("game started",
		zap.String("white", prefs.White),
		zap.String("black", prefs.Black),
		zap.String("fen", c.Game().Position().FEN()))

	if err := c.Run(os.Stdin, os.Stdout); err != nil {
		logger.Error("reading input", zap.Error(err))
	}
}

func dataDirs(root string) (storage.Dirs, error) {
	if root == "" {
		return storage.DefaultDirs()
	}
	return storage.DirsIn(root), nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func newLogger(verbose bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

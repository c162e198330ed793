package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"triplemerge/internal/database"
	"triplemerge/internal/game"
	"triplemerge/internal/i18n"
	"triplemerge/internal/scores"
	"triplemerge/pkg/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

const localPlayerID = "local"

func main() {
	cmd := &cli.Command{
		Name:  "play",
		Usage: "play the triple-merge sliding tile game in the terminal",
		Description: "Keys: w/a/s/d or k/h/j/l to move, r to restart, c to keep playing, q to quit.\n" +
			"Type one or more keys and press enter.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "size",
				Value: game.DefaultSize,
				Usage: "board edge length",
			},
			&cli.IntFlag{
				Name:  "start-tiles",
				Value: game.DefaultStartTiles,
				Usage: "tiles placed on a new board",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "random seed (0 picks one from the clock)",
			},
			&cli.StringFlag{
				Name:  "db",
				Value: defaultDBPath(),
				Usage: "SQLite file holding finished games and the best score",
			},
			&cli.StringFlag{
				Name:    "lang",
				Usage:   "message language",
				Sources: cli.EnvVars("TRIPLEMERGE_LANG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log engine events to stderr",
			},
		},
		Action: play,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("play failed")
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "triplemerge.db"
	}
	return filepath.Join(home, ".triplemerge", "scores.db")
}

func play(ctx context.Context, cmd *cli.Command) error {
	level := zerolog.WarnLevel
	if cmd.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
	log.Logger = logger

	size := int(cmd.Int("size"))
	startTiles := int(cmd.Int("start-tiles"))
	if size < game.MinSize {
		return fmt.Errorf("board size must be at least %d, got %d", game.MinSize, size)
	}
	if startTiles < 1 || startTiles > size*size {
		return fmt.Errorf("start tiles must be between 1 and %d, got %d", size*size, startTiles)
	}

	db, err := database.NewSQLiteDB(cmd.String("db"))
	if err != nil {
		return fmt.Errorf("open score database: %w", err)
	}
	defer db.Close()

	if err := db.CreatePlayer(&models.Player{ID: localPlayerID, Name: localName()}); err != nil {
		return fmt.Errorf("register local player: %w", err)
	}

	seed := cmd.Int("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	tr := i18n.New("en", []string{"en", "zh-CN"})
	lang := cmd.String("lang")
	if lang == "" {
		lang = localeFromEnv(os.Getenv("LANG"))
	}
	lang = tr.DetectLanguage(lang)

	ui := &terminal{
		out:      os.Stdout,
		tr:       tr,
		lang:     lang,
		db:       db,
		playerID: localPlayerID,
		log:      logger,
	}

	fmt.Fprintln(os.Stdout, tr.T(lang, i18n.KeyNewGame))

	store := scores.NewPlayerStore(localPlayerID, nil, db, logger)
	ui.manager = game.NewManager(size, ui, store,
		game.WithRand(rand.New(rand.NewSource(seed))),
		game.WithStartTiles(startTiles),
		game.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputs := make(chan game.Input)
	go readKeys(ctx, os.Stdin, inputs)

	err = ui.manager.Run(ctx, inputs)
	ui.finish()
	if err == context.Canceled {
		return nil
	}
	return err
}

// readKeys turns typed lines into inputs and closes inputs on q or EOF
func readKeys(ctx context.Context, r io.Reader, inputs chan<- game.Input) {
	defer close(inputs)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		keys, quit := keyInputs(scanner.Text())
		for _, in := range keys {
			select {
			case inputs <- in:
			case <-ctx.Done():
				return
			}
		}
		if quit {
			return
		}
	}
}

func localName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

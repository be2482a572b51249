package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cbodonnell/wordfall/client/audio"
	"github.com/cbodonnell/wordfall/client/game"
	"github.com/cbodonnell/wordfall/client/input"
	"github.com/cbodonnell/wordfall/client/network"
	gameengine "github.com/cbodonnell/wordfall/pkg/game"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/vocabulary"
	"github.com/cbodonnell/wordfall/pkg/workers"
	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level")
	logFile := flag.String("log-file", "wordfall.log", "File to write logs to")
	serverURL := flag.String("server", "", "API server URL (overrides WORDFALL_SERVER_URL)")
	wordsFile := flag.String("words", "", "Local word list used when the server is unavailable (overrides WORDFALL_WORDS_FILE)")
	offline := flag.Bool("offline", false, "Play without a server")
	mute := flag.Bool("mute", false, "Disable sound")
	flag.Parse()

	// a missing .env is fine
	_ = godotenv.Load()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	// the terminal belongs to the UI, so logs go to a file
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		panic(fmt.Sprintf("Failed to open log file: %v", err))
	}
	defer f.Close()
	log.SetDefaultLogger(log.New(f, parsedLogLevel))
	log.Info("Log level set to %s", parsedLogLevel)

	if err := run(*serverURL, *wordsFile, *offline, *mute); err != nil {
		log.Error("Client exited with error: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(serverURL, wordsFile string, offline, mute bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flags := &gameengine.StopFlags{}
	input.NotifyProcessStop(ctx, flags.StopProcess)

	if serverURL == "" {
		serverURL = os.Getenv("WORDFALL_SERVER_URL")
	}
	if serverURL == "" {
		serverURL = network.DefaultServerURL
	}
	if wordsFile == "" {
		wordsFile = os.Getenv("WORDFALL_WORDS_FILE")
	}

	var api *network.APIClient
	if !offline {
		client, err := network.NewAPIClient(serverURL)
		if err != nil {
			return fmt.Errorf("failed to create api client: %v", err)
		}
		api = client
		log.Info("Using server %s", serverURL)
	}

	var words vocabulary.Fallback
	if api != nil {
		words = append(words, api)
	}
	if wordsFile != "" {
		words = append(words, vocabulary.NewFileSource(wordsFile))
	}
	words = append(words, vocabulary.DefaultSource{})

	player := audio.NewPlayer()
	if !mute {
		if err := player.Init(); err != nil {
			log.Warn("Sound disabled: %v", err)
		}
	}
	defer player.Close()

	var submitChan chan workers.ScoreSubmitRequest
	if api != nil {
		submitChan = make(chan workers.ScoreSubmitRequest, 1)
		submitWorker := workers.NewScoreSubmitWorker(workers.NewScoreSubmitWorkerOptions{
			Sink:       api,
			SubmitChan: submitChan,
		})
		go submitWorker.Start(ctx)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %v", err)
	}
	defer screen.Fini()

	g, err := game.NewGame(game.NewGameOptions{
		Screen:     screen,
		API:        api,
		Words:      words,
		Audio:      player,
		Flags:      flags,
		Config:     gameengine.DefaultConfig(),
		SubmitChan: submitChan,
	})
	if err != nil {
		return fmt.Errorf("failed to create game: %v", err)
	}
	return g.Run(ctx)
}

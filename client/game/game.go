package game

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/wordfall/client/audio"
	"github.com/cbodonnell/wordfall/client/flow"
	"github.com/cbodonnell/wordfall/client/network"
	"github.com/cbodonnell/wordfall/client/scenes"
	gameengine "github.com/cbodonnell/wordfall/pkg/game"
	"github.com/cbodonnell/wordfall/pkg/game/constants"
	"github.com/cbodonnell/wordfall/pkg/game/types"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/queue"
	"github.com/cbodonnell/wordfall/pkg/repositories"
	"github.com/cbodonnell/wordfall/pkg/state"
	"github.com/cbodonnell/wordfall/pkg/vocabulary"
	"github.com/cbodonnell/wordfall/pkg/workers"
	"github.com/gdamore/tcell/v2"
)

const (
	// frameInterval is how often the current scene is updated and drawn
	frameInterval     = constants.ControlTick
	inputQueueSize    = 64
	vocabularyTimeout = 5 * time.Second
	logoutTimeout     = 3 * time.Second
)

// Game owns the terminal and switches between scenes.
type Game struct {
	screen     tcell.Screen
	api        *network.APIClient
	words      vocabulary.Source
	audio      *audio.Player
	flags      *gameengine.StopFlags
	config     gameengine.Config
	submitChan chan<- workers.ScoreSubmitRequest

	mode  flow.GameMode
	scene scenes.Scene
	quit  bool
}

type NewGameOptions struct {
	Screen tcell.Screen
	// API is nil when playing offline
	API   *network.APIClient
	Words vocabulary.Source
	Audio *audio.Player
	Flags *gameengine.StopFlags
	// Config is the engine configuration; the field size is replaced by the screen size each round
	Config     gameengine.Config
	SubmitChan chan<- workers.ScoreSubmitRequest
}

func NewGame(opts NewGameOptions) (*Game, error) {
	if opts.Screen == nil {
		return nil, fmt.Errorf("screen is required")
	}
	if opts.Words == nil {
		return nil, fmt.Errorf("word source is required")
	}
	g := &Game{
		screen:     opts.Screen,
		api:        opts.API,
		words:      opts.Words,
		audio:      opts.Audio,
		flags:      opts.Flags,
		config:     opts.Config,
		submitChan: opts.SubmitChan,
	}
	if g.audio == nil {
		g.audio = audio.NewPlayer()
	}
	if g.flags == nil {
		g.flags = &gameengine.StopFlags{}
	}

	g.loadMenu("")
	return g, nil
}

func (g *Game) Mode() flow.GameMode {
	return g.mode
}

// Run drives the UI until the player quits, ctx ends, or a process stop is requested.
func (g *Game) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-stopped:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	defer g.endSession()
	defer func() { g.setScene(nil, g.mode) }()

	done := ctx.Done()
	for !g.quit {
		select {
		case <-done:
			g.flags.StopProcess()
			done = nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				g.scene.HandleKey(ev)
			case *tcell.EventResize:
				g.screen.Sync()
			}
		case <-ticker.C:
		}

		// a process stop during a round is observed by the engine, which ends the round first
		if g.flags.ProcessStopped() && g.mode != flow.GameModePlay {
			return nil
		}

		if err := g.scene.Update(); err != nil {
			return fmt.Errorf("failed to update %s scene: %v", g.mode, err)
		}
		g.draw()
	}
	return nil
}

// endSession logs out on exit so the server frees the session for the next login.
func (g *Game) endSession() {
	if !g.api.LoggedIn() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()
	if err := g.api.Logout(ctx); err != nil {
		log.Warn("Failed to logout on exit: %v", err)
		return
	}
	log.Info("Logged out on exit")
}

func (g *Game) draw() {
	g.screen.Clear()
	g.screen.HideCursor()
	g.scene.Draw(g.screen)
	g.screen.Show()
}

func (g *Game) setScene(scene scenes.Scene, mode flow.GameMode) {
	if g.scene != nil {
		if err := g.scene.Destroy(); err != nil {
			log.Error("Failed to destroy %s scene: %v", g.mode, err)
		}
	}
	g.scene = scene
	g.mode = mode
	if scene == nil {
		return
	}
	if err := scene.Init(); err != nil {
		log.Error("Failed to init %s scene: %v", mode, err)
	}
	log.Debug("Scene changed to %s", mode)
}

func (g *Game) loadMenu(notice string) {
	status := "offline"
	if g.api != nil {
		status = "not logged in"
		if g.api.LoggedIn() {
			status = "logged in as " + g.api.Username()
		}
	}

	items := []scenes.MenuItem{{Label: "Play", Action: g.loadGame}}
	if g.api != nil {
		if g.api.LoggedIn() {
			items = append(items, scenes.MenuItem{Label: "Logout", Action: g.logout})
		} else {
			items = append(items,
				scenes.MenuItem{Label: "Login", Action: func() { g.loadAuth(scenes.AuthModeLogin) }},
				scenes.MenuItem{Label: "Register", Action: func() { g.loadAuth(scenes.AuthModeRegister) }},
			)
		}
		items = append(items, scenes.MenuItem{Label: "Leaderboard", Action: g.loadLeaderboard})
	}
	items = append(items,
		scenes.MenuItem{Label: "How to play", Action: g.loadHelp},
		scenes.MenuItem{Label: "Quit", Action: g.exit},
	)

	g.setScene(scenes.NewMenuScene(scenes.MenuSceneOptions{
		Status: status,
		Notice: notice,
		Items:  items,
		OnQuit: g.exit,
	}), flow.GameModeMenu)
}

func (g *Game) exit() {
	g.quit = true
}

func (g *Game) loadHelp() {
	g.setScene(scenes.NewHelpScene(func() { g.loadMenu("") }), flow.GameModeHelp)
}

func (g *Game) loadAuth(mode scenes.AuthMode) {
	submit := g.api.Login
	if mode == scenes.AuthModeRegister {
		submit = g.api.Register
	}
	g.setScene(scenes.NewAuthScene(scenes.AuthSceneOptions{
		Mode: mode,
		OnSubmit: func(username, password string) error {
			ctx, cancel := context.WithTimeout(context.Background(), vocabularyTimeout)
			defer cancel()
			return submit(ctx, username, password)
		},
		OnSuccess: func() { g.loadMenu("") },
		OnBack:    func() { g.loadMenu("") },
	}), flow.GameModeAuth)
}

func (g *Game) logout() {
	ctx, cancel := context.WithTimeout(context.Background(), vocabularyTimeout)
	defer cancel()
	notice := ""
	if err := g.api.Logout(ctx); err != nil {
		log.Warn("Failed to logout: %v", err)
		notice = network.UserMessage(err)
	}
	g.loadMenu(notice)
}

func (g *Game) loadLeaderboard() {
	ctx, cancel := context.WithCancel(context.Background())
	opts := scenes.LeaderboardSceneOptions{
		OnBack: func() { g.loadMenu("") },
		Cancel: cancel,
	}

	updates, err := g.api.WatchLeaderboard(ctx)
	if err != nil {
		log.Warn("Failed to watch leaderboard: %v", err)
		reqCtx, reqCancel := context.WithTimeout(ctx, vocabularyTimeout)
		entries, err := g.api.Leaderboard(reqCtx, repositories.MaxLeaderboardEntries)
		reqCancel()
		if err != nil {
			cancel()
			g.loadMenu(network.UserMessage(err))
			return
		}
		opts.Entries = entries
		opts.Notice = "Live updates unavailable"
	} else {
		opts.Updates = updates
	}

	g.setScene(scenes.NewLeaderboardScene(opts), flow.GameModeLeaderboard)
}

// fieldSize returns the play area for the current screen, or an error when it is too small.
func (g *Game) fieldSize() (int, int, error) {
	w, h := g.screen.Size()
	fieldHeight := h - scenes.ReservedRows
	if w < constants.MinFieldWidth || fieldHeight < constants.MinFieldHeight {
		return 0, 0, fmt.Errorf("screen too small: need at least %dx%d", constants.MinFieldWidth, constants.MinFieldHeight+scenes.ReservedRows)
	}
	return w, fieldHeight, nil
}

func (g *Game) loadGame() {
	width, height, err := g.fieldSize()
	if err != nil {
		g.loadMenu(err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), vocabularyTimeout)
	words, err := g.words.Load(ctx)
	cancel()
	if err != nil || len(words) == 0 {
		log.Error("Failed to load words: %v", err)
		g.loadMenu("No words available to play with")
		return
	}

	cfg := g.config
	cfg.FieldWidth = width
	cfg.FieldHeight = height

	stateManager := state.NewInMemoryStateManager()
	inputQueue := queue.NewInMemoryQueue[types.InputEvent](inputQueueSize)
	engine, err := gameengine.NewEngine(gameengine.NewEngineOptions{
		Config:       cfg,
		Vocabulary:   words,
		Input:        inputQueue,
		Flags:        g.flags,
		StateManager: stateManager,
		OnResolution: g.onResolution,
		Logger:       log.Default(),
	})
	if err != nil {
		log.Error("Failed to create engine: %v", err)
		g.loadMenu("Failed to start the game")
		return
	}

	g.setScene(scenes.NewGameScene(scenes.GameSceneOptions{
		Run:          engine.Run,
		Flags:        g.flags,
		StateManager: stateManager,
		InputQueue:   inputQueue,
		Player:       g.api.Username(),
		OnLifeLost:   func() { g.audio.Play(audio.SoundLifeLost) },
		OnRoundEnd:   g.onRoundEnd,
	}), flow.GameModePlay)
}

func (g *Game) onResolution(res types.Resolution) {
	switch res.Outcome {
	case types.ResolutionNormal:
		g.audio.Play(audio.SoundHit)
	case types.ResolutionBonus:
		g.audio.Play(audio.SoundBonus)
	case types.ResolutionMiss:
		g.audio.Play(audio.SoundMiss)
	}
}

func (g *Game) onRoundEnd(result types.RoundResult, err error) {
	if err != nil {
		log.Error("Round failed: %v", err)
		g.loadMenu("The game stopped unexpectedly")
		return
	}
	if result.Leaked > 0 {
		log.Warn("%d word workers were still running after the round", result.Leaked)
	}
	if result.Reason == types.EndReasonProcessStop {
		g.exit()
		return
	}
	if result.Reason == types.EndReasonHazard || result.Reason == types.EndReasonLivesExhausted {
		g.audio.Play(audio.SoundGameOver)
	}

	opts := scenes.GameOverSceneOptions{
		Result:     result,
		OnContinue: func() { g.loadMenu("") },
	}
	switch {
	case g.api == nil:
		opts.SkipReason = "Offline: score not submitted"
	case !g.api.LoggedIn():
		opts.SkipReason = "Log in to submit scores"
	case g.submitChan == nil:
		opts.SkipReason = "Score submission disabled"
	default:
		submitResult := make(chan error, 1)
		select {
		case g.submitChan <- workers.ScoreSubmitRequest{Score: result.Score, Result: submitResult}:
			opts.SubmitResult = submitResult
		default:
			log.Warn("Score submission busy, dropping score %d", result.Score)
			opts.SkipReason = "Still submitting the previous score"
		}
	}
	g.setScene(scenes.NewGameOverScene(opts), flow.GameModeOver)
}

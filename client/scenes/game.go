package scenes

import (
	"context"
	"fmt"

	"github.com/cbodonnell/wordfall/client/input"
	"github.com/cbodonnell/wordfall/pkg/game"
	"github.com/cbodonnell/wordfall/pkg/game/types"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/queue"
	"github.com/cbodonnell/wordfall/pkg/state"
	"github.com/gdamore/tcell/v2"
)

// fieldTop is the first screen row of the play area; row 0 holds the status line
const fieldTop = 1

// ReservedRows is the number of screen rows that are not part of the play area
const ReservedRows = 3

type roundOutcome struct {
	result types.RoundResult
	err    error
}

// GameScene runs one round in the background and renders its snapshots.
type GameScene struct {
	*BaseScene

	run          func(ctx context.Context) (types.RoundResult, error)
	flags        *game.StopFlags
	stateManager state.StateManager
	inputQueue   queue.Queue[types.InputEvent]
	player       string

	cancel    context.CancelFunc
	done      chan roundOutcome
	finished  bool
	snapshot  *types.Snapshot
	lastLives int

	onLifeLost func()
	onRoundEnd func(types.RoundResult, error)
}

type GameSceneOptions struct {
	// Run plays the round; it is called once from Init on its own goroutine
	Run          func(ctx context.Context) (types.RoundResult, error)
	Flags        *game.StopFlags
	StateManager state.StateManager
	InputQueue   queue.Queue[types.InputEvent]
	// Player is shown in the status line
	Player     string
	OnLifeLost func()
	OnRoundEnd func(types.RoundResult, error)
}

var _ Scene = &GameScene{}

func NewGameScene(opts GameSceneOptions) *GameScene {
	return &GameScene{
		BaseScene:    &BaseScene{},
		run:          opts.Run,
		flags:        opts.Flags,
		stateManager: opts.StateManager,
		inputQueue:   opts.InputQueue,
		player:       opts.Player,
		done:         make(chan roundOutcome, 1),
		lastLives:    -1,
		onLifeLost:   opts.OnLifeLost,
		onRoundEnd:   opts.OnRoundEnd,
	}
}

func (s *GameScene) Init() error {
	s.flags.ResetRound()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		result, err := s.run(ctx)
		s.done <- roundOutcome{result: result, err: err}
	}()
	return nil
}

// Destroy cancels a round that is still running, e.g. when the client quits mid-round.
func (s *GameScene) Destroy() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *GameScene) HandleKey(ev *tcell.EventKey) {
	s.handle(ev.Key(), ev.Rune())
}

func (s *GameScene) handle(key tcell.Key, r rune) {
	if input.ActionFor(key) == input.ActionInterrupt {
		s.flags.StopRound()
		return
	}
	event, ok := input.TranslateKey(key, r)
	if !ok {
		return
	}
	if err := s.inputQueue.Enqueue(event); err != nil {
		log.Warn("Dropped key: %v", err)
	}
}

func (s *GameScene) Update() error {
	snapshot, err := s.stateManager.Get(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %v", err)
	}
	if snapshot != nil {
		if s.lastLives >= 0 && snapshot.Lives < s.lastLives && s.onLifeLost != nil {
			s.onLifeLost()
		}
		s.lastLives = snapshot.Lives
		s.snapshot = snapshot
	}

	if s.finished {
		return nil
	}
	select {
	case outcome := <-s.done:
		s.finished = true
		if s.onRoundEnd != nil {
			s.onRoundEnd(outcome.result, outcome.err)
		}
	default:
	}
	return nil
}

func kindStyle(kind types.WordKind) tcell.Style {
	switch kind {
	case types.WordKindHazard:
		return styleError.Bold(true)
	case types.WordKindBonus:
		return styleOK.Bold(true)
	default:
		return styleDefault
	}
}

func (s *GameScene) Draw(screen tcell.Screen) {
	snapshot := s.snapshot
	if snapshot == nil {
		drawCentered(screen, 0, styleDim, "starting...")
		return
	}

	status := fmt.Sprintf("Score: %d  Lives: %d  Level: %d", snapshot.Score, snapshot.Lives, snapshot.Level)
	if s.player != "" {
		status += "  [" + s.player + "]"
	}
	drawText(screen, 0, 0, styleTitle, status)

	for _, entity := range snapshot.Entities {
		if entity.Y < 0 || entity.Y >= snapshot.Height {
			continue
		}
		drawText(screen, entity.X, fieldTop+entity.Y, kindStyle(entity.Kind), entity.Text)
	}

	bottom := fieldTop + snapshot.Height
	drawHLine(screen, bottom, styleDim)
	drawText(screen, 0, bottom+1, styleDefault, "> "+snapshot.Input)
	screen.ShowCursor(2+len(snapshot.Input), bottom+1)

	if snapshot.Over {
		drawCentered(screen, fieldTop+snapshot.Height/2, styleError.Bold(true), snapshot.Reason.Message())
	}
}

package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/wordfall/pkg/game/constants"
	"github.com/cbodonnell/wordfall/pkg/game/types"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/state"
	"github.com/cbodonnell/wordfall/pkg/vocabulary"
)

// ErrRoundInProgress is returned by Run and LoadVocabulary while a round is running.
var ErrRoundInProgress = errors.New("round in progress")

// InputSource yields at most one decoded key or line per call without blocking.
type InputSource interface {
	Next() (types.InputEvent, bool)
}

// roundContext is the state shared by every component of one engine.
type roundContext struct {
	cfg    Config
	table  *SlotTable
	active *ActiveSet
	state  *GameState
	flags  *StopFlags
	logger *log.Logger
	now    func() time.Time
}

// Engine runs rounds of the falling-word game. It owns all round state;
// nothing is shared between two engines.
type Engine struct {
	rc           *roundContext
	scheduler    *EntityScheduler
	resolver     *InputResolver
	shutdown     *ShutdownCoordinator
	input        InputSource
	stateManager state.StateManager
	onResolution func(types.Resolution)
	running      atomic.Bool
}

// NewEngineOptions contains options for creating a new Engine.
type NewEngineOptions struct {
	Config     Config
	Vocabulary []string
	Input      InputSource
	// Flags are the externally owned stop requests; a private set is used when nil
	Flags *StopFlags
	// StateManager receives a snapshot every control tick when set
	StateManager state.StateManager
	// OnResolution is called from the control loop after every submitted line
	OnResolution func(types.Resolution)
	Logger       *log.Logger
	// Seed seeds word, kind and position picks; zero uses the current time
	Seed int64
}

func NewEngine(opts NewEngineOptions) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	flags := opts.Flags
	if flags == nil {
		flags = &StopFlags{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rc := &roundContext{
		cfg:    opts.Config,
		table:  NewSlotTable(opts.Config.MaxWords),
		active: NewActiveSet(),
		state:  NewGameState(opts.Config.StartingLives),
		flags:  flags,
		logger: logger,
		now:    time.Now,
	}

	e := &Engine{
		rc:           rc,
		scheduler:    newEntityScheduler(rc, nil, rand.New(rand.NewSource(seed))),
		resolver:     newInputResolver(rc, constants.InputBufferLength),
		shutdown:     newShutdownCoordinator(rc),
		input:        opts.Input,
		stateManager: opts.StateManager,
		onResolution: opts.OnResolution,
	}
	if err := e.LoadVocabulary(opts.Vocabulary); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadVocabulary replaces the word list used by the next round.
// Words that cannot be typed and words longer than MaxWordLength are skipped.
func (e *Engine) LoadVocabulary(words []string) error {
	if e.running.Load() {
		return ErrRoundInProgress
	}
	typeable := make([]string, 0, len(words))
	for _, w := range words {
		if !vocabulary.Valid(w) || len(w) > e.rc.cfg.MaxWordLength {
			continue
		}
		typeable = append(typeable, w)
	}
	if skipped := len(words) - len(typeable); skipped > 0 {
		e.rc.logger.Debug("Skipped %d words that cannot be played", skipped)
	}
	e.scheduler.vocabulary = typeable
	return nil
}

// VocabularySize is the number of words the next round can spawn from.
func (e *Engine) VocabularySize() int {
	return len(e.scheduler.vocabulary)
}

func (e *Engine) Flags() *StopFlags {
	return e.rc.flags
}

func (e *Engine) Phase() types.RoundPhase {
	return e.shutdown.Phase()
}

// Run plays one round and blocks until it has ended and drained.
// Cancelling ctx ends the round the same way a process-wide stop does.
func (e *Engine) Run(ctx context.Context) (types.RoundResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return types.RoundResult{}, ErrRoundInProgress
	}
	defer e.running.Store(false)

	e.rc.state.reset(e.rc.cfg.StartingLives)
	e.rc.table.reset()
	e.rc.active.Clear()
	e.resolver.clearBuffer()
	if !e.shutdown.begin() {
		return types.RoundResult{}, fmt.Errorf("failed to start round from phase %s", e.shutdown.Phase())
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	e.rc.logger.Info("Round started with %d words on a %dx%d field", len(e.scheduler.vocabulary), e.rc.cfg.FieldWidth, e.rc.cfg.FieldHeight)

	ticker := time.NewTicker(e.rc.cfg.ControlTick)
	defer ticker.Stop()

	lastSpawn := e.rc.now()
	for {
		if ctx.Err() != nil {
			e.rc.state.End(types.EndReasonProcessStop)
		}
		if e.shutdown.poll() {
			break
		}

		e.processInput()

		if now := e.rc.now(); !e.rc.state.Over() && now.Sub(lastSpawn) >= e.rc.cfg.SpawnInterval {
			e.scheduler.Spawn(workerCtx)
			lastSpawn = now
		}

		e.publish(ctx)
		e.rc.table.Reclaim()

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}

	e.publish(ctx)
	cancelWorkers()
	leaked := e.shutdown.drain()
	e.scheduler.vocabulary = nil

	score, lives, _ := e.rc.state.Read()
	result := types.RoundResult{
		Score:  score,
		Lives:  lives,
		Level:  e.rc.cfg.Level(score),
		Reason: e.rc.state.Reason(),
		Leaked: leaked,
	}
	e.publish(ctx)

	e.rc.logger.Info("Round ended (%s) with score %d", result.Reason, result.Score)
	return result, nil
}

// processInput consumes at most one event from the input source.
func (e *Engine) processInput() {
	if e.input == nil {
		return
	}
	event, ok := e.input.Next()
	if !ok {
		return
	}
	resolution, submitted := e.resolver.Handle(event)
	if submitted && e.onResolution != nil {
		e.onResolution(resolution)
	}
}

// Submit resolves a whole line outside of the input source, as the control loop would.
func (e *Engine) Submit(line string) types.Resolution {
	return e.resolver.Submit(line)
}

// Spawn runs the scheduler once outside of the control loop.
func (e *Engine) Spawn(ctx context.Context) bool {
	return e.scheduler.Spawn(ctx)
}

// Snapshot returns a point-in-time view of the round.
func (e *Engine) Snapshot() *types.Snapshot {
	entities := e.rc.table.Views()
	score, lives, over := e.rc.state.Read()
	return &types.Snapshot{
		Timestamp: e.rc.now().UnixMilli(),
		Phase:     e.shutdown.Phase(),
		Entities:  entities,
		Score:     score,
		Lives:     lives,
		Level:     e.rc.cfg.Level(score),
		Over:      over,
		Reason:    e.rc.state.Reason(),
		Input:     e.resolver.Buffer(),
		Width:     e.rc.cfg.FieldWidth,
		Height:    e.rc.cfg.FieldHeight,
	}
}

func (e *Engine) publish(ctx context.Context) {
	if e.stateManager == nil {
		return
	}
	if err := e.stateManager.Set(ctx, e.Snapshot()); err != nil {
		e.rc.logger.Error("Failed to publish snapshot: %v", err)
	}
}

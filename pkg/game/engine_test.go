package game

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/wordfall/pkg/game/constants"
	"github.com/cbodonnell/wordfall/pkg/game/types"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/queue"
	"github.com/cbodonnell/wordfall/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventuallyWait = 3 * time.Second
	eventuallyTick = 2 * time.Millisecond
)

// testConfig returns a fast configuration where words only spawn as normal words
// and fall slowly enough to stay on screen for the duration of a test.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Tiers = []constants.DifficultyTier{{MinScore: 0, DropInterval: time.Minute}}
	cfg.HazardPercent = 0
	cfg.BonusPercent = 0
	cfg.HazardDropInterval = time.Minute
	cfg.BonusDropInterval = time.Minute
	cfg.WorkerQuantum = time.Millisecond
	cfg.ControlTick = 2 * time.Millisecond
	cfg.SpawnInterval = 5 * time.Millisecond
	cfg.DrainInterval = 2 * time.Millisecond
	cfg.FieldHeight = constants.MinFieldHeight
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, vocabulary []string, opts ...func(*NewEngineOptions)) *Engine {
	t.Helper()
	o := NewEngineOptions{
		Config:     cfg,
		Vocabulary: vocabulary,
		Logger:     log.New(io.Discard, log.LogLevelError),
		Seed:       1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	e, err := NewEngine(o)
	require.NoError(t, err)
	t.Cleanup(func() {
		e.rc.state.End(types.EndReasonRoundStop)
		e.shutdown.drain()
	})
	return e
}

// assertActiveSetConsistent checks that a text is indexed iff exactly one
// occupied, active slot holds it.
func assertActiveSetConsistent(t *testing.T, e *Engine) {
	t.Helper()
	e.rc.table.lock.Lock()
	defer e.rc.table.lock.Unlock()

	counts := map[string]int{}
	for i := range e.rc.table.slots {
		slot := &e.rc.table.slots[i]
		if slot.occupied && slot.active {
			counts[slot.text]++
		}
	}
	for text, n := range counts {
		assert.Equal(t, 1, n, "text %q active in %d slots", text, n)
		assert.True(t, e.rc.active.Contains(text), "active text %q not indexed", text)
	}
	assert.Equal(t, len(counts), e.rc.active.Len())
}

func activeEntity(t *testing.T, e *Engine, text string) (wordEntity, bool) {
	t.Helper()
	e.rc.table.lock.Lock()
	defer e.rc.table.lock.Unlock()
	for i := range e.rc.table.slots {
		slot := e.rc.table.slots[i]
		if slot.occupied && slot.active && slot.text == text {
			return slot, true
		}
	}
	return wordEntity{}, false
}

func TestNewEngine_invalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MaxWords = 0
	_, err := NewEngine(NewEngineOptions{Config: cfg})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEngine_LoadVocabulary(t *testing.T) {
	cfg := testConfig()
	cfg.MaxWordLength = 5
	e := newTestEngine(t, cfg, []string{"cat", "", "elephant", "dog"})
	assert.Equal(t, 2, e.VocabularySize())
}

func TestEngine_LoadVocabulary_untypeableWords(t *testing.T) {
	e := newTestEngine(t, testConfig(), []string{"two words", "café", "tab\tbed", " lead"})
	assert.Equal(t, 0, e.VocabularySize())
	assert.False(t, e.Spawn(context.Background()))

	require.NoError(t, e.LoadVocabulary([]string{"two words", "rain", "café"}))
	assert.Equal(t, 1, e.VocabularySize())
	require.True(t, e.Spawn(context.Background()))
	_, ok := activeEntity(t, e, "rain")
	assert.True(t, ok)
}

func TestEngine_missedNormalWordCostsOneLife(t *testing.T) {
	cfg := testConfig()
	cfg.Tiers = []constants.DifficultyTier{{MinScore: 0, DropInterval: 5 * time.Millisecond}}
	e := newTestEngine(t, cfg, []string{"cat"})

	require.True(t, e.Spawn(context.Background()))
	assert.True(t, e.rc.active.Contains("cat"))

	require.Eventually(t, func() bool {
		return e.rc.state.Lives() == cfg.StartingLives-1
	}, eventuallyWait, eventuallyTick)

	assert.Equal(t, 0, e.rc.state.Score())
	assert.False(t, e.rc.state.Over())
	assert.False(t, e.rc.active.Contains("cat"))

	require.Eventually(t, func() bool {
		return e.rc.table.Reclaim() == 1
	}, eventuallyWait, eventuallyTick)
	assert.Equal(t, 0, e.rc.table.Occupied())
	assert.Equal(t, cfg.StartingLives-1, e.rc.state.Lives())
}

func TestEngine_missedHazardIsHarmless(t *testing.T) {
	cfg := testConfig()
	cfg.HazardPercent = 100
	cfg.HazardDropInterval = 5 * time.Millisecond
	e := newTestEngine(t, cfg, []string{"cat"})

	require.True(t, e.Spawn(context.Background()))
	require.Eventually(t, func() bool {
		return e.rc.table.Reclaim() == 1
	}, eventuallyWait, eventuallyTick)

	assert.Equal(t, cfg.StartingLives, e.rc.state.Lives())
	assert.False(t, e.rc.state.Over())
	assert.False(t, e.rc.active.Contains("cat"))
}

func TestEngine_livesExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.StartingLives = 1
	cfg.BonusPercent = 100
	cfg.BonusDropInterval = 5 * time.Millisecond
	e := newTestEngine(t, cfg, []string{"cat"})

	require.True(t, e.Spawn(context.Background()))
	require.Eventually(t, e.rc.state.Over, eventuallyWait, eventuallyTick)

	assert.Equal(t, 0, e.rc.state.Lives())
	assert.Equal(t, types.EndReasonLivesExhausted, e.rc.state.Reason())
	// over only ever flips once
	assert.False(t, e.rc.state.End(types.EndReasonRoundStop))
	assert.Equal(t, types.EndReasonLivesExhausted, e.rc.state.Reason())
}

func TestEngine_spawnNeverDuplicatesText(t *testing.T) {
	e := newTestEngine(t, testConfig(), []string{"cat"})
	ctx := context.Background()

	require.True(t, e.Spawn(ctx))
	assert.False(t, e.Spawn(ctx))
	assert.Equal(t, 1, e.rc.table.Occupied())
	assert.Equal(t, 1, e.rc.active.Len())
	assertActiveSetConsistent(t, e)
}

func TestEngine_concurrentSpawnsClaimOnce(t *testing.T) {
	e := newTestEngine(t, testConfig(), []string{"cat"})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		lock    sync.Mutex
		spawned int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e.Spawn(ctx) {
				lock.Lock()
				spawned++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, spawned)
	assertActiveSetConsistent(t, e)
}

func TestEngine_spawnSkips(t *testing.T) {
	t.Run("empty vocabulary", func(t *testing.T) {
		e := newTestEngine(t, testConfig(), nil)
		assert.False(t, e.Spawn(context.Background()))
	})

	t.Run("no free slot", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxWords = 2
		e := newTestEngine(t, cfg, []string{"one", "two", "three"})
		ctx := context.Background()
		assert.True(t, e.Spawn(ctx))
		assert.True(t, e.Spawn(ctx))
		assert.False(t, e.Spawn(ctx))
		assert.Equal(t, 2, e.rc.active.Len())
	})

	t.Run("worker start failure rolls back", func(t *testing.T) {
		e := newTestEngine(t, testConfig(), []string{"cat"})
		e.scheduler.launch = func(ctx context.Context, fn func()) error {
			return errors.New("no goroutine for you")
		}
		assert.False(t, e.Spawn(context.Background()))
		assert.False(t, e.rc.active.Contains("cat"))
		assert.Equal(t, 0, e.rc.table.Occupied())
	})

	t.Run("cancelled round refuses new workers", func(t *testing.T) {
		e := newTestEngine(t, testConfig(), []string{"cat"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, e.Spawn(ctx))
		assert.Equal(t, 0, e.rc.active.Len())
	})
}

func TestEngine_spawnPlacement(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg, []string{"a", "bb", "ccc", "dddd", "eeeee"})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.True(t, e.Spawn(ctx))
	}
	for _, view := range e.rc.table.Views() {
		assert.GreaterOrEqual(t, view.X, 0)
		assert.LessOrEqual(t, view.X+len(view.Text), cfg.FieldWidth)
		assert.Equal(t, 0, view.Y)
		assert.Equal(t, types.WordKindNormal, view.Kind)
	}
}

func TestEngine_typedHazardEndsRound(t *testing.T) {
	cfg := testConfig()
	cfg.HazardPercent = 100
	e := newTestEngine(t, cfg, []string{"cat"})

	require.True(t, e.Spawn(context.Background()))
	res := e.Submit("cat")

	assert.Equal(t, types.ResolutionHazard, res.Outcome)
	assert.True(t, e.rc.state.Over())
	assert.Equal(t, types.EndReasonHazard, e.rc.state.Reason())
	assert.Equal(t, cfg.StartingLives, e.rc.state.Lives())
	assert.Equal(t, 0, e.rc.state.Score())
	assert.False(t, e.rc.active.Contains("cat"))
}

func TestEngine_submitAfterRoundStopScoresNothing(t *testing.T) {
	flags := &StopFlags{}
	e := newTestEngine(t, testConfig(), []string{"cat"}, func(o *NewEngineOptions) {
		o.Flags = flags
	})
	require.True(t, e.Spawn(context.Background()))
	scoreAtStop := e.rc.state.Score()

	flags.StopRound()
	res := e.Submit("cat")

	assert.Equal(t, types.ResolutionIgnored, res.Outcome)
	assert.Equal(t, scoreAtStop, e.rc.state.Score())
	assert.Equal(t, types.EndReasonRoundStop, e.rc.state.Reason())
	assert.True(t, e.rc.active.Contains("cat"))
}

func TestEngine_unmatchedInputChangesNothing(t *testing.T) {
	e := newTestEngine(t, testConfig(), []string{"cat"})
	require.True(t, e.Spawn(context.Background()))
	before, ok := activeEntity(t, e, "cat")
	require.True(t, ok)

	for _, r := range "xyz" {
		_, submitted := e.resolver.Handle(types.InputEvent{Type: types.InputRune, Rune: r})
		assert.False(t, submitted)
	}
	assert.Equal(t, "xyz", e.resolver.Buffer())

	res, submitted := e.resolver.Handle(types.InputEvent{Type: types.InputSubmit})
	require.True(t, submitted)
	assert.Equal(t, types.ResolutionMiss, res.Outcome)
	assert.Equal(t, "", e.resolver.Buffer())

	score, lives, over := e.rc.state.Read()
	assert.Equal(t, 0, score)
	assert.Equal(t, testConfig().StartingLives, lives)
	assert.False(t, over)

	after, ok := activeEntity(t, e, "cat")
	require.True(t, ok)
	assert.Equal(t, before.text, after.text)
	assert.Equal(t, before.kind, after.kind)
	assertActiveSetConsistent(t, e)
}

func TestEngine_submitRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		hazard      int
		bonus       int
		wantOutcome types.ResolutionOutcome
		wantPoints  func(text string) int
	}{
		{
			name:        "normal word scores its length",
			wantOutcome: types.ResolutionNormal,
			wantPoints:  func(text string) int { return len(text) },
		},
		{
			name:        "bonus word scores bonus plus length",
			bonus:       100,
			wantOutcome: types.ResolutionBonus,
			wantPoints:  func(text string) int { return constants.BonusPoints + len(text) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.HazardPercent = tt.hazard
			cfg.BonusPercent = tt.bonus
			vocabulary := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"}
			e := newTestEngine(t, cfg, vocabulary)
			ctx := context.Background()

			for i := 0; i < 4; i++ {
				require.True(t, e.Spawn(ctx))
			}
			texts := e.rc.table.ActiveTexts()
			require.Len(t, texts, 4)
			target := texts[2]

			res := e.Submit(target)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, target, res.Text)
			assert.Equal(t, tt.wantPoints(target), res.Points)
			assert.Equal(t, tt.wantPoints(target), e.rc.state.Score())

			remaining := e.rc.table.ActiveTexts()
			assert.Len(t, remaining, 3)
			assert.NotContains(t, remaining, target)
			assertActiveSetConsistent(t, e)

			// a second submission of the same text is a miss
			assert.Equal(t, types.ResolutionMiss, e.Submit(target).Outcome)
			assert.Equal(t, tt.wantPoints(target), e.rc.state.Score())
		})
	}
}

func TestEngine_activeSetInvariantUnderLoad(t *testing.T) {
	cfg := testConfig()
	cfg.Tiers = []constants.DifficultyTier{{MinScore: 0, DropInterval: 2 * time.Millisecond}}
	cfg.BonusPercent = 50
	cfg.BonusDropInterval = 3 * time.Millisecond
	cfg.StartingLives = 1_000_000
	vocabulary := []string{"ant", "bee", "cow", "dog", "eel", "fox"}
	e := newTestEngine(t, cfg, vocabulary)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			e.Spawn(ctx)
			e.rc.table.Reclaim()
			time.Sleep(time.Millisecond)
		}
	}()
	go func() {
		defer wg.Done()
		i := 0
		for ctx.Err() == nil {
			e.Submit(vocabulary[i%len(vocabulary)])
			i++
			time.Sleep(time.Millisecond)
		}
	}()

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		assertActiveSetConsistent(t, e)
		time.Sleep(3 * time.Millisecond)
	}
	cancel()
	wg.Wait()
	assertActiveSetConsistent(t, e)
}

func TestEngine_Run_roundStop(t *testing.T) {
	cfg := testConfig()
	vocabulary := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	input := queue.NewInMemoryQueue[types.InputEvent](16)
	stateManager := state.NewInMemoryStateManager()
	flags := &StopFlags{}

	var resolutions []types.Resolution
	var resLock sync.Mutex
	e := newTestEngine(t, cfg, vocabulary, func(o *NewEngineOptions) {
		o.Input = input
		o.Flags = flags
		o.StateManager = stateManager
		o.OnResolution = func(r types.Resolution) {
			resLock.Lock()
			defer resLock.Unlock()
			resolutions = append(resolutions, r)
		}
	})

	type runResult struct {
		result types.RoundResult
		err    error
	}
	done := make(chan runResult, 1)
	go func() {
		result, err := e.Run(context.Background())
		done <- runResult{result, err}
	}()

	var target string
	require.Eventually(t, func() bool {
		snapshot, err := stateManager.Get(context.Background())
		if err != nil || snapshot == nil || len(snapshot.Entities) == 0 {
			return false
		}
		target = snapshot.Entities[0].Text
		return true
	}, eventuallyWait, eventuallyTick)
	assert.Equal(t, types.RoundPhaseRunning, e.Phase())

	require.NoError(t, input.Enqueue(types.InputEvent{Type: types.InputLine, Line: target}))
	require.Eventually(t, func() bool {
		return e.rc.state.Score() > 0
	}, eventuallyWait, eventuallyTick)
	scoreAtStop := e.rc.state.Score()

	_, err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrRoundInProgress)
	assert.ErrorIs(t, e.LoadVocabulary([]string{"late"}), ErrRoundInProgress)

	stoppedAt := time.Now()
	flags.StopRound()

	var got runResult
	select {
	case got = <-done:
	case <-time.After(eventuallyWait):
		t.Fatal("round did not end after round stop")
	}
	require.NoError(t, got.err)
	assert.Less(t, time.Since(stoppedAt), time.Duration(cfg.DrainAttempts)*cfg.DrainInterval+time.Second)

	assert.Equal(t, scoreAtStop, got.result.Score)
	assert.Equal(t, types.EndReasonRoundStop, got.result.Reason)
	assert.Equal(t, 0, got.result.Leaked)
	assert.Equal(t, types.RoundPhaseIdle, e.Phase())
	assert.Equal(t, 0, e.rc.active.Len())
	assert.Equal(t, 0, e.rc.table.Occupied())
	assert.Equal(t, 0, e.VocabularySize())

	resLock.Lock()
	require.Len(t, resolutions, 1)
	assert.Equal(t, target, resolutions[0].Text)
	resLock.Unlock()

	final, err := stateManager.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, final.Over)
	assert.Equal(t, types.RoundPhaseIdle, final.Phase)
}

func TestEngine_Run_isolatedRounds(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg, []string{"one", "two"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	first, err := e.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.EndReasonProcessStop, first.Reason)

	require.NoError(t, e.LoadVocabulary([]string{"three"}))
	e.Flags().StopRound()
	second, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.EndReasonRoundStop, second.Reason)
	assert.Equal(t, 0, second.Score)
	assert.Equal(t, cfg.StartingLives, second.Lives)
	assert.Equal(t, 1, second.Level)
}

func TestEngine_Run_processStopFlag(t *testing.T) {
	flags := &StopFlags{}
	flags.StopProcess()
	flags.StopRound()
	e := newTestEngine(t, testConfig(), []string{"one"}, func(o *NewEngineOptions) {
		o.Flags = flags
	})

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.EndReasonProcessStop, result.Reason)
	assert.Equal(t, "EXITING APPLICATION (Ctrl+C)", result.Reason.Message())
}

func TestShutdownCoordinator_drainGivesUp(t *testing.T) {
	cfg := testConfig()
	cfg.DrainAttempts = 3
	e := newTestEngine(t, cfg, []string{"stuck"})

	release := make(chan struct{})
	e.scheduler.launch = func(ctx context.Context, fn func()) error {
		go func() {
			<-release
			fn()
		}()
		return nil
	}
	require.True(t, e.Spawn(context.Background()))
	e.rc.state.End(types.EndReasonRoundStop)

	leaked := e.shutdown.drain()
	assert.Equal(t, 1, leaked)
	assert.Equal(t, 0, e.rc.active.Len())
	assert.Equal(t, 0, e.rc.table.Occupied())

	// the leaked worker exits on its own without touching the new table
	close(release)
	time.Sleep(10 * cfg.WorkerQuantum)
	assert.Equal(t, 0, e.rc.table.Occupied())
	assert.Equal(t, 0, e.rc.active.Len())
}

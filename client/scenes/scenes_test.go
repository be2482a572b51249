package scenes

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cbodonnell/wordfall/client/network"
	"github.com/cbodonnell/wordfall/pkg/game"
	"github.com/cbodonnell/wordfall/pkg/game/types"
	"github.com/cbodonnell/wordfall/pkg/messages"
	"github.com/cbodonnell/wordfall/pkg/queue"
	"github.com/cbodonnell/wordfall/pkg/repositories/models"
	"github.com/cbodonnell/wordfall/pkg/state"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScreen(t *testing.T, w, h int) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func TestMenuScene(t *testing.T) {
	var chosen []string
	quit := 0
	item := func(label string) MenuItem {
		return MenuItem{Label: label, Action: func() { chosen = append(chosen, label) }}
	}
	s := NewMenuScene(MenuSceneOptions{
		Items:  []MenuItem{item("Play"), item("Leaderboard"), item("Quit")},
		OnQuit: func() { quit++ },
	})

	s.handle(tcell.KeyUp, 0)
	assert.Equal(t, 2, s.Selected(), "up wraps to the last item")
	s.handle(tcell.KeyDown, 0)
	assert.Equal(t, 0, s.Selected(), "down wraps to the first item")
	s.handle(tcell.KeyTab, 0)
	s.handle(tcell.KeyEnter, 0)
	assert.Equal(t, []string{"Leaderboard"}, chosen)

	s.handle(tcell.KeyEscape, 0)
	s.handle(tcell.KeyRune, 'q')
	s.handle(tcell.KeyRune, 'x')
	assert.Equal(t, 2, quit)

	s.Draw(newTestScreen(t, 40, 12))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestAuthScene(t *testing.T) {
	type submission struct{ username, password string }
	submissions := make(chan submission, 4)
	replies := make(chan error, 4)
	succeeded := 0

	s := NewAuthScene(AuthSceneOptions{
		Mode: AuthModeRegister,
		OnSubmit: func(username, password string) error {
			submissions <- submission{username, password}
			return <-replies
		},
		OnSuccess: func() { succeeded++ },
	})

	typeText := func(text string) {
		for _, r := range text {
			s.handle(tcell.KeyRune, r)
		}
	}

	// invalid username is rejected locally
	s.handle(tcell.KeyEnter, 0)
	typeText("pw12")
	s.handle(tcell.KeyEnter, 0)
	assert.NotEmpty(t, s.message)
	assert.Empty(t, submissions)
	assert.Equal(t, authFieldUsername, s.focus)

	typeText("alice")
	s.handle(tcell.KeyEnter, 0)
	assert.Equal(t, authFieldPassword, s.focus)
	s.handle(tcell.KeyEnter, 0)

	sub := <-submissions
	assert.Equal(t, submission{"alice", "pw12"}, sub)
	assert.True(t, s.pending)

	replies <- &network.APIError{StatusCode: http.StatusConflict, Message: "Username already exists"}
	waitFor(t, func() bool {
		s.Update()
		return !s.pending
	})
	assert.Equal(t, "Username already exists", s.message)
	assert.Empty(t, s.password)
	assert.Zero(t, succeeded)

	typeText("pw34")
	s.handle(tcell.KeyEnter, 0)
	<-submissions
	replies <- nil
	waitFor(t, func() bool {
		s.Update()
		return succeeded == 1
	})

	s.Draw(newTestScreen(t, 60, 16))
}

func TestGameScene(t *testing.T) {
	flags := &game.StopFlags{}
	flags.StopRound()
	stateManager := state.NewInMemoryStateManager()
	inputQueue := queue.NewInMemoryQueue[types.InputEvent](8)

	started := make(chan struct{})
	release := make(chan struct{})
	var roundEnds []types.RoundResult
	lifeLost := 0

	s := NewGameScene(GameSceneOptions{
		Run: func(ctx context.Context) (types.RoundResult, error) {
			close(started)
			<-release
			return types.RoundResult{Score: 9, Reason: types.EndReasonRoundStop}, nil
		},
		Flags:        flags,
		StateManager: stateManager,
		InputQueue:   inputQueue,
		Player:       "alice",
		OnLifeLost:   func() { lifeLost++ },
		OnRoundEnd: func(result types.RoundResult, err error) {
			require.NoError(t, err)
			roundEnds = append(roundEnds, result)
		},
	})
	screen := newTestScreen(t, 40, 10)
	s.Draw(screen)

	require.NoError(t, s.Init())
	<-started
	assert.False(t, flags.RoundStopped(), "a new round clears the round flag")

	s.handle(tcell.KeyRune, 'a')
	s.handle(tcell.KeyRune, ' ')
	s.handle(tcell.KeyLeft, 0)
	assert.Equal(t, 2, inputQueue.Size())

	ctx := context.Background()
	require.NoError(t, stateManager.Set(ctx, &types.Snapshot{Lives: 5, Width: 40, Height: 7,
		Entities: []types.EntityView{{Text: "rain", X: 3, Y: 2, Kind: types.WordKindHazard}}}))
	require.NoError(t, s.Update())
	require.NoError(t, stateManager.Set(ctx, &types.Snapshot{Lives: 4, Width: 40, Height: 7, Over: true, Reason: types.EndReasonRoundStop}))
	require.NoError(t, s.Update())
	assert.Equal(t, 1, lifeLost)
	s.Draw(screen)

	s.handle(tcell.KeyCtrlC, 0)
	assert.True(t, flags.RoundStopped())

	close(release)
	waitFor(t, func() bool {
		s.Update()
		return len(roundEnds) == 1
	})
	s.Update()
	assert.Len(t, roundEnds, 1)
	assert.Equal(t, 9, roundEnds[0].Score)
	require.NoError(t, s.Destroy())
}

func TestGameOverScene(t *testing.T) {
	result := types.RoundResult{Score: 12, Level: 1, Reason: types.EndReasonLivesExhausted}

	skipped := NewGameOverScene(GameOverSceneOptions{Result: result, SkipReason: "Offline: score not submitted"})
	require.NoError(t, skipped.Update())
	assert.Equal(t, SubmitSkipped, skipped.Status())

	submitResult := make(chan error, 1)
	s := NewGameOverScene(GameOverSceneOptions{Result: result, SubmitResult: submitResult})
	require.NoError(t, s.Update())
	assert.Equal(t, SubmitPending, s.Status())
	submitResult <- nil
	require.NoError(t, s.Update())
	assert.Equal(t, SubmitDone, s.Status())

	failResult := make(chan error, 1)
	failed := NewGameOverScene(GameOverSceneOptions{Result: result, SubmitResult: failResult})
	failResult <- errors.New("connection refused")
	require.NoError(t, failed.Update())
	assert.Equal(t, SubmitFailed, failed.Status())

	failed.Draw(newTestScreen(t, 50, 12))
}

func TestLeaderboardScene(t *testing.T) {
	updates := make(chan messages.ServerLeaderboard, 2)
	cancelled := false
	s := NewLeaderboardScene(LeaderboardSceneOptions{
		Entries: []models.LeaderboardEntry{{Rank: 1, Username: "alice", Score: 10}},
		Updates: updates,
		Cancel:  func() { cancelled = true },
	})

	updates <- messages.ServerLeaderboard{Entries: []models.LeaderboardEntry{{Rank: 1, Username: "bob", Score: 20}}}
	updates <- messages.ServerLeaderboard{Entries: []models.LeaderboardEntry{
		{Rank: 1, Username: "carol", Score: 30},
		{Rank: 2, Username: "bob", Score: 20},
	}}
	require.NoError(t, s.Update())
	require.Len(t, s.Entries(), 2)
	assert.Equal(t, "carol", s.Entries()[0].Username)

	close(updates)
	require.NoError(t, s.Update())
	assert.False(t, s.live)

	s.Draw(newTestScreen(t, 50, 16))
	require.NoError(t, s.Destroy())
	assert.True(t, cancelled)
}

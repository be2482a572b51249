package scenes

import (
	"fmt"

	"github.com/cbodonnell/wordfall/pkg/messages"
	"github.com/cbodonnell/wordfall/pkg/repositories/models"
	"github.com/gdamore/tcell/v2"
)

type LeaderboardScene struct {
	*BaseScene

	entries []models.LeaderboardEntry
	updates <-chan messages.ServerLeaderboard
	live    bool
	notice  string
	onBack  func()
	cancel  func()
}

type LeaderboardSceneOptions struct {
	Entries []models.LeaderboardEntry
	// Updates delivers live boards; the scene shows the board as static when nil
	Updates <-chan messages.ServerLeaderboard
	Notice  string
	OnBack  func()
	// Cancel stops the live feed when the scene is destroyed
	Cancel func()
}

var _ Scene = &LeaderboardScene{}

func NewLeaderboardScene(opts LeaderboardSceneOptions) *LeaderboardScene {
	return &LeaderboardScene{
		BaseScene: &BaseScene{},
		entries:   opts.Entries,
		updates:   opts.Updates,
		live:      opts.Updates != nil,
		notice:    opts.Notice,
		onBack:    opts.OnBack,
		cancel:    opts.Cancel,
	}
}

func (s *LeaderboardScene) Destroy() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *LeaderboardScene) Entries() []models.LeaderboardEntry {
	return s.entries
}

func (s *LeaderboardScene) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter, tcell.KeyEscape, tcell.KeyCtrlC:
		if s.onBack != nil {
			s.onBack()
		}
	}
}

func (s *LeaderboardScene) Update() error {
	if !s.live {
		return nil
	}
	for {
		select {
		case board, ok := <-s.updates:
			if !ok {
				s.live = false
				s.notice = "Live updates stopped"
				return nil
			}
			s.entries = board.Entries
		default:
			return nil
		}
	}
}

func (s *LeaderboardScene) Draw(screen tcell.Screen) {
	title := "LEADERBOARD"
	if s.live {
		title += " (live)"
	}
	drawCentered(screen, 1, styleTitle, title)

	if len(s.entries) == 0 {
		drawCentered(screen, 3, styleDim, "no scores yet")
	}
	for i, entry := range s.entries {
		line := fmt.Sprintf("%2d. %-20s %8d", entry.Rank, entry.Username, entry.Score)
		drawCentered(screen, 3+i, styleDefault, line)
	}

	if s.notice != "" {
		drawCentered(screen, 4+len(s.entries), styleError, s.notice)
	}
	drawCentered(screen, 6+len(s.entries), styleDim, "press Enter to go back")
}

package scenes

import (
	"fmt"

	"github.com/cbodonnell/wordfall/client/network"
	"github.com/cbodonnell/wordfall/pkg/game/types"
	"github.com/gdamore/tcell/v2"
)

type SubmitStatus int

const (
	// SubmitSkipped means the score was not sent, e.g. offline or logged out
	SubmitSkipped SubmitStatus = iota
	SubmitPending
	SubmitDone
	SubmitFailed
)

type GameOverScene struct {
	*BaseScene

	result       types.RoundResult
	status       SubmitStatus
	statusDetail string
	submitResult <-chan error
	onContinue   func()
}

type GameOverSceneOptions struct {
	Result types.RoundResult
	// SubmitResult receives the outcome of the score submission; nil when nothing was submitted
	SubmitResult <-chan error
	// SkipReason explains why the score was not submitted
	SkipReason string
	OnContinue func()
}

var _ Scene = &GameOverScene{}

func NewGameOverScene(opts GameOverSceneOptions) *GameOverScene {
	s := &GameOverScene{
		BaseScene:    &BaseScene{},
		result:       opts.Result,
		status:       SubmitSkipped,
		statusDetail: opts.SkipReason,
		submitResult: opts.SubmitResult,
		onContinue:   opts.OnContinue,
	}
	if opts.SubmitResult != nil {
		s.status = SubmitPending
		s.statusDetail = "Submitting score..."
	}
	return s
}

func (s *GameOverScene) Status() SubmitStatus {
	return s.status
}

func (s *GameOverScene) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter, tcell.KeyEscape, tcell.KeyCtrlC:
		if s.onContinue != nil {
			s.onContinue()
		}
	}
}

func (s *GameOverScene) Update() error {
	if s.status != SubmitPending {
		return nil
	}
	select {
	case err := <-s.submitResult:
		if err != nil {
			s.status = SubmitFailed
			s.statusDetail = "Score not submitted: " + network.UserMessage(err)
			return nil
		}
		s.status = SubmitDone
		s.statusDetail = "Score submitted"
	default:
	}
	return nil
}

func (s *GameOverScene) Draw(screen tcell.Screen) {
	_, h := screen.Size()
	y := h/2 - 3
	if y < 0 {
		y = 0
	}

	drawCentered(screen, y, styleError.Bold(true), s.result.Reason.Message())
	drawCentered(screen, y+2, styleTitle, fmt.Sprintf("Final score: %d   Level: %d", s.result.Score, s.result.Level))

	detailStyle := styleDim
	switch s.status {
	case SubmitDone:
		detailStyle = styleOK
	case SubmitFailed:
		detailStyle = styleError
	}
	drawCentered(screen, y+4, detailStyle, s.statusDetail)
	drawCentered(screen, y+6, styleDim, "press Enter to continue")
}

package scenes

import (
	"fmt"

	"github.com/cbodonnell/wordfall/pkg/game/constants"
	"github.com/gdamore/tcell/v2"
)

type HelpScene struct {
	*BaseScene

	onBack func()
}

var _ Scene = &HelpScene{}

func NewHelpScene(onBack func()) *HelpScene {
	return &HelpScene{
		BaseScene: &BaseScene{},
		onBack:    onBack,
	}
}

var helpLines = []string{
	"Words fall from the top of the screen.",
	"Type a word and press Enter or Space to clear it.",
	"",
	fmt.Sprintf("A word that reaches the bottom costs a life. You start with %d.", constants.StartingLives),
	"Green words are bonus words worth extra points.",
	"Red words are hazards: let them fall, typing one ends the game.",
	"Words fall faster as your score grows.",
	"",
	"Ctrl+C ends the current game.",
}

func (s *HelpScene) HandleKey(ev *tcell.EventKey) {
	if s.onBack != nil {
		s.onBack()
	}
}

func (s *HelpScene) Draw(screen tcell.Screen) {
	drawCentered(screen, 1, styleTitle, "HOW TO PLAY")
	for i, line := range helpLines {
		drawCentered(screen, 3+i, styleDefault, line)
	}
	drawCentered(screen, 4+len(helpLines), styleDim, "press any key")
}

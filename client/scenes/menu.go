package scenes

import (
	"github.com/cbodonnell/wordfall/client/input"
	"github.com/gdamore/tcell/v2"
)

type MenuItem struct {
	Label  string
	Action func()
}

type MenuScene struct {
	*BaseScene

	title    string
	status   string
	notice   string
	items    []MenuItem
	selected int
	onQuit   func()
}

type MenuSceneOptions struct {
	// Status is shown under the title, e.g. who is logged in
	Status string
	// Notice is a one-off message such as an error from the previous screen
	Notice string
	Items  []MenuItem
	OnQuit func()
}

var _ Scene = &MenuScene{}

func NewMenuScene(opts MenuSceneOptions) *MenuScene {
	return &MenuScene{
		BaseScene: &BaseScene{},
		title:     "W O R D F A L L",
		status:    opts.Status,
		notice:    opts.Notice,
		items:     opts.Items,
		onQuit:    opts.OnQuit,
	}
}

func (s *MenuScene) Selected() int {
	return s.selected
}

func (s *MenuScene) HandleKey(ev *tcell.EventKey) {
	s.handle(ev.Key(), ev.Rune())
}

func (s *MenuScene) handle(key tcell.Key, r rune) {
	if len(s.items) == 0 {
		return
	}
	switch input.ActionFor(key) {
	case input.ActionUp:
		s.selected = (s.selected + len(s.items) - 1) % len(s.items)
	case input.ActionDown, input.ActionNext:
		s.selected = (s.selected + 1) % len(s.items)
	case input.ActionConfirm:
		if action := s.items[s.selected].Action; action != nil {
			action()
		}
	case input.ActionBack, input.ActionInterrupt:
		if s.onQuit != nil {
			s.onQuit()
		}
	default:
		if key == tcell.KeyRune && r == 'q' && s.onQuit != nil {
			s.onQuit()
		}
	}
}

func (s *MenuScene) Draw(screen tcell.Screen) {
	_, h := screen.Size()
	y := h/2 - len(s.items)/2 - 4
	if y < 0 {
		y = 0
	}

	drawCentered(screen, y, styleTitle, s.title)
	y += 1
	drawCentered(screen, y, styleDim, s.status)
	y += 2

	for i, item := range s.items {
		style := styleDefault
		label := "  " + item.Label + "  "
		if i == s.selected {
			style = styleFocus
		}
		drawCentered(screen, y+i, style, label)
	}

	if s.notice != "" {
		drawCentered(screen, y+len(s.items)+1, styleError, s.notice)
	}
}

package scenes

import (
	"github.com/gdamore/tcell/v2"
)

type Scene interface {
	Init() error
	Destroy() error
	// HandleKey is called from the UI loop for every key event
	HandleKey(ev *tcell.EventKey)
	// Update is called once per UI tick before Draw
	Update() error
	Draw(screen tcell.Screen)
}

// BaseScene provides no-op lifecycle methods for scenes to embed.
type BaseScene struct{}

func (s *BaseScene) Init() error {
	return nil
}

func (s *BaseScene) Destroy() error {
	return nil
}

func (s *BaseScene) Update() error {
	return nil
}

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleOK      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFocus   = tcell.StyleDefault.Reverse(true)
)

// drawText writes ASCII text starting at x, clipped to the screen width.
func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	w, h := screen.Size()
	if y < 0 || y >= h {
		return
	}
	for i, r := range text {
		cx := x + i
		if cx < 0 {
			continue
		}
		if cx >= w {
			return
		}
		screen.SetContent(cx, y, r, nil, style)
	}
}

func drawCentered(screen tcell.Screen, y int, style tcell.Style, text string) {
	w, _ := screen.Size()
	x := (w - len(text)) / 2
	if x < 0 {
		x = 0
	}
	drawText(screen, x, y, style, text)
}

func drawHLine(screen tcell.Screen, y int, style tcell.Style) {
	w, _ := screen.Size()
	for x := 0; x < w; x++ {
		screen.SetContent(x, y, tcell.RuneHLine, nil, style)
	}
}

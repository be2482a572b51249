package input

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cbodonnell/wordfall/pkg/game/types"
	"github.com/gdamore/tcell/v2"
)

// Action is what a key means outside of the typed line
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionNext
	ActionConfirm
	ActionBack
	// ActionInterrupt is Ctrl+C
	ActionInterrupt
)

// ActionFor classifies a key for menus and forms.
func ActionFor(key tcell.Key) Action {
	switch key {
	case tcell.KeyUp, tcell.KeyBacktab:
		return ActionUp
	case tcell.KeyDown:
		return ActionDown
	case tcell.KeyTab:
		return ActionNext
	case tcell.KeyEnter:
		return ActionConfirm
	case tcell.KeyEscape:
		return ActionBack
	case tcell.KeyCtrlC:
		return ActionInterrupt
	default:
		return ActionNone
	}
}

// ActionForEvent classifies a tcell key event.
func ActionForEvent(ev *tcell.EventKey) Action {
	return ActionFor(ev.Key())
}

// TranslateKey maps a key to an engine input event. Enter and Space submit the line,
// both backspace keys erase, printable ASCII is typed and everything else is dropped.
func TranslateKey(key tcell.Key, r rune) (types.InputEvent, bool) {
	switch key {
	case tcell.KeyEnter:
		return types.InputEvent{Type: types.InputSubmit}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return types.InputEvent{Type: types.InputBackspace}, true
	case tcell.KeyRune:
		if r == ' ' {
			return types.InputEvent{Type: types.InputSubmit}, true
		}
		if r < 32 || r > 126 {
			return types.InputEvent{}, false
		}
		return types.InputEvent{Type: types.InputRune, Rune: r}, true
	default:
		return types.InputEvent{}, false
	}
}

func TranslateEvent(ev *tcell.EventKey) (types.InputEvent, bool) {
	return TranslateKey(ev.Key(), ev.Rune())
}

// EditLine applies a key to a plain text field limited to max bytes of printable ASCII.
func EditLine(line string, key tcell.Key, r rune, max int) string {
	switch key {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(line) > 0 {
			return line[:len(line)-1]
		}
	case tcell.KeyRune:
		if r > 32 && r <= 126 && len(line) < max {
			return line + string(r)
		}
	}
	return line
}

// NotifyProcessStop calls stop once when the process receives SIGINT or SIGTERM.
func NotifyProcessStop(ctx context.Context, stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-ctx.Done():
		case <-sigChan:
			stop()
		}
	}()
}

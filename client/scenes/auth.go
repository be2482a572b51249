package scenes

import (
	"strings"

	"github.com/cbodonnell/wordfall/client/input"
	"github.com/cbodonnell/wordfall/client/network"
	"github.com/cbodonnell/wordfall/pkg/auth"
	"github.com/gdamore/tcell/v2"
)

type AuthMode int

const (
	AuthModeLogin AuthMode = iota
	AuthModeRegister
)

func (m AuthMode) String() string {
	if m == AuthModeRegister {
		return "REGISTER"
	}
	return "LOGIN"
}

type authField int

const (
	authFieldUsername authField = iota
	authFieldPassword
)

type AuthScene struct {
	*BaseScene

	mode     AuthMode
	username string
	password string
	focus    authField
	message  string
	pending  bool
	results  chan error

	onSubmit  func(username, password string) error
	onSuccess func()
	onBack    func()
}

type AuthSceneOptions struct {
	Mode AuthMode
	// OnSubmit runs off the UI goroutine and reports whether the server accepted the credentials
	OnSubmit  func(username, password string) error
	OnSuccess func()
	OnBack    func()
}

var _ Scene = &AuthScene{}

func NewAuthScene(opts AuthSceneOptions) *AuthScene {
	return &AuthScene{
		BaseScene: &BaseScene{},
		mode:      opts.Mode,
		results:   make(chan error, 1),
		onSubmit:  opts.OnSubmit,
		onSuccess: opts.OnSuccess,
		onBack:    opts.OnBack,
	}
}

func (s *AuthScene) HandleKey(ev *tcell.EventKey) {
	s.handle(ev.Key(), ev.Rune())
}

func (s *AuthScene) handle(key tcell.Key, r rune) {
	if s.pending {
		return
	}
	switch input.ActionFor(key) {
	case input.ActionBack, input.ActionInterrupt:
		if s.onBack != nil {
			s.onBack()
		}
		return
	case input.ActionUp, input.ActionDown, input.ActionNext:
		s.focus = 1 - s.focus
		return
	case input.ActionConfirm:
		if s.focus == authFieldUsername {
			s.focus = authFieldPassword
			return
		}
		s.submit()
		return
	}

	switch s.focus {
	case authFieldUsername:
		s.username = input.EditLine(s.username, key, r, auth.MaxUsernameLength)
	case authFieldPassword:
		s.password = input.EditLine(s.password, key, r, auth.MaxPasswordLength)
	}
}

func (s *AuthScene) submit() {
	if err := auth.ValidateUsername(s.username); err != nil {
		s.message = err.Error()
		s.focus = authFieldUsername
		return
	}
	if err := auth.ValidatePassword(s.password); err != nil {
		s.message = err.Error()
		return
	}

	s.pending = true
	s.message = "Connecting..."
	username, password := s.username, s.password
	go func() {
		s.results <- s.onSubmit(username, password)
	}()
}

func (s *AuthScene) Update() error {
	select {
	case err := <-s.results:
		s.pending = false
		if err != nil {
			s.message = network.UserMessage(err)
			s.password = ""
			return nil
		}
		s.message = ""
		if s.onSuccess != nil {
			s.onSuccess()
		}
	default:
	}
	return nil
}

func (s *AuthScene) Draw(screen tcell.Screen) {
	_, h := screen.Size()
	y := h/2 - 4
	if y < 0 {
		y = 0
	}

	drawCentered(screen, y, styleTitle, s.mode.String())

	fields := []struct {
		label string
		value string
		field authField
	}{
		{"Username", s.username, authFieldUsername},
		{"Password", strings.Repeat("*", len(s.password)), authFieldPassword},
	}
	for i, f := range fields {
		style := styleDefault
		if f.field == s.focus {
			style = styleFocus
		}
		value := f.value + strings.Repeat(" ", auth.MaxUsernameLength-len(f.value))
		drawCentered(screen, y+2+i*2, style, f.label+": "+value)
	}

	messageStyle := styleError
	if s.pending {
		messageStyle = styleDim
	}
	drawCentered(screen, y+7, messageStyle, s.message)
	drawCentered(screen, y+9, styleDim, "Tab switch field  Enter submit  Esc back")
}

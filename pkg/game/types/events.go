package types

// InputEventType identifies a decoded key or line coming from the input source.
type InputEventType uint8

const (
	InputRune InputEventType = iota
	InputBackspace
	InputSubmit
	InputLine
)

type InputEvent struct {
	Type InputEventType
	// Rune is set for InputRune
	Rune rune
	// Line is set for InputLine
	Line string
}

// ResolutionOutcome describes what a submitted line did.
type ResolutionOutcome uint8

const (
	ResolutionMiss ResolutionOutcome = iota
	ResolutionNormal
	ResolutionBonus
	ResolutionHazard
	// ResolutionIgnored is returned when the round is already over
	ResolutionIgnored
)

type Resolution struct {
	Outcome ResolutionOutcome
	Text    string
	Points  int
}

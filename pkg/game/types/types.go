package types

// WordKind is the behaviour class of a falling word.
type WordKind uint8

const (
	WordKindNormal WordKind = iota
	WordKindHazard
	WordKindBonus
)

func (k WordKind) String() string {
	switch k {
	case WordKindNormal:
		return "normal"
	case WordKindHazard:
		return "hazard"
	case WordKindBonus:
		return "bonus"
	default:
		return "unknown"
	}
}

// priority orders kinds when several words match the same input.
func (k WordKind) priority() int {
	switch k {
	case WordKindHazard:
		return 2
	case WordKindBonus:
		return 1
	default:
		return 0
	}
}

// Outranks reports whether a word of kind k at row y should be chosen
// over a word of kind other at row otherY.
func (k WordKind) Outranks(y int, other WordKind, otherY int) bool {
	if k.priority() != other.priority() {
		return k.priority() > other.priority()
	}
	return y > otherY
}

// EndReason records why a round left the running phase.
type EndReason uint8

const (
	EndReasonNone EndReason = iota
	EndReasonLivesExhausted
	EndReasonHazard
	EndReasonRoundStop
	EndReasonProcessStop
)

func (r EndReason) String() string {
	switch r {
	case EndReasonNone:
		return "none"
	case EndReasonLivesExhausted:
		return "lives exhausted"
	case EndReasonHazard:
		return "hazard typed"
	case EndReasonRoundStop:
		return "round stopped"
	case EndReasonProcessStop:
		return "process stopped"
	default:
		return "unknown"
	}
}

// Message is the line shown to the player when the round ends.
func (r EndReason) Message() string {
	switch r {
	case EndReasonProcessStop:
		return "EXITING APPLICATION (Ctrl+C)"
	case EndReasonRoundStop:
		return "GAME EXITED (Ctrl+C)"
	default:
		return "GAME OVER!"
	}
}

// RoundPhase is the lifecycle state of a round.
type RoundPhase uint8

const (
	RoundPhaseIdle RoundPhase = iota
	RoundPhaseRunning
	RoundPhaseOver
	RoundPhaseDraining
)

func (p RoundPhase) String() string {
	switch p {
	case RoundPhaseIdle:
		return "idle"
	case RoundPhaseRunning:
		return "running"
	case RoundPhaseOver:
		return "over"
	case RoundPhaseDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// RoundResult is what a finished round hands back to its caller.
type RoundResult struct {
	Score  int
	Lives  int
	Level  int
	Reason EndReason
	// Leaked is the number of workers still running when the drain gave up
	Leaked int
}

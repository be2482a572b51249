package flow

type GameMode int

const (
	GameModeMenu GameMode = iota
	GameModeAuth
	GameModePlay
	GameModeOver
	GameModeLeaderboard
	GameModeHelp
)

func (m GameMode) String() string {
	switch m {
	case GameModeMenu:
		return "Menu"
	case GameModeAuth:
		return "Auth"
	case GameModePlay:
		return "Play"
	case GameModeOver:
		return "Over"
	case GameModeLeaderboard:
		return "Leaderboard"
	case GameModeHelp:
		return "Help"
	}
	return "Unknown"
}

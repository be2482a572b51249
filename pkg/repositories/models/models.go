package models

type User struct {
	ID           int32  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

type Score struct {
	UserID    int32 `json:"user_id"`
	Score     int32 `json:"score"`
	CreatedAt int64 `json:"created_at"`
}

// LeaderboardEntry is the best score of one user.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Username  string `json:"username"`
	Score     int32  `json:"score"`
	AchievedAt int64  `json:"achieved_at"`
}

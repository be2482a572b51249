package repositories

import (
	"context"

	"github.com/cbodonnell/wordfall/pkg/repositories/models"
)

const (
	// MaxLeaderboardEntries is the largest leaderboard a repository returns
	MaxLeaderboardEntries = 10
)

type Repository interface {
	Close(ctx context.Context) error
	CreateUser(ctx context.Context, username string, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, userID int32) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SaveScore(ctx context.Context, userID int32, score int32) (*models.Score, error)
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	ListWords(ctx context.Context) ([]string, error)
	AddWords(ctx context.Context, words []string) (int, error)
}

// clampLimit keeps a leaderboard limit within 1..MaxLeaderboardEntries.
func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLeaderboardEntries {
		return MaxLeaderboardEntries
	}
	return limit
}

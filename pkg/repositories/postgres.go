package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to connStr and applies the migrations in the given directory.
// An empty migrations directory skips migrating.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string, migrations string) (Repository, error) {
	pool, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if migrations != "" {
		files, err := readMigrations(migrations)
		if err != nil {
			pool.Close()
			return nil, err
		}
		for _, m := range files {
			if _, err := pool.Exec(ctx, m.sql); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to execute migration %s: %v", m.path, err)
			}
		}
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return pool, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, username string, passwordHash string) (*models.User, error) {
	q := `
	INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3)
	RETURNING id;
	`
	createdAt := time.Now().UnixMilli()
	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
	if err := r.pool.QueryRow(ctx, q, username, passwordHash, createdAt).Scan(&user.ID); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, &ErrUserExists{Username: username}
		}
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, userID int32) (*models.User, error) {
	q := `
	SELECT id, username, password_hash, created_at FROM users WHERE id = $1;
	`
	return r.scanUser(r.pool.QueryRow(ctx, q, userID))
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	q := `
	SELECT id, username, password_hash, created_at FROM users WHERE username = $1;
	`
	return r.scanUser(r.pool.QueryRow(ctx, q, username))
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan user: %v", err)
	}
	return user, nil
}

func (r *PostgresRepository) SaveScore(ctx context.Context, userID int32, score int32) (*models.Score, error) {
	if score < 0 {
		return nil, fmt.Errorf("invalid score: %d", score)
	}
	q := `
	INSERT INTO scores (user_id, score, created_at) VALUES ($1, $2, $3);
	`
	createdAt := time.Now().UnixMilli()
	if _, err := r.pool.Exec(ctx, q, userID, score, createdAt); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to insert score: %v", err)
	}

	return &models.Score{
		UserID:    userID,
		Score:     score,
		CreatedAt: createdAt,
	}, nil
}

func (r *PostgresRepository) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, leaderboardQuery+" LIMIT $1;", clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %v", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		entry := models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.Username, &entry.Score, &entry.AchievedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %v", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %v", err)
	}

	return entries, nil
}

func (r *PostgresRepository) ListWords(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT word FROM words ORDER BY created_at, word")
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %v", err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan words: %v", err)
	}
	return words, nil
}

func (r *PostgresRepository) AddWords(ctx context.Context, words []string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO words (word, created_at) VALUES ($1, $2)
	ON CONFLICT (word) DO NOTHING;
	`
	createdAt := time.Now().UnixMilli()
	added := 0
	for _, word := range words {
		tag, err := tx.Exec(ctx, q, word, createdAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert word: %v", err)
		}
		added += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return added, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

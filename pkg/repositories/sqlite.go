package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/wordfall/pkg/repositories/models"
	"github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// a single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode = WAL;", "PRAGMA foreign_keys = ON;"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %s: %v", pragma, err)
		}
	}

	files, err := readMigrations(migrations)
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, m := range files {
		if _, err := db.ExecContext(ctx, m.sql); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %s: %v", m.path, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, username string, passwordHash string) (*models.User, error) {
	q := `
	INSERT INTO users (username, password_hash, created_at)
	VALUES (?, ?, ?);
	`
	createdAt := time.Now().UnixMilli()
	res, err := r.db.ExecContext(ctx, q, username, passwordHash, createdAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, &ErrUserExists{Username: username}
		}
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %v", err)
	}

	return &models.User{
		ID:           int32(id),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, userID int32) (*models.User, error) {
	q := `
	SELECT id, username, password_hash, created_at FROM users WHERE id = ?;
	`
	return r.scanUser(r.db.QueryRowContext(ctx, q, userID))
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	q := `
	SELECT id, username, password_hash, created_at FROM users WHERE username = ?;
	`
	return r.scanUser(r.db.QueryRowContext(ctx, q, username))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan user: %v", err)
	}
	return user, nil
}

func (r *SQLiteRepository) SaveScore(ctx context.Context, userID int32, score int32) (*models.Score, error) {
	if score < 0 {
		return nil, fmt.Errorf("invalid score: %d", score)
	}
	q := `
	INSERT INTO scores (user_id, score, created_at)
	VALUES (?, ?, ?);
	`
	createdAt := time.Now().UnixMilli()
	if _, err := r.db.ExecContext(ctx, q, userID, score, createdAt); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
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

func (r *SQLiteRepository) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, leaderboardQuery+" LIMIT ?;", clampLimit(limit))
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

func (r *SQLiteRepository) ListWords(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT word FROM words ORDER BY created_at, word;")
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %v", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("failed to scan word: %v", err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate words: %v", err)
	}

	return words, nil
}

func (r *SQLiteRepository) AddWords(ctx context.Context, words []string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	q := `
	INSERT OR IGNORE INTO words (word, created_at)
	VALUES (?, ?);
	`
	createdAt := time.Now().UnixMilli()
	added := 0
	for _, word := range words {
		res, err := tx.ExecContext(ctx, q, word, createdAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert word: %v", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count inserted words: %v", err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return added, nil
}

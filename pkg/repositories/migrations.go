package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type migration struct {
	path string
	sql  string
}

// readMigrations returns the .sql files of dir in name order.
func readMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		migrationPath := filepath.Join(dir, entry.Name())
		b, err := os.ReadFile(migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}
		migrations = append(migrations, migration{path: migrationPath, sql: string(b)})
	}
	return migrations, nil
}

const leaderboardQuery = `
SELECT u.username, s.score, MIN(s.created_at) AS achieved_at
FROM scores s
JOIN users u ON u.id = s.user_id
JOIN (SELECT user_id, MAX(score) AS best FROM scores GROUP BY user_id) b
	ON b.user_id = s.user_id AND s.score = b.best
GROUP BY u.id, u.username, s.score
ORDER BY s.score DESC, achieved_at ASC, u.username ASC
`

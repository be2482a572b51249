package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cbodonnell/wordfall/pkg/api/middleware"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/messages"
	"github.com/cbodonnell/wordfall/pkg/queue"
	"github.com/cbodonnell/wordfall/pkg/repositories"
	"github.com/cbodonnell/wordfall/pkg/repositories/models"
)

// WordsResponseBody is the response body for the words endpoint
type WordsResponseBody struct {
	Words []string `json:"words"`
}

// HandleListWords returns the stored word list, or fallback when the store is empty
func HandleListWords(repository repositories.Repository, fallback []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		words, err := repository.ListWords(r.Context())
		if err != nil {
			log.Error("failed to list words: %v", err)
			http.Error(w, "Failed to list words", http.StatusInternalServerError)
			return
		}
		if len(words) == 0 {
			words = fallback
		}

		writeJSON(w, http.StatusOK, &WordsResponseBody{Words: words})
	}
}

func HandleSubmitScore(repository repositories.Repository, scoreQueue queue.Queue[messages.ServerNewScore]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(middleware.UserContextKey).(*models.User)
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}

		score, err := strconv.ParseInt(r.FormValue("score"), 10, 32)
		if err != nil || score < 0 {
			http.Error(w, "Score must be a non-negative integer", http.StatusBadRequest)
			return
		}

		saved, err := repository.SaveScore(r.Context(), user.ID, int32(score))
		if err != nil {
			log.Error("failed to save score: %v", err)
			http.Error(w, "Failed to save score", http.StatusInternalServerError)
			return
		}
		log.Info("Saved score %d for %s", saved.Score, user.Username)

		newScore := messages.ServerNewScore{
			Timestamp: saved.CreatedAt,
			Username:  user.Username,
			Score:     saved.Score,
		}
		if err := scoreQueue.Enqueue(newScore); err != nil {
			log.Warn("failed to queue score broadcast: %v", err)
		}

		writeJSON(w, http.StatusCreated, saved)
	}
}

// LeaderboardResponseBody is the response body for the leaderboard endpoint
type LeaderboardResponseBody struct {
	Timestamp int64                     `json:"timestamp"`
	Entries   []models.LeaderboardEntry `json:"entries"`
}

func HandleLeaderboard(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := repositories.MaxLeaderboardEntries
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > repositories.MaxLeaderboardEntries {
				http.Error(w, "Limit must be between 1 and 10", http.StatusBadRequest)
				return
			}
			limit = n
		}

		entries, err := repository.GetLeaderboard(r.Context(), limit)
		if err != nil {
			log.Error("failed to get leaderboard: %v", err)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, &LeaderboardResponseBody{
			Timestamp: time.Now().UnixMilli(),
			Entries:   entries,
		})
	}
}

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}

package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"quizzy-service/internal/app"
)

// StatsHandler serves the read side as plain JSON: leaderboard, personal
// summary, and attempt history. These are snapshot reads, "as of last
// refresh", never a strongly consistent view.
type StatsHandler struct {
	service      *app.QuizService
	topSize      int
	historyLimit int
}

func NewStatsHandler(service *app.QuizService, topSize, historyLimit int) *StatsHandler {
	return &StatsHandler{service: service, topSize: topSize, historyLimit: historyLimit}
}

type leaderboardRow struct {
	Rank        int    `json:"rank"`
	Owner       string `json:"owner"`
	Score       int    `json:"score"`
	Total       int    `json:"total"`
	CompletedAt string `json:"completedAt"`
}

type historyRow struct {
	Score       int    `json:"score"`
	Total       int    `json:"total"`
	Percent     int    `json:"percent"`
	CompletedAt string `json:"completedAt"`
}

func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	n := h.topSize
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	lb, err := h.service.Leaderboard(r.Context(), n)
	if err != nil {
		http.Error(w, "leaderboard unavailable, try again", http.StatusServiceUnavailable)
		return
	}
	rows := make([]leaderboardRow, 0, len(lb.Rows))
	for _, row := range lb.Rows {
		rows = append(rows, leaderboardRow{
			Rank:        row.Rank,
			Owner:       shortOwner(row.Record.OwnerID),
			Score:       row.Record.Score,
			Total:       row.Record.Total,
			CompletedAt: row.Record.CompletedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, map[string]any{"rows": rows, "updatedAt": lb.UpdatedAt})
}

func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("userId")
	if ownerID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	summary, err := h.service.Summary(r.Context(), ownerID)
	if err != nil {
		http.Error(w, "stats unavailable, try again", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, summary)
}

func (h *StatsHandler) History(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("userId")
	if ownerID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	records, err := h.service.History(r.Context(), ownerID, limit)
	if err != nil {
		http.Error(w, "history unavailable, try again", http.StatusServiceUnavailable)
		return
	}
	rows := make([]historyRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, historyRow{
			Score:       rec.Score,
			Total:       rec.Total,
			Percent:     rec.Percent(),
			CompletedAt: rec.CompletedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, map[string]any{"rows": rows})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

// shortOwner abbreviates long opaque owner ids for display, keeping the
// first and last four characters.
func shortOwner(ownerID string) string {
	if ownerID == "" {
		return "unknown"
	}
	if len(ownerID) <= 8 {
		return ownerID
	}
	return ownerID[:4] + "..." + ownerID[len(ownerID)-4:]
}

// Package stats derives summaries and rankings from result record
// snapshots. Everything here is a pure function: same snapshot in, same
// output out, no incremental state. Record volume per user is small enough
// that recomputing on every read beats maintaining a running aggregate.
package stats

import (
	"sort"

	"quizzy-service/internal/domain"
)

// DefaultLeaderboardSize caps the leaderboard when callers pass n <= 0.
const DefaultLeaderboardSize = 20

// Summarize counts the owner's attempts and their best score. An owner with
// no records gets a zeroed summary. Idempotent over an immutable snapshot.
func Summarize(ownerID string, records []domain.ResultRecord) domain.Summary {
	summary := domain.Summary{OwnerID: ownerID}
	for _, r := range records {
		if r.OwnerID != ownerID {
			continue
		}
		summary.AttemptCount++
		if r.Score > summary.BestScore {
			summary.BestScore = r.Score
		}
	}
	return summary
}

// TopN ranks records by score descending and returns the first n rows.
// Ties on score go to the earlier CompletedAt (faster to the score ranks
// higher); a residual tie falls back to OwnerID so the ordering is total.
// Ranks are consecutive integers from 1; tied scores do not share a rank.
func TopN(records []domain.ResultRecord, n int) []domain.RankedResult {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	sorted := make([]domain.ResultRecord, len(records))
	copy(sorted, records)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if !sorted[i].CompletedAt.Equal(sorted[j].CompletedAt) {
			return sorted[i].CompletedAt.Before(sorted[j].CompletedAt)
		}
		return sorted[i].OwnerID < sorted[j].OwnerID
	})

	if n < len(sorted) {
		sorted = sorted[:n]
	}
	rows := make([]domain.RankedResult, 0, len(sorted))
	for i, r := range sorted {
		rows = append(rows, domain.RankedResult{Rank: i + 1, Record: r})
	}
	return rows
}

// History returns the owner's records newest first, truncated to limit.
// A limit <= 0 returns the full filtered set. Stable across calls on the
// same snapshot: equal timestamps fall back to score for a total order.
func History(ownerID string, records []domain.ResultRecord, limit int) []domain.ResultRecord {
	own := make([]domain.ResultRecord, 0)
	for _, r := range records {
		if r.OwnerID == ownerID {
			own = append(own, r)
		}
	}
	sort.Slice(own, func(i, j int) bool {
		if !own[i].CompletedAt.Equal(own[j].CompletedAt) {
			return own[i].CompletedAt.After(own[j].CompletedAt)
		}
		return own[i].Score > own[j].Score
	})
	if limit > 0 && limit < len(own) {
		own = own[:limit]
	}
	return own
}

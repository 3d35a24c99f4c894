package domain

import "time"

// Question is a single multiple-choice question from the bank.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Valid reports whether the question is structurally sound: a non-empty
// prompt, at least two distinct options, and a correct index that points at
// one of them. Invalid questions are filtered at pool load time so scoring
// never sees them.
func (q Question) Valid() bool {
	if q.Prompt == "" || len(q.Options) < 2 {
		return false
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return false
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := seen[opt]; dup {
			return false
		}
		seen[opt] = struct{}{}
	}
	return true
}

// ResultRecord is the immutable outcome of one completed quiz attempt.
// Append-only: once written it is never updated or deleted here.
type ResultRecord struct {
	OwnerID     string    `json:"ownerId"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completedAt"`
}

// Percent returns the attempt's score as a whole percentage.
// Total is guaranteed positive for persisted records.
func (r ResultRecord) Percent() int {
	if r.Total <= 0 {
		return 0
	}
	return r.Score * 100 / r.Total
}

// Summary is the per-user aggregate recomputed from the record set.
type Summary struct {
	OwnerID      string `json:"ownerId"`
	AttemptCount int    `json:"attemptCount"`
	BestScore    int    `json:"bestScore"`
}

// RankedResult pairs a leaderboard rank with its record. Ranks start at 1
// and increase by exactly 1 per row; tied scores do not share a rank.
type RankedResult struct {
	Rank   int          `json:"rank"`
	Record ResultRecord `json:"record"`
}

// Leaderboard is the ranked top-N view over all records.
type Leaderboard struct {
	Rows      []RankedResult `json:"rows"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Profile is the advisory cached copy of a user's derived stats. It exists
// to avoid recomputation latency and is never authoritative: readers must
// prefer a direct aggregation over the record set whenever one is possible.
type Profile struct {
	Name         string `json:"name"`
	TotalQuizzes int    `json:"totalQuizzes"`
	BestScore    int    `json:"bestScore"`
}

package quiz

import (
	"time"

	"quizzy-service/internal/domain"
)

const noSelection = -1

// Session drives one quiz attempt: a fixed question snapshot sampled once
// at start, a cursor, committed answers, and a running score. Selecting an
// option only stages it; Advance is the single transition that scores and
// moves the cursor, so "still deciding" never leaks into the score.
//
// A session is owned by exactly one flow and is never shared across
// goroutines, so it carries no lock.
type Session struct {
	questions []domain.Question
	position  int
	answers   map[int]int
	staged    int
	score     int
	now       func() time.Time
}

// NewSession samples n questions from the pool and starts at position zero.
// An empty sample refuses to start: a zero-length session would persist a
// record with total 0, which downstream percentage math forbids.
func NewSession(pool *Pool, n int) (*Session, error) {
	return NewSessionWithClock(pool, n, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(pool *Pool, n int, now func() time.Time) (*Session, error) {
	questions, err := pool.Sample(n)
	if err != nil {
		return nil, err
	}
	return &Session{
		questions: questions,
		answers:   make(map[int]int, len(questions)),
		staged:    noSelection,
		now:       now,
	}, nil
}

// Completed reports whether every question has been answered.
func (s *Session) Completed() bool {
	return s.position == len(s.questions)
}

// Position returns the zero-based index of the current question.
func (s *Session) Position() int {
	return s.position
}

// Total returns the number of questions in this attempt. It can be smaller
// than the requested length when the pool had fewer valid questions.
func (s *Session) Total() int {
	return len(s.questions)
}

// Score returns the running score over committed answers.
func (s *Session) Score() int {
	return s.score
}

// Current returns the question at the cursor. Calling it on a completed
// session is a caller defect.
func (s *Session) Current() (domain.Question, error) {
	if s.Completed() {
		return domain.Question{}, domain.ErrInvalidState
	}
	return s.questions[s.position], nil
}

// SelectOption stages a tentative choice for the current question. It may
// be called repeatedly to change the choice; nothing is scored until
// Advance commits it.
func (s *Session) SelectOption(option int) error {
	if s.Completed() {
		return domain.ErrInvalidState
	}
	if option < 0 || option >= len(s.questions[s.position].Options) {
		return domain.ErrOptionOutOfRange
	}
	s.staged = option
	return nil
}

// Advance commits the staged choice: records it, awards one point iff it
// matches the correct index, clears the stage, and moves the cursor. With
// no staged choice it fails with ErrNoSelection; callers are expected to
// make that unreachable by gating their "next" action on a selection.
func (s *Session) Advance() error {
	if s.Completed() {
		return domain.ErrInvalidState
	}
	if s.staged == noSelection {
		return domain.ErrNoSelection
	}
	s.answers[s.position] = s.staged
	if s.staged == s.questions[s.position].CorrectIndex {
		s.score++
	}
	s.staged = noSelection
	s.position++
	return nil
}

// Finish seals a completed attempt into an immutable record stamped with
// the clock's now. Before completion it fails with ErrNotComplete and
// never returns a record.
func (s *Session) Finish(ownerID string) (domain.ResultRecord, error) {
	if !s.Completed() {
		return domain.ResultRecord{}, domain.ErrNotComplete
	}
	return domain.ResultRecord{
		OwnerID:     ownerID,
		Score:       s.score,
		Total:       len(s.questions),
		CompletedAt: s.now(),
	}, nil
}

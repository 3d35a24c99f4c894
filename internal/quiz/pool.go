package quiz

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"quizzy-service/internal/domain"
)

// Pool holds the validated question catalog and supports sampling a
// quiz-sized subset. It is read-only after construction, so sampling from
// multiple goroutines only needs to serialize the rand source.
type Pool struct {
	questions []domain.Question

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewPool filters structurally invalid questions out of raw and keeps the
// rest. Dropped questions are logged, not surfaced per-item; they only
// matter if filtering empties the pool, which surfaces later as ErrEmptyPool.
func NewPool(raw []domain.Question) *Pool {
	return NewPoolWithRand(raw, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewPoolWithRand allows a seeded source for deterministic tests.
func NewPoolWithRand(raw []domain.Question, rnd *rand.Rand) *Pool {
	valid := make([]domain.Question, 0, len(raw))
	for _, q := range raw {
		if !q.Valid() {
			log.Printf("dropping malformed question %q", q.ID)
			continue
		}
		valid = append(valid, q)
	}
	return &Pool{questions: valid, rnd: rnd}
}

// Size reports how many valid questions the pool holds.
func (p *Pool) Size() int {
	return len(p.questions)
}

// Sample returns n distinct questions chosen uniformly at random, without
// replacement. A pool smaller than n yields every question it has rather
// than failing; an empty pool yields ErrEmptyPool.
func (p *Pool) Sample(n int) ([]domain.Question, error) {
	if len(p.questions) == 0 {
		return nil, domain.ErrEmptyPool
	}
	if n > len(p.questions) {
		n = len(p.questions)
	}
	p.rndMu.Lock()
	perm := p.rnd.Perm(len(p.questions))
	p.rndMu.Unlock()
	picked := make([]domain.Question, 0, n)
	for _, idx := range perm[:n] {
		picked = append(picked, p.questions[idx])
	}
	return picked, nil
}

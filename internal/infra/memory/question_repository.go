package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quizzy-service/internal/domain"
	"quizzy-service/internal/quiz"
)

// QuestionSource fetches raw question data from a backing store.
type QuestionSource interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the validated pool with a TTL so session starts
// do not hit the backing store every time. Loads are coalesced through
// singleflight: concurrent cold starts trigger a single source read.
type QuestionRepository struct {
	source QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	pool      *quiz.Pool
	expiresAt time.Time
}

func NewQuestionRepository(source QuestionSource, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetPool(ctx context.Context) (*quiz.Pool, error) {
	now := r.clock()

	r.mu.RLock()
	if r.pool != nil && r.expiresAt.After(now) {
		pool := r.pool
		r.mu.RUnlock()
		return pool, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("pool", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.pool != nil && r.expiresAt.After(now) {
			pool := r.pool
			r.mu.RUnlock()
			return pool, nil
		}
		r.mu.RUnlock()

		raw, err := r.source.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		pool := quiz.NewPool(raw)

		r.mu.Lock()
		r.pool = pool
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*quiz.Pool), nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionSource serves a fixed question slice (tests, demo mode).
type StaticQuestionSource struct {
	questions []domain.Question
}

func NewStaticQuestionSource(questions []domain.Question) *StaticQuestionSource {
	return &StaticQuestionSource{questions: questions}
}

func (s *StaticQuestionSource) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return s.questions, nil
}

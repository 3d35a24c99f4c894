package app

import (
	"context"
	"log"
	"sync"
	"time"

	"quizzy-service/internal/domain"
	"quizzy-service/internal/quiz"
	"quizzy-service/internal/stats"
)

// QuestionRepository provides the validated question pool (from cache or
// the backing store).
type QuestionRepository interface {
	GetPool(ctx context.Context) (*quiz.Pool, error)
}

// ResultStore is the durable append-only store of completed attempts.
type ResultStore interface {
	Append(ctx context.Context, record domain.ResultRecord) error
	QueryAll(ctx context.Context) ([]domain.ResultRecord, error)
	QueryByOwner(ctx context.Context, ownerID string) ([]domain.ResultRecord, error)
}

// ProfileCache is the advisory per-user stats cache. Both operations are
// best-effort; callers treat every failure as a miss.
type ProfileCache interface {
	ReadCached(ctx context.Context, ownerID string) (domain.Profile, bool, error)
	WriteCached(ctx context.Context, ownerID string, profile domain.Profile) error
}

// Progress is the caller-facing view of a session's cursor and score.
type Progress struct {
	Position  int  `json:"position"`
	Total     int  `json:"total"`
	Score     int  `json:"score"`
	Completed bool `json:"completed"`
}

// FinishOutcome carries the sealed record plus a non-fatal persistence
// warning. A failed write must not keep the user from seeing their score,
// so the warning travels beside the record instead of replacing it.
type FinishOutcome struct {
	Record  domain.ResultRecord
	Warning error
}

// QuizService contains the quiz engine use cases. Every operation takes the
// owner explicitly; there is no ambient current-user state. Sessions are
// registered one per owner. A session itself is sequential and unlocked,
// the registry map is the only shared structure.
type QuizService struct {
	questions QuestionRepository
	results   ResultStore
	profiles  ProfileCache // optional
	quizLen   int
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*quiz.Session

	subMu       sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewQuizService(questions QuestionRepository, results ResultStore, profiles ProfileCache, quizLen int) *QuizService {
	return NewQuizServiceWithClock(questions, results, profiles, quizLen, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(questions QuestionRepository, results ResultStore, profiles ProfileCache, quizLen int, now func() time.Time) *QuizService {
	return &QuizService{
		questions:   questions,
		results:     results,
		profiles:    profiles,
		quizLen:     quizLen,
		now:         now,
		sessions:    make(map[string]*quiz.Session),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Start samples a fresh session for the owner and registers it. Starting
// over an existing session discards the old one: abandonment needs no
// compensating action because nothing partial is ever persisted.
func (s *QuizService) Start(ctx context.Context, ownerID string) (Progress, error) {
	pool, err := s.questions.GetPool(ctx)
	if err != nil {
		return Progress{}, err
	}
	session, err := quiz.NewSessionWithClock(pool, s.quizLen, s.now)
	if err != nil {
		return Progress{}, err
	}

	s.mu.Lock()
	s.sessions[ownerID] = session
	s.mu.Unlock()
	return progressOf(session), nil
}

// Abandon discards the owner's in-flight session, if any.
func (s *QuizService) Abandon(_ context.Context, ownerID string) {
	s.mu.Lock()
	delete(s.sessions, ownerID)
	s.mu.Unlock()
}

// CurrentQuestion returns the question at the owner's cursor.
func (s *QuizService) CurrentQuestion(_ context.Context, ownerID string) (domain.Question, Progress, error) {
	session, err := s.session(ownerID)
	if err != nil {
		return domain.Question{}, Progress{}, err
	}
	q, err := session.Current()
	if err != nil {
		return domain.Question{}, Progress{}, err
	}
	return q, progressOf(session), nil
}

// Select stages a tentative choice for the owner's current question.
func (s *QuizService) Select(_ context.Context, ownerID string, option int) (Progress, error) {
	session, err := s.session(ownerID)
	if err != nil {
		return Progress{}, err
	}
	if err := session.SelectOption(option); err != nil {
		return Progress{}, err
	}
	return progressOf(session), nil
}

// Advance commits the staged choice and moves the cursor.
func (s *QuizService) Advance(_ context.Context, ownerID string) (Progress, error) {
	session, err := s.session(ownerID)
	if err != nil {
		return Progress{}, err
	}
	if err := session.Advance(); err != nil {
		return Progress{}, err
	}
	return progressOf(session), nil
}

// Finish seals the completed session, persists the record, drops the
// session, refreshes the advisory profile cache, and pushes a fresh
// leaderboard to subscribers. Persistence failure is demoted to a warning
// in the outcome; everything after the append is best-effort.
func (s *QuizService) Finish(ctx context.Context, ownerID string) (FinishOutcome, error) {
	session, err := s.session(ownerID)
	if err != nil {
		return FinishOutcome{}, err
	}
	record, err := session.Finish(ownerID)
	if err != nil {
		return FinishOutcome{}, err
	}

	s.mu.Lock()
	delete(s.sessions, ownerID)
	s.mu.Unlock()

	outcome := FinishOutcome{Record: record}
	if err := s.results.Append(ctx, record); err != nil {
		log.Printf("persist attempt for %s: %v", ownerID, err)
		outcome.Warning = err
		return outcome, nil
	}

	s.refreshProfile(ctx, ownerID)
	s.broadcastLeaderboard(ctx)
	return outcome, nil
}

// Summary recomputes the owner's aggregate from the record set. The cached
// profile is only consulted when the store itself is unreachable; when both
// are available the aggregation wins.
func (s *QuizService) Summary(ctx context.Context, ownerID string) (domain.Summary, error) {
	records, err := s.results.QueryByOwner(ctx, ownerID)
	if err != nil {
		if cached, ok := s.readProfile(ctx, ownerID); ok {
			return domain.Summary{
				OwnerID:      ownerID,
				AttemptCount: cached.TotalQuizzes,
				BestScore:    cached.BestScore,
			}, nil
		}
		return domain.Summary{}, err
	}
	summary := stats.Summarize(ownerID, records)
	s.writeProfile(ctx, ownerID, summary)
	return summary, nil
}

// Leaderboard ranks the top n attempts across all owners, as of the
// snapshot read. Concurrent appends from other users may be missed.
func (s *QuizService) Leaderboard(ctx context.Context, n int) (domain.Leaderboard, error) {
	records, err := s.results.QueryAll(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{
		Rows:      stats.TopN(records, n),
		UpdatedAt: s.now(),
	}, nil
}

// History returns the owner's recent attempts, newest first.
func (s *QuizService) History(ctx context.Context, ownerID string, limit int) ([]domain.ResultRecord, error) {
	records, err := s.results.QueryByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return stats.History(ownerID, records, limit), nil
}

// Subscribe returns a channel that receives a leaderboard snapshot after
// every persisted attempt. The caller must invoke cancel to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, n int) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Leaderboard(ctx, n)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	ch <- initial

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel, nil
}

func (s *QuizService) session(ownerID string) (*quiz.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[ownerID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *QuizService) broadcastLeaderboard(ctx context.Context) {
	lb, err := s.Leaderboard(ctx, 0)
	if err != nil {
		log.Printf("leaderboard refresh: %v", err)
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale snapshot so a slow reader never blocks the push.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (s *QuizService) readProfile(ctx context.Context, ownerID string) (domain.Profile, bool) {
	if s.profiles == nil {
		return domain.Profile{}, false
	}
	profile, ok, err := s.profiles.ReadCached(ctx, ownerID)
	if err != nil || !ok {
		return domain.Profile{}, false
	}
	return profile, true
}

func (s *QuizService) writeProfile(ctx context.Context, ownerID string, summary domain.Summary) {
	if s.profiles == nil {
		return
	}
	existing, _ := s.readProfile(ctx, ownerID)
	profile := domain.Profile{
		Name:         existing.Name,
		TotalQuizzes: summary.AttemptCount,
		BestScore:    summary.BestScore,
	}
	if err := s.profiles.WriteCached(ctx, ownerID, profile); err != nil {
		log.Printf("profile cache write for %s: %v", ownerID, err)
	}
}

func (s *QuizService) refreshProfile(ctx context.Context, ownerID string) {
	records, err := s.results.QueryByOwner(ctx, ownerID)
	if err != nil {
		return
	}
	s.writeProfile(ctx, ownerID, stats.Summarize(ownerID, records))
}

func progressOf(session *quiz.Session) Progress {
	return Progress{
		Position:  session.Position(),
		Total:     session.Total(),
		Score:     session.Score(),
		Completed: session.Completed(),
	}
}

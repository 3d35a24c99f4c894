package memory

import (
	"context"
	"testing"
	"time"

	"quizzy-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	source := &countingSource{
		QuestionSource: NewStaticQuestionSource(sampleBank()),
	}
	repo := NewQuestionRepository(source, time.Minute)

	if _, err := repo.GetPool(context.Background()); err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source loaded once, got %d", source.calls)
	}

	if _, err := repo.GetPool(context.Background()); err != nil {
		t.Fatalf("get pool 2: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls %d", source.calls)
	}
}

func TestQuestionRepositoryFiltersInvalid(t *testing.T) {
	bank := append(sampleBank(), domain.Question{ID: "broken", Prompt: "", Options: []string{"a", "b"}})
	repo := NewQuestionRepository(NewStaticQuestionSource(bank), time.Minute)

	pool, err := repo.GetPool(context.Background())
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if pool.Size() != len(sampleBank()) {
		t.Fatalf("expected %d valid questions, got %d", len(sampleBank()), pool.Size())
	}
}

type countingSource struct {
	QuestionSource
	calls int
}

func (s *countingSource) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	s.calls++
	return s.QuestionSource.LoadQuestions(ctx)
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectIndex: 1},
		{ID: "q2", Prompt: "How many bits in a byte?", Options: []string{"8", "16"}, CorrectIndex: 0},
	}
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-royale/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewDefaultQuizLoader()}
	repo := NewQuizRepository(loader, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), domain.DefaultQuizID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	// Mutating a returned copy must not leak into the cache.
	quiz.Questions[0].Answer = 0

	again, err := repo.GetQuiz(context.Background(), domain.DefaultQuizID)
	if err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if again.Questions[0].Answer != 2 {
		t.Fatalf("cached quiz was mutated: %+v", again.Questions[0])
	}
}

func TestQuizRepositoryRejectsInvalidQuiz(t *testing.T) {
	loader := NewStaticQuizLoader(map[string]domain.Quiz{
		"bad": {ID: "bad", Questions: []domain.Question{{Prompt: "?", Options: []string{"only"}}}},
	})
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "bad"); !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected ErrInvalidQuiz, got %v", err)
	}
	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

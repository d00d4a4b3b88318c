package evaluator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/yourusername/interview-api/internal/domain/entity"
	apperrors "github.com/yourusername/interview-api/internal/pkg/errors"
)

// ============================================================================
// Моки для Evaluator
// ============================================================================

// MockTextGenerator реализует TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt, maxTokens)
	return args.String(0), args.Error(1)
}

// MockCacheRepoForEvaluator реализует repository.CacheRepository (минимально)
type MockCacheRepoForEvaluator struct {
	mock.Mock
}

func (m *MockCacheRepoForEvaluator) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

// Остальные методы не используются в Evaluator, но нужны для интерфейса
func (m *MockCacheRepoForEvaluator) SetJSON(key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (m *MockCacheRepoForEvaluator) GetJSON(key string, dest interface{}) error { return nil }

func newTestEvaluator(gen *MockTextGenerator, cache *MockCacheRepoForEvaluator) *Evaluator {
	deps := &Dependencies{Generator: gen}
	if cache != nil {
		deps.CacheRepo = cache
	}
	return NewEvaluator(DefaultConfig(), deps)
}

// ============================================================================
// Тесты GenerateQuestions
// ============================================================================

func TestEvaluator_GenerateQuestions_SplitsLines(t *testing.T) {
	// Arrange
	gen := new(MockTextGenerator)
	gen.On("Complete", mock.Anything, questionSystemPrompt, mock.Anything, 3*DefaultTokensPerQuestion).
		Return("What is a goroutine?\n\nExplain channel deadlocks.\nHow does the scheduler work?\n", nil)

	ev := newTestEvaluator(gen, nil)
	spec := QuestionSpec{Industry: "Tech", Topic: "Go", Type: "technical", Role: "Backend Engineer", NumQuestions: 3, Duration: 30, Difficulty: "medium"}

	// Act
	questions, err := ev.GenerateQuestions(context.Background(), spec)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"What is a goroutine?",
		"Explain channel deadlocks.",
		"How does the scheduler work?",
	}, questions, "Пустые строки должны отбрасываться")
	gen.AssertExpectations(t)
}

func TestEvaluator_GenerateQuestions_EmptyContent(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("  \n\n ", nil)

	ev := newTestEvaluator(gen, nil)

	questions, err := ev.GenerateQuestions(context.Background(), QuestionSpec{NumQuestions: 5})

	assert.Nil(t, questions)
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)
}

func TestEvaluator_GenerateQuestions_RequestFailed(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("connection refused"))

	ev := newTestEvaluator(gen, nil)

	_, err := ev.GenerateQuestions(context.Background(), QuestionSpec{NumQuestions: 5})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "question generation request failed")
}

// ============================================================================
// Тесты ScoreAnswer
// ============================================================================

func TestEvaluator_ScoreAnswer_SkipSentinel(t *testing.T) {
	// Пропуск вопроса не должен обращаться к коллаборатору вовсе
	gen := new(MockTextGenerator)
	ev := newTestEvaluator(gen, nil)

	score := ev.ScoreAnswer(context.Background(), "What is a goroutine?", entity.SkipAnswer)

	assert.Equal(t, entity.DefaultScore(), score)
	assert.Equal(t, entity.DefaultSuggestions, score.Suggestions)
	gen.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluator_ScoreAnswer_ParsesTranscript(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Complete", mock.Anything, scoreSystemPrompt, mock.Anything, DefaultScoreMaxTokens).
		Return("Overall Score: 6/10, Relevance Score: 7/10, Clarity Score: 5/10, Completeness Score: 4/10, Suggestions: Go deeper.", nil)

	ev := newTestEvaluator(gen, nil)

	score := ev.ScoreAnswer(context.Background(), "Question?", "Answer.")

	assert.Equal(t, 6, score.OverallScore)
	assert.Equal(t, 7, score.Relevance)
	assert.Equal(t, "Go deeper.", score.Suggestions)
	gen.AssertExpectations(t)
}

func TestEvaluator_ScoreAnswer_RequestFailedDegrades(t *testing.T) {
	// Сбой вызова никогда не фатален: оценка деградирует до нулевой
	gen := new(MockTextGenerator)
	gen.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("request timeout"))

	cache := new(MockCacheRepoForEvaluator)
	cache.On("Increment", "evaluator:degraded:request_failed").Return(int64(1), nil)

	ev := newTestEvaluator(gen, cache)

	score := ev.ScoreAnswer(context.Background(), "Question?", "Answer.")

	assert.Equal(t, entity.DefaultScore(), score)
	cache.AssertExpectations(t)
}

func TestEvaluator_ScoreAnswer_EmptyTranscriptDegrades(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("   ", nil)

	cache := new(MockCacheRepoForEvaluator)
	cache.On("Increment", "evaluator:degraded:empty_content").Return(int64(1), nil)

	ev := newTestEvaluator(gen, cache)

	score := ev.ScoreAnswer(context.Background(), "Question?", "Answer.")

	assert.Equal(t, entity.DefaultScore(), score)
	cache.AssertExpectations(t)
}

func TestEvaluator_ScoreAnswer_CounterErrorIgnored(t *testing.T) {
	// Ошибка Redis при обновлении счетчика не влияет на результат
	gen := new(MockTextGenerator)
	gen.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("quota exceeded"))

	cache := new(MockCacheRepoForEvaluator)
	cache.On("Increment", "evaluator:degraded:request_failed").Return(int64(0), errors.New("redis down"))

	ev := newTestEvaluator(gen, cache)

	score := ev.ScoreAnswer(context.Background(), "Question?", "Answer.")

	assert.Equal(t, entity.DefaultScore(), score)
}

package evaluator

import (
	"context"

	"github.com/yourusername/interview-api/internal/domain/repository"
)

// Константы значений по умолчанию
const (
	// DefaultTokensPerQuestion — оценочный бюджет токенов на один вопрос
	DefaultTokensPerQuestion = 1500
	// DefaultScoreMaxTokens — бюджет токенов на одну оценку ответа
	DefaultScoreMaxTokens = 1500
)

// Config содержит настройки компонентов Evaluator
type Config struct {
	// TokensPerQuestion — бюджет токенов генерации, умножается на число вопросов
	TokensPerQuestion int
	// ScoreMaxTokens — бюджет токенов одного вызова оценивания
	ScoreMaxTokens int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		TokensPerQuestion: DefaultTokensPerQuestion,
		ScoreMaxTokens:    DefaultScoreMaxTokens,
	}
}

// TextGenerator — граница коллаборатора генерации текста.
// Формат ответа контрактно не гарантирован.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Dependencies содержит зависимости Evaluator
type Dependencies struct {
	Generator TextGenerator
	// CacheRepo опционален: используется только для счетчиков деградации оценивания
	CacheRepo repository.CacheRepository
}

// QuestionSpec — параметры интервью для генерации вопросов
type QuestionSpec struct {
	Industry     string
	Topic        string
	Type         string
	Role         string
	NumQuestions int
	// Duration в минутах, как вводит пользователь
	Duration   int
	Difficulty string
}

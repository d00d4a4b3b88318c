package evaluator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/interview-api/internal/domain/entity"
	apperrors "github.com/yourusername/interview-api/internal/pkg/errors"
)

// Evaluator оркестрирует вызовы коллаборатора генерации текста:
// генерация вопросов интервью и оценивание ответов кандидата.
type Evaluator struct {
	// Настройки
	config *Config

	// Зависимости
	deps *Dependencies
}

// NewEvaluator создает новый Evaluator
func NewEvaluator(config *Config, deps *Dependencies) *Evaluator {
	return &Evaluator{
		config: config,
		deps:   deps,
	}
}

// GenerateQuestions запрашивает у коллаборатора NumQuestions вопросов.
// Ответ режется по строкам, пустые строки отбрасываются. Пустой итог —
// apperrors.ErrGenerationFailed: фатально для создания интервью, но
// существующие данные не затрагивает. Качество вопросов не проверяется,
// это ответственность коллаборатора.
func (e *Evaluator) GenerateQuestions(ctx context.Context, spec QuestionSpec) ([]string, error) {
	maxTokens := spec.NumQuestions * e.config.TokensPerQuestion

	content, err := e.deps.Generator.Complete(ctx, questionSystemPrompt, buildQuestionPrompt(spec), maxTokens)
	if err != nil {
		log.Printf("[Evaluator] Ошибка генерации вопросов (%s/%s): %v", spec.Industry, spec.Topic, err)
		return nil, fmt.Errorf("question generation request failed: %w", err)
	}

	questions := splitQuestions(content)
	if len(questions) == 0 {
		log.Printf("[Evaluator] Генератор вернул пустой список вопросов (%s/%s)", spec.Industry, spec.Topic)
		return nil, apperrors.ErrGenerationFailed
	}

	log.Printf("[Evaluator] Сгенерировано %d вопросов (запрошено %d)", len(questions), spec.NumQuestions)
	return questions, nil
}

// ScoreAnswer оценивает ответ кандидата на вопрос.
// Никогда не возвращает ошибку: сбой вызова, таймаут и пустой транскрипт
// деградируют до нулевой оценки с дефолтными рекомендациями, чтобы путь
// отправки ответа оставался неблокирующим. Сбои фиксируются счетчиком
// только для наблюдаемости.
func (e *Evaluator) ScoreAnswer(ctx context.Context, questionText, answerText string) entity.Score {
	if entity.IsSkipped(answerText) {
		return entity.DefaultScore()
	}

	content, err := e.deps.Generator.Complete(ctx, scoreSystemPrompt, buildScorePrompt(questionText, answerText), e.config.ScoreMaxTokens)
	if err != nil {
		log.Printf("[Evaluator] Оценка ответа деградировала до нулевой: %v", err)
		e.bumpDegraded("request_failed")
		return entity.DefaultScore()
	}

	if strings.TrimSpace(content) == "" {
		log.Printf("[Evaluator] Коллаборатор вернул пустой транскрипт оценки")
		e.bumpDegraded("empty_content")
		return entity.DefaultScore()
	}

	return ParseEvaluation(content)
}

// bumpDegraded инкрементирует счетчик деградаций оценивания (best effort)
func (e *Evaluator) bumpDegraded(reason string) {
	if e.deps.CacheRepo == nil {
		return
	}
	if _, err := e.deps.CacheRepo.Increment("evaluator:degraded:" + reason); err != nil {
		log.Printf("[Evaluator] Не удалось обновить счетчик деградаций (%s): %v", reason, err)
	}
}

// splitQuestions разбирает ответ генератора: по вопросу на строку
func splitQuestions(content string) []string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	questions := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		questions = append(questions, line)
	}
	return questions
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/interview-api/internal/domain/entity"
	"github.com/yourusername/interview-api/internal/domain/repository"
	apperrors "github.com/yourusername/interview-api/internal/pkg/errors"
	"github.com/yourusername/interview-api/internal/service/evaluator"
)

// statsCacheTTL — время жизни кешированной статистики дашборда
const statsCacheTTL = time.Minute

// Evaluation определяет методы Evaluator, необходимые InterviewService
type Evaluation interface {
	GenerateQuestions(ctx context.Context, spec evaluator.QuestionSpec) ([]string, error)
	ScoreAnswer(ctx context.Context, questionText, answerText string) entity.Score
}

// InterviewService предоставляет методы для работы с интервью.
// Владеет машиной состояний интервью: pending → completed (терминально).
type InterviewService struct {
	interviewRepo repository.InterviewRepository
	cacheRepo     repository.CacheRepository
	evaluation    Evaluation
}

// NewInterviewService создает новый сервис интервью
func NewInterviewService(
	interviewRepo repository.InterviewRepository,
	cacheRepo repository.CacheRepository,
	evaluation Evaluation,
) *InterviewService {
	return &InterviewService{
		interviewRepo: interviewRepo,
		cacheRepo:     cacheRepo,
		evaluation:    evaluation,
	}
}

// CreateInterview генерирует вопросы и создает интервью.
// Длительность в spec задана в минутах, хранится в секундах.
// Ошибка генерации фатальна: интервью не создается вовсе.
func (s *InterviewService) CreateInterview(ctx context.Context, userID uint, spec evaluator.QuestionSpec) (*entity.Interview, error) {
	if spec.NumQuestions < 1 {
		return nil, fmt.Errorf("%w: num_questions must be positive", apperrors.ErrValidation)
	}
	if spec.Duration < 1 {
		return nil, fmt.Errorf("%w: duration must be positive", apperrors.ErrValidation)
	}

	questionTexts, err := s.evaluation.GenerateQuestions(ctx, spec)
	if err != nil {
		return nil, err
	}

	durationSec := spec.Duration * 60

	interview := &entity.Interview{
		UserID:       userID,
		Industry:     spec.Industry,
		Topic:        spec.Topic,
		Type:         spec.Type,
		Role:         spec.Role,
		Difficulty:   spec.Difficulty,
		NumQuestions: len(questionTexts),
		Duration:     durationSec,
		DurationLeft: durationSec,
		Status:       entity.InterviewStatusPending,
		Questions:    make([]entity.Question, 0, len(questionTexts)),
	}

	for i, text := range questionTexts {
		interview.Questions = append(interview.Questions, entity.Question{
			Position: i + 1,
			Text:     text,
		})
	}

	if err := s.interviewRepo.Create(interview); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	log.Printf("[InterviewService] Интервью #%d создано для пользователя #%d (%d вопросов, %d сек)",
		interview.ID, userID, len(interview.Questions), durationSec)
	return interview, nil
}

// GetInterview возвращает интервью с вопросами, проверяя владельца
func (s *InterviewService) GetInterview(interviewID, userID uint) (*entity.Interview, error) {
	interview, err := s.interviewRepo.GetWithQuestions(interviewID)
	if err != nil {
		return nil, err
	}
	if interview.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return interview, nil
}

// ListInterviews возвращает интервью пользователя с фильтрами и пагинацией
func (s *InterviewService) ListInterviews(userID uint, filters repository.InterviewFilters, page, pageSize int) ([]entity.Interview, int64, error) {
	offset := (page - 1) * pageSize
	return s.interviewRepo.ListByUser(userID, filters, pageSize, offset)
}

// DeleteInterview удаляет интервью пользователя
func (s *InterviewService) DeleteInterview(interviewID, userID uint) error {
	interview, err := s.interviewRepo.GetByID(interviewID)
	if err != nil {
		return err
	}
	if interview.UserID != userID {
		return apperrors.ErrForbidden
	}
	return s.interviewRepo.Delete(interviewID)
}

// SubmitAnswer обрабатывает одну отправку ответа и прогоняет все переходы
// машины состояний. Порядок переходов фиксирован:
//  1. применение ответа к вопросу (оценка через Evaluator, кроме пропуска);
//  2. исчерпание времени (durationLeft == 0) → completed;
//  3. все вопросы отвечены → completed;
//  4. явный выход (exit) → completed.
//
// Несколько переходов могут сработать за один вызов. Повторный вызов после
// успешного завершения — безопасный no-op: интервью уже completed, ответы и
// оценки не перетираются. Клиент — авторитет по durationLeft (абсолютная
// перезапись, не декремент).
func (s *InterviewService) SubmitAnswer(
	ctx context.Context,
	userID uint,
	interviewID uint,
	questionID uint,
	answerText string,
	durationLeft int,
	exit bool,
) (*entity.Interview, error) {
	// Предварительное чтение: проверка владельца и текст вопроса для оценки.
	// Оценка выполняется до транзакции, чтобы не держать блокировку строки
	// на время вызова коллаборатора.
	interview, err := s.interviewRepo.GetWithQuestions(interviewID)
	if err != nil {
		return nil, err
	}
	if interview.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	if interview.IsCompleted() {
		// Терминальное состояние: повторный exit/отправка подтверждается
		// без каких-либо изменений
		log.Printf("[InterviewService] Интервью #%d уже завершено, отправка — no-op", interviewID)
		return interview, nil
	}

	var score entity.Score
	applyAnswer := questionID != 0 && answerText != ""
	if applyAnswer {
		question := interview.QuestionByID(questionID)
		if question == nil {
			return nil, fmt.Errorf("question #%d: %w", questionID, apperrors.ErrNotFound)
		}
		if entity.IsSkipped(answerText) {
			score = entity.DefaultScore()
		} else {
			// ScoreAnswer никогда не фейлит: сбой оценивания деградирует
			// до нулевой оценки и не блокирует отправку
			score = s.evaluation.ScoreAnswer(ctx, question.Text, answerText)
		}
	}

	err = s.interviewRepo.SubmitAnswer(ctx, interviewID, func(current *entity.Interview) (*entity.Question, error) {
		if current.IsCompleted() {
			// Гонка с другой отправкой: состояние уже терминальное
			return nil, nil
		}

		var updated *entity.Question

		// Переход 1: применение ответа
		if applyAnswer {
			question := current.QuestionByID(questionID)
			if question == nil {
				return nil, fmt.Errorf("question #%d: %w", questionID, apperrors.ErrNotFound)
			}
			if question.ApplyAnswer(answerText, score) {
				current.AnsweredCount++
			}
			updated = question
		}

		current.SetDurationLeft(durationLeft)

		// Переход 2: время вышло
		if durationLeft <= 0 {
			current.MarkCompleted()
		}

		// Переход 3: отвечены все вопросы
		if current.AllAnswered() {
			current.MarkCompleted()
		}

		// Переход 4: явный выход
		if exit {
			current.MarkCompleted()
		}

		return updated, nil
	})
	if err != nil {
		return nil, err
	}

	return s.interviewRepo.GetWithQuestions(interviewID)
}

// GetUserStats возвращает агрегированную статистику пользователя.
// Результат ненадолго кешируется: дашборд опрашивает его часто.
func (s *InterviewService) GetUserStats(userID uint) (*repository.UserStats, error) {
	cacheKey := fmt.Sprintf("interview:stats:%d", userID)

	if s.cacheRepo != nil {
		var cached repository.UserStats
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.interviewRepo.GetUserStats(userID)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, stats, statsCacheTTL); err != nil {
			log.Printf("[InterviewService] Не удалось закешировать статистику пользователя #%d: %v", userID, err)
		}
	}

	return stats, nil
}

package repository

import (
	"context"

	"github.com/yourusername/interview-api/internal/domain/entity"
)

// InterviewFilters определяет фильтры для списка интервью
type InterviewFilters struct {
	Status string // Фильтр по статусу (pending, completed)
}

// UserStats — агрегированная статистика интервью пользователя для дашборда
type UserStats struct {
	TotalInterviews     int64   `json:"total_interviews"`
	CompletedInterviews int64   `json:"completed_interviews"`
	AnsweredQuestions   int64   `json:"answered_questions"`
	AverageOverallScore float64 `json:"average_overall_score"`
}

// InterviewRepository определяет методы для работы с интервью
type InterviewRepository interface {
	Create(interview *entity.Interview) error
	GetByID(id uint) (*entity.Interview, error)
	GetWithQuestions(id uint) (*entity.Interview, error)
	// ListByUser возвращает интервью пользователя с фильтрами, пагинацией и total count
	ListByUser(userID uint, filters InterviewFilters, limit, offset int) ([]entity.Interview, int64, error)
	Delete(id uint) error
	// SubmitAnswer выполняет read-modify-write одного интервью под блокировкой
	// строки документа: apply получает интервью с вопросами и мутирует его,
	// затем интервью и измененный вопрос сохраняются в той же транзакции.
	// Две конкурентные отправки по одному интервью сериализуются; отправки по
	// разным интервью независимы.
	SubmitAnswer(ctx context.Context, interviewID uint, apply func(*entity.Interview) (*entity.Question, error)) error
	// GetUserStats собирает агрегаты по всем интервью пользователя
	GetUserStats(userID uint) (*UserStats, error)
}

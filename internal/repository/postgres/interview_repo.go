package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/interview-api/internal/domain/entity"
	"github.com/yourusername/interview-api/internal/domain/repository"
	apperrors "github.com/yourusername/interview-api/internal/pkg/errors"
)

// InterviewRepo реализует repository.InterviewRepository
type InterviewRepo struct {
	db *gorm.DB
}

// NewInterviewRepo создает новый репозиторий интервью
func NewInterviewRepo(db *gorm.DB) *InterviewRepo {
	return &InterviewRepo{db: db}
}

// Create создает интервью вместе с вопросами одной транзакцией
func (r *InterviewRepo) Create(interview *entity.Interview) error {
	err := r.db.Create(interview).Error
	if err != nil {
		// Unique index на (interview_id, position) у вопросов
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate question position", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

// GetByID возвращает интервью по ID без вопросов
func (r *InterviewRepo) GetByID(id uint) (*entity.Interview, error) {
	var interview entity.Interview
	err := r.db.First(&interview, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &interview, nil
}

// GetWithQuestions возвращает интервью вместе с вопросами в каноническом порядке
func (r *InterviewRepo) GetWithQuestions(id uint) (*entity.Interview, error) {
	var interview entity.Interview
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.position")
	}).First(&interview, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &interview, nil
}

// ListByUser возвращает интервью пользователя с фильтрами и total count
func (r *InterviewRepo) ListByUser(userID uint, filters repository.InterviewFilters, limit, offset int) ([]entity.Interview, int64, error) {
	var interviews []entity.Interview
	var total int64

	query := r.db.Model(&entity.Interview{}).Where("user_id = ?", userID)

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("id DESC").Find(&interviews).Error
	if err != nil {
		return nil, 0, err
	}

	return interviews, total, nil
}

// Delete удаляет интервью; вопросы удаляются каскадом по внешнему ключу
func (r *InterviewRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Interview{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SubmitAnswer выполняет read-modify-write одного интервью под SELECT ... FOR UPDATE.
// Блокировка строки интервью сериализует конкурентные отправки по одному документу;
// отправки по разным интервью друг другу не мешают.
func (r *InterviewRepo) SubmitAnswer(ctx context.Context, interviewID uint, apply func(*entity.Interview) (*entity.Question, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var interview entity.Interview
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&interview, interviewID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		// Вопросы читаются под уже взятой блокировкой родительской строки
		if err := tx.Where("interview_id = ?", interviewID).
			Order("position").
			Find(&interview.Questions).Error; err != nil {
			return err
		}

		question, err := apply(&interview)
		if err != nil {
			return err
		}

		if question != nil {
			updates := map[string]interface{}{
				"answer":    question.Answer,
				"completed": question.Completed,
				"result":    question.Result,
			}
			if err := tx.Model(&entity.Question{}).
				Where("id = ?", question.ID).
				Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update question #%d: %w", question.ID, err)
			}
		}

		// Статус пишется только здесь: неуспешная транзакция не оставит
		// интервью в несогласованном состоянии
		return tx.Model(&entity.Interview{}).
			Where("id = ?", interviewID).
			Updates(map[string]interface{}{
				"duration_left":  interview.DurationLeft,
				"answered_count": interview.AnsweredCount,
				"status":         interview.Status,
			}).Error
	})
}

// GetUserStats собирает агрегаты по интервью пользователя для дашборда
func (r *InterviewRepo) GetUserStats(userID uint) (*repository.UserStats, error) {
	var stats repository.UserStats

	err := r.db.Model(&entity.Interview{}).
		Where("user_id = ?", userID).
		Count(&stats.TotalInterviews).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&entity.Interview{}).
		Where("user_id = ? AND status = ?", userID, entity.InterviewStatusCompleted).
		Count(&stats.CompletedInterviews).Error
	if err != nil {
		return nil, err
	}

	row := r.db.Model(&entity.Question{}).
		Select("COUNT(*), COALESCE(AVG((result->>'overall_score')::numeric), 0)").
		Joins("JOIN interviews ON interviews.id = questions.interview_id").
		Where("interviews.user_id = ? AND questions.completed", userID).
		Row()
	if err := row.Scan(&stats.AnsweredQuestions, &stats.AverageOverallScore); err != nil {
		return nil, err
	}

	return &stats, nil
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

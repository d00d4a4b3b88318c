package entity

import (
	"time"
)

// Константы статусов интервью
const (
	InterviewStatusPending   = "pending"
	InterviewStatusCompleted = "completed"
)

// Interview представляет интервью кандидата: набор вопросов с таймером.
// Вопросы принадлежат интервью по композиции и никогда не разделяются
// между интервью.
type Interview struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Industry     string     `gorm:"size:100;not null" json:"industry"`
	Topic        string     `gorm:"size:100;not null" json:"topic"`
	Type         string     `gorm:"size:50;not null" json:"type"`
	Role         string     `gorm:"size:100;not null" json:"role"`
	Difficulty   string     `gorm:"size:20;not null" json:"difficulty"`
	NumQuestions int        `gorm:"not null" json:"num_questions"`
	// Duration и DurationLeft хранятся в секундах.
	// Инвариант: 0 <= DurationLeft <= Duration.
	Duration      int        `gorm:"not null" json:"duration"`
	DurationLeft  int        `gorm:"not null" json:"duration_left"`
	AnsweredCount int        `gorm:"not null;default:0" json:"answered_count"`
	Status        string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Questions     []Question `gorm:"foreignKey:InterviewID" json:"questions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Interview) TableName() string {
	return "interviews"
}

// IsCompleted проверяет, завершено ли интервью.
// Статус completed терминальный: обратного перехода нет.
func (i *Interview) IsCompleted() bool {
	return i.Status == InterviewStatusCompleted
}

// IsPending проверяет, идет ли интервью
func (i *Interview) IsPending() bool {
	return i.Status == InterviewStatusPending
}

// QuestionByID находит вопрос интервью по его ID.
// Возвращает nil, если вопрос не принадлежит этому интервью.
func (i *Interview) QuestionByID(questionID uint) *Question {
	for idx := range i.Questions {
		if i.Questions[idx].ID == questionID {
			return &i.Questions[idx]
		}
	}
	return nil
}

// AllAnswered проверяет, отвечены ли все вопросы интервью
func (i *Interview) AllAnswered() bool {
	return len(i.Questions) > 0 && i.AnsweredCount == len(i.Questions)
}

// SetDurationLeft выставляет оставшееся время как абсолютное значение.
// Клиент — авторитет по этому полю, сервер только ограничивает диапазон.
func (i *Interview) SetDurationLeft(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	if seconds > i.Duration {
		seconds = i.Duration
	}
	i.DurationLeft = seconds
}

// MarkCompleted переводит интервью в терминальный статус
func (i *Interview) MarkCompleted() {
	i.Status = InterviewStatusCompleted
}

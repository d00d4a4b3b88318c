package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SkipAnswer — сентинел, которым клиент помечает намеренно пропущенный вопрос
const SkipAnswer = "skip"

// DefaultSuggestions — текст рекомендаций для пропущенных и неоцененных ответов
const DefaultSuggestions = "No suggestions provided."

// Score — структурированный результат оценки ответа.
// Числовые поля в диапазоне 0–10.
type Score struct {
	OverallScore int    `json:"overall_score"`
	Relevance    int    `json:"relevance"`
	Clarity      int    `json:"clarity"`
	Completeness int    `json:"completeness"`
	Suggestions  string `json:"suggestions"`
}

// DefaultScore возвращает нулевую оценку с дефолтными рекомендациями.
// Используется для пропущенных вопросов и при деградации оценивания.
func DefaultScore() Score {
	return Score{Suggestions: DefaultSuggestions}
}

// Scan реализует интерфейс sql.Scanner для Score
// Используется GORM для чтения JSONB данных из базы
func (s *Score) Scan(value interface{}) error {
	if value == nil {
		*s = Score{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*s = Score{}
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Value реализует интерфейс driver.Valuer для Score
// Используется GORM для записи Score в JSONB в базе
func (s Score) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Question представляет один вопрос интервью
type Question struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	InterviewID uint   `gorm:"not null;index" json:"interview_id"`
	Position    int    `gorm:"not null" json:"position"`
	Text        string `gorm:"size:1000;not null" json:"text"`
	Answer      string `gorm:"type:text" json:"answer,omitempty"`
	// Completed липкий: однажды выставленный, он не сбрасывается,
	// даже при перезаписи ответа.
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Result    *Score    `gorm:"type:jsonb" json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// ApplyAnswer записывает ответ и оценку вопроса.
// Возвращает true, если вопрос завершен впервые (нужно инкрементировать
// answered_count интервью). Повторная отправка перезаписывает answer и
// result, но счетчик не трогает.
func (q *Question) ApplyAnswer(answer string, score Score) bool {
	first := !q.Completed
	q.Answer = answer
	q.Completed = true
	q.Result = &score
	return first
}

// IsSkipped проверяет, помечен ли ответ сентинелом пропуска
func IsSkipped(answer string) bool {
	return answer == SkipAnswer
}

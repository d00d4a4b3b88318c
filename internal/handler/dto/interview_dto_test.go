package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/interview-api/internal/domain/entity"
)

func TestNewInterviewResultResponse(t *testing.T) {
	// Arrange
	interview := &entity.Interview{
		ID:            7,
		Topic:         "Go",
		Role:          "Backend Developer",
		Status:        entity.InterviewStatusCompleted,
		NumQuestions:  3,
		AnsweredCount: 3,
		Questions: []entity.Question{
			{
				Position:  1,
				Text:      "What is a goroutine?",
				Answer:    "A lightweight thread.",
				Completed: true,
				Result:    &entity.Score{OverallScore: 8, Relevance: 9, Clarity: 8, Completeness: 7, Suggestions: "Add examples."},
			},
			{
				Position:  2,
				Text:      "Explain channel deadlocks.",
				Answer:    entity.SkipAnswer,
				Completed: true,
				Result:    &entity.Score{Suggestions: "No suggestions provided."},
			},
			{
				Position: 3,
				Text:     "How does GC work?",
			},
		},
	}

	// Act
	result := NewInterviewResultResponse(interview)

	// Assert
	assert.Equal(t, uint(7), result.InterviewID)
	assert.Equal(t, entity.InterviewStatusCompleted, result.Status)
	assert.Len(t, result.Questions, 3)

	assert.Equal(t, "A lightweight thread.", result.Questions[0].Answer)
	assert.False(t, result.Questions[0].Skipped)
	assert.Equal(t, 8, result.Questions[0].Result.OverallScore)

	assert.True(t, result.Questions[1].Skipped, "Пропуск помечается флагом")
	assert.Empty(t, result.Questions[1].Answer, "Сентинел пропуска не показывается как текст ответа")
	assert.Equal(t, 0, result.Questions[1].Result.OverallScore)

	assert.Nil(t, result.Questions[2].Result, "Неотвеченный вопрос остается без оценки")

	// Средний балл: (8 + 0) / 2 оцененных вопроса
	assert.Equal(t, 4.0, result.AverageScore)
}

func TestNewInterviewResultResponse_NoScoredQuestions(t *testing.T) {
	interview := &entity.Interview{
		ID:           8,
		Status:       entity.InterviewStatusPending,
		NumQuestions: 1,
		Questions: []entity.Question{
			{Position: 1, Text: "What is a goroutine?"},
		},
	}

	result := NewInterviewResultResponse(interview)

	assert.Zero(t, result.AverageScore, "Без оценок средний балл равен нулю, а не NaN")
}

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/interview-api/internal/domain/entity"
	apperrors "github.com/yourusername/interview-api/internal/pkg/errors"
)

func TestHandleInterviewError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"conflict", apperrors.ErrConflict, http.StatusConflict},
		{"validation", apperrors.ErrValidation, http.StatusBadRequest},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"generation failed", apperrors.ErrGenerationFailed, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	h := NewInterviewHandler(nil)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			h.handleInterviewError(c, tc.err)

			assert.Equal(t, tc.expected, recorder.Code)
		})
	}
}

func TestHandleInterviewError_WrappedSentinel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	h := NewInterviewHandler(nil)
	h.handleInterviewError(c, errors.New("question #5: "+apperrors.ErrNotFound.Error()))

	// Обернутая строкой (не %w) ошибка не должна матчиться на сентинел
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestSanitizeForExport(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", sanitizeForExport("=SUM(A1)"), "Формулы должны экранироваться")
	assert.Equal(t, "'+1+1", sanitizeForExport("+1+1"))
	assert.Equal(t, "'@cmd", sanitizeForExport("@cmd"))
	assert.Equal(t, "plain answer", sanitizeForExport("plain answer"))
	assert.Equal(t, "", sanitizeForExport(""))
}

func TestExportAnswer(t *testing.T) {
	skipped := &entity.Question{Answer: entity.SkipAnswer, Completed: true}
	assert.Equal(t, "Пропущен", exportAnswer(skipped))

	unanswered := &entity.Question{}
	assert.Equal(t, "Без ответа", exportAnswer(unanswered))

	answered := &entity.Question{Answer: "My answer.", Completed: true}
	assert.Equal(t, "My answer.", exportAnswer(answered))
}

func TestExportScoreField(t *testing.T) {
	assert.Equal(t, "", exportScoreField(nil, func(s *entity.Score) int { return s.OverallScore }),
		"Неоцененный вопрос экспортируется пустой ячейкой, а не нулем")

	score := &entity.Score{OverallScore: 7}
	assert.Equal(t, "7", exportScoreField(score, func(s *entity.Score) int { return s.OverallScore }))
}

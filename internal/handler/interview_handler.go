package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/interview-api/internal/domain/entity"
	"github.com/yourusername/interview-api/internal/domain/repository"
	"github.com/yourusername/interview-api/internal/handler/dto"
	apperrors "github.com/yourusername/interview-api/internal/pkg/errors"
	"github.com/yourusername/interview-api/internal/service"
	"github.com/yourusername/interview-api/internal/service/evaluator"
)

// InterviewHandler обрабатывает запросы, связанные с интервью
type InterviewHandler struct {
	interviewService *service.InterviewService
}

// NewInterviewHandler создает новый обработчик интервью
func NewInterviewHandler(interviewService *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
	}
}

// CreateInterviewRequest представляет запрос на создание интервью
type CreateInterviewRequest struct {
	Industry     string `json:"industry" binding:"required,min=2,max=100"`
	Topic        string `json:"topic" binding:"required,min=2,max=100"`
	Type         string `json:"type" binding:"required,min=2,max=50"`
	Role         string `json:"role" binding:"required,min=2,max=100"`
	Difficulty   string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	NumQuestions int    `json:"num_questions" binding:"required,min=1,max=20"`
	Duration     int    `json:"duration" binding:"required,min=5,max=180"` // Минуты
}

// CreateInterview обрабатывает запрос на создание интервью.
// Вопросы генерируются синхронно: при сбое генерации интервью не создается.
func (h *InterviewHandler) CreateInterview(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spec := evaluator.QuestionSpec{
		Industry:     req.Industry,
		Topic:        req.Topic,
		Type:         req.Type,
		Role:         req.Role,
		Difficulty:   req.Difficulty,
		NumQuestions: req.NumQuestions,
		Duration:     req.Duration,
	}

	interview, err := h.interviewService.CreateInterview(c.Request.Context(), userID, spec)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewInterviewResponse(interview, true))
}

// GetInterview возвращает интервью с вопросами
func (h *InterviewHandler) GetInterview(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	interviewID := c.MustGet("interviewID").(uint)

	interview, err := h.interviewService.GetInterview(interviewID, userID)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewInterviewResponse(interview, true))
}

// ListInterviews возвращает интервью пользователя с пагинацией и фильтрацией
func (h *InterviewHandler) ListInterviews(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	filters := repository.InterviewFilters{
		Status: c.Query("status"), // pending, completed
	}

	interviews, total, err := h.interviewService.ListInterviews(userID, filters, page, pageSize)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interviews": dto.NewInterviewListResponse(interviews),
		"total":      total,
		"page":       page,
		"size":       pageSize,
	})
}

// SubmitAnswerRequest представляет одну отправку в рамках сессии.
// question_id и answer опциональны: отправка может быть чистым сигналом
// выхода или обновлением таймера.
type SubmitAnswerRequest struct {
	QuestionID   uint   `json:"question_id"`
	Answer       string `json:"answer"`
	DurationLeft *int   `json:"duration_left" binding:"required"`
	Exit         bool   `json:"exit"`
}

// SubmitAnswer обрабатывает отправку ответа кандидата
// PUT /api/interviews/:id/answer
func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	interviewID := c.MustGet("interviewID").(uint)

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interview, err := h.interviewService.SubmitAnswer(
		c.Request.Context(),
		userID,
		interviewID,
		req.QuestionID,
		req.Answer,
		*req.DurationLeft,
		req.Exit,
	)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewInterviewResponse(interview, true))
}

// DeleteInterview удаляет интервью пользователя
func (h *InterviewHandler) DeleteInterview(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	interviewID := c.MustGet("interviewID").(uint)

	if err := h.interviewService.DeleteInterview(interviewID, userID); err != nil {
		h.handleInterviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Interview deleted successfully"})
}

// GetUserStats возвращает агрегированную статистику пользователя
// GET /api/interviews/stats
func (h *InterviewHandler) GetUserStats(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	stats, err := h.interviewService.GetUserStats(userID)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetInterviewResult возвращает результаты интервью: оценки по вопросам
// и средний балл
// GET /api/interviews/:id/result
func (h *InterviewHandler) GetInterviewResult(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	interviewID := c.MustGet("interviewID").(uint)

	interview, err := h.interviewService.GetInterview(interviewID, userID)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewInterviewResultResponse(interview))
}

// ExportInterviewResult экспортирует результат интервью в CSV или Excel
// GET /api/interviews/:id/result/export?format=csv|xlsx
func (h *InterviewHandler) ExportInterviewResult(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	interviewID := c.MustGet("interviewID").(uint)
	format := c.DefaultQuery("format", "csv")

	interview, err := h.interviewService.GetInterview(interviewID, userID)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	filename := fmt.Sprintf("interview_%d_result_%s", interviewID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, interview, filename)
	default:
		h.exportCSV(c, interview, filename)
	}
}

// exportCSV экспортирует результат в CSV с правильным экранированием спецсимволов
func (h *InterviewHandler) exportCSV(c *gin.Context, interview *entity.Interview, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"№", "Вопрос", "Ответ", "Общая оценка", "Релевантность", "Ясность", "Полнота", "Рекомендации"})

	for _, q := range interview.Questions {
		writer.Write([]string{
			strconv.Itoa(q.Position),
			sanitizeForExport(q.Text),
			sanitizeForExport(exportAnswer(&q)),
			exportScoreField(q.Result, func(s *entity.Score) int { return s.OverallScore }),
			exportScoreField(q.Result, func(s *entity.Score) int { return s.Relevance }),
			exportScoreField(q.Result, func(s *entity.Score) int { return s.Clarity }),
			exportScoreField(q.Result, func(s *entity.Score) int { return s.Completeness }),
			exportSuggestions(q.Result),
		})
	}
}

// exportXLSX экспортирует результат в Excel с использованием StreamWriter
func (h *InterviewHandler) exportXLSX(c *gin.Context, interview *entity.Interview, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результат"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[InterviewHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"№", "Вопрос", "Ответ", "Общая оценка", "Релевантность", "Ясность", "Полнота", "Рекомендации"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[InterviewHandler] Ошибка записи заголовков: %v", err)
	}

	for i, q := range interview.Questions {
		rowNum := i + 2 // Первая строка — заголовки
		cell := fmt.Sprintf("A%d", rowNum)

		row := []interface{}{
			q.Position,
			sanitizeForExport(q.Text),
			sanitizeForExport(exportAnswer(&q)),
			exportScoreField(q.Result, func(s *entity.Score) int { return s.OverallScore }),
			exportScoreField(q.Result, func(s *entity.Score) int { return s.Relevance }),
			exportScoreField(q.Result, func(s *entity.Score) int { return s.Clarity }),
			exportScoreField(q.Result, func(s *entity.Score) int { return s.Completeness }),
			exportSuggestions(q.Result),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[InterviewHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[InterviewHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[InterviewHandler] Ошибка записи Excel в response: %v", err)
	}
}

// exportAnswer возвращает текст ответа для экспорта
func exportAnswer(q *entity.Question) string {
	if entity.IsSkipped(q.Answer) {
		return "Пропущен"
	}
	if !q.Completed {
		return "Без ответа"
	}
	return q.Answer
}

func exportScoreField(result *entity.Score, field func(*entity.Score) int) string {
	if result == nil {
		return ""
	}
	return strconv.Itoa(field(result))
}

func exportSuggestions(result *entity.Score) string {
	if result == nil {
		return ""
	}
	return sanitizeForExport(result.Suggestions)
}

// sanitizeForExport экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExport(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleInterviewError обрабатывает ошибки от сервисов интервью и отправляет соответствующий HTTP ответ
func (h *InterviewHandler) handleInterviewError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrGenerationFailed) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in InterviewHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

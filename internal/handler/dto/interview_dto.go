package dto

import (
	"math"
	"time"

	"github.com/yourusername/interview-api/internal/domain/entity"
)

// ScoreResponse представляет оценку ответа в API
type ScoreResponse struct {
	OverallScore int    `json:"overall_score"`
	Relevance    int    `json:"relevance"`
	Clarity      int    `json:"clarity"`
	Completeness int    `json:"completeness"`
	Suggestions  string `json:"suggestions"`
}

// QuestionResponse представляет вопрос интервью в API
type QuestionResponse struct {
	ID        uint           `json:"id"`
	Position  int            `json:"position"`
	Text      string         `json:"text"`
	Answer    string         `json:"answer,omitempty"`
	Completed bool           `json:"completed"`
	Result    *ScoreResponse `json:"result,omitempty"`
}

// InterviewResponse представляет интервью в API
type InterviewResponse struct {
	ID            uint               `json:"id"`
	Industry      string             `json:"industry"`
	Topic         string             `json:"topic"`
	Type          string             `json:"type"`
	Role          string             `json:"role"`
	Difficulty    string             `json:"difficulty"`
	NumQuestions  int                `json:"num_questions"`
	Duration      int                `json:"duration"`
	DurationLeft  int                `json:"duration_left"`
	AnsweredCount int                `json:"answered_count"`
	Status        string             `json:"status"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewScoreResponse создает DTO оценки
func NewScoreResponse(score *entity.Score) *ScoreResponse {
	if score == nil {
		return nil
	}
	return &ScoreResponse{
		OverallScore: score.OverallScore,
		Relevance:    score.Relevance,
		Clarity:      score.Clarity,
		Completeness: score.Completeness,
		Suggestions:  score.Suggestions,
	}
}

// NewQuestionResponse создает DTO вопроса
func NewQuestionResponse(question *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:        question.ID,
		Position:  question.Position,
		Text:      question.Text,
		Answer:    question.Answer,
		Completed: question.Completed,
		Result:    NewScoreResponse(question.Result),
	}
}

// NewInterviewResponse создает DTO интервью.
// includeQuestions управляет включением вопросов: списки отдаются без них.
func NewInterviewResponse(interview *entity.Interview, includeQuestions bool) *InterviewResponse {
	response := &InterviewResponse{
		ID:            interview.ID,
		Industry:      interview.Industry,
		Topic:         interview.Topic,
		Type:          interview.Type,
		Role:          interview.Role,
		Difficulty:    interview.Difficulty,
		NumQuestions:  interview.NumQuestions,
		Duration:      interview.Duration,
		DurationLeft:  interview.DurationLeft,
		AnsweredCount: interview.AnsweredCount,
		Status:        interview.Status,
		CreatedAt:     interview.CreatedAt,
		UpdatedAt:     interview.UpdatedAt,
	}

	if includeQuestions {
		response.Questions = make([]QuestionResponse, 0, len(interview.Questions))
		for i := range interview.Questions {
			response.Questions = append(response.Questions, NewQuestionResponse(&interview.Questions[i]))
		}
	}

	return response
}

// QuestionResultResponse представляет строку результата по одному вопросу
type QuestionResultResponse struct {
	Position int            `json:"position"`
	Text     string         `json:"text"`
	Answer   string         `json:"answer,omitempty"`
	Skipped  bool           `json:"skipped"`
	Result   *ScoreResponse `json:"result,omitempty"`
}

// InterviewResultResponse представляет страницу результатов интервью
type InterviewResultResponse struct {
	InterviewID   uint                     `json:"interview_id"`
	Topic         string                   `json:"topic"`
	Role          string                   `json:"role"`
	Status        string                   `json:"status"`
	NumQuestions  int                      `json:"num_questions"`
	AnsweredCount int                      `json:"answered_count"`
	AverageScore  float64                  `json:"average_score"`
	Questions     []QuestionResultResponse `json:"questions"`
}

// NewInterviewResultResponse создает DTO результатов интервью.
// Средний балл считается только по оцененным вопросам; у пропущенных
// текст ответа не показывается.
func NewInterviewResultResponse(interview *entity.Interview) *InterviewResultResponse {
	response := &InterviewResultResponse{
		InterviewID:   interview.ID,
		Topic:         interview.Topic,
		Role:          interview.Role,
		Status:        interview.Status,
		NumQuestions:  interview.NumQuestions,
		AnsweredCount: interview.AnsweredCount,
		Questions:     make([]QuestionResultResponse, 0, len(interview.Questions)),
	}

	scoredCount := 0
	scoreSum := 0
	for i := range interview.Questions {
		q := &interview.Questions[i]
		skipped := entity.IsSkipped(q.Answer)

		row := QuestionResultResponse{
			Position: q.Position,
			Text:     q.Text,
			Skipped:  skipped,
			Result:   NewScoreResponse(q.Result),
		}
		if !skipped {
			row.Answer = q.Answer
		}
		response.Questions = append(response.Questions, row)

		if q.Result != nil {
			scoredCount++
			scoreSum += q.Result.OverallScore
		}
	}

	if scoredCount > 0 {
		response.AverageScore = math.Round(float64(scoreSum)/float64(scoredCount)*10) / 10
	}

	return response
}

// NewInterviewListResponse создает список DTO интервью без вопросов
func NewInterviewListResponse(interviews []entity.Interview) []InterviewResponse {
	response := make([]InterviewResponse, 0, len(interviews))
	for i := range interviews {
		response = append(response, *NewInterviewResponse(&interviews[i], false))
	}
	return response
}

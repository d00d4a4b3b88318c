package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/interview-api/internal/domain/entity"
)

// InterviewAPI — граница серверных операций, нужных контроллеру сессии.
// Единственная мутация — отправка ответа; все переходы состояния интервью
// выполняет сервер.
type InterviewAPI interface {
	SubmitAnswer(ctx context.Context, interviewID, questionID uint, answerText string, durationLeft int, exit bool) error
}

// Client — HTTP-клиент API интервью для контроллера сессии
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient создает клиент API интервью.
// token — JWT кандидата, подставляется в каждый запрос.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type submitAnswerRequest struct {
	QuestionID   uint   `json:"question_id,omitempty"`
	Answer       string `json:"answer,omitempty"`
	DurationLeft int    `json:"duration_left"`
	Exit         bool   `json:"exit,omitempty"`
}

type apiErrorResponse struct {
	Error string `json:"error"`
}

// SubmitAnswer отправляет ответ (и/или сигнал выхода) на сервер.
// Каждый запрос получает собственный X-Request-ID для трассировки.
func (c *Client) SubmitAnswer(ctx context.Context, interviewID, questionID uint, answerText string, durationLeft int, exit bool) error {
	payload := submitAnswerRequest{
		QuestionID:   questionID,
		Answer:       answerText,
		DurationLeft: durationLeft,
		Exit:         exit,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal submit request: %w", err)
	}

	url := fmt.Sprintf("%s/api/interviews/%d/answer", c.baseURL, interviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit answer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		var apiErr apiErrorResponse
		if jsonErr := json.Unmarshal(data, &apiErr); jsonErr == nil && apiErr.Error != "" {
			return fmt.Errorf("submit answer rejected (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("submit answer rejected with status %d", resp.StatusCode)
	}

	return nil
}

// GetInterview загружает интервью с вопросами
func (c *Client) GetInterview(ctx context.Context, interviewID uint) (*entity.Interview, error) {
	url := fmt.Sprintf("%s/api/interviews/%d", c.baseURL, interviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create get request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get interview request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		var apiErr apiErrorResponse
		if jsonErr := json.Unmarshal(data, &apiErr); jsonErr == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("get interview rejected (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("get interview rejected with status %d", resp.StatusCode)
	}

	var interview entity.Interview
	if err := json.NewDecoder(resp.Body).Decode(&interview); err != nil {
		return nil, fmt.Errorf("decode interview response: %w", err)
	}
	return &interview, nil
}

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/interview-api/internal/domain/entity"
)

// ============================================================================
// Моки и хелперы
// ============================================================================

// MockInterviewAPI реализует InterviewAPI
type MockInterviewAPI struct {
	mock.Mock
}

func (m *MockInterviewAPI) SubmitAnswer(ctx context.Context, interviewID, questionID uint, answerText string, durationLeft int, exit bool) error {
	args := m.Called(ctx, interviewID, questionID, answerText, durationLeft, exit)
	return args.Error(0)
}

// memoryCache — кеш черновиков в памяти для тестов контроллера
type memoryCache struct {
	data map[uint]map[uint]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[uint]map[uint]string)}
}

func (c *memoryCache) Put(interviewID, questionID uint, text string) error {
	if c.data[interviewID] == nil {
		c.data[interviewID] = make(map[uint]string)
	}
	c.data[interviewID][questionID] = text
	return nil
}

func (c *memoryCache) Get(interviewID, questionID uint) (string, bool) {
	text, ok := c.data[interviewID][questionID]
	return text, ok
}

func (c *memoryCache) GetAll(interviewID uint) map[uint]string {
	drafts := make(map[uint]string)
	for questionID, text := range c.data[interviewID] {
		drafts[questionID] = text
	}
	return drafts
}

func (c *memoryCache) Clear(interviewID uint) error {
	delete(c.data, interviewID)
	return nil
}

func (c *memoryCache) Close() error { return nil }

func sessionInterview() *entity.Interview {
	return &entity.Interview{
		ID:           1,
		UserID:       42,
		NumQuestions: 3,
		Duration:     1800,
		DurationLeft: 600,
		Status:       entity.InterviewStatusPending,
		Questions: []entity.Question{
			{ID: 11, InterviewID: 1, Position: 1, Text: "What is a goroutine?"},
			{ID: 12, InterviewID: 1, Position: 2, Text: "Explain channel deadlocks."},
			{ID: 13, InterviewID: 1, Position: 3, Text: "How does GC work?"},
		},
	}
}

// newHydratedController собирает контроллер без запуска таймера,
// чтобы тесты управляли тиками вручную
func newHydratedController(t *testing.T, interview *entity.Interview, api InterviewAPI, cache AnswerCache, callbacks Callbacks) *Controller {
	t.Helper()
	c := NewController(interview, api, cache, callbacks)
	require.NoError(t, c.hydrate())
	return c
}

// ============================================================================
// Гидрация
// ============================================================================

func TestController_Hydrate_ResumesAtFirstIncomplete(t *testing.T) {
	// Arrange
	interview := sessionInterview()
	interview.Questions[0].Completed = true
	interview.Questions[0].Answer = "A goroutine is a lightweight thread."
	interview.AnsweredCount = 1

	c := newHydratedController(t, interview, new(MockInterviewAPI), newMemoryCache(), Callbacks{})

	// Assert
	assert.Equal(t, 1, c.CurrentIndex(), "Сессия должна продолжаться с первого неотвеченного вопроса")
	assert.Equal(t, 600, c.TimeLeft())
	assert.Equal(t, "A goroutine is a lightweight thread.", c.drafts[11],
		"Подтвержденный ответ должен быть виден как черновик при возврате к вопросу")
}

func TestController_Hydrate_CacheDraftOverridesConfirmed(t *testing.T) {
	interview := sessionInterview()
	interview.Questions[0].Completed = true
	interview.Questions[0].Answer = "old confirmed answer"

	cache := newMemoryCache()
	require.NoError(t, cache.Put(1, 11, "newer local draft"))

	c := newHydratedController(t, interview, new(MockInterviewAPI), cache, Callbacks{})

	assert.Equal(t, "newer local draft", c.drafts[11],
		"Локальный черновик новее и перекрывает подтвержденный текст")
}

func TestController_Hydrate_CompletedInterview(t *testing.T) {
	interview := sessionInterview()
	interview.Status = entity.InterviewStatusCompleted

	c := NewController(interview, new(MockInterviewAPI), newMemoryCache(), Callbacks{})

	err := c.hydrate()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestController_StartClose_StopsTicker(t *testing.T) {
	c := NewController(sessionInterview(), new(MockInterviewAPI), newMemoryCache(), Callbacks{})
	require.NoError(t, c.Start())

	c.Close()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("таймер не остановился после Close")
	}
}

// ============================================================================
// Навигация и отправка черновиков
// ============================================================================

func TestController_Next_SubmitsChangedDraft(t *testing.T) {
	// Arrange
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, uint(1), uint(11), "my answer", 600, false).Return(nil)

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})
	c.SetDraft("my answer")

	// Act
	err := c.Next(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, c.CurrentIndex())
	api.AssertExpectations(t)
}

func TestController_Next_UnchangedDraftNotResubmitted(t *testing.T) {
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, uint(1), uint(11), "my answer", 600, false).Return(nil).Once()

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})
	c.SetDraft("my answer")

	require.NoError(t, c.Next(context.Background()))
	// Возврат и повторный уход без правок — отправки быть не должно
	require.NoError(t, c.Previous())
	require.NoError(t, c.Next(context.Background()))

	api.AssertExpectations(t)
}

func TestController_Next_EmptyDraftNotSubmitted(t *testing.T) {
	api := new(MockInterviewAPI)

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})

	err := c.Next(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, c.CurrentIndex())
	api.AssertNotCalled(t, "SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestController_Next_WrapsToFirstQuestion(t *testing.T) {
	c := newHydratedController(t, sessionInterview(), new(MockInterviewAPI), newMemoryCache(), Callbacks{})
	require.NoError(t, c.JumpTo(2))

	require.NoError(t, c.Next(context.Background()))

	assert.Equal(t, 0, c.CurrentIndex())
}

func TestController_Previous_WrapsToLastQuestion(t *testing.T) {
	c := newHydratedController(t, sessionInterview(), new(MockInterviewAPI), newMemoryCache(), Callbacks{})

	require.NoError(t, c.Previous())

	assert.Equal(t, 2, c.CurrentIndex())
}

func TestController_Previous_MovesPointerWithoutSubmitting(t *testing.T) {
	api := new(MockInterviewAPI)

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})
	c.SetDraft("work in progress")

	require.NoError(t, c.Previous())

	assert.Equal(t, 2, c.CurrentIndex())
	api.AssertNotCalled(t, "SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Черновик не потерян: возврат к вопросу показывает его снова
	require.NoError(t, c.JumpTo(0))
	assert.Equal(t, "work in progress", c.Draft())
}

func TestController_JumpTo_MovesPointerWithoutSubmitting(t *testing.T) {
	api := new(MockInterviewAPI)

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})
	c.SetDraft("work in progress")

	require.NoError(t, c.JumpTo(2))

	assert.Equal(t, 2, c.CurrentIndex())
	api.AssertNotCalled(t, "SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestController_Next_FailurePreservesState(t *testing.T) {
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("server unavailable"))

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})
	c.SetDraft("my answer")

	err := c.Next(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 0, c.CurrentIndex(), "При сбое отправки указатель не двигается")
	assert.Empty(t, c.confirmed[11], "Ответ не подтвержден")
}

func TestController_JumpTo_InvalidIndex(t *testing.T) {
	c := newHydratedController(t, sessionInterview(), new(MockInterviewAPI), newMemoryCache(), Callbacks{})

	assert.ErrorIs(t, c.JumpTo(3), ErrInvalidQuestionIndex)
	assert.ErrorIs(t, c.JumpTo(-1), ErrInvalidQuestionIndex)
}

func TestController_Skip_SendsSentinel(t *testing.T) {
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, uint(1), uint(11), entity.SkipAnswer, 600, false).Return(nil)

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})
	// Черновик игнорируется: пропуск всегда шлет сигнальное значение
	c.SetDraft("half-typed answer")

	err := c.Skip(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, c.CurrentIndex())
	api.AssertExpectations(t)
}

// ============================================================================
// Выход
// ============================================================================

func TestController_Exit_SubmitsDraftWithExitFlag(t *testing.T) {
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, uint(1), uint(11), "final answer", 600, true).Return(nil)

	completed := false
	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{
		OnCompleted: func() { completed = true },
	})
	c.SetDraft("final answer")

	err := c.Exit(context.Background())

	assert.NoError(t, err)
	assert.True(t, completed)
	api.AssertExpectations(t)

	// Дальнейшие операции над закрытой сессией отклоняются
	assert.ErrorIs(t, c.Next(context.Background()), ErrSessionClosed)
	assert.ErrorIs(t, c.Exit(context.Background()), ErrSessionClosed)
}

func TestController_Exit_WithoutDraft(t *testing.T) {
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, uint(1), uint(0), "", 600, true).Return(nil)

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})

	assert.NoError(t, c.Exit(context.Background()))
	api.AssertExpectations(t)
}

func TestController_Exit_LatchReleasedOnFailure(t *testing.T) {
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("network error")).Once()
	api.On("SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})

	assert.Error(t, c.Exit(context.Background()))
	// Защелка снята: повторный выход проходит
	assert.NoError(t, c.Exit(context.Background()))
	api.AssertExpectations(t)
}

func TestController_Exit_InFlightRejected(t *testing.T) {
	c := newHydratedController(t, sessionInterview(), new(MockInterviewAPI), newMemoryCache(), Callbacks{})
	c.exiting = true

	assert.ErrorIs(t, c.Exit(context.Background()), ErrExitInFlight)
}

// ============================================================================
// Таймер
// ============================================================================

func TestController_Tick_WarnsExactlyOnce(t *testing.T) {
	warnings := 0
	c := newHydratedController(t, sessionInterview(), new(MockInterviewAPI), newMemoryCache(), Callbacks{
		OnTimeAlmostUp: func() { warnings++ },
	})
	c.timeLeft = timeAlmostUpThreshold + 1

	c.tick()
	assert.Equal(t, 1, warnings)

	// Повторное пересечение порога (клиент мог скорректировать время)
	c.timeLeft = timeAlmostUpThreshold + 1
	c.tick()
	assert.Equal(t, 1, warnings, "Предупреждение срабатывает не более одного раза за сессию")
}

func TestController_Tick_TimeoutTriggersExit(t *testing.T) {
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, uint(1), uint(0), "", 0, true).Return(nil)

	completed := false
	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{
		OnCompleted: func() { completed = true },
	})
	c.timeLeft = 1

	c.tick()

	assert.True(t, completed)
	assert.Equal(t, 0, c.TimeLeft())
	api.AssertExpectations(t)
}

func TestController_Tick_TimeoutExitRetriedAfterFailure(t *testing.T) {
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, uint(1), uint(0), "", 0, true).
		Return(errors.New("server unavailable")).Once()
	api.On("SubmitAnswer", mock.Anything, uint(1), uint(0), "", 0, true).
		Return(nil).Once()

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})
	c.timeLeft = 1

	c.tick() // первый выход падает, защелка снимается
	c.tick() // второй тик повторяет выход

	api.AssertExpectations(t)
	assert.ErrorIs(t, c.Next(context.Background()), ErrSessionClosed)
}

func TestController_Tick_FloorsAtZero(t *testing.T) {
	api := new(MockInterviewAPI)
	api.On("SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("still down"))

	c := newHydratedController(t, sessionInterview(), api, newMemoryCache(), Callbacks{})
	c.timeLeft = 1

	c.tick()
	c.tick()
	c.tick()

	assert.Equal(t, 0, c.TimeLeft(), "Оставшееся время не уходит в минус")
}

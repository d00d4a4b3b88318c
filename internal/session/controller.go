package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/yourusername/interview-api/internal/domain/entity"
)

// timeAlmostUpThreshold — остаток времени в секундах, при котором кандидат
// получает однократное предупреждение
const timeAlmostUpThreshold = 10

var (
	// ErrSessionClosed возвращается при операциях над завершенной сессией
	ErrSessionClosed = errors.New("session closed")
	// ErrExitInFlight возвращается, когда выход уже выполняется
	ErrExitInFlight = errors.New("exit already in progress")
	// ErrInvalidQuestionIndex возвращается при переходе на несуществующий вопрос
	ErrInvalidQuestionIndex = errors.New("invalid question index")
)

// Callbacks — уведомления контроллера наружу (в UI).
// Вызываются под внутренней блокировкой: обработчики не должны обращаться
// к контроллеру повторно.
type Callbacks struct {
	// OnTick вызывается раз в секунду с оставшимся временем
	OnTick func(secondsLeft int)
	// OnTimeAlmostUp вызывается ровно один раз за сессию
	OnTimeAlmostUp func()
	// OnCompleted вызывается после успешного завершения интервью
	OnCompleted func()
}

// Controller ведет активную сессию интервью на стороне кандидата:
// локальный таймер, указатель текущего вопроса, черновики и отправка
// ответов на сервер. Все операции сериализованы: навигация ждет
// завершения предыдущей отправки.
type Controller struct {
	interview *entity.Interview
	api       InterviewAPI
	cache     AnswerCache
	callbacks Callbacks

	mu        sync.Mutex
	current   int
	timeLeft  int
	drafts    map[uint]string // questionID -> локальный черновик
	confirmed map[uint]string // questionID -> последний подтвержденный сервером ответ
	exiting   bool            // защелка: не более одного выхода одновременно
	warned    bool
	closed    bool

	stopTicker chan struct{}
	done       chan struct{}
}

// NewController создает контроллер сессии для интервью.
// interview — снимок, полученный с сервера при открытии сессии.
func NewController(interview *entity.Interview, api InterviewAPI, cache AnswerCache, callbacks Callbacks) *Controller {
	return &Controller{
		interview:  interview,
		api:        api,
		cache:      cache,
		callbacks:  callbacks,
		drafts:     make(map[uint]string),
		confirmed:  make(map[uint]string),
		stopTicker: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start гидрирует состояние сессии и запускает локальный таймер.
// Подтвержденные ответы берутся с сервера, черновики — из локального кеша
// (черновик новее и перекрывает подтвержденный текст).
func (c *Controller) Start() error {
	if err := c.hydrate(); err != nil {
		return err
	}

	go c.run()

	c.mu.Lock()
	defer c.mu.Unlock()
	log.Printf("[Session] Сессия интервью #%d запущена: вопрос %d/%d, осталось %d сек",
		c.interview.ID, c.current+1, len(c.interview.Questions), c.timeLeft)
	return nil
}

func (c *Controller) hydrate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.interview.IsCompleted() {
		return fmt.Errorf("interview #%d already completed: %w", c.interview.ID, ErrSessionClosed)
	}
	if len(c.interview.Questions) == 0 {
		return fmt.Errorf("interview #%d has no questions", c.interview.ID)
	}

	for i := range c.interview.Questions {
		q := &c.interview.Questions[i]
		if q.Completed {
			c.confirmed[q.ID] = q.Answer
			c.drafts[q.ID] = q.Answer
		}
	}
	for questionID, text := range c.cache.GetAll(c.interview.ID) {
		c.drafts[questionID] = text
	}

	c.current = firstIncompleteIndex(c.interview.Questions)
	c.timeLeft = c.interview.DurationLeft
	return nil
}

// firstIncompleteIndex возвращает индекс первого неотвеченного вопроса,
// чтобы возобновленная сессия продолжалась с места остановки
func firstIncompleteIndex(questions []entity.Question) int {
	for i := range questions {
		if !questions[i].Completed {
			return i
		}
	}
	return 0
}

func (c *Controller) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.tick()
		case <-c.stopTicker:
			return
		}
	}
}

// tick обрабатывает одну секунду таймера.
// При нуле запускает выход; защелка снимается при сбое, так что выход
// будет повторен на следующем тике.
func (c *Controller) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if c.timeLeft > 0 {
		c.timeLeft--
	}
	if c.callbacks.OnTick != nil {
		c.callbacks.OnTick(c.timeLeft)
	}

	if c.timeLeft == timeAlmostUpThreshold && !c.warned {
		c.warned = true
		if c.callbacks.OnTimeAlmostUp != nil {
			c.callbacks.OnTimeAlmostUp()
		}
	}

	if c.timeLeft == 0 {
		if err := c.exitLocked(context.Background()); err != nil {
			log.Printf("[Session] Не удалось завершить интервью #%d по таймауту: %v", c.interview.ID, err)
		}
	}
}

// SetDraft сохраняет черновик ответа на текущий вопрос.
// Кеш — best effort: сбой записи не прерывает сессию.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	questionID := c.interview.Questions[c.current].ID
	c.drafts[questionID] = text
	if err := c.cache.Put(c.interview.ID, questionID, text); err != nil {
		log.Printf("[Session] Не удалось сохранить черновик вопроса #%d: %v", questionID, err)
	}
}

// Next отправляет текущий черновик (если он изменился) и переходит к
// следующему вопросу с переносом через конец списка.
// При сбое отправки состояние не меняется.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSessionClosed
	}

	if err := c.submitCurrentLocked(ctx); err != nil {
		return err
	}
	c.current = (c.current + 1) % len(c.interview.Questions)
	return nil
}

// Previous возвращается к предыдущему вопросу с переносом через начало
// списка. Черновик остается локальным: на сервер ответы уходят только
// при движении вперед (Next, Skip) и при выходе.
func (c *Controller) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSessionClosed
	}

	total := len(c.interview.Questions)
	c.current = (c.current - 1 + total) % total
	return nil
}

// JumpTo переводит указатель на вопрос по индексу без отправки черновика
func (c *Controller) JumpTo(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSessionClosed
	}
	if index < 0 || index >= len(c.interview.Questions) {
		return fmt.Errorf("index %d: %w", index, ErrInvalidQuestionIndex)
	}

	c.current = index
	return nil
}

// Skip отправляет сигнальное значение пропуска вместо черновика и
// переходит к следующему вопросу. Пропущенный вопрос получает нулевую
// оценку на сервере без обращения к оцениванию.
func (c *Controller) Skip(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSessionClosed
	}

	questionID := c.interview.Questions[c.current].ID
	if err := c.api.SubmitAnswer(ctx, c.interview.ID, questionID, entity.SkipAnswer, c.timeLeft, false); err != nil {
		return err
	}
	c.confirmed[questionID] = entity.SkipAnswer
	c.current = (c.current + 1) % len(c.interview.Questions)
	return nil
}

// Exit завершает интервью: отправляет текущий черновик (если есть) вместе
// с флагом выхода. Повторный Exit во время выполнения первого отклоняется;
// при сбое защелка снимается и выход можно повторить.
func (c *Controller) Exit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitLocked(ctx)
}

func (c *Controller) exitLocked(ctx context.Context) error {
	if c.closed {
		return ErrSessionClosed
	}
	if c.exiting {
		return ErrExitInFlight
	}
	c.exiting = true

	questionID, answer := c.pendingSubmissionLocked()
	if err := c.api.SubmitAnswer(ctx, c.interview.ID, questionID, answer, c.timeLeft, true); err != nil {
		c.exiting = false
		return err
	}
	if questionID != 0 {
		c.confirmed[questionID] = answer
	}

	c.stopLocked()
	log.Printf("[Session] Интервью #%d завершено", c.interview.ID)
	if c.callbacks.OnCompleted != nil {
		c.callbacks.OnCompleted()
	}
	return nil
}

// submitCurrentLocked отправляет черновик текущего вопроса, если он
// непустой и отличается от подтвержденного сервером ответа
func (c *Controller) submitCurrentLocked(ctx context.Context) error {
	questionID, answer := c.pendingSubmissionLocked()
	if questionID == 0 {
		return nil
	}

	if err := c.api.SubmitAnswer(ctx, c.interview.ID, questionID, answer, c.timeLeft, false); err != nil {
		return err
	}
	c.confirmed[questionID] = answer
	return nil
}

func (c *Controller) pendingSubmissionLocked() (uint, string) {
	questionID := c.interview.Questions[c.current].ID
	draft := c.drafts[questionID]
	if draft == "" || draft == c.confirmed[questionID] {
		return 0, ""
	}
	return questionID, draft
}

// Close останавливает таймер без завершения интервью на сервере.
// Сессию можно возобновить позже: черновики остаются в локальном кеше.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.stopTicker)
}

// Done закрывается после остановки таймера
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// CurrentIndex возвращает индекс текущего вопроса
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CurrentQuestion возвращает текущий вопрос
func (c *Controller) CurrentQuestion() entity.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interview.Questions[c.current]
}

// Draft возвращает черновик ответа на текущий вопрос
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drafts[c.interview.Questions[c.current].ID]
}

// TimeLeft возвращает оставшееся время в секундах
func (c *Controller) TimeLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeLeft
}

package session

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// AnswerCache — локальное хранилище черновиков ответов, привязанное к
// устройству кандидата. Переживает перезапуск клиента, но никогда не
// является источником истины: авторитетны только подтвержденные сервером
// ответы.
type AnswerCache interface {
	// Put сохраняет черновик ответа на вопрос (перезапись разрешена)
	Put(interviewID, questionID uint, text string) error
	// Get возвращает черновик; отсутствие — это ("", false), не ошибка
	Get(interviewID, questionID uint) (string, bool)
	// GetAll возвращает все черновики интервью (пустая map при отсутствии)
	GetAll(interviewID uint) map[uint]string
	// Clear удаляет черновики интервью; вызывается только явно
	Clear(interviewID uint) error
	Close() error
}

// SQLiteCache реализует AnswerCache поверх локального файла SQLite
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache открывает (или создает) локальный файл кеша черновиков
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	// WAL: кеш пишется синхронно на каждое изменение черновика
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping cache database: %w", err)
	}

	cache := &SQLiteCache{db: db}
	if err := cache.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}

	return cache, nil
}

func (c *SQLiteCache) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS answer_drafts (
		interview_id INTEGER NOT NULL,
		question_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (interview_id, question_id)
	);
	`
	if _, err := c.db.Exec(query); err != nil {
		return fmt.Errorf("create cache schema: %w", err)
	}
	return nil
}

// Put сохраняет черновик, перезаписывая предыдущий
func (c *SQLiteCache) Put(interviewID, questionID uint, text string) error {
	query := `
		INSERT INTO answer_drafts (interview_id, question_id, text, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (interview_id, question_id) DO UPDATE SET
			text = excluded.text,
			updated_at = excluded.updated_at`

	_, err := c.db.Exec(query, interviewID, questionID, text, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store answer draft: %w", err)
	}
	return nil
}

// Get возвращает черновик ответа на вопрос.
// Любая ошибка чтения трактуется как промах кеша: сессия кандидата важнее
// локального кеша, падать здесь нельзя.
func (c *SQLiteCache) Get(interviewID, questionID uint) (string, bool) {
	var text string
	err := c.db.QueryRow(
		`SELECT text FROM answer_drafts WHERE interview_id = ? AND question_id = ?`,
		interviewID, questionID,
	).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.Printf("[AnswerCache] Ошибка чтения черновика %d/%d: %v", interviewID, questionID, err)
		return "", false
	}
	return text, true
}

// GetAll возвращает все черновики интервью
func (c *SQLiteCache) GetAll(interviewID uint) map[uint]string {
	drafts := make(map[uint]string)

	rows, err := c.db.Query(
		`SELECT question_id, text FROM answer_drafts WHERE interview_id = ?`,
		interviewID,
	)
	if err != nil {
		log.Printf("[AnswerCache] Ошибка чтения черновиков интервью %d: %v", interviewID, err)
		return drafts
	}
	defer rows.Close()

	for rows.Next() {
		var questionID uint
		var text string
		if err := rows.Scan(&questionID, &text); err != nil {
			log.Printf("[AnswerCache] Ошибка скана черновика: %v", err)
			continue
		}
		drafts[questionID] = text
	}
	if err := rows.Err(); err != nil {
		log.Printf("[AnswerCache] Ошибка итерации черновиков: %v", err)
	}

	return drafts
}

// Clear удаляет все черновики интервью
func (c *SQLiteCache) Clear(interviewID uint) error {
	_, err := c.db.Exec(`DELETE FROM answer_drafts WHERE interview_id = ?`, interviewID)
	return err
}

// Close закрывает файл кеша
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

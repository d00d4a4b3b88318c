package repository

import "time"

// CacheRepository определяет методы для работы с кешем.
// Increment обслуживает счетчики деградации оценивания, SetJSON/GetJSON —
// кеш агрегированной статистики.
type CacheRepository interface {
	Increment(key string) (int64, error)
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
}

package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда интервью или вопрос не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда пользователь пытается работать с чужим интервью.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrGenerationFailed используется, когда генератор вернул пустой список вопросов.
	// Фатальна только для создания интервью, существующие данные не затрагивает.
	ErrGenerationFailed = errors.New("question generation failed")

	// ErrConflict используется для конфликтов состояния документа.
	ErrConflict = errors.New("resource state conflict")
)

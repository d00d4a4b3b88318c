package evaluator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/interview-api/internal/domain/entity"
)

// Паттерны полей транскрипта оценки. Модель просят отвечать в формате
// "Overall Score: X/10, ... Suggestions: ...", но формат не гарантирован,
// поэтому каждое поле ищется независимо.
var (
	overallScoreRe = regexp.MustCompile(`Overall Score:\s*(\d+)/10`)
	relevanceRe    = regexp.MustCompile(`Relevance Score:\s*(\d+)/10`)
	clarityRe      = regexp.MustCompile(`Clarity Score:\s*(\d+)/10`)
	completenessRe = regexp.MustCompile(`Completeness Score:\s*(\d+)/10`)
	suggestionsRe  = regexp.MustCompile(`(?s)Suggestions:\s*(.*)`)
)

// ParseEvaluation разбирает свободный текст транскрипта оценки в Score.
// Намеренно лояльный контракт: отсутствующее или нечитаемое числовое поле
// дает 0, отсутствующие рекомендации — пустую строку. Функция никогда
// не возвращает ошибку, даже на полностью мусорном входе.
func ParseEvaluation(content string) entity.Score {
	return entity.Score{
		OverallScore: extractScore(overallScoreRe, content),
		Relevance:    extractScore(relevanceRe, content),
		Clarity:      extractScore(clarityRe, content),
		Completeness: extractScore(completenessRe, content),
		Suggestions:  extractSuggestions(content),
	}
}

// extractScore возвращает первое целое после метки поля, 0 при промахе
func extractScore(re *regexp.Regexp, content string) int {
	match := re.FindStringSubmatch(content)
	if match == nil {
		return 0
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return value
}

func extractSuggestions(content string) string {
	match := suggestionsRe.FindStringSubmatch(content)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

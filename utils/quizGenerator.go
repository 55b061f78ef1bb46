package utils

import (
	"bondroom/models"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// quizGenerationRounds bounds the widening retry loop. Each round issues one
// request to the generation source.
const quizGenerationRounds = 5

// GeneratedBy is the source label stamped onto generated question sets.
const GeneratedBy = "generated"

// GenerationExhaustedError reports that the source could not produce a full,
// module-covering, fresh question set within the round budget. Carries the
// number of valid unique candidates gathered for diagnostics.
type GenerationExhaustedError struct {
	Candidates int
	Required   int
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf(
		"generation source returned %d valid unique questions, required %d",
		e.Candidates, e.Required,
	)
}

var (
	questionMarkerPattern = regexp.MustCompile(`(?i)^\s*\[\s*q\s*\d+\s*\]\s*`)
	questionPrefixPattern = regexp.MustCompile(`(?i)^\s*q\s*\d+\s*[:.\-)]\s*`)
)

// CleanQuestionText strips "[Qn]" and "Qn:" style markers the source
// sometimes prepends to question text.
func CleanQuestionText(value string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}
	text = questionMarkerPattern.ReplaceAllString(text, "")
	text = questionPrefixPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// canonicalizeModuleTitle maps a raw module title onto the nearest known
// title: case-insensitive exact match first, then substring either way,
// otherwise round-robin by candidate position.
func canonicalizeModuleTitle(raw string, titles []string, position int) string {
	if len(titles) == 0 {
		return strings.TrimSpace(raw)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return titles[position%len(titles)]
	}

	rawKey := strings.ToLower(trimmed)
	for _, title := range titles {
		titleKey := strings.ToLower(title)
		if rawKey == titleKey {
			return title
		}
		if strings.Contains(titleKey, rawKey) || strings.Contains(rawKey, titleKey) {
			return title
		}
	}

	return titles[position%len(titles)]
}

// rawOptionList coerces the loosely typed options field into trimmed,
// non-empty strings. Anything that is not a string or number is dropped.
func rawOptionList(value interface{}) []string {
	var items []interface{}
	switch typed := value.(type) {
	case []interface{}:
		items = typed
	case []string:
		items = make([]interface{}, len(typed))
		for i, s := range typed {
			items[i] = s
		}
	default:
		return nil
	}

	options := make([]string, 0, len(items))
	for _, item := range items {
		var text string
		switch v := item.(type) {
		case string:
			text = v
		case float64:
			text = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	return options
}

// coerceOptionIndex clamps the answer index into the valid option range,
// defaulting to 0 for malformed or out-of-range values.
func coerceOptionIndex(value interface{}, optionCount int) int {
	index := 0
	switch v := value.(type) {
	case float64:
		index = int(v)
	case int:
		index = v
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		index = parsed
	default:
		return 0
	}
	if index < 0 || index >= optionCount {
		return 0
	}
	return index
}

// normalizeRawQuestions validates and canonicalizes source output. Items with
// missing text or fewer than four usable options are rejected; options are
// truncated to exactly four.
func normalizeRawQuestions(raw []RawQuestion, titles []string) []models.QuizQuestion {
	normalized := make([]models.QuizQuestion, 0, len(raw))
	for _, item := range raw {
		questionText := CleanQuestionText(item.Question)
		if questionText == "" {
			continue
		}
		options := rawOptionList(item.Options)
		if len(options) < 4 {
			continue
		}
		options = options[:4]

		normalized = append(normalized, models.QuizQuestion{
			Question:           questionText,
			Options:            options,
			CorrectOptionIndex: coerceOptionIndex(item.CorrectOptionIndex, len(options)),
			ModuleTitle:        canonicalizeModuleTitle(item.ModuleTitle, titles, len(normalized)),
		})
	}
	return normalized
}

// QuestionSignature returns an order-independent fingerprint of a question
// set, used to detect a repeat of the mentor's previous attempt.
func QuestionSignature(questions []models.QuizQuestion) string {
	entries := make([]string, 0, len(questions))
	for _, question := range questions {
		parts := make([]string, 0, 6)
		parts = append(parts, strings.ToLower(CleanQuestionText(question.Question)))
		options := question.Options
		if len(options) > 4 {
			options = options[:4]
		}
		for _, option := range options {
			parts = append(parts, strings.ToLower(strings.TrimSpace(option)))
		}
		parts = append(parts, strings.ToLower(strings.TrimSpace(question.ModuleTitle)))
		entries = append(entries, strings.Join(parts, "\x1f"))
	}
	sort.Strings(entries)
	return strings.Join(entries, "\x1e")
}

// selectQuestions attempts to pick a final set from the accepted candidates:
// one question per module first (when the quiz is long enough to cover them),
// then any unused candidates in encounter order.
func selectQuestions(candidates []models.QuizQuestion, titles []string, totalQuestions int) ([]models.QuizQuestion, error) {
	var selected []models.QuizQuestion
	used := make(map[string]bool)

	if len(titles) > 0 && totalQuestions >= len(titles) {
		for _, title := range titles {
			found := false
			for _, candidate := range candidates {
				key := strings.ToLower(candidate.Question)
				if candidate.ModuleTitle == title && !used[key] {
					selected = append(selected, candidate)
					used[key] = true
					found = true
					break
				}
			}
			if !found {
				return nil, errors.New("candidates did not include questions for all modules")
			}
		}
	}

	for _, candidate := range candidates {
		if len(selected) >= totalQuestions {
			break
		}
		key := strings.ToLower(candidate.Question)
		if used[key] {
			continue
		}
		selected = append(selected, candidate)
		used[key] = true
	}

	if len(selected) < totalQuestions {
		return nil, errors.New("not enough valid quiz questions")
	}
	return selected[:totalQuestions], nil
}

// GenerateQuizQuestions runs up to five widening rounds against the source
// and returns a validated, deduplicated, module-covering question set that
// differs from lastSignature (the mentor's previous resolved attempt).
// Each round requests candidates scoped to modules not yet represented.
func GenerateQuizQuestions(source QuestionSource, modules []models.TrainingModule, totalQuestions int, lastSignature string) ([]models.QuizQuestion, string, error) {
	if totalQuestions <= 0 {
		return nil, "", fmt.Errorf("totalQuestions must be greater than zero")
	}

	titles := make([]string, len(modules))
	for i, module := range modules {
		titles[i] = module.Title
	}

	var accepted []models.QuizQuestion
	seen := make(map[string]bool)

	for round := 0; round < quizGenerationRounds; round++ {
		represented := make(map[string]bool, len(accepted))
		for _, candidate := range accepted {
			represented[candidate.ModuleTitle] = true
		}

		var requestModules []models.TrainingModule
		for _, module := range modules {
			if !represented[module.Title] {
				requestModules = append(requestModules, module)
			}
		}
		if len(requestModules) == 0 {
			requestModules = modules
		}

		requestCount := 6
		if remaining := totalQuestions - len(accepted); remaining > requestCount {
			requestCount = remaining
		}
		if len(requestModules) > requestCount {
			requestCount = len(requestModules)
		}

		raw, err := source.Generate(requestModules, requestCount)
		if err != nil {
			log.Printf("Quiz generation round %d failed: %v", round+1, err)
			continue
		}

		for _, candidate := range normalizeRawQuestions(raw, titles) {
			key := strings.ToLower(candidate.Question)
			if seen[key] {
				continue
			}
			seen[key] = true
			accepted = append(accepted, candidate)
		}

		selected, err := selectQuestions(accepted, titles, totalQuestions)
		if err != nil {
			continue
		}
		if lastSignature != "" && QuestionSignature(selected) == lastSignature {
			// Same paper as the previous attempt. Selection is deterministic
			// over the pool, so restart it to let the next round produce a
			// different set.
			accepted = nil
			seen = make(map[string]bool)
			continue
		}

		rand.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
		return selected, GeneratedBy, nil
	}

	return nil, "", &GenerationExhaustedError{Candidates: len(accepted), Required: totalQuestions}
}

// EvaluateAttempt grades selected answers against the attempt's questions.
// Entries beyond the question count are ignored; malformed or negative
// entries normalize to unanswered (nil).
func EvaluateAttempt(questions []models.QuizQuestion, selectedAnswers []interface{}) (int, []*int) {
	answers := make([]*int, len(questions))
	for i, value := range selectedAnswers {
		if i >= len(questions) {
			break
		}
		if parsed, ok := parseAnswerIndex(value); ok && parsed >= 0 {
			index := parsed
			answers[i] = &index
		}
	}

	score := 0
	for i, question := range questions {
		if answers[i] != nil && *answers[i] == question.CorrectOptionIndex {
			score++
		}
	}
	return score, answers
}

// parseAnswerIndex accepts integral values only; everything else is treated
// as unanswered.
func parseAnswerIndex(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

package utils

import (
	"bondroom/models"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	batches [][]RawQuestion
	errs    []error
	calls   int
}

func (s *stubSource) Generate(modules []models.TrainingModule, count int) ([]RawQuestion, error) {
	call := s.calls
	s.calls++
	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	if len(s.batches) == 0 {
		return nil, nil
	}
	if call >= len(s.batches) {
		return s.batches[len(s.batches)-1], nil
	}
	return s.batches[call], nil
}

func testModules(titles ...string) []models.TrainingModule {
	modules := make([]models.TrainingModule, len(titles))
	for i, title := range titles {
		modules[i].ID = uint(i + 1)
		modules[i].Title = title
	}
	return modules
}

func rawBatch(titles []string, total int, salt string) []RawQuestion {
	batch := make([]RawQuestion, 0, total)
	for i := 0; i < total; i++ {
		title := titles[i%len(titles)]
		batch = append(batch, RawQuestion{
			Question:           fmt.Sprintf("%s question %d on %s?", salt, i+1, title),
			Options:            []interface{}{"Option A", "Option B", "Option C", "Option D"},
			CorrectOptionIndex: 1,
			ModuleTitle:        title,
		})
	}
	return batch
}

func TestCleanQuestionText(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"[Q1] What is rapport?", "What is rapport?"},
		{"  [ q 12 ]   Active listening?", "Active listening?"},
		{"Q3: Boundary setting?", "Boundary setting?"},
		{"q7- Mentor ethics?", "Mentor ethics?"},
		{"Q2) Session pacing?", "Session pacing?"},
		{"Plain question?", "Plain question?"},
		{"   ", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, CleanQuestionText(tc.input), "input %q", tc.input)
	}
}

func TestNormalizeRawQuestionsRejectsInvalid(t *testing.T) {
	titles := []string{"Foundations", "Ethics"}

	raw := []RawQuestion{
		{Question: "   ", Options: []interface{}{"A", "B", "C", "D"}, ModuleTitle: "Foundations"},
		{Question: "Too few options?", Options: []interface{}{"A", "B", "C"}, ModuleTitle: "Ethics"},
		{Question: "Valid one?", Options: []interface{}{"A", "B", "C", "D", "E"}, CorrectOptionIndex: float64(2), ModuleTitle: "ethics"},
	}

	normalized := normalizeRawQuestions(raw, titles)
	require.Len(t, normalized, 1)
	assert.Equal(t, "Valid one?", normalized[0].Question)
	assert.Len(t, normalized[0].Options, 4)
	assert.Equal(t, 2, normalized[0].CorrectOptionIndex)
	assert.Equal(t, "Ethics", normalized[0].ModuleTitle)
}

func TestNormalizeRawQuestionsClampsAnswerIndex(t *testing.T) {
	titles := []string{"Foundations"}
	raw := []RawQuestion{
		{Question: "Out of range?", Options: []interface{}{"A", "B", "C", "D"}, CorrectOptionIndex: float64(9), ModuleTitle: "Foundations"},
		{Question: "Negative?", Options: []interface{}{"A", "B", "C", "D"}, CorrectOptionIndex: float64(-1), ModuleTitle: "Foundations"},
		{Question: "From string?", Options: []interface{}{"A", "B", "C", "D"}, CorrectOptionIndex: "3", ModuleTitle: "Foundations"},
	}

	normalized := normalizeRawQuestions(raw, titles)
	require.Len(t, normalized, 3)
	assert.Equal(t, 0, normalized[0].CorrectOptionIndex)
	assert.Equal(t, 0, normalized[1].CorrectOptionIndex)
	assert.Equal(t, 3, normalized[2].CorrectOptionIndex)
}

func TestCanonicalizeModuleTitle(t *testing.T) {
	titles := []string{"Mentoring Foundations", "Ethics and Boundaries"}

	assert.Equal(t, "Mentoring Foundations", canonicalizeModuleTitle("mentoring foundations", titles, 0))
	assert.Equal(t, "Ethics and Boundaries", canonicalizeModuleTitle("Ethics", titles, 0))
	assert.Equal(t, "Mentoring Foundations", canonicalizeModuleTitle("Advanced Mentoring Foundations Guide", titles, 0))
	// Unknown titles rotate across modules by position.
	assert.Equal(t, "Mentoring Foundations", canonicalizeModuleTitle("Unrelated", titles, 0))
	assert.Equal(t, "Ethics and Boundaries", canonicalizeModuleTitle("Unrelated", titles, 1))
	assert.Equal(t, "Mentoring Foundations", canonicalizeModuleTitle("", titles, 2))
}

func TestQuestionSignatureIsOrderIndependent(t *testing.T) {
	first := models.QuizQuestion{Question: "One?", Options: []string{"A", "B", "C", "D"}, ModuleTitle: "M1"}
	second := models.QuizQuestion{Question: "Two?", Options: []string{"A", "B", "C", "D"}, ModuleTitle: "M2"}

	forward := QuestionSignature([]models.QuizQuestion{first, second})
	reversed := QuestionSignature([]models.QuizQuestion{second, first})
	assert.Equal(t, forward, reversed)

	changed := second
	changed.Options = []string{"A", "B", "C", "E"}
	assert.NotEqual(t, forward, QuestionSignature([]models.QuizQuestion{first, changed}))
}

func TestGenerateQuizQuestionsCoversAllModules(t *testing.T) {
	modules := testModules("Foundations", "Ethics", "Sessions")
	source := &stubSource{batches: [][]RawQuestion{rawBatch([]string{"Foundations", "Ethics", "Sessions"}, 15, "a")}}

	questions, generatedBy, err := GenerateQuizQuestions(source, modules, 15, "")
	require.NoError(t, err)
	assert.Equal(t, GeneratedBy, generatedBy)
	require.Len(t, questions, 15)

	covered := make(map[string]bool)
	seen := make(map[string]bool)
	for _, question := range questions {
		covered[question.ModuleTitle] = true
		assert.False(t, seen[question.Question], "duplicate question %q", question.Question)
		seen[question.Question] = true
		assert.Len(t, question.Options, 4)
	}
	assert.Len(t, covered, 3)
}

func TestGenerateQuizQuestionsWidensAfterSourceError(t *testing.T) {
	modules := testModules("Foundations", "Ethics")
	source := &stubSource{
		errs:    []error{errors.New("upstream timeout")},
		batches: [][]RawQuestion{nil, rawBatch([]string{"Foundations", "Ethics"}, 15, "b")},
	}

	questions, _, err := GenerateQuizQuestions(source, modules, 15, "")
	require.NoError(t, err)
	assert.Len(t, questions, 15)
	assert.Equal(t, 2, source.calls)
}

func TestGenerateQuizQuestionsAccumulatesAcrossRounds(t *testing.T) {
	modules := testModules("Foundations", "Ethics")
	// First round covers only one module; later rounds fill the gap.
	source := &stubSource{batches: [][]RawQuestion{
		rawBatch([]string{"Foundations"}, 10, "c"),
		rawBatch([]string{"Ethics"}, 10, "d"),
	}}

	questions, _, err := GenerateQuizQuestions(source, modules, 15, "")
	require.NoError(t, err)
	assert.Len(t, questions, 15)

	covered := make(map[string]bool)
	for _, question := range questions {
		covered[question.ModuleTitle] = true
	}
	assert.Len(t, covered, 2)
}

func TestGenerateQuizQuestionsRejectsRepeatOfLastSet(t *testing.T) {
	modules := testModules("Foundations")
	repeat := rawBatch([]string{"Foundations"}, 15, "e")

	first, _, err := GenerateQuizQuestions(&stubSource{batches: [][]RawQuestion{repeat}}, modules, 15, "")
	require.NoError(t, err)
	lastSignature := QuestionSignature(first)

	// A source that can only reproduce the same paper must exhaust.
	_, _, err = GenerateQuizQuestions(&stubSource{batches: [][]RawQuestion{repeat}}, modules, 15, lastSignature)
	var exhausted *GenerationExhaustedError
	require.ErrorAs(t, err, &exhausted)

	// A source with fresh material on the next round succeeds.
	fresh, _, err := GenerateQuizQuestions(&stubSource{batches: [][]RawQuestion{
		repeat,
		rawBatch([]string{"Foundations"}, 15, "f"),
	}}, modules, 15, lastSignature)
	require.NoError(t, err)
	assert.NotEqual(t, lastSignature, QuestionSignature(fresh))
}

func TestGenerateQuizQuestionsExhaustsAfterFiveRounds(t *testing.T) {
	modules := testModules("Foundations", "Ethics")
	source := &stubSource{batches: [][]RawQuestion{rawBatch([]string{"Foundations", "Ethics"}, 4, "g")}}

	_, _, err := GenerateQuizQuestions(source, modules, 15, "")
	var exhausted *GenerationExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 5, source.calls)
	assert.Equal(t, 4, exhausted.Candidates)
	assert.Equal(t, 15, exhausted.Required)
}

func TestEvaluateAttempt(t *testing.T) {
	questions := []models.QuizQuestion{
		{Question: "One?", Options: []string{"A", "B", "C", "D"}, CorrectOptionIndex: 0},
		{Question: "Two?", Options: []string{"A", "B", "C", "D"}, CorrectOptionIndex: 1},
		{Question: "Three?", Options: []string{"A", "B", "C", "D"}, CorrectOptionIndex: 2},
		{Question: "Four?", Options: []string{"A", "B", "C", "D"}, CorrectOptionIndex: 3},
	}

	// Two correct answers (the numeric string counts), a fractional and a
	// negative entry that normalize to unanswered, and one entry past the
	// question count that is ignored.
	score, answers := EvaluateAttempt(questions, []interface{}{
		float64(0), "1", float64(1.5), float64(-2), float64(3),
	})

	assert.Equal(t, 2, score)
	require.Len(t, answers, 4)
	require.NotNil(t, answers[0])
	assert.Equal(t, 0, *answers[0])
	require.NotNil(t, answers[1])
	assert.Equal(t, 1, *answers[1])
	assert.Nil(t, answers[2])
	assert.Nil(t, answers[3])
}

func TestEvaluateAttemptShortSubmission(t *testing.T) {
	questions := []models.QuizQuestion{
		{Question: "One?", Options: []string{"A", "B", "C", "D"}, CorrectOptionIndex: 1},
		{Question: "Two?", Options: []string{"A", "B", "C", "D"}, CorrectOptionIndex: 1},
	}

	score, answers := EvaluateAttempt(questions, []interface{}{float64(1)})
	assert.Equal(t, 1, score)
	require.Len(t, answers, 2)
	assert.Nil(t, answers[1])
}

package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Fixed certification quiz configuration.
const (
	TrainingQuizTotalQuestions = 15
	TrainingQuizPassMark       = 7
)

// Quiz attempt lifecycle states. Passed and failed are terminal.
const (
	AttemptPending = "pending"
	AttemptPassed  = "passed"
	AttemptFailed  = "failed"
)

// QuizQuestion is one generated multiple-choice question. Options always
// hold exactly four entries after normalization.
type QuizQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	ModuleTitle        string   `json:"module_title"`
}

// MentorQuizAttempt is one generated-and-graded instance of the certification
// quiz. At most one pending attempt exists per mentor (enforced by a partial
// unique index). Immutable once non-pending.
type MentorQuizAttempt struct {
	gorm.Model
	Reference       string         `json:"reference" gorm:"size:36;uniqueIndex"`
	MentorID        uint           `json:"mentor_id" gorm:"index;not null"`
	TotalQuestions  int            `json:"total_questions"`
	PassMark        int            `json:"pass_mark"`
	Questions       datatypes.JSON `json:"-"`
	SelectedAnswers datatypes.JSON `json:"selected_answers"` // index-aligned, null = unanswered
	Score           int            `json:"score" gorm:"default:0"`
	Status          string         `json:"status" gorm:"default:'pending'"`
	StartedAt       time.Time      `json:"started_at"`
	SubmittedAt     *time.Time     `json:"submitted_at"`
}

// QuestionList decodes the stored question set.
func (a *MentorQuizAttempt) QuestionList() []QuizQuestion {
	if len(a.Questions) == 0 {
		return nil
	}
	var questions []QuizQuestion
	if err := json.Unmarshal(a.Questions, &questions); err != nil {
		return nil
	}
	return questions
}

// SetQuestions encodes the question set into the JSON column.
func (a *MentorQuizAttempt) SetQuestions(questions []QuizQuestion) error {
	encoded, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	a.Questions = datatypes.JSON(encoded)
	return nil
}

// AnswerList decodes the stored selected answers. Unanswered slots are nil.
func (a *MentorQuizAttempt) AnswerList() []*int {
	if len(a.SelectedAnswers) == 0 {
		return []*int{}
	}
	var answers []*int
	if err := json.Unmarshal(a.SelectedAnswers, &answers); err != nil {
		return []*int{}
	}
	return answers
}

// SetAnswers encodes normalized selected answers into the JSON column.
func (a *MentorQuizAttempt) SetAnswers(answers []*int) error {
	if answers == nil {
		answers = []*int{}
	}
	encoded, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	a.SelectedAnswers = datatypes.JSON(encoded)
	return nil
}

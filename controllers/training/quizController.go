package controllers

import (
	"bondroom/database"
	"bondroom/middleware"
	"bondroom/models"
	"bondroom/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizSource produces quiz questions for new attempts. Swapped for a stub in
// tests.
var QuizSource utils.QuestionSource = utils.NewOpenAIQuestionSource()

// sanitizeQuestionsForClient strips answer keys and source markers before
// questions leave the service.
func sanitizeQuestionsForClient(questions []models.QuizQuestion) []fiber.Map {
	sanitized := make([]fiber.Map, 0, len(questions))
	for _, question := range questions {
		options := question.Options
		if len(options) > 4 {
			options = options[:4]
		}
		sanitized = append(sanitized, fiber.Map{
			"question":     utils.CleanQuestionText(question.Question),
			"options":      options,
			"module_title": question.ModuleTitle,
		})
	}
	return sanitized
}

// serializeAttempt shapes an attempt for clients. Questions are included only
// on demand and never carry the correct option index.
func serializeAttempt(attempt *models.MentorQuizAttempt, includeQuestions bool) fiber.Map {
	if attempt == nil {
		return nil
	}
	payload := fiber.Map{
		"id":               attempt.ID,
		"reference":        attempt.Reference,
		"status":           attempt.Status,
		"score":            attempt.Score,
		"pass_mark":        models.TrainingQuizPassMark,
		"total_questions":  attempt.TotalQuestions,
		"selected_answers": attempt.AnswerList(),
		"started_at":       attempt.StartedAt,
		"submitted_at":     attempt.SubmittedAt,
	}
	if includeQuestions {
		payload["questions"] = sanitizeQuestionsForClient(attempt.QuestionList())
	}
	return payload
}

func latestAttempt(db *gorm.DB, mentorID uint) *models.MentorQuizAttempt {
	var attempt models.MentorQuizAttempt
	err := db.Where("mentor_id = ?", mentorID).
		Order("started_at desc, id desc").First(&attempt).Error
	if err != nil {
		return nil
	}
	return &attempt
}

func latestResolvedAttempt(db *gorm.DB, mentorID uint) *models.MentorQuizAttempt {
	var attempt models.MentorQuizAttempt
	err := db.Where("mentor_id = ? AND status <> ?", mentorID, models.AttemptPending).
		Order("started_at desc, id desc").First(&attempt).Error
	if err != nil {
		return nil
	}
	return &attempt
}

func pendingAttempt(db *gorm.DB, mentorID uint) *models.MentorQuizAttempt {
	var attempt models.MentorQuizAttempt
	err := db.Where("mentor_id = ? AND status = ?", mentorID, models.AttemptPending).
		Order("started_at desc, id desc").First(&attempt).Error
	if err != nil {
		return nil
	}
	return &attempt
}

func passedAttempt(db *gorm.DB, mentorID uint) *models.MentorQuizAttempt {
	var attempt models.MentorQuizAttempt
	err := db.Where("mentor_id = ? AND status = ?", mentorID, models.AttemptPassed).
		Order("started_at desc, id desc").First(&attempt).Error
	if err != nil {
		return nil
	}
	return &attempt
}

// BuildQuizSummary is the compact block embedded in the onboarding view.
func BuildQuizSummary(db *gorm.DB, mentorID uint) fiber.Map {
	latest := latestAttempt(db, mentorID)
	summary := fiber.Map{
		"has_passed":     utils.HasPassedQuiz(db, mentorID),
		"latest_attempt": nil,
	}
	if latest != nil {
		summary["latest_attempt"] = fiber.Map{
			"id":              latest.ID,
			"reference":       latest.Reference,
			"status":          latest.Status,
			"score":           latest.Score,
			"pass_mark":       models.TrainingQuizPassMark,
			"total_questions": latest.TotalQuestions,
			"started_at":      latest.StartedAt,
			"submitted_at":    latest.SubmittedAt,
		}
	}
	return summary
}

// QuizStatus reports quiz eligibility and the latest attempt for a mentor.
func QuizStatus(c *fiber.Ctx) error {
	mentor, ok, err := resolveMentor(c, 0)
	if !ok {
		return err
	}

	db := database.Database.Db
	states, loadErr := utils.LoadModuleStates(db, mentor.ID)
	if loadErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load training modules!", nil)
	}
	onboarding, syncErr := utils.SyncTrainingStatus(db, mentor.ID, states)
	if syncErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
	}

	completedModules := 0
	for _, state := range states {
		if state.Status == models.ProgressCompleted {
			completedModules++
		}
	}

	latest := latestAttempt(db, mentor.ID)
	includeQuestions := latest != nil && latest.Status == models.AttemptPending

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz status fetched successfully!", fiber.Map{
		"quiz_required":              len(states) > 0,
		"modules_completed":          utils.AllModulesCompleted(states),
		"completed_modules":          completedModules,
		"total_modules":              len(states),
		"quiz_passed":                utils.HasPassedQuiz(db, mentor.ID),
		"latest_attempt":             serializeAttempt(latest, includeQuestions),
		"onboarding_training_status": onboarding.TrainingStatus,
	})
}

// StartQuiz creates a pending attempt with a fresh generated question set.
// Idempotent: an existing passed or pending attempt is returned as-is.
func StartQuiz(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedQuizStart").(*struct {
		MentorID uint `json:"mentor_id"`
	})
	var explicitID uint
	if reqData != nil {
		explicitID = reqData.MentorID
	}

	mentor, ok, err := resolveMentor(c, explicitID)
	if !ok {
		return err
	}

	db := database.Database.Db
	states, loadErr := utils.LoadModuleStates(db, mentor.ID)
	if loadErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load training modules!", nil)
	}
	if !utils.AllModulesCompleted(states) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Complete all training modules before starting the quiz!", nil)
	}

	if passed := passedAttempt(db, mentor.ID); passed != nil {
		onboarding, syncErr := utils.SyncTrainingStatus(db, mentor.ID, states)
		if syncErr != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz already passed!", fiber.Map{
			"attempt":                    serializeAttempt(passed, false),
			"quiz_passed":                true,
			"onboarding_training_status": onboarding.TrainingStatus,
		})
	}

	if pending := pendingAttempt(db, mentor.ID); pending != nil {
		onboarding, syncErr := utils.SyncTrainingStatus(db, mentor.ID, states)
		if syncErr != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz attempt resumed!", fiber.Map{
			"attempt":                    serializeAttempt(pending, true),
			"quiz_passed":                false,
			"onboarding_training_status": onboarding.TrainingStatus,
		})
	}

	lastSignature := ""
	if resolved := latestResolvedAttempt(db, mentor.ID); resolved != nil {
		lastSignature = utils.QuestionSignature(resolved.QuestionList())
	}

	modules := make([]models.TrainingModule, len(states))
	for i, state := range states {
		modules[i] = state.Module
	}

	questions, generatedBy, genErr := utils.GenerateQuizQuestions(
		QuizSource, modules, models.TrainingQuizTotalQuestions, lastSignature,
	)
	if genErr != nil {
		// Exhaustion and transport failures are both retryable by the caller;
		// no partial attempt is persisted.
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Unable to generate a fresh quiz right now. Please try again.", nil)
	}

	attempt := models.MentorQuizAttempt{
		Reference:      uuid.NewString(),
		MentorID:       mentor.ID,
		TotalQuestions: models.TrainingQuizTotalQuestions,
		PassMark:       models.TrainingQuizPassMark,
		Score:          0,
		Status:         models.AttemptPending,
		StartedAt:      time.Now(),
	}
	if err := attempt.SetQuestions(questions); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz attempt!", nil)
	}
	if err := attempt.SetAnswers(nil); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz attempt!", nil)
	}
	if err := db.Create(&attempt).Error; err != nil {
		// The partial unique index rejects a second pending attempt created by
		// a racing start.
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A quiz attempt is already in progress!", nil)
	}

	onboarding, syncErr := utils.SyncTrainingStatus(db, mentor.ID, states)
	if syncErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz attempt created!", fiber.Map{
		"attempt":                    serializeAttempt(&attempt, true),
		"generated_by":               generatedBy,
		"quiz_passed":                false,
		"onboarding_training_status": onboarding.TrainingStatus,
	})
}

// SubmitQuiz grades a pending attempt and finalizes it as passed or failed.
func SubmitQuiz(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedQuizSubmit").(*struct {
		AttemptID       uint          `json:"attempt_id"`
		MentorID        uint          `json:"mentor_id"`
		SelectedAnswers []interface{} `json:"selected_answers"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	mentor, ok, err := resolveMentor(c, reqData.MentorID)
	if !ok {
		return err
	}

	db := database.Database.Db
	var attempt models.MentorQuizAttempt
	if err := db.Where("id = ? AND mentor_id = ?", reqData.AttemptID, mentor.ID).First(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz attempt not found!", nil)
	}

	if attempt.Status != models.AttemptPending {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This quiz attempt is already submitted!", fiber.Map{
			"attempt": serializeAttempt(&attempt, false),
		})
	}

	questions := attempt.QuestionList()
	score, normalized := utils.EvaluateAttempt(questions, reqData.SelectedAnswers)
	passed := score >= models.TrainingQuizPassMark
	wrongCount := attempt.TotalQuestions - score
	if wrongCount < 0 {
		wrongCount = 0
	}

	now := time.Now()
	attempt.Score = score
	attempt.SubmittedAt = &now
	if passed {
		attempt.Status = models.AttemptPassed
	} else {
		attempt.Status = models.AttemptFailed
	}
	if err := attempt.SetAnswers(normalized); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz attempt!", nil)
	}
	if err := db.Save(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz attempt!", nil)
	}

	states, loadErr := utils.LoadModuleStates(db, mentor.ID)
	if loadErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load training modules!", nil)
	}
	onboarding, syncErr := utils.SyncTrainingStatus(db, mentor.ID, states)
	if syncErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz attempt submitted!", fiber.Map{
		"passed":                     passed,
		"score":                      score,
		"wrong_count":                wrongCount,
		"pass_mark":                  models.TrainingQuizPassMark,
		"total_questions":            attempt.TotalQuestions,
		"attempt":                    serializeAttempt(&attempt, false),
		"onboarding_training_status": onboarding.TrainingStatus,
	})
}

// AbandonQuiz fails a pending attempt with score 0. A no-op for attempts
// that are already resolved.
func AbandonQuiz(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedQuizAbandon").(*struct {
		AttemptID uint `json:"attempt_id"`
		MentorID  uint `json:"mentor_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	mentor, ok, err := resolveMentor(c, reqData.MentorID)
	if !ok {
		return err
	}

	db := database.Database.Db
	var attempt models.MentorQuizAttempt
	if err := db.Where("id = ? AND mentor_id = ?", reqData.AttemptID, mentor.ID).First(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz attempt not found!", nil)
	}

	if attempt.Status == models.AttemptPending {
		now := time.Now()
		attempt.Score = 0
		attempt.Status = models.AttemptFailed
		attempt.SubmittedAt = &now
		if err := db.Save(&attempt).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to abandon quiz attempt!", nil)
		}
	}

	states, loadErr := utils.LoadModuleStates(db, mentor.ID)
	if loadErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load training modules!", nil)
	}
	onboarding, syncErr := utils.SyncTrainingStatus(db, mentor.ID, states)
	if syncErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz attempt marked as failed!", fiber.Map{
		"attempt":                    serializeAttempt(&attempt, false),
		"onboarding_training_status": onboarding.TrainingStatus,
	})
}

package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bondroom/config"
	"bondroom/database"
	"bondroom/middleware"
	"bondroom/models"
	mentorRoutes "bondroom/routers/mentorRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDb(t *testing.T, name string) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{
		Port:                   "3000",
		JWTKey:                 "test-secret",
		EmailSender:            "defaultSecret",
		Password:               "defaultSecret",
		QuizAttemptMaxAgeHours: 24,
	}

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}
	return db
}

func setupTestApp() *fiber.App {
	app := fiber.New()
	mentorRoutes.SetupMentorRoutes(app)
	return app
}

func seedMentor(t *testing.T, db *gorm.DB, name, email, role string) models.Mentor {
	t.Helper()
	mentor := models.Mentor{Name: name, Email: email, Role: role}
	require.NoError(t, db.Create(&mentor).Error)
	return mentor
}

func seedCompletedTraining(t *testing.T, db *gorm.DB, mentorID uint, titles ...string) {
	t.Helper()
	now := time.Now()
	for i, title := range titles {
		module := models.TrainingModule{Title: title, Description: title, OrderIndex: i + 1, IsActive: true}
		require.NoError(t, module.SetOutline([]string{title}))
		require.NoError(t, db.Create(&module).Error)
		row := models.MentorTrainingProgress{
			MentorID:        mentorID,
			ModuleID:        module.ID,
			Status:          models.ProgressCompleted,
			ProgressPercent: 100,
			CompletedAt:     &now,
		}
		require.NoError(t, db.Create(&row).Error)
	}
}

func seedPassedAttempt(t *testing.T, db *gorm.DB, mentorID uint) {
	t.Helper()
	now := time.Now()
	attempt := models.MentorQuizAttempt{
		Reference:      uuid.NewString(),
		MentorID:       mentorID,
		TotalQuestions: models.TrainingQuizTotalQuestions,
		PassMark:       models.TrainingQuizPassMark,
		Score:          12,
		Status:         models.AttemptPassed,
		StartedAt:      now.Add(-time.Hour),
		SubmittedAt:    &now,
	}
	require.NoError(t, attempt.SetQuestions([]models.QuizQuestion{}))
	require.NoError(t, attempt.SetAnswers(nil))
	require.NoError(t, db.Create(&attempt).Error)
}

func seedIdentitySubmission(t *testing.T, db *gorm.DB, mentorID uint) models.MentorIdentityVerification {
	t.Helper()
	identity := models.MentorIdentityVerification{
		MentorID:     mentorID,
		AadhaarFront: "uploads/front.png",
		AadhaarBack:  "uploads/back.png",
		Status:       models.StatusInReview,
		SubmittedAt:  time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, db.Create(&identity).Error)
	return identity
}

func authToken(t *testing.T, mentorID uint, role, email string) string {
	t.Helper()
	token, err := middleware.GenerateJWT(mentorID, role, email)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func dataMap(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := payload["data"].(map[string]interface{})
	require.True(t, ok, "expected data object, got %v", payload["data"])
	return data
}

func TestGetMentorOnboardingCreatesDefaults(t *testing.T) {
	db := setupTestDb(t, "onboarding_defaults")
	app := setupTestApp()
	mentor := seedMentor(t, db, "Asha", "asha@example.com", middleware.RoleMentor)
	token := authToken(t, mentor.ID, middleware.RoleMentor, mentor.Email)

	path := fmt.Sprintf("/mentors/%d/onboarding", mentor.ID)
	code, payload := doJSON(t, app, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, code)

	data := dataMap(t, payload)
	status := data["status"].(map[string]interface{})
	assert.Equal(t, models.StatusCompleted, status["application_status"])
	assert.Equal(t, models.StatusPending, status["identity_status"])
	assert.Equal(t, models.StatusPending, status["training_status"])
	assert.Equal(t, models.StatusInReview, status["current_status"])

	assert.Nil(t, data["identity_verification"])
	assert.Nil(t, data["contact_verification"])
	assert.NotNil(t, data["training_modules"])

	quiz := data["training_quiz"].(map[string]interface{})
	assert.Equal(t, false, quiz["has_passed"])
	assert.Nil(t, quiz["latest_attempt"])
}

func TestGetMentorOnboardingForbidsOtherMentors(t *testing.T) {
	db := setupTestDb(t, "onboarding_forbidden")
	app := setupTestApp()
	mentor := seedMentor(t, db, "Asha", "asha@example.com", middleware.RoleMentor)
	other := seedMentor(t, db, "Ravi", "ravi@example.com", middleware.RoleMentor)
	token := authToken(t, mentor.ID, middleware.RoleMentor, mentor.Email)

	path := fmt.Sprintf("/mentors/%d/onboarding", other.ID)
	code, _ := doJSON(t, app, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// Admins may view any mentor.
	admin := seedMentor(t, db, "Root", "root@example.com", middleware.RoleAdmin)
	adminToken := authToken(t, admin.ID, middleware.RoleAdmin, admin.Email)
	code, _ = doJSON(t, app, http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, app, http.MethodGet, "/mentors/9999/onboarding", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminDecisionRequiresAdmin(t *testing.T) {
	db := setupTestDb(t, "decision_role")
	app := setupTestApp()
	mentor := seedMentor(t, db, "Asha", "asha@example.com", middleware.RoleMentor)
	token := authToken(t, mentor.ID, middleware.RoleMentor, mentor.Email)

	path := fmt.Sprintf("/mentors/%d/admin-decision", mentor.ID)
	code, _ := doJSON(t, app, http.MethodPost, path, token, fiber.Map{
		"identity_decision": models.IdentityVerified,
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminDecisionValidation(t *testing.T) {
	db := setupTestDb(t, "decision_validation")
	app := setupTestApp()
	mentor := seedMentor(t, db, "Asha", "asha@example.com", middleware.RoleMentor)
	admin := seedMentor(t, db, "Root", "root@example.com", middleware.RoleAdmin)
	adminToken := authToken(t, admin.ID, middleware.RoleAdmin, admin.Email)

	path := fmt.Sprintf("/mentors/%d/admin-decision", mentor.ID)
	code, _ := doJSON(t, app, http.MethodPost, path, adminToken, fiber.Map{
		"identity_decision": "approved",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = doJSON(t, app, http.MethodPost, path, adminToken, fiber.Map{
		"training_status": "done",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestAdminDecisionIdentityVerified(t *testing.T) {
	db := setupTestDb(t, "decision_identity")
	app := setupTestApp()
	mentor := seedMentor(t, db, "Asha", "asha@example.com", middleware.RoleMentor)
	admin := seedMentor(t, db, "Root", "root@example.com", middleware.RoleAdmin)
	adminToken := authToken(t, admin.ID, middleware.RoleAdmin, admin.Email)
	seedIdentitySubmission(t, db, mentor.ID)

	path := fmt.Sprintf("/mentors/%d/admin-decision", mentor.ID)
	code, payload := doJSON(t, app, http.MethodPost, path, adminToken, fiber.Map{
		"identity_decision": models.IdentityVerified,
		"reviewer_notes":    "Documents are legible and match.",
	})
	require.Equal(t, http.StatusOK, code)

	data := dataMap(t, payload)
	status := data["status"].(map[string]interface{})
	assert.Equal(t, models.StatusCompleted, status["identity_status"])

	identity := data["identity_verification"].(map[string]interface{})
	assert.Equal(t, models.IdentityVerified, identity["status"])
	assert.NotNil(t, identity["reviewed_at"])
	assert.Equal(t, "Documents are legible and match.", identity["reviewer_notes"])
}

func TestAdminDecisionTrainingOverrideNeedsPassedQuiz(t *testing.T) {
	db := setupTestDb(t, "decision_training_gate")
	app := setupTestApp()
	mentor := seedMentor(t, db, "Asha", "asha@example.com", middleware.RoleMentor)
	admin := seedMentor(t, db, "Root", "root@example.com", middleware.RoleAdmin)
	adminToken := authToken(t, admin.ID, middleware.RoleAdmin, admin.Email)
	seedCompletedTraining(t, db, mentor.ID, "Foundations", "Ethics")

	path := fmt.Sprintf("/mentors/%d/admin-decision", mentor.ID)
	code, payload := doJSON(t, app, http.MethodPost, path, adminToken, fiber.Map{
		"training_status": models.StatusCompleted,
	})
	require.Equal(t, http.StatusOK, code)

	status := dataMap(t, payload)["status"].(map[string]interface{})
	assert.Equal(t, models.StatusInReview, status["training_status"])
	assert.Equal(t, models.StatusInReview, status["current_status"])
}

func TestAdminDecisionRejection(t *testing.T) {
	db := setupTestDb(t, "decision_rejection")
	app := setupTestApp()
	mentor := seedMentor(t, db, "Asha", "asha@example.com", middleware.RoleMentor)
	admin := seedMentor(t, db, "Root", "root@example.com", middleware.RoleAdmin)
	adminToken := authToken(t, admin.ID, middleware.RoleAdmin, admin.Email)
	seedIdentitySubmission(t, db, mentor.ID)

	path := fmt.Sprintf("/mentors/%d/admin-decision", mentor.ID)
	code, payload := doJSON(t, app, http.MethodPost, path, adminToken, fiber.Map{
		"identity_decision":      models.StatusRejected,
		"final_approval_status":  models.StatusRejected,
		"final_rejection_reason": "Documents did not match the application.",
	})
	require.Equal(t, http.StatusOK, code)

	status := dataMap(t, payload)["status"].(map[string]interface{})
	assert.Equal(t, models.StatusRejected, status["identity_status"])
	assert.Equal(t, models.StatusRejected, status["current_status"])
	assert.Equal(t, models.StatusRejected, status["final_approval_status"])
	assert.Equal(t, "Documents did not match the application.", status["final_rejection_reason"])
}

func TestAdminDecisionCompletesCertification(t *testing.T) {
	db := setupTestDb(t, "decision_completed")
	app := setupTestApp()
	mentor := seedMentor(t, db, "Asha", "asha@example.com", middleware.RoleMentor)
	admin := seedMentor(t, db, "Root", "root@example.com", middleware.RoleAdmin)
	adminToken := authToken(t, admin.ID, middleware.RoleAdmin, admin.Email)
	seedIdentitySubmission(t, db, mentor.ID)
	seedCompletedTraining(t, db, mentor.ID, "Foundations", "Ethics")
	seedPassedAttempt(t, db, mentor.ID)

	path := fmt.Sprintf("/mentors/%d/admin-decision", mentor.ID)
	code, payload := doJSON(t, app, http.MethodPost, path, adminToken, fiber.Map{
		"identity_decision": models.IdentityVerified,
	})
	require.Equal(t, http.StatusOK, code)

	data := dataMap(t, payload)
	status := data["status"].(map[string]interface{})
	assert.Equal(t, models.StatusCompleted, status["identity_status"])
	assert.Equal(t, models.StatusCompleted, status["training_status"])
	// Identity plus training completed certifies even with contact pending.
	assert.Equal(t, models.StatusCompleted, status["current_status"])

	quiz := data["training_quiz"].(map[string]interface{})
	assert.Equal(t, true, quiz["has_passed"])
	latest := quiz["latest_attempt"].(map[string]interface{})
	assert.Equal(t, models.AttemptPassed, latest["status"])
	assert.EqualValues(t, 12, latest["score"])
}

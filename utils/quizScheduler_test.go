package utils

import (
	"testing"
	"time"

	"bondroom/config"
	"bondroom/database"
	"bondroom/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSchedulerDb(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTKey:                 "test-secret",
		EmailSender:            "defaultSecret",
		QuizAttemptMaxAgeHours: 24,
	}

	db, err := gorm.Open(sqlite.Open("file:scheduler_sweep?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}
	return db
}

func seedAttempt(t *testing.T, db *gorm.DB, mentorID uint, status string, startedAt time.Time) models.MentorQuizAttempt {
	t.Helper()
	attempt := models.MentorQuizAttempt{
		Reference:      uuid.NewString(),
		MentorID:       mentorID,
		TotalQuestions: models.TrainingQuizTotalQuestions,
		PassMark:       models.TrainingQuizPassMark,
		Status:         status,
		StartedAt:      startedAt,
	}
	require.NoError(t, attempt.SetQuestions([]models.QuizQuestion{}))
	require.NoError(t, attempt.SetAnswers(nil))
	require.NoError(t, db.Create(&attempt).Error)
	return attempt
}

func TestSweepStaleQuizAttempts(t *testing.T) {
	db := setupSchedulerDb(t)

	mentorOne := models.Mentor{Name: "Asha", Email: "asha@example.com", Role: "MENTOR"}
	mentorTwo := models.Mentor{Name: "Ravi", Email: "ravi@example.com", Role: "MENTOR"}
	require.NoError(t, db.Create(&mentorOne).Error)
	require.NoError(t, db.Create(&mentorTwo).Error)

	stale := seedAttempt(t, db, mentorOne.ID, models.AttemptPending, time.Now().Add(-25*time.Hour))
	recent := seedAttempt(t, db, mentorTwo.ID, models.AttemptPending, time.Now().Add(-time.Hour))

	SweepStaleQuizAttempts(db)

	var refreshed models.MentorQuizAttempt
	require.NoError(t, db.First(&refreshed, stale.ID).Error)
	assert.Equal(t, models.AttemptFailed, refreshed.Status)
	assert.Equal(t, 0, refreshed.Score)
	assert.NotNil(t, refreshed.SubmittedAt)

	refreshed = models.MentorQuizAttempt{}
	require.NoError(t, db.First(&refreshed, recent.ID).Error)
	assert.Equal(t, models.AttemptPending, refreshed.Status)
	assert.Nil(t, refreshed.SubmittedAt)
}

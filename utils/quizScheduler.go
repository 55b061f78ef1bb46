package utils

import (
	"bondroom/config"
	"bondroom/database"
	"bondroom/models"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[QUIZ-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// StartQuizAttemptScheduler sweeps pending quiz attempts that outlived the
// configured window so an abandoned session cannot hold the single pending
// slot forever.
func StartQuizAttemptScheduler() {
	c := cron.New()

	// Hourly sweep
	c.AddFunc("0 * * * *", func() {
		SweepStaleQuizAttempts(database.Database.Db)
	})

	c.Start()
	logScheduler("Quiz attempt scheduler started.")
}

// SweepStaleQuizAttempts fails every pending attempt older than the
// configured age and resyncs the affected mentors' training status.
func SweepStaleQuizAttempts(db *gorm.DB) {
	maxAgeHours := 24
	if config.AppConfig != nil && config.AppConfig.QuizAttemptMaxAgeHours > 0 {
		maxAgeHours = config.AppConfig.QuizAttemptMaxAgeHours
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeHours) * time.Hour)

	var attempts []models.MentorQuizAttempt
	if err := db.Where("status = ? AND started_at < ?", models.AttemptPending, cutoff).
		Find(&attempts).Error; err != nil {
		logScheduler("Error fetching stale attempts: " + err.Error())
		return
	}

	for i := range attempts {
		attempt := &attempts[i]
		now := time.Now()
		attempt.Score = 0
		attempt.Status = models.AttemptFailed
		attempt.SubmittedAt = &now
		if err := db.Save(attempt).Error; err != nil {
			logScheduler("Error failing stale attempt: " + err.Error())
			continue
		}

		states, err := LoadModuleStates(db, attempt.MentorID)
		if err == nil {
			SyncTrainingStatus(db, attempt.MentorID, states)
		}
		logScheduler("Stale pending attempt " + attempt.Reference + " marked failed")
	}
}

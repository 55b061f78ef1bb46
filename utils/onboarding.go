package utils

import (
	"bondroom/models"
	"errors"
	"log"

	"gorm.io/gorm"
)

// GetOrCreateOnboarding returns the mentor's onboarding row, creating it with
// defaults on first touch. Applications reaching this core are already
// accepted, so application_status starts completed.
func GetOrCreateOnboarding(db *gorm.DB, mentorID uint) (*models.MentorOnboardingStatus, error) {
	var onboarding models.MentorOnboardingStatus
	err := db.Where("mentor_id = ?", mentorID).First(&onboarding).Error
	if err == nil {
		return &onboarding, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	onboarding = models.MentorOnboardingStatus{
		MentorID:            mentorID,
		ApplicationStatus:   models.StatusCompleted,
		IdentityStatus:      models.StatusPending,
		ContactStatus:       models.StatusPending,
		TrainingStatus:      models.StatusPending,
		FinalApprovalStatus: models.StatusPending,
	}
	onboarding.CurrentStatus = models.DeriveCurrentStatus(
		onboarding.ApplicationStatus,
		onboarding.IdentityStatus,
		onboarding.ContactStatus,
		onboarding.TrainingStatus,
	)
	if err := db.Create(&onboarding).Error; err != nil {
		return nil, err
	}
	return &onboarding, nil
}

// HasPassedQuiz reports whether the mentor holds any passed quiz attempt.
func HasPassedQuiz(db *gorm.DB, mentorID uint) bool {
	var count int64
	db.Model(&models.MentorQuizAttempt{}).
		Where("mentor_id = ? AND status = ?", mentorID, models.AttemptPassed).
		Count(&count)
	return count > 0
}

// SyncTrainingStatus recomputes the training sub-status from the effective
// module states plus the quiz outcome and persists it together with the
// derived current status. Every mutating operation calls this explicitly.
func SyncTrainingStatus(db *gorm.DB, mentorID uint, states []ModuleState) (*models.MentorOnboardingStatus, error) {
	onboarding, err := GetOrCreateOnboarding(db, mentorID)
	if err != nil {
		return nil, err
	}

	next := DeriveTrainingStatus(states, HasPassedQuiz(db, mentorID))
	if onboarding.TrainingStatus == next {
		return onboarding, nil
	}

	onboarding.TrainingStatus = next
	if err := RecomputeCurrentStatus(db, onboarding); err != nil {
		return nil, err
	}
	return onboarding, nil
}

// RecomputeCurrentStatus derives current_status from the stage statuses and
// persists the row. current_status is never written outside this function.
func RecomputeCurrentStatus(db *gorm.DB, onboarding *models.MentorOnboardingStatus) error {
	previous := onboarding.CurrentStatus
	onboarding.CurrentStatus = models.DeriveCurrentStatus(
		onboarding.ApplicationStatus,
		onboarding.IdentityStatus,
		onboarding.ContactStatus,
		onboarding.TrainingStatus,
	)
	if err := db.Save(onboarding).Error; err != nil {
		return err
	}

	if previous != models.StatusCompleted && onboarding.CurrentStatus == models.StatusCompleted {
		notifyCertificationCompleted(db, onboarding.MentorID)
	}
	return nil
}

func notifyCertificationCompleted(db *gorm.DB, mentorID uint) {
	var mentor models.Mentor
	if err := db.Where("id = ? AND is_deleted = ?", mentorID, false).First(&mentor).Error; err != nil {
		log.Printf("Certification completed for mentor %d but mentor lookup failed: %v", mentorID, err)
		return
	}
	go SendCertificationCompletedEmail(mentor.Email, mentor.Name)
}

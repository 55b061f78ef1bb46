package models

import (
	"gorm.io/gorm"
)

// Onboarding stage statuses, shared by every sub-status and the derived
// current status.
const (
	StatusPending   = "pending"
	StatusInReview  = "in_review"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// MentorOnboardingStatus aggregates one mentor's certification signals.
// CurrentStatus is always derived via DeriveCurrentStatus and never written
// independently.
type MentorOnboardingStatus struct {
	gorm.Model
	MentorID             uint   `json:"mentor_id" gorm:"uniqueIndex;not null"`
	ApplicationStatus    string `json:"application_status" gorm:"default:'completed'"`
	IdentityStatus       string `json:"identity_status" gorm:"default:'pending'"`
	ContactStatus        string `json:"contact_status" gorm:"default:'pending'"`
	TrainingStatus       string `json:"training_status" gorm:"default:'pending'"`
	FinalApprovalStatus  string `json:"final_approval_status" gorm:"default:'pending'"`
	FinalRejectionReason string `json:"final_rejection_reason" gorm:"default:''"`
	CurrentStatus        string `json:"current_status" gorm:"default:'in_review'"`
}

// DeriveCurrentStatus folds the four stage statuses into one overall status.
// A rejection anywhere dominates. Identity plus training completed
// short-circuits to completed regardless of contact: certification is done
// once the mentor is verified and trained. The final approval signal is
// recorded on the row but does not gate the derived status.
func DeriveCurrentStatus(application, identity, contact, training string) string {
	stages := []string{application, identity, contact, training}
	for _, stage := range stages {
		if stage == StatusRejected {
			return StatusRejected
		}
	}
	if identity == StatusCompleted && training == StatusCompleted {
		return StatusCompleted
	}
	allPending := true
	allCompleted := true
	for _, stage := range stages {
		if stage != StatusPending {
			allPending = false
		}
		if stage != StatusCompleted {
			allCompleted = false
		}
	}
	if allPending {
		return StatusPending
	}
	if allCompleted {
		return StatusCompleted
	}
	return StatusInReview
}

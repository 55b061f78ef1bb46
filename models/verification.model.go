package models

import (
	"time"

	"gorm.io/gorm"
)

// Identity verification review states used by the document-intake service.
const (
	IdentityVerified = "verified"
)

// MentorIdentityVerification is the document-review record produced by the
// identity-intake service. This core reads it and maps admin decisions onto
// the onboarding identity status; the upload flow itself lives upstream.
type MentorIdentityVerification struct {
	gorm.Model
	MentorID          uint       `json:"mentor_id" gorm:"uniqueIndex;not null"`
	AadhaarFront      string     `json:"aadhaar_front" gorm:"default:''"`
	AadhaarBack       string     `json:"aadhaar_back" gorm:"default:''"`
	PassportOrLicense string     `json:"passport_or_license" gorm:"default:''"`
	AdditionalNotes   string     `json:"additional_notes" gorm:"default:''"`
	Status            string     `json:"status" gorm:"default:'pending'"` // pending, in_review, verified, rejected
	SubmittedAt       time.Time  `json:"submitted_at"`
	ReviewedAt        *time.Time `json:"reviewed_at"`
	ReviewerNotes     string     `json:"reviewer_notes" gorm:"default:''"`
}

// MentorContactVerification is the OTP-verification record owned by the
// contact service. Surfaced read-only in the onboarding view.
type MentorContactVerification struct {
	gorm.Model
	MentorID        uint       `json:"mentor_id" gorm:"uniqueIndex;not null"`
	EmailVerified   bool       `json:"email_verified" gorm:"default:false"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	PhoneVerified   bool       `json:"phone_verified" gorm:"default:false"`
	PhoneVerifiedAt *time.Time `json:"phone_verified_at"`
}

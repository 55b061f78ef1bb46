package controllers

import (
	"bondroom/database"
	"bondroom/middleware"
	"bondroom/models"
	"bondroom/utils"
	"strings"
	"time"

	trainingControllers "bondroom/controllers/training"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func identityPayload(db *gorm.DB, mentorID uint) fiber.Map {
	var identity models.MentorIdentityVerification
	if err := db.Where("mentor_id = ?", mentorID).First(&identity).Error; err != nil {
		return nil
	}
	return fiber.Map{
		"id":                  identity.ID,
		"status":              identity.Status,
		"aadhaar_front":       identity.AadhaarFront,
		"aadhaar_back":        identity.AadhaarBack,
		"passport_or_license": identity.PassportOrLicense,
		"additional_notes":    identity.AdditionalNotes,
		"submitted_at":        identity.SubmittedAt,
		"reviewed_at":         identity.ReviewedAt,
		"reviewer_notes":      identity.ReviewerNotes,
	}
}

func contactPayload(db *gorm.DB, mentorID uint) fiber.Map {
	var contact models.MentorContactVerification
	if err := db.Where("mentor_id = ?", mentorID).First(&contact).Error; err != nil {
		return nil
	}
	return fiber.Map{
		"id":                contact.ID,
		"email_verified":    contact.EmailVerified,
		"email_verified_at": contact.EmailVerifiedAt,
		"phone_verified":    contact.PhoneVerified,
		"phone_verified_at": contact.PhoneVerifiedAt,
	}
}

func statusPayload(onboarding *models.MentorOnboardingStatus) fiber.Map {
	return fiber.Map{
		"mentor_id":              onboarding.MentorID,
		"application_status":     onboarding.ApplicationStatus,
		"identity_status":        onboarding.IdentityStatus,
		"contact_status":         onboarding.ContactStatus,
		"training_status":        onboarding.TrainingStatus,
		"final_approval_status":  onboarding.FinalApprovalStatus,
		"final_rejection_reason": onboarding.FinalRejectionReason,
		"current_status":         onboarding.CurrentStatus,
		"updated_at":             onboarding.UpdatedAt,
	}
}

// GetMentorOnboarding is the aggregated certification view: stage statuses,
// verification records, effective module states and the quiz summary.
func GetMentorOnboarding(c *fiber.Ctx) error {
	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid mentor id!", nil)
	}

	role, _ := c.Locals("role").(string)
	if role == middleware.RoleMentor {
		selfID, _ := c.Locals("mentorId").(uint)
		if selfID != uint(targetID) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only view your own onboarding!", nil)
		}
	}

	db := database.Database.Db
	var mentor models.Mentor
	if err := db.Where("id = ? AND is_deleted = ?", targetID, false).First(&mentor).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Mentor not found!", nil)
	}

	states, loadErr := utils.LoadModuleStates(db, mentor.ID)
	if loadErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load training modules!", nil)
	}
	onboarding, syncErr := utils.SyncTrainingStatus(db, mentor.ID, states)
	if syncErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Onboarding status fetched successfully!", fiber.Map{
		"status":                statusPayload(onboarding),
		"identity_verification": identityPayload(db, mentor.ID),
		"contact_verification":  contactPayload(db, mentor.ID),
		"training_modules":      trainingControllers.BuildModulePayload(states),
		"training_quiz":         trainingControllers.BuildQuizSummary(db, mentor.ID),
	})
}

// toOnboardingIdentityStatus maps a document-review decision onto the
// onboarding identity stage.
func toOnboardingIdentityStatus(identityDecision, fallback string) string {
	switch identityDecision {
	case "":
		return fallback
	case models.IdentityVerified:
		return models.StatusCompleted
	case models.StatusRejected:
		return models.StatusRejected
	case models.StatusInReview:
		return models.StatusInReview
	default:
		return models.StatusPending
	}
}

// AdminDecision applies an admin review to a mentor's onboarding: identity
// verdict, optional training override and the final approval signal. A
// training override to completed is downgraded to in_review while the quiz
// is unpassed.
func AdminDecision(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	if role != middleware.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid mentor id!", nil)
	}

	reqData, ok := c.Locals("validatedDecision").(*struct {
		IdentityDecision     string `json:"identity_decision"`
		TrainingStatus       string `json:"training_status"`
		FinalApprovalStatus  string `json:"final_approval_status"`
		FinalRejectionReason string `json:"final_rejection_reason"`
		ReviewerNotes        string `json:"reviewer_notes"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var mentor models.Mentor
	if err := db.Where("id = ? AND is_deleted = ?", targetID, false).First(&mentor).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Mentor not found!", nil)
	}

	onboarding, obErr := utils.GetOrCreateOnboarding(db, mentor.ID)
	if obErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load onboarding status!", nil)
	}

	reviewerNotes := strings.TrimSpace(reqData.ReviewerNotes)
	if reqData.IdentityDecision != "" {
		var identity models.MentorIdentityVerification
		if err := db.Where("mentor_id = ?", mentor.ID).First(&identity).Error; err == nil {
			now := time.Now()
			identity.Status = reqData.IdentityDecision
			identity.ReviewedAt = &now
			if reviewerNotes != "" {
				identity.ReviewerNotes = reviewerNotes
			}
			if err := db.Save(&identity).Error; err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record identity decision!", nil)
			}
		}
	}

	onboarding.IdentityStatus = toOnboardingIdentityStatus(reqData.IdentityDecision, onboarding.IdentityStatus)

	if reqData.TrainingStatus != "" {
		nextTraining := reqData.TrainingStatus
		if nextTraining == models.StatusCompleted && !utils.HasPassedQuiz(db, mentor.ID) {
			nextTraining = models.StatusInReview
		}
		onboarding.TrainingStatus = nextTraining
	}

	if reqData.FinalApprovalStatus != "" {
		onboarding.FinalApprovalStatus = reqData.FinalApprovalStatus
	}
	onboarding.FinalRejectionReason = strings.TrimSpace(reqData.FinalRejectionReason)

	if err := utils.RecomputeCurrentStatus(db, onboarding); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
	}

	// The training fold still owns the training stage: an override only
	// sticks until the next recompute from module and quiz state.
	states, loadErr := utils.LoadModuleStates(db, mentor.ID)
	if loadErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load training modules!", nil)
	}
	onboarding, syncErr := utils.SyncTrainingStatus(db, mentor.ID, states)
	if syncErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Admin decision recorded!", fiber.Map{
		"status":                statusPayload(onboarding),
		"identity_verification": identityPayload(db, mentor.ID),
		"training_modules":      trainingControllers.BuildModulePayload(states),
		"training_quiz":         trainingControllers.BuildQuizSummary(db, mentor.ID),
	})
}

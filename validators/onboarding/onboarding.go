package onboardingValidator

import (
	"bondroom/middleware"
	"bondroom/models"

	"github.com/gofiber/fiber/v2"
)

func isStageStatus(value string) bool {
	switch value {
	case models.StatusPending, models.StatusInReview, models.StatusCompleted, models.StatusRejected:
		return true
	}
	return false
}

func AdminDecision() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			IdentityDecision     string `json:"identity_decision"`
			TrainingStatus       string `json:"training_status"`
			FinalApprovalStatus  string `json:"final_approval_status"`
			FinalRejectionReason string `json:"final_rejection_reason"`
			ReviewerNotes        string `json:"reviewer_notes"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate IdentityDecision
		switch reqData.IdentityDecision {
		case "", models.StatusPending, models.StatusInReview, models.IdentityVerified, models.StatusRejected:
		default:
			errors["identity_decision"] = "Identity decision must be pending, in_review, verified or rejected!"
		}

		// Validate TrainingStatus
		if reqData.TrainingStatus != "" && !isStageStatus(reqData.TrainingStatus) {
			errors["training_status"] = "Training status must be pending, in_review, completed or rejected!"
		}

		// Validate FinalApprovalStatus
		if reqData.FinalApprovalStatus != "" && !isStageStatus(reqData.FinalApprovalStatus) {
			errors["final_approval_status"] = "Final approval status must be pending, in_review, completed or rejected!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDecision", reqData)
		return c.Next()
	}
}

package mentorRoutes

import (
	controllers "bondroom/controllers/onboarding"
	"bondroom/middleware"
	validators "bondroom/validators/onboarding"

	"github.com/gofiber/fiber/v2"
)

// SetupMentorRoutes sets up the onboarding aggregate and admin review routes
func SetupMentorRoutes(app *fiber.App) {
	mentorGroup := app.Group("/mentors")

	mentorGroup.Get("/:id/onboarding", middleware.JWTMiddleware, controllers.GetMentorOnboarding)
	mentorGroup.Post("/:id/admin-decision", middleware.JWTMiddleware, validators.AdminDecision(), controllers.AdminDecision)
}

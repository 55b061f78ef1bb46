package trainingRoutes

import (
	controllers "bondroom/controllers/training"
	"bondroom/middleware"
	validators "bondroom/validators/training"

	"github.com/gofiber/fiber/v2"
)

// SetupTrainingRoutes sets up the mentor-facing certification track routes
func SetupTrainingRoutes(app *fiber.App) {
	trainingGroup := app.Group("/training-modules")

	// Module listing with per-mentor unlock state
	trainingGroup.Get("/", middleware.JWTMiddleware, controllers.ListTrainingModules)

	// Quiz lifecycle. Registered before the :id routes so "quiz" is never
	// taken for a module id.
	trainingGroup.Get("/quiz", middleware.JWTMiddleware, controllers.QuizStatus)
	trainingGroup.Post("/quiz/start", middleware.JWTMiddleware, validators.StartQuiz(), controllers.StartQuiz)
	trainingGroup.Post("/quiz/submit", middleware.JWTMiddleware, validators.SubmitQuiz(), controllers.SubmitQuiz)
	trainingGroup.Post("/quiz/abandon", middleware.JWTMiddleware, validators.AbandonQuiz(), controllers.AbandonQuiz)

	// Watch events
	trainingGroup.Post("/:id/watch-video", middleware.JWTMiddleware, validators.WatchVideo(), controllers.WatchVideo)
}

// SetupAdminTrainingRoutes sets up the admin module management routes
func SetupAdminTrainingRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/training-module")

	adminGroup.Post("/create", middleware.JWTMiddleware, validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Put("/:id", middleware.JWTMiddleware, validators.UpdateModule(), controllers.AdminUpdateModule)
	adminGroup.Post("/:id/deactivate", middleware.JWTMiddleware, controllers.AdminDeactivateModule)
	adminGroup.Get("/list", middleware.JWTMiddleware, controllers.AdminListModules)
}

package trainingValidator

import (
	"strings"

	"bondroom/middleware"

	"github.com/gofiber/fiber/v2"
)

func WatchVideo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			VideoIndex int  `json:"video_index"`
			MentorID   uint `json:"mentor_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate VideoIndex
		if reqData.VideoIndex != 1 && reqData.VideoIndex != 2 {
			errors["video_index"] = "Video index must be 1 or 2!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedWatch", reqData)
		return c.Next()
	}
}

// StartQuiz accepts an empty body. Admins may name a mentor explicitly.
func StartQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			MentorID uint `json:"mentor_id"`
		})

		// Body is optional here, a bare POST starts the caller's own quiz.
		_ = c.BodyParser(reqData)

		c.Locals("validatedQuizStart", reqData)
		return c.Next()
	}
}

func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		aux := new(struct {
			AttemptID       uint           `json:"attempt_id"`
			MentorID        uint           `json:"mentor_id"`
			SelectedAnswers *[]interface{} `json:"selected_answers"`
		})

		if err := c.BodyParser(aux); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate AttemptID
		if aux.AttemptID == 0 {
			errors["attempt_id"] = "Attempt id is required!"
		}

		// Validate SelectedAnswers
		if aux.SelectedAnswers == nil {
			errors["selected_answers"] = "Selected answers must be a list!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		reqData := &struct {
			AttemptID       uint          `json:"attempt_id"`
			MentorID        uint          `json:"mentor_id"`
			SelectedAnswers []interface{} `json:"selected_answers"`
		}{
			AttemptID:       aux.AttemptID,
			MentorID:        aux.MentorID,
			SelectedAnswers: *aux.SelectedAnswers,
		}

		c.Locals("validatedQuizSubmit", reqData)
		return c.Next()
	}
}

func AbandonQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			AttemptID uint `json:"attempt_id"`
			MentorID  uint `json:"mentor_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate AttemptID
		if reqData.AttemptID == 0 {
			errors["attempt_id"] = "Attempt id is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizAbandon", reqData)
		return c.Next()
	}
}

func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title            string   `json:"title"`
			Description      string   `json:"description"`
			OrderIndex       int      `json:"order_index"`
			LessonOutline    []string `json:"lesson_outline"`
			VideoURL1        string   `json:"video_url_1"`
			VideoURL2        string   `json:"video_url_2"`
			EstimatedMinutes int      `json:"estimated_minutes"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Title
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Description
		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		}

		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title            string   `json:"title"`
			Description      string   `json:"description"`
			OrderIndex       int      `json:"order_index"`
			LessonOutline    []string `json:"lesson_outline"`
			VideoURL1        string   `json:"video_url_1"`
			VideoURL2        string   `json:"video_url_2"`
			EstimatedMinutes int      `json:"estimated_minutes"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModuleUpdate", reqData)
		return c.Next()
	}
}

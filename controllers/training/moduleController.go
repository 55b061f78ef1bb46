package controllers

import (
	"bondroom/database"
	"bondroom/middleware"
	"bondroom/models"
	"bondroom/utils"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// resolveMentor resolves which mentor the request acts on. Mentors always act
// on themselves; admins name a target via an explicit body id or the
// mentor_id query param.
func resolveMentor(c *fiber.Ctx, explicitID uint) (*models.Mentor, bool, error) {
	role, _ := c.Locals("role").(string)

	var mentorID uint
	switch role {
	case middleware.RoleMentor:
		mentorID, _ = c.Locals("mentorId").(uint)
	case middleware.RoleAdmin:
		mentorID = explicitID
		if mentorID == 0 {
			if parsed, err := strconv.Atoi(c.Query("mentor_id")); err == nil && parsed > 0 {
				mentorID = uint(parsed)
			}
		}
	default:
		return nil, false, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only mentor or admin can access training modules!", nil)
	}

	if mentorID == 0 {
		return nil, false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Mentor is required for this action!", nil)
	}

	var mentor models.Mentor
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", mentorID, false).First(&mentor).Error; err != nil {
		return nil, false, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Mentor not found!", nil)
	}
	return &mentor, true, nil
}

// buildVideoPayload derives the two video entries from the lesson outline.
func buildVideoPayload(module models.TrainingModule) []fiber.Map {
	outline := module.Outline()
	firstTitle := "Module walkthrough video 1"
	if len(outline) >= 1 {
		firstTitle = outline[0]
	}
	secondTitle := "Module walkthrough video 2"
	if len(outline) >= 2 {
		secondTitle = outline[1]
	}
	return []fiber.Map{
		{"key": "video-1", "title": firstTitle, "url": strings.TrimSpace(module.VideoURL1)},
		{"key": "video-2", "title": secondTitle, "url": strings.TrimSpace(module.VideoURL2)},
	}
}

// BuildModulePayload merges effective module states into client payloads.
// The onboarding view embeds the same shape.
func BuildModulePayload(states []utils.ModuleState) []fiber.Map {
	payload := make([]fiber.Map, 0, len(states))
	for _, state := range states {
		videos := buildVideoPayload(state.Module)
		videoProgress := make([]fiber.Map, 0, len(videos))
		for _, video := range videos {
			watched := state.Status == models.ProgressCompleted ||
				(state.Status == models.ProgressInProgress && video["key"] == "video-1" && state.ProgressPercent >= 50)
			entry := fiber.Map{"watched": watched}
			for key, value := range video {
				entry[key] = value
			}
			videoProgress = append(videoProgress, entry)
		}

		outline := state.Module.Outline()
		if outline == nil {
			outline = []string{}
		}

		payload = append(payload, fiber.Map{
			"id":                state.Module.ID,
			"title":             state.Module.Title,
			"description":       state.Module.Description,
			"order_index":       state.Module.OrderIndex,
			"estimated_minutes": state.Module.EstimatedMinutes,
			"lesson_outline":    outline,
			"status":            state.Status,
			"training_status":   state.Status,
			"progress_percent":  state.ProgressPercent,
			"completed_at":      state.CompletedAt,
			"videos":            videos,
			"video_progress":    videoProgress,
		})
	}
	return payload
}

// ListTrainingModules returns the active modules with the mentor's effective
// state merged in, and resyncs the onboarding training status.
func ListTrainingModules(c *fiber.Ctx) error {
	mentor, ok, err := resolveMentor(c, 0)
	if !ok {
		return err
	}

	db := database.Database.Db
	states, err := utils.LoadModuleStates(db, mentor.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load training modules!", nil)
	}
	if _, err := utils.SyncTrainingStatus(db, mentor.ID, states); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Training modules fetched successfully!", fiber.Map{
		"modules": BuildModulePayload(states),
	})
}

// WatchVideo records a watch event for one of the module's two videos.
// Video 1 moves progress to 50, video 2 to 100; video 2 requires video 1
// first and locked modules reject the event outright.
func WatchVideo(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedWatch").(*struct {
		VideoIndex int  `json:"video_index"`
		MentorID   uint `json:"mentor_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	moduleID, err := c.ParamsInt("id")
	if err != nil || moduleID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module id!", nil)
	}

	mentor, ok, resp := resolveMentor(c, reqData.MentorID)
	if !ok {
		return resp
	}

	db := database.Database.Db
	states, err := utils.LoadModuleStates(db, mentor.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load training modules!", nil)
	}

	stateIndex := -1
	for i, state := range states {
		if state.Module.ID == uint(moduleID) {
			stateIndex = i
			break
		}
	}
	if stateIndex == -1 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}
	if states[stateIndex].Status == models.ProgressLocked {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Complete previous modules first!", nil)
	}

	// Create the progress row lazily on the first watch event.
	var progress models.MentorTrainingProgress
	err = db.Where("mentor_id = ? AND module_id = ?", mentor.ID, uint(moduleID)).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.MentorTrainingProgress{
			MentorID: mentor.ID,
			ModuleID: uint(moduleID),
			Status:   models.ProgressInProgress,
		}
		if err := db.Create(&progress).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress!", nil)
		}
	} else if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress!", nil)
	}

	currentPercent := 0
	if progress.ProgressPercent >= 100 {
		currentPercent = 100
	} else if progress.ProgressPercent >= 50 {
		currentPercent = 50
	}

	var nextPercent int
	if reqData.VideoIndex == 1 {
		nextPercent = currentPercent
		if nextPercent < 50 {
			nextPercent = 50
		}
	} else {
		if currentPercent < 50 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Complete video 1 before marking video 2!", nil)
		}
		nextPercent = 100
	}

	now := time.Now()
	progress.ProgressPercent = nextPercent
	progress.LastActivityAt = &now
	if nextPercent >= 100 {
		progress.Status = models.ProgressCompleted
		progress.CompletedAt = &now
	} else {
		progress.Status = models.ProgressInProgress
		progress.CompletedAt = nil
	}
	if err := db.Save(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress!", nil)
	}

	states, err = utils.LoadModuleStates(db, mentor.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load training modules!", nil)
	}
	if _, err := utils.SyncTrainingStatus(db, mentor.ID, states); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update onboarding status!", nil)
	}

	payload := BuildModulePayload(states)
	var moduleState fiber.Map
	for _, entry := range payload {
		if entry["id"] == uint(moduleID) {
			moduleState = entry
			break
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Watch progress recorded!", fiber.Map{
		"module":  moduleState,
		"modules": payload,
	})
}

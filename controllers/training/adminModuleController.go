package controllers

import (
	"bondroom/database"
	"bondroom/middleware"
	"bondroom/models"

	"github.com/gofiber/fiber/v2"
)

func requireAdmin(c *fiber.Ctx) (*models.Mentor, bool, error) {
	mentorId, ok := c.Locals("mentorId").(uint)
	if !ok {
		return nil, false, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var admin models.Mentor
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", mentorId, false).First(&admin).Error; err != nil {
		return nil, false, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if admin.Role != middleware.RoleAdmin {
		return nil, false, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	return &admin, true, nil
}

// AdminCreateModule creates a new training module
func AdminCreateModule(c *fiber.Ctx) error {
	_, ok, err := requireAdmin(c)
	if !ok {
		return err
	}

	reqData, ok := c.Locals("validatedModule").(*struct {
		Title            string   `json:"title"`
		Description      string   `json:"description"`
		OrderIndex       int      `json:"order_index"`
		LessonOutline    []string `json:"lesson_outline"`
		VideoURL1        string   `json:"video_url_1"`
		VideoURL2        string   `json:"video_url_2"`
		EstimatedMinutes int      `json:"estimated_minutes"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Get the next order index if not provided
	orderIndex := reqData.OrderIndex
	if orderIndex == 0 {
		var maxOrder int
		database.Database.Db.Model(&models.TrainingModule{}).Where("is_deleted = ?", false).Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)
		orderIndex = maxOrder + 1
	}

	module := models.TrainingModule{
		Title:            reqData.Title,
		Description:      reqData.Description,
		OrderIndex:       orderIndex,
		VideoURL1:        reqData.VideoURL1,
		VideoURL2:        reqData.VideoURL2,
		EstimatedMinutes: reqData.EstimatedMinutes,
		IsActive:         true,
	}
	if err := module.SetOutline(reqData.LessonOutline); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson outline!", nil)
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminUpdateModule updates an existing training module
func AdminUpdateModule(c *fiber.Ctx) error {
	_, ok, err := requireAdmin(c)
	if !ok {
		return err
	}

	moduleID, err := c.ParamsInt("id")
	if err != nil || moduleID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module id!", nil)
	}

	var module models.TrainingModule
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData, ok := c.Locals("validatedModuleUpdate").(*struct {
		Title            string   `json:"title"`
		Description      string   `json:"description"`
		OrderIndex       int      `json:"order_index"`
		LessonOutline    []string `json:"lesson_outline"`
		VideoURL1        string   `json:"video_url_1"`
		VideoURL2        string   `json:"video_url_2"`
		EstimatedMinutes int      `json:"estimated_minutes"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		module.Title = reqData.Title
	}
	if reqData.Description != "" {
		module.Description = reqData.Description
	}
	if reqData.OrderIndex > 0 {
		module.OrderIndex = reqData.OrderIndex
	}
	if reqData.VideoURL1 != "" {
		module.VideoURL1 = reqData.VideoURL1
	}
	if reqData.VideoURL2 != "" {
		module.VideoURL2 = reqData.VideoURL2
	}
	if reqData.EstimatedMinutes > 0 {
		module.EstimatedMinutes = reqData.EstimatedMinutes
	}
	if reqData.LessonOutline != nil {
		if err := module.SetOutline(reqData.LessonOutline); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson outline!", nil)
		}
	}

	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// AdminDeactivateModule takes a module out of the certification track without
// deleting mentor progress rows
func AdminDeactivateModule(c *fiber.Ctx) error {
	_, ok, err := requireAdmin(c)
	if !ok {
		return err
	}

	moduleID, err := c.ParamsInt("id")
	if err != nil || moduleID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module id!", nil)
	}

	var module models.TrainingModule
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	module.IsActive = false
	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to deactivate module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deactivated successfully!", nil)
}

// AdminListModules lists all training modules with completion counts
func AdminListModules(c *fiber.Ctx) error {
	_, ok, err := requireAdmin(c)
	if !ok {
		return err
	}

	var modules []models.TrainingModule
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("order_index asc, id asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	type ModuleWithCount struct {
		models.TrainingModule
		CompletedCount int64 `json:"completed_count"`
	}

	modulesWithCount := make([]ModuleWithCount, len(modules))
	for i, mod := range modules {
		var count int64
		database.Database.Db.Model(&models.MentorTrainingProgress{}).Where("module_id = ? AND status = ?", mod.ID, models.ProgressCompleted).Count(&count)
		modulesWithCount[i] = ModuleWithCount{
			TrainingModule: mod,
			CompletedCount: count,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", fiber.Map{
		"modules": modulesWithCount,
	})
}

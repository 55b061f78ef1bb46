package utils

import (
	"bondroom/models"
	"time"

	"gorm.io/gorm"
)

// ModuleState is the effective per-mentor classification of one training
// module: stored progress folded with predecessor completion.
type ModuleState struct {
	Module          models.TrainingModule
	Status          string // locked, in_progress, completed
	ProgressPercent int
	CompletedAt     *time.Time
}

// BuildModuleStates classifies every module for a mentor. A module is
// completed iff its stored progress says so; it is in_progress only while
// every earlier module is completed; otherwise it stays locked.
func BuildModuleStates(modules []models.TrainingModule, progress map[uint]models.MentorTrainingProgress) []ModuleState {
	states := make([]ModuleState, 0, len(modules))
	previousCompleted := true

	for _, module := range modules {
		row, tracked := progress[module.ID]
		isCompleted := tracked && (row.Status == models.ProgressCompleted || row.ProgressPercent >= 100)

		state := ModuleState{Module: module}
		switch {
		case isCompleted:
			state.Status = models.ProgressCompleted
			state.ProgressPercent = 100
			state.CompletedAt = row.CompletedAt
		case previousCompleted:
			state.Status = models.ProgressInProgress
			if tracked && row.ProgressPercent >= 50 {
				state.ProgressPercent = 50
			}
		default:
			state.Status = models.ProgressLocked
		}

		states = append(states, state)
		previousCompleted = previousCompleted && state.Status == models.ProgressCompleted
	}

	return states
}

// LoadModuleStates fetches the active modules in order plus the mentor's
// progress rows and folds them into effective states.
func LoadModuleStates(db *gorm.DB, mentorID uint) ([]ModuleState, error) {
	var modules []models.TrainingModule
	if err := db.Where("is_active = ? AND is_deleted = ?", true, false).
		Order("order_index asc, id asc").Find(&modules).Error; err != nil {
		return nil, err
	}

	moduleIDs := make([]uint, len(modules))
	for i, module := range modules {
		moduleIDs[i] = module.ID
	}

	var rows []models.MentorTrainingProgress
	if len(moduleIDs) > 0 {
		if err := db.Where("mentor_id = ? AND module_id IN ?", mentorID, moduleIDs).
			Find(&rows).Error; err != nil {
			return nil, err
		}
	}

	progress := make(map[uint]models.MentorTrainingProgress, len(rows))
	for _, row := range rows {
		progress[row.ModuleID] = row
	}

	return BuildModuleStates(modules, progress), nil
}

// AllModulesCompleted reports whether every module is effectively completed.
// An empty module list never counts as completed.
func AllModulesCompleted(states []ModuleState) bool {
	if len(states) == 0 {
		return false
	}
	for _, state := range states {
		if state.Status != models.ProgressCompleted {
			return false
		}
	}
	return true
}

// DeriveTrainingStatus maps the module states plus the quiz outcome onto the
// onboarding training sub-status. Completing every module without passing the
// quiz parks the mentor in review.
func DeriveTrainingStatus(states []ModuleState, quizPassed bool) string {
	if len(states) == 0 {
		return models.StatusPending
	}
	if AllModulesCompleted(states) {
		if quizPassed {
			return models.StatusCompleted
		}
		return models.StatusInReview
	}
	for _, state := range states {
		if state.ProgressPercent > 0 {
			return models.StatusInReview
		}
	}
	return models.StatusPending
}

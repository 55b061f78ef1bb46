package models

import (
	"time"

	"gorm.io/gorm"
)

// Effective per-mentor module states. "locked" is also the stored default for
// rows created before the first watch event.
const (
	ProgressLocked     = "locked"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// MentorTrainingProgress tracks one mentor's watch progress through one
// module. Created lazily on the first watch event; never deleted.
type MentorTrainingProgress struct {
	gorm.Model
	MentorID        uint       `json:"mentor_id" gorm:"uniqueIndex:idx_mentor_module;not null"`
	ModuleID        uint       `json:"module_id" gorm:"uniqueIndex:idx_mentor_module;not null"`
	Status          string     `json:"status" gorm:"default:'locked'"`
	ProgressPercent int        `json:"progress_percent" gorm:"default:0"` // 0, 50 or 100
	CompletedAt     *time.Time `json:"completed_at"`
	LastActivityAt  *time.Time `json:"last_activity_at"`
}

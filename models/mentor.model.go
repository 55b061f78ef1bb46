package models

import (
	"time"

	"gorm.io/gorm"
)

// Mentor is the certifying account this workflow gates. Registration and
// profile management live in the upstream service; this core only reads it.
type Mentor struct {
	gorm.Model
	Name      string `gorm:"default:''"`
	Email     string `gorm:"unique;not null"`
	Mobile    string `gorm:"default:''"`
	Role      string `gorm:"default:'MENTOR'"`
	LastLogin time.Time
	IsDeleted bool `gorm:"default:false"`
}

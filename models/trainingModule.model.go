package models

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrainingModule is one ordered unit of required mentor training with two
// walkthrough videos. Created and edited by admins; immutable from the
// mentor's side.
type TrainingModule struct {
	gorm.Model
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	OrderIndex       int            `json:"order_index" gorm:"default:1"`
	LessonOutline    datatypes.JSON `json:"lesson_outline"` // ordered list of topic strings
	VideoURL1        string         `json:"video_url_1" gorm:"default:''"`
	VideoURL2        string         `json:"video_url_2" gorm:"default:''"`
	EstimatedMinutes int            `json:"estimated_minutes" gorm:"default:0"`
	IsActive         bool           `json:"is_active" gorm:"default:true"`
	IsDeleted        bool           `json:"-" gorm:"default:false"`
}

// Outline decodes the lesson outline column into trimmed, non-empty topics.
func (m *TrainingModule) Outline() []string {
	if len(m.LessonOutline) == 0 {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(m.LessonOutline, &raw); err != nil {
		return nil
	}
	outline := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			outline = append(outline, trimmed)
		}
	}
	return outline
}

// SetOutline encodes topics into the lesson outline column.
func (m *TrainingModule) SetOutline(topics []string) error {
	if topics == nil {
		topics = []string{}
	}
	encoded, err := json.Marshal(topics)
	if err != nil {
		return err
	}
	m.LessonOutline = datatypes.JSON(encoded)
	return nil
}

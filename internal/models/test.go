package models

import (
	"time"

	"gorm.io/datatypes"
)

// Test is a multiple-choice quiz with an availability window.
type Test struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Collection      string     `gorm:"size:128" json:"collection"`
	Category        string     `gorm:"size:128;index" json:"category"`
	Language        string     `gorm:"size:32;index" json:"language"`
	AvailableFrom   *time.Time `json:"available_from,omitempty"`
	AvailableTo     *time.Time `json:"available_to,omitempty"`
	DurationMinutes int        `gorm:"default:0" json:"duration_minutes"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	CreatedByID     uint       `json:"created_by_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Questions       []MCQ      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// MCQ is one multiple-choice question belonging to a test. CorrectOption
// indexes into Options and is stripped from student-facing reads.
type MCQ struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TestID        uint           `gorm:"not null;index" json:"test_id"`
	Question      string         `gorm:"type:text;not null" json:"question"`
	Options       datatypes.JSON `json:"options"`
	CorrectOption int            `gorm:"default:0" json:"-"`
	Points        int            `gorm:"default:1" json:"points"`
	Position      int            `gorm:"default:0" json:"position"`
}

// IsAvailableAt reports whether the test can be taken at the given time.
func (t Test) IsAvailableAt(now time.Time) bool {
	if !t.IsActive {
		return false
	}
	if t.AvailableFrom != nil && now.Before(*t.AvailableFrom) {
		return false
	}
	if t.AvailableTo != nil && now.After(*t.AvailableTo) {
		return false
	}
	return true
}

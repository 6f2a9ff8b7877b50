package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Problem difficulty levels. Level sessions are keyed by these values.
const (
	DifficultyLevel1 = "level1"
	DifficultyLevel2 = "level2"
	DifficultyLevel3 = "level3"
)

// DefaultTimeLimitMinutes is applied when a problem has no explicit budget.
const DefaultTimeLimitMinutes = 10

// IsValidDifficulty reports whether the value names a known difficulty level.
func IsValidDifficulty(value string) bool {
	switch value {
	case DifficultyLevel1, DifficultyLevel2, DifficultyLevel3:
		return true
	}
	return false
}

// Problem represents a coding exercise students can solve.
type Problem struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Title            string         `gorm:"size:255;not null" json:"title"`
	Description      string         `gorm:"type:text;not null" json:"description"`
	Difficulty       string         `gorm:"size:16;not null;index" json:"difficulty"`
	Category         string         `gorm:"size:128;not null;index" json:"category"`
	Subcategory      string         `gorm:"size:128" json:"subcategory"`
	Language         string         `gorm:"size:32;not null;index" json:"language"`
	Constraints      string         `gorm:"type:text" json:"constraints"`
	Examples         datatypes.JSON `json:"examples"`
	StarterCode      string         `gorm:"type:text" json:"starter_code"`
	Solution         string         `gorm:"type:text" json:"-"`
	TimeLimitMinutes int            `gorm:"default:0" json:"time_limit_minutes"`
	MemoryLimitMB    int            `gorm:"default:0" json:"memory_limit_mb"`
	Points           int            `gorm:"default:0" json:"points"`
	Tags             string         `gorm:"type:text" json:"tags"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedByID      uint           `json:"created_by_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	TestCases        []TestCase     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"test_cases,omitempty"`
}

// TestCase is one input/output pair a submission is graded against.
// Hidden cases are only ever loaded on the grading path.
type TestCase struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProblemID uint   `gorm:"not null;index" json:"problem_id"`
	Input     string `gorm:"type:text" json:"input"`
	Output    string `gorm:"type:text" json:"output"`
	IsHidden  bool   `gorm:"default:false" json:"is_hidden"`
	Position  int    `gorm:"default:0" json:"position"`
}

// BudgetMinutes returns the per-problem time budget, falling back to the
// default when the problem carries none.
func (p Problem) BudgetMinutes() int {
	if p.TimeLimitMinutes > 0 {
		return p.TimeLimitMinutes
	}
	return DefaultTimeLimitMinutes
}

// TagsSlice returns the tags as a slice of strings.
func (p Problem) TagsSlice() []string {
	if p.Tags == "" {
		return nil
	}

	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// VisibleTestCases returns the non-hidden cases for student-facing reads.
func (p Problem) VisibleTestCases() []TestCase {
	visible := make([]TestCase, 0, len(p.TestCases))
	for _, tc := range p.TestCases {
		if !tc.IsHidden {
			visible = append(visible, tc)
		}
	}
	return visible
}

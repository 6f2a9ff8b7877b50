package models

import "time"

// LevelSubmission statuses.
const (
	LevelStatusInProgress = "in_progress"
	LevelStatusCompleted  = "completed"
	LevelStatusSubmitted  = "submitted"
)

// LevelSubmission is one timed session covering every active problem that
// matches a (level, category, language) tuple for one user.
type LevelSubmission struct {
	ID                 uint                     `gorm:"primaryKey" json:"id"`
	UserID             uint                     `gorm:"not null;index" json:"user_id"`
	Level              string                   `gorm:"size:16;not null;index" json:"level"`
	Category           string                   `gorm:"size:128;not null" json:"category"`
	Language           string                   `gorm:"size:32;not null" json:"language"`
	Status             string                   `gorm:"size:16;not null" json:"status"`
	StartTime          time.Time                `json:"start_time"`
	SubmitTime         *time.Time               `json:"submit_time,omitempty"`
	TimeAllowedSec     int                      `gorm:"default:0" json:"time_allowed_sec"`
	TotalProblems      int                      `gorm:"default:0" json:"total_problems"`
	ProblemSubmissions []LevelProblemSubmission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"problem_submissions,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// LevelProblemSubmission links one per-problem submission into a session,
// preserving the order the client submitted in.
type LevelProblemSubmission struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	LevelSubmissionID uint       `gorm:"not null;index" json:"level_submission_id"`
	ProblemID         uint       `gorm:"not null" json:"problem_id"`
	SubmissionID      uint       `gorm:"not null" json:"submission_id"`
	Position          int        `gorm:"default:0" json:"position"`
	Problem           Problem    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"problem,omitempty"`
	Submission        Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submission,omitempty"`
}

// IsFinalized reports whether the session already carries per-problem
// submissions and may not be submitted again.
func (l LevelSubmission) IsFinalized() bool {
	return len(l.ProblemSubmissions) > 0
}

// TimeUsedSec computes elapsed session time capped at the allowance.
func (l LevelSubmission) TimeUsedSec(now time.Time) int {
	if now.Before(l.StartTime) {
		return 0
	}
	used := int(now.Sub(l.StartTime).Seconds())
	if l.TimeAllowedSec > 0 && used > l.TimeAllowedSec {
		return l.TimeAllowedSec
	}
	return used
}

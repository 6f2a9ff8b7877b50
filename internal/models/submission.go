package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission statuses reflecting the execution outcome.
const (
	SubmissionStatusPending           = "pending"
	SubmissionStatusAccepted          = "accepted"
	SubmissionStatusWrongAnswer       = "wrong_answer"
	SubmissionStatusRuntimeError      = "runtime_error"
	SubmissionStatusTimeLimitExceeded = "time_limit_exceeded"
)

// Coarse student-facing pass/fail signal, tracked independently of Status.
const (
	PassFailPassed       = "passed"
	PassFailFailed       = "failed"
	PassFailNotAttempted = "not_attempted"
)

// LevelInfo denormalises the level session context onto a submission.
type LevelInfo struct {
	Level    string `gorm:"size:16" json:"level"`
	Category string `gorm:"size:128" json:"category"`
	Language string `gorm:"size:32" json:"language"`
	Order    int    `json:"order"`
}

// Submission is one graded attempt at one problem by one user. It is
// immutable after creation; admins may delete it.
type Submission struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	UserID            uint              `gorm:"not null;index" json:"user_id"`
	ProblemID         uint              `gorm:"not null;index" json:"problem_id"`
	Code              string            `gorm:"type:text" json:"code"`
	Language          string            `gorm:"size:32;not null" json:"language"`
	Status            string            `gorm:"size:32;not null" json:"status"`
	Score             int               `gorm:"default:0" json:"score"`
	TestCasesPassed   int               `gorm:"default:0" json:"test_cases_passed"`
	TotalTestCases    int               `gorm:"default:0" json:"total_test_cases"`
	ErrorMessage      string            `gorm:"type:text" json:"error_message"`
	ExecutionInfo     datatypes.JSONMap `json:"execution_info"`
	PassFailStatus    string            `gorm:"size:16;default:not_attempted" json:"pass_fail_status"`
	IsLevelSubmission bool              `gorm:"default:false" json:"is_level_submission"`
	LevelSubmissionID *uint             `gorm:"index" json:"level_submission_id,omitempty"`
	LevelInfo         LevelInfo         `gorm:"embedded;embeddedPrefix:level_" json:"level_info"`
	CreatedAt         time.Time         `json:"submitted_at"`
}

// IsAccepted reports whether every test case passed.
func (s Submission) IsAccepted() bool {
	return s.Status == SubmissionStatusAccepted
}

// NormalizePassFail maps a client-supplied pass/fail value onto the known
// set, defaulting to not_attempted.
func NormalizePassFail(value string) string {
	switch value {
	case PassFailPassed, PassFailFailed:
		return value
	}
	return PassFailNotAttempted
}

package models

import "time"

// TestSubmissionStatusSubmitted is the single terminal state of a quiz attempt.
const TestSubmissionStatusSubmitted = "submitted"

// TestSubmission is one student's graded attempt at a test, scored by
// exact-match comparison against each question's correct option.
type TestSubmission struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	TestID         uint        `gorm:"not null;index" json:"test_id"`
	UserID         uint        `gorm:"not null;index" json:"user_id"`
	Score          int         `gorm:"default:0" json:"score"`
	CorrectCount   int         `gorm:"default:0" json:"correct_count"`
	TotalQuestions int         `gorm:"default:0" json:"total_questions"`
	Status         string      `gorm:"size:16;not null" json:"status"`
	SubmittedAt    time.Time   `json:"submitted_at"`
	Answers        []MCQAnswer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// MCQAnswer records one selected option and whether it matched.
type MCQAnswer struct {
	ID               uint `gorm:"primaryKey" json:"id"`
	TestSubmissionID uint `gorm:"not null;index" json:"test_submission_id"`
	MCQID            uint `gorm:"not null" json:"mcq_id"`
	SelectedOption   int  `gorm:"default:-1" json:"selected_option"`
	IsCorrect        bool `gorm:"default:false" json:"is_correct"`
}

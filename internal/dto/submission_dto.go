package dto

import (
	"github.com/zenithcode/zenith-api/internal/models"
	"github.com/zenithcode/zenith-api/pkg/judge"
)

// SubmitCodeRequest is the payload for single-problem real-time grading.
type SubmitCodeRequest struct {
	ProblemID uint   `json:"problem_id" validate:"required,gt=0"`
	Code      string `json:"code" validate:"required,min=1"`
	Language  string `json:"language" validate:"required"`
}

// TestCaseOutcome is one per-case grading result returned to the client.
type TestCaseOutcome struct {
	Passed   bool   `json:"passed"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
	Error    string `json:"error,omitempty"`
}

// SubmissionResponse represents a persisted submission to API consumers.
type SubmissionResponse struct {
	ID                uint                   `json:"id"`
	UserID            uint                   `json:"user_id"`
	ProblemID         uint                   `json:"problem_id"`
	Language          string                 `json:"language"`
	Status            string                 `json:"status"`
	Score             int                    `json:"score"`
	TestCasesPassed   int                    `json:"test_cases_passed"`
	TotalTestCases    int                    `json:"total_test_cases"`
	ErrorMessage      string                 `json:"error_message,omitempty"`
	PassFailStatus    string                 `json:"pass_fail_status"`
	IsLevelSubmission bool                   `json:"is_level_submission"`
	LevelInfo         *LevelInfoResponse     `json:"level_info,omitempty"`
	ExecutionInfo     map[string]interface{} `json:"execution_info,omitempty"`
	SubmittedAt       string                 `json:"submitted_at"`
}

// LevelInfoResponse carries the denormalised level context of a submission.
type LevelInfoResponse struct {
	Level    string `json:"level"`
	Category string `json:"category"`
	Language string `json:"language"`
	Order    int    `json:"order"`
}

// SubmitCodeResult is the client-facing outcome of a grading attempt.
type SubmitCodeResult struct {
	Accepted   bool               `json:"accepted"`
	Message    string             `json:"message"`
	Submission SubmissionResponse `json:"submission"`
	Results    []TestCaseOutcome  `json:"results,omitempty"`
}

// NewSubmissionResponse builds a response DTO from a model.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:                submission.ID,
		UserID:            submission.UserID,
		ProblemID:         submission.ProblemID,
		Language:          submission.Language,
		Status:            submission.Status,
		Score:             submission.Score,
		TestCasesPassed:   submission.TestCasesPassed,
		TotalTestCases:    submission.TotalTestCases,
		ErrorMessage:      submission.ErrorMessage,
		PassFailStatus:    submission.PassFailStatus,
		IsLevelSubmission: submission.IsLevelSubmission,
		SubmittedAt:       submission.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}

	if submission.ExecutionInfo != nil {
		response.ExecutionInfo = map[string]interface{}(submission.ExecutionInfo)
	}

	if submission.IsLevelSubmission {
		response.LevelInfo = &LevelInfoResponse{
			Level:    submission.LevelInfo.Level,
			Category: submission.LevelInfo.Category,
			Language: submission.LevelInfo.Language,
			Order:    submission.LevelInfo.Order,
		}
	}

	return response
}

// NewTestCaseOutcomes converts gateway results into response DTOs.
func NewTestCaseOutcomes(results []judge.TestCaseResult) []TestCaseOutcome {
	outcomes := make([]TestCaseOutcome, 0, len(results))
	for _, result := range results {
		outcomes = append(outcomes, TestCaseOutcome{
			Passed:   result.Passed,
			Actual:   result.Actual,
			Expected: result.Expected,
			Error:    result.Error,
		})
	}
	return outcomes
}

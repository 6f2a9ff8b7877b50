package dto

import (
	"time"

	"github.com/zenithcode/zenith-api/internal/models"
)

// StartLevelRequest begins a timed level session.
type StartLevelRequest struct {
	Level    string `json:"level" validate:"required,oneof=level1 level2 level3"`
	Language string `json:"language" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// LevelProblemEntry is one per-problem submission inside a level submit.
// Status is client-reported; the server does not re-execute level code.
type LevelProblemEntry struct {
	ProblemID uint   `json:"problem_id" validate:"required,gt=0"`
	Code      string `json:"code"`
	Language  string `json:"language"`
	Status    string `json:"status"`
}

// SubmitLevelRequest finalizes a level session.
type SubmitLevelRequest struct {
	Language           string              `json:"language" validate:"required"`
	Category           string              `json:"category" validate:"required"`
	ProblemSubmissions []LevelProblemEntry `json:"problem_submissions" validate:"required,min=1,dive"`
}

// LevelProblemOutcome reports the fate of one entry in a level submit.
type LevelProblemOutcome struct {
	ProblemID    uint   `json:"problem_id"`
	SubmissionID uint   `json:"submission_id,omitempty"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// LevelSubmitSummary is the response payload for a level submit.
type LevelSubmitSummary struct {
	LevelSubmissionID uint                  `json:"level_submission_id"`
	Status            string                `json:"status"`
	TotalProblems     int                   `json:"total_problems"`
	Submitted         int                   `json:"submitted"`
	Attempted         int                   `json:"attempted"`
	TimeAllowedSec    int                   `json:"time_allowed_sec"`
	Results           []LevelProblemOutcome `json:"results"`
}

// SubmissionSummary aggregates the coarse pass/fail signals of a session.
type SubmissionSummary struct {
	Total        int `json:"total"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	NotAttempted int `json:"not_attempted"`
}

// LevelProblemView pairs a problem with its linked submission inside a session.
type LevelProblemView struct {
	ProblemID    uint   `json:"problem_id"`
	Title        string `json:"title"`
	Points       int    `json:"points"`
	SubmissionID uint   `json:"submission_id"`
	Status       string `json:"status"`
	PassFail     string `json:"pass_fail_status"`
	Position     int    `json:"position"`
}

// LevelSessionResponse is the session status payload. Exists is false when
// the user never started a session for the tuple.
type LevelSessionResponse struct {
	Exists         bool               `json:"exists"`
	ID             uint               `json:"id,omitempty"`
	Level          string             `json:"level,omitempty"`
	Category       string             `json:"category,omitempty"`
	Language       string             `json:"language,omitempty"`
	Status         string             `json:"status,omitempty"`
	StartTime      *time.Time         `json:"start_time,omitempty"`
	SubmitTime     *time.Time         `json:"submit_time,omitempty"`
	TimeAllowedSec int                `json:"time_allowed_sec,omitempty"`
	TimeUsedSec    int                `json:"time_used_sec,omitempty"`
	TotalProblems  int                `json:"total_problems,omitempty"`
	Summary        *SubmissionSummary `json:"summary,omitempty"`
	Problems       []LevelProblemView `json:"problems,omitempty"`
}

// NewSubmissionSummary recomputes the aggregate from linked submissions.
func NewSubmissionSummary(links []models.LevelProblemSubmission) SubmissionSummary {
	summary := SubmissionSummary{Total: len(links)}
	for _, link := range links {
		switch link.Submission.PassFailStatus {
		case models.PassFailPassed:
			summary.Passed++
		case models.PassFailFailed:
			summary.Failed++
		default:
			summary.NotAttempted++
		}
	}
	return summary
}

// NewLevelSessionResponse builds the status payload for an existing session.
func NewLevelSessionResponse(session models.LevelSubmission, now time.Time) LevelSessionResponse {
	start := session.StartTime
	summary := NewSubmissionSummary(session.ProblemSubmissions)

	problems := make([]LevelProblemView, 0, len(session.ProblemSubmissions))
	for _, link := range session.ProblemSubmissions {
		problems = append(problems, LevelProblemView{
			ProblemID:    link.ProblemID,
			Title:        link.Problem.Title,
			Points:       link.Problem.Points,
			SubmissionID: link.SubmissionID,
			Status:       link.Submission.Status,
			PassFail:     link.Submission.PassFailStatus,
			Position:     link.Position,
		})
	}

	return LevelSessionResponse{
		Exists:         true,
		ID:             session.ID,
		Level:          session.Level,
		Category:       session.Category,
		Language:       session.Language,
		Status:         session.Status,
		StartTime:      &start,
		SubmitTime:     session.SubmitTime,
		TimeAllowedSec: session.TimeAllowedSec,
		TimeUsedSec:    session.TimeUsedSec(now),
		TotalProblems:  session.TotalProblems,
		Summary:        &summary,
		Problems:       problems,
	}
}

// LevelSubmissionListItem is one row of the paginated session listing.
type LevelSubmissionListItem struct {
	ID             uint              `json:"id"`
	Level          string            `json:"level"`
	Category       string            `json:"category"`
	Language       string            `json:"language"`
	Status         string            `json:"status"`
	StartTime      time.Time         `json:"start_time"`
	SubmitTime     *time.Time        `json:"submit_time,omitempty"`
	TimeAllowedSec int               `json:"time_allowed_sec"`
	TotalProblems  int               `json:"total_problems"`
	Summary        SubmissionSummary `json:"summary"`
}

// NewLevelSubmissionListItem converts a session model into a listing row.
func NewLevelSubmissionListItem(session models.LevelSubmission) LevelSubmissionListItem {
	return LevelSubmissionListItem{
		ID:             session.ID,
		Level:          session.Level,
		Category:       session.Category,
		Language:       session.Language,
		Status:         session.Status,
		StartTime:      session.StartTime,
		SubmitTime:     session.SubmitTime,
		TimeAllowedSec: session.TimeAllowedSec,
		TotalProblems:  session.TotalProblems,
		Summary:        NewSubmissionSummary(session.ProblemSubmissions),
	}
}

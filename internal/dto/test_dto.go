package dto

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/zenithcode/zenith-api/internal/models"
)

// MCQInput is one question in an admin create/update payload.
type MCQInput struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
	Points        int      `json:"points" validate:"gte=0"`
}

// CreateTestRequest is the admin payload for creating a quiz.
type CreateTestRequest struct {
	Title           string     `json:"title" validate:"required,min=3,max=255"`
	Description     string     `json:"description"`
	Collection      string     `json:"collection"`
	Category        string     `json:"category" validate:"required"`
	Language        string     `json:"language" validate:"required"`
	AvailableFrom   *time.Time `json:"available_from"`
	AvailableTo     *time.Time `json:"available_to"`
	DurationMinutes int        `json:"duration_minutes" validate:"gte=0"`
	Questions       []MCQInput `json:"questions" validate:"required,min=1,dive"`
	IsActive        *bool      `json:"is_active"`
}

// UpdateTestRequest mirrors the create payload; questions replace the
// existing set when present.
type UpdateTestRequest struct {
	Title           string     `json:"title" validate:"omitempty,min=3,max=255"`
	Description     string     `json:"description"`
	Collection      string     `json:"collection"`
	Category        string     `json:"category"`
	Language        string     `json:"language"`
	AvailableFrom   *time.Time `json:"available_from"`
	AvailableTo     *time.Time `json:"available_to"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gte=0"`
	Questions       []MCQInput `json:"questions" validate:"omitempty,min=1,dive"`
	IsActive        *bool      `json:"is_active"`
}

// MCQResponse is a question exposed on read paths. CorrectOption is only
// present on admin reads.
type MCQResponse struct {
	ID            uint     `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption *int     `json:"correct_option,omitempty"`
	Points        int      `json:"points"`
	Position      int      `json:"position"`
}

// TestResponse represents a quiz to API consumers.
type TestResponse struct {
	ID              uint          `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Collection      string        `json:"collection,omitempty"`
	Category        string        `json:"category"`
	Language        string        `json:"language"`
	AvailableFrom   *time.Time    `json:"available_from,omitempty"`
	AvailableTo     *time.Time    `json:"available_to,omitempty"`
	DurationMinutes int           `json:"duration_minutes"`
	IsActive        bool          `json:"is_active"`
	Questions       []MCQResponse `json:"questions,omitempty"`
}

// TestListResponse is the paginated quiz listing payload.
type TestListResponse struct {
	Tests []TestResponse `json:"tests"`
	Meta  ListMeta       `json:"meta"`
}

// MCQAnswerInput is one selected option in a quiz submission.
type MCQAnswerInput struct {
	MCQID          uint `json:"mcq_id" validate:"required,gt=0"`
	SelectedOption int  `json:"selected_option" validate:"gte=0"`
}

// SubmitTestRequest is the payload for submitting a quiz attempt.
type SubmitTestRequest struct {
	Answers []MCQAnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// MCQAnswerResult reports per-question correctness after grading.
type MCQAnswerResult struct {
	MCQID          uint `json:"mcq_id"`
	SelectedOption int  `json:"selected_option"`
	IsCorrect      bool `json:"is_correct"`
}

// TestResultResponse is a graded quiz attempt.
type TestResultResponse struct {
	ID             uint              `json:"id"`
	TestID         uint              `json:"test_id"`
	Score          int               `json:"score"`
	CorrectCount   int               `json:"correct_count"`
	TotalQuestions int               `json:"total_questions"`
	Status         string            `json:"status"`
	SubmittedAt    time.Time         `json:"submitted_at"`
	Answers        []MCQAnswerResult `json:"answers"`
}

// MarshalOptions encodes MCQ options for storage.
func MarshalOptions(options []string) datatypes.JSON {
	payload, err := json.Marshal(options)
	if err != nil {
		return nil
	}
	return datatypes.JSON(payload)
}

func decodeOptions(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil
	}
	return options
}

// NewMCQResponse builds a question DTO, revealing the answer key only to admins.
func NewMCQResponse(mcq models.MCQ, forAdmin bool) MCQResponse {
	response := MCQResponse{
		ID:       mcq.ID,
		Question: mcq.Question,
		Options:  decodeOptions(mcq.Options),
		Points:   mcq.Points,
		Position: mcq.Position,
	}
	if forAdmin {
		correct := mcq.CorrectOption
		response.CorrectOption = &correct
	}
	return response
}

// NewTestResponse builds a quiz DTO.
func NewTestResponse(test models.Test, forAdmin bool, includeQuestions bool) TestResponse {
	response := TestResponse{
		ID:              test.ID,
		Title:           test.Title,
		Description:     test.Description,
		Collection:      test.Collection,
		Category:        test.Category,
		Language:        test.Language,
		AvailableFrom:   test.AvailableFrom,
		AvailableTo:     test.AvailableTo,
		DurationMinutes: test.DurationMinutes,
		IsActive:        test.IsActive,
	}

	if includeQuestions {
		questions := make([]MCQResponse, 0, len(test.Questions))
		for _, mcq := range test.Questions {
			questions = append(questions, NewMCQResponse(mcq, forAdmin))
		}
		response.Questions = questions
	}

	return response
}

// NewTestResultResponse builds a graded attempt DTO.
func NewTestResultResponse(submission models.TestSubmission) TestResultResponse {
	answers := make([]MCQAnswerResult, 0, len(submission.Answers))
	for _, answer := range submission.Answers {
		answers = append(answers, MCQAnswerResult{
			MCQID:          answer.MCQID,
			SelectedOption: answer.SelectedOption,
			IsCorrect:      answer.IsCorrect,
		})
	}

	return TestResultResponse{
		ID:             submission.ID,
		TestID:         submission.TestID,
		Score:          submission.Score,
		CorrectCount:   submission.CorrectCount,
		TotalQuestions: submission.TotalQuestions,
		Status:         submission.Status,
		SubmittedAt:    submission.SubmittedAt,
		Answers:        answers,
	}
}

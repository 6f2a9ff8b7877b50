package dto

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/zenithcode/zenith-api/internal/models"
)

// ProblemExample is one worked example shown to students.
type ProblemExample struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// TestCaseInput is one test case in an admin create/update payload.
type TestCaseInput struct {
	Input    string `json:"input"`
	Output   string `json:"output" validate:"required"`
	IsHidden bool   `json:"is_hidden"`
}

// CreateProblemRequest is the admin payload for creating a problem.
type CreateProblemRequest struct {
	Title            string           `json:"title" validate:"required,min=3,max=255"`
	Description      string           `json:"description" validate:"required"`
	Difficulty       string           `json:"difficulty" validate:"required,oneof=level1 level2 level3"`
	Category         string           `json:"category" validate:"required"`
	Subcategory      string           `json:"subcategory"`
	Language         string           `json:"language" validate:"required"`
	Constraints      string           `json:"constraints"`
	Examples         []ProblemExample `json:"examples"`
	TestCases        []TestCaseInput  `json:"test_cases" validate:"required,min=1,dive"`
	StarterCode      string           `json:"starter_code"`
	Solution         string           `json:"solution"`
	TimeLimitMinutes int              `json:"time_limit_minutes" validate:"gte=0"`
	MemoryLimitMB    int              `json:"memory_limit_mb" validate:"gte=0"`
	Points           int              `json:"points" validate:"gte=0"`
	Tags             []string         `json:"tags"`
	IsActive         *bool            `json:"is_active"`
}

// UpdateProblemRequest mirrors the create payload; test cases replace the
// existing set when present.
type UpdateProblemRequest struct {
	Title            string           `json:"title" validate:"omitempty,min=3,max=255"`
	Description      string           `json:"description"`
	Difficulty       string           `json:"difficulty" validate:"omitempty,oneof=level1 level2 level3"`
	Category         string           `json:"category"`
	Subcategory      string           `json:"subcategory"`
	Language         string           `json:"language"`
	Constraints      string           `json:"constraints"`
	Examples         []ProblemExample `json:"examples"`
	TestCases        []TestCaseInput  `json:"test_cases" validate:"omitempty,min=1,dive"`
	StarterCode      string           `json:"starter_code"`
	Solution         string           `json:"solution"`
	TimeLimitMinutes *int             `json:"time_limit_minutes" validate:"omitempty,gte=0"`
	MemoryLimitMB    *int             `json:"memory_limit_mb" validate:"omitempty,gte=0"`
	Points           *int             `json:"points" validate:"omitempty,gte=0"`
	Tags             []string         `json:"tags"`
	IsActive         *bool            `json:"is_active"`
}

// TestCaseResponse is a test case exposed on read paths.
type TestCaseResponse struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	IsHidden bool   `json:"is_hidden"`
	Position int    `json:"position"`
}

// ProblemResponse represents a problem to API consumers. Student reads
// never include hidden test cases or the reference solution.
type ProblemResponse struct {
	ID               uint               `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Difficulty       string             `json:"difficulty"`
	Category         string             `json:"category"`
	Subcategory      string             `json:"subcategory,omitempty"`
	Language         string             `json:"language"`
	Constraints      string             `json:"constraints,omitempty"`
	Examples         []ProblemExample   `json:"examples,omitempty"`
	TestCases        []TestCaseResponse `json:"test_cases,omitempty"`
	StarterCode      string             `json:"starter_code,omitempty"`
	Solution         string             `json:"solution,omitempty"`
	TimeLimitMinutes int                `json:"time_limit_minutes"`
	MemoryLimitMB    int                `json:"memory_limit_mb"`
	Points           int                `json:"points"`
	Tags             []string           `json:"tags,omitempty"`
	IsActive         bool               `json:"is_active"`
	CreatedByID      uint               `json:"created_by_id,omitempty"`
}

// ListMeta carries pagination information on list responses.
type ListMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// ProblemListResponse is the paginated problem listing payload.
type ProblemListResponse struct {
	Problems []ProblemResponse `json:"problems"`
	Meta     ListMeta          `json:"meta"`
}

// MarshalExamples encodes examples for storage.
func MarshalExamples(examples []ProblemExample) datatypes.JSON {
	if len(examples) == 0 {
		return nil
	}
	payload, err := json.Marshal(examples)
	if err != nil {
		return nil
	}
	return datatypes.JSON(payload)
}

func decodeExamples(raw datatypes.JSON) []ProblemExample {
	if len(raw) == 0 {
		return nil
	}
	var examples []ProblemExample
	if err := json.Unmarshal(raw, &examples); err != nil {
		return nil
	}
	return examples
}

// NewProblemResponse builds a response DTO. When forAdmin is false the
// hidden test cases and the solution are stripped.
func NewProblemResponse(problem models.Problem, forAdmin bool) ProblemResponse {
	cases := problem.TestCases
	if !forAdmin {
		cases = problem.VisibleTestCases()
	}

	caseResponses := make([]TestCaseResponse, 0, len(cases))
	for _, tc := range cases {
		caseResponses = append(caseResponses, TestCaseResponse{
			Input:    tc.Input,
			Output:   tc.Output,
			IsHidden: tc.IsHidden,
			Position: tc.Position,
		})
	}

	response := ProblemResponse{
		ID:               problem.ID,
		Title:            problem.Title,
		Description:      problem.Description,
		Difficulty:       problem.Difficulty,
		Category:         problem.Category,
		Subcategory:      problem.Subcategory,
		Language:         problem.Language,
		Constraints:      problem.Constraints,
		Examples:         decodeExamples(problem.Examples),
		TestCases:        caseResponses,
		StarterCode:      problem.StarterCode,
		TimeLimitMinutes: problem.BudgetMinutes(),
		MemoryLimitMB:    problem.MemoryLimitMB,
		Points:           problem.Points,
		Tags:             problem.TagsSlice(),
		IsActive:         problem.IsActive,
	}

	if forAdmin {
		response.Solution = problem.Solution
		response.CreatedByID = problem.CreatedByID
	}

	return response
}

// NormalizeTags joins tag inputs into the stored comma-separated form.
func NormalizeTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, ",")
}

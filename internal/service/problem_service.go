package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/dto"
	"github.com/zenithcode/zenith-api/internal/models"
	"github.com/zenithcode/zenith-api/internal/repository"
)

// ErrProblemNotFound indicates the problem cannot be located.
var ErrProblemNotFound = errors.New("problem not found")

// ProblemFilter defines student/admin listing filters.
type ProblemFilter struct {
	Difficulty string
	Category   string
	Language   string
	Tags       []string
	Search     string
	Page       int
	PageSize   int
}

// ProblemService exposes problem management and read operations.
type ProblemService interface {
	Create(ctx context.Context, creatorID uint, payload dto.CreateProblemRequest) (dto.ProblemResponse, error)
	Update(ctx context.Context, id uint, payload dto.UpdateProblemRequest) (dto.ProblemResponse, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint, forAdmin bool) (dto.ProblemResponse, error)
	List(ctx context.Context, filter ProblemFilter, forAdmin bool) (dto.ProblemListResponse, error)
}

type problemService struct {
	problems  repository.ProblemRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProblemService constructs the problem service.
func NewProblemService(problemRepo repository.ProblemRepository, validate *validator.Validate, logger zerolog.Logger) ProblemService {
	return &problemService{
		problems:  problemRepo,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "problem_service").Logger(),
	}
}

func (s *problemService) Create(ctx context.Context, creatorID uint, payload dto.CreateProblemRequest) (dto.ProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemResponse{}, err
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	problem := models.Problem{
		Title:            strings.TrimSpace(payload.Title),
		Description:      s.sanitizer.Sanitize(payload.Description),
		Difficulty:       payload.Difficulty,
		Category:         strings.TrimSpace(payload.Category),
		Subcategory:      strings.TrimSpace(payload.Subcategory),
		Language:         strings.ToLower(strings.TrimSpace(payload.Language)),
		Constraints:      payload.Constraints,
		Examples:         dto.MarshalExamples(payload.Examples),
		StarterCode:      payload.StarterCode,
		Solution:         payload.Solution,
		TimeLimitMinutes: payload.TimeLimitMinutes,
		MemoryLimitMB:    payload.MemoryLimitMB,
		Points:           payload.Points,
		Tags:             dto.NormalizeTags(payload.Tags),
		IsActive:         isActive,
		CreatedByID:      creatorID,
	}

	for i, tc := range payload.TestCases {
		problem.TestCases = append(problem.TestCases, models.TestCase{
			Input:    tc.Input,
			Output:   tc.Output,
			IsHidden: tc.IsHidden,
			Position: i,
		})
	}

	if err := s.problems.Create(ctx, &problem); err != nil {
		return dto.ProblemResponse{}, err
	}

	s.logger.Info().Uint("problem_id", problem.ID).Str("difficulty", problem.Difficulty).Msg("problem created")
	return dto.NewProblemResponse(problem, true), nil
}

func (s *problemService) Update(ctx context.Context, id uint, payload dto.UpdateProblemRequest) (dto.ProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemResponse{}, err
	}

	problem, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}

	if payload.Title != "" {
		problem.Title = strings.TrimSpace(payload.Title)
	}
	if payload.Description != "" {
		problem.Description = s.sanitizer.Sanitize(payload.Description)
	}
	if payload.Difficulty != "" {
		problem.Difficulty = payload.Difficulty
	}
	if payload.Category != "" {
		problem.Category = strings.TrimSpace(payload.Category)
	}
	if payload.Subcategory != "" {
		problem.Subcategory = strings.TrimSpace(payload.Subcategory)
	}
	if payload.Language != "" {
		problem.Language = strings.ToLower(strings.TrimSpace(payload.Language))
	}
	if payload.Constraints != "" {
		problem.Constraints = payload.Constraints
	}
	if len(payload.Examples) > 0 {
		problem.Examples = dto.MarshalExamples(payload.Examples)
	}
	if payload.StarterCode != "" {
		problem.StarterCode = payload.StarterCode
	}
	if payload.Solution != "" {
		problem.Solution = payload.Solution
	}
	if payload.TimeLimitMinutes != nil {
		problem.TimeLimitMinutes = *payload.TimeLimitMinutes
	}
	if payload.MemoryLimitMB != nil {
		problem.MemoryLimitMB = *payload.MemoryLimitMB
	}
	if payload.Points != nil {
		problem.Points = *payload.Points
	}
	if len(payload.Tags) > 0 {
		problem.Tags = dto.NormalizeTags(payload.Tags)
	}
	if payload.IsActive != nil {
		problem.IsActive = *payload.IsActive
	}

	if err := s.problems.Update(ctx, &problem); err != nil {
		return dto.ProblemResponse{}, err
	}

	if len(payload.TestCases) > 0 {
		cases := make([]models.TestCase, 0, len(payload.TestCases))
		for _, tc := range payload.TestCases {
			cases = append(cases, models.TestCase{Input: tc.Input, Output: tc.Output, IsHidden: tc.IsHidden})
		}
		if err := s.problems.ReplaceTestCases(ctx, problem.ID, cases); err != nil {
			return dto.ProblemResponse{}, err
		}
	}

	updated, err := s.problems.GetByIDWithTestCases(ctx, problem.ID)
	if err != nil {
		return dto.ProblemResponse{}, err
	}

	return dto.NewProblemResponse(updated, true), nil
}

func (s *problemService) Delete(ctx context.Context, id uint) error {
	if _, err := s.problems.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProblemNotFound
		}
		return err
	}
	// Existing submissions keep their problem reference; historical reads
	// tolerate a deleted problem.
	return s.problems.Delete(ctx, id)
}

func (s *problemService) Get(ctx context.Context, id uint, forAdmin bool) (dto.ProblemResponse, error) {
	problem, err := s.problems.GetByIDWithTestCases(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}

	if !forAdmin && !problem.IsActive {
		return dto.ProblemResponse{}, ErrProblemNotFound
	}

	return dto.NewProblemResponse(problem, forAdmin), nil
}

func (s *problemService) List(ctx context.Context, filter ProblemFilter, forAdmin bool) (dto.ProblemListResponse, error) {
	offset, limit := pageWindow(filter.Page, filter.PageSize)
	problems, total, err := s.problems.List(ctx, repository.ProblemQuery{
		Difficulty: filter.Difficulty,
		Category:   filter.Category,
		Language:   filter.Language,
		Tags:       filter.Tags,
		Search:     filter.Search,
		ActiveOnly: !forAdmin,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return dto.ProblemListResponse{}, err
	}

	responses := make([]dto.ProblemResponse, 0, len(problems))
	for _, problem := range problems {
		responses = append(responses, dto.NewProblemResponse(problem, forAdmin))
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}

	return dto.ProblemListResponse{
		Problems: responses,
		Meta:     dto.ListMeta{Total: total, Page: page, PageSize: limit},
	}, nil
}

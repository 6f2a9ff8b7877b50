package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/dto"
	"github.com/zenithcode/zenith-api/internal/events"
	"github.com/zenithcode/zenith-api/internal/models"
	"github.com/zenithcode/zenith-api/internal/observability"
	"github.com/zenithcode/zenith-api/internal/repository"
	"github.com/zenithcode/zenith-api/pkg/judge"
)

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionForbidden indicates the caller may not access the submission.
var ErrSubmissionForbidden = errors.New("forbidden")

// SubmissionService orchestrates real-time grading of single-problem submissions.
type SubmissionService interface {
	Submit(ctx context.Context, userID uint, payload dto.SubmitCodeRequest) (dto.SubmitCodeResult, error)
	Get(ctx context.Context, id uint, viewerID uint, role string) (dto.SubmissionResponse, error)
	List(ctx context.Context, userID uint, page, pageSize int) ([]dto.SubmissionResponse, int64, error)
	Delete(ctx context.Context, id uint, role string) error
}

type submissionService struct {
	submissions repository.SubmissionRepository
	problems    repository.ProblemRepository
	judge       judge.Client
	publisher   events.Publisher
	validator   *validator.Validate
	logger      zerolog.Logger
	timeout     time.Duration
}

// NewSubmissionService constructs the grading service.
func NewSubmissionService(submissionRepo repository.SubmissionRepository, problemRepo repository.ProblemRepository, judgeClient judge.Client, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger, timeout time.Duration) SubmissionService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &submissionService{
		submissions: submissionRepo,
		problems:    problemRepo,
		judge:       judgeClient,
		publisher:   publisher,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		timeout:     timeout,
	}
}

func (s *submissionService) Submit(ctx context.Context, userID uint, payload dto.SubmitCodeRequest) (dto.SubmitCodeResult, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitCodeResult{}, err
	}

	// Grading always loads every test case, hidden ones included. Hidden
	// filtering is strictly a student-read concern.
	problem, err := s.problems.GetByIDWithTestCases(ctx, payload.ProblemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitCodeResult{}, ErrProblemNotFound
		}
		return dto.SubmitCodeResult{}, err
	}

	cases := make([]judge.TestCase, 0, len(problem.TestCases))
	for _, tc := range problem.TestCases {
		cases = append(cases, judge.TestCase{Input: tc.Input, Output: tc.Output, IsHidden: tc.IsHidden})
	}

	runResult, runErr := s.judge.Run(ctx, judge.RunRequest{
		Code:      payload.Code,
		Language:  payload.Language,
		TestCases: cases,
	})

	submission := models.Submission{
		UserID:    userID,
		ProblemID: problem.ID,
		Code:      payload.Code,
		Language:  payload.Language,
	}

	var result dto.SubmitCodeResult

	switch {
	case runErr != nil && errors.Is(runErr, judge.ErrTimeout):
		submission.Status = models.SubmissionStatusTimeLimitExceeded
		submission.PassFailStatus = models.PassFailFailed
		submission.ErrorMessage = fmt.Sprintf("Code execution timed out after %s", s.timeout)
		submission.ExecutionInfo = datatypes.JSONMap{"error": runErr.Error()}
		result.Message = submission.ErrorMessage
	case runErr != nil:
		submission.Status = models.SubmissionStatusRuntimeError
		submission.PassFailStatus = models.PassFailFailed
		submission.ErrorMessage = "Real-time validation failed: execution error"
		submission.ExecutionInfo = datatypes.JSONMap{"error": runErr.Error()}
		result.Message = submission.ErrorMessage
	case len(runResult.Results) == 0:
		submission.Status = models.SubmissionStatusRuntimeError
		submission.PassFailStatus = models.PassFailFailed
		submission.ErrorMessage = "Real-time validation failed: execution service returned no results"
		submission.ExecutionInfo = datatypes.JSONMap(runResult.ExecutionInfo)
		result.Message = submission.ErrorMessage
	default:
		passed := 0
		for _, caseResult := range runResult.Results {
			if caseResult.Passed {
				passed++
			}
		}
		total := len(runResult.Results)

		submission.TestCasesPassed = passed
		submission.TotalTestCases = total
		submission.Score = int(math.Round(float64(passed) / float64(total) * 100))
		submission.ExecutionInfo = datatypes.JSONMap(runResult.ExecutionInfo)

		if passed == total {
			submission.Status = models.SubmissionStatusAccepted
			submission.PassFailStatus = models.PassFailPassed
			result.Accepted = true
			result.Message = fmt.Sprintf("All %d test cases passed", total)
		} else {
			submission.Status = models.SubmissionStatusWrongAnswer
			submission.PassFailStatus = models.PassFailFailed
			submission.ErrorMessage = fmt.Sprintf("Real-time validation failed: %d/%d test cases passed", passed, total)
			result.Message = submission.ErrorMessage
		}
		result.Results = dto.NewTestCaseOutcomes(runResult.Results)
	}

	// Every grading attempt is persisted, failures included, so students
	// keep an auditable history.
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmitCodeResult{}, err
	}

	observability.GradingResults().WithLabelValues(submission.Status).Inc()

	if s.publisher != nil {
		s.publisher.PublishSubmissionGraded(events.SubmissionGraded{
			SubmissionID: submission.ID,
			UserID:       userID,
			ProblemID:    problem.ID,
			Status:       submission.Status,
			Score:        submission.Score,
			GradedAt:     time.Now().UTC(),
		})
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("problem_id", problem.ID).
		Str("status", submission.Status).
		Int("score", submission.Score).
		Msg("submission graded")

	result.Submission = dto.NewSubmissionResponse(submission)
	return result, nil
}

func (s *submissionService) Get(ctx context.Context, id uint, viewerID uint, role string) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.UserID != viewerID && role != models.RoleAdmin {
		return dto.SubmissionResponse{}, ErrSubmissionForbidden
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, userID uint, page, pageSize int) ([]dto.SubmissionResponse, int64, error) {
	offset, limit := pageWindow(page, pageSize)
	submissions, total, err := s.submissions.List(ctx, repository.SubmissionQuery{
		UserID: &userID,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionResponse(submission))
	}
	return responses, total, nil
}

func (s *submissionService) Delete(ctx context.Context, id uint, role string) error {
	if role != models.RoleAdmin {
		return ErrSubmissionForbidden
	}
	if _, err := s.submissions.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}
	return s.submissions.Delete(ctx, id)
}

func pageWindow(page, pageSize int) (offset, limit int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if page <= 1 {
		return 0, pageSize
	}
	return (page - 1) * pageSize, pageSize
}

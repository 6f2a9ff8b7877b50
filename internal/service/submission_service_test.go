package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/dto"
	"github.com/zenithcode/zenith-api/internal/events"
	"github.com/zenithcode/zenith-api/internal/models"
	"github.com/zenithcode/zenith-api/internal/repository"
	"github.com/zenithcode/zenith-api/pkg/judge"
)

type stubSubmissionRepo struct {
	created []models.Submission
	stored  models.Submission
	err     error
	nextID  uint
}

func (s *stubSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if s.err != nil {
		return s.err
	}
	if submission.ID == 0 {
		s.nextID++
		submission.ID = s.nextID
	}
	s.created = append(s.created, *submission)
	s.stored = *submission
	return nil
}

func (s *stubSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	if s.err != nil {
		return models.Submission{}, s.err
	}
	if s.stored.ID == 0 || s.stored.ID != id {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return s.stored, nil
}

func (s *stubSubmissionRepo) List(ctx context.Context, query repository.SubmissionQuery) ([]models.Submission, int64, error) {
	return s.created, int64(len(s.created)), nil
}

func (s *stubSubmissionRepo) Delete(ctx context.Context, id uint) error {
	return s.err
}

func (s *stubSubmissionRepo) CountAcceptedByUser(ctx context.Context, userID uint) (int64, error) {
	return 0, nil
}

type stubProblemRepo struct {
	problem  models.Problem
	problems []models.Problem
	err      error
}

func (s *stubProblemRepo) Create(ctx context.Context, problem *models.Problem) error {
	if s.err != nil {
		return s.err
	}
	if problem.ID == 0 {
		problem.ID = 1
	}
	s.problem = *problem
	return nil
}

func (s *stubProblemRepo) Update(ctx context.Context, problem *models.Problem) error {
	if s.err != nil {
		return s.err
	}
	s.problem = *problem
	return nil
}

func (s *stubProblemRepo) Delete(ctx context.Context, id uint) error {
	return s.err
}

func (s *stubProblemRepo) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	return s.GetByIDWithTestCases(ctx, id)
}

func (s *stubProblemRepo) GetByIDWithTestCases(ctx context.Context, id uint) (models.Problem, error) {
	if s.err != nil {
		return models.Problem{}, s.err
	}
	if s.problem.ID == 0 || s.problem.ID != id {
		return models.Problem{}, gorm.ErrRecordNotFound
	}
	return s.problem, nil
}

func (s *stubProblemRepo) List(ctx context.Context, query repository.ProblemQuery) ([]models.Problem, int64, error) {
	return s.problems, int64(len(s.problems)), s.err
}

func (s *stubProblemRepo) ListActiveForLevel(ctx context.Context, level, category, language string) ([]models.Problem, error) {
	return s.problems, s.err
}

func (s *stubProblemRepo) ReplaceTestCases(ctx context.Context, problemID uint, cases []models.TestCase) error {
	return s.err
}

func (s *stubProblemRepo) CountByCategory(ctx context.Context, activeOnly bool) ([]repository.CategoryCount, error) {
	return nil, s.err
}

type stubJudge struct {
	response judge.RunResponse
	err      error
	request  judge.RunRequest
}

func (s *stubJudge) Run(ctx context.Context, req judge.RunRequest) (judge.RunResponse, error) {
	s.request = req
	return s.response, s.err
}

type stubPublisher struct {
	events []events.SubmissionGraded
}

func (s *stubPublisher) PublishSubmissionGraded(event events.SubmissionGraded) {
	s.events = append(s.events, event)
}

func newTestProblem() models.Problem {
	return models.Problem{
		ID:       1,
		Title:    "Two Sum",
		Language: "python",
		IsActive: true,
		TestCases: []models.TestCase{
			{ID: 1, ProblemID: 1, Input: "1 2", Output: "3"},
			{ID: 2, ProblemID: 1, Input: "4 5", Output: "9", IsHidden: true},
		},
	}
}

func TestSubmissionServiceAcceptsWhenAllCasesPass(t *testing.T) {
	repo := &stubSubmissionRepo{}
	problems := &stubProblemRepo{problem: newTestProblem()}
	judgeClient := &stubJudge{response: judge.RunResponse{
		Results: []judge.TestCaseResult{
			{Passed: true, Actual: "3", Expected: "3"},
			{Passed: true, Actual: "9", Expected: "9"},
		},
	}}
	publisher := &stubPublisher{}
	svc := NewSubmissionService(repo, problems, judgeClient, publisher, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), 0)

	result, err := svc.Submit(context.Background(), 7, dto.SubmitCodeRequest{ProblemID: 1, Code: "print(3)", Language: "python"})
	require.NoError(t, err)
	require.True(t, result.Accepted)
	require.Equal(t, "All 2 test cases passed", result.Message)
	require.Len(t, repo.created, 1)
	require.Equal(t, models.SubmissionStatusAccepted, repo.created[0].Status)
	require.Equal(t, 100, repo.created[0].Score)
	require.Equal(t, models.PassFailPassed, repo.created[0].PassFailStatus)
	require.Len(t, judgeClient.request.TestCases, 2)
	require.Len(t, publisher.events, 1)
	require.Equal(t, models.SubmissionStatusAccepted, publisher.events[0].Status)
}

func TestSubmissionServiceScoresPartialPasses(t *testing.T) {
	repo := &stubSubmissionRepo{}
	problems := &stubProblemRepo{problem: newTestProblem()}
	judgeClient := &stubJudge{response: judge.RunResponse{
		Results: []judge.TestCaseResult{
			{Passed: true},
			{Passed: false},
			{Passed: false},
		},
	}}
	svc := NewSubmissionService(repo, problems, judgeClient, nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), 0)

	result, err := svc.Submit(context.Background(), 7, dto.SubmitCodeRequest{ProblemID: 1, Code: "print(0)", Language: "python"})
	require.NoError(t, err)
	require.False(t, result.Accepted)
	require.Equal(t, "Real-time validation failed: 1/3 test cases passed", result.Message)
	require.Equal(t, models.SubmissionStatusWrongAnswer, repo.created[0].Status)
	require.Equal(t, 33, repo.created[0].Score)
	require.Equal(t, models.PassFailFailed, repo.created[0].PassFailStatus)
}

func TestSubmissionServiceRecordsTimeout(t *testing.T) {
	repo := &stubSubmissionRepo{}
	problems := &stubProblemRepo{problem: newTestProblem()}
	judgeClient := &stubJudge{err: judge.ErrTimeout}
	svc := NewSubmissionService(repo, problems, judgeClient, nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), 0)

	result, err := svc.Submit(context.Background(), 7, dto.SubmitCodeRequest{ProblemID: 1, Code: "while True: pass", Language: "python"})
	require.NoError(t, err)
	require.False(t, result.Accepted)
	require.Contains(t, result.Message, "timed out")
	require.Equal(t, models.SubmissionStatusTimeLimitExceeded, repo.created[0].Status)
	require.Equal(t, 0, repo.created[0].Score)
}

func TestSubmissionServiceRecordsExecutionFailure(t *testing.T) {
	repo := &stubSubmissionRepo{}
	problems := &stubProblemRepo{problem: newTestProblem()}
	judgeClient := &stubJudge{err: errors.New("gateway unreachable")}
	svc := NewSubmissionService(repo, problems, judgeClient, nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), 0)

	result, err := svc.Submit(context.Background(), 7, dto.SubmitCodeRequest{ProblemID: 1, Code: "print(1)", Language: "python"})
	require.NoError(t, err)
	require.False(t, result.Accepted)
	require.Equal(t, models.SubmissionStatusRuntimeError, repo.created[0].Status)
	require.Equal(t, "gateway unreachable", repo.created[0].ExecutionInfo["error"])
}

func TestSubmissionServiceTreatsEmptyResultsAsRuntimeError(t *testing.T) {
	repo := &stubSubmissionRepo{}
	problems := &stubProblemRepo{problem: newTestProblem()}
	judgeClient := &stubJudge{response: judge.RunResponse{}}
	svc := NewSubmissionService(repo, problems, judgeClient, nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), 0)

	result, err := svc.Submit(context.Background(), 7, dto.SubmitCodeRequest{ProblemID: 1, Code: "print(1)", Language: "python"})
	require.NoError(t, err)
	require.False(t, result.Accepted)
	require.Equal(t, models.SubmissionStatusRuntimeError, repo.created[0].Status)
	require.Contains(t, result.Message, "no results")
}

func TestSubmissionServiceRejectsUnknownProblem(t *testing.T) {
	repo := &stubSubmissionRepo{}
	problems := &stubProblemRepo{}
	svc := NewSubmissionService(repo, problems, &stubJudge{}, nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), 0)

	_, err := svc.Submit(context.Background(), 7, dto.SubmitCodeRequest{ProblemID: 42, Code: "print(1)", Language: "python"})
	require.ErrorIs(t, err, ErrProblemNotFound)
	require.Empty(t, repo.created)
}

func TestSubmissionServiceGetEnforcesOwnership(t *testing.T) {
	repo := &stubSubmissionRepo{stored: models.Submission{ID: 3, UserID: 7, ProblemID: 1, Status: models.SubmissionStatusAccepted}}
	svc := NewSubmissionService(repo, &stubProblemRepo{}, &stubJudge{}, nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), 0)

	_, err := svc.Get(context.Background(), 3, 9, models.RoleStudent)
	require.ErrorIs(t, err, ErrSubmissionForbidden)

	response, err := svc.Get(context.Background(), 3, 9, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, uint(3), response.ID)

	response, err = svc.Get(context.Background(), 3, 7, models.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, uint(7), response.UserID)
}

func TestSubmissionServiceDeleteRequiresAdmin(t *testing.T) {
	repo := &stubSubmissionRepo{stored: models.Submission{ID: 3, UserID: 7}}
	svc := NewSubmissionService(repo, &stubProblemRepo{}, &stubJudge{}, nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), 0)

	err := svc.Delete(context.Background(), 3, models.RoleStudent)
	require.ErrorIs(t, err, ErrSubmissionForbidden)

	err = svc.Delete(context.Background(), 3, models.RoleAdmin)
	require.NoError(t, err)
}

func TestPageWindowDefaultsAndCaps(t *testing.T) {
	offset, limit := pageWindow(0, 0)
	require.Equal(t, 0, offset)
	require.Equal(t, 20, limit)

	offset, limit = pageWindow(3, 50)
	require.Equal(t, 100, offset)
	require.Equal(t, 50, limit)

	_, limit = pageWindow(1, 500)
	require.Equal(t, 100, limit)
}

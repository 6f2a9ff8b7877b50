package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/dto"
	"github.com/zenithcode/zenith-api/internal/models"
	"github.com/zenithcode/zenith-api/internal/repository"
)

// ErrTestNotFound indicates the quiz cannot be located.
var ErrTestNotFound = errors.New("test not found")

// ErrTestNotAvailable indicates the quiz is outside its availability window.
var ErrTestNotAvailable = errors.New("test is not currently available")

// ErrTestAlreadySubmitted indicates the caller already attempted the quiz.
var ErrTestAlreadySubmitted = errors.New("test has already been submitted")

// ErrTestResultNotFound indicates the caller has no attempt for the quiz.
var ErrTestResultNotFound = errors.New("test result not found")

// TestFilter defines quiz listing filters.
type TestFilter struct {
	Collection string
	Category   string
	Language   string
	Page       int
	PageSize   int
}

// TestService exposes quiz management, listing and grading operations.
type TestService interface {
	Create(ctx context.Context, creatorID uint, payload dto.CreateTestRequest) (dto.TestResponse, error)
	Update(ctx context.Context, id uint, payload dto.UpdateTestRequest) (dto.TestResponse, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint, forAdmin bool) (dto.TestResponse, error)
	List(ctx context.Context, filter TestFilter, forAdmin bool) (dto.TestListResponse, error)
	SubmitAnswers(ctx context.Context, userID, testID uint, payload dto.SubmitTestRequest) (dto.TestResultResponse, error)
	Result(ctx context.Context, userID, testID uint) (dto.TestResultResponse, error)
}

type testService struct {
	tests       repository.TestRepository
	submissions repository.TestSubmissionRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewTestService constructs the quiz service.
func NewTestService(testRepo repository.TestRepository, submissionRepo repository.TestSubmissionRepository, validate *validator.Validate, logger zerolog.Logger) TestService {
	return &testService{
		tests:       testRepo,
		submissions: submissionRepo,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "test_service").Logger(),
		now:         time.Now,
	}
}

func (s *testService) Create(ctx context.Context, creatorID uint, payload dto.CreateTestRequest) (dto.TestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestResponse{}, err
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	test := models.Test{
		Title:           strings.TrimSpace(payload.Title),
		Description:     s.sanitizer.Sanitize(payload.Description),
		Collection:      strings.TrimSpace(payload.Collection),
		Category:        strings.TrimSpace(payload.Category),
		Language:        strings.ToLower(strings.TrimSpace(payload.Language)),
		AvailableFrom:   payload.AvailableFrom,
		AvailableTo:     payload.AvailableTo,
		DurationMinutes: payload.DurationMinutes,
		IsActive:        isActive,
		CreatedByID:     creatorID,
	}

	for i, question := range payload.Questions {
		test.Questions = append(test.Questions, models.MCQ{
			Question:      question.Question,
			Options:       dto.MarshalOptions(question.Options),
			CorrectOption: question.CorrectOption,
			Points:        question.Points,
			Position:      i,
		})
	}

	if err := s.tests.Create(ctx, &test); err != nil {
		return dto.TestResponse{}, err
	}

	s.logger.Info().Uint("test_id", test.ID).Int("questions", len(test.Questions)).Msg("test created")
	return dto.NewTestResponse(test, true, true), nil
}

func (s *testService) Update(ctx context.Context, id uint, payload dto.UpdateTestRequest) (dto.TestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestResponse{}, err
	}

	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrTestNotFound
		}
		return dto.TestResponse{}, err
	}

	if payload.Title != "" {
		test.Title = strings.TrimSpace(payload.Title)
	}
	if payload.Description != "" {
		test.Description = s.sanitizer.Sanitize(payload.Description)
	}
	if payload.Collection != "" {
		test.Collection = strings.TrimSpace(payload.Collection)
	}
	if payload.Category != "" {
		test.Category = strings.TrimSpace(payload.Category)
	}
	if payload.Language != "" {
		test.Language = strings.ToLower(strings.TrimSpace(payload.Language))
	}
	if payload.AvailableFrom != nil {
		test.AvailableFrom = payload.AvailableFrom
	}
	if payload.AvailableTo != nil {
		test.AvailableTo = payload.AvailableTo
	}
	if payload.DurationMinutes != nil {
		test.DurationMinutes = *payload.DurationMinutes
	}
	if payload.IsActive != nil {
		test.IsActive = *payload.IsActive
	}

	// Save without the association so question replacement stays explicit.
	test.Questions = nil
	if err := s.tests.Update(ctx, &test); err != nil {
		return dto.TestResponse{}, err
	}

	if len(payload.Questions) > 0 {
		questions := make([]models.MCQ, 0, len(payload.Questions))
		for _, question := range payload.Questions {
			questions = append(questions, models.MCQ{
				Question:      question.Question,
				Options:       dto.MarshalOptions(question.Options),
				CorrectOption: question.CorrectOption,
				Points:        question.Points,
			})
		}
		if err := s.tests.ReplaceQuestions(ctx, test.ID, questions); err != nil {
			return dto.TestResponse{}, err
		}
	}

	updated, err := s.tests.GetByID(ctx, test.ID)
	if err != nil {
		return dto.TestResponse{}, err
	}

	return dto.NewTestResponse(updated, true, true), nil
}

func (s *testService) Delete(ctx context.Context, id uint) error {
	if _, err := s.tests.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTestNotFound
		}
		return err
	}
	return s.tests.Delete(ctx, id)
}

func (s *testService) Get(ctx context.Context, id uint, forAdmin bool) (dto.TestResponse, error) {
	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrTestNotFound
		}
		return dto.TestResponse{}, err
	}

	if !forAdmin && !test.IsAvailableAt(s.now()) {
		return dto.TestResponse{}, ErrTestNotAvailable
	}

	return dto.NewTestResponse(test, forAdmin, true), nil
}

func (s *testService) List(ctx context.Context, filter TestFilter, forAdmin bool) (dto.TestListResponse, error) {
	offset, limit := pageWindow(filter.Page, filter.PageSize)
	tests, total, err := s.tests.List(ctx, repository.TestQuery{
		Collection: filter.Collection,
		Category:   filter.Category,
		Language:   filter.Language,
		ActiveOnly: !forAdmin,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return dto.TestListResponse{}, err
	}

	now := s.now()
	responses := make([]dto.TestResponse, 0, len(tests))
	for _, test := range tests {
		if !forAdmin && !test.IsAvailableAt(now) {
			continue
		}
		responses = append(responses, dto.NewTestResponse(test, forAdmin, false))
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}

	return dto.TestListResponse{
		Tests: responses,
		Meta:  dto.ListMeta{Total: total, Page: page, PageSize: limit},
	}, nil
}

func (s *testService) SubmitAnswers(ctx context.Context, userID, testID uint, payload dto.SubmitTestRequest) (dto.TestResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestResultResponse{}, err
	}

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResultResponse{}, ErrTestNotFound
		}
		return dto.TestResultResponse{}, err
	}

	if !test.IsAvailableAt(s.now()) {
		return dto.TestResultResponse{}, ErrTestNotAvailable
	}

	exists, err := s.submissions.ExistsForUser(ctx, testID, userID)
	if err != nil {
		return dto.TestResultResponse{}, err
	}
	if exists {
		return dto.TestResultResponse{}, ErrTestAlreadySubmitted
	}

	questionByID := make(map[uint]models.MCQ, len(test.Questions))
	for _, question := range test.Questions {
		questionByID[question.ID] = question
	}

	submission := models.TestSubmission{
		TestID:         testID,
		UserID:         userID,
		TotalQuestions: len(test.Questions),
		Status:         models.TestSubmissionStatusSubmitted,
		SubmittedAt:    s.now(),
	}

	correct := 0
	for _, answer := range payload.Answers {
		question, ok := questionByID[answer.MCQID]
		if !ok {
			// Answers for questions outside this test are ignored.
			continue
		}
		isCorrect := answer.SelectedOption == question.CorrectOption
		if isCorrect {
			correct++
		}
		submission.Answers = append(submission.Answers, models.MCQAnswer{
			MCQID:          answer.MCQID,
			SelectedOption: answer.SelectedOption,
			IsCorrect:      isCorrect,
		})
	}

	submission.CorrectCount = correct
	if submission.TotalQuestions > 0 {
		submission.Score = int(math.Round(float64(correct) / float64(submission.TotalQuestions) * 100))
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.TestResultResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("test_id", testID).
		Int("score", submission.Score).
		Msg("test submitted")

	return dto.NewTestResultResponse(submission), nil
}

func (s *testService) Result(ctx context.Context, userID, testID uint) (dto.TestResultResponse, error) {
	submission, err := s.submissions.GetForUser(ctx, testID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResultResponse{}, ErrTestResultNotFound
		}
		return dto.TestResultResponse{}, err
	}
	return dto.NewTestResultResponse(submission), nil
}

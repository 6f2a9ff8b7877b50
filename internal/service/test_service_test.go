package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/dto"
	"github.com/zenithcode/zenith-api/internal/models"
	"github.com/zenithcode/zenith-api/internal/repository"
)

type stubTestRepo struct {
	test    models.Test
	created *models.Test
	updated *models.Test
	err     error
}

func (s *stubTestRepo) Create(ctx context.Context, test *models.Test) error {
	if s.err != nil {
		return s.err
	}
	if test.ID == 0 {
		test.ID = 1
	}
	clone := *test
	s.created = &clone
	s.test = clone
	return nil
}

func (s *stubTestRepo) Update(ctx context.Context, test *models.Test) error {
	if s.err != nil {
		return s.err
	}
	clone := *test
	s.updated = &clone
	return nil
}

func (s *stubTestRepo) Delete(ctx context.Context, id uint) error {
	return s.err
}

func (s *stubTestRepo) GetByID(ctx context.Context, id uint) (models.Test, error) {
	if s.err != nil {
		return models.Test{}, s.err
	}
	if s.test.ID == 0 || s.test.ID != id {
		return models.Test{}, gorm.ErrRecordNotFound
	}
	return s.test, nil
}

func (s *stubTestRepo) List(ctx context.Context, query repository.TestQuery) ([]models.Test, int64, error) {
	if s.test.ID == 0 {
		return nil, 0, nil
	}
	return []models.Test{s.test}, 1, nil
}

func (s *stubTestRepo) ReplaceQuestions(ctx context.Context, testID uint, questions []models.MCQ) error {
	return s.err
}

type stubTestSubmissionRepo struct {
	stored  models.TestSubmission
	created *models.TestSubmission
	exists  bool
	err     error
}

func (s *stubTestSubmissionRepo) Create(ctx context.Context, submission *models.TestSubmission) error {
	if s.err != nil {
		return s.err
	}
	if submission.ID == 0 {
		submission.ID = 1
	}
	clone := *submission
	s.created = &clone
	s.stored = clone
	return nil
}

func (s *stubTestSubmissionRepo) GetForUser(ctx context.Context, testID, userID uint) (models.TestSubmission, error) {
	if s.err != nil {
		return models.TestSubmission{}, s.err
	}
	if s.stored.ID == 0 {
		return models.TestSubmission{}, gorm.ErrRecordNotFound
	}
	return s.stored, nil
}

func (s *stubTestSubmissionRepo) ExistsForUser(ctx context.Context, testID, userID uint) (bool, error) {
	return s.exists, s.err
}

func newQuizFixture() models.Test {
	return models.Test{
		ID:       1,
		Title:    "Go Basics",
		Category: "fundamentals",
		Language: "go",
		IsActive: true,
		Questions: []models.MCQ{
			{ID: 10, TestID: 1, Question: "Q1", Options: dto.MarshalOptions([]string{"a", "b"}), CorrectOption: 0, Points: 1},
			{ID: 11, TestID: 1, Question: "Q2", Options: dto.MarshalOptions([]string{"a", "b"}), CorrectOption: 1, Points: 1},
			{ID: 12, TestID: 1, Question: "Q3", Options: dto.MarshalOptions([]string{"a", "b"}), CorrectOption: 1, Points: 1},
		},
	}
}

func newQuizService(tests *stubTestRepo, submissions *stubTestSubmissionRepo) TestService {
	return NewTestService(tests, submissions, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestTestServiceGradesByExactMatch(t *testing.T) {
	tests := &stubTestRepo{test: newQuizFixture()}
	submissions := &stubTestSubmissionRepo{}
	svc := newQuizService(tests, submissions)

	result, err := svc.SubmitAnswers(context.Background(), 7, 1, dto.SubmitTestRequest{
		Answers: []dto.MCQAnswerInput{
			{MCQID: 10, SelectedOption: 0},
			{MCQID: 11, SelectedOption: 0},
			{MCQID: 999, SelectedOption: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.CorrectCount)
	require.Equal(t, 3, result.TotalQuestions)
	// round(1/3 * 100)
	require.Equal(t, 33, result.Score)
	require.Len(t, result.Answers, 2)
	require.True(t, result.Answers[0].IsCorrect)
	require.False(t, result.Answers[1].IsCorrect)
	require.Equal(t, models.TestSubmissionStatusSubmitted, submissions.created.Status)
}

func TestTestServiceRejectsSecondAttempt(t *testing.T) {
	tests := &stubTestRepo{test: newQuizFixture()}
	submissions := &stubTestSubmissionRepo{exists: true}
	svc := newQuizService(tests, submissions)

	_, err := svc.SubmitAnswers(context.Background(), 7, 1, dto.SubmitTestRequest{
		Answers: []dto.MCQAnswerInput{{MCQID: 10, SelectedOption: 0}},
	})
	require.ErrorIs(t, err, ErrTestAlreadySubmitted)
	require.Nil(t, submissions.created)
}

func TestTestServiceEnforcesAvailabilityWindow(t *testing.T) {
	opensAt := time.Now().Add(time.Hour)
	quiz := newQuizFixture()
	quiz.AvailableFrom = &opensAt
	tests := &stubTestRepo{test: quiz}
	svc := newQuizService(tests, &stubTestSubmissionRepo{})

	_, err := svc.SubmitAnswers(context.Background(), 7, 1, dto.SubmitTestRequest{
		Answers: []dto.MCQAnswerInput{{MCQID: 10, SelectedOption: 0}},
	})
	require.ErrorIs(t, err, ErrTestNotAvailable)

	_, err = svc.Get(context.Background(), 1, false)
	require.ErrorIs(t, err, ErrTestNotAvailable)

	// Admin reads bypass the window.
	response, err := svc.Get(context.Background(), 1, true)
	require.NoError(t, err)
	require.Equal(t, uint(1), response.ID)
}

func TestTestServiceHidesAnswerKeyFromStudents(t *testing.T) {
	tests := &stubTestRepo{test: newQuizFixture()}
	svc := newQuizService(tests, &stubTestSubmissionRepo{})

	student, err := svc.Get(context.Background(), 1, false)
	require.NoError(t, err)
	require.Len(t, student.Questions, 3)
	for _, question := range student.Questions {
		require.Nil(t, question.CorrectOption)
	}

	admin, err := svc.Get(context.Background(), 1, true)
	require.NoError(t, err)
	require.NotNil(t, admin.Questions[1].CorrectOption)
	require.Equal(t, 1, *admin.Questions[1].CorrectOption)
}

func TestTestServiceCreateSanitizesDescription(t *testing.T) {
	tests := &stubTestRepo{}
	svc := newQuizService(tests, &stubTestSubmissionRepo{})

	response, err := svc.Create(context.Background(), 1, dto.CreateTestRequest{
		Title:       "XSS Quiz",
		Description: `hello <script>alert("x")</script>`,
		Category:    "security",
		Language:    "go",
		Questions: []dto.MCQInput{
			{Question: "Q1", Options: []string{"a", "b"}, CorrectOption: 0, Points: 1},
		},
	})
	require.NoError(t, err)
	require.NotContains(t, tests.created.Description, "<script>")
	require.Len(t, response.Questions, 1)
}

func TestTestServiceResultNotFound(t *testing.T) {
	svc := newQuizService(&stubTestRepo{test: newQuizFixture()}, &stubTestSubmissionRepo{})

	_, err := svc.Result(context.Background(), 7, 1)
	require.ErrorIs(t, err, ErrTestResultNotFound)
}

func TestTestServiceSubmitUnknownTest(t *testing.T) {
	svc := newQuizService(&stubTestRepo{}, &stubTestSubmissionRepo{})

	_, err := svc.SubmitAnswers(context.Background(), 7, 9, dto.SubmitTestRequest{
		Answers: []dto.MCQAnswerInput{{MCQID: 10, SelectedOption: 0}},
	})
	require.ErrorIs(t, err, ErrTestNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zenithcode/zenith-api/internal/dto"
	"github.com/zenithcode/zenith-api/internal/models"
)

func newProblemTestService(problems *stubProblemRepo) ProblemService {
	return NewProblemService(problems, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestProblemServiceCreateSanitizesAndNormalizes(t *testing.T) {
	problems := &stubProblemRepo{}
	svc := newProblemTestService(problems)

	response, err := svc.Create(context.Background(), 2, dto.CreateProblemRequest{
		Title:       "  Two Sum  ",
		Description: `Find the pair. <script>alert("x")</script>`,
		Difficulty:  "level1",
		Category:    "arrays",
		Language:    "Python",
		Tags:        []string{" arrays ", "", "hashmap"},
		TestCases: []dto.TestCaseInput{
			{Input: "1 2", Output: "3"},
			{Input: "4 5", Output: "9", IsHidden: true},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Two Sum", problems.problem.Title)
	require.NotContains(t, problems.problem.Description, "<script>")
	require.Equal(t, "python", problems.problem.Language)
	require.Equal(t, "arrays,hashmap", problems.problem.Tags)
	require.True(t, problems.problem.IsActive)
	require.Equal(t, 1, problems.problem.TestCases[1].Position)
	require.Equal(t, []string{"arrays", "hashmap"}, response.Tags)
}

func TestProblemServiceGetHidesSecretsFromStudents(t *testing.T) {
	problem := newTestProblem()
	problem.Solution = "return a + b"
	problems := &stubProblemRepo{problem: problem}
	svc := newProblemTestService(problems)

	student, err := svc.Get(context.Background(), 1, false)
	require.NoError(t, err)
	require.Len(t, student.TestCases, 1)
	require.Empty(t, student.Solution)

	admin, err := svc.Get(context.Background(), 1, true)
	require.NoError(t, err)
	require.Len(t, admin.TestCases, 2)
	require.Equal(t, "return a + b", admin.Solution)
}

func TestProblemServiceGetHidesInactiveFromStudents(t *testing.T) {
	problem := newTestProblem()
	problem.IsActive = false
	problems := &stubProblemRepo{problem: problem}
	svc := newProblemTestService(problems)

	_, err := svc.Get(context.Background(), 1, false)
	require.ErrorIs(t, err, ErrProblemNotFound)

	_, err = svc.Get(context.Background(), 1, true)
	require.NoError(t, err)
}

func TestProblemServiceUpdateUnknownProblem(t *testing.T) {
	svc := newProblemTestService(&stubProblemRepo{})

	_, err := svc.Update(context.Background(), 42, dto.UpdateProblemRequest{Title: "Renamed"})
	require.ErrorIs(t, err, ErrProblemNotFound)
}

func TestProblemServiceDeleteUnknownProblem(t *testing.T) {
	svc := newProblemTestService(&stubProblemRepo{})

	err := svc.Delete(context.Background(), 42)
	require.ErrorIs(t, err, ErrProblemNotFound)
}

func TestProblemServiceCreateRejectsInvalidDifficulty(t *testing.T) {
	svc := newProblemTestService(&stubProblemRepo{})

	_, err := svc.Create(context.Background(), 2, dto.CreateProblemRequest{
		Title:       "Bad",
		Description: "d",
		Difficulty:  "impossible",
		Category:    "arrays",
		Language:    "python",
		TestCases:   []dto.TestCaseInput{{Output: "1"}},
	})
	require.Error(t, err)
	require.True(t, isValidationErr(err))
}

func isValidationErr(err error) bool {
	_, ok := err.(validator.ValidationErrors)
	return ok
}

func TestProblemServiceListStudentDefaultsToActive(t *testing.T) {
	problems := &stubProblemRepo{problems: []models.Problem{newTestProblem()}}
	svc := newProblemTestService(problems)

	listing, err := svc.List(context.Background(), ProblemFilter{Page: 0, PageSize: 0}, false)
	require.NoError(t, err)
	require.Len(t, listing.Problems, 1)
	require.Equal(t, 1, listing.Meta.Page)
	require.Equal(t, 20, listing.Meta.PageSize)
}

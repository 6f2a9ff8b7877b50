package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/models"
)

func levelTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return setupTestDB(t,
		&models.Problem{},
		&models.TestCase{},
		&models.Submission{},
		&models.LevelSubmission{},
		&models.LevelProblemSubmission{},
	)
}

func TestLevelSubmissionRepositoryFindForUserMatchesTuple(t *testing.T) {
	db := levelTestDB(t)
	repo := NewLevelSubmissionRepository(db)
	ctx := context.Background()

	session := models.LevelSubmission{
		UserID: 7, Level: "level1", Category: "arrays", Language: "python",
		Status: models.LevelStatusInProgress, StartTime: time.Now(), TimeAllowedSec: 1200, TotalProblems: 2,
	}
	require.NoError(t, repo.Create(ctx, &session))

	found, err := repo.FindForUser(ctx, 7, "level1", "arrays", "PYTHON", []string{models.LevelStatusInProgress})
	require.NoError(t, err)
	require.Equal(t, session.ID, found.ID)

	_, err = repo.FindForUser(ctx, 7, "level1", "graphs", "python", []string{models.LevelStatusInProgress})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindForUser(ctx, 8, "level1", "arrays", "python", []string{models.LevelStatusInProgress})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindForUser(ctx, 7, "level1", "arrays", "python", []string{models.LevelStatusSubmitted})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLevelSubmissionRepositoryLatestForUserPreloadsOrdered(t *testing.T) {
	db := levelTestDB(t)
	repo := NewLevelSubmissionRepository(db)
	ctx := context.Background()

	problemA := models.Problem{Title: "A", Description: "d", Difficulty: "level1", Category: "arrays", Language: "python", IsActive: true}
	problemB := models.Problem{Title: "B", Description: "d", Difficulty: "level1", Category: "arrays", Language: "python", IsActive: true}
	require.NoError(t, db.Create(&problemA).Error)
	require.NoError(t, db.Create(&problemB).Error)

	session := models.LevelSubmission{
		UserID: 7, Level: "level1", Category: "arrays", Language: "python",
		Status: models.LevelStatusSubmitted, StartTime: time.Now(), TimeAllowedSec: 1200, TotalProblems: 2,
	}
	require.NoError(t, repo.Create(ctx, &session))

	subA := models.Submission{UserID: 7, ProblemID: problemA.ID, Language: "python", Status: models.SubmissionStatusPending, PassFailStatus: models.PassFailPassed, IsLevelSubmission: true}
	subB := models.Submission{UserID: 7, ProblemID: problemB.ID, Language: "python", Status: models.SubmissionStatusPending, PassFailStatus: models.PassFailFailed, IsLevelSubmission: true}
	require.NoError(t, db.Create(&subA).Error)
	require.NoError(t, db.Create(&subB).Error)

	// Insert out of order; reads must come back by position.
	require.NoError(t, repo.AppendProblemSubmission(ctx, &models.LevelProblemSubmission{
		LevelSubmissionID: session.ID, ProblemID: problemB.ID, SubmissionID: subB.ID, Position: 1,
	}))
	require.NoError(t, repo.AppendProblemSubmission(ctx, &models.LevelProblemSubmission{
		LevelSubmissionID: session.ID, ProblemID: problemA.ID, SubmissionID: subA.ID, Position: 0,
	}))

	latest, err := repo.LatestForUser(ctx, 7, "level1", "arrays", "python")
	require.NoError(t, err)
	require.Len(t, latest.ProblemSubmissions, 2)
	require.Equal(t, problemA.ID, latest.ProblemSubmissions[0].ProblemID)
	require.Equal(t, "A", latest.ProblemSubmissions[0].Problem.Title)
	require.Equal(t, models.PassFailPassed, latest.ProblemSubmissions[0].Submission.PassFailStatus)
}

func TestLevelSubmissionRepositoryListFiltersByStatus(t *testing.T) {
	db := levelTestDB(t)
	repo := NewLevelSubmissionRepository(db)
	ctx := context.Background()

	open := models.LevelSubmission{UserID: 7, Level: "level1", Category: "arrays", Language: "python", Status: models.LevelStatusInProgress, StartTime: time.Now()}
	done := models.LevelSubmission{UserID: 7, Level: "level2", Category: "graphs", Language: "python", Status: models.LevelStatusSubmitted, StartTime: time.Now()}
	other := models.LevelSubmission{UserID: 9, Level: "level1", Category: "arrays", Language: "python", Status: models.LevelStatusInProgress, StartTime: time.Now()}
	require.NoError(t, repo.Create(ctx, &open))
	require.NoError(t, repo.Create(ctx, &done))
	require.NoError(t, repo.Create(ctx, &other))

	sessions, total, err := repo.List(ctx, LevelSubmissionQuery{UserID: 7})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, sessions, 2)

	submitted, total, err := repo.List(ctx, LevelSubmissionQuery{UserID: 7, Status: models.LevelStatusSubmitted})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "level2", submitted[0].Level)
}

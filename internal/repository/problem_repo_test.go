package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func TestProblemRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t, &models.Problem{}, &models.TestCase{})
	repo := NewProblemRepository(db)
	ctx := context.Background()

	seed := []models.Problem{
		{Title: "Two Sum", Description: "pairs", Difficulty: "level1", Category: "arrays", Language: "python", Tags: "arrays,hashmap", IsActive: true},
		{Title: "Graph Walk", Description: "bfs", Difficulty: "level2", Category: "graphs", Language: "python", Tags: "graphs", IsActive: true},
		{Title: "Hidden Gem", Description: "draft", Difficulty: "level1", Category: "arrays", Language: "python", IsActive: false},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	active, total, err := repo.List(ctx, ProblemQuery{ActiveOnly: true})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, active, 2)

	level1, total, err := repo.List(ctx, ProblemQuery{Difficulty: "level1", ActiveOnly: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Two Sum", level1[0].Title)

	tagged, _, err := repo.List(ctx, ProblemQuery{Tags: []string{"hashmap"}})
	require.NoError(t, err)
	require.Len(t, tagged, 1)

	searched, _, err := repo.List(ctx, ProblemQuery{Search: "graph"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	require.Equal(t, "Graph Walk", searched[0].Title)
}

func TestProblemRepositoryListActiveForLevel(t *testing.T) {
	db := setupTestDB(t, &models.Problem{}, &models.TestCase{})
	repo := NewProblemRepository(db)
	ctx := context.Background()

	seed := []models.Problem{
		{Title: "A", Description: "d", Difficulty: "level1", Category: "arrays", Language: "Python", IsActive: true},
		{Title: "B", Description: "d", Difficulty: "level1", Category: "arrays", Language: "python", IsActive: true},
		{Title: "C", Description: "d", Difficulty: "level1", Category: "arrays", Language: "python", IsActive: false},
		{Title: "D", Description: "d", Difficulty: "level2", Category: "arrays", Language: "python", IsActive: true},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	problems, err := repo.ListActiveForLevel(ctx, "level1", "arrays", "PYTHON")
	require.NoError(t, err)
	require.Len(t, problems, 2)
	require.Equal(t, "A", problems[0].Title)
}

func TestProblemRepositoryReplaceTestCases(t *testing.T) {
	db := setupTestDB(t, &models.Problem{}, &models.TestCase{})
	repo := NewProblemRepository(db)
	ctx := context.Background()

	problem := models.Problem{
		Title: "Two Sum", Description: "d", Difficulty: "level1", Category: "arrays", Language: "python", IsActive: true,
		TestCases: []models.TestCase{
			{Input: "1", Output: "1"},
			{Input: "2", Output: "2", IsHidden: true},
		},
	}
	require.NoError(t, repo.Create(ctx, &problem))

	replacement := []models.TestCase{
		{Input: "9", Output: "9"},
		{Input: "8", Output: "8"},
		{Input: "7", Output: "7", IsHidden: true},
	}
	require.NoError(t, repo.ReplaceTestCases(ctx, problem.ID, replacement))

	reloaded, err := repo.GetByIDWithTestCases(ctx, problem.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.TestCases, 3)
	require.Equal(t, "9", reloaded.TestCases[0].Input)
	require.Equal(t, 2, reloaded.TestCases[2].Position)
}

func TestProblemRepositoryCountByCategory(t *testing.T) {
	db := setupTestDB(t, &models.Problem{}, &models.TestCase{})
	repo := NewProblemRepository(db)
	ctx := context.Background()

	seed := []models.Problem{
		{Title: "A", Description: "d", Difficulty: "level1", Category: "arrays", Language: "python", IsActive: true},
		{Title: "B", Description: "d", Difficulty: "level1", Category: "arrays", Language: "python", IsActive: true},
		{Title: "C", Description: "d", Difficulty: "level2", Category: "arrays", Language: "python", IsActive: true},
		{Title: "D", Description: "d", Difficulty: "level1", Category: "graphs", Language: "python", IsActive: false},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	counts, err := repo.CountByCategory(ctx, true)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	byKey := make(map[string]int64, len(counts))
	for _, row := range counts {
		require.Equal(t, "arrays", row.Category)
		byKey[row.Difficulty] = row.Count
	}
	require.Equal(t, int64(2), byKey["level1"])
	require.Equal(t, int64(1), byKey["level2"])
}

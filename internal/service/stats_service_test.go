package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zenithcode/zenith-api/internal/repository"
)

type countingProblemRepo struct {
	*stubProblemRepo
	counts []repository.CategoryCount
	calls  int
}

func (c *countingProblemRepo) CountByCategory(ctx context.Context, activeOnly bool) ([]repository.CategoryCount, error) {
	c.calls++
	return c.counts, nil
}

type countingSubmissionRepo struct {
	*stubSubmissionRepo
	solved int64
	calls  int
}

func (c *countingSubmissionRepo) CountAcceptedByUser(ctx context.Context, userID uint) (int64, error) {
	c.calls++
	return c.solved, nil
}

func TestStatsServiceCachesCategoryStats(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	problems := &countingProblemRepo{
		stubProblemRepo: &stubProblemRepo{},
		counts: []repository.CategoryCount{
			{Category: "arrays", Difficulty: "level1", Count: 4},
			{Category: "graphs", Difficulty: "level2", Count: 2},
		},
	}
	submissions := &countingSubmissionRepo{stubSubmissionRepo: &stubSubmissionRepo{}, solved: 3}
	svc := NewStatsService(problems, submissions, cache, time.Minute, zerolog.Nop())

	stats, err := svc.CategoryStats(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, stats.Categories, 2)
	require.Equal(t, int64(3), stats.SolvedCount)
	require.Equal(t, 1, problems.calls)

	// Second read is served from the cache.
	stats, err = svc.CategoryStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.SolvedCount)
	require.Equal(t, 1, problems.calls)
	require.Equal(t, 1, submissions.calls)
}

func TestStatsServiceWorksWithoutCache(t *testing.T) {
	problems := &countingProblemRepo{
		stubProblemRepo: &stubProblemRepo{},
		counts:          []repository.CategoryCount{{Category: "arrays", Difficulty: "level1", Count: 1}},
	}
	submissions := &countingSubmissionRepo{stubSubmissionRepo: &stubSubmissionRepo{}, solved: 1}
	svc := NewStatsService(problems, submissions, nil, time.Minute, zerolog.Nop())

	stats, err := svc.CategoryStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.SolvedCount)

	_, err = svc.CategoryStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 2, problems.calls)
}

func TestStatsServiceExpiredCacheRecomputes(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	problems := &countingProblemRepo{
		stubProblemRepo: &stubProblemRepo{},
		counts:          []repository.CategoryCount{{Category: "arrays", Difficulty: "level1", Count: 1}},
	}
	submissions := &countingSubmissionRepo{stubSubmissionRepo: &stubSubmissionRepo{}}
	svc := NewStatsService(problems, submissions, cache, time.Second, zerolog.Nop())

	_, err = svc.CategoryStats(context.Background(), 7)
	require.NoError(t, err)

	mini.FastForward(2 * time.Second)

	_, err = svc.CategoryStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 2, problems.calls)
}

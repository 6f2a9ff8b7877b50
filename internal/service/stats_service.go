package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/zenithcode/zenith-api/internal/repository"
)

// CategoryStats is the reporting payload for the category listing endpoint.
type CategoryStats struct {
	Categories  []repository.CategoryCount `json:"categories"`
	SolvedCount int64                      `json:"solved_count"`
}

// StatsService serves read-only aggregations over problems and submissions.
type StatsService interface {
	CategoryStats(ctx context.Context, userID uint) (CategoryStats, error)
}

type statsService struct {
	problems    repository.ProblemRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewStatsService constructs the reporting service. The Redis client may be
// nil; caching is then skipped entirely.
func NewStatsService(problemRepo repository.ProblemRepository, submissionRepo repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		problems:    problemRepo,
		submissions: submissionRepo,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "stats_service").Logger(),
	}
}

func (s *statsService) CategoryStats(ctx context.Context, userID uint) (CategoryStats, error) {
	cacheKey := fmt.Sprintf("stats:categories:user:%d", userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var stats CategoryStats
			if unmarshalErr := json.Unmarshal([]byte(cached), &stats); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("category stats cache hit")
				return stats, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read stats cache")
		}
	}

	counts, err := s.problems.CountByCategory(ctx, true)
	if err != nil {
		return CategoryStats{}, err
	}

	solved, err := s.submissions.CountAcceptedByUser(ctx, userID)
	if err != nil {
		return CategoryStats{}, err
	}

	stats := CategoryStats{Categories: counts, SolvedCount: solved}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store stats cache")
			}
		}
	}

	return stats, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/dto"
	"github.com/zenithcode/zenith-api/internal/models"
	"github.com/zenithcode/zenith-api/internal/repository"
)

// ErrNoProblemsForLevel indicates no active problems match the tuple.
var ErrNoProblemsForLevel = errors.New("no problems found for the requested level")

// ErrLevelAlreadySubmitted indicates the session was already finalized.
var ErrLevelAlreadySubmitted = errors.New("level session has already been submitted")

// ErrInvalidLevel indicates the level path segment is not a known difficulty.
var ErrInvalidLevel = errors.New("invalid level")

// LevelSessionService orchestrates timed multi-problem level sessions.
type LevelSessionService interface {
	Start(ctx context.Context, userID uint, payload dto.StartLevelRequest) (dto.LevelSessionResponse, error)
	Submit(ctx context.Context, userID uint, level string, payload dto.SubmitLevelRequest) (dto.LevelSubmitSummary, error)
	Status(ctx context.Context, userID uint, level, language, category string) (dto.LevelSessionResponse, error)
	List(ctx context.Context, query repository.LevelSubmissionQuery) ([]dto.LevelSubmissionListItem, int64, error)
}

type levelSessionService struct {
	levels      repository.LevelSubmissionRepository
	submissions repository.SubmissionRepository
	problems    repository.ProblemRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLevelSessionService constructs the level session service.
func NewLevelSessionService(levelRepo repository.LevelSubmissionRepository, submissionRepo repository.SubmissionRepository, problemRepo repository.ProblemRepository, validate *validator.Validate, logger zerolog.Logger) LevelSessionService {
	return &levelSessionService{
		levels:      levelRepo,
		submissions: submissionRepo,
		problems:    problemRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "level_session_service").Logger(),
		now:         time.Now,
	}
}

func (s *levelSessionService) Start(ctx context.Context, userID uint, payload dto.StartLevelRequest) (dto.LevelSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LevelSessionResponse{}, err
	}

	problems, err := s.problems.ListActiveForLevel(ctx, payload.Level, payload.Category, payload.Language)
	if err != nil {
		return dto.LevelSessionResponse{}, err
	}
	if len(problems) == 0 {
		return dto.LevelSessionResponse{}, ErrNoProblemsForLevel
	}

	// A started-but-unused session is reused rather than duplicated.
	existing, err := s.levels.FindForUser(ctx, userID, payload.Level, payload.Category, payload.Language, []string{models.LevelStatusInProgress})
	if err == nil && !existing.IsFinalized() {
		return dto.NewLevelSessionResponse(existing, s.now()), nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.LevelSessionResponse{}, err
	}

	session := models.LevelSubmission{
		UserID:         userID,
		Level:          payload.Level,
		Category:       payload.Category,
		Language:       payload.Language,
		Status:         models.LevelStatusInProgress,
		StartTime:      s.now(),
		TimeAllowedSec: totalBudgetSeconds(problems),
		TotalProblems:  len(problems),
	}

	if err := s.levels.Create(ctx, &session); err != nil {
		return dto.LevelSessionResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Str("level", payload.Level).
		Str("category", payload.Category).
		Int("total_problems", session.TotalProblems).
		Int("time_allowed_sec", session.TimeAllowedSec).
		Msg("level session started")

	return dto.NewLevelSessionResponse(session, s.now()), nil
}

func (s *levelSessionService) Submit(ctx context.Context, userID uint, level string, payload dto.SubmitLevelRequest) (dto.LevelSubmitSummary, error) {
	if !models.IsValidDifficulty(level) {
		return dto.LevelSubmitSummary{}, ErrInvalidLevel
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.LevelSubmitSummary{}, err
	}

	problems, err := s.problems.ListActiveForLevel(ctx, level, payload.Category, payload.Language)
	if err != nil {
		return dto.LevelSubmitSummary{}, err
	}
	if len(problems) == 0 {
		return dto.LevelSubmitSummary{}, ErrNoProblemsForLevel
	}

	problemSet := make(map[uint]models.Problem, len(problems))
	for _, problem := range problems {
		problemSet[problem.ID] = problem
	}

	session, err := s.resolveSession(ctx, userID, level, payload, problems)
	if err != nil {
		return dto.LevelSubmitSummary{}, err
	}

	summary := dto.LevelSubmitSummary{
		LevelSubmissionID: session.ID,
		TotalProblems:     session.TotalProblems,
		TimeAllowedSec:    session.TimeAllowedSec,
	}

	allSucceeded := true
	position := 0
	for _, entry := range payload.ProblemSubmissions {
		// Entries referencing problems outside the resolved set are
		// silently skipped.
		if _, ok := problemSet[entry.ProblemID]; !ok {
			continue
		}
		summary.Attempted++

		language := entry.Language
		if language == "" {
			language = payload.Language
		}

		// Level submissions are stored pending; grading is deferred and the
		// coarse pass/fail signal is taken from the client-reported status.
		submission := models.Submission{
			UserID:            userID,
			ProblemID:         entry.ProblemID,
			Code:              entry.Code,
			Language:          language,
			Status:            models.SubmissionStatusPending,
			PassFailStatus:    models.NormalizePassFail(entry.Status),
			IsLevelSubmission: true,
			LevelSubmissionID: &session.ID,
			LevelInfo: models.LevelInfo{
				Level:    level,
				Category: payload.Category,
				Language: payload.Language,
				Order:    position,
			},
		}

		if err := s.submissions.Create(ctx, &submission); err != nil {
			allSucceeded = false
			summary.Results = append(summary.Results, dto.LevelProblemOutcome{
				ProblemID: entry.ProblemID,
				Status:    "failed",
				Error:     err.Error(),
			})
			s.logger.Error().Err(err).Uint("problem_id", entry.ProblemID).Msg("failed to create level submission entry")
			position++
			continue
		}

		link := models.LevelProblemSubmission{
			LevelSubmissionID: session.ID,
			ProblemID:         entry.ProblemID,
			SubmissionID:      submission.ID,
			Position:          position,
		}
		if err := s.levels.AppendProblemSubmission(ctx, &link); err != nil {
			allSucceeded = false
			summary.Results = append(summary.Results, dto.LevelProblemOutcome{
				ProblemID:    entry.ProblemID,
				SubmissionID: submission.ID,
				Status:       "failed",
				Error:        err.Error(),
			})
			position++
			continue
		}

		session.ProblemSubmissions = append(session.ProblemSubmissions, link)
		summary.Submitted++
		summary.Results = append(summary.Results, dto.LevelProblemOutcome{
			ProblemID:    entry.ProblemID,
			SubmissionID: submission.ID,
			Status:       "submitted",
		})
		position++
	}

	// Any failed per-problem creation leaves the session in_progress; the
	// failures are reported per entry rather than aborting the request.
	if allSucceeded && summary.Submitted > 0 {
		now := s.now()
		session.Status = models.LevelStatusSubmitted
		session.SubmitTime = &now
	}

	if err := s.levels.Save(ctx, &session); err != nil {
		return dto.LevelSubmitSummary{}, err
	}

	summary.Status = session.Status

	s.logger.Info().
		Uint("user_id", userID).
		Uint("level_submission_id", session.ID).
		Str("status", session.Status).
		Int("submitted", summary.Submitted).
		Int("attempted", summary.Attempted).
		Msg("level session submitted")

	return summary, nil
}

// resolveSession reuses an empty started session, rejects a finalized one,
// and otherwise creates a fresh in-progress record on the fly.
func (s *levelSessionService) resolveSession(ctx context.Context, userID uint, level string, payload dto.SubmitLevelRequest, problems []models.Problem) (models.LevelSubmission, error) {
	statuses := []string{models.LevelStatusInProgress, models.LevelStatusCompleted, models.LevelStatusSubmitted}
	existing, err := s.levels.FindForUser(ctx, userID, level, payload.Category, payload.Language, statuses)
	if err == nil {
		if existing.IsFinalized() {
			return models.LevelSubmission{}, ErrLevelAlreadySubmitted
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LevelSubmission{}, err
	}

	session := models.LevelSubmission{
		UserID:         userID,
		Level:          level,
		Category:       payload.Category,
		Language:       payload.Language,
		Status:         models.LevelStatusInProgress,
		StartTime:      s.now(),
		TimeAllowedSec: totalBudgetSeconds(problems),
		TotalProblems:  len(problems),
	}
	if err := s.levels.Create(ctx, &session); err != nil {
		return models.LevelSubmission{}, err
	}
	return session, nil
}

func (s *levelSessionService) Status(ctx context.Context, userID uint, level, language, category string) (dto.LevelSessionResponse, error) {
	if !models.IsValidDifficulty(level) {
		return dto.LevelSessionResponse{}, ErrInvalidLevel
	}

	session, err := s.levels.LatestForUser(ctx, userID, level, category, language)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LevelSessionResponse{Exists: false}, nil
		}
		return dto.LevelSessionResponse{}, err
	}

	return dto.NewLevelSessionResponse(session, s.now()), nil
}

func (s *levelSessionService) List(ctx context.Context, query repository.LevelSubmissionQuery) ([]dto.LevelSubmissionListItem, int64, error) {
	sessions, total, err := s.levels.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.LevelSubmissionListItem, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, dto.NewLevelSubmissionListItem(session))
	}
	return items, total, nil
}

// totalBudgetSeconds sums the per-problem time budgets at session start.
// The allowance is fixed at creation and never recomputed.
func totalBudgetSeconds(problems []models.Problem) int {
	minutes := 0
	for _, problem := range problems {
		minutes += problem.BudgetMinutes()
	}
	return minutes * 60
}

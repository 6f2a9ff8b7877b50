package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/models"
)

// LevelSubmissionQuery defines filters and pagination for session listings.
type LevelSubmissionQuery struct {
	UserID   uint
	Level    string
	Category string
	Language string
	Status   string
	Offset   int
	Limit    int
}

// LevelSubmissionRepository exposes persistence operations for level sessions.
type LevelSubmissionRepository interface {
	Create(ctx context.Context, session *models.LevelSubmission) error
	Save(ctx context.Context, session *models.LevelSubmission) error
	FindForUser(ctx context.Context, userID uint, level, category, language string, statuses []string) (models.LevelSubmission, error)
	LatestForUser(ctx context.Context, userID uint, level, category, language string) (models.LevelSubmission, error)
	List(ctx context.Context, query LevelSubmissionQuery) ([]models.LevelSubmission, int64, error)
	AppendProblemSubmission(ctx context.Context, link *models.LevelProblemSubmission) error
}

// NewLevelSubmissionRepository constructs a level submission repository.
func NewLevelSubmissionRepository(db *gorm.DB) LevelSubmissionRepository {
	return &levelSubmissionRepository{db: db}
}

type levelSubmissionRepository struct {
	db *gorm.DB
}

func (r *levelSubmissionRepository) Create(ctx context.Context, session *models.LevelSubmission) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *levelSubmissionRepository) Save(ctx context.Context, session *models.LevelSubmission) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *levelSubmissionRepository) tupleScope(userID uint, level, category, language string) *gorm.DB {
	return r.db.
		Where("user_id = ?", userID).
		Where("level = ?", strings.ToLower(level)).
		Where("category = ?", category).
		Where("LOWER(language) = ?", strings.ToLower(language))
}

func (r *levelSubmissionRepository) FindForUser(ctx context.Context, userID uint, level, category, language string, statuses []string) (models.LevelSubmission, error) {
	var session models.LevelSubmission
	db := r.tupleScope(userID, level, category, language).WithContext(ctx)
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}
	err := db.Preload("ProblemSubmissions").Order("created_at DESC").First(&session).Error
	if err != nil {
		return models.LevelSubmission{}, err
	}
	return session, nil
}

func (r *levelSubmissionRepository) LatestForUser(ctx context.Context, userID uint, level, category, language string) (models.LevelSubmission, error) {
	var session models.LevelSubmission
	err := r.tupleScope(userID, level, category, language).WithContext(ctx).
		Preload("ProblemSubmissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("ProblemSubmissions.Problem").
		Preload("ProblemSubmissions.Submission").
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return models.LevelSubmission{}, err
	}
	return session, nil
}

func (r *levelSubmissionRepository) List(ctx context.Context, query LevelSubmissionQuery) ([]models.LevelSubmission, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.LevelSubmission{}).Where("user_id = ?", query.UserID)

	if query.Level != "" {
		db = db.Where("level = ?", strings.ToLower(query.Level))
	}
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.Language != "" {
		db = db.Where("LOWER(language) = ?", strings.ToLower(query.Language))
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.Offset > 0 {
		db = db.Offset(query.Offset)
	}
	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}

	var sessions []models.LevelSubmission
	if err := db.Preload("ProblemSubmissions").Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *levelSubmissionRepository) AppendProblemSubmission(ctx context.Context, link *models.LevelProblemSubmission) error {
	return r.db.WithContext(ctx).Create(link).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/models"
)

// SubmissionQuery defines filters and pagination for submission listings.
type SubmissionQuery struct {
	UserID    *uint
	ProblemID *uint
	Status    string
	LevelOnly bool
	Offset    int
	Limit     int
}

// SubmissionRepository exposes persistence operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	List(ctx context.Context, query SubmissionQuery) ([]models.Submission, int64, error)
	Delete(ctx context.Context, id uint) error
	CountAcceptedByUser(ctx context.Context, userID uint) (int64, error)
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) List(ctx context.Context, query SubmissionQuery) ([]models.Submission, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Submission{})

	if query.UserID != nil {
		db = db.Where("user_id = ?", *query.UserID)
	}
	if query.ProblemID != nil {
		db = db.Where("problem_id = ?", *query.ProblemID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.LevelOnly {
		db = db.Where("is_level_submission = ?", true)
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

	var submissions []models.Submission
	if err := db.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Submission{}, id).Error
}

func (r *submissionRepository) CountAcceptedByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Where("status = ?", models.SubmissionStatusAccepted).
		Distinct("problem_id").
		Count(&count).Error
	return count, err
}

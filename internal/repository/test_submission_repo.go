package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/models"
)

// TestSubmissionRepository exposes persistence operations for quiz attempts.
type TestSubmissionRepository interface {
	Create(ctx context.Context, submission *models.TestSubmission) error
	GetForUser(ctx context.Context, testID, userID uint) (models.TestSubmission, error)
	ExistsForUser(ctx context.Context, testID, userID uint) (bool, error)
}

// NewTestSubmissionRepository constructs a quiz attempt repository.
func NewTestSubmissionRepository(db *gorm.DB) TestSubmissionRepository {
	return &testSubmissionRepository{db: db}
}

type testSubmissionRepository struct {
	db *gorm.DB
}

func (r *testSubmissionRepository) Create(ctx context.Context, submission *models.TestSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *testSubmissionRepository) GetForUser(ctx context.Context, testID, userID uint) (models.TestSubmission, error) {
	var submission models.TestSubmission
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("test_id = ? AND user_id = ?", testID, userID).
		First(&submission).Error
	if err != nil {
		return models.TestSubmission{}, err
	}
	return submission, nil
}

func (r *testSubmissionRepository) ExistsForUser(ctx context.Context, testID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TestSubmission{}).
		Where("test_id = ? AND user_id = ?", testID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

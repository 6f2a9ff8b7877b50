package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/models"
)

// TestQuery defines filters and pagination for quiz listings.
type TestQuery struct {
	Collection string
	Category   string
	Language   string
	ActiveOnly bool
	Offset     int
	Limit      int
}

// TestRepository exposes persistence operations for quizzes.
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	Update(ctx context.Context, test *models.Test) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (models.Test, error)
	List(ctx context.Context, query TestQuery) ([]models.Test, int64, error)
	ReplaceQuestions(ctx context.Context, testID uint, questions []models.MCQ) error
}

// NewTestRepository constructs a quiz repository.
func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

type testRepository struct {
	db *gorm.DB
}

func (r *testRepository) Create(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *testRepository) Update(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Save(test).Error
}

func (r *testRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Test{}, id).Error
}

func (r *testRepository) GetByID(ctx context.Context, id uint) (models.Test, error) {
	var test models.Test
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return models.Test{}, err
	}
	return test, nil
}

func (r *testRepository) List(ctx context.Context, query TestQuery) ([]models.Test, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Test{})

	if query.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if query.Collection != "" {
		db = db.Where("collection = ?", query.Collection)
	}
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.Language != "" {
		db = db.Where("LOWER(language) = ?", strings.ToLower(query.Language))
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

	var tests []models.Test
	if err := db.Order("created_at DESC").Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

func (r *testRepository) ReplaceQuestions(ctx context.Context, testID uint, questions []models.MCQ) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", testID).Delete(&models.MCQ{}).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].ID = 0
			questions[i].TestID = testID
			questions[i].Position = i
		}
		return tx.Create(&questions).Error
	})
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/models"
)

// ProblemQuery defines filters and pagination for problem listings.
type ProblemQuery struct {
	Difficulty string
	Category   string
	Language   string
	Tags       []string
	Search     string
	ActiveOnly bool
	Offset     int
	Limit      int
}

// CategoryCount is an aggregation row for the stats endpoints.
type CategoryCount struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Count      int64  `json:"count"`
}

// ProblemRepository exposes persistence operations for problems.
type ProblemRepository interface {
	Create(ctx context.Context, problem *models.Problem) error
	Update(ctx context.Context, problem *models.Problem) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (models.Problem, error)
	GetByIDWithTestCases(ctx context.Context, id uint) (models.Problem, error)
	List(ctx context.Context, query ProblemQuery) ([]models.Problem, int64, error)
	ListActiveForLevel(ctx context.Context, level, category, language string) ([]models.Problem, error)
	ReplaceTestCases(ctx context.Context, problemID uint, cases []models.TestCase) error
	CountByCategory(ctx context.Context, activeOnly bool) ([]CategoryCount, error)
}

// NewProblemRepository constructs a problem repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

type problemRepository struct {
	db *gorm.DB
}

func (r *problemRepository) Create(ctx context.Context, problem *models.Problem) error {
	return r.db.WithContext(ctx).Create(problem).Error
}

func (r *problemRepository) Update(ctx context.Context, problem *models.Problem) error {
	return r.db.WithContext(ctx).Save(problem).Error
}

func (r *problemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Problem{}, id).Error
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).First(&problem, id).Error; err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}

func (r *problemRepository) GetByIDWithTestCases(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	err := r.db.WithContext(ctx).
		Preload("TestCases", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&problem, id).Error
	if err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}

func (r *problemRepository) List(ctx context.Context, query ProblemQuery) ([]models.Problem, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Problem{})

	if query.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if query.Difficulty != "" {
		db = db.Where("difficulty = ?", strings.ToLower(query.Difficulty))
	}
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.Language != "" {
		db = db.Where("LOWER(language) = ?", strings.ToLower(query.Language))
	}
	if query.Search != "" {
		pattern := fmt.Sprintf("%%%s%%", strings.ToLower(query.Search))
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	for _, tag := range query.Tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		like := fmt.Sprintf("%%%s%%", strings.ToLower(trimmed))
		db = db.Where("LOWER(tags) LIKE ?", like)
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

	var problems []models.Problem
	if err := db.Order("created_at DESC").Find(&problems).Error; err != nil {
		return nil, 0, err
	}

	return problems, total, nil
}

func (r *problemRepository) ListActiveForLevel(ctx context.Context, level, category, language string) ([]models.Problem, error) {
	var problems []models.Problem
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("difficulty = ?", strings.ToLower(level)).
		Where("category = ?", category).
		Where("LOWER(language) = ?", strings.ToLower(language)).
		Order("id ASC").
		Find(&problems).Error
	if err != nil {
		return nil, err
	}
	return problems, nil
}

func (r *problemRepository) ReplaceTestCases(ctx context.Context, problemID uint, cases []models.TestCase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("problem_id = ?", problemID).Delete(&models.TestCase{}).Error; err != nil {
			return err
		}
		if len(cases) == 0 {
			return nil
		}
		for i := range cases {
			cases[i].ID = 0
			cases[i].ProblemID = problemID
			cases[i].Position = i
		}
		return tx.Create(&cases).Error
	})
}

func (r *problemRepository) CountByCategory(ctx context.Context, activeOnly bool) ([]CategoryCount, error) {
	db := r.db.WithContext(ctx).Model(&models.Problem{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	var counts []CategoryCount
	err := db.Select("category, difficulty, COUNT(*) as count").
		Group("category").
		Group("difficulty").
		Order("category ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

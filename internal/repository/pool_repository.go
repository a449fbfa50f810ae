package repository

import (
	"context"

	"gorm.io/gorm"

	"zkdex-backend/internal/models"
)

// PoolRepository handles database operations for swap pools
type PoolRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, pool *models.Pool) error
	GetByID(ctx context.Context, id string) (*models.Pool, error)
	Update(ctx context.Context, pool *models.Pool) error

	// Query methods
	GetByTokenPair(ctx context.Context, tokenA, tokenB string) (*models.Pool, error)
	List(ctx context.Context, page, pageSize int) ([]models.Pool, int64, error)
}

type poolRepository struct {
	db *gorm.DB
}

// NewPoolRepository creates a new pool repository
func NewPoolRepository(db *gorm.DB) PoolRepository {
	return &poolRepository{db: db}
}

func (r *poolRepository) Create(ctx context.Context, pool *models.Pool) error {
	return translate(r.db.WithContext(ctx).Create(pool).Error)
}

func (r *poolRepository) GetByID(ctx context.Context, id string) (*models.Pool, error) {
	var pool models.Pool
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pool).Error
	if err != nil {
		return nil, translate(err)
	}
	return &pool, nil
}

func (r *poolRepository) Update(ctx context.Context, pool *models.Pool) error {
	return translate(r.db.WithContext(ctx).Save(pool).Error)
}

func (r *poolRepository) GetByTokenPair(ctx context.Context, tokenA, tokenB string) (*models.Pool, error) {
	var pool models.Pool
	err := r.db.WithContext(ctx).
		Where("token_a = ? AND token_b = ?", tokenA, tokenB).
		First(&pool).Error
	if err != nil {
		return nil, translate(err)
	}
	return &pool, nil
}

func (r *poolRepository) List(ctx context.Context, page, pageSize int) ([]models.Pool, int64, error) {
	var pools []models.Pool
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Pool{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&pools).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return pools, total, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"zkdex-backend/internal/models"
)

// PositionRepository handles database operations for liquidity positions
type PositionRepository interface {
	// Get returns the position a provider holds in a pool.
	Get(ctx context.Context, poolID, provider string) (*models.LiquidityPosition, error)
	// Save creates the position when new and updates it otherwise.
	Save(ctx context.Context, position *models.LiquidityPosition) error
	Delete(ctx context.Context, poolID, provider string) error

	// Query methods
	ListByProvider(ctx context.Context, provider string) ([]models.LiquidityPosition, error)
	ListByPool(ctx context.Context, poolID string) ([]models.LiquidityPosition, error)
}

type positionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new liquidity position repository
func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Get(ctx context.Context, poolID, provider string) (*models.LiquidityPosition, error) {
	var position models.LiquidityPosition
	err := r.db.WithContext(ctx).
		Where("pool_id = ? AND provider = ?", poolID, provider).
		First(&position).Error
	if err != nil {
		return nil, translate(err)
	}
	return &position, nil
}

func (r *positionRepository) Save(ctx context.Context, position *models.LiquidityPosition) error {
	return translate(r.db.WithContext(ctx).Save(position).Error)
}

func (r *positionRepository) Delete(ctx context.Context, poolID, provider string) error {
	return translate(r.db.WithContext(ctx).
		Where("pool_id = ? AND provider = ?", poolID, provider).
		Delete(&models.LiquidityPosition{}).Error)
}

func (r *positionRepository) ListByProvider(ctx context.Context, provider string) ([]models.LiquidityPosition, error) {
	var positions []models.LiquidityPosition
	err := r.db.WithContext(ctx).
		Where("provider = ?", provider).
		Order("created_at DESC").
		Find(&positions).Error
	if err != nil {
		return nil, translate(err)
	}
	return positions, nil
}

func (r *positionRepository) ListByPool(ctx context.Context, poolID string) ([]models.LiquidityPosition, error) {
	var positions []models.LiquidityPosition
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("created_at DESC").
		Find(&positions).Error
	if err != nil {
		return nil, translate(err)
	}
	return positions, nil
}

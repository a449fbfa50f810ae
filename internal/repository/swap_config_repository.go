package repository

import (
	"context"

	"gorm.io/gorm"

	"zkdex-backend/internal/models"
)

// SwapConfigRepository handles database operations for the swap configuration singleton
type SwapConfigRepository interface {
	Get(ctx context.Context) (*models.SwapConfig, error)
	Create(ctx context.Context, config *models.SwapConfig) error
	Update(ctx context.Context, config *models.SwapConfig) error
}

type swapConfigRepository struct {
	db *gorm.DB
}

// NewSwapConfigRepository creates a new swap config repository
func NewSwapConfigRepository(db *gorm.DB) SwapConfigRepository {
	return &swapConfigRepository{db: db}
}

func (r *swapConfigRepository) Get(ctx context.Context) (*models.SwapConfig, error) {
	var config models.SwapConfig
	err := r.db.WithContext(ctx).Where("id = ?", models.SwapConfigID).First(&config).Error
	if err != nil {
		return nil, translate(err)
	}
	return &config, nil
}

func (r *swapConfigRepository) Create(ctx context.Context, config *models.SwapConfig) error {
	config.ID = models.SwapConfigID
	return translate(r.db.WithContext(ctx).Create(config).Error)
}

func (r *swapConfigRepository) Update(ctx context.Context, config *models.SwapConfig) error {
	return translate(r.db.WithContext(ctx).Save(config).Error)
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"zkdex-backend/internal/models"
)

// BridgeConfigRepository handles database operations for the bridge configuration singleton
type BridgeConfigRepository interface {
	Get(ctx context.Context) (*models.BridgeConfig, error)
	Create(ctx context.Context, config *models.BridgeConfig) error
	Update(ctx context.Context, config *models.BridgeConfig) error
}

type bridgeConfigRepository struct {
	db *gorm.DB
}

// NewBridgeConfigRepository creates a new bridge config repository
func NewBridgeConfigRepository(db *gorm.DB) BridgeConfigRepository {
	return &bridgeConfigRepository{db: db}
}

func (r *bridgeConfigRepository) Get(ctx context.Context) (*models.BridgeConfig, error) {
	var config models.BridgeConfig
	err := r.db.WithContext(ctx).Where("id = ?", models.BridgeConfigID).First(&config).Error
	if err != nil {
		return nil, translate(err)
	}
	return &config, nil
}

func (r *bridgeConfigRepository) Create(ctx context.Context, config *models.BridgeConfig) error {
	config.ID = models.BridgeConfigID
	return translate(r.db.WithContext(ctx).Create(config).Error)
}

func (r *bridgeConfigRepository) Update(ctx context.Context, config *models.BridgeConfig) error {
	return translate(r.db.WithContext(ctx).Save(config).Error)
}

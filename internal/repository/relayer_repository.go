package repository

import (
	"context"

	"gorm.io/gorm"

	"zkdex-backend/internal/models"
)

// RelayerRepository handles database operations for relayers
type RelayerRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, relayer *models.Relayer) error
	GetByAuthority(ctx context.Context, authority string) (*models.Relayer, error)
	Update(ctx context.Context, relayer *models.Relayer) error

	// Query methods
	List(ctx context.Context) ([]models.Relayer, error)
	CountActive(ctx context.Context) (int64, error)
}

type relayerRepository struct {
	db *gorm.DB
}

// NewRelayerRepository creates a new relayer repository
func NewRelayerRepository(db *gorm.DB) RelayerRepository {
	return &relayerRepository{db: db}
}

func (r *relayerRepository) Create(ctx context.Context, relayer *models.Relayer) error {
	return translate(r.db.WithContext(ctx).Create(relayer).Error)
}

func (r *relayerRepository) GetByAuthority(ctx context.Context, authority string) (*models.Relayer, error) {
	var relayer models.Relayer
	err := r.db.WithContext(ctx).Where("authority = ?", authority).First(&relayer).Error
	if err != nil {
		return nil, translate(err)
	}
	return &relayer, nil
}

func (r *relayerRepository) Update(ctx context.Context, relayer *models.Relayer) error {
	return translate(r.db.WithContext(ctx).Save(relayer).Error)
}

func (r *relayerRepository) List(ctx context.Context) ([]models.Relayer, error) {
	var relayers []models.Relayer
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&relayers).Error
	if err != nil {
		return nil, translate(err)
	}
	return relayers, nil
}

func (r *relayerRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Relayer{}).
		Where("active = ? AND slashed = ?", true, false).
		Count(&count).Error
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}

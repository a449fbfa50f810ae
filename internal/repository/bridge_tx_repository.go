package repository

import (
	"context"

	"gorm.io/gorm"

	"zkdex-backend/internal/models"
)

// BridgeTxRepository handles database operations for bridge transactions
type BridgeTxRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *models.BridgeTransaction) error
	GetByID(ctx context.Context, id string) (*models.BridgeTransaction, error)
	Update(ctx context.Context, tx *models.BridgeTransaction) error

	// Query methods
	ListBySender(ctx context.Context, sender string) ([]models.BridgeTransaction, error)
	ListByState(ctx context.Context, state models.BridgeTxState, page, pageSize int) ([]models.BridgeTransaction, int64, error)
}

type bridgeTxRepository struct {
	db *gorm.DB
}

// NewBridgeTxRepository creates a new bridge transaction repository
func NewBridgeTxRepository(db *gorm.DB) BridgeTxRepository {
	return &bridgeTxRepository{db: db}
}

func (r *bridgeTxRepository) Create(ctx context.Context, tx *models.BridgeTransaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error)
}

func (r *bridgeTxRepository) GetByID(ctx context.Context, id string) (*models.BridgeTransaction, error) {
	var tx models.BridgeTransaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (r *bridgeTxRepository) Update(ctx context.Context, tx *models.BridgeTransaction) error {
	return translate(r.db.WithContext(ctx).Save(tx).Error)
}

func (r *bridgeTxRepository) ListBySender(ctx context.Context, sender string) ([]models.BridgeTransaction, error) {
	var txs []models.BridgeTransaction
	err := r.db.WithContext(ctx).
		Where("sender = ?", sender).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, translate(err)
	}
	return txs, nil
}

func (r *bridgeTxRepository) ListByState(ctx context.Context, state models.BridgeTxState, page, pageSize int) ([]models.BridgeTransaction, int64, error) {
	var txs []models.BridgeTransaction
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.BridgeTransaction{}).
		Where("state = ?", state).
		Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("state = ?", state).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&txs).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return txs, total, nil
}

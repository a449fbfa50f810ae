package repository

import (
	"context"

	"gorm.io/gorm"

	"zkdex-backend/internal/models"
)

// SwapCommitmentRepository handles database operations for swap commitments
type SwapCommitmentRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, commitment *models.SwapCommitment) error
	GetByID(ctx context.Context, id string) (*models.SwapCommitment, error)
	Update(ctx context.Context, commitment *models.SwapCommitment) error

	// Query methods
	ListByOwner(ctx context.Context, owner string) ([]models.SwapCommitment, error)
	ListByPool(ctx context.Context, poolID string) ([]models.SwapCommitment, error)
}

type swapCommitmentRepository struct {
	db *gorm.DB
}

// NewSwapCommitmentRepository creates a new swap commitment repository
func NewSwapCommitmentRepository(db *gorm.DB) SwapCommitmentRepository {
	return &swapCommitmentRepository{db: db}
}

func (r *swapCommitmentRepository) Create(ctx context.Context, commitment *models.SwapCommitment) error {
	return translate(r.db.WithContext(ctx).Create(commitment).Error)
}

func (r *swapCommitmentRepository) GetByID(ctx context.Context, id string) (*models.SwapCommitment, error) {
	var commitment models.SwapCommitment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&commitment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &commitment, nil
}

func (r *swapCommitmentRepository) Update(ctx context.Context, commitment *models.SwapCommitment) error {
	return translate(r.db.WithContext(ctx).Save(commitment).Error)
}

func (r *swapCommitmentRepository) ListByOwner(ctx context.Context, owner string) ([]models.SwapCommitment, error) {
	var commitments []models.SwapCommitment
	err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at DESC").
		Find(&commitments).Error
	if err != nil {
		return nil, translate(err)
	}
	return commitments, nil
}

func (r *swapCommitmentRepository) ListByPool(ctx context.Context, poolID string) ([]models.SwapCommitment, error) {
	var commitments []models.SwapCommitment
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("created_at DESC").
		Find(&commitments).Error
	if err != nil {
		return nil, translate(err)
	}
	return commitments, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"zkdex-backend/internal/models"
)

// NullifierRepository handles database operations for spent nullifiers
type NullifierRepository interface {
	// Create records a nullifier as spent. It returns ErrDuplicate when the
	// nullifier is already recorded.
	Create(ctx context.Context, record *models.NullifierRecord) error
	Get(ctx context.Context, nullifier string) (*models.NullifierRecord, error)
}

type nullifierRepository struct {
	db *gorm.DB
}

// NewNullifierRepository creates a new nullifier repository
func NewNullifierRepository(db *gorm.DB) NullifierRepository {
	return &nullifierRepository{db: db}
}

func (r *nullifierRepository) Create(ctx context.Context, record *models.NullifierRecord) error {
	return translate(r.db.WithContext(ctx).Create(record).Error)
}

func (r *nullifierRepository) Get(ctx context.Context, nullifier string) (*models.NullifierRecord, error) {
	var record models.NullifierRecord
	err := r.db.WithContext(ctx).Where("nullifier = ?", nullifier).First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

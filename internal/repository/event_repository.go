package repository

import (
	"context"

	"gorm.io/gorm"

	"zkdex-backend/internal/models"
)

// EventRepository handles database operations for the domain event log
type EventRepository interface {
	Append(ctx context.Context, event *models.DomainEvent) error

	// Query methods
	ListAfter(ctx context.Context, afterID uint64, limit int) ([]models.DomainEvent, error)
	ListByKind(ctx context.Context, kind models.EventKind, limit int) ([]models.DomainEvent, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new domain event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, event *models.DomainEvent) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *eventRepository) ListAfter(ctx context.Context, afterID uint64, limit int) ([]models.DomainEvent, error) {
	var events []models.DomainEvent
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, translate(err)
	}
	return events, nil
}

func (r *eventRepository) ListByKind(ctx context.Context, kind models.EventKind, limit int) ([]models.DomainEvent, error) {
	var events []models.DomainEvent
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, translate(err)
	}
	return events, nil
}

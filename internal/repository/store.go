package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound reports a missing record, regardless of backing store.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate reports a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate record")
)

// Store aggregates every repository behind one transactional boundary.
// Repositories obtained inside Atomically share the transaction; their
// writes commit together or not at all.
type Store interface {
	SwapConfigs() SwapConfigRepository
	Pools() PoolRepository
	Positions() PositionRepository
	SwapCommitments() SwapCommitmentRepository
	BridgeConfigs() BridgeConfigRepository
	BridgeTxs() BridgeTxRepository
	Nullifiers() NullifierRepository
	Relayers() RelayerRepository
	Events() EventRepository

	// Atomically runs fn against a store bound to a single transaction.
	// Any error rolls back every write fn performed.
	Atomically(ctx context.Context, fn func(Store) error) error
}

// gormStore implements Store on a gorm connection or transaction handle.
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given database connection.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) SwapConfigs() SwapConfigRepository { return NewSwapConfigRepository(s.db) }
func (s *gormStore) Pools() PoolRepository             { return NewPoolRepository(s.db) }
func (s *gormStore) Positions() PositionRepository     { return NewPositionRepository(s.db) }
func (s *gormStore) SwapCommitments() SwapCommitmentRepository {
	return NewSwapCommitmentRepository(s.db)
}
func (s *gormStore) BridgeConfigs() BridgeConfigRepository { return NewBridgeConfigRepository(s.db) }
func (s *gormStore) BridgeTxs() BridgeTxRepository         { return NewBridgeTxRepository(s.db) }
func (s *gormStore) Nullifiers() NullifierRepository       { return NewNullifierRepository(s.db) }
func (s *gormStore) Relayers() RelayerRepository           { return NewRelayerRepository(s.db) }
func (s *gormStore) Events() EventRepository               { return NewEventRepository(s.db) }

// Atomically wraps fn in a database transaction.
func (s *gormStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translate maps gorm sentinel errors onto the store-agnostic ones so
// services never import the driver.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

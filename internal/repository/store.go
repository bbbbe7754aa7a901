package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the catalog, ledger and order repositories so they can be
// driven from one database transaction.
type Store interface {
	Products() ProductRepository
	Options() OptionRepository
	Codes() CodeMappingRepository
	Movements() MovementRepository
	Orders() OrderRepository

	// Transaction runs fn against a Store bound to a single transaction.
	// Returning an error rolls every write back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Products() ProductRepository   { return NewProductRepo(s.db) }
func (s *gormStore) Options() OptionRepository     { return NewOptionRepo(s.db) }
func (s *gormStore) Codes() CodeMappingRepository  { return NewCodeMappingRepo(s.db) }
func (s *gormStore) Movements() MovementRepository { return NewMovementRepo(s.db) }
func (s *gormStore) Orders() OrderRepository       { return NewOrderRepo(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

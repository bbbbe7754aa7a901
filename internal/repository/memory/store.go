// Package memory is an in-process repository.Store. Transactions take the
// store lock, run against a copy and swap it in on success.
package memory

import (
	"context"
	"sync"
	"time"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
)

type data struct {
	products  map[uuid.UUID]model.Product
	options   map[uuid.UUID]model.ProductOption
	codes     map[string]model.CodeMapping
	movements []model.StockMovement
	orders    map[uuid.UUID]model.Order
	clock     time.Time
}

func newData() *data {
	return &data{
		products: map[uuid.UUID]model.Product{},
		options:  map[uuid.UUID]model.ProductOption{},
		codes:    map[string]model.CodeMapping{},
		orders:   map[uuid.UUID]model.Order{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.options {
		c.options[k] = v
	}
	for k, v := range d.codes {
		c.codes[k] = v
	}
	for k, v := range d.orders {
		v.Items = append([]model.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	c.movements = append([]model.StockMovement(nil), d.movements...)
	c.clock = d.clock
	return c
}

// now is strictly increasing so insertion order survives sorting by time.
func (d *data) now() time.Time {
	t := time.Now()
	if !t.After(d.clock) {
		t = d.clock.Add(time.Microsecond)
	}
	d.clock = t
	return t
}

type Store struct {
	mu   *sync.Mutex
	d    *data
	inTx bool

	// FailMovements makes every movement insert fail. Tests use it to
	// check that ledger writes roll back together.
	FailMovements error
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, d: newData()}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Products() repository.ProductRepository   { return &productRepo{s} }
func (s *Store) Options() repository.OptionRepository     { return &optionRepo{s} }
func (s *Store) Codes() repository.CodeMappingRepository  { return &codeRepo{s} }
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{s} }
func (s *Store) Orders() repository.OrderRepository       { return &orderRepo{s} }

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, d: s.d.clone(), inTx: true, FailMovements: s.FailMovements}
	if err := fn(tx); err != nil {
		return err
	}
	s.d = tx.d
	return nil
}

// MovementCount is a test helper.
func (s *Store) MovementCount() int {
	defer s.lock()()
	return len(s.d.movements)
}

func strPtrEqual(a *string, b string) bool {
	return a != nil && *a == b
}

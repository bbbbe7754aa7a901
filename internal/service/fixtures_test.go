package service

import (
	"context"
	"testing"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/notify"
	"go-blindbox-store/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testAdmin = &Actor{ID: uuid.New(), Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin}

type fixture struct {
	store    *memory.Store
	recorder *notify.Recorder
	ledger   StockLedger
}

func newFixture() *fixture {
	store := memory.NewStore()
	rec := &notify.Recorder{}
	return &fixture{
		store:    store,
		recorder: rec,
		ledger:   NewStockLedger(store, rec, zap.NewNop()),
	}
}

func (f *fixture) product(t *testing.T, name string, stock int, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		BasePrice:     decimal.RequireFromString(price),
		StockQuantity: stock,
		ProductFlag:   model.FlagInStock,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

// option adds an option and refreshes the parent's summary the way the
// catalog service does.
func (f *fixture) option(t *testing.T, p *model.Product, label, sku string, stock int) *model.ProductOption {
	t.Helper()
	ctx := context.Background()
	o := &model.ProductOption{
		ProductID:     p.ID,
		Label:         label,
		SKU:           sku,
		StockQuantity: stock,
	}
	require.NoError(t, f.store.Options().Create(ctx, o))
	require.NoError(t, refreshOptionSummary(ctx, f.store, p.ID))
	return o
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *model.Product {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T {
	return &v
}

package memory

import (
	"context"
	"errors"
	"testing"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := &model.Product{Name: "Labubu", StockQuantity: 5}
	require.NoError(t, s.Products().Create(ctx, p))

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx repository.Store) error {
		_, err := tx.Products().DecrementStock(ctx, p.ID, 3)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)
}

func TestTransactionCommits(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := &model.Product{Name: "Dimoo", StockQuantity: 5}
	require.NoError(t, s.Products().Create(ctx, p))

	err := s.Transaction(ctx, func(tx repository.Store) error {
		left, err := tx.Products().DecrementStock(ctx, p.ID, 5)
		assert.Equal(t, 0, left)
		return err
	})
	require.NoError(t, err)

	got, _ := s.Products().FindByID(ctx, p.ID)
	assert.Equal(t, 0, got.StockQuantity)

	_, err = s.Products().DecrementStock(ctx, p.ID, 1)
	assert.ErrorIs(t, err, repository.ErrConditionFailed)
}

func TestOptionUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := &model.Product{Name: "Skullpanda"}
	require.NoError(t, s.Products().Create(ctx, p))

	require.NoError(t, s.Options().Create(ctx, &model.ProductOption{ProductID: p.ID, Label: "A", SKU: "SP-A"}))
	err := s.Options().Create(ctx, &model.ProductOption{ProductID: p.ID, Label: "B", SKU: "SP-A"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestMovementsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := &model.Product{Name: "Crybaby"}
	require.NoError(t, s.Products().Create(ctx, p))

	for _, d := range []int{1, 2, 3} {
		require.NoError(t, s.Movements().Create(ctx, &model.StockMovement{ProductID: p.ID, Delta: d}))
	}

	got, total, err := s.Movements().Find(ctx, repository.MovementFilter{ProductID: &p.ID, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Delta)
	assert.Equal(t, 2, got[1].Delta)
}

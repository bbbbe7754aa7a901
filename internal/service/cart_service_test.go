package service

import (
	"context"
	"testing"

	"go-blindbox-store/internal/cart"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type CartServiceTestSuite struct {
	suite.Suite
	f       *fixture
	carts   *cart.MemoryStore
	service CartService
	shopper *Actor
	ctx     context.Context
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}

func (s *CartServiceTestSuite) SetupTest() {
	s.f = newFixture()
	s.carts = cart.NewMemoryStore()
	s.service = NewCartService(s.f.store, s.carts, zap.NewNop())
	s.shopper = &Actor{ID: uuid.New(), Name: "Shopper", Email: "shopper@example.com", Role: "user"}
	s.ctx = context.Background()
}

func (s *CartServiceTestSuite) TestAddMergesAndClampsToStock() {
	p := s.f.product(s.T(), "Labubu Box", 3, "20.00")

	view, err := s.service.AddItem(s.ctx, AddToCartInput{ProductID: p.ID, Quantity: 2}, s.shopper)
	s.Require().NoError(err)
	s.False(view.Clamped)
	s.Equal(2, view.TotalItems)

	view, err = s.service.AddItem(s.ctx, AddToCartInput{ProductID: p.ID, Quantity: 2}, s.shopper)
	s.Require().NoError(err)
	s.True(view.Clamped)
	s.Require().Len(view.Items, 1)
	s.Equal(3, view.Items[0].Quantity)
	s.True(view.TotalPrice.Equal(decimal.RequireFromString("60")))

	stored, err := s.carts.Load(s.ctx, s.shopper.ID.String())
	s.Require().NoError(err)
	s.Equal(3, stored.TotalItems())
}

func (s *CartServiceTestSuite) TestAddRejectsSoldOutAndOverStock() {
	p := s.f.product(s.T(), "Labubu Box", 0, "20.00")
	_, err := s.service.AddItem(s.ctx, AddToCartInput{ProductID: p.ID, Quantity: 1}, s.shopper)
	s.ErrorIs(err, ErrInsufficientStock)
	s.EqualError(err, "Labubu Box is sold out")

	q := s.f.product(s.T(), "Crybaby", 2, "18.00")
	_, err = s.service.AddItem(s.ctx, AddToCartInput{ProductID: q.ID, Quantity: 5}, s.shopper)
	s.ErrorIs(err, ErrInsufficientStock)

	view, err := s.service.Get(s.ctx, s.shopper)
	s.Require().NoError(err)
	s.Empty(view.Items)
}

func (s *CartServiceTestSuite) TestOptionPriceAndKey() {
	p := s.f.product(s.T(), "Skullpanda", 0, "15.00")
	red := s.f.option(s.T(), p, "Red", "SP-RED", 4)

	_, err := s.service.AddItem(s.ctx, AddToCartInput{ProductID: p.ID, Quantity: 1}, s.shopper)
	s.ErrorIs(err, ErrValidation, "option required")

	view, err := s.service.AddItem(s.ctx, AddToCartInput{ProductID: p.ID, OptionID: &red.ID, Quantity: 2}, s.shopper)
	s.Require().NoError(err)
	s.Require().Len(view.Items, 1)
	line := view.Items[0]
	s.Equal(cart.Key(p.ID, &red.ID), line.Key())
	s.Equal("Skullpanda - Red", line.DisplayName())
	s.True(line.Price.Equal(decimal.RequireFromString("15.00")))
	s.Equal("SP-RED", line.OptionSKU)

	missing := uuid.New()
	_, err = s.service.AddItem(s.ctx, AddToCartInput{ProductID: p.ID, OptionID: &missing, Quantity: 1}, s.shopper)
	s.ErrorIs(err, ErrNotFound)
}

func (s *CartServiceTestSuite) TestSetQuantityAndRemove() {
	p := s.f.product(s.T(), "Labubu Box", 5, "20.00")
	_, err := s.service.AddItem(s.ctx, AddToCartInput{ProductID: p.ID, Quantity: 1}, s.shopper)
	s.Require().NoError(err)
	key := cart.Key(p.ID, nil)

	view, err := s.service.SetQuantity(s.ctx, key, 9, s.shopper)
	s.Require().NoError(err)
	s.Equal(5, view.Items[0].Quantity)

	view, err = s.service.SetQuantity(s.ctx, key, 0, s.shopper)
	s.Require().NoError(err)
	s.Empty(view.Items)

	_, err = s.service.RemoveItem(s.ctx, key, s.shopper)
	s.ErrorIs(err, ErrNotFound)
}

func (s *CartServiceTestSuite) TestClearAndAuth() {
	p := s.f.product(s.T(), "Labubu Box", 5, "20.00")
	_, err := s.service.AddItem(s.ctx, AddToCartInput{ProductID: p.ID, Quantity: 1}, s.shopper)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Clear(s.ctx, s.shopper))
	view, err := s.service.Get(s.ctx, s.shopper)
	s.Require().NoError(err)
	s.Zero(view.TotalItems)

	_, err = s.service.Get(s.ctx, nil)
	s.ErrorIs(err, ErrUnauthenticated)
	_, err = s.service.AddItem(s.ctx, AddToCartInput{ProductID: p.ID, Quantity: 1}, nil)
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *CartServiceTestSuite) TestAddValidation() {
	_, err := s.service.AddItem(s.ctx, AddToCartInput{ProductID: uuid.New(), Quantity: 0}, s.shopper)
	s.ErrorIs(err, ErrValidation)
	_, err = s.service.AddItem(s.ctx, AddToCartInput{ProductID: uuid.New(), Quantity: 1}, s.shopper)
	s.ErrorIs(err, ErrNotFound)
}

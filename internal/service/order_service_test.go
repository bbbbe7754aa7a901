package service

import (
	"context"
	"testing"

	"go-blindbox-store/internal/cart"
	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type OrderServiceTestSuite struct {
	suite.Suite
	f       *fixture
	orders  OrderService
	shopper *Actor
	ctx     context.Context
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.f = newFixture()
	s.orders = NewOrderService(s.f.store, s.f.recorder, zap.NewNop())
	s.shopper = &Actor{ID: uuid.New(), Name: "Shopper", Role: model.RoleUser}
	s.ctx = context.Background()
}

func (s *OrderServiceTestSuite) place(stock, qty int) (*model.Order, *model.Product) {
	p := s.f.product(s.T(), "Labubu Box", stock, "20.00")
	checkout := NewCheckoutService(s.f.store, cart.NewMemoryStore(), s.f.recorder, zap.NewNop())
	c := cart.New(cart.Line{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty, StockCeiling: stock})
	order, err := checkout.Submit(s.ctx, s.shopper, c, validCustomer)
	s.Require().NoError(err)
	return order, p
}

func (s *OrderServiceTestSuite) TestHappyPath() {
	order, _ := s.place(5, 1)

	got, err := s.orders.UpdateStatus(s.ctx, order.ID, UpdateStatusInput{Status: model.OrderConfirmed}, testAdmin)
	s.Require().NoError(err)
	s.Equal(model.OrderConfirmed, got.Status)
	s.Equal(testAdmin.ID.String(), got.UpdatedBy)

	got, err = s.orders.UpdateStatus(s.ctx, order.ID, UpdateStatusInput{
		Status:         model.OrderShipped,
		TrackingNumber: ptr("TH123456789"),
	}, testAdmin)
	s.Require().NoError(err)
	s.Equal(model.OrderShipped, got.Status)
	s.Require().NotNil(got.TrackingNumber)
	s.Equal("TH123456789", *got.TrackingNumber)
	s.Contains(s.f.recorder.Actions(), "order_status_changed")
}

func (s *OrderServiceTestSuite) TestRejectedTransitions() {
	tests := []struct {
		name string
		path []model.OrderStatus
		next model.OrderStatus
	}{
		{"pending to shipped", nil, model.OrderShipped},
		{"pending to pending", nil, model.OrderPending},
		{"shipped is terminal", []model.OrderStatus{model.OrderConfirmed, model.OrderShipped}, model.OrderCancelled},
		{"cancelled is terminal", []model.OrderStatus{model.OrderCancelled}, model.OrderConfirmed},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			order, _ := s.place(5, 1)
			for _, step := range tt.path {
				_, err := s.orders.UpdateStatus(s.ctx, order.ID, UpdateStatusInput{Status: step}, testAdmin)
				s.Require().NoError(err)
			}
			_, err := s.orders.UpdateStatus(s.ctx, order.ID, UpdateStatusInput{Status: tt.next}, testAdmin)
			s.ErrorIs(err, ErrInvalidTransition)
			s.ErrorIs(err, ErrValidation)
		})
	}
}

func (s *OrderServiceTestSuite) TestUnknownStatusAndOrder() {
	order, _ := s.place(5, 1)
	_, err := s.orders.UpdateStatus(s.ctx, order.ID, UpdateStatusInput{Status: "lost"}, testAdmin)
	s.ErrorIs(err, ErrValidation)

	_, err = s.orders.UpdateStatus(s.ctx, uuid.New(), UpdateStatusInput{Status: model.OrderConfirmed}, testAdmin)
	s.ErrorIs(err, ErrNotFound)

	_, err = s.orders.Get(s.ctx, uuid.New())
	s.ErrorIs(err, ErrNotFound)
}

func (s *OrderServiceTestSuite) TestCancelDoesNotRestock() {
	order, p := s.place(5, 2)

	_, err := s.orders.UpdateStatus(s.ctx, order.ID, UpdateStatusInput{Status: model.OrderCancelled}, testAdmin)
	s.Require().NoError(err)
	s.Equal(3, s.f.reload(s.T(), p.ID).StockQuantity)
}

func (s *OrderServiceTestSuite) TestTracking() {
	order, _ := s.place(5, 1)

	got, err := s.orders.SetTracking(s.ctx, order.ID, " TH999 ", testAdmin)
	s.Require().NoError(err)
	s.Equal("TH999", *got.TrackingNumber)

	got, err = s.orders.SetTracking(s.ctx, order.ID, "", testAdmin)
	s.Require().NoError(err)
	s.Nil(got.TrackingNumber)

	_, err = s.orders.UpdateStatus(s.ctx, order.ID, UpdateStatusInput{Status: model.OrderCancelled}, testAdmin)
	s.Require().NoError(err)
	_, err = s.orders.SetTracking(s.ctx, order.ID, "TH1", testAdmin)
	s.ErrorIs(err, ErrValidation)
}

func (s *OrderServiceTestSuite) TestListing() {
	s.place(5, 1)
	s.place(5, 1)
	other := &Actor{ID: uuid.New(), Name: "Other"}
	p := s.f.product(s.T(), "Crybaby", 2, "18.00")
	checkout := NewCheckoutService(s.f.store, cart.NewMemoryStore(), s.f.recorder, zap.NewNop())
	_, err := checkout.Submit(s.ctx, other, cart.New(cart.Line{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1, StockCeiling: 2}), validCustomer)
	s.Require().NoError(err)

	mine, err := s.orders.ListForUser(s.ctx, s.shopper)
	s.Require().NoError(err)
	s.Len(mine, 2)

	all, err := s.orders.List(s.ctx, repository.OrderFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	pending, err := s.orders.List(s.ctx, repository.OrderFilter{Status: model.OrderPending, Limit: 1})
	s.Require().NoError(err)
	s.Len(pending, 1)

	_, err = s.orders.List(s.ctx, repository.OrderFilter{Status: "lost"})
	s.ErrorIs(err, ErrValidation)
	_, err = s.orders.ListForUser(s.ctx, nil)
	s.ErrorIs(err, ErrUnauthenticated)
}

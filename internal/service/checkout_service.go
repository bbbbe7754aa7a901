package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-blindbox-store/internal/cart"
	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/notify"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CustomerInfo struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=10"`
	Address string `json:"address" validate:"required,min=10"`
}

func (c *CustomerInfo) trim() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
}

// CheckoutService turns a cart into a pending order. The order, its items
// and every stock decrement commit in one transaction or not at all.
type CheckoutService interface {
	Submit(ctx context.Context, actor *Actor, c *cart.Cart, customer CustomerInfo) (*model.Order, error)
	// CheckoutStoredCart submits the actor's persisted cart and clears it.
	CheckoutStoredCart(ctx context.Context, actor *Actor, customer CustomerInfo) (*model.Order, error)
}

type checkoutService struct {
	store    repository.Store
	carts    cart.Store
	notifier notify.Notifier
	log      *zap.Logger
}

func NewCheckoutService(store repository.Store, carts cart.Store, notifier notify.Notifier, log *zap.Logger) CheckoutService {
	return &checkoutService{store: store, carts: carts, notifier: notifier, log: log.Named("checkout")}
}

func (s *checkoutService) Submit(ctx context.Context, actor *Actor, c *cart.Cart, customer CustomerInfo) (*model.Order, error) {
	if actor == nil || actor.ID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	customer.trim()
	if err := validate(customer); err != nil {
		return nil, err
	}
	if c == nil || c.IsEmpty() {
		return nil, invalid("cart is empty")
	}
	for _, line := range c.Lines {
		if line.Quantity < 1 {
			return nil, invalid("%s has an invalid quantity", line.DisplayName())
		}
	}

	order := &model.Order{
		UserID:          actor.ID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		CustomerAddress: customer.Address,
		Status:          model.OrderPending,
		TotalAmount:     c.TotalPrice(),
		Items:           orderItems(c),
	}
	order.Stamp(actor.auditID())

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Orders().Create(ctx, order); err != nil {
			return storeErr("order", err)
		}
		note := "Order " + order.ID.String()
		for _, line := range c.Lines {
			target := StockTarget{ProductID: line.ProductID, OptionID: line.OptionID}
			_, _, err := decrementIn(ctx, tx, target, line.Quantity, model.ReasonSale, note, actor)
			var stockErr *InsufficientStockError
			if errors.As(err, &stockErr) {
				stockErr.Name = line.DisplayName()
				return stockErr
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn("checkout rejected", zap.String("user_id", actor.auditID()), zap.Error(err))
		return nil, err
	}

	c.Clear()
	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", actor.auditID()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(order.Items)))

	event := notify.NewEvent(notify.TypeOrderUpdate, "order_created", order)
	event.User = actor.notifyActor()
	event.Message = fmt.Sprintf("%s placed order %s", actor.displayName(), order.ID)
	s.notifier.Notify(ctx, event)
	return order, nil
}

func (s *checkoutService) CheckoutStoredCart(ctx context.Context, actor *Actor, customer CustomerInfo) (*model.Order, error) {
	owner, err := cartOwner(actor)
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: load cart: %v", ErrStore, err)
	}

	order, err := s.Submit(ctx, actor, c, customer)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Delete(ctx, owner); err != nil {
		// order is already committed
		s.log.Warn("failed to clear cart after checkout", zap.String("user_id", owner), zap.Error(err))
	}
	return order, nil
}

func orderItems(c *cart.Cart) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		item := model.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			Price:       l.Price,
			OptionID:    l.OptionID,
		}
		if l.OptionID != nil {
			item.OptionLabel = optional(l.OptionLabel)
			item.OptionSKU = optional(l.OptionSKU)
			item.OptionImage = optional(l.OptionImage)
		}
		items = append(items, item)
	}
	return items
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

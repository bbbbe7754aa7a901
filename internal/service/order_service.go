package service

import (
	"context"
	"fmt"
	"strings"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/notify"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultOrderPage = 50
	maxOrderPage     = 200
)

type UpdateStatusInput struct {
	Status         model.OrderStatus `json:"status" validate:"required"`
	TrackingNumber *string           `json:"tracking_number,omitempty"`
}

// OrderService drives orders through pending -> confirmed -> shipped, with
// cancellation allowed before shipping. Cancelling does not restock.
type OrderService interface {
	List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListForUser(ctx context.Context, actor *Actor) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, in UpdateStatusInput, actor *Actor) (*model.Order, error)
	SetTracking(ctx context.Context, id uuid.UUID, number string, actor *Actor) (*model.Order, error)
}

type orderService struct {
	store    repository.Store
	notifier notify.Notifier
	log      *zap.Logger
}

func NewOrderService(store repository.Store, notifier notify.Notifier, log *zap.Logger) OrderService {
	return &orderService{store: store, notifier: notifier, log: log.Named("orders")}
}

func (s *orderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown order status %q", filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultOrderPage
	}
	if filter.Limit > maxOrderPage {
		filter.Limit = maxOrderPage
	}
	orders, err := s.store.Orders().FindAll(ctx, filter)
	if err != nil {
		return nil, storeErr("orders", err)
	}
	return orders, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("order", err)
	}
	return order, nil
}

func (s *orderService) ListForUser(ctx context.Context, actor *Actor) ([]model.Order, error) {
	if actor == nil || actor.ID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	id := actor.ID
	return s.List(ctx, repository.OrderFilter{UserID: &id})
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, in UpdateStatusInput, actor *Actor) (*model.Order, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, invalid("unknown order status %q", in.Status)
	}

	var from model.OrderStatus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return storeErr("order", err)
		}
		from = order.Status
		if !from.CanTransition(in.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, in.Status)
		}
		if err := tx.Orders().UpdateStatus(ctx, id, in.Status, actor.auditID()); err != nil {
			return storeErr("order", err)
		}
		if in.TrackingNumber != nil && in.Status == model.OrderShipped {
			return storeErr("order", tx.Orders().UpdateTracking(ctx, id, trackingValue(*in.TrackingNumber), actor.auditID()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order status changed",
		zap.String("order_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(in.Status)),
		zap.String("actor", actor.auditID()))
	return s.reloadAndPublish(ctx, id, "order_status_changed",
		fmt.Sprintf("%s moved order %s from %s to %s", actor.displayName(), id, from, in.Status), actor)
}

func (s *orderService) SetTracking(ctx context.Context, id uuid.UUID, number string, actor *Actor) (*model.Order, error) {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return storeErr("order", err)
		}
		if order.Status == model.OrderCancelled {
			return invalid("order %s is cancelled", id)
		}
		return storeErr("order", tx.Orders().UpdateTracking(ctx, id, trackingValue(number), actor.auditID()))
	})
	if err != nil {
		return nil, err
	}
	return s.reloadAndPublish(ctx, id, "order_tracking_updated",
		fmt.Sprintf("%s updated tracking for order %s", actor.displayName(), id), actor)
}

func (s *orderService) reloadAndPublish(ctx context.Context, id uuid.UUID, action, message string, actor *Actor) (*model.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	event := notify.NewEvent(notify.TypeOrderUpdate, action, order)
	event.User = actor.notifyActor()
	event.Message = message
	s.notifier.Notify(ctx, event)
	return order, nil
}

// trackingValue maps a blank number to NULL.
func trackingValue(number string) *string {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil
	}
	return &number
}

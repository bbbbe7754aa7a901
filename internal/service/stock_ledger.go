package service

import (
	"context"
	"errors"
	"fmt"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/notify"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMovementPage = 50
	maxMovementPage     = 500
)

// StockTarget addresses a product, or one option of it.
type StockTarget struct {
	ProductID uuid.UUID  `json:"product_id" validate:"uuid_required"`
	OptionID  *uuid.UUID `json:"option_id,omitempty"`
}

type AdjustInput struct {
	Target      StockTarget          `json:"target"`
	NewQuantity int                  `json:"new_quantity"`
	Reason      model.MovementReason `json:"reason,omitempty"`
	Note        string               `json:"note,omitempty"`
}

// StockLedger is the only writer of stock quantities. Every change it makes
// is recorded as a StockMovement in the same transaction.
type StockLedger interface {
	Current(ctx context.Context, target StockTarget) (int, error)
	// Adjust sets an absolute quantity. An unchanged quantity returns a nil
	// movement and writes nothing.
	Adjust(ctx context.Context, in AdjustInput, actor *Actor) (*model.StockMovement, error)
	// Decrement removes qty only if that much is on hand.
	Decrement(ctx context.Context, target StockTarget, qty int, reason model.MovementReason, note string, actor *Actor) (*model.StockMovement, error)
	Movements(ctx context.Context, filter repository.MovementFilter) ([]model.StockMovement, int64, error)
}

type stockLedger struct {
	store    repository.Store
	notifier notify.Notifier
	log      *zap.Logger
}

func NewStockLedger(store repository.Store, notifier notify.Notifier, log *zap.Logger) StockLedger {
	return &stockLedger{store: store, notifier: notifier, log: log.Named("ledger")}
}

func (l *stockLedger) Current(ctx context.Context, target StockTarget) (int, error) {
	product, err := l.store.Products().FindByID(ctx, target.ProductID)
	if err != nil {
		return 0, storeErr("product", err)
	}
	if target.OptionID == nil {
		return product.AvailableStock(), nil
	}
	option := product.FindOption(*target.OptionID)
	if option == nil {
		return 0, fmt.Errorf("option %w", ErrNotFound)
	}
	return option.StockQuantity, nil
}

func (l *stockLedger) Adjust(ctx context.Context, in AdjustInput, actor *Actor) (*model.StockMovement, error) {
	if in.NewQuantity < 0 {
		return nil, invalid("stock quantity cannot be negative")
	}
	if in.Reason != "" && !in.Reason.Valid() {
		return nil, invalid("unknown movement reason %q", in.Reason)
	}

	var (
		movement *model.StockMovement
		label    string
	)
	err := l.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		movement, label, err = adjustIn(ctx, tx, in, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return nil, nil
	}

	l.log.Info("stock adjusted",
		zap.String("target", label),
		zap.Int("before", movement.BeforeQty),
		zap.Int("after", movement.AfterQty),
		zap.String("reason", string(movement.Reason)),
		zap.String("actor", actor.auditID()))
	l.publish(ctx, "stock_adjusted", movement, label, actor)
	return movement, nil
}

func (l *stockLedger) Decrement(ctx context.Context, target StockTarget, qty int, reason model.MovementReason, note string, actor *Actor) (*model.StockMovement, error) {
	var (
		movement *model.StockMovement
		label    string
	)
	err := l.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		movement, label, err = decrementIn(ctx, tx, target, qty, reason, note, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.publish(ctx, "stock_decremented", movement, label, actor)
	return movement, nil
}

func (l *stockLedger) Movements(ctx context.Context, filter repository.MovementFilter) ([]model.StockMovement, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultMovementPage
	}
	if filter.Limit > maxMovementPage {
		filter.Limit = maxMovementPage
	}
	if filter.Reason != "" && !filter.Reason.Valid() {
		return nil, 0, invalid("unknown movement reason %q", filter.Reason)
	}
	movements, total, err := l.store.Movements().Find(ctx, filter)
	if err != nil {
		return nil, 0, storeErr("movements", err)
	}
	return movements, total, nil
}

func (l *stockLedger) publish(ctx context.Context, action string, m *model.StockMovement, label string, actor *Actor) {
	event := notify.NewEvent(notify.TypeStockUpdate, action, m)
	event.User = actor.notifyActor()
	event.Message = fmt.Sprintf("%s changed stock of '%s' from %d to %d", actor.displayName(), label, m.BeforeQty, m.AfterQty)
	l.notifier.Notify(ctx, event)
}

// lockedTarget is a stock row read under lock inside a transaction.
type lockedTarget struct {
	product *model.Product
	option  *model.ProductOption
}

func (t lockedTarget) quantity() int {
	if t.option != nil {
		return t.option.StockQuantity
	}
	return t.product.StockQuantity
}

func (t lockedTarget) label() string {
	if t.option != nil {
		return t.product.Name + " - " + t.option.Label
	}
	return t.product.Name
}

// lockTarget locks the product row first and then the option, so every
// ledger path takes locks in the same order.
func lockTarget(ctx context.Context, tx repository.Store, target StockTarget) (lockedTarget, error) {
	product, err := tx.Products().FindByIDForUpdate(ctx, target.ProductID)
	if err != nil {
		return lockedTarget{}, storeErr("product", err)
	}
	if target.OptionID == nil {
		if product.HasOptions {
			return lockedTarget{}, invalid("%s has options, select one", product.Name)
		}
		return lockedTarget{product: product}, nil
	}

	option, err := tx.Options().FindByIDForUpdate(ctx, *target.OptionID)
	if err != nil {
		return lockedTarget{}, storeErr("option", err)
	}
	if option.ProductID != product.ID {
		return lockedTarget{}, fmt.Errorf("option %w for product %s", ErrNotFound, product.ID)
	}
	return lockedTarget{product: product, option: option}, nil
}

func adjustIn(ctx context.Context, tx repository.Store, in AdjustInput, actor *Actor) (*model.StockMovement, string, error) {
	t, err := lockTarget(ctx, tx, in.Target)
	if err != nil {
		return nil, "", err
	}
	before := t.quantity()
	if before == in.NewQuantity {
		return nil, t.label(), nil
	}

	if t.option != nil {
		err = tx.Options().SetStock(ctx, t.option.ID, in.NewQuantity, actor.auditID())
	} else {
		err = tx.Products().SetStock(ctx, t.product.ID, in.NewQuantity, actor.auditID())
	}
	if err != nil {
		return nil, "", storeErr("stock", err)
	}
	if t.option != nil {
		if err := refreshOptionSummary(ctx, tx, t.product.ID); err != nil {
			return nil, "", err
		}
	}

	delta := in.NewQuantity - before
	reason := in.Reason
	if reason == "" {
		reason = model.ReasonForDelta(delta)
	}
	m, err := appendMovement(ctx, tx, in.Target, before, in.NewQuantity, reason, in.Note, actor)
	return m, t.label(), err
}

func decrementIn(ctx context.Context, tx repository.Store, target StockTarget, qty int, reason model.MovementReason, note string, actor *Actor) (*model.StockMovement, string, error) {
	if qty < 1 {
		return nil, "", invalid("decrement quantity must be at least 1")
	}
	if !reason.Valid() {
		return nil, "", invalid("unknown movement reason %q", reason)
	}

	t, err := lockTarget(ctx, tx, target)
	if err != nil {
		return nil, "", err
	}

	var after int
	if t.option != nil {
		after, err = tx.Options().DecrementStock(ctx, t.option.ID, qty)
	} else {
		after, err = tx.Products().DecrementStock(ctx, t.product.ID, qty)
	}
	if errors.Is(err, repository.ErrConditionFailed) {
		return nil, "", &InsufficientStockError{Name: t.label(), Requested: qty, Available: t.quantity()}
	}
	if err != nil {
		return nil, "", storeErr("stock", err)
	}
	if t.option != nil {
		if err := refreshOptionSummary(ctx, tx, t.product.ID); err != nil {
			return nil, "", err
		}
	}

	m, err := appendMovement(ctx, tx, target, after+qty, after, reason, note, actor)
	return m, t.label(), err
}

func appendMovement(ctx context.Context, tx repository.Store, target StockTarget, before, after int, reason model.MovementReason, note string, actor *Actor) (*model.StockMovement, error) {
	m := &model.StockMovement{
		ProductID: target.ProductID,
		OptionID:  target.OptionID,
		Delta:     after - before,
		BeforeQty: before,
		AfterQty:  after,
		Reason:    reason,
		ActorID:   actor.auditID(),
	}
	if note != "" {
		m.Notes = &note
	}
	if err := tx.Movements().Create(ctx, m); err != nil {
		return nil, storeErr("stock movement", err)
	}
	return m, nil
}

// refreshOptionSummary recomputes has_options and options_stock_total.
func refreshOptionSummary(ctx context.Context, tx repository.Store, productID uuid.UUID) error {
	count, total, err := tx.Options().SumStock(ctx, productID)
	if err != nil {
		return storeErr("options", err)
	}
	if err := tx.Products().SetOptionSummary(ctx, productID, count > 0, total); err != nil {
		return storeErr("product", err)
	}
	return nil
}

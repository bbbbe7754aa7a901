package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-blindbox-store/internal/cart"
	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AddToCartInput struct {
	ProductID uuid.UUID  `json:"product_id" validate:"uuid_required"`
	OptionID  *uuid.UUID `json:"option_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"min=1"`
}

type CartView struct {
	Items      []cart.Line     `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Clamped    bool            `json:"clamped,omitempty"`
}

func viewOf(c *cart.Cart) *CartView {
	items := c.Lines
	if items == nil {
		items = []cart.Line{}
	}
	return &CartView{Items: items, TotalItems: c.TotalItems(), TotalPrice: c.TotalPrice()}
}

// CartService keeps each user's cart in a cart.Store. Adds read stock and
// price fresh from the catalog; nothing is reserved until checkout.
type CartService interface {
	Get(ctx context.Context, actor *Actor) (*CartView, error)
	AddItem(ctx context.Context, in AddToCartInput, actor *Actor) (*CartView, error)
	SetQuantity(ctx context.Context, key string, qty int, actor *Actor) (*CartView, error)
	RemoveItem(ctx context.Context, key string, actor *Actor) (*CartView, error)
	Clear(ctx context.Context, actor *Actor) error
}

type cartService struct {
	store repository.Store
	carts cart.Store
	log   *zap.Logger
	locks sync.Map
}

func NewCartService(store repository.Store, carts cart.Store, log *zap.Logger) CartService {
	return &cartService{store: store, carts: carts, log: log.Named("cart")}
}

func cartOwner(actor *Actor) (string, error) {
	if actor == nil || actor.ID == uuid.Nil {
		return "", ErrUnauthenticated
	}
	return actor.ID.String(), nil
}

// withCart serialises read-modify-write on one owner's cart.
func (s *cartService) withCart(ctx context.Context, actor *Actor, fn func(c *cart.Cart) (bool, error)) (*cart.Cart, error) {
	owner, err := cartOwner(actor)
	if err != nil {
		return nil, err
	}
	mu, _ := s.locks.LoadOrStore(owner, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	c, err := s.carts.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: load cart: %v", ErrStore, err)
	}
	changed, err := fn(c)
	if err != nil {
		return nil, err
	}
	if !changed {
		return c, nil
	}
	if err := s.carts.Save(ctx, owner, c); err != nil {
		return nil, fmt.Errorf("%w: save cart: %v", ErrStore, err)
	}
	return c, nil
}

func (s *cartService) Get(ctx context.Context, actor *Actor) (*CartView, error) {
	owner, err := cartOwner(actor)
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: load cart: %v", ErrStore, err)
	}
	return viewOf(c), nil
}

func (s *cartService) AddItem(ctx context.Context, in AddToCartInput, actor *Actor) (*CartView, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	line, err := s.freshLine(ctx, in)
	if err != nil {
		return nil, err
	}

	var clamped bool
	c, err := s.withCart(ctx, actor, func(c *cart.Cart) (bool, error) {
		var err error
		clamped, err = c.Add(line)
		if errors.Is(err, cart.ErrSoldOut) {
			return false, &InsufficientStockError{Name: line.DisplayName(), Requested: in.Quantity}
		}
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}
	if clamped {
		s.log.Debug("cart quantity clamped to stock",
			zap.String("owner", actor.auditID()),
			zap.String("key", line.Key()))
	}
	view := viewOf(c)
	view.Clamped = clamped
	return view, nil
}

// freshLine builds a cart line from the current catalog row.
func (s *cartService) freshLine(ctx context.Context, in AddToCartInput) (cart.Line, error) {
	product, err := s.store.Products().FindByID(ctx, in.ProductID)
	if err != nil {
		return cart.Line{}, storeErr("product", err)
	}
	line := cart.Line{
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  in.Quantity,
		ImageURL:  product.ImageURL,
	}

	var option *model.ProductOption
	switch {
	case in.OptionID != nil:
		option = product.FindOption(*in.OptionID)
		if option == nil {
			return cart.Line{}, fmt.Errorf("option %w", ErrNotFound)
		}
	case product.HasOptions:
		return cart.Line{}, invalid("%s has options, select one", product.Name)
	}

	if option != nil {
		id := option.ID
		line.OptionID = &id
		line.Price = option.UnitPrice(product.BasePrice)
		line.StockCeiling = option.StockQuantity
		line.SKU = option.SKU
		line.OptionLabel = option.Label
		line.OptionSKU = option.SKU
		line.OptionImage = option.ImageURL
	} else {
		line.Price = product.Price
		line.StockCeiling = product.StockQuantity
	}

	if line.StockCeiling < in.Quantity {
		return cart.Line{}, &InsufficientStockError{Name: line.DisplayName(), Requested: in.Quantity, Available: line.StockCeiling}
	}
	return line, nil
}

func (s *cartService) SetQuantity(ctx context.Context, key string, qty int, actor *Actor) (*CartView, error) {
	c, err := s.withCart(ctx, actor, func(c *cart.Cart) (bool, error) {
		if !c.SetQuantity(key, qty) {
			return false, fmt.Errorf("cart item %w", ErrNotFound)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(c), nil
}

func (s *cartService) RemoveItem(ctx context.Context, key string, actor *Actor) (*CartView, error) {
	c, err := s.withCart(ctx, actor, func(c *cart.Cart) (bool, error) {
		if !c.Remove(key) {
			return false, fmt.Errorf("cart item %w", ErrNotFound)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(c), nil
}

func (s *cartService) Clear(ctx context.Context, actor *Actor) error {
	owner, err := cartOwner(actor)
	if err != nil {
		return err
	}
	if err := s.carts.Delete(ctx, owner); err != nil {
		return fmt.Errorf("%w: clear cart: %v", ErrStore, err)
	}
	return nil
}

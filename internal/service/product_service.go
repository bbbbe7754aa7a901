package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/notify"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductInput struct {
	Name          string            `json:"name" validate:"required,max=255"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"image_url"`
	BoxSetInfo    string            `json:"box_set_info"`
	Price         decimal.Decimal   `json:"price" validate:"gte=0"`
	BasePrice     *decimal.Decimal  `json:"base_price,omitempty" validate:"omitempty,gte=0"`
	StockQuantity int               `json:"stock_quantity" validate:"gte=0"`
	ProductFlag   model.ProductFlag `json:"product_flag"`
	EtaDate       *time.Time        `json:"eta_date,omitempty"`
	EanCode       *string           `json:"ean_code,omitempty"`
}

type OptionInput struct {
	Label         string              `json:"label" validate:"required,max=255"`
	SKU           string              `json:"sku" validate:"required,max=64"`
	ImageURL      string              `json:"image_url"`
	StockQuantity int                 `json:"stock_quantity" validate:"gte=0"`
	PriceDelta    decimal.Decimal     `json:"price_delta"`
	DiscountPrice decimal.NullDecimal `json:"discount_price" validate:"omitempty,gte=0"`
	DisplayOrder  int                 `json:"display_order"`
	EanCode       *string             `json:"ean_code,omitempty"`
}

// ProductService manages the catalog. Stock on an existing product or option
// only changes through the StockLedger; StockQuantity in the inputs is the
// opening quantity on create.
type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Create(ctx context.Context, in ProductInput, actor *Actor) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, in ProductInput, actor *Actor) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID, actor *Actor) error

	AddOption(ctx context.Context, productID uuid.UUID, in OptionInput, actor *Actor) (*model.ProductOption, error)
	UpdateOption(ctx context.Context, productID, optionID uuid.UUID, in OptionInput, actor *Actor) (*model.ProductOption, error)
	DeleteOption(ctx context.Context, productID, optionID uuid.UUID, actor *Actor) error
}

type productService struct {
	store    repository.Store
	notifier notify.Notifier
	log      *zap.Logger
}

func NewProductService(store repository.Store, notifier notify.Notifier, log *zap.Logger) ProductService {
	return &productService{store: store, notifier: notifier, log: log.Named("catalog")}
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	if filter.Flag != "" && !filter.Flag.Valid() {
		return nil, invalid("unknown product flag %q", filter.Flag)
	}
	products, err := s.store.Products().FindAll(ctx, filter)
	if err != nil {
		return nil, storeErr("products", err)
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("product", err)
	}
	return product, nil
}

func checkProductInput(in *ProductInput) error {
	if err := validate(in); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.ProductFlag == "" {
		in.ProductFlag = model.FlagInStock
	}
	if !in.ProductFlag.Valid() {
		return invalid("unknown product flag %q", in.ProductFlag)
	}
	if in.ProductFlag.NeedsETA() && in.EtaDate == nil {
		return invalid("eta_date is required for %s products", in.ProductFlag)
	}
	if in.EanCode != nil {
		code := strings.TrimSpace(*in.EanCode)
		if code == "" {
			in.EanCode = nil
		} else if Classify(code) != KindBarcode {
			return invalid("ean_code must be 12 or 13 digits")
		} else {
			in.EanCode = &code
		}
	}
	return nil
}

func (in ProductInput) basePrice() decimal.Decimal {
	if in.BasePrice != nil {
		return *in.BasePrice
	}
	return in.Price
}

func (s *productService) Create(ctx context.Context, in ProductInput, actor *Actor) (*model.Product, error) {
	if err := checkProductInput(&in); err != nil {
		return nil, err
	}
	product := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		BoxSetInfo:  in.BoxSetInfo,
		Price:       in.Price,
		BasePrice:   in.basePrice(),
		ProductFlag: in.ProductFlag,
		EtaDate:     in.EtaDate,
		EanCode:     in.EanCode,
	}
	product.Stamp(actor.auditID())

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if in.EanCode != nil {
			if err := barcodeUnused(ctx, tx, *in.EanCode); err != nil {
				return err
			}
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			return storeErr("product", err)
		}
		if in.StockQuantity == 0 {
			return nil
		}
		_, _, err := adjustIn(ctx, tx, AdjustInput{
			Target:      StockTarget{ProductID: product.ID},
			NewQuantity: in.StockQuantity,
			Reason:      model.ReasonAdjust,
			Note:        "Initial stock",
		}, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	product.StockQuantity = in.StockQuantity

	s.log.Info("product created", zap.String("product_id", product.ID.String()), zap.String("actor", actor.auditID()))
	s.publish(ctx, "product_created", fmt.Sprintf("%s created product '%s'", actor.displayName(), product.Name), product, actor)
	return product, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, in ProductInput, actor *Actor) (*model.Product, error) {
	if err := checkProductInput(&in); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Products().FindByIDForUpdate(ctx, id)
		if err != nil {
			return storeErr("product", err)
		}
		if in.EanCode != nil && !sameCode(existing.EanCode, *in.EanCode) {
			if err := barcodeUnused(ctx, tx, *in.EanCode); err != nil {
				return err
			}
		}
		existing.Name = in.Name
		existing.Description = in.Description
		existing.ImageURL = in.ImageURL
		existing.BoxSetInfo = in.BoxSetInfo
		existing.Price = in.Price
		existing.BasePrice = in.basePrice()
		existing.ProductFlag = in.ProductFlag
		existing.EtaDate = in.EtaDate
		existing.EanCode = in.EanCode
		existing.UpdatedBy = actor.auditID()
		return storeErr("product", tx.Products().Update(ctx, existing))
	})
	if err != nil {
		return nil, err
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "product_updated", fmt.Sprintf("%s updated product '%s'", actor.displayName(), product.Name), product, actor)
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID, actor *Actor) error {
	var name string
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Products().FindByIDForUpdate(ctx, id)
		if err != nil {
			return storeErr("product", err)
		}
		name = existing.Name
		if err := tx.Codes().DeleteByProduct(ctx, id); err != nil {
			return storeErr("qr codes", err)
		}
		if err := tx.Options().DeleteByProduct(ctx, id, actor.auditID()); err != nil {
			return storeErr("options", err)
		}
		return storeErr("product", tx.Products().Delete(ctx, id, actor.auditID()))
	})
	if err != nil {
		return err
	}
	s.log.Info("product deleted", zap.String("product_id", id.String()), zap.String("actor", actor.auditID()))
	s.publish(ctx, "product_deleted", fmt.Sprintf("%s deleted product '%s'", actor.displayName(), name), idPayload(id), actor)
	return nil
}

func checkOptionInput(in *OptionInput) error {
	if err := validate(in); err != nil {
		return err
	}
	in.Label = strings.TrimSpace(in.Label)
	in.SKU = strings.TrimSpace(in.SKU)
	if in.Label == "" || in.SKU == "" {
		return invalid("label and sku are required")
	}
	if in.EanCode != nil {
		code := strings.TrimSpace(*in.EanCode)
		if code == "" {
			in.EanCode = nil
		} else if Classify(code) != KindBarcode {
			return invalid("ean_code must be 12 or 13 digits")
		} else {
			in.EanCode = &code
		}
	}
	return nil
}

func (s *productService) AddOption(ctx context.Context, productID uuid.UUID, in OptionInput, actor *Actor) (*model.ProductOption, error) {
	if err := checkOptionInput(&in); err != nil {
		return nil, err
	}
	option := &model.ProductOption{
		ProductID:     productID,
		Label:         in.Label,
		SKU:           in.SKU,
		ImageURL:      in.ImageURL,
		PriceDelta:    in.PriceDelta,
		DiscountPrice: in.DiscountPrice,
		DisplayOrder:  in.DisplayOrder,
		EanCode:       in.EanCode,
	}
	option.Stamp(actor.auditID())

	var productName string
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		product, err := tx.Products().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return storeErr("product", err)
		}
		productName = product.Name
		if err := skuUnused(ctx, tx, in.SKU, uuid.Nil); err != nil {
			return err
		}
		if in.EanCode != nil {
			if err := barcodeUnused(ctx, tx, *in.EanCode); err != nil {
				return err
			}
		}
		if err := tx.Options().Create(ctx, option); err != nil {
			return storeErr("option", err)
		}
		if err := refreshOptionSummary(ctx, tx, productID); err != nil {
			return err
		}
		if in.StockQuantity == 0 {
			return nil
		}
		_, _, err = adjustIn(ctx, tx, AdjustInput{
			Target:      StockTarget{ProductID: productID, OptionID: &option.ID},
			NewQuantity: in.StockQuantity,
			Reason:      model.ReasonAdjust,
			Note:        "Initial stock",
		}, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	option.StockQuantity = in.StockQuantity

	s.publish(ctx, "option_created", fmt.Sprintf("%s added option '%s' to '%s'", actor.displayName(), option.Label, productName), option, actor)
	return option, nil
}

func (s *productService) UpdateOption(ctx context.Context, productID, optionID uuid.UUID, in OptionInput, actor *Actor) (*model.ProductOption, error) {
	if err := checkOptionInput(&in); err != nil {
		return nil, err
	}

	var option *model.ProductOption
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		_, existing, err := bindTarget(ctx, tx, productID, &optionID)
		if err != nil {
			return err
		}
		if existing.SKU != in.SKU {
			if err := skuUnused(ctx, tx, in.SKU, optionID); err != nil {
				return err
			}
		}
		if in.EanCode != nil && !sameCode(existing.EanCode, *in.EanCode) {
			if err := barcodeUnused(ctx, tx, *in.EanCode); err != nil {
				return err
			}
		}
		existing.Label = in.Label
		existing.SKU = in.SKU
		existing.ImageURL = in.ImageURL
		existing.PriceDelta = in.PriceDelta
		existing.DiscountPrice = in.DiscountPrice
		existing.DisplayOrder = in.DisplayOrder
		existing.EanCode = in.EanCode
		existing.UpdatedBy = actor.auditID()
		if err := tx.Options().Update(ctx, existing); err != nil {
			return storeErr("option", err)
		}
		option = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "option_updated", fmt.Sprintf("%s updated option '%s'", actor.displayName(), option.Label), option, actor)
	return option, nil
}

func (s *productService) DeleteOption(ctx context.Context, productID, optionID uuid.UUID, actor *Actor) error {
	var label string
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		_, existing, err := bindTarget(ctx, tx, productID, &optionID)
		if err != nil {
			return err
		}
		label = existing.Label
		if err := tx.Codes().DeleteByOption(ctx, optionID); err != nil {
			return storeErr("qr codes", err)
		}
		if err := tx.Options().Delete(ctx, optionID, actor.auditID()); err != nil {
			return storeErr("option", err)
		}
		return refreshOptionSummary(ctx, tx, productID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, "option_deleted", fmt.Sprintf("%s deleted option '%s'", actor.displayName(), label), idPayload(optionID), actor)
	return nil
}

func (s *productService) publish(ctx context.Context, action, message string, data interface{}, actor *Actor) {
	event := notify.NewEvent(notify.TypeStockUpdate, action, data)
	event.User = actor.notifyActor()
	event.Message = message
	s.notifier.Notify(ctx, event)
}

func skuUnused(ctx context.Context, tx repository.Store, sku string, self uuid.UUID) error {
	existing, err := tx.Options().FindBySKU(ctx, sku)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return storeErr("option", err)
	}
	if existing.ID == self {
		return nil
	}
	return fmt.Errorf("%w: SKU %s already exists", ErrConflict, sku)
}

func sameCode(current *string, code string) bool {
	return current != nil && *current == code
}

func idPayload(id uuid.UUID) map[string]string {
	return map[string]string{"id": id.String()}
}

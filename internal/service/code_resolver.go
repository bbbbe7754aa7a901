package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/notify"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CodeKind string

const (
	KindBarcode CodeKind = "barcode"
	KindQR      CodeKind = "qr"
)

var barcodePattern = regexp.MustCompile(`^\d{12,13}$`)

// Classify treats exactly 12 or 13 digits as a linear barcode and anything
// else as a QR payload. Check digits are not verified.
func Classify(raw string) CodeKind {
	if barcodePattern.MatchString(raw) {
		return KindBarcode
	}
	return KindQR
}

// Digest is the lowercase hex SHA-256 of the exact input bytes.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

type Resolution struct {
	Kind    CodeKind             `json:"kind"`
	Code    string               `json:"code"`
	Product *model.Product       `json:"product"`
	Option  *model.ProductOption `json:"option"`
}

type BindInput struct {
	Code      string     `json:"code" validate:"required"`
	ProductID uuid.UUID  `json:"product_id" validate:"uuid_required"`
	OptionID  *uuid.UUID `json:"option_id,omitempty"`
}

type CreateFromCodeInput struct {
	Code         string            `json:"code" validate:"required"`
	Name         string            `json:"name" validate:"required"`
	Description  string            `json:"description"`
	ImageURL     string            `json:"image_url"`
	BoxSetInfo   string            `json:"box_set_info"`
	Price        decimal.Decimal   `json:"price" validate:"gte=0"`
	InitialStock int               `json:"initial_stock" validate:"gte=0"`
	ProductFlag  model.ProductFlag `json:"product_flag"`
	EtaDate      *time.Time        `json:"eta_date,omitempty"`
}

type CodeResolver interface {
	Resolve(ctx context.Context, raw string) (*Resolution, error)
	// Bind dispatches on Classify.
	Bind(ctx context.Context, in BindInput, actor *Actor) (*Resolution, error)
	BindBarcode(ctx context.Context, in BindInput, actor *Actor) (*Resolution, error)
	BindQR(ctx context.Context, in BindInput, actor *Actor) (*Resolution, error)
	CreateProductFromCode(ctx context.Context, in CreateFromCodeInput, actor *Actor) (*Resolution, error)
}

type codeResolver struct {
	store    repository.Store
	notifier notify.Notifier
	log      *zap.Logger
}

func NewCodeResolver(store repository.Store, notifier notify.Notifier, log *zap.Logger) CodeResolver {
	return &codeResolver{store: store, notifier: notifier, log: log.Named("resolver")}
}

func (r *codeResolver) Resolve(ctx context.Context, raw string) (*Resolution, error) {
	if raw == "" {
		return nil, invalid("code is required")
	}
	kind := Classify(raw)
	res := &Resolution{Kind: kind, Code: raw}

	var (
		productID uuid.UUID
		optionID  *uuid.UUID
	)
	switch kind {
	case KindBarcode:
		option, err := r.store.Options().FindByEanCode(ctx, raw)
		switch {
		case err == nil:
			productID, optionID = option.ProductID, &option.ID
		case errors.Is(err, repository.ErrNotFound):
			product, err := r.store.Products().FindByEanCode(ctx, raw)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCodeNotFound
			}
			if err != nil {
				return nil, storeErr("product", err)
			}
			productID = product.ID
		default:
			return nil, storeErr("option", err)
		}
	default:
		mapping, err := r.store.Codes().FindByHash(ctx, Digest(raw))
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		if err != nil {
			return nil, storeErr("code mapping", err)
		}
		productID, optionID = mapping.ProductID, mapping.OptionID
	}

	product, err := r.store.Products().FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		// mapping points at a deleted product
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, storeErr("product", err)
	}
	res.Product = product
	if optionID != nil {
		res.Option = product.FindOption(*optionID)
		if res.Option == nil {
			return nil, ErrCodeNotFound
		}
	}
	return res, nil
}

func (r *codeResolver) Bind(ctx context.Context, in BindInput, actor *Actor) (*Resolution, error) {
	if Classify(in.Code) == KindBarcode {
		return r.BindBarcode(ctx, in, actor)
	}
	return r.BindQR(ctx, in, actor)
}

func (r *codeResolver) BindBarcode(ctx context.Context, in BindInput, actor *Actor) (*Resolution, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if Classify(in.Code) != KindBarcode {
		return nil, invalid("%q is not a 12 or 13 digit barcode", in.Code)
	}

	err := r.store.Transaction(ctx, func(tx repository.Store) error {
		if err := barcodeUnused(ctx, tx, in.Code); err != nil {
			return err
		}
		product, option, err := bindTarget(ctx, tx, in.ProductID, in.OptionID)
		if err != nil {
			return err
		}
		code := in.Code
		if option != nil {
			option.EanCode = &code
			option.UpdatedBy = actor.auditID()
			return storeErr("option", tx.Options().Update(ctx, option))
		}
		product.EanCode = &code
		product.UpdatedBy = actor.auditID()
		return storeErr("product", tx.Products().Update(ctx, product))
	})
	if err != nil {
		return nil, err
	}
	r.bound(ctx, in, KindBarcode, actor)
	return r.Resolve(ctx, in.Code)
}

func (r *codeResolver) BindQR(ctx context.Context, in BindInput, actor *Actor) (*Resolution, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if Classify(in.Code) != KindQR {
		return nil, invalid("%q looks like a barcode, bind it as one", in.Code)
	}

	err := r.store.Transaction(ctx, func(tx repository.Store) error {
		if _, _, err := bindTarget(ctx, tx, in.ProductID, in.OptionID); err != nil {
			return err
		}
		return createMapping(ctx, tx, in.Code, in.ProductID, in.OptionID, actor)
	})
	if err != nil {
		return nil, err
	}
	r.bound(ctx, in, KindQR, actor)
	return r.Resolve(ctx, in.Code)
}

func (r *codeResolver) CreateProductFromCode(ctx context.Context, in CreateFromCodeInput, actor *Actor) (*Resolution, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if in.ProductFlag == "" {
		in.ProductFlag = model.FlagInStock
	}
	if !in.ProductFlag.Valid() {
		return nil, invalid("unknown product flag %q", in.ProductFlag)
	}
	if in.ProductFlag.NeedsETA() && in.EtaDate == nil {
		return nil, invalid("eta_date is required for %s products", in.ProductFlag)
	}

	kind := Classify(in.Code)
	product := &model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImageURL:    in.ImageURL,
		BoxSetInfo:  in.BoxSetInfo,
		Price:       in.Price,
		BasePrice:   in.Price,
		ProductFlag: in.ProductFlag,
		EtaDate:     in.EtaDate,
	}
	product.Stamp(actor.auditID())

	err := r.store.Transaction(ctx, func(tx repository.Store) error {
		if kind == KindBarcode {
			if err := barcodeUnused(ctx, tx, in.Code); err != nil {
				return err
			}
			code := in.Code
			product.EanCode = &code
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			return storeErr("product", err)
		}
		if kind == KindQR {
			if err := createMapping(ctx, tx, in.Code, product.ID, nil, actor); err != nil {
				return err
			}
		}
		if in.InitialStock == 0 {
			return nil
		}
		_, _, err := adjustIn(ctx, tx, AdjustInput{
			Target:      StockTarget{ProductID: product.ID},
			NewQuantity: in.InitialStock,
			Reason:      model.ReasonCreateByQR,
			Note:        fmt.Sprintf("Created via %s scan", kindLabel(kind)),
		}, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("product created from code",
		zap.String("product_id", product.ID.String()),
		zap.String("kind", string(kind)),
		zap.Int("initial_stock", in.InitialStock),
		zap.String("actor", actor.auditID()))
	event := notify.NewEvent(notify.TypeStockUpdate, "product_created", product)
	event.User = actor.notifyActor()
	event.Message = fmt.Sprintf("%s created product '%s' from a %s scan", actor.displayName(), product.Name, kindLabel(kind))
	r.notifier.Notify(ctx, event)

	return r.Resolve(ctx, in.Code)
}

func (r *codeResolver) bound(ctx context.Context, in BindInput, kind CodeKind, actor *Actor) {
	r.log.Info("code bound",
		zap.String("kind", string(kind)),
		zap.String("product_id", in.ProductID.String()),
		zap.String("actor", actor.auditID()))
	event := notify.NewEvent(notify.TypeStockUpdate, "code_bound", in)
	event.User = actor.notifyActor()
	event.Message = fmt.Sprintf("%s linked a %s to a product", actor.displayName(), kindLabel(kind))
	r.notifier.Notify(ctx, event)
}

func kindLabel(kind CodeKind) string {
	if kind == KindBarcode {
		return "barcode"
	}
	return "QR"
}

// barcodeUnused checks both products and options for the code.
func barcodeUnused(ctx context.Context, tx repository.Store, code string) error {
	if _, err := tx.Options().FindByEanCode(ctx, code); err == nil {
		return fmt.Errorf("%w: barcode %s is already linked to an option", ErrConflict, code)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return storeErr("option", err)
	}
	if _, err := tx.Products().FindByEanCode(ctx, code); err == nil {
		return fmt.Errorf("%w: barcode %s is already linked to a product", ErrConflict, code)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return storeErr("product", err)
	}
	return nil
}

// bindTarget loads the product and option a code is being bound to. A
// product with options can only be bound through one of them.
func bindTarget(ctx context.Context, tx repository.Store, productID uuid.UUID, optionID *uuid.UUID) (*model.Product, *model.ProductOption, error) {
	product, err := tx.Products().FindByIDForUpdate(ctx, productID)
	if err != nil {
		return nil, nil, storeErr("product", err)
	}
	if optionID == nil {
		if product.HasOptions {
			return nil, nil, invalid("%s has options, select one", product.Name)
		}
		return product, nil, nil
	}
	option, err := tx.Options().FindByIDForUpdate(ctx, *optionID)
	if err != nil {
		return nil, nil, storeErr("option", err)
	}
	if option.ProductID != product.ID {
		return nil, nil, fmt.Errorf("option %w for product %s", ErrNotFound, product.ID)
	}
	return product, option, nil
}

func createMapping(ctx context.Context, tx repository.Store, raw string, productID uuid.UUID, optionID *uuid.UUID, actor *Actor) error {
	hash := Digest(raw)
	if _, err := tx.Codes().FindByHash(ctx, hash); err == nil {
		return fmt.Errorf("%w: QR code is already linked", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return storeErr("code mapping", err)
	}
	mapping := &model.CodeMapping{
		QRRaw:     raw,
		QRHash:    hash,
		ProductID: productID,
		OptionID:  optionID,
		CreatedBy: actor.auditID(),
	}
	return storeErr("code mapping", tx.Codes().Create(ctx, mapping))
}

package memory

import (
	"context"
	"sort"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
)

type optionRepo struct {
	s *Store
}

func (r *optionRepo) conflicts(o *model.ProductOption) bool {
	for id, other := range r.s.d.options {
		if id == o.ID {
			continue
		}
		if other.SKU == o.SKU {
			return true
		}
		if o.EanCode != nil && strPtrEqual(other.EanCode, *o.EanCode) {
			return true
		}
	}
	return false
}

func (r *optionRepo) Create(ctx context.Context, option *model.ProductOption) error {
	defer r.s.lock()()
	d := r.s.d
	if option.ID == uuid.Nil {
		option.ID = uuid.New()
	}
	if _, ok := d.options[option.ID]; ok || r.conflicts(option) {
		return repository.ErrDuplicate
	}
	now := d.now()
	option.CreatedAt, option.UpdatedAt = now, now
	d.options[option.ID] = *option
	return nil
}

func (r *optionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductOption, error) {
	defer r.s.lock()()
	o, ok := r.s.d.options[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r *optionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductOption, error) {
	return r.FindByID(ctx, id)
}

func (r *optionRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductOption, error) {
	defer r.s.lock()()
	var out []model.ProductOption
	for _, o := range r.s.d.options {
		if o.ProductID == productID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *optionRepo) FindByEanCode(ctx context.Context, code string) (*model.ProductOption, error) {
	defer r.s.lock()()
	for _, o := range r.s.d.options {
		if strPtrEqual(o.EanCode, code) {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *optionRepo) FindBySKU(ctx context.Context, sku string) (*model.ProductOption, error) {
	defer r.s.lock()()
	for _, o := range r.s.d.options {
		if o.SKU == sku {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *optionRepo) Update(ctx context.Context, option *model.ProductOption) error {
	defer r.s.lock()()
	d := r.s.d
	o, ok := d.options[option.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.conflicts(option) {
		return repository.ErrDuplicate
	}
	o.Label = option.Label
	o.SKU = option.SKU
	o.ImageURL = option.ImageURL
	o.PriceDelta = option.PriceDelta
	o.DiscountPrice = option.DiscountPrice
	o.DisplayOrder = option.DisplayOrder
	o.EanCode = option.EanCode
	o.UpdatedBy = option.UpdatedBy
	o.UpdatedAt = d.now()
	d.options[o.ID] = o
	return nil
}

func (r *optionRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	defer r.s.lock()()
	if _, ok := r.s.d.options[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.d.options, id)
	return nil
}

func (r *optionRepo) DeleteByProduct(ctx context.Context, productID uuid.UUID, deletedBy string) error {
	defer r.s.lock()()
	for id, o := range r.s.d.options {
		if o.ProductID == productID {
			delete(r.s.d.options, id)
		}
	}
	return nil
}

func (r *optionRepo) SetStock(ctx context.Context, id uuid.UUID, qty int, updatedBy string) error {
	defer r.s.lock()()
	d := r.s.d
	o, ok := d.options[id]
	if !ok {
		return repository.ErrNotFound
	}
	if qty < 0 {
		return repository.ErrConditionFailed
	}
	o.StockQuantity = qty
	o.UpdatedBy = updatedBy
	o.UpdatedAt = d.now()
	d.options[id] = o
	return nil
}

func (r *optionRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	defer r.s.lock()()
	o, ok := r.s.d.options[id]
	if !ok || o.StockQuantity < qty {
		return 0, repository.ErrConditionFailed
	}
	o.StockQuantity -= qty
	r.s.d.options[id] = o
	return o.StockQuantity, nil
}

func (r *optionRepo) SumStock(ctx context.Context, productID uuid.UUID) (int, int, error) {
	defer r.s.lock()()
	count, total := 0, 0
	for _, o := range r.s.d.options {
		if o.ProductID == productID {
			count++
			total += o.StockQuantity
		}
	}
	return count, total, nil
}

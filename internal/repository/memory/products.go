package memory

import (
	"context"
	"sort"
	"strings"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
)

type productRepo struct {
	s *Store
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	defer r.s.lock()()
	d := r.s.d
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if _, ok := d.products[product.ID]; ok {
		return repository.ErrDuplicate
	}
	if product.EanCode != nil {
		for _, p := range d.products {
			if strPtrEqual(p.EanCode, *product.EanCode) {
				return repository.ErrDuplicate
			}
		}
	}
	now := d.now()
	product.CreatedAt, product.UpdatedAt = now, now
	if product.ProductFlag == "" {
		product.ProductFlag = model.FlagInStock
	}
	stored := *product
	stored.Options = nil
	d.products[product.ID] = stored
	return nil
}

// withOptions attaches options ordered like the SQL preload.
func (r *productRepo) withOptions(p model.Product) model.Product {
	p.Options = nil
	for _, o := range r.s.d.options {
		if o.ProductID == p.ID {
			p.Options = append(p.Options, o)
		}
	}
	sort.Slice(p.Options, func(i, j int) bool {
		if p.Options[i].DisplayOrder != p.Options[j].DisplayOrder {
			return p.Options[i].DisplayOrder < p.Options[j].DisplayOrder
		}
		return p.Options[i].CreatedAt.Before(p.Options[j].CreatedAt)
	})
	return p
}

func (r *productRepo) FindAll(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	defer r.s.lock()()
	var out []model.Product
	for _, p := range r.s.d.products {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Flag != "" && p.ProductFlag != filter.Flag {
			continue
		}
		out = append(out, r.withOptions(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.d.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = r.withOptions(p)
	return &p, nil
}

func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.d.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) FindByEanCode(ctx context.Context, code string) (*model.Product, error) {
	defer r.s.lock()()
	for _, p := range r.s.d.products {
		if strPtrEqual(p.EanCode, code) {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	defer r.s.lock()()
	d := r.s.d
	p, ok := d.products[product.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if product.EanCode != nil {
		for id, other := range d.products {
			if id != product.ID && strPtrEqual(other.EanCode, *product.EanCode) {
				return repository.ErrDuplicate
			}
		}
	}
	p.Name = product.Name
	p.Description = product.Description
	p.ImageURL = product.ImageURL
	p.BoxSetInfo = product.BoxSetInfo
	p.Price = product.Price
	p.BasePrice = product.BasePrice
	p.ProductFlag = product.ProductFlag
	p.EtaDate = product.EtaDate
	p.EanCode = product.EanCode
	p.UpdatedBy = product.UpdatedBy
	p.UpdatedAt = d.now()
	d.products[p.ID] = p
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	defer r.s.lock()()
	if _, ok := r.s.d.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.d.products, id)
	return nil
}

func (r *productRepo) SetStock(ctx context.Context, id uuid.UUID, qty int, updatedBy string) error {
	defer r.s.lock()()
	d := r.s.d
	p, ok := d.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if qty < 0 {
		return repository.ErrConditionFailed
	}
	p.StockQuantity = qty
	p.UpdatedBy = updatedBy
	p.UpdatedAt = d.now()
	d.products[id] = p
	return nil
}

func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	defer r.s.lock()()
	p, ok := r.s.d.products[id]
	if !ok || p.StockQuantity < qty {
		return 0, repository.ErrConditionFailed
	}
	p.StockQuantity -= qty
	r.s.d.products[id] = p
	return p.StockQuantity, nil
}

func (r *productRepo) SetOptionSummary(ctx context.Context, id uuid.UUID, hasOptions bool, total int) error {
	defer r.s.lock()()
	p, ok := r.s.d.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.HasOptions = hasOptions
	p.OptionsStockTotal = total
	r.s.d.products[id] = p
	return nil
}

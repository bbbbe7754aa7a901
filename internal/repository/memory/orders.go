package memory

import (
	"context"
	"sort"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
)

type orderRepo struct {
	s *Store
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	defer r.s.lock()()
	d := r.s.d
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if _, ok := d.orders[order.ID]; ok {
		return repository.ErrDuplicate
	}
	now := d.now()
	order.CreatedAt, order.UpdatedAt = now, now
	if order.Status == "" {
		order.Status = model.OrderPending
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]model.OrderItem(nil), order.Items...)
	d.orders[order.ID] = stored
	return nil
}

func (r *orderRepo) FindAll(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	defer r.s.lock()()
	var out []model.Order
	for _, o := range r.s.d.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.d.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return &o, nil
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = nil
	return o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, updatedBy string) error {
	return r.update(id, func(o *model.Order) {
		o.Status = status
		o.UpdatedBy = updatedBy
	})
}

func (r *orderRepo) UpdateTracking(ctx context.Context, id uuid.UUID, tracking *string, updatedBy string) error {
	return r.update(id, func(o *model.Order) {
		o.TrackingNumber = tracking
		o.UpdatedBy = updatedBy
	})
}

func (r *orderRepo) update(id uuid.UUID, fn func(o *model.Order)) error {
	defer r.s.lock()()
	o, ok := r.s.d.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&o)
	o.UpdatedAt = r.s.d.now()
	r.s.d.orders[id] = o
	return nil
}

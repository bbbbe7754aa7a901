package memory

import (
	"context"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
)

type movementRepo struct {
	s *Store
}

func (r *movementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	defer r.s.lock()()
	if r.s.FailMovements != nil {
		return r.s.FailMovements
	}
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	movement.CreatedAt = r.s.d.now()
	r.s.d.movements = append(r.s.d.movements, *movement)
	return nil
}

func (r *movementRepo) Find(ctx context.Context, filter repository.MovementFilter) ([]model.StockMovement, int64, error) {
	defer r.s.lock()()
	var matched []model.StockMovement
	for i := len(r.s.d.movements) - 1; i >= 0; i-- {
		m := r.s.d.movements[i]
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.OptionID != nil && (m.OptionID == nil || *m.OptionID != *filter.OptionID) {
			continue
		}
		if filter.Reason != "" && m.Reason != filter.Reason {
			continue
		}
		matched = append(matched, m)
	}

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

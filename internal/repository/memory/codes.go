package memory

import (
	"context"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
)

type codeRepo struct {
	s *Store
}

func (r *codeRepo) Create(ctx context.Context, mapping *model.CodeMapping) error {
	defer r.s.lock()()
	d := r.s.d
	if _, ok := d.codes[mapping.QRHash]; ok {
		return repository.ErrDuplicate
	}
	if mapping.ID == uuid.Nil {
		mapping.ID = uuid.New()
	}
	mapping.CreatedAt = d.now()
	d.codes[mapping.QRHash] = *mapping
	return nil
}

func (r *codeRepo) FindByHash(ctx context.Context, hash string) (*model.CodeMapping, error) {
	defer r.s.lock()()
	m, ok := r.s.d.codes[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *codeRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.CodeMapping, error) {
	defer r.s.lock()()
	var out []model.CodeMapping
	for _, m := range r.s.d.codes {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *codeRepo) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	defer r.s.lock()()
	for hash, m := range r.s.d.codes {
		if m.ProductID == productID {
			delete(r.s.d.codes, hash)
		}
	}
	return nil
}

func (r *codeRepo) DeleteByOption(ctx context.Context, optionID uuid.UUID) error {
	defer r.s.lock()()
	for hash, m := range r.s.d.codes {
		if m.OptionID != nil && *m.OptionID == optionID {
			delete(r.s.d.codes, hash)
		}
	}
	return nil
}

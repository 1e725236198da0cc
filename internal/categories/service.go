package categories

import (
	"context"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/store"
)

// Service manages the document category labels. All mutations go through
// the store's serialized read-modify-write cycle, so concurrent appends do
// not lose updates.
type Service struct {
	st *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

func (s *Service) table() *store.Table {
	return s.st.Table("categories")
}

// List returns every category.
func (s *Service) List(ctx context.Context) ([]*models.Category, error) {
	recs, err := s.table().All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Category, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.CategoryFromRecord(r))
	}
	return out, nil
}

// Add appends a category unless one with the same name (case-insensitive)
// already exists, in which case the existing one is returned.
func (s *Service) Add(ctx context.Context, name string) (*models.Category, error) {
	if rec, err := s.table().Get(ctx, store.EqFold("name", name)); err == nil {
		return models.CategoryFromRecord(rec), nil
	}
	c := &models.Category{Name: name}
	id, err := s.table().Insert(ctx, c.Record())
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

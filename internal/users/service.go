package users

import (
	"context"
	"errors"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/store"
)

// Service encapsulates user-related business logic over the record store.
type Service struct {
	st *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

func (s *Service) table() *store.Table {
	return s.st.Table("users")
}

// Create stores a new user and returns it with the assigned id.
func (s *Service) Create(ctx context.Context, name, email string) (*models.User, error) {
	u := &models.User{Name: name, Email: email}
	id, err := s.table().Insert(ctx, u.Record())
	if err != nil {
		return nil, err
	}
	u.ID = id
	return u, nil
}

// Get returns the user by id, or nil when absent.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	rec, err := s.table().Get(ctx, store.Eq("id", id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return models.UserFromRecord(rec), nil
}

// List returns every stored user.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	recs, err := s.table().All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.UserFromRecord(r))
	}
	return out, nil
}

// Delete removes the user by id. Deleting an absent user is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.table().Remove(ctx, store.Eq("id", id))
	return err
}

package index

import (
	"context"
	"fmt"

	"github.com/docvault/docvault/internal/document"
)

// UserLister enumerates every known owner id.
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// DocumentLister enumerates the documents belonging to one owner.
type DocumentLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*document.Document, error)
}

// Rehydrate rebuilds the full registry from the durable store. It runs once
// at process start, before search traffic is accepted. Any lister failure is
// returned to the caller; a partial index must never be served.
func Rehydrate(ctx context.Context, users UserLister, docs DocumentLister) (*Registry, error) {
	ids, err := users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("rehydrate: list users: %w", err)
	}
	reg := NewRegistry()
	for _, ownerID := range ids {
		list, err := docs.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("rehydrate: list documents for user %s: %w", ownerID, err)
		}
		// materialize the trie even when the user has no documents yet
		reg.user(ownerID, true)
		for _, d := range list {
			if err := reg.Insert(ownerID, d); err != nil {
				return nil, fmt.Errorf("rehydrate: index document %s: %w", d.ID, err)
			}
		}
	}
	return reg, nil
}

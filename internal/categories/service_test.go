package categories

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/internal/store"
)

func TestCategoriesAddAndList(t *testing.T) {
	svc := NewService(store.Open(store.NewMemoryBackend(), 0))
	ctx := context.Background()

	c, err := svc.Add(ctx, "Finance")
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	// same name, different case: no duplicate
	again, err := svc.Add(ctx, "finance")
	require.NoError(t, err)
	require.Equal(t, c.ID, again.ID)

	_, err = svc.Add(ctx, "Legal")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

// concurrent appends must not lose updates
func TestCategoriesConcurrentAppend(t *testing.T) {
	svc := NewService(store.Open(store.NewMemoryBackend(), 0))
	ctx := context.Background()

	names := []string{"a", "b", "c", "d", "e", "f"}
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := svc.Add(ctx, name)
			require.NoError(t, err)
		}(name)
	}
	wg.Wait()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(names))
}

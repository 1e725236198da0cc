package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	data         []byte
	exists       bool
	lastModified time.Time

	statErr  error
	fetchErr error
	storeErr error

	fetches int
	stores  int
}

func (f *fakeRemote) Stat(ctx context.Context) (time.Time, bool, error) {
	if f.statErr != nil {
		return time.Time{}, false, f.statErr
	}
	return f.lastModified, f.exists, nil
}

func (f *fakeRemote) Fetch(ctx context.Context, localPath string) error {
	if f.fetchErr != nil {
		return f.fetchErr
	}
	f.fetches++
	return os.WriteFile(localPath, f.data, 0o644)
}

func (f *fakeRemote) Store(ctx context.Context, localPath string) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.stores++
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.data = data
	f.exists = true
	f.lastModified = time.Now()
	return nil
}

func newObjectBackend(t *testing.T, remote *fakeRemote) *ObjectBackend {
	t.Helper()
	return NewObjectBackend(remote, filepath.Join(t.TempDir(), "cache.json"))
}

func TestObjectBackendAbsentRemoteInitializesEmptyCache(t *testing.T) {
	remote := &fakeRemote{exists: false}
	b := newObjectBackend(t, remote)

	out, err := b.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(b.cachePath)
	require.NoError(t, err)
	require.JSONEq(t, "{}", string(data))
}

func TestObjectBackendWriteThenRead(t *testing.T) {
	remote := &fakeRemote{}
	b := newObjectBackend(t, remote)
	ctx := context.Background()

	in := Tables{"documents": {"d1": Record{"id": "d1", "title": "Notes"}}}
	require.NoError(t, b.Dump(ctx, in))
	require.Equal(t, 1, remote.stores)

	out, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Notes", out["documents"]["d1"].String("title"))
	// cache was just written locally, no download needed
	require.Zero(t, remote.fetches)
}

// remote updated externally with a newer timestamp: the next read must
// re-download before returning, not serve the stale cache
func TestObjectBackendRefreshesStaleCache(t *testing.T) {
	remote := &fakeRemote{}
	b := newObjectBackend(t, remote)
	ctx := context.Background()

	require.NoError(t, b.Dump(ctx, Tables{"documents": {}}))

	remote.data = []byte(`{"documents": {"d9": {"id": "d9", "title": "External"}}}`)
	remote.lastModified = time.Now().Add(5 * time.Second)

	out, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, remote.fetches)
	require.Equal(t, "External", out["documents"]["d9"].String("title"))
}

func TestObjectBackendUploadFailurePropagates(t *testing.T) {
	remote := &fakeRemote{storeErr: errors.New("connection reset")}
	b := newObjectBackend(t, remote)

	err := b.Dump(context.Background(), Tables{})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestObjectBackendStatFailurePropagates(t *testing.T) {
	remote := &fakeRemote{statErr: errors.New("dns failure")}
	b := newObjectBackend(t, remote)

	_, err := b.Load(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

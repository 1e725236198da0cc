package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/index"
	"github.com/docvault/docvault/internal/store"
)

// flakyBackend lets tests fail the durable write on demand.
type flakyBackend struct {
	inner    *store.MemoryBackend
	failDump bool
}

func (f *flakyBackend) Load(ctx context.Context) (store.Tables, error) {
	return f.inner.Load(ctx)
}

func (f *flakyBackend) Dump(ctx context.Context, t store.Tables) error {
	if f.failDump {
		return store.ErrUnavailable
	}
	return f.inner.Dump(ctx, t)
}

func (f *flakyBackend) Name() string { return "flaky" }

// failingIndexer lets tests fail the index mutation after a committed write.
type failingIndexer struct {
	reg        *index.Registry
	failInsert bool
	failRemove bool
}

func (f *failingIndexer) Insert(ownerID string, d *document.Document) error {
	if f.failInsert {
		return errors.New("injected insert failure")
	}
	return f.reg.Insert(ownerID, d)
}

func (f *failingIndexer) Remove(ownerID string, d *document.Document) error {
	if f.failRemove {
		return errors.New("injected remove failure")
	}
	return f.reg.Remove(ownerID, d)
}

func (f *failingIndexer) Search(ownerID, prefix string) []*document.Document {
	return f.reg.Search(ownerID, prefix)
}

func newService(t *testing.T) (*Service, *store.Store, *index.Registry) {
	t.Helper()
	st := store.Open(store.NewMemoryBackend(), 0)
	reg := index.NewRegistry()
	return New(st, reg), st, reg
}

func TestCreateAndIndex(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	d, err := svc.CreateAndIndex(ctx, "u1", "Quarterly Report", "hash1", ".pdf")
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)

	// stored
	rec, err := st.Table("documents").Get(ctx, store.Eq("id", d.ID))
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report", rec.String("title"))

	// indexed
	got := svc.Search("u1", "quarter")
	require.Len(t, got, 1)
	assert.Equal(t, d.ID, got[0].ID)
}

// store write fails: the trie must not contain the new title afterward
func TestCreateStoreFailureLeavesIndexUntouched(t *testing.T) {
	backend := &flakyBackend{inner: store.NewMemoryBackend(), failDump: true}
	st := store.Open(backend, 0)
	svc := New(st, index.NewRegistry())

	_, err := svc.CreateAndIndex(context.Background(), "u1", "Phantom", "h", ".txt")
	require.ErrorIs(t, err, store.ErrUnavailable)
	assert.Empty(t, svc.Search("u1", "phantom"))
	assert.Empty(t, svc.Search("u1", ""))
}

// index failure after a committed store write: desync is reported, the
// store write stays
func TestCreateIndexFailureReportsDesync(t *testing.T) {
	st := store.Open(store.NewMemoryBackend(), 0)
	idx := &failingIndexer{reg: index.NewRegistry(), failInsert: true}
	svc := New(st, idx)
	ctx := context.Background()

	d, err := svc.CreateAndIndex(ctx, "u1", "Orphan", "h", ".txt")
	require.ErrorIs(t, err, ErrIndexDesync)
	require.NotNil(t, d, "document must be returned alongside the desync warning")

	// committed in the store, absent from the index
	_, err = st.Table("documents").Get(ctx, store.Eq("id", d.ID))
	require.NoError(t, err)
	assert.Empty(t, svc.Search("u1", "orphan"))

	// the next rehydration heals the staleness
	_, err = st.Table("users").Insert(ctx, store.Record{"id": "u1", "name": "alice"})
	require.NoError(t, err)
	reg, err := Rehydrate(ctx, st)
	require.NoError(t, err)
	require.Len(t, reg.Search("u1", "orphan"), 1)
}

func TestUpdateTitleAndReindex(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	d, err := svc.CreateAndIndex(ctx, "u1", "Draft", "h", ".md")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateTitleAndReindex(ctx, d.ID, "u1", "Draft", "Final Report"))

	assert.Empty(t, svc.Search("u1", "draft"))
	got := svc.Search("u1", "final")
	require.Len(t, got, 1)
	assert.Equal(t, d.ID, got[0].ID)
	assert.Equal(t, "h", got[0].ContentHash, "identity fields survive the rename")

	rec, err := st.Table("documents").Get(ctx, store.Eq("id", d.ID))
	require.NoError(t, err)
	assert.Equal(t, "Final Report", rec.String("title"))
}

func TestUpdateUnknownDocument(t *testing.T) {
	svc, _, _ := newService(t)
	err := svc.UpdateTitleAndReindex(context.Background(), "missing", "u1", "a", "b")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateWrongOwnerIsNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	d, err := svc.CreateAndIndex(ctx, "u1", "Private", "h", ".txt")
	require.NoError(t, err)

	err = svc.UpdateTitleAndReindex(ctx, d.ID, "u2", "Private", "Stolen")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndDeindex(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	d, err := svc.CreateAndIndex(ctx, "u1", "Notes", "h", ".txt")
	require.NoError(t, err)

	// removal normalizes the title, so case differences do not matter
	require.NoError(t, svc.DeleteAndDeindex(ctx, d.ID, "u1", "notes"))

	assert.Empty(t, svc.Search("u1", ""))
	_, err = st.Table("documents").Get(ctx, store.Eq("id", d.ID))
	require.ErrorIs(t, err, store.ErrNotFound)

	// deleting again is a no-op
	require.NoError(t, svc.DeleteAndDeindex(ctx, d.ID, "u1", "notes"))
}

func TestDeleteStoreFailurePropagates(t *testing.T) {
	backend := &flakyBackend{inner: store.NewMemoryBackend()}
	st := store.Open(backend, 0)
	reg := index.NewRegistry()
	svc := New(st, reg)
	ctx := context.Background()

	d, err := svc.CreateAndIndex(ctx, "u1", "Sticky", "h", ".txt")
	require.NoError(t, err)

	backend.failDump = true
	err = svc.DeleteAndDeindex(ctx, d.ID, "u1", "Sticky")
	require.ErrorIs(t, err, store.ErrUnavailable)

	// store write failed, so the index must still serve the document
	require.Len(t, svc.Search("u1", "sticky"), 1)
}

func TestTitleTaken(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateAndIndex(ctx, "u1", "Quarterly Report", "h", ".pdf")
	require.NoError(t, err)

	taken, err := svc.TitleTaken(ctx, "u1", "QUARTERLY report")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = svc.TitleTaken(ctx, "u2", "Quarterly Report")
	require.NoError(t, err)
	assert.False(t, taken, "uniqueness is per owner")
}

func TestFindByHash(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	d, err := svc.CreateAndIndex(ctx, "u1", "Report", "abc123", ".pdf")
	require.NoError(t, err)

	got, err := svc.FindByHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = svc.FindByHash(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRehydrateFromStore(t *testing.T) {
	st := store.Open(store.NewMemoryBackend(), 0)
	ctx := context.Background()

	_, err := st.Table("users").Insert(ctx, store.Record{"id": "u1", "name": "alice"})
	require.NoError(t, err)
	_, err = st.Table("users").Insert(ctx, store.Record{"id": "u2", "name": "bob"})
	require.NoError(t, err)
	_, err = st.Table("documents").Insert(ctx, store.Record{"id": "d1", "userId": "u1", "title": "Quarterly Report"})
	require.NoError(t, err)
	_, err = st.Table("documents").Insert(ctx, store.Record{"id": "d2", "userId": "u1", "title": "Quarterly Summary"})
	require.NoError(t, err)

	reg, err := Rehydrate(ctx, st)
	require.NoError(t, err)

	require.Len(t, reg.Search("u1", "quarter"), 2)
	require.Len(t, reg.Search("u1", "quarterly r"), 1)
	assert.Empty(t, reg.Search("u2", ""))
	assert.ElementsMatch(t, []string{"u1", "u2"}, reg.Users())
}

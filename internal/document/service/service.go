package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/index"
	"github.com/docvault/docvault/internal/store"
	"github.com/docvault/docvault/pkg/logger"
	"github.com/docvault/docvault/pkg/metrics"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrIndexDesync reports an index mutation that failed after the store
	// write had already committed. The store write is never rolled back;
	// the index is stale until the next rehydration and callers should
	// treat the operation as otherwise successful.
	ErrIndexDesync = errors.New("document stored but index update failed")
)

const (
	documentsTable = "documents"
	usersTable     = "users"
)

// Indexer is the in-memory index surface the coordinator mirrors store
// writes into. *index.Registry implements it.
type Indexer interface {
	Insert(ownerID string, d *document.Document) error
	Remove(ownerID string, d *document.Document) error
	Search(ownerID, prefix string) []*document.Document
}

// Service coordinates every document mutation so the record store and the
// per-user tries never diverge in the dangerous direction: the store write
// happens first, and the index mutation only runs once the store write has
// committed. The index may lag the store (healed by rehydration) but never
// references a document absent from the store.
type Service struct {
	store *store.Store
	idx   Indexer
}

func New(st *store.Store, idx Indexer) *Service {
	return &Service{store: st, idx: idx}
}

// Search answers a prefix query from the index alone; the store is not
// consulted. An unknown owner yields an empty result, not an error.
func (s *Service) Search(ownerID, prefix string) []*document.Document {
	out := s.idx.Search(ownerID, prefix)
	outcome := "hit"
	if len(out) == 0 {
		outcome = "miss"
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	return out
}

// CreateAndIndex persists a new document and mirrors it into the owner's
// trie. On a store failure nothing is indexed. On an index failure the
// document is returned together with ErrIndexDesync.
func (s *Service) CreateAndIndex(ctx context.Context, ownerID, title, contentHash, fileExt string) (*document.Document, error) {
	d := &document.Document{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		ContentHash: contentHash,
		FileExt:     fileExt,
	}
	if _, err := s.store.Table(documentsTable).Insert(ctx, d.Record()); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	if err := s.idx.Insert(ownerID, d); err != nil {
		return d, s.desync("insert", d.ID, err)
	}
	return d, nil
}

// UpdateTitleAndReindex renames a stored document and moves it to the new
// title path in the owner's trie (remove old path, insert new).
func (s *Service) UpdateTitleAndReindex(ctx context.Context, docID, ownerID, oldTitle, newTitle string) error {
	tbl := s.store.Table(documentsTable)
	rec, err := tbl.Get(ctx, store.And(store.Eq("id", docID), store.Eq("userId", ownerID)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load document: %w", err)
	}
	existing, err := document.FromRecord(rec)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if _, err := tbl.Update(ctx, store.Record{"title": newTitle}, store.Eq("id", docID)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update document title: %w", err)
	}

	old := *existing
	old.Title = oldTitle
	updated := *existing
	updated.Title = newTitle
	if err := s.idx.Remove(ownerID, &old); err != nil {
		return s.desync("remove", docID, err)
	}
	if err := s.idx.Insert(ownerID, &updated); err != nil {
		return s.desync("insert", docID, err)
	}
	return nil
}

// DeleteAndDeindex removes the document from the store and then from the
// owner's trie. Deleting a document that is already gone is a no-op.
func (s *Service) DeleteAndDeindex(ctx context.Context, docID, ownerID, title string) error {
	if _, err := s.store.Table(documentsTable).Remove(ctx, store.And(store.Eq("id", docID), store.Eq("userId", ownerID))); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.idx.Remove(ownerID, &document.Document{ID: docID, OwnerID: ownerID, Title: title}); err != nil {
		return s.desync("remove", docID, err)
	}
	return nil
}

// Get returns one document by id.
func (s *Service) Get(ctx context.Context, docID string) (*document.Document, error) {
	rec, err := s.store.Table(documentsTable).Get(ctx, store.Eq("id", docID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return document.FromRecord(rec)
}

// List returns every stored document.
func (s *Service) List(ctx context.Context) ([]*document.Document, error) {
	recs, err := s.store.Table(documentsTable).All(ctx)
	if err != nil {
		return nil, err
	}
	return decodeDocuments(recs)
}

// ListByOwner returns the documents belonging to one owner.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*document.Document, error) {
	recs, err := s.store.Table(documentsTable).Search(ctx, store.Eq("userId", ownerID))
	if err != nil {
		return nil, err
	}
	return decodeDocuments(recs)
}

// FindByHash returns the document referencing the given content hash, or
// ErrNotFound. Used by the upload path to reject duplicate content.
func (s *Service) FindByHash(ctx context.Context, contentHash string) (*document.Document, error) {
	rec, err := s.store.Table(documentsTable).Get(ctx, store.Eq("hashValue", contentHash))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return document.FromRecord(rec)
}

// TitleTaken reports whether the owner already has a document with the
// given title, compared case-insensitively. This is the resource-layer
// uniqueness check; the index itself would silently shadow duplicates.
func (s *Service) TitleTaken(ctx context.Context, ownerID, title string) (bool, error) {
	recs, err := s.store.Table(documentsTable).Search(ctx, store.And(store.Eq("userId", ownerID), store.EqFold("title", title)))
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

func (s *Service) desync(op, docID string, err error) error {
	logger.Warnf("index desync: %s of document %s failed after committed store write: %v (heals on next rehydration)", op, docID, err)
	metrics.IndexDesync.Inc()
	return fmt.Errorf("%w: %s %s: %v", ErrIndexDesync, op, docID, err)
}

func decodeDocuments(recs []store.Record) ([]*document.Document, error) {
	out := make([]*document.Document, 0, len(recs))
	for _, r := range recs {
		d, err := document.FromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// storeListers adapts the record store to the rehydration contract.
type storeListers struct {
	st *store.Store
}

func (l *storeListers) ListUsers(ctx context.Context) ([]string, error) {
	recs, err := l.st.Table(usersTable).All(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		if id := r.String("id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (l *storeListers) ListByOwner(ctx context.Context, ownerID string) ([]*document.Document, error) {
	recs, err := l.st.Table(documentsTable).Search(ctx, store.Eq("userId", ownerID))
	if err != nil {
		return nil, err
	}
	return decodeDocuments(recs)
}

// Rehydrate rebuilds the per-user index registry from the store. Invoked
// exactly once at process start; a failure here must abort startup.
func Rehydrate(ctx context.Context, st *store.Store) (*index.Registry, error) {
	l := &storeListers{st: st}
	return index.Rehydrate(ctx, l, l)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docvault/docvault/pkg/metrics"
)

var (
	// ErrNotFound reports a read miss. Read paths treat it as a normal
	// outcome, not a hard failure.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable reports a backend I/O, network or serialization failure
	// on a durability-required operation.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrInvalidRecord reports a malformed record shape fed to the store.
	ErrInvalidRecord = errors.New("invalid record")
)

// Backend persists the entire table set as one unit. Implementations:
// flat-file JSON, cached remote object, cached wide-column row.
type Backend interface {
	// Load reads the full table set. A missing database is an empty
	// Tables, not an error.
	Load(ctx context.Context) (Tables, error)
	// Dump durably replaces the full table set.
	Dump(ctx context.Context, t Tables) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

// Store is an explicitly constructed record store handle. Callers own the
// instance and pass it where needed; there is no process-wide singleton.
//
// All table operations run the backend's read-modify-write cycle under one
// coarse per-instance lock, so concurrent writers cannot lose updates.
type Store struct {
	mu      sync.Mutex
	backend Backend
	timeout time.Duration
}

// Open wraps the given backend. timeout bounds each backend call; zero
// means no bound (suitable for the local flat-file backend).
func Open(b Backend, timeout time.Duration) *Store {
	return &Store{backend: b, timeout: timeout}
}

// Table returns a handle for the named logical table. Tables spring into
// existence on first insert; reading an absent table yields no records.
func (s *Store) Table(name string) *Table {
	return &Table{store: s, name: name}
}

// Import bulk-loads a decoded JSON document into the store, replacing the
// current contents. Used by the seed tool. Shapes are validated up front so
// a malformed input never reaches the backend.
func (s *Store) Import(ctx context.Context, raw map[string]any) error {
	tables, err := normalizeTables(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dump(ctx, tables)
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) load(ctx context.Context) (Tables, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.backend.Load(ctx)
}

func (s *Store) dump(ctx context.Context, t Tables) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	err := s.backend.Dump(ctx, t)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.StoreWrites.WithLabelValues(s.backend.Name(), result).Inc()
	return err
}

// Table exposes the record operations over one logical table.
type Table struct {
	store *Store
	name  string
}

// All returns every record in the table.
func (t *Table) All(ctx context.Context) ([]Record, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	tables, err := t.store.load(ctx)
	if err != nil {
		return nil, err
	}
	recs := tables[t.name]
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.clone())
	}
	return out, nil
}

// Get returns the first record matching p, or ErrNotFound.
func (t *Table) Get(ctx context.Context, p Predicate) (Record, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	tables, err := t.store.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range tables[t.name] {
		if p(r) {
			return r.clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Search returns every record matching p; an empty result is not an error.
func (t *Table) Search(ctx context.Context, p Predicate) ([]Record, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	tables, err := t.store.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for _, r := range tables[t.name] {
		if p(r) {
			out = append(out, r.clone())
		}
	}
	return out, nil
}

// Insert stores the record, assigning a fresh UUID under "id" when the
// caller did not provide one, and returns the id.
func (t *Table) Insert(ctx context.Context, rec Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	id := rec.String("id")
	if id == "" {
		id = uuid.NewString()
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	tables, err := t.store.load(ctx)
	if err != nil {
		return "", err
	}
	tables = tables.clone()
	if tables[t.name] == nil {
		tables[t.name] = map[string]Record{}
	}
	stored := rec.clone()
	stored["id"] = id
	tables[t.name][id] = stored
	if err := t.store.dump(ctx, tables); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields into every record matching p and returns the number
// of records updated. Zero matches yields ErrNotFound.
func (t *Table) Update(ctx context.Context, fields Record, p Predicate) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	tables, err := t.store.load(ctx)
	if err != nil {
		return 0, err
	}
	tables = tables.clone()
	n := 0
	for id, r := range tables[t.name] {
		if !p(r) {
			continue
		}
		for k, v := range fields {
			r[k] = v
		}
		tables[t.name][id] = r
		n++
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	if err := t.store.dump(ctx, tables); err != nil {
		return 0, err
	}
	return n, nil
}

// Remove deletes every record matching p and returns the number removed.
// Removing nothing is not an error.
func (t *Table) Remove(ctx context.Context, p Predicate) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	tables, err := t.store.load(ctx)
	if err != nil {
		return 0, err
	}
	tables = tables.clone()
	n := 0
	for id, r := range tables[t.name] {
		if p(r) {
			delete(tables[t.name], id)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	if err := t.store.dump(ctx, tables); err != nil {
		return 0, err
	}
	return n, nil
}

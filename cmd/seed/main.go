// Command seed loads a JSON fixture into the configured record store,
// replacing its current contents. The fixture may list each table either as
// an id-keyed mapping (the store's native shape) or as an array of records
// carrying an "id" field; arrays are re-keyed before import.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/database"
	"github.com/docvault/docvault/internal/storage"
	"github.com/docvault/docvault/internal/store"
)

func main() {
	in := flag.String("in", "seed.json", "path of the JSON fixture to load")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("read fixture: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Fatalf("parse fixture: %v", err)
	}

	prepared := make(map[string]any, len(raw))
	for name, v := range raw {
		keyed, err := keyByID(v)
		if err != nil {
			log.Fatalf("table %q: %v", name, err)
		}
		prepared[name] = keyed
	}

	ctx := context.Background()
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("open backend: %v", err)
	}
	st := store.Open(backend, cfg.Store.Timeout)
	if err := st.Import(ctx, prepared); err != nil {
		log.Fatalf("import: %v", err)
	}
	log.Printf("seeded %d tables into %s backend from %s", len(prepared), backend.Name(), *in)
}

// keyByID accepts either an id-keyed mapping (returned unchanged) or an
// array of records, which is converted to a mapping keyed by each record's
// "id" field.
func keyByID(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		out := make(map[string]any, len(t))
		for i, item := range t {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not an object", i)
			}
			id, ok := rec["id"].(string)
			if !ok || id == "" {
				return nil, fmt.Errorf("element %d has no string id", i)
			}
			out[id] = rec
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected object or array, got %T", v)
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		return store.NewFileBackend(cfg.Store.FilePath), nil
	case config.BackendObject:
		ms, err := storage.NewMinIOStorage(storage.LoadMinIOConfig())
		if err != nil {
			return nil, err
		}
		return store.NewObjectBackend(ms.Object(cfg.Store.ObjectKey), cfg.Store.CachePath), nil
	case config.BackendWideColumn:
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, err
		}
		return store.NewWideColumnBackend(store.NewMongoRow(database.DumpCollection(client, cfg.MongoDB))), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
}

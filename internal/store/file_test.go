package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	b := NewFileBackend(path)
	ctx := context.Background()

	in := Tables{
		"documents": {
			"d1": Record{"id": "d1", "title": "Quarterly Report", "userId": "u1"},
		},
		"users": {
			"u1": Record{"id": "u1", "name": "alice"},
		},
	}
	require.NoError(t, b.Dump(ctx, in))

	out, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Quarterly Report", out["documents"]["d1"].String("title"))
	require.Equal(t, "alice", out["users"]["u1"].String("name"))
}

func TestFileBackendEmptyMappingRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	b := NewFileBackend(path)
	ctx := context.Background()

	require.NoError(t, b.Dump(ctx, Tables{}))
	out, err := b.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestFileBackendMissingFileIsEmpty(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "absent.json"))
	out, err := b.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestFileBackendBlankFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	out, err := NewFileBackend(path).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileBackend(path).Load(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestFileBackendRejectsMalformedShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"documents": [1, 2]}`), 0o644))
	_, err := NewFileBackend(path).Load(context.Background())
	require.ErrorIs(t, err, ErrInvalidRecord)
}

// serialized form is stable: valid JSON object with sorted keys and no
// leftover temp files in the directory
func TestFileBackendStableSerialization(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	b := NewFileBackend(path)
	ctx := context.Background()

	in := Tables{
		"documents": {
			"d2": Record{"id": "d2", "title": "b"},
			"d1": Record{"id": "d1", "title": "a"},
		},
	}
	require.NoError(t, b.Dump(ctx, in))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, b.Dump(ctx, in))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(first, &decoded))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not survive the rename")
}

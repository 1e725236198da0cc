package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/docvault/docvault/pkg/logger"
)

// RemoteObject is the minimal object-storage surface the cached backend
// needs. The MinIO wrapper in internal/storage implements it.
type RemoteObject interface {
	// Stat reports the remote object's last-modified time, or exists=false
	// when the object is absent.
	Stat(ctx context.Context) (lastModified time.Time, exists bool, err error)
	// Fetch downloads the remote object into the local file.
	Fetch(ctx context.Context, localPath string) error
	// Store uploads the local file as the remote object.
	Store(ctx context.Context, localPath string) error
}

// ObjectBackend mirrors a single remote blob into a local cache file. Reads
// compare the blob's last-modified timestamp against the last successful
// sync and re-download when the remote is newer; writes go to the cache
// first (flush + fsync) and then upload. A write that cannot reach the
// remote has not committed and the error propagates to the caller.
type ObjectBackend struct {
	remote    RemoteObject
	cachePath string
	syncedAt  time.Time
}

func NewObjectBackend(remote RemoteObject, cachePath string) *ObjectBackend {
	return &ObjectBackend{remote: remote, cachePath: cachePath}
}

func (o *ObjectBackend) Load(ctx context.Context) (Tables, error) {
	lastModified, exists, err := o.remote.Stat(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: stat remote object: %v", ErrUnavailable, err)
	}
	if !exists {
		// cold start: remote not created yet
		if err := os.WriteFile(o.cachePath, []byte("{}\n"), 0o644); err != nil {
			return nil, fmt.Errorf("%w: init cache file: %v", ErrUnavailable, err)
		}
		logger.Infof("object store: remote object absent, initialized empty cache %s", o.cachePath)
		return Tables{}, nil
	}
	if lastModified.After(o.syncedAt) {
		if err := o.remote.Fetch(ctx, o.cachePath); err != nil {
			return nil, fmt.Errorf("%w: download remote object: %v", ErrUnavailable, err)
		}
		o.syncedAt = lastModified
		logger.Debugf("object store: refreshed cache %s (remote modified %s)", o.cachePath, lastModified)
	}
	data, err := os.ReadFile(o.cachePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read cache file: %v", ErrUnavailable, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return Tables{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse cache file: %v", ErrUnavailable, err)
	}
	return normalizeTables(raw)
}

func (o *ObjectBackend) Dump(ctx context.Context, t Tables) error {
	data, err := marshalTables(t)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(o.cachePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open cache file: %v", ErrUnavailable, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: write cache file: %v", ErrUnavailable, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: sync cache file: %v", ErrUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close cache file: %v", ErrUnavailable, err)
	}
	if err := o.remote.Store(ctx, o.cachePath); err != nil {
		return fmt.Errorf("%w: upload to remote object store: %v", ErrUnavailable, err)
	}
	o.syncedAt = time.Now()
	return nil
}

func (o *ObjectBackend) Name() string { return "object" }

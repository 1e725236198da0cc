package document

import (
	"fmt"

	"github.com/docvault/docvault/internal/store"
)

// Document is the persistent document model. The identity fields (ID,
// OwnerID) are immutable after creation; ContentHash is the dedup key for
// the uploaded content but is not a uniqueness constraint on the record.
type Document struct {
	ID          string `json:"id"`
	OwnerID     string `json:"userId"`
	Title       string `json:"title"`
	ContentHash string `json:"hashValue"`
	FileExt     string `json:"fileExt"`
}

// Record converts the document to the open field mapping persisted by the
// record store. Field names match the on-disk JSON layout.
func (d *Document) Record() store.Record {
	return store.Record{
		"id":        d.ID,
		"userId":    d.OwnerID,
		"title":     d.Title,
		"hashValue": d.ContentHash,
		"fileExt":   d.FileExt,
	}
}

// FromRecord converts a stored record back into a Document.
func FromRecord(r store.Record) (*Document, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil document record", store.ErrInvalidRecord)
	}
	d := &Document{
		ID:          r.String("id"),
		OwnerID:     r.String("userId"),
		Title:       r.String("title"),
		ContentHash: r.String("hashValue"),
		FileExt:     r.String("fileExt"),
	}
	if d.ID == "" {
		return nil, fmt.Errorf("%w: document record without id", store.ErrInvalidRecord)
	}
	return d, nil
}

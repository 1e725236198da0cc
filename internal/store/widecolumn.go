package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docvault/docvault/pkg/logger"
)

// rowID is the fixed key of the single logical row holding the whole
// serialized table set.
const rowID = "db"

// RowAPI is get-item/put-item against the single fixed row.
type RowAPI interface {
	GetRow(ctx context.Context) (dump string, found bool, err error)
	PutRow(ctx context.Context, dump string) error
}

// WideColumnBackend stores the entire table set as one attribute of one row.
// A transient error on read degrades to an empty store (treated as a cold
// start, not corruption); an error on write propagates to the caller.
type WideColumnBackend struct {
	row RowAPI
}

func NewWideColumnBackend(row RowAPI) *WideColumnBackend {
	return &WideColumnBackend{row: row}
}

func (w *WideColumnBackend) Load(ctx context.Context) (Tables, error) {
	dump, found, err := w.row.GetRow(ctx)
	if err != nil {
		logger.Warnf("wide-column store: read failed, serving empty store: %v", err)
		return Tables{}, nil
	}
	if !found || dump == "" {
		return Tables{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(dump), &raw); err != nil {
		logger.Warnf("wide-column store: parse failed, serving empty store: %v", err)
		return Tables{}, nil
	}
	return normalizeTables(raw)
}

func (w *WideColumnBackend) Dump(ctx context.Context, t Tables) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("%w: serialize tables: %v", ErrUnavailable, err)
	}
	if err := w.row.PutRow(ctx, string(data)); err != nil {
		return fmt.Errorf("%w: put row: %v", ErrUnavailable, err)
	}
	return nil
}

func (w *WideColumnBackend) Name() string { return "widecolumn" }

// mongoRow adapts a MongoDB collection to the single-row contract.
type mongoRow struct {
	col *mongo.Collection
}

// NewMongoRow returns a RowAPI backed by the given collection. The row is
// an upserted document {_id: "db", db_dump: "<json>"}.
func NewMongoRow(col *mongo.Collection) RowAPI {
	return &mongoRow{col: col}
}

func (m *mongoRow) GetRow(ctx context.Context) (string, bool, error) {
	var row struct {
		Dump string `bson:"db_dump"`
	}
	err := m.col.FindOne(ctx, bson.M{"_id": rowID}).Decode(&row)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", false, nil
		}
		return "", false, err
	}
	return row.Dump, true, nil
}

func (m *mongoRow) PutRow(ctx context.Context, dump string) error {
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, bson.M{"_id": rowID}, bson.M{"$set": bson.M{"db_dump": dump}}, opts)
	return err
}

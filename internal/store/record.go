package store

import (
	"fmt"
	"strings"
)

// Record is an open string-keyed field mapping. Schema is enforced by the
// callers converting to and from typed models, not by the store.
type Record map[string]any

// Tables is the full serialized table set: table name -> record id -> record.
type Tables map[string]map[string]Record

// Predicate is an equality (or compound-equality) test over record fields.
type Predicate func(Record) bool

// Eq matches records whose field equals value exactly.
func Eq(field string, value any) Predicate {
	return func(r Record) bool {
		v, ok := r[field]
		return ok && v == value
	}
}

// EqFold matches records whose string field equals value case-insensitively.
// Used for the title-collision checks at the resource layer.
func EqFold(field, value string) Predicate {
	return func(r Record) bool {
		v, ok := r[field].(string)
		return ok && strings.EqualFold(v, value)
	}
}

// And is the conjunction of the given predicates.
func And(ps ...Predicate) Predicate {
	return func(r Record) bool {
		for _, p := range ps {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// String returns a stable field lookup for debugging and conversions.
func (r Record) String(field string) string {
	v, _ := r[field].(string)
	return v
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (t Tables) clone() Tables {
	out := make(Tables, len(t))
	for name, recs := range t {
		cp := make(map[string]Record, len(recs))
		for id, r := range recs {
			cp[id] = r.clone()
		}
		out[name] = cp
	}
	return out
}

// normalizeTables validates and converts a freshly decoded JSON value into
// Tables. Every table must be a mapping of id -> record, every record a
// mapping of field -> value.
func normalizeTables(raw map[string]any) (Tables, error) {
	out := make(Tables, len(raw))
	for name, v := range raw {
		tbl, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: table %q is not a mapping", ErrInvalidRecord, name)
		}
		recs := make(map[string]Record, len(tbl))
		for id, rv := range tbl {
			rec, ok := rv.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: record %q in table %q is not a mapping", ErrInvalidRecord, id, name)
			}
			recs[id] = Record(rec)
		}
		out[name] = recs
	}
	return out, nil
}

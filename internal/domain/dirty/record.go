package dirty

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/solrsync/internal/domain"
)

// Record is the set of object ids of one class whose index state is stale
// for one operation type. Ids are unique and keep insertion order.
type Record struct {
	class string
	op    domain.Operation
	ids   []int64
}

// New creates a record, collapsing duplicate ids.
func New(class string, op domain.Operation, ids []int64) Record {
	return Record{class: class, op: op, ids: dedup(ids)}
}

// Decode parses a persisted JSON id array. A value that does not parse
// yields an empty record together with ErrMalformedDirtyRecord, so callers
// can keep using the record after logging.
func Decode(class string, op domain.Operation, data []byte) (Record, error) {
	if len(data) == 0 {
		return New(class, op, nil), nil
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return New(class, op, nil), fmt.Errorf("%w: %s/%s: %w", domain.ErrMalformedDirtyRecord, class, op, err)
	}
	return New(class, op, ids), nil
}

// Encode serializes the ids as a JSON array. An empty record encodes as [].
func (r Record) Encode() ([]byte, error) {
	ids := r.ids
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode dirty record: %w", err)
	}
	return data, nil
}

// Class returns the object class the record tracks.
func (r Record) Class() string { return r.class }

// Operation returns the operation type the record tracks.
func (r Record) Operation() domain.Operation { return r.op }

// IDs returns a copy of the pending ids.
func (r Record) IDs() []int64 { return slices.Clone(r.ids) }

// Len returns the number of pending ids.
func (r Record) Len() int { return len(r.ids) }

// Contains reports whether id is pending.
func (r Record) Contains(id int64) bool { return slices.Contains(r.ids, id) }

// With returns a record that also contains id.
func (r Record) With(id int64) Record {
	if r.Contains(id) {
		return Record{class: r.class, op: r.op, ids: slices.Clone(r.ids)}
	}
	ids := make([]int64, 0, len(r.ids)+1)
	ids = append(ids, r.ids...)
	ids = append(ids, id)
	return Record{class: r.class, op: r.op, ids: ids}
}

// Without returns a record that no longer contains id. Absent ids are a no-op.
func (r Record) Without(id int64) Record {
	ids := make([]int64, 0, len(r.ids))
	for _, v := range r.ids {
		if v != id {
			ids = append(ids, v)
		}
	}
	return Record{class: r.class, op: r.op, ids: ids}
}

// KeyNamespace starts every record's storage key suffix.
const KeyNamespace = "dirty:"

// Key returns the storage key suffix "dirty:{class}:{operation}".
func (r Record) Key() string {
	return Key(r.class, r.op)
}

// Key builds the storage key suffix for a (class, operation) pair.
func Key(class string, op domain.Operation) string {
	return KeyNamespace + class + ":" + string(op)
}

// ParseKey splits a suffix built by Key. ok is false for foreign keys and
// for operations that are not tracked.
func ParseKey(suffix string) (class string, op domain.Operation, ok bool) {
	rest, found := strings.CutPrefix(suffix, KeyNamespace)
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, ':')
	if i <= 0 {
		return "", "", false
	}
	class, op = rest[:i], domain.Operation(rest[i+1:])
	if !op.Tracked() {
		return "", "", false
	}
	return class, op, true
}

func dedup(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package notify

import (
	"context"
	"log/slog"
)

// MetadataStore is the read-modify-write surface over a record's metadata
// map.
type MetadataStore interface {
	GetMetadata(ctx context.Context, id string) (map[string]any, error)
	PutMetadata(ctx context.Context, id string, metadata map[string]any) error
}

// OutcomeRecorder merges delivery outcome fields into the originating
// record's metadata. Recording is observability, not a correctness gate:
// it never fails its caller, failures are logged and swallowed. There is
// no locking; at most one delivery is normally in flight per record and a
// lost update only affects outcome fields.
type OutcomeRecorder struct {
	store MetadataStore
}

func NewOutcomeRecorder(store MetadataStore) *OutcomeRecorder {
	return &OutcomeRecorder{store: store}
}

// Record shallow-merges fields over the record's existing metadata.
// Writes are additive: unrelated keys are never removed.
func (r *OutcomeRecorder) Record(ctx context.Context, recordID string, fields map[string]any) {
	current, err := r.store.GetMetadata(ctx, recordID)
	if err != nil {
		slog.Error("failed to load metadata for outcome recording", "record_id", recordID, "error", err)
		return
	}
	if current == nil {
		current = map[string]any{}
	}
	for key, value := range fields {
		current[key] = value
	}
	if err := r.store.PutMetadata(ctx, recordID, current); err != nil {
		slog.Error("failed to persist delivery outcome", "record_id", recordID, "error", err)
	}
}

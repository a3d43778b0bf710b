// Package provision hydrates the graph store from the externally populated
// catalog. The core consumes the Source interface; the NATS JetStream KV
// implementation reads entity and edge records from the catalog buckets
// written by the warehouse connector.
package provision

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/c360/metaresolve/errors"
	"github.com/c360/metaresolve/graph"
)

// Source produces complete snapshots of the catalog. Fetch returns the
// whole entity and edge set; incremental feeds are the source's concern,
// the store only ever swaps full snapshots.
type Source interface {
	Fetch(ctx context.Context) (*graph.Snapshot, error)
}

// EntityRecord is the wire form of one catalog entity.
type EntityRecord struct {
	Kind       string         `json:"kind"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties,omitempty"`
}

// EdgeRecord is the wire form of one catalog edge.
type EdgeRecord struct {
	FromID     string         `json:"from_id"`
	ToID       string         `json:"to_id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// decodeEntity parses and validates one entity record.
func decodeEntity(data []byte) (*graph.Entity, error) {
	var rec EntityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.WrapInvalid(errors.ErrParsingFailed, "provision", "decodeEntity",
			fmt.Sprintf("malformed entity record: %v", err))
	}
	if rec.ID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "provision", "decodeEntity",
			"entity record missing id")
	}
	if rec.Kind == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "provision", "decodeEntity",
			fmt.Sprintf("entity record %s missing kind", rec.ID))
	}
	return &graph.Entity{
		Kind:       graph.EntityKind(rec.Kind),
		ID:         rec.ID,
		Properties: rec.Properties,
	}, nil
}

// decodeEdge parses and validates one edge record.
func decodeEdge(data []byte) (graph.Edge, error) {
	var rec EdgeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return graph.Edge{}, errors.WrapInvalid(errors.ErrParsingFailed, "provision", "decodeEdge",
			fmt.Sprintf("malformed edge record: %v", err))
	}
	if rec.FromID == "" || rec.ToID == "" {
		return graph.Edge{}, errors.WrapInvalid(errors.ErrInvalidData, "provision", "decodeEdge",
			"edge record missing endpoint")
	}
	if rec.Label == "" {
		return graph.Edge{}, errors.WrapInvalid(errors.ErrInvalidData, "provision", "decodeEdge",
			fmt.Sprintf("edge record %s->%s missing label", rec.FromID, rec.ToID))
	}
	return graph.Edge{
		FromID:     rec.FromID,
		ToID:       rec.ToID,
		Label:      rec.Label,
		Properties: rec.Properties,
	}, nil
}

package graph

import (
	"sort"
	"time"
)

// Snapshot is an immutable, point-in-time view of the full entity and edge
// set, with adjacency precomputed in both directions. Snapshots are built
// once and never mutated; concurrent readers share them freely.
type Snapshot struct {
	entities map[EntityKind]map[string]*Entity
	byID     map[string]*Entity
	outgoing map[string][]Edge
	incoming map[string][]Edge

	entityCount     int
	edgeCount       int
	danglingSkipped int

	builtAt time.Time
}

// NewSnapshot builds a snapshot from raw entities and edges. Edges
// referencing an entity absent from the input are skipped and counted as
// dangling rather than failing the build; they are a data-quality signal
// for the ingestion collaborator, not a crash condition.
//
// Adjacency lists are sorted by (label, other entity ID) so that every
// query over the same snapshot produces identical ordering.
func NewSnapshot(entities []*Entity, edges []Edge) *Snapshot {
	s := &Snapshot{
		entities: make(map[EntityKind]map[string]*Entity),
		byID:     make(map[string]*Entity, len(entities)),
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
		builtAt:  time.Now(),
	}

	for _, e := range entities {
		if e == nil || e.ID == "" {
			continue
		}
		kindMap, ok := s.entities[e.Kind]
		if !ok {
			kindMap = make(map[string]*Entity)
			s.entities[e.Kind] = kindMap
		}
		if _, exists := kindMap[e.ID]; exists {
			// IDs are unique within a kind; first registration wins
			continue
		}
		kindMap[e.ID] = e
		s.entityCount++
		if _, exists := s.byID[e.ID]; !exists {
			s.byID[e.ID] = e
		}
	}

	for _, edge := range edges {
		if _, ok := s.byID[edge.FromID]; !ok {
			s.danglingSkipped++
			continue
		}
		if _, ok := s.byID[edge.ToID]; !ok {
			s.danglingSkipped++
			continue
		}
		s.outgoing[edge.FromID] = append(s.outgoing[edge.FromID], edge)
		s.incoming[edge.ToID] = append(s.incoming[edge.ToID], edge)
		s.edgeCount++
	}

	for id := range s.outgoing {
		sortEdges(s.outgoing[id], func(e Edge) string { return e.ToID })
	}
	for id := range s.incoming {
		sortEdges(s.incoming[id], func(e Edge) string { return e.FromID })
	}

	return s
}

// sortEdges orders edges by label, then by the ID on the far side.
func sortEdges(edges []Edge, otherID func(Edge) string) {
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Label != edges[j].Label {
			return edges[i].Label < edges[j].Label
		}
		return otherID(edges[i]) < otherID(edges[j])
	})
}

// Entity returns the entity with the given kind and ID, or nil.
func (s *Snapshot) Entity(kind EntityKind, id string) *Entity {
	kindMap, ok := s.entities[kind]
	if !ok {
		return nil
	}
	return kindMap[id]
}

// EntityByID returns the entity with the given ID regardless of kind, or
// nil. Edges reference entities by bare ID, so traversal resolves through
// this lookup.
func (s *Snapshot) EntityByID(id string) *Entity {
	return s.byID[id]
}

// Find returns all entities of the given kind matching the predicate, in
// ID order. A nil predicate matches everything.
func (s *Snapshot) Find(kind EntityKind, predicate func(*Entity) bool) []*Entity {
	kindMap, ok := s.entities[kind]
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(kindMap))
	for id := range kindMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var matched []*Entity
	for _, id := range ids {
		e := kindMap[id]
		if predicate == nil || predicate(e) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Outgoing returns edges leaving the entity. An empty label returns edges
// of every label.
func (s *Snapshot) Outgoing(id, label string) []Edge {
	return filterEdges(s.outgoing[id], label)
}

// Incoming returns edges arriving at the entity. An empty label returns
// edges of every label.
func (s *Snapshot) Incoming(id, label string) []Edge {
	return filterEdges(s.incoming[id], label)
}

func filterEdges(edges []Edge, label string) []Edge {
	if label == "" {
		return edges
	}
	var filtered []Edge
	for _, e := range edges {
		if e.Label == label {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// EntityCount returns the number of entities in the snapshot.
func (s *Snapshot) EntityCount() int {
	return s.entityCount
}

// EdgeCount returns the number of resolvable edges in the snapshot.
func (s *Snapshot) EdgeCount() int {
	return s.edgeCount
}

// DanglingSkipped returns the number of edges dropped at build time because
// an endpoint did not resolve.
func (s *Snapshot) DanglingSkipped() int {
	return s.danglingSkipped
}

// BuiltAt returns when the snapshot was constructed.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

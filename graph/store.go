package graph

import (
	"sync/atomic"

	"github.com/c360/metaresolve/errors"
)

// Reader is the read contract the resolution components consume. All
// methods are pure reads against the current snapshot.
type Reader interface {
	GetEntity(kind EntityKind, id string) (*Entity, error)
	FindEntities(kind EntityKind, predicate func(*Entity) bool) ([]*Entity, error)
	OutgoingEdges(id, label string) ([]Edge, error)
	IncomingEdges(id, label string) ([]Edge, error)
	Current() (*Snapshot, error)
}

// Ensure Store implements the Reader interface
var _ Reader = (*Store)(nil)

// Store holds the current graph snapshot behind an atomic pointer. Queries
// never mutate the graph; reload replaces the snapshot wholesale via Swap,
// so in-flight reads observe either the old or the new snapshot, never a
// partially-updated graph.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

// NewStore creates an empty, not-yet-hydrated store. Reads fail with
// ErrStoreUnavailable until the first Swap.
func NewStore() *Store {
	return &Store{}
}

// Swap atomically replaces the current snapshot.
func (st *Store) Swap(s *Snapshot) {
	st.snap.Store(s)
}

// Hydrated reports whether the store has received a snapshot.
func (st *Store) Hydrated() bool {
	return st.snap.Load() != nil
}

// Current returns the current snapshot, or ErrStoreUnavailable before the
// first hydration. Callers that issue several reads for one logical
// operation should hold the returned snapshot so all reads observe the
// same graph.
func (st *Store) Current() (*Snapshot, error) {
	s := st.snap.Load()
	if s == nil {
		return nil, errors.WrapTransient(ErrStoreUnavailable, "Store", "Current",
			"snapshot access before hydration")
	}
	return s, nil
}

// GetEntity returns the entity with the given kind and ID. Absence is a
// normal, expected outcome surfaced as ErrEntityNotFound.
func (st *Store) GetEntity(kind EntityKind, id string) (*Entity, error) {
	s, err := st.Current()
	if err != nil {
		return nil, err
	}
	e := s.Entity(kind, id)
	if e == nil {
		return nil, ErrEntityNotFound
	}
	return e, nil
}

// FindEntities returns entities of the given kind matching the predicate,
// in ID order.
func (st *Store) FindEntities(kind EntityKind, predicate func(*Entity) bool) ([]*Entity, error) {
	s, err := st.Current()
	if err != nil {
		return nil, err
	}
	return s.Find(kind, predicate), nil
}

// OutgoingEdges returns edges leaving the entity, optionally filtered by
// label.
func (st *Store) OutgoingEdges(id, label string) ([]Edge, error) {
	s, err := st.Current()
	if err != nil {
		return nil, err
	}
	return s.Outgoing(id, label), nil
}

// IncomingEdges returns edges arriving at the entity, optionally filtered
// by label.
func (st *Store) IncomingEdges(id, label string) ([]Edge, error) {
	s, err := st.Current()
	if err != nil {
		return nil, err
	}
	return s.Incoming(id, label), nil
}

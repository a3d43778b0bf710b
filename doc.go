// Package metaresolve is a metadata resolution service for tabular data
// warehouses, built on a property-graph representation of tables, columns,
// and business-glossary terms.
//
// # Purpose
//
// Downstream natural-language-to-query tools need grounded schema and
// business-term context before they can generate a warehouse query. This
// module answers the three question classes they ask:
//
//   - Given a table name, return its schema and related entities.
//   - Given a keyword, return matching business-glossary terms, ranked.
//   - Given two entity identifiers, find relationship paths between them
//     within a bounded number of hops.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│        Resolution Facade            │  Validation, dispatch,
//	│           (resolver)                │  envelope, error mapping
//	└─────────────────────────────────────┘
//	           ↓ delegates to
//	┌──────────┬──────────────┬───────────┐
//	│  schema  │   glossary   │  pathfind │  Schema assembly, term
//	│          │              │           │  search, path discovery
//	└──────────┴──────────────┴───────────┘
//	           ↓ read from
//	┌─────────────────────────────────────┐
//	│          Graph Store                │  Immutable snapshot,
//	│            (graph)                  │  atomic swap on reload
//	└─────────────────────────────────────┘
//
// The graph store holds an immutable snapshot of entities and edges. Reload
// replaces the snapshot wholesale via atomic swap, so concurrent readers
// always observe a consistent graph. The provision package hydrates
// snapshots from the externally populated catalog KV buckets.
//
// The module deliberately excludes the RPC transport, the warehouse
// connector that writes the catalog, and process lifecycle concerns. Those
// are collaborators: the transport invokes resolver.Resolver, and the
// connector feeds provision.Source.
package metaresolve

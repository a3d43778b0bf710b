// Package schema assembles table schemas from the property graph. A schema
// is the table's typed view, its columns in deterministic order, and
// optionally the relationships touching the table.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/c360/metaresolve/errors"
	"github.com/c360/metaresolve/graph"
)

// Relationship is one edge touching the table, seen from the table's side.
type Relationship struct {
	// Label is the edge label, e.g. REFERENCES or DESCRIBES
	Label string `json:"label"`

	// OtherID is the entity on the far side of the edge
	OtherID string `json:"other_id"`

	// Direction reports whether the edge leaves or enters the table's side
	Direction graph.Direction `json:"direction"`
}

// TableSchema is the assembled schema for one table.
type TableSchema struct {
	Table   graph.Table    `json:"table"`
	Columns []graph.Column `json:"columns"`

	// Relationships is populated only when requested
	Relationships []Relationship `json:"relationships,omitempty"`
}

// Deps holds the dependencies for the assembler
type Deps struct {
	Store  graph.Reader
	Logger *slog.Logger
}

// Assembler builds table schemas from the graph store.
type Assembler struct {
	store  graph.Reader
	logger *slog.Logger
}

// NewAssembler creates a schema assembler.
func NewAssembler(deps Deps) (*Assembler, error) {
	if deps.Store == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "schema", "NewAssembler",
			"store is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Assembler{
		store:  deps.Store,
		logger: deps.Logger.With("component", "schema"),
	}, nil
}

// TableSchema assembles the schema for the named table. Lookup is exact
// match on the qualified table name. Columns are every HAS_COLUMN target,
// ordered by the table's declared column order when it records one, else
// lexically by column ID. A HAS_COLUMN edge whose target is missing or is
// not a column, or a column whose owning-table property disagrees with the
// edge, fails the whole assembly with ErrInconsistentGraph; a schema is
// never returned partially.
func (a *Assembler) TableSchema(ctx context.Context, tableName string, includeRelationships bool) (*TableSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "schema", "TableSchema", "context check")
	}

	// Hold one snapshot for the whole assembly so columns and edges agree
	snap, err := a.store.Current()
	if err != nil {
		return nil, err
	}

	tableEntity := snap.Entity(graph.KindTable, tableName)
	if tableEntity == nil {
		return nil, graph.ErrEntityNotFound
	}
	table, err := tableEntity.AsTable()
	if err != nil {
		return nil, errors.WrapInvalid(err, "schema", "TableSchema", "table conversion")
	}

	columns, err := a.collectColumns(snap, table)
	if err != nil {
		return nil, err
	}

	result := &TableSchema{
		Table:   table,
		Columns: columns,
	}

	if includeRelationships {
		result.Relationships = collectRelationships(snap, table.Name, columns)
	}

	a.logger.Debug("schema assembled",
		"table", table.Name,
		"columns", len(result.Columns),
		"relationships", len(result.Relationships))

	return result, nil
}

// collectColumns resolves every HAS_COLUMN target and orders the result.
func (a *Assembler) collectColumns(snap *graph.Snapshot, table graph.Table) ([]graph.Column, error) {
	edges := snap.Outgoing(table.Name, graph.LabelHasColumn)

	columns := make([]graph.Column, 0, len(edges))
	for _, edge := range edges {
		entity := snap.EntityByID(edge.ToID)
		if entity == nil || entity.Kind != graph.KindColumn {
			return nil, errors.WrapInvalid(graph.ErrInconsistentGraph, "schema", "TableSchema",
				fmt.Sprintf("HAS_COLUMN target %s of table %s is not a column", edge.ToID, table.Name))
		}
		column, err := entity.AsColumn()
		if err != nil {
			return nil, errors.WrapInvalid(graph.ErrInconsistentGraph, "schema", "TableSchema",
				fmt.Sprintf("column %s conversion: %v", edge.ToID, err))
		}
		if column.TableID != "" && column.TableID != table.Name {
			return nil, errors.WrapInvalid(graph.ErrInconsistentGraph, "schema", "TableSchema",
				fmt.Sprintf("column %s claims table %s but is linked to %s",
					column.ID, column.TableID, table.Name))
		}
		columns = append(columns, column)
	}

	orderColumns(columns, table.ColumnOrder)
	return columns, nil
}

// orderColumns sorts columns by the table's declared order when present,
// else lexically by ID. Columns absent from a declared order sort after the
// declared ones, lexically among themselves.
func orderColumns(columns []graph.Column, declared []string) {
	if len(declared) == 0 {
		sort.Slice(columns, func(i, j int) bool {
			return columns[i].ID < columns[j].ID
		})
		return
	}

	rank := make(map[string]int, len(declared))
	for i, id := range declared {
		rank[id] = i
	}

	sort.Slice(columns, func(i, j int) bool {
		ri, iDeclared := rank[columns[i].ID]
		rj, jDeclared := rank[columns[j].ID]
		switch {
		case iDeclared && jDeclared:
			return ri < rj
		case iDeclared:
			return true
		case jDeclared:
			return false
		default:
			return columns[i].ID < columns[j].ID
		}
	})
}

// collectRelationships gathers REFERENCES edges touching any of the table's
// columns, in both directions, plus DESCRIBES edges pointing at the table
// itself. Ordering is deterministic: label, then other ID, then direction.
func collectRelationships(snap *graph.Snapshot, tableName string, columns []graph.Column) []Relationship {
	rels := make([]Relationship, 0)

	for _, column := range columns {
		for _, edge := range snap.Outgoing(column.ID, graph.LabelReferences) {
			rels = append(rels, Relationship{
				Label:     edge.Label,
				OtherID:   edge.ToID,
				Direction: graph.DirectionOutgoing,
			})
		}
		for _, edge := range snap.Incoming(column.ID, graph.LabelReferences) {
			rels = append(rels, Relationship{
				Label:     edge.Label,
				OtherID:   edge.FromID,
				Direction: graph.DirectionIncoming,
			})
		}
	}

	for _, edge := range snap.Incoming(tableName, graph.LabelDescribes) {
		rels = append(rels, Relationship{
			Label:     edge.Label,
			OtherID:   edge.FromID,
			Direction: graph.DirectionIncoming,
		})
	}

	sort.Slice(rels, func(i, j int) bool {
		if rels[i].Label != rels[j].Label {
			return rels[i].Label < rels[j].Label
		}
		if rels[i].OtherID != rels[j].OtherID {
			return rels[i].OtherID < rels[j].OtherID
		}
		return rels[i].Direction < rels[j].Direction
	})

	return rels
}

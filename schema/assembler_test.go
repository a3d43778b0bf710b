package schema

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/metaresolve/graph"
)

func tableEntity(name string, columnOrder ...string) *graph.Entity {
	props := map[string]any{}
	if len(columnOrder) > 0 {
		props[graph.PropColumnOrder] = columnOrder
	}
	return &graph.Entity{Kind: graph.KindTable, ID: name, Properties: props}
}

func columnEntity(id, table, dataType string) *graph.Entity {
	return &graph.Entity{
		Kind: graph.KindColumn,
		ID:   id,
		Properties: map[string]any{
			graph.PropTable:    table,
			graph.PropDataType: dataType,
		},
	}
}

func hasColumn(table, column string) graph.Edge {
	return graph.Edge{FromID: table, ToID: column, Label: graph.LabelHasColumn}
}

// ordersGraph builds the orders/customers fixture: orders(id, customer_id)
// with orders.customer_id referencing customers.id.
func ordersGraph() ([]*graph.Entity, []graph.Edge) {
	entities := []*graph.Entity{
		tableEntity("orders", "orders.id", "orders.customer_id"),
		tableEntity("customers"),
		columnEntity("orders.id", "orders", "bigint"),
		columnEntity("orders.customer_id", "orders", "bigint"),
		columnEntity("customers.id", "customers", "bigint"),
		{
			Kind: graph.KindBusinessTerm,
			ID:   "term.order",
			Properties: map[string]any{
				graph.PropName: "Order",
			},
		},
	}
	edges := []graph.Edge{
		hasColumn("orders", "orders.id"),
		hasColumn("orders", "orders.customer_id"),
		hasColumn("customers", "customers.id"),
		{FromID: "orders.customer_id", ToID: "customers.id", Label: graph.LabelReferences},
		{FromID: "term.order", ToID: "orders", Label: graph.LabelDescribes},
	}
	return entities, edges
}

func newTestAssembler(t *testing.T, entities []*graph.Entity, edges []graph.Edge) *Assembler {
	t.Helper()

	store := graph.NewStore()
	store.Swap(graph.NewSnapshot(entities, edges))

	assembler, err := NewAssembler(Deps{Store: store})
	require.NoError(t, err)
	return assembler
}

func newOrdersAssembler(t *testing.T) *Assembler {
	t.Helper()

	entities, edges := ordersGraph()
	return newTestAssembler(t, entities, edges)
}

func TestNewAssemblerRequiresStore(t *testing.T) {
	_, err := NewAssembler(Deps{})
	assert.Error(t, err)
}

func TestTableSchemaOrdersScenario(t *testing.T) {
	assembler := newOrdersAssembler(t)

	result, err := assembler.TableSchema(context.Background(), "orders", true)
	require.NoError(t, err)

	assert.Equal(t, "orders", result.Table.Name)
	require.Len(t, result.Columns, 2)
	assert.Equal(t, "orders.id", result.Columns[0].ID)
	assert.Equal(t, "orders.customer_id", result.Columns[1].ID)

	require.Len(t, result.Relationships, 2)
	assert.Equal(t, Relationship{
		Label:     graph.LabelDescribes,
		OtherID:   "term.order",
		Direction: graph.DirectionIncoming,
	}, result.Relationships[0])
	assert.Equal(t, Relationship{
		Label:     graph.LabelReferences,
		OtherID:   "customers.id",
		Direction: graph.DirectionOutgoing,
	}, result.Relationships[1])
}

func TestTableSchemaIncomingReferences(t *testing.T) {
	assembler := newOrdersAssembler(t)

	result, err := assembler.TableSchema(context.Background(), "customers", true)
	require.NoError(t, err)

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, Relationship{
		Label:     graph.LabelReferences,
		OtherID:   "orders.customer_id",
		Direction: graph.DirectionIncoming,
	}, result.Relationships[0])
}

func TestTableSchemaWithoutRelationships(t *testing.T) {
	assembler := newOrdersAssembler(t)

	result, err := assembler.TableSchema(context.Background(), "orders", false)
	require.NoError(t, err)
	assert.Nil(t, result.Relationships)
}

func TestTableSchemaUnknownTable(t *testing.T) {
	assembler := newOrdersAssembler(t)

	_, err := assembler.TableSchema(context.Background(), "missing", false)
	assert.True(t, stderrors.Is(err, graph.ErrEntityNotFound))

	// Lookup is exact match, no fuzzy fallback
	_, err = assembler.TableSchema(context.Background(), "Orders", false)
	assert.True(t, stderrors.Is(err, graph.ErrEntityNotFound))
}

func TestTableSchemaLexicalOrderWithoutDeclaredOrder(t *testing.T) {
	entities := []*graph.Entity{
		tableEntity("t"),
		columnEntity("t.b", "t", "text"),
		columnEntity("t.a", "t", "text"),
		columnEntity("t.c", "t", "text"),
	}
	edges := []graph.Edge{
		hasColumn("t", "t.b"),
		hasColumn("t", "t.a"),
		hasColumn("t", "t.c"),
	}
	assembler := newTestAssembler(t, entities, edges)

	result, err := assembler.TableSchema(context.Background(), "t", false)
	require.NoError(t, err)

	require.Len(t, result.Columns, 3)
	assert.Equal(t, "t.a", result.Columns[0].ID)
	assert.Equal(t, "t.b", result.Columns[1].ID)
	assert.Equal(t, "t.c", result.Columns[2].ID)
}

func TestTableSchemaDeclaredOrderWithStragglers(t *testing.T) {
	entities := []*graph.Entity{
		tableEntity("t", "t.c", "t.a"),
		columnEntity("t.a", "t", "text"),
		columnEntity("t.b", "t", "text"),
		columnEntity("t.c", "t", "text"),
		columnEntity("t.z", "t", "text"),
	}
	edges := []graph.Edge{
		hasColumn("t", "t.a"),
		hasColumn("t", "t.b"),
		hasColumn("t", "t.c"),
		hasColumn("t", "t.z"),
	}
	assembler := newTestAssembler(t, entities, edges)

	result, err := assembler.TableSchema(context.Background(), "t", false)
	require.NoError(t, err)

	got := make([]string, 0, len(result.Columns))
	for _, c := range result.Columns {
		got = append(got, c.ID)
	}
	// Declared columns first in declared order, the rest lexical
	assert.Equal(t, []string{"t.c", "t.a", "t.b", "t.z"}, got)
}

func TestTableSchemaOwningTableMismatch(t *testing.T) {
	entities := []*graph.Entity{
		tableEntity("t"),
		tableEntity("other"),
		columnEntity("t.a", "other", "text"),
	}
	edges := []graph.Edge{hasColumn("t", "t.a")}
	assembler := newTestAssembler(t, entities, edges)

	_, err := assembler.TableSchema(context.Background(), "t", false)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, graph.ErrInconsistentGraph))
}

func TestTableSchemaNonColumnTarget(t *testing.T) {
	entities := []*graph.Entity{
		tableEntity("t"),
		tableEntity("impostor"),
	}
	edges := []graph.Edge{hasColumn("t", "impostor")}
	assembler := newTestAssembler(t, entities, edges)

	_, err := assembler.TableSchema(context.Background(), "t", false)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, graph.ErrInconsistentGraph))
}

func TestTableSchemaDeterministic(t *testing.T) {
	assembler := newOrdersAssembler(t)

	first, err := assembler.TableSchema(context.Background(), "orders", true)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := assembler.TableSchema(context.Background(), "orders", true)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTableSchemaStoreUnavailable(t *testing.T) {
	assembler, err := NewAssembler(Deps{Store: graph.NewStore()})
	require.NoError(t, err)

	_, err = assembler.TableSchema(context.Background(), "orders", false)
	assert.Error(t, err)
}

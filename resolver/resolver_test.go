package resolver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/metaresolve/config"
	"github.com/c360/metaresolve/errors"
	"github.com/c360/metaresolve/graph"
	"github.com/c360/metaresolve/metric"
	"github.com/c360/metaresolve/schema"
)

// fixtureSnapshot builds the orders/customers catalog used across the
// facade tests.
func fixtureSnapshot() *graph.Snapshot {
	entities := []*graph.Entity{
		{Kind: graph.KindTable, ID: "orders", Properties: map[string]any{
			graph.PropColumnOrder: []string{"orders.id", "orders.customer_id"},
		}},
		{Kind: graph.KindTable, ID: "customers"},
		{Kind: graph.KindColumn, ID: "orders.id", Properties: map[string]any{
			graph.PropTable: "orders", graph.PropDataType: "bigint",
		}},
		{Kind: graph.KindColumn, ID: "orders.customer_id", Properties: map[string]any{
			graph.PropTable: "orders", graph.PropDataType: "bigint",
		}},
		{Kind: graph.KindColumn, ID: "customers.id", Properties: map[string]any{
			graph.PropTable: "customers", graph.PropDataType: "bigint",
		}},
		{Kind: graph.KindBusinessTerm, ID: "term.invoice_amount", Properties: map[string]any{
			graph.PropName:       "Invoice Amount",
			graph.PropDefinition: "Total billed on an invoice.",
			graph.PropSynonyms:   []string{"bill total"},
		}},
		{Kind: graph.KindBusinessTerm, ID: "term.payment", Properties: map[string]any{
			graph.PropName:       "Payment Status",
			graph.PropDefinition: "Settlement state of an invoice.",
		}},
	}
	edges := []graph.Edge{
		{FromID: "orders", ToID: "orders.id", Label: graph.LabelHasColumn},
		{FromID: "orders", ToID: "orders.customer_id", Label: graph.LabelHasColumn},
		{FromID: "customers", ToID: "customers.id", Label: graph.LabelHasColumn},
		{FromID: "orders.customer_id", ToID: "customers.id", Label: graph.LabelReferences},
	}
	return graph.NewSnapshot(entities, edges)
}

func quickRetry() errors.RetryConfig {
	return errors.RetryConfig{
		MaxRetries:    1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func newTestResolver(t *testing.T, hydrated bool) *Resolver {
	t.Helper()

	store := graph.NewStore()
	if hydrated {
		store.Swap(fixtureSnapshot())
	}

	cfg := config.Config{StoreRetry: quickRetry()}
	r, err := New(cfg, Deps{Store: store})
	require.NoError(t, err)
	return r
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(config.Config{}, Deps{})
	assert.Error(t, err)
}

func TestDispatchGetTableSchema(t *testing.T) {
	r := newTestResolver(t, true)

	env := r.Dispatch(context.Background(), Request{
		Op: OpGetTableSchema,
		GetTableSchema: &GetTableSchemaParams{
			TableName:            "orders",
			IncludeRelationships: true,
		},
	})

	require.Nil(t, env.Error)
	result, ok := env.Data.(GetTableSchemaResult)
	require.True(t, ok)

	assert.Equal(t, "orders", result.Table.Name)
	require.Len(t, result.Columns, 2)
	assert.Equal(t, ColumnInfo{Name: "id", DataType: "bigint"}, result.Columns[0])
	assert.Equal(t, ColumnInfo{Name: "customer_id", DataType: "bigint"}, result.Columns[1])

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, schema.Relationship{
		Label:     graph.LabelReferences,
		OtherID:   "customers.id",
		Direction: graph.DirectionOutgoing,
	}, result.Relationships[0])
}

func TestDispatchSearchBusinessTerms(t *testing.T) {
	r := newTestResolver(t, true)

	env := r.Dispatch(context.Background(), Request{
		Op: OpSearchBusinessTerms,
		SearchBusinessTerms: &SearchBusinessTermsParams{
			Keyword: "invoice",
		},
	})

	require.Nil(t, env.Error)
	terms, ok := env.Data.([]TermMatch)
	require.True(t, ok)

	// Name match ranks above definition match
	require.Len(t, terms, 2)
	assert.Equal(t, "Invoice Amount", terms[0].Name)
	assert.Equal(t, "name", terms[0].MatchedField)
	assert.Equal(t, "Payment Status", terms[1].Name)
	assert.Equal(t, "definition", terms[1].MatchedField)
}

func TestDispatchFindRelationships(t *testing.T) {
	r := newTestResolver(t, true)

	env := r.Dispatch(context.Background(), Request{
		Op: OpFindRelationships,
		FindRelationships: &FindRelationshipsParams{
			SourceID: "orders",
			TargetID: "customers",
			MaxDepth: 4,
		},
	})

	require.Nil(t, env.Error)
	paths, ok := env.Data.([]PathView)
	require.True(t, ok)

	// orders -> orders.customer_id -> customers.id <- customers
	require.Len(t, paths, 1)
	assert.Equal(t, []PathStep{
		{EntityID: "orders.customer_id", EdgeLabel: graph.LabelHasColumn, Direction: graph.DirectionOutgoing},
		{EntityID: "customers.id", EdgeLabel: graph.LabelReferences, Direction: graph.DirectionOutgoing},
		{EntityID: "customers", EdgeLabel: graph.LabelHasColumn, Direction: graph.DirectionIncoming},
	}, paths[0].Steps)
}

func TestDispatchFindRelationshipsUnreachable(t *testing.T) {
	r := newTestResolver(t, true)

	env := r.Dispatch(context.Background(), Request{
		Op: OpFindRelationships,
		FindRelationships: &FindRelationshipsParams{
			SourceID: "orders",
			TargetID: "term.invoice_amount",
			MaxDepth: 5,
		},
	})

	require.Nil(t, env.Error)
	paths := env.Data.([]PathView)
	assert.Empty(t, paths)
}

func TestEnvelopeWireShapes(t *testing.T) {
	r := newTestResolver(t, true)

	t.Run("get_table_schema", func(t *testing.T) {
		env := r.Dispatch(context.Background(), Request{
			Op: OpGetTableSchema,
			GetTableSchema: &GetTableSchemaParams{
				TableName:            "orders",
				IncludeRelationships: true,
			},
		})
		require.Nil(t, env.Error)

		raw, err := json.Marshal(env.Data)
		require.NoError(t, err)

		var decoded struct {
			Table struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"table"`
			Columns []map[string]any `json:"columns"`
			Rels    []map[string]any `json:"relationships"`
		}
		require.NoError(t, json.Unmarshal(raw, &decoded))

		assert.Equal(t, "orders", decoded.Table.Name)
		require.Len(t, decoded.Columns, 2)
		assert.Equal(t, "id", decoded.Columns[0]["name"])
		assert.Contains(t, decoded.Columns[0], "data_type")
		assert.Contains(t, decoded.Columns[0], "nullable")
		assert.NotContains(t, decoded.Columns[0], "ID")
		assert.NotContains(t, decoded.Columns[0], "TableID")
		require.Len(t, decoded.Rels, 1)
		assert.Equal(t, "customers.id", decoded.Rels[0]["other_id"])
	})

	t.Run("search_business_terms", func(t *testing.T) {
		env := r.Dispatch(context.Background(), Request{
			Op:                  OpSearchBusinessTerms,
			SearchBusinessTerms: &SearchBusinessTermsParams{Keyword: "invoice"},
		})
		require.Nil(t, env.Error)

		raw, err := json.Marshal(env.Data)
		require.NoError(t, err)

		// Bare ordered array, not an object wrapper
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "Invoice Amount", decoded[0]["name"])
		assert.Contains(t, decoded[0], "definition")
		assert.Contains(t, decoded[0], "synonyms")
	})

	t.Run("find_relationships", func(t *testing.T) {
		env := r.Dispatch(context.Background(), Request{
			Op: OpFindRelationships,
			FindRelationships: &FindRelationshipsParams{
				SourceID: "orders",
				TargetID: "customers",
				MaxDepth: 4,
			},
		})
		require.Nil(t, env.Error)

		raw, err := json.Marshal(env.Data)
		require.NoError(t, err)

		var decoded []struct {
			Steps []map[string]any `json:"steps"`
		}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		require.Len(t, decoded, 1)
		require.Len(t, decoded[0].Steps, 3)
		assert.Equal(t, "orders.customer_id", decoded[0].Steps[0]["entity_id"])
		assert.Equal(t, graph.LabelHasColumn, decoded[0].Steps[0]["edge_label"])
		assert.NotContains(t, decoded[0].Steps[0], "edge")
	})
}

func TestFindRelationshipsParamTags(t *testing.T) {
	var params FindRelationshipsParams
	require.NoError(t, json.Unmarshal(
		[]byte(`{"source": "orders", "target": "customers", "max_depth": 3}`), &params))

	assert.Equal(t, "orders", params.SourceID)
	assert.Equal(t, "customers", params.TargetID)
	assert.Equal(t, 3, params.MaxDepth)
}

func TestDispatchErrorKinds(t *testing.T) {
	r := newTestResolver(t, true)

	tests := []struct {
		name string
		req  Request
		kind ErrorKind
	}{
		{
			"unknown operation",
			Request{Op: Op("drop_table")},
			KindValidationError,
		},
		{
			"missing params",
			Request{Op: OpGetTableSchema},
			KindValidationError,
		},
		{
			"empty table name",
			Request{Op: OpGetTableSchema, GetTableSchema: &GetTableSchemaParams{TableName: "  "}},
			KindValidationError,
		},
		{
			"unknown table",
			Request{Op: OpGetTableSchema, GetTableSchema: &GetTableSchemaParams{TableName: "missing"}},
			KindEntityNotFound,
		},
		{
			"empty keyword",
			Request{Op: OpSearchBusinessTerms, SearchBusinessTerms: &SearchBusinessTermsParams{Keyword: ""}},
			KindValidationError,
		},
		{
			"negative limit",
			Request{Op: OpSearchBusinessTerms, SearchBusinessTerms: &SearchBusinessTermsParams{Keyword: "x", Limit: -1}},
			KindValidationError,
		},
		{
			"zero max depth",
			Request{Op: OpFindRelationships, FindRelationships: &FindRelationshipsParams{SourceID: "a", TargetID: "b"}},
			KindValidationError,
		},
		{
			"unknown path endpoint",
			Request{Op: OpFindRelationships, FindRelationships: &FindRelationshipsParams{SourceID: "missing", TargetID: "orders", MaxDepth: 2}},
			KindEntityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := r.Dispatch(context.Background(), tt.req)
			require.NotNil(t, env.Error)
			assert.Nil(t, env.Data)
			assert.Equal(t, tt.kind, env.Error.Kind)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestDispatchInconsistentGraph(t *testing.T) {
	store := graph.NewStore()
	store.Swap(graph.NewSnapshot(
		[]*graph.Entity{
			{Kind: graph.KindTable, ID: "t"},
			{Kind: graph.KindTable, ID: "other"},
			{Kind: graph.KindColumn, ID: "t.a", Properties: map[string]any{graph.PropTable: "other"}},
		},
		[]graph.Edge{{FromID: "t", ToID: "t.a", Label: graph.LabelHasColumn}},
	))

	r, err := New(config.Config{StoreRetry: quickRetry()}, Deps{Store: store})
	require.NoError(t, err)

	env := r.Dispatch(context.Background(), Request{
		Op:             OpGetTableSchema,
		GetTableSchema: &GetTableSchemaParams{TableName: "t"},
	})
	require.NotNil(t, env.Error)
	assert.Equal(t, KindInconsistentGraph, env.Error.Kind)
}

func TestDispatchStoreUnavailable(t *testing.T) {
	r := newTestResolver(t, false)

	env := r.Dispatch(context.Background(), Request{
		Op:             OpGetTableSchema,
		GetTableSchema: &GetTableSchemaParams{TableName: "orders"},
	})
	require.NotNil(t, env.Error)
	assert.Equal(t, KindStoreUnavailable, env.Error.Kind)
}

func TestDispatchRetriesUntilHydrated(t *testing.T) {
	store := graph.NewStore()

	cfg := config.Config{
		StoreRetry: errors.RetryConfig{
			MaxRetries:    20,
			InitialDelay:  10 * time.Millisecond,
			MaxDelay:      20 * time.Millisecond,
			BackoffFactor: 1.5,
		},
	}
	r, err := New(cfg, Deps{Store: store})
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		store.Swap(fixtureSnapshot())
	}()

	env := r.Dispatch(context.Background(), Request{
		Op:             OpGetTableSchema,
		GetTableSchema: &GetTableSchemaParams{TableName: "orders"},
	})
	require.Nil(t, env.Error)
	assert.NotNil(t, env.Data)
}

func TestDispatchTimeout(t *testing.T) {
	r := newTestResolver(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := r.Dispatch(ctx, Request{
		Op: OpFindRelationships,
		FindRelationships: &FindRelationshipsParams{
			SourceID: "orders",
			TargetID: "customers",
			MaxDepth: 4,
		},
	})
	require.NotNil(t, env.Error)
	assert.Equal(t, KindTimeout, env.Error.Kind)
}

func TestDispatchRecoversPanics(t *testing.T) {
	r := newTestResolver(t, true)

	// Force a nil dereference inside the operation path
	r.assembler = nil

	var env Envelope
	assert.NotPanics(t, func() {
		env = r.Dispatch(context.Background(), Request{
			Op:             OpGetTableSchema,
			GetTableSchema: &GetTableSchemaParams{TableName: "orders"},
		})
	})
	require.NotNil(t, env.Error)
	assert.Equal(t, KindInternal, env.Error.Kind)
}

func TestDispatchWithMetrics(t *testing.T) {
	store := graph.NewStore()
	store.Swap(fixtureSnapshot())

	registry := metric.NewMetricsRegistry()
	r, err := New(config.Config{StoreRetry: quickRetry()}, Deps{
		Store:   store,
		Metrics: registry,
	})
	require.NoError(t, err)

	r.Dispatch(context.Background(), Request{
		Op:             OpGetTableSchema,
		GetTableSchema: &GetTableSchemaParams{TableName: "orders"},
	})
	r.Dispatch(context.Background(), Request{
		Op:             OpGetTableSchema,
		GetTableSchema: &GetTableSchemaParams{TableName: "missing"},
	})

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestHealthStatus(t *testing.T) {
	r := newTestResolver(t, false)
	assert.True(t, r.HealthStatus().IsUnhealthy())

	r.store.Swap(fixtureSnapshot())
	status := r.HealthStatus()
	assert.True(t, status.IsHealthy())
	require.Len(t, status.SubStatuses, 1)
	assert.Equal(t, "graph_store", status.SubStatuses[0].Component)
}

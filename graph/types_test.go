package graph

import "testing"

func TestAsTable(t *testing.T) {
	e := &Entity{
		Kind: KindTable,
		ID:   "analytics.orders",
		Properties: map[string]any{
			PropDescription: "Customer orders",
			PropColumnOrder: []string{"analytics.orders.id", "analytics.orders.customer_id"},
		},
	}

	table, err := e.AsTable()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Name != "analytics.orders" {
		t.Errorf("expected name analytics.orders, got %s", table.Name)
	}
	if table.Description != "Customer orders" {
		t.Errorf("expected description, got %s", table.Description)
	}
	if len(table.ColumnOrder) != 2 {
		t.Errorf("expected 2 declared columns, got %d", len(table.ColumnOrder))
	}
}

func TestAsTableWrongKind(t *testing.T) {
	e := &Entity{Kind: KindColumn, ID: "orders.id"}
	if _, err := e.AsTable(); err == nil {
		t.Error("expected error converting column entity to table view")
	}
}

func TestAsColumn(t *testing.T) {
	e := &Entity{
		Kind: KindColumn,
		ID:   "orders.customer_id",
		Properties: map[string]any{
			PropDataType: "bigint",
			PropNullable: true,
			PropTable:    "orders",
		},
	}

	col, err := e.AsColumn()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if col.DataType != "bigint" {
		t.Errorf("expected bigint, got %s", col.DataType)
	}
	if !col.Nullable {
		t.Error("expected nullable column")
	}
	if col.TableID != "orders" {
		t.Errorf("expected owning table orders, got %s", col.TableID)
	}
}

func TestAsBusinessTerm(t *testing.T) {
	e := &Entity{
		Kind: KindBusinessTerm,
		ID:   "term-42",
		Properties: map[string]any{
			PropName:       "Invoice Amount",
			PropDefinition: "Total billed for an invoice",
			PropSynonyms:   []string{"bill total"},
		},
	}

	term, err := e.AsBusinessTerm()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if term.Name != "Invoice Amount" {
		t.Errorf("expected display name Invoice Amount, got %s", term.Name)
	}
	if len(term.Synonyms) != 1 || term.Synonyms[0] != "bill total" {
		t.Errorf("unexpected synonyms: %v", term.Synonyms)
	}
}

func TestAsBusinessTermNameFallsBackToID(t *testing.T) {
	e := &Entity{Kind: KindBusinessTerm, ID: "churn_rate"}

	term, err := e.AsBusinessTerm()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if term.Name != "churn_rate" {
		t.Errorf("expected fallback name churn_rate, got %s", term.Name)
	}
}

func TestStringsPropAcceptsJSONDecodedSlices(t *testing.T) {
	// JSON decoding produces []any, direct construction []string
	e := &Entity{
		Kind: KindBusinessTerm,
		ID:   "t",
		Properties: map[string]any{
			PropSynonyms: []any{"a", "b", 3},
		},
	}

	syns := e.StringsProp(PropSynonyms)
	if len(syns) != 2 {
		t.Fatalf("expected 2 string synonyms, got %d", len(syns))
	}
	if syns[0] != "a" || syns[1] != "b" {
		t.Errorf("unexpected synonyms: %v", syns)
	}
}

func TestPropAccessorsOnNilProperties(t *testing.T) {
	e := &Entity{Kind: KindTable, ID: "t"}

	if e.StringProp(PropDescription) != "" {
		t.Error("expected empty string for missing property")
	}
	if e.BoolProp(PropNullable) {
		t.Error("expected false for missing property")
	}
	if e.StringsProp(PropSynonyms) != nil {
		t.Error("expected nil for missing property")
	}
}

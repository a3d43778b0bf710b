// Package graph provides the property-graph data model and the immutable
// snapshot store backing the metadata resolution service.
package graph

import "fmt"

// EntityKind identifies the kind of a graph entity. The set is open:
// ingestion may introduce new kinds without a schema migration, and unknown
// kinds remain queryable through the generic Entity form.
type EntityKind string

const (
	// KindTable is a warehouse table.
	KindTable EntityKind = "table"

	// KindColumn is a column owned by a table.
	KindColumn EntityKind = "column"

	// KindBusinessTerm is a business-glossary term.
	KindBusinessTerm EntityKind = "business_term"
)

// String returns the string representation of the EntityKind.
func (k EntityKind) String() string {
	return string(k)
}

// Edge labels for the core relationship vocabulary. The label set is open;
// domain-specific labels pass through untouched.
const (
	// LabelHasColumn links a table to a column it owns (Table -> Column).
	LabelHasColumn = "HAS_COLUMN"

	// LabelReferences is a foreign-key style link (Column -> Column).
	LabelReferences = "REFERENCES"

	// LabelDescribes links a glossary term to the table or column it
	// documents (BusinessTerm -> Table|Column).
	LabelDescribes = "DESCRIBES"

	// LabelRelatedTo links two glossary terms (BusinessTerm -> BusinessTerm).
	LabelRelatedTo = "RELATED_TO"
)

// Well-known property keys. Properties are an open map; these are the keys
// the typed views read.
const (
	PropDescription = "description"
	PropColumnOrder = "column_order"
	PropDataType    = "data_type"
	PropNullable    = "nullable"
	PropTable       = "table"
	PropName        = "name"
	PropDefinition  = "definition"
	PropSynonyms    = "synonyms"
)

// Entity is a node in the property graph. ID is unique within Kind.
// Properties carries kind-specific fields plus open extension fields.
type Entity struct {
	Kind       EntityKind     `json:"kind"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge is a directed, labeled relationship between two entities.
type Edge struct {
	FromID     string         `json:"from_id"`
	ToID       string         `json:"to_id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Direction reports which way an edge was traversed relative to the entity
// a query anchored on.
type Direction string

const (
	// DirectionOutgoing means the edge leaves the anchor entity.
	DirectionOutgoing Direction = "outgoing"
	// DirectionIncoming means the edge arrives at the anchor entity.
	DirectionIncoming Direction = "incoming"
)

// StringProp returns a string property, or "" when absent or of another type.
func (e *Entity) StringProp(key string) string {
	if e.Properties == nil {
		return ""
	}
	s, _ := e.Properties[key].(string)
	return s
}

// BoolProp returns a bool property, or false when absent or of another type.
func (e *Entity) BoolProp(key string) bool {
	if e.Properties == nil {
		return false
	}
	b, _ := e.Properties[key].(bool)
	return b
}

// StringsProp returns a string-slice property. JSON decoding produces
// []any, so both representations are accepted.
func (e *Entity) StringsProp(key string) []string {
	if e.Properties == nil {
		return nil
	}
	switch v := e.Properties[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Table is the typed view of a table entity. ID is the qualified table name.
type Table struct {
	Name        string
	Description string
	// ColumnOrder is the declared column ordering when ingestion recorded
	// one. Empty means no declared order.
	ColumnOrder []string
}

// Column is the typed view of a column entity. ID is scoped to the owning
// table ("orders.customer_id").
type Column struct {
	ID       string
	DataType string
	Nullable bool
	// TableID references the owning table. Must agree with the HAS_COLUMN
	// edge; the schema assembler verifies this.
	TableID string
}

// BusinessTerm is the typed view of a glossary term entity.
type BusinessTerm struct {
	ID         string
	Name       string
	Definition string
	Synonyms   []string
}

// AsTable converts a generic entity into its table view.
func (e *Entity) AsTable() (Table, error) {
	if e.Kind != KindTable {
		return Table{}, fmt.Errorf("entity %s has kind %s, want %s", e.ID, e.Kind, KindTable)
	}
	return Table{
		Name:        e.ID,
		Description: e.StringProp(PropDescription),
		ColumnOrder: e.StringsProp(PropColumnOrder),
	}, nil
}

// AsColumn converts a generic entity into its column view.
func (e *Entity) AsColumn() (Column, error) {
	if e.Kind != KindColumn {
		return Column{}, fmt.Errorf("entity %s has kind %s, want %s", e.ID, e.Kind, KindColumn)
	}
	return Column{
		ID:       e.ID,
		DataType: e.StringProp(PropDataType),
		Nullable: e.BoolProp(PropNullable),
		TableID:  e.StringProp(PropTable),
	}, nil
}

// AsBusinessTerm converts a generic entity into its glossary view. Display
// name falls back to the entity ID when ingestion omitted one.
func (e *Entity) AsBusinessTerm() (BusinessTerm, error) {
	if e.Kind != KindBusinessTerm {
		return BusinessTerm{}, fmt.Errorf("entity %s has kind %s, want %s", e.ID, e.Kind, KindBusinessTerm)
	}
	name := e.StringProp(PropName)
	if name == "" {
		name = e.ID
	}
	return BusinessTerm{
		ID:         e.ID,
		Name:       name,
		Definition: e.StringProp(PropDefinition),
		Synonyms:   e.StringsProp(PropSynonyms),
	}, nil
}

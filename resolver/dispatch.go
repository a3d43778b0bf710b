package resolver

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/c360/metaresolve/glossary"
	"github.com/c360/metaresolve/graph"
	"github.com/c360/metaresolve/pathfind"
	"github.com/c360/metaresolve/pkg/retry"
	"github.com/c360/metaresolve/schema"
)

// Op identifies a resolution operation. The set is closed; unknown
// operations are rejected as validation errors.
type Op string

const (
	// OpGetTableSchema assembles a table's schema
	OpGetTableSchema Op = "get_table_schema"
	// OpSearchBusinessTerms searches the business glossary
	OpSearchBusinessTerms Op = "search_business_terms"
	// OpFindRelationships finds shortest relationship paths
	OpFindRelationships Op = "find_relationships"
)

// GetTableSchemaParams are the parameters for OpGetTableSchema.
type GetTableSchemaParams struct {
	TableName            string `json:"table_name"`
	IncludeRelationships bool   `json:"include_relationships"`
}

// SearchBusinessTermsParams are the parameters for OpSearchBusinessTerms.
// A zero Limit selects the configured default.
type SearchBusinessTermsParams struct {
	Keyword string `json:"keyword"`
	Limit   int    `json:"limit,omitempty"`
}

// FindRelationshipsParams are the parameters for OpFindRelationships.
type FindRelationshipsParams struct {
	SourceID string `json:"source"`
	TargetID string `json:"target"`
	MaxDepth int    `json:"max_depth"`
}

// Request is the tagged-union request form: Op selects which parameter
// field must be populated.
type Request struct {
	Op Op `json:"op"`

	GetTableSchema      *GetTableSchemaParams      `json:"get_table_schema,omitempty"`
	SearchBusinessTerms *SearchBusinessTermsParams `json:"search_business_terms,omitempty"`
	FindRelationships   *FindRelationshipsParams   `json:"find_relationships,omitempty"`
}

// TableInfo is the table portion of a schema result.
type TableInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ColumnInfo is one column in a schema result. Name is the column's
// identifier within its table, without the table qualifier.
type ColumnInfo struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

// GetTableSchemaResult is the data shape for OpGetTableSchema.
type GetTableSchemaResult struct {
	Table         TableInfo             `json:"table"`
	Columns       []ColumnInfo          `json:"columns"`
	Relationships []schema.Relationship `json:"relationships,omitempty"`
}

// TermMatch is one glossary search hit. OpSearchBusinessTerms data is the
// ordered slice of these, best match first.
type TermMatch struct {
	Name       string   `json:"name"`
	Definition string   `json:"definition,omitempty"`
	Synonyms   []string `json:"synonyms,omitempty"`

	// MatchedField names the field that matched: name, synonym or
	// definition
	MatchedField string `json:"matched_field"`
}

// PathStep is one traversed edge in a relationship path: the entity the
// step arrives at, the edge label, and the direction the edge was walked.
type PathStep struct {
	EntityID  string          `json:"entity_id"`
	EdgeLabel string          `json:"edge_label"`
	Direction graph.Direction `json:"direction"`
}

// PathView is one relationship path. OpFindRelationships data is the
// ordered slice of these, shortest first.
type PathView struct {
	Steps []PathStep `json:"steps"`
}

// ErrorKind is the stable error taxonomy exposed to callers.
type ErrorKind string

const (
	KindEntityNotFound    ErrorKind = "entity_not_found"
	KindValidationError   ErrorKind = "validation_error"
	KindInconsistentGraph ErrorKind = "inconsistent_graph"
	KindTimeout           ErrorKind = "timeout"
	KindStoreUnavailable  ErrorKind = "store_unavailable"
	KindInternal          ErrorKind = "internal"
)

// ErrorInfo describes a failed operation.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Envelope is the uniform operation result: exactly one of Data and Error
// is populated.
type Envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// Dispatch executes one operation and always returns an envelope; internal
// failures, including panics in query components, surface as error
// envelopes rather than propagating to the caller.
func (r *Resolver) Dispatch(ctx context.Context, req Request) Envelope {
	start := time.Now()

	data, err := r.execute(ctx, req)
	duration := time.Since(start)

	if err != nil {
		kind := classifyKind(err)
		r.logger.Warn("operation failed",
			"operation", string(req.Op),
			"kind", string(kind),
			"duration", duration,
			"error", err)
		if r.metrics != nil {
			r.metrics.RecordOperation("resolver", string(req.Op), duration, false)
			r.metrics.RecordError("resolver", string(req.Op), string(kind))
		}
		return Envelope{Error: &ErrorInfo{Kind: kind, Message: err.Error()}}
	}

	if r.metrics != nil {
		r.metrics.RecordOperation("resolver", string(req.Op), duration, true)
	}
	return Envelope{Data: data}
}

// execute validates and runs the operation, containing panics.
func (r *Resolver) execute(ctx context.Context, req Request) (data any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic during operation",
				"operation", string(req.Op),
				"panic", rec)
			data = nil
			err = fmt.Errorf("internal: panic during %s: %v", req.Op, rec)
		}
	}()

	switch req.Op {
	case OpGetTableSchema:
		return r.getTableSchema(ctx, req.GetTableSchema)
	case OpSearchBusinessTerms:
		return r.searchBusinessTerms(ctx, req.SearchBusinessTerms)
	case OpFindRelationships:
		return r.findRelationships(ctx, req.FindRelationships)
	default:
		return nil, validationError(fmt.Sprintf("unknown operation %q", req.Op))
	}
}

func (r *Resolver) getTableSchema(ctx context.Context, params *GetTableSchemaParams) (any, error) {
	if params == nil {
		return nil, validationError("get_table_schema parameters missing")
	}
	if strings.TrimSpace(params.TableName) == "" {
		return nil, validationError("table_name must be non-empty")
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeouts.GetTableSchema)
	defer cancel()

	assembled, err := withStoreRetry(ctx, r.retryCfg, func() (*schema.TableSchema, error) {
		return r.assembler.TableSchema(ctx, params.TableName, params.IncludeRelationships)
	})
	if err != nil {
		return nil, err
	}

	result := GetTableSchemaResult{
		Table: TableInfo{
			Name:        assembled.Table.Name,
			Description: assembled.Table.Description,
		},
		Columns:       make([]ColumnInfo, 0, len(assembled.Columns)),
		Relationships: assembled.Relationships,
	}
	for _, column := range assembled.Columns {
		result.Columns = append(result.Columns, ColumnInfo{
			Name:     strings.TrimPrefix(column.ID, assembled.Table.Name+"."),
			DataType: column.DataType,
			Nullable: column.Nullable,
		})
	}
	return result, nil
}

func (r *Resolver) searchBusinessTerms(ctx context.Context, params *SearchBusinessTermsParams) (any, error) {
	if params == nil {
		return nil, validationError("search_business_terms parameters missing")
	}
	if strings.TrimSpace(params.Keyword) == "" {
		return nil, validationError("keyword must be non-empty")
	}
	if params.Limit < 0 {
		return nil, validationError(fmt.Sprintf("limit must not be negative, got %d", params.Limit))
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeouts.SearchBusinessTerms)
	defer cancel()

	matches, err := withStoreRetry(ctx, r.retryCfg, func() ([]glossary.Match, error) {
		return r.searcher.SearchTerms(ctx, params.Keyword, params.Limit)
	})
	if err != nil {
		return nil, err
	}

	terms := make([]TermMatch, 0, len(matches))
	for _, m := range matches {
		terms = append(terms, TermMatch{
			Name:         m.Term.Name,
			Definition:   m.Term.Definition,
			Synonyms:     m.Term.Synonyms,
			MatchedField: m.Tier.String(),
		})
	}
	return terms, nil
}

func (r *Resolver) findRelationships(ctx context.Context, params *FindRelationshipsParams) (any, error) {
	if params == nil {
		return nil, validationError("find_relationships parameters missing")
	}
	if strings.TrimSpace(params.SourceID) == "" {
		return nil, validationError("source_id must be non-empty")
	}
	if strings.TrimSpace(params.TargetID) == "" {
		return nil, validationError("target_id must be non-empty")
	}
	if params.MaxDepth <= 0 {
		return nil, validationError(fmt.Sprintf("max_depth must be positive, got %d", params.MaxDepth))
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeouts.FindRelationships)
	defer cancel()

	paths, err := withStoreRetry(ctx, r.retryCfg, func() ([]pathfind.Path, error) {
		return r.finder.FindPaths(ctx, params.SourceID, params.TargetID, params.MaxDepth)
	})
	if err != nil {
		return nil, err
	}

	views := make([]PathView, 0, len(paths))
	for _, path := range paths {
		view := PathView{Steps: make([]PathStep, 0, len(path.Steps))}
		for _, step := range path.Steps {
			view.Steps = append(view.Steps, PathStep{
				EntityID:  step.OtherID(),
				EdgeLabel: step.Edge.Label,
				Direction: step.Direction,
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// withStoreRetry retries fn within the configured budget while the store
// reports unavailable; every other error fails immediately.
func withStoreRetry[T any](ctx context.Context, cfg retry.Config, fn func() (T, error)) (T, error) {
	return retry.DoWithResult(ctx, cfg, func() (T, error) {
		result, err := fn()
		if err != nil && !stderrors.Is(err, graph.ErrStoreUnavailable) {
			return result, retry.NonRetryable(err)
		}
		return result, err
	})
}

// validationError builds a caller-input error that maps to
// validation_error.
func validationError(msg string) error {
	return fmt.Errorf("%w: %s", graph.ErrInvalidQueryParams, msg)
}

// classifyKind maps an internal error onto the stable taxonomy. Order
// matters: validation before not-found, timeout before store state, so the
// most specific cause wins.
func classifyKind(err error) ErrorKind {
	switch {
	case stderrors.Is(err, graph.ErrInvalidQueryParams):
		return KindValidationError
	case stderrors.Is(err, graph.ErrEntityNotFound):
		return KindEntityNotFound
	case stderrors.Is(err, graph.ErrInconsistentGraph):
		return KindInconsistentGraph
	case stderrors.Is(err, graph.ErrQueryTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case stderrors.Is(err, graph.ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindInternal
	}
}

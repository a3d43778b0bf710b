// Package config defines the resolution service configuration. It is
// populated by the process entry point (out of scope here), defaulted with
// SetDefaults, and validated once at startup with Validate; components
// never re-validate per call.
package config

import (
	"fmt"
	"time"

	"github.com/c360/metaresolve/errors"
)

// Config is the top-level service configuration.
type Config struct {
	// Search configures glossary term search
	Search SearchConfig `json:"search"`

	// Pathfind configures relationship path discovery
	Pathfind PathfindConfig `json:"pathfind"`

	// Timeouts configures per-operation call budgets
	Timeouts TimeoutsConfig `json:"timeouts"`

	// Store configures the catalog connection used to hydrate snapshots
	Store StoreConfig `json:"store"`

	// StoreRetry bounds the facade's retry budget when the store is not
	// yet hydrated
	StoreRetry errors.RetryConfig `json:"store_retry"`
}

// SearchConfig configures glossary term search behavior
type SearchConfig struct {
	// DefaultLimit applies when a request omits the limit parameter
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps any requested limit
	MaxLimit int `json:"max_limit"`
}

// PathfindConfig configures relationship path discovery
type PathfindConfig struct {
	// MaxDepth caps the max_depth a request may ask for
	MaxDepth int `json:"max_depth"`

	// MaxPaths caps how many shortest paths a single search returns
	MaxPaths int `json:"max_paths"`
}

// TimeoutsConfig configures per-operation call budgets
type TimeoutsConfig struct {
	GetTableSchema      time.Duration `json:"get_table_schema"`
	SearchBusinessTerms time.Duration `json:"search_business_terms"`
	FindRelationships   time.Duration `json:"find_relationships"`
}

// StoreConfig holds the property-graph catalog connection parameters used
// to hydrate the store. Credentials may be empty for unauthenticated
// deployments.
type StoreConfig struct {
	// URL is the NATS server carrying the catalog KV buckets
	URL string `json:"url"`

	// CredsFile is an optional NATS credentials file path
	CredsFile string `json:"creds_file,omitempty"`

	// EntityBucket names the KV bucket holding entity records
	EntityBucket string `json:"entity_bucket"`

	// EdgeBucket names the KV bucket holding edge records
	EdgeBucket string `json:"edge_bucket"`

	// ConnectTimeout bounds the initial connection attempt
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.Search.DefaultLimit == 0 {
		c.Search.DefaultLimit = 25
	}
	if c.Search.MaxLimit == 0 {
		c.Search.MaxLimit = 100
	}

	if c.Pathfind.MaxDepth == 0 {
		c.Pathfind.MaxDepth = 10
	}
	if c.Pathfind.MaxPaths == 0 {
		c.Pathfind.MaxPaths = 8
	}

	if c.Timeouts.GetTableSchema == 0 {
		c.Timeouts.GetTableSchema = 2 * time.Second
	}
	if c.Timeouts.SearchBusinessTerms == 0 {
		c.Timeouts.SearchBusinessTerms = 2 * time.Second
	}
	if c.Timeouts.FindRelationships == 0 {
		c.Timeouts.FindRelationships = 5 * time.Second
	}

	if c.Store.URL == "" {
		c.Store.URL = "nats://127.0.0.1:4222"
	}
	if c.Store.EntityBucket == "" {
		c.Store.EntityBucket = "CATALOG_ENTITIES"
	}
	if c.Store.EdgeBucket == "" {
		c.Store.EdgeBucket = "CATALOG_EDGES"
	}
	if c.Store.ConnectTimeout == 0 {
		c.Store.ConnectTimeout = 5 * time.Second
	}

	if c.StoreRetry.MaxRetries == 0 && c.StoreRetry.InitialDelay == 0 {
		c.StoreRetry = errors.DefaultRetryConfig()
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validatePathfind(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return c.validateStore()
}

func (c *Config) validateSearch() error {
	if c.Search.DefaultLimit <= 0 {
		msg := fmt.Sprintf("search default limit must be positive, got %d", c.Search.DefaultLimit)
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		msg := fmt.Sprintf("search max limit %d must be >= default limit %d",
			c.Search.MaxLimit, c.Search.DefaultLimit)
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
	}
	return nil
}

func (c *Config) validatePathfind() error {
	if c.Pathfind.MaxDepth <= 0 {
		msg := fmt.Sprintf("pathfind max depth must be positive, got %d", c.Pathfind.MaxDepth)
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
	}
	if c.Pathfind.MaxPaths <= 0 {
		msg := fmt.Sprintf("pathfind max paths must be positive, got %d", c.Pathfind.MaxPaths)
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	if c.Timeouts.GetTableSchema <= 0 {
		msg := fmt.Sprintf("get table schema timeout must be positive, got %v", c.Timeouts.GetTableSchema)
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
	}
	if c.Timeouts.SearchBusinessTerms <= 0 {
		msg := fmt.Sprintf("search business terms timeout must be positive, got %v", c.Timeouts.SearchBusinessTerms)
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
	}
	if c.Timeouts.FindRelationships <= 0 {
		msg := fmt.Sprintf("find relationships timeout must be positive, got %v", c.Timeouts.FindRelationships)
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Validate",
			"store URL cannot be empty")
	}
	if c.Store.EntityBucket == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Validate",
			"entity bucket name cannot be empty")
	}
	if c.Store.EdgeBucket == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Validate",
			"edge bucket name cannot be empty")
	}
	if c.Store.EntityBucket == c.Store.EdgeBucket {
		msg := fmt.Sprintf("entity and edge buckets must differ, both are %q", c.Store.EntityBucket)
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
	}
	if c.Store.ConnectTimeout <= 0 {
		msg := fmt.Sprintf("store connect timeout must be positive, got %v", c.Store.ConnectTimeout)
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
	}
	return nil
}

package provision

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/metaresolve/config"
	"github.com/c360/metaresolve/errors"
	"github.com/c360/metaresolve/graph"
)

// KVSource reads catalog snapshots from two JetStream KV buckets: one
// holding entity records, one holding edge records, both keyed by record
// ID and written by the warehouse connector.
type KVSource struct {
	config config.StoreConfig
	logger *slog.Logger

	conn *nats.Conn
	js   jetstream.JetStream

	// Bucket handles, resolved lazily so the source can start before the
	// connector has created the buckets
	initMu       sync.Mutex
	entityBucket jetstream.KeyValue
	edgeBucket   jetstream.KeyValue
}

// NewKVSource connects to NATS and returns a source for the configured
// catalog buckets. Bucket resolution is deferred to the first Fetch.
func NewKVSource(cfg config.StoreConfig, logger *slog.Logger) (*KVSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "provision")

	opts := []nats.Option{
		nats.Name("metaresolve-provision"),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(-1),
	}
	if cfg.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFile))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, errors.WrapTransient(err, "provision", "NewKVSource", "NATS connect")
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapFatal(err, "provision", "NewKVSource", "JetStream context")
	}

	return &KVSource{
		config: cfg,
		logger: logger,
		conn:   conn,
		js:     js,
	}, nil
}

// Close drains the NATS connection.
func (s *KVSource) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// ensureBuckets resolves the KV bucket handles. A missing bucket is
// transient: the connector may simply not have written yet.
func (s *KVSource) ensureBuckets(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.entityBucket != nil && s.edgeBucket != nil {
		return nil
	}

	entityBucket, err := s.js.KeyValue(ctx, s.config.EntityBucket)
	if err != nil {
		return errors.WrapTransient(err, "provision", "ensureBuckets",
			fmt.Sprintf("bucket %s lookup", s.config.EntityBucket))
	}

	edgeBucket, err := s.js.KeyValue(ctx, s.config.EdgeBucket)
	if err != nil {
		return errors.WrapTransient(err, "provision", "ensureBuckets",
			fmt.Sprintf("bucket %s lookup", s.config.EdgeBucket))
	}

	s.entityBucket = entityBucket
	s.edgeBucket = edgeBucket
	return nil
}

// Fetch reads every record from both buckets and builds a snapshot.
// Individual malformed records are skipped and logged rather than failing
// the whole fetch; the connector owns record quality, the resolver must
// stay serviceable on the records that do parse.
func (s *KVSource) Fetch(ctx context.Context) (*graph.Snapshot, error) {
	if err := s.ensureBuckets(ctx); err != nil {
		return nil, err
	}

	var entities []*graph.Entity
	var skipped int
	err := s.forEachValue(ctx, s.entityBucket, func(key string, value []byte) {
		entity, err := decodeEntity(value)
		if err != nil {
			skipped++
			s.logger.Warn("skipping entity record", "key", key, "error", err)
			return
		}
		entities = append(entities, entity)
	})
	if err != nil {
		return nil, err
	}

	var edges []graph.Edge
	err = s.forEachValue(ctx, s.edgeBucket, func(key string, value []byte) {
		edge, err := decodeEdge(value)
		if err != nil {
			skipped++
			s.logger.Warn("skipping edge record", "key", key, "error", err)
			return
		}
		edges = append(edges, edge)
	})
	if err != nil {
		return nil, err
	}

	snap := graph.NewSnapshot(entities, edges)
	s.logger.Info("catalog fetched",
		"entities", snap.EntityCount(),
		"edges", snap.EdgeCount(),
		"dangling", snap.DanglingSkipped(),
		"malformed", skipped)

	return snap, nil
}

// forEachValue walks every key in a bucket. An empty bucket yields no
// callbacks and no error.
func (s *KVSource) forEachValue(ctx context.Context, bucket jetstream.KeyValue, fn func(key string, value []byte)) error {
	lister, err := bucket.ListKeys(ctx)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}
		return errors.WrapTransient(err, "provision", "Fetch", "list keys")
	}
	defer lister.Stop()

	for key := range lister.Keys() {
		entry, err := bucket.Get(ctx, key)
		if err != nil {
			if stderrors.Is(err, jetstream.ErrKeyNotFound) {
				// Deleted between list and get
				continue
			}
			return errors.WrapTransient(err, "provision", "Fetch",
				fmt.Sprintf("get key %s", key))
		}
		fn(key, entry.Value())
	}

	return ctx.Err()
}

// Package returner persists job completion records, job loads and system
// events in MongoDB and answers the orchestrator's lookups by job id, worker
// and function name.
//
// Every public operation resolves its own connection and closes it before
// returning; the store keeps no shared connection state between calls and
// relies on MongoDB's atomic single-document inserts for synchronization.
package returner

import (
	"context"

	"github.com/dandantas/saltstore/internal/database"
	"github.com/dandantas/saltstore/internal/metric"
)

// Config carries the configuration namespaces the store merges on every
// call: the default options, any alternative profiles, and jid generation
// behavior.
type Config struct {
	// Options is the default configuration namespace.
	Options database.Options

	// Profiles holds alternative configuration namespaces selected per
	// call via Return.RetConfig.
	Profiles map[string]database.Options

	// UniqueJid appends a nonce to generated jids.
	UniqueJid bool
}

// Store is the job-result store facade.
type Store struct {
	cfg      Config
	resolver database.Resolver
	metrics  *metric.Metrics
}

// New creates a Store using the given resolver. The resolver's capability
// tier was fixed at its construction; the store never branches on driver
// capabilities itself.
func New(cfg Config, resolver database.Resolver) *Store {
	return &Store{
		cfg:      cfg,
		resolver: resolver,
		metrics:  metric.New(),
	}
}

// Metrics exposes the store counters for registration on a Prometheus
// registry.
func (s *Store) Metrics() *metric.Metrics {
	return s.metrics
}

// options merges the configuration layers for one call: per-call overrides
// win over the selected profile, which wins over the default namespace.
func (s *Store) options(profile string, overrides map[string]any) database.Options {
	var p database.Options
	if profile != "" {
		p = s.cfg.Profiles[profile]
	}
	return database.MergeOptions(s.cfg.Options, p, overrides)
}

// connect resolves a fresh handle for a single operation. Callers own the
// handle and must close it.
func (s *Store) connect(ctx context.Context, profile string, overrides map[string]any) (database.Database, error) {
	return s.resolver.Resolve(ctx, s.options(profile, overrides))
}

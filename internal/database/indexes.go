package database

import (
	"context"
	"log/slog"
)

// indexedFields lists the secondary indexes backing the common lookups:
// results by worker, results by job id, job metadata by job id, events by
// tag. Index creation is idempotent and purely a performance hint; queries
// stay correct without it.
var indexedFields = map[string][]string{
	CollectionReturns: {"minion", "jid"},
	CollectionJobs:    {"jid"},
	CollectionEvents:  {"tag"},
}

// EnsureIndexes idempotently creates the secondary indexes. Safe to run
// repeatedly and concurrently from multiple first-time callers.
func EnsureIndexes(ctx context.Context, db Database) error {
	for name, fields := range indexedFields {
		coll := db.Collection(name)
		for _, field := range fields {
			if err := coll.EnsureIndex(ctx, field); err != nil {
				return err
			}
		}
	}

	slog.Debug("Ensured all secondary indexes")
	return nil
}

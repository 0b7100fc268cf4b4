package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Collection names persisted by the store.
const (
	CollectionReturns = "saltReturns"
	CollectionJobs    = "jobs"
	CollectionEvents  = "events"
)

// Database is a live store handle. Every public store operation resolves its
// own handle and closes it when done; callers must not share handles across
// operations.
type Database interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}

// Collection is the surface the writers and queries need from a single
// collection. All read methods exclude the store's internal identity field
// from returned documents. Not-found is reported as nil/empty values, never
// as an error.
type Collection interface {
	Insert(ctx context.Context, doc bson.M) error
	FindOne(ctx context.Context, filter bson.M) (bson.M, error)
	Find(ctx context.Context, filter bson.M) ([]bson.M, error)
	Distinct(ctx context.Context, field string) ([]string, error)
	// GroupFirst groups all documents by the named field, keeping the
	// first-seen document per key.
	GroupFirst(ctx context.Context, field string) (map[string]bson.M, error)
	Delete(ctx context.Context, filter bson.M) (int64, error)
	EnsureIndex(ctx context.Context, field string) error
}

// Resolver turns merged options into a live Database handle. The capability
// tier is fixed when the resolver is constructed; individual calls never
// branch on driver capabilities.
type Resolver interface {
	Resolve(ctx context.Context, opts Options) (Database, error)
}

// Package testutil provides an in-memory implementation of the database
// interfaces so store behavior can be tested without a mongod.
package testutil

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dandantas/saltstore/internal/database"
)

// MemResolver satisfies database.Resolver, handing out the same shared
// in-memory database on every call and recording resolve activity.
type MemResolver struct {
	DB *MemDatabase

	mu       sync.Mutex
	resolves int
	last     database.Options
	// Err, when set, is returned by Resolve to simulate connection failures.
	Err error
}

// NewMemResolver creates a resolver backed by a fresh in-memory database.
func NewMemResolver() *MemResolver {
	return &MemResolver{DB: NewMemDatabase()}
}

func (r *MemResolver) Resolve(_ context.Context, opts database.Options) (database.Database, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.resolves++
	r.last = opts
	return r.DB, nil
}

// Resolves returns how many times Resolve succeeded.
func (r *MemResolver) Resolves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolves
}

// LastOptions returns the options from the most recent Resolve call.
func (r *MemResolver) LastOptions() database.Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// MemDatabase is an in-memory database.Database. Close is a no-op so the
// per-call resolve/close cycle does not discard data between operations.
type MemDatabase struct {
	mu    sync.Mutex
	colls map[string]*MemCollection
}

// NewMemDatabase creates an empty in-memory database.
func NewMemDatabase() *MemDatabase {
	return &MemDatabase{colls: make(map[string]*MemCollection)}
}

func (d *MemDatabase) Collection(name string) database.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	coll, ok := d.colls[name]
	if !ok {
		coll = &MemCollection{indexes: make(map[string]int)}
		d.colls[name] = coll
	}
	return coll
}

func (d *MemDatabase) Close(context.Context) error { return nil }

// Docs returns a snapshot of all documents in the named collection.
func (d *MemDatabase) Docs(name string) []bson.M {
	coll := d.Collection(name).(*MemCollection)
	coll.mu.Lock()
	defer coll.mu.Unlock()
	out := make([]bson.M, len(coll.docs))
	for i, doc := range coll.docs {
		out[i] = copyDoc(doc)
	}
	return out
}

// MemCollection is an in-memory database.Collection preserving insertion
// order. Filters match on top-level field equality, which covers every
// query shape the store issues.
type MemCollection struct {
	mu      sync.Mutex
	docs    []bson.M
	indexes map[string]int
}

func (c *MemCollection) Insert(_ context.Context, doc bson.M) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, copyDoc(doc))
	return nil
}

func (c *MemCollection) FindOne(_ context.Context, filter bson.M) (bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if matches(doc, filter) {
			return copyDoc(doc), nil
		}
	}
	return nil, nil
}

func (c *MemCollection) Find(_ context.Context, filter bson.M) ([]bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []bson.M
	for _, doc := range c.docs {
		if matches(doc, filter) {
			out = append(out, copyDoc(doc))
		}
	}
	return out, nil
}

func (c *MemCollection) Distinct(_ context.Context, field string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool)
	for _, doc := range c.docs {
		if s, ok := doc[field].(string); ok {
			seen[s] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (c *MemCollection) GroupFirst(_ context.Context, field string) (map[string]bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bson.M)
	for _, doc := range c.docs {
		key, ok := doc[field].(string)
		if !ok {
			continue
		}
		if _, exists := out[key]; !exists {
			out[key] = copyDoc(doc)
		}
	}
	return out, nil
}

func (c *MemCollection) Delete(_ context.Context, filter bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var kept []bson.M
	var deleted int64
	for _, doc := range c.docs {
		if matches(doc, filter) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept
	return deleted, nil
}

func (c *MemCollection) EnsureIndex(_ context.Context, field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes[field]++
	return nil
}

// IndexCalls returns how many times an index on field was ensured.
func (c *MemCollection) IndexCalls(field string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexes[field]
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		if doc[k] != want {
			return false
		}
	}
	return true
}

func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

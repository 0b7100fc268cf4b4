package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// mongoResolver resolves options into live MongoDB handles. The driver tier
// is selected once at construction; Resolve never re-inspects capabilities.
type mongoResolver struct {
	tier    Tier
	timeout time.Duration
}

// NewResolver creates a Resolver for the given capability tier. timeout
// bounds connection establishment and the initial ping.
func NewResolver(tier Tier, timeout time.Duration) Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &mongoResolver{tier: tier, timeout: timeout}
}

// Resolve validates the merged options, connects, selects the target
// database and, when requested, ensures the secondary indexes.
func (r *mongoResolver) Resolve(ctx context.Context, opts Options) (Database, error) {
	clientOpts, dbName, err := r.clientOptions(opts)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := &mongoDatabase{
		client: client,
		db:     client.Database(dbName),
		tier:   r.tier,
	}

	if opts.Indexes {
		if err := EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
	}

	return db, nil
}

// clientOptions builds driver options from the merged configuration,
// enforcing URI/host mutual exclusivity and the tier's URI support.
func (r *mongoResolver) clientOptions(opts Options) (*options.ClientOptions, string, error) {
	if opts.URI != "" && r.tier == TierModern {
		if opts.Host != "" {
			return nil, "", &ConfigurationError{
				Reason: "expected either uri or host configuration, both were provided",
			}
		}

		cs, err := connstring.ParseAndValidate(opts.URI)
		if err != nil {
			return nil, "", &ConfigurationError{Reason: fmt.Sprintf("invalid uri: %v", err)}
		}
		if cs.Database == "" {
			return nil, "", &ConfigurationError{Reason: "uri does not name a database"}
		}

		return options.Client().ApplyURI(opts.URI), cs.Database, nil
	}

	if opts.URI != "" {
		return nil, "", &UnsupportedConfigurationError{
			Reason: "legacy driver tier does not support uri format",
		}
	}

	host := opts.Host
	if host == "" {
		host = "localhost"
	}

	clientOpts := options.Client().
		SetHosts([]string{fmt.Sprintf("%s:%d", host, opts.Port)}).
		SetConnectTimeout(r.timeout).
		SetServerSelectionTimeout(r.timeout)

	if opts.User != "" {
		clientOpts.SetAuth(options.Credential{
			Username: opts.User,
			Password: opts.Password,
		})
	}

	return clientOpts, opts.DB, nil
}

// mongoDatabase wraps a connected client and the selected database.
type mongoDatabase struct {
	client *mongo.Client
	db     *mongo.Database
	tier   Tier
}

func (d *mongoDatabase) Collection(name string) Collection {
	return &mongoCollection{
		db:   d.db,
		coll: d.db.Collection(name),
		name: name,
		tier: d.tier,
	}
}

func (d *mongoDatabase) Close(ctx context.Context) error {
	if err := d.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

// mongoCollection adapts a driver collection to the Collection interface,
// routing inserts and index creation through the selected tier.
type mongoCollection struct {
	db   *mongo.Database
	coll *mongo.Collection
	name string
	tier Tier
}

// noID excludes the internal identity field from query results.
var noID = bson.D{{Key: "_id", Value: 0}}

func (c *mongoCollection) Insert(ctx context.Context, doc bson.M) error {
	if c.tier == TierLegacy {
		// Raw insert command, the wire shape drivers used before InsertOne.
		cmd := bson.D{
			{Key: "insert", Value: c.name},
			{Key: "documents", Value: bson.A{doc}},
		}
		if err := c.db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", c.name, err)
		}
		return nil
	}

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", c.name, err)
	}
	return nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := c.coll.FindOne(ctx, filter, options.FindOne().SetProjection(noID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	return doc, nil
}

func (c *mongoCollection) Find(ctx context.Context, filter bson.M) ([]bson.M, error) {
	cursor, err := c.coll.Find(ctx, filter, options.Find().SetProjection(noID))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s documents: %w", c.name, err)
	}
	return docs, nil
}

func (c *mongoCollection) Distinct(ctx context.Context, field string) ([]string, error) {
	values, err := c.coll.Distinct(ctx, field, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s.%s: %w", c.name, field, err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *mongoCollection) GroupFirst(ctx context.Context, field string) (map[string]bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "value", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
	}

	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to group %s by %s: %w", c.name, field, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key   string `bson:"_id"`
		Value bson.M `bson:"value"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s groups: %w", c.name, err)
	}

	out := make(map[string]bson.M, len(rows))
	for _, row := range rows {
		delete(row.Value, "_id")
		out[row.Key] = row.Value
	}
	return out, nil
}

func (c *mongoCollection) Delete(ctx context.Context, filter bson.M) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", c.name, err)
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) EnsureIndex(ctx context.Context, field string) error {
	if c.tier == TierLegacy {
		exists, err := c.indexExists(ctx, field)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	model := mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
	if _, err := c.coll.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create index %s.%s: %w", c.name, field, err)
	}

	slog.Debug("Ensured index", "collection", c.name, "field", field)
	return nil
}

func (c *mongoCollection) indexExists(ctx context.Context, field string) (bool, error) {
	cursor, err := c.coll.Indexes().List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list %s indexes: %w", c.name, err)
	}
	defer cursor.Close(ctx)

	var specs []bson.M
	if err := cursor.All(ctx, &specs); err != nil {
		return false, fmt.Errorf("failed to decode %s indexes: %w", c.name, err)
	}

	for _, spec := range specs {
		if key, ok := spec["key"].(bson.M); ok {
			if _, found := key[field]; found {
				return true, nil
			}
		}
	}
	return false, nil
}

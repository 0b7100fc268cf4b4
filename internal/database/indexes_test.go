package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/saltstore/internal/database"
	"github.com/dandantas/saltstore/internal/testutil"
)

// expectedIndexes are the secondary indexes backing the common lookups.
var expectedIndexes = map[string][]string{
	database.CollectionReturns: {"minion", "jid"},
	database.CollectionJobs:    {"jid"},
	database.CollectionEvents:  {"tag"},
}

func TestEnsureIndexesCreatesExpectedFields(t *testing.T) {
	db := testutil.NewMemDatabase()

	require.NoError(t, database.EnsureIndexes(context.Background(), db))

	for coll, fields := range expectedIndexes {
		mc := db.Collection(coll).(*testutil.MemCollection)
		for _, field := range fields {
			assert.Equal(t, 1, mc.IndexCalls(field), "index %s.%s", coll, field)
		}
	}
}

func TestEnsureIndexesRepeatable(t *testing.T) {
	db := testutil.NewMemDatabase()
	ctx := context.Background()

	require.NoError(t, database.EnsureIndexes(ctx, db))
	require.NoError(t, database.EnsureIndexes(ctx, db))

	for coll, fields := range expectedIndexes {
		mc := db.Collection(coll).(*testutil.MemCollection)
		for _, field := range fields {
			assert.Equal(t, 2, mc.IndexCalls(field), "index %s.%s", coll, field)
		}
	}
}

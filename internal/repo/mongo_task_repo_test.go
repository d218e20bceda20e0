package repo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// Requires a reachable MongoDB; set TEST_MONGODB_URI to run.
func setupMongo(t *testing.T) *MongoTaskRepo {
	t.Helper()
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}
	ctx := context.Background()
	dbName := fmt.Sprintf("taskmanager_test_%d", time.Now().UnixNano())

	r, err := ConnectMongo(ctx, uri, dbName)
	require.NoError(t, err)
	require.NoError(t, r.EnsureIndexes(ctx))

	t.Cleanup(func() {
		_ = r.coll.Database().Drop(ctx)
		_ = r.Close(ctx)
	})
	return r
}

func TestMongoTaskRepo(t *testing.T) {
	testTaskRepo(t, setupMongo(t))
}

func TestMongoTaskRepo_Index(t *testing.T) {
	r := setupMongo(t)
	ctx := context.Background()

	cur, err := r.coll.Indexes().List(ctx)
	require.NoError(t, err)
	var specs []bson.M
	require.NoError(t, cur.All(ctx, &specs))

	var names []string
	for _, s := range specs {
		names = append(names, fmt.Sprint(s["name"]))
	}
	assert.Contains(t, names, "status_1_createdAt_-1")
}

func TestMongoFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, mongoFilter(dom0()))
	assert.Equal(t, bson.M{"status": "pending"}, mongoFilter(domQuery("pending")))
	assert.Equal(t,
		bson.M{"status": bson.M{"$in": bson.A{"pending", "completed"}}},
		mongoFilter(domQuery("pending", "completed")),
	)
}

package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoURIEnv points tests at an existing server instead of a container.
const MongoURIEnv = "STUDYPLANET_TEST_MONGO_URI"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// TestContext returns a context suitable for one test's database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB returns a fresh, uniquely named database that is dropped when
// the test finishes. The server comes from MongoURIEnv when set, otherwise
// from a throwaway mongo container shared by the package's tests. Tests are
// skipped when neither is available or when running with -short.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in -short mode")
	}

	clientOnce.Do(func() { client, clientErr = connect() })
	if clientErr != nil {
		t.Skipf("mongo unavailable: %v", clientErr)
	}

	name := "studyplanet_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	db := client.Database(name)
	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

func connect() (*mongo.Client, error) {
	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		var err error
		if uri, err = startContainer(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := TestContext()
	defer cancel()
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, err
	}
	return c, nil
}

// startContainer runs mongo in docker and waits until it answers pings.
// The container expires on its own; there is no package-level teardown.
func startContainer() (string, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return "", fmt.Errorf("docker pool: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return "", fmt.Errorf("docker not reachable: %w", err)
	}
	pool.MaxWait = 90 * time.Second

	res, err := pool.Run("mongo", "7", nil)
	if err != nil {
		return "", fmt.Errorf("start mongo container: %w", err)
	}
	_ = res.Expire(600)

	uri := fmt.Sprintf("mongodb://localhost:%s", res.GetPort("27017/tcp"))
	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		defer c.Disconnect(context.Background())
		return c.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		_ = pool.Purge(res)
		return "", fmt.Errorf("mongo container never became ready: %w", err)
	}
	return uri, nil
}

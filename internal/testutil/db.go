// Package testutil provides MongoDB-backed fixtures and HTTP helpers for
// package tests.
//
// Tests that need a database call SetupTestDB, which connects to
// TASKHUB_TEST_MONGO_URI (default mongodb://localhost:27017), creates a
// throwaway database, and drops it on cleanup. When no server is reachable
// the test is skipped.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTestURI = "mongodb://localhost:27017"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

func testURI() string {
	if uri := strings.TrimSpace(os.Getenv("TASKHUB_TEST_MONGO_URI")); uri != "" {
		return uri
	}
	return defaultTestURI
}

func sharedClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		opts := options.Client().ApplyURI(testURI()).SetServerSelectionTimeout(2 * time.Second)
		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			clientErr = err
			return
		}
		if err := c.Ping(ctx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			clientErr = err
			return
		}
		client = c
	})
	return client, clientErr
}

// TestContext returns a context bounded for a single test's database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// SetupTestDB returns an empty database unique to t, dropped when the test
// ends.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	c, err := sharedClient()
	if err != nil {
		t.Skipf("MongoDB not available at %s: %v", testURI(), err)
	}

	name := fmt.Sprintf("taskhub_test_%s", primitive.NewObjectID().Hex())
	db := c.Database(name)
	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

// SetupIndexedDB is SetupTestDB plus the production indexes, for tests that
// depend on unique constraints.
func SetupIndexedDB(t *testing.T) *mongo.Database {
	t.Helper()
	db := SetupTestDB(t)
	ctx, cancel := TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}

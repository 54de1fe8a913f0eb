package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	appName         = "pos-portal"
	defaultDatabase = "pos_portal"
	defaultTimeout  = 10 * time.Second
)

// Config captures the settings for the portal's MongoDB connection. Zero
// values fall back to the service defaults, so Config{URI: ...} alone is
// enough for local development.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

func (c Config) database() string {
	if c.Database == "" {
		return defaultDatabase
	}
	return c.Database
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// clientOptions builds the driver options for the portal. The app name shows
// up in server logs and currentOp, which keeps device CAS traffic
// attributable when several services share a cluster.
func clientOptions(cfg Config) *options.ClientOptions {
	return options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName)
}

// Connect establishes the portal's MongoDB client, verifies connectivity with
// a ping, and returns both the client and the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.database()), nil
}

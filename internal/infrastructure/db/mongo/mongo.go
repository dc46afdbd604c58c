package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	appName         = "safeledger-dashboard"
	selectTimeout   = 10 * time.Second
	disconnectAfter = 5 * time.Second
)

// Config holds the audit store connection settings.
type Config struct {
	URI      string
	Database string
}

// Connect opens the audit store and returns the client with the selected
// database. The primary must answer a ping before Connect returns.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(selectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		Disconnect(client)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// Disconnect closes client, giving in-flight operations a short grace period.
func Disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectAfter)
	defer cancel()
	_ = client.Disconnect(ctx)
}

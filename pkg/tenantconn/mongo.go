package tenantconn

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoConfig tunes the per-tenant mongo connections. The connection URL
// itself is not configured here - it arrives per request as the tenant's
// location string.
type MongoConfig struct {
	ConnectTimeout  time.Duration `env:"TENANT_MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize     uint64        `env:"TENANT_MONGO_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize     uint64        `env:"TENANT_MONGO_MIN_POOL_SIZE" envDefault:"1"`
	MaxConnIdleTime time.Duration `env:"TENANT_MONGO_MAX_CONN_IDLE_TIME" envDefault:"300s"`
	RetryWrites     bool          `env:"TENANT_MONGO_RETRY_WRITES" envDefault:"true"`
	RetryReads      bool          `env:"TENANT_MONGO_RETRY_READS" envDefault:"true"`
}

// MongoDialer returns a DialFunc that connects to the tenant database at
// the given location string and verifies the connection with a ping.
func MongoDialer(cfg MongoConfig) DialFunc[*mongo.Client] {
	return func(ctx context.Context, location string) (*mongo.Client, error) {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(location).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime).
				SetRetryWrites(cfg.RetryWrites).
				SetRetryReads(cfg.RetryReads),
		)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return client, nil
	}
}

// MongoCloser disconnects a cached mongo client during shutdown.
func MongoCloser(ctx context.Context, client *mongo.Client) error {
	return client.Disconnect(ctx)
}

// MongoDatabaseDialer is MongoDialer resolved down to the database named
// in the location string's path. Backends that only ever touch the
// tenant's own database cache this handle instead of the raw client.
func MongoDatabaseDialer(cfg MongoConfig) DialFunc[*mongo.Database] {
	dial := MongoDialer(cfg)
	return func(ctx context.Context, location string) (*mongo.Database, error) {
		name, err := databaseName(location)
		if err != nil {
			return nil, err
		}
		client, err := dial(ctx, location)
		if err != nil {
			return nil, err
		}
		return client.Database(name), nil
	}
}

// MongoDatabaseCloser disconnects the client behind a cached database handle.
func MongoDatabaseCloser(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}

// databaseName extracts the database from the location string's path.
func databaseName(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse location: %w", err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("location %q does not name a database", MaskLocation(location))
	}
	return name, nil
}

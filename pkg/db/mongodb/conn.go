package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	defaultDatabase    = "spk-encoder-gateway"
	defaultMaxPoolSize = 10
	pingTimeout        = 10
)

// Conn wraps the driver client so repositories can be handed one explicit,
// test-replaceable connection instead of reaching for process-global state.
// When the store is unreachable the connection stays in a degraded mode:
// Available reports false and Collection returns nil, which repositories
// translate into empty reads and failed writes. Ping refreshes the flag, so
// a store that comes back is picked up without restarting the process.
type Conn struct {
	client *mongo.Client
	db     *mongo.Database

	mu        sync.RWMutex
	available bool
}

func NewMongoConn(cfg *config.Config) (*Conn, error) {
	dbName := cfg.Mongo.Database
	if dbName == "" {
		dbName = defaultDatabase
	}
	maxPool := cfg.Mongo.MaxPoolSize
	if maxPool <= 0 {
		maxPool = defaultMaxPoolSize
	}

	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMaxPoolSize(uint64(maxPool)).
		SetServerSelectionTimeout(time.Duration(cfg.Mongo.ConnectTimeout) * time.Second)
	if cfg.Mongo.SocketTimeout > 0 {
		opts.SetTimeout(time.Duration(cfg.Mongo.SocketTimeout) * time.Second)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	c := &Conn{
		client: client,
		db:     client.Database(dbName),
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout*time.Second)
	defer cancel()
	if err = c.Ping(ctx); err != nil {
		// Degraded mode: keep the client, the driver reconnects on its own
		// once the store is reachable again.
		return c, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return c, nil
}

func (c *Conn) Ping(ctx context.Context) error {
	err := c.client.Ping(ctx, readpref.Primary())
	c.mu.Lock()
	c.available = err == nil
	c.mu.Unlock()
	return err
}

func (c *Conn) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

// Collection returns the named collection, or nil while degraded.
func (c *Conn) Collection(name string) *mongo.Collection {
	if !c.Available() {
		return nil
	}
	return c.db.Collection(name)
}

func (c *Conn) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

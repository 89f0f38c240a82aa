package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

// ConnState is the gateway's connection lifecycle state. The numeric values
// and string forms mirror the classic driver readyState convention.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnected
	StateConnecting
	StateDisconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateConnecting:
		return "connecting"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "disconnected"
	}
}

// Gateway owns the single Mongo client for the process. Connect is lazy and
// idempotent: the first caller dials, concurrent first-callers are collapsed
// into one dial, and everyone after that reuses the cached client.
type Gateway struct {
	uri    string
	dbName string

	state  atomic.Int32
	group  singleflight.Group
	mu     sync.Mutex
	client *mongo.Client
}

func NewGateway(uri, dbName string) *Gateway {
	return &Gateway{uri: uri, dbName: dbName}
}

// State reports the current connection state without dialing.
func (g *Gateway) State() ConnState {
	return ConnState(g.state.Load())
}

// Connect returns a handle to the configured database, establishing the
// client connection on first use.
func (g *Gateway) Connect(ctx context.Context) (*mongo.Database, error) {
	if c := g.cached(); c != nil {
		return c.Database(g.dbName), nil
	}

	_, err, _ := g.group.Do("connect", func() (any, error) {
		if g.cached() != nil {
			return nil, nil
		}
		g.state.Store(int32(StateConnecting))

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(g.uri))
		if err != nil {
			g.state.Store(int32(StateDisconnected))
			return nil, err
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			g.state.Store(int32(StateDisconnected))
			return nil, err
		}

		g.mu.Lock()
		g.client = client
		g.mu.Unlock()
		g.state.Store(int32(StateConnected))
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	c := g.cached()
	if c == nil {
		// Close won the race against this Connect.
		return nil, errors.New("connection closed")
	}
	return c.Database(g.dbName), nil
}

// Close disconnects the cached client, if any.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	client := g.client
	g.client = nil
	g.mu.Unlock()
	if client == nil {
		return nil
	}

	g.state.Store(int32(StateDisconnecting))
	err := client.Disconnect(ctx)
	g.state.Store(int32(StateDisconnected))
	return err
}

func (g *Gateway) cached() *mongo.Client {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.State() != StateConnected {
		return nil
	}
	return g.client
}

// DBStats is the diagnostics payload for the db-info endpoint.
type DBStats struct {
	Database    string       `json:"database"`
	Collections []string     `json:"collections"`
	Stats       StatCounters `json:"stats"`
}

// StatCounters carries the subset of dbStats counters the API exposes.
// Sizes are float64 because the server reports them that way for large
// databases.
type StatCounters struct {
	Collections int64   `json:"collections"`
	Objects     int64   `json:"objects"`
	DataSize    float64 `json:"dataSize"`
	StorageSize float64 `json:"storageSize"`
}

// Stats connects if needed, then gathers database name, collection names
// and aggregate counters.
func (g *Gateway) Stats(ctx context.Context) (*DBStats, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Collections int64   `bson:"collections"`
		Objects     int64   `bson:"objects"`
		DataSize    float64 `bson:"dataSize"`
		StorageSize float64 `bson:"storageSize"`
	}
	if err := database.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&raw); err != nil {
		return nil, err
	}

	names, err := database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}

	return &DBStats{
		Database:    database.Name(),
		Collections: names,
		Stats: StatCounters{
			Collections: raw.Collections,
			Objects:     raw.Objects,
			DataSize:    raw.DataSize,
			StorageSize: raw.StorageSize,
		},
	}, nil
}

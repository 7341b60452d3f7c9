package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ak/flavorfusion/internal/infrastructure/config"
	"github.com/ak/flavorfusion/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoDB wraps the MongoDB client and database
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   config.MongoDBConfig
	logger   *logger.Logger
}

// NewMongoDB creates a new MongoDB connection
func NewMongoDB(cfg config.MongoDBConfig, log *logger.Logger) *MongoDB {
	return &MongoDB{
		config: cfg,
		logger: log.WithComponent("mongodb"),
	}
}

// Connect establishes connection to MongoDB
func (m *MongoDB) Connect(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(m.config.URI).
		SetMaxPoolSize(m.config.MaxPoolSize).
		SetMinPoolSize(m.config.MinPoolSize).
		SetConnectTimeout(m.config.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)
	m.logger.Info("Connected to MongoDB", zap.String("database", m.config.Database))

	m.createIndexes(ctx)
	return nil
}

// Close closes the MongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Collection returns a collection by name
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// Collections
const (
	CollectionRecipes = "recipes"
)

// createIndexes creates the secondary indexes used by catalog browsing.
// Failures are logged, not fatal.
func (m *MongoDB) createIndexes(ctx context.Context) {
	indexes := map[string][]mongo.IndexModel{
		CollectionRecipes: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "dietary", Value: 1}, {Key: "difficulty", Value: 1}}},
			{Keys: bson.D{{Key: "cuisine", Value: 1}}},
		},
	}

	for collection, idxModels := range indexes {
		coll := m.database.Collection(collection)
		for _, idx := range idxModels {
			if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
				m.logger.Warn("Failed to create index",
					zap.String("collection", collection),
					zap.Error(err))
			}
		}
	}
}

// Health checks if MongoDB is healthy
func (m *MongoDB) Health(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("mongodb not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

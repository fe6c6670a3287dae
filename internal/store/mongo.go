package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catalogworker/logger"
)

// MongoConfig holds the MongoDB connection parameters
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoStore implements DocumentStore on a MongoDB collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
	log        *logger.Logger
}

// NewMongoStore connects to MongoDB and binds to the configured collection
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetRetryWrites(true)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log := logger.ForStore()
	log.Info().
		Str("database", cfg.Database).
		Str("collection", cfg.Collection).
		Msg("Connected to MongoDB")

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:    cfg.Timeout,
		log:        log,
	}, nil
}

// Insert persists one product record
func (m *MongoStore) Insert(ctx context.Context, record interface{}) error {
	opCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if _, err := m.collection.InsertOne(opCtx, record); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// FindByLink reports whether a record with the given canonical link exists
func (m *MongoStore) FindByLink(ctx context.Context, link string) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.collection.FindOne(opCtx, bson.M{"link": link}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query by link: %w", err)
	}
	return true, nil
}

// Close disconnects from MongoDB
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Package repository provides MongoDB-backed persistence for run history.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB holds the MongoDB client and the history database.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	logger   *slog.Logger
}

// MongoDBConfig contains configuration for MongoDB connection.
type MongoDBConfig struct {
	URI            string
	Database       string
	AppName        string
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
}

// DefaultMongoDBConfig returns default configuration.
func DefaultMongoDBConfig() *MongoDBConfig {
	return &MongoDBConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "browserboot",
		AppName:        "browserboot",
		ConnectTimeout: 10 * time.Second,
		PingTimeout:    5 * time.Second,
	}
}

// NewMongoDB connects to MongoDB and verifies the connection with a ping.
// Server selection is bounded by ConnectTimeout.
func NewMongoDB(ctx context.Context, cfg *MongoDBConfig, logger *slog.Logger) (*MongoDB, error) {
	if cfg == nil {
		cfg = DefaultMongoDBConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(cfg.AppName).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", redactURI(cfg.URI), err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", redactURI(cfg.URI), err)
	}

	logger.Info("Connected to MongoDB", "uri", redactURI(cfg.URI), "database", cfg.Database)

	return &MongoDB{
		client:   client,
		database: client.Database(cfg.Database),
		logger:   logger,
	}, nil
}

// Close disconnects from MongoDB.
func (m *MongoDB) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// Collection returns a collection by name.
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// redactURI hides the password of a connection string for logs and errors.
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "<invalid uri>"
	}
	if u.User == nil {
		return uri
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

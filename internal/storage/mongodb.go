package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"promptcheck/config"
)

// mongoReader implements Reader for MongoDB. Prompts are documents with an
// "id" field in the configured collection.
type mongoReader struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func openMongoDB(ctx context.Context, cfg config.MongoDBConfig, collection string) (Reader, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("MongoDB URL is required")
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = "prompts"
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &mongoReader{
		client:     client,
		collection: client.Database(dbName).Collection(collection),
	}, nil
}

func (s *mongoReader) FetchByID(ctx context.Context, id string) (*Row, error) {
	var doc bson.D
	err := s.collection.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	row := &Row{
		Columns: make([]string, 0, len(doc)),
		Values:  make([]any, 0, len(doc)),
	}
	for _, e := range doc {
		row.Columns = append(row.Columns, e.Key)
		row.Values = append(row.Values, e.Value)
	}
	return row, nil
}

func (s *mongoReader) Close() error {
	if s.client != nil {
		return s.client.Disconnect(context.Background())
	}
	return nil
}

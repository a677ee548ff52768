package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ppiankov/filmwiki/internal/model"
)

// recordDocument is the stored form of a record: the ten record fields
// plus its position and the run that produced it
type recordDocument struct {
	Index                 int    `bson:"_index"`
	Run                   string `bson:"_run"`
	model.ExtractedRecord `bson:",inline"`
}

func recordDocuments(runID string, records []model.ExtractedRecord) []any {
	docs := make([]any, len(records))
	for i, record := range records {
		docs[i] = recordDocument{Index: i, Run: runID, ExtractedRecord: record.Normalize()}
	}
	return docs
}

// MongoSink writes records to a MongoDB collection
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoSink connects to uri and verifies the connection
func NewMongoSink(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_sink"),
	}, nil
}

// Store inserts every record tagged with runID, preserving order
func (s *MongoSink) Store(ctx context.Context, runID string, records []model.ExtractedRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.collection.InsertMany(ctx, recordDocuments(runID, records), options.InsertMany().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("mongodb insert: %w", err)
	}
	s.logger.Info("records stored in mongodb", "count", len(res.InsertedIDs), "run_id", runID)
	return nil
}

// Close disconnects from the server
func (s *MongoSink) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

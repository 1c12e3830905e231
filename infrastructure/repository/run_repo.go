package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"browserboot/domain/history"
	"browserboot/domain/launch"
)

// RunCollection is the collection holding bootstrap run records.
const RunCollection = "bootstrap_run"

// runDocument is the MongoDB document structure for run records.
type runDocument struct {
	ID         string            `bson:"_id"`
	Mode       string            `bson:"mode"`
	Engine     string            `bson:"engine"`
	Endpoint   string            `bson:"endpoint"`
	Attempts   int               `bson:"attempts"`
	Failures   []failureDocument `bson:"failures,omitempty"`
	Succeeded  bool              `bson:"succeeded"`
	Error      string            `bson:"error,omitempty"`
	StartedAt  time.Time         `bson:"started_at"`
	FinishedAt time.Time         `bson:"finished_at"`
}

// failureDocument is the MongoDB document structure for a failed attempt.
type failureDocument struct {
	Attempt int    `bson:"attempt"`
	Step    string `bson:"step"`
	Message string `bson:"message"`
}

// MongoRunRepository implements history.Repository using MongoDB.
type MongoRunRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoRunRepository creates a new MongoDB-based run repository.
func NewMongoRunRepository(db *MongoDB, logger *slog.Logger) *MongoRunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoRunRepository{
		collection: db.Collection(RunCollection),
		logger:     logger,
	}
}

// EnsureIndexes creates the indexes used by the queries below.
func (r *MongoRunRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "started_at", Value: -1}}},
		{Keys: bson.D{{Key: "mode", Value: 1}, {Key: "started_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create run indexes: %w", err)
	}
	return nil
}

// Insert stores a finished run.
func (r *MongoRunRepository) Insert(ctx context.Context, record *history.Record) error {
	if _, err := r.collection.InsertOne(ctx, recordToDocument(record)); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	r.logger.Debug("Run inserted", "id", record.ID, "mode", record.Mode.String())
	return nil
}

// FindRecent returns up to limit records, newest first.
func (r *MongoRunRepository) FindRecent(ctx context.Context, limit int) ([]*history.Record, error) {
	return r.find(ctx, bson.D{}, limit)
}

// FindByMode returns up to limit records of one mode, newest first.
func (r *MongoRunRepository) FindByMode(ctx context.Context, mode launch.Mode, limit int) ([]*history.Record, error) {
	return r.find(ctx, bson.D{{Key: "mode", Value: mode.String()}}, limit)
}

func (r *MongoRunRepository) find(ctx context.Context, filter bson.D, limit int) ([]*history.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find runs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []runDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode runs: %w", err)
	}

	records := make([]*history.Record, 0, len(docs))
	for i := range docs {
		rec, err := documentToRecord(&docs[i])
		if err != nil {
			r.logger.Warn("Skipping unreadable run", "id", docs[i].ID, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// documentToRecord converts a MongoDB document to a domain Record.
func documentToRecord(doc *runDocument) (*history.Record, error) {
	mode, err := launch.ParseMode(doc.Mode)
	if err != nil {
		return nil, err
	}

	rec := &history.Record{
		ID:         doc.ID,
		Mode:       mode,
		Engine:     doc.Engine,
		Endpoint:   doc.Endpoint,
		Attempts:   doc.Attempts,
		Succeeded:  doc.Succeeded,
		Error:      doc.Error,
		StartedAt:  doc.StartedAt,
		FinishedAt: doc.FinishedAt,
	}

	if len(doc.Failures) > 0 {
		rec.Failures = make([]history.Failure, len(doc.Failures))
		for i, f := range doc.Failures {
			rec.Failures[i] = history.Failure{
				Attempt: f.Attempt,
				Step:    f.Step,
				Message: f.Message,
			}
		}
	}

	return rec, nil
}

// recordToDocument converts a domain Record to a MongoDB document.
func recordToDocument(rec *history.Record) *runDocument {
	doc := &runDocument{
		ID:         rec.ID,
		Mode:       rec.Mode.String(),
		Engine:     rec.Engine,
		Endpoint:   rec.Endpoint,
		Attempts:   rec.Attempts,
		Succeeded:  rec.Succeeded,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
	}

	if len(rec.Failures) > 0 {
		doc.Failures = make([]failureDocument, len(rec.Failures))
		for i, f := range rec.Failures {
			doc.Failures[i] = failureDocument{
				Attempt: f.Attempt,
				Step:    f.Step,
				Message: f.Message,
			}
		}
	}

	return doc
}

// Ensure MongoRunRepository implements history.Repository
var _ history.Repository = (*MongoRunRepository)(nil)

package mongo

import (
	"context"
	"errors"
	"time"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const logCollectionName = "workout_logs"

// mongoLogRepository implements repository.WorkoutLogRepository
type mongoLogRepository struct {
	collection *mongo.Collection
}

// NewMongoLogRepository creates a new WorkoutLog repository.
func NewMongoLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoLogRepository{
		collection: db.Collection(logCollectionName),
	}
}

// Create appends a finished-session record. Logs are never updated.
func (r *mongoLogRepository) Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if log.PatientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("log requires patientId")
	}
	log.ID = primitive.NewObjectID()
	if log.CompletedAt.IsZero() {
		log.CompletedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted log ID")
	}
	return insertedID, nil
}

// GetByPatient retrieves a patient's log history, newest first.
func (r *mongoLogRepository) GetByPatient(ctx context.Context, patientID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	return r.findLogs(ctx, bson.M{"patientId": patientID}, 0)
}

// GetRecent retrieves the latest logs across all patients (activity feed).
func (r *mongoLogRepository) GetRecent(ctx context.Context, limit int64) ([]domain.WorkoutLog, error) {
	return r.findLogs(ctx, bson.M{}, limit)
}

func (r *mongoLogRepository) findLogs(ctx context.Context, filter bson.M, limit int64) ([]domain.WorkoutLog, error) {
	var logs []domain.WorkoutLog
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.WorkoutLog{}
	}
	return logs, nil
}

// EnsureLogIndexes creates indexes for the workout_logs collection.
func EnsureLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

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

const planCollectionName = "workout_plans"

// mongoPlanRepository implements repository.WorkoutPlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new WorkoutPlan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.WorkoutPlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new workout plan. Plans are immutable after this point.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error) {
	if plan.CreatedBy == primitive.NilObjectID || plan.Title == "" {
		return primitive.NilObjectID, errors.New("plan requires createdBy and title")
	}
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByCreator retrieves every plan built by a professional, newest first.
func (r *mongoPlanRepository) GetByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	return r.findPlans(ctx, bson.M{"createdBy": creatorID})
}

// GetForPatient retrieves plans assigned to a patient, plus unassigned
// plans which the product surfaces to every patient, newest first.
func (r *mongoPlanRepository) GetForPatient(ctx context.Context, patientID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	filter := bson.M{"$or": []bson.M{
		{"assignedTo": patientID},
		{"assignedTo": bson.M{"$exists": false}},
	}}
	return r.findPlans(ctx, filter)
}

func (r *mongoPlanRepository) findPlans(ctx context.Context, filter bson.M) ([]domain.WorkoutPlan, error) {
	var plans []domain.WorkoutPlan
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.WorkoutPlan{}
	}
	return plans, nil
}

// CountAll returns the number of stored plans (admin dashboard).
func (r *mongoPlanRepository) CountAll(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// EnsurePlanIndexes creates indexes for the workout_plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignedTo", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

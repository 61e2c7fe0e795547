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

const nutritionCollectionName = "nutrition_plans"

// mongoNutritionRepository implements repository.NutritionPlanRepository
type mongoNutritionRepository struct {
	collection *mongo.Collection
}

// NewMongoNutritionRepository creates a new NutritionPlan repository.
func NewMongoNutritionRepository(db *mongo.Database) repository.NutritionPlanRepository {
	return &mongoNutritionRepository{
		collection: db.Collection(nutritionCollectionName),
	}
}

// Create inserts a new nutrition plan for a patient. The newest plan for a
// patient is the active one; older plans are kept but never listed.
func (r *mongoNutritionRepository) Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	if plan.PatientID == primitive.NilObjectID || plan.Title == "" {
		return primitive.NilObjectID, errors.New("nutrition plan requires patientId and title")
	}
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted nutrition plan ID")
	}
	return insertedID, nil
}

// GetLatestForPatient retrieves the patient's active (most recent) plan.
func (r *mongoNutritionRepository) GetLatestForPatient(ctx context.Context, patientID primitive.ObjectID) (*domain.NutritionPlan, error) {
	var plan domain.NutritionPlan
	filter := bson.M{"patientId": patientID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, opts).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// EnsureNutritionIndexes creates indexes for the nutrition_plans collection.
func EnsureNutritionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

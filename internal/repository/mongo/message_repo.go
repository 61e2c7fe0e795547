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

const messageCollectionName = "messages"

// mongoMessageRepository implements repository.MessageRepository
type mongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new Message repository.
func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		collection: db.Collection(messageCollectionName),
	}
}

// Create appends a chat turn. The timestamp is assigned here, on the
// store side, so ordering does not depend on sender clocks.
func (r *mongoMessageRepository) Create(ctx context.Context, msg *domain.Message) (primitive.ObjectID, error) {
	if msg.ConversationID == "" || msg.SenderID == primitive.NilObjectID || msg.Text == "" {
		return primitive.NilObjectID, errors.New("message requires conversationId, senderId, and text")
	}
	msg.ID = primitive.NewObjectID()
	msg.SentAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted message ID")
	}
	return insertedID, nil
}

// ListByConversation returns a conversation's full message log ordered by
// send time ascending.
func (r *mongoMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var messages []domain.Message
	filter := bson.M{"conversationId": conversationID}
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// EnsureMessageIndexes creates indexes for the messages collection.
func EnsureMessageIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversationId", Value: 1}, {Key: "sentAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

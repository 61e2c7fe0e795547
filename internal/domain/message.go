package domain

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one chat turn inside a conversation. Immutable; ordered by
// SentAt ascending when listed.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID string             `bson:"conversationId" json:"conversationId"`
	SenderID       primitive.ObjectID `bson:"senderId" json:"senderId"`
	Text           string             `bson:"text" json:"text"`
	SentAt         time.Time          `bson:"sentAt" json:"sentAt"`
}

// ConversationID derives the deterministic key linking exactly two
// participants: the sorted concatenation of their ids. Symmetric in its
// arguments, and collision-free for distinct unordered pairs as long as
// the ids themselves are unique.
func ConversationID(a, b primitive.ObjectID) string {
	ids := []string{a.Hex(), b.Hex()}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

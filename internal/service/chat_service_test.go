package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryMessageRepo mimics the store contract: it assigns the send
// timestamp and lists conversations in send order.
type memoryMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
	clock    time.Time
}

func newMemoryMessageRepo() *memoryMessageRepo {
	return &memoryMessageRepo{clock: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (r *memoryMessageRepo) Create(_ context.Context, msg *domain.Message) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Second)
	stored := *msg
	stored.ID = primitive.NewObjectID()
	stored.SentAt = r.clock
	r.messages = append(r.messages, stored)
	return stored.ID, nil
}

func (r *memoryMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

func TestSendRejectsWhitespace(t *testing.T) {
	svc := NewChatService(newMemoryMessageRepo(), logger.Nop())
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := svc.Send(context.Background(), a, b, text); err != ErrEmptyMessage {
			t.Errorf("Send(%q) error = %v, want ErrEmptyMessage", text, err)
		}
	}

	history, err := svc.History(context.Background(), a, b)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history = %d messages after rejected sends, want 0", len(history))
	}
}

func TestHistoryIsSymmetricAndOrdered(t *testing.T) {
	svc := NewChatService(newMemoryMessageRepo(), logger.Nop())
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	texts := []string{"hi", "how was the workout?", "great, hit a PR"}
	senders := []primitive.ObjectID{a, b, a}
	for i, text := range texts {
		recipient := b
		if senders[i] == b {
			recipient = a
		}
		if _, err := svc.Send(context.Background(), senders[i], recipient, text); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	// Both participants read the same conversation regardless of argument order.
	fromA, err := svc.History(context.Background(), a, b)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	fromB, err := svc.History(context.Background(), b, a)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(fromA) != 3 || len(fromB) != 3 {
		t.Fatalf("history lengths = %d/%d, want 3/3", len(fromA), len(fromB))
	}
	for i, want := range texts {
		if fromA[i].Text != want {
			t.Errorf("message %d = %q, want %q", i, fromA[i].Text, want)
		}
		if fromA[i].ID != fromB[i].ID {
			t.Errorf("participants disagree on message %d", i)
		}
	}
	if !sort.SliceIsSorted(fromA, func(i, j int) bool { return fromA[i].SentAt.Before(fromA[j].SentAt) }) {
		t.Error("history not in send order")
	}
}

func TestSubscribeDeliversFullListOnAppend(t *testing.T) {
	svc := NewChatService(newMemoryMessageRepo(), logger.Nop())
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	if _, err := svc.Send(context.Background(), a, b, "first"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	ch, cancel, err := svc.Subscribe(context.Background(), b, a)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if len(initial) != 1 || initial[0].Text != "first" {
		t.Fatalf("initial delivery = %+v, want the existing message", initial)
	}

	if _, err := svc.Send(context.Background(), b, a, "second"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case update := <-ch:
		if len(update) != 2 || update[1].Text != "second" {
			t.Errorf("update = %d messages ending %q, want 2 ending %q", len(update), update[len(update)-1].Text, "second")
		}
	case <-time.After(time.Second):
		t.Fatal("no delivery after append")
	}

	// Teardown stops delivery; a second cancel is harmless.
	cancel()
	cancel()
	if _, err := svc.Send(context.Background(), a, b, "third"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("delivery after cancel")
		}
	case <-time.After(100 * time.Millisecond):
	}
}

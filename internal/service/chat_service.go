package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/platform/logger"
	"fridman/health-hub/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrEmptyMessage = errors.New("message text cannot be empty")

// ChatService runs one-to-one conversations. A subscription receives the
// conversation's full ordered history on every append, so late joiners
// and live viewers render from the same payload.
type ChatService interface {
	Send(ctx context.Context, senderID, recipientID primitive.ObjectID, text string) (*domain.Message, error)
	History(ctx context.Context, a, b primitive.ObjectID) ([]domain.Message, error)
	Subscribe(ctx context.Context, a, b primitive.ObjectID) (<-chan []domain.Message, func(), error)
}

type chatService struct {
	messageRepo repository.MessageRepository
	log         *logger.Logger

	mu      sync.Mutex
	subs    map[string]map[int]chan []domain.Message
	nextSub int
}

func NewChatService(messageRepo repository.MessageRepository, log *logger.Logger) ChatService {
	return &chatService{
		messageRepo: messageRepo,
		log:         log,
		subs:        make(map[string]map[int]chan []domain.Message),
	}
}

// Send appends a message with a store-assigned timestamp. Whitespace-only
// text is rejected before it reaches storage. Subscriber fan-out happens
// off the caller's path.
func (s *chatService) Send(ctx context.Context, senderID, recipientID primitive.ObjectID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg := &domain.Message{
		ConversationID: domain.ConversationID(senderID, recipientID),
		SenderID:       senderID,
		Text:           text,
	}
	id, err := s.messageRepo.Create(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = id

	go s.broadcast(msg.ConversationID)
	return msg, nil
}

// History returns the conversation ordered by send time ascending.
func (s *chatService) History(ctx context.Context, a, b primitive.ObjectID) ([]domain.Message, error) {
	return s.messageRepo.ListByConversation(ctx, domain.ConversationID(a, b))
}

// Subscribe opens a live feed for the conversation between two users. The
// current history arrives immediately, then again after every append. The
// returned cancel tears the subscription down and is safe to call twice.
func (s *chatService) Subscribe(ctx context.Context, a, b primitive.ObjectID) (<-chan []domain.Message, func(), error) {
	conversationID := domain.ConversationID(a, b)

	history, err := s.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []domain.Message, 1)
	ch <- history

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[conversationID] == nil {
		s.subs[conversationID] = make(map[int]chan []domain.Message)
	}
	s.subs[conversationID][id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if conv, ok := s.subs[conversationID]; ok {
				if sub, ok := conv[id]; ok {
					delete(conv, id)
					close(sub)
				}
				if len(conv) == 0 {
					delete(s.subs, conversationID)
				}
			}
		})
	}
	return ch, cancel, nil
}

// broadcast re-reads the conversation and pushes the full ordered list to
// every subscriber. A read failure only costs this delivery; the message
// itself is already stored.
func (s *chatService) broadcast(conversationID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := s.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		s.log.Error("failed to load conversation for fan-out", "conversationID", conversationID, "error", err)
		return
	}
	// The store already sorts; keep the ordering guarantee even if a
	// backend returns unsorted results.
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].SentAt.Before(messages[j].SentAt) })

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[conversationID] {
		// Latest list wins; never block on a slow subscriber.
		select {
		case ch <- messages:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- messages:
			default:
			}
		}
	}
}

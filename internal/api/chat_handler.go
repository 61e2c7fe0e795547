package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves one-to-one conversations for any authenticated role.
// The other participant's id rides in the path; the conversation id is
// derived, never supplied by the client.
type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type MessageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Text           string `json:"text"`
	SentAt         string `json:"sentAt"`
	Mine           bool   `json:"mine"`
}

// GetHistory godoc
// @Summary Read a conversation, oldest first
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other participant's ID"
// @Success 200 {array} MessageResponse
// @Router /chat/{userId} [get]
func (h *ChatHandler) GetHistory(c *gin.Context) {
	me, ok := principalID(c)
	if !ok {
		return
	}
	other, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), me, other)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	resp := make([]MessageResponse, len(messages))
	for i := range messages {
		resp[i] = mapMessage(&messages[i], me.Hex())
	}
	c.JSON(http.StatusOK, resp)
}

// Send godoc
// @Summary Send a message
// @Description Whitespace-only text is rejected.
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other participant's ID"
// @Param body body SendMessageRequest true "Message text"
// @Success 201 {object} MessageResponse
// @Failure 422 {object} gin.H "Empty message"
// @Router /chat/{userId} [post]
func (h *ChatHandler) Send(c *gin.Context) {
	me, ok := principalID(c)
	if !ok {
		return
	}
	other, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), me, other, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, mapMessage(msg, me.Hex()))
}

// Stream godoc
// @Summary Stream a conversation over SSE
// @Description Delivers the full ordered history immediately and again after every new message, until the client disconnects.
// @Tags Chat
// @Produce text/event-stream
// @Security BearerAuth
// @Param userId path string true "Other participant's ID"
// @Router /chat/{userId}/stream [get]
func (h *ChatHandler) Stream(c *gin.Context) {
	me, ok := principalID(c)
	if !ok {
		return
	}
	other, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}

	updates, cancel, err := h.chatService.Subscribe(c.Request.Context(), me, other)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to open conversation stream")
		return
	}
	defer cancel()

	meHex := me.Hex()
	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case messages, open := <-updates:
			if !open {
				return false
			}
			resp := make([]MessageResponse, len(messages))
			for i := range messages {
				resp[i] = mapMessage(&messages[i], meHex)
			}
			c.SSEvent("conversation", resp)
			return true
		case <-clientGone:
			return false
		}
	})
}

func mapMessage(msg *domain.Message, viewerHex string) MessageResponse {
	sender := msg.SenderID.Hex()
	return MessageResponse{
		ID:             msg.ID.Hex(),
		ConversationID: msg.ConversationID,
		SenderID:       sender,
		Text:           msg.Text,
		SentAt:         msg.SentAt.UTC().Format(time.RFC3339),
		Mine:           sender == viewerHex,
	}
}

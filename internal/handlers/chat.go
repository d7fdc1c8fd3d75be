package handlers

import (
	"errors"
	"net/http"

	"mailpilot-be/internal/models"
	"mailpilot-be/internal/services"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves the conversational assistant endpoint.
type ChatHandler struct {
	chat *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatRequest is a conversation transcript, oldest message first.
type ChatRequest struct {
	Messages []models.ChatMessage `json:"messages" binding:"required"`
}

// Chat godoc
// @Summary Converse with the email assistant
// @Description Answers questions about stored email, citing the messages it retrieved, and can draft replies or propose calendar events
// @Tags chat
// @Accept json
// @Produce json
// @Param payload body ChatRequest true "Conversation so far"
// @Success 200 {object} models.ChatReply
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.chat.Respond(c.Request.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTranscript) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Chat failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, reply)
}

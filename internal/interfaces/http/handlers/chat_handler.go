package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/chatclaim/internal/application/dto"
	"github.com/turtacn/chatclaim/pkg/errors"
	"github.com/turtacn/chatclaim/pkg/logger"
)

// ChatService forwards chat traffic to the backend.
type ChatService interface {
	SendMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	GetHistory(ctx context.Context, studentID string) ([]dto.ChatMessage, error)
}

// ChatHandler relays the chat API. Bodies pass through unchanged so existing clients keep working.
type ChatHandler struct {
	chat ChatService
	log  logger.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat ChatService, log logger.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log.WithComponent("ChatHandler")}
}

// SendMessage godoc
// @Summary      Send a chat message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ChatRequest  true  "Chat message"
// @Success      200      {object}  dto.ChatResponse
// @Failure      400      {object}  map[string]interface{}
// @Failure      502      {object}  map[string]interface{}
// @Router       /students/chat [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.ErrInvalidRequest("message and studentId are required").WithCause(err))
		return
	}

	resp, err := h.chat.SendMessage(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetHistory godoc
// @Summary      Get the chat history of a student
// @Tags         chat
// @Produce      json
// @Param        studentId  path      string  true  "Student ID"
// @Success      200        {array}   dto.ChatMessage
// @Failure      502        {object}  map[string]interface{}
// @Router       /students/chat/history/{studentId} [get]
func (h *ChatHandler) GetHistory(c *gin.Context) {
	history, err := h.chat.GetHistory(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if history == nil {
		history = []dto.ChatMessage{}
	}
	c.JSON(http.StatusOK, history)
}

// fail answers in the chat backend's own error shape, a JSON object with a message field.
func (h *ChatHandler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if claimErr, ok := errors.AsClaimError(err); ok {
		status = claimErr.HTTPStatus()
		// Client errors reported by the backend are passed through as-is.
		if upstream, ok := claimErr.Metadata()["upstream_status"].(int); ok && upstream >= 400 && upstream < 500 {
			status = upstream
		}
	}
	if status >= http.StatusInternalServerError {
		h.log.Error(c.Request.Context(), "chat relay failed", err)
	}
	c.JSON(status, gin.H{
		"message": err.Error(),
		"error":   string(errors.KindOf(err)),
	})
}

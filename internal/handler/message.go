package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightdesk/support-service/internal/middleware"
	"github.com/brightdesk/support-service/internal/model"
	"github.com/brightdesk/support-service/internal/service"
)

type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type createMessageRequest struct {
	Content string `json:"content" binding:"required"`
	Role    string `json:"role"`
}

// Create appends a turn to the agent's conversation. For user turns the
// response carries both the stored user message and the generated assistant
// reply.
func (h *MessageHandler) Create(c *gin.Context) {
	agentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	userMsg, agentMsg, err := h.svc.Append(
		c.Request.Context(),
		agentID,
		middleware.CurrentUser(c),
		req.Content,
		model.MessageRole(req.Role),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	if agentMsg == nil {
		c.JSON(http.StatusCreated, userMsg)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user_message":  userMsg,
		"agent_message": agentMsg,
	})
}

func (h *MessageHandler) List(c *gin.Context) {
	agentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, offset := parsePagination(c)
	items, _, err := h.svc.ListForAgent(c.Request.Context(), middleware.CurrentUser(c), agentID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// History is the paginated variant used by the chat front end.
func (h *MessageHandler) History(c *gin.Context) {
	agentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, offset := parsePagination(c)
	if limit <= 0 {
		limit = 50
	}
	items, total, err := h.svc.ListForAgent(c.Request.Context(), middleware.CurrentUser(c), agentID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": items, "total": total})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightdesk/support-service/internal/middleware"
	"github.com/brightdesk/support-service/internal/model"
	"github.com/brightdesk/support-service/internal/service"
)

type AgentHandler struct {
	svc *service.AgentService
}

func NewAgentHandler(svc *service.AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

type createAgentRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Description    string                 `json:"description"`
	Status         string                 `json:"status"`
	Model          string                 `json:"model"`
	Prompt         string                 `json:"prompt"`
	Temperature    *float64               `json:"temperature"`
	MaxTokens      *int                   `json:"max_tokens"`
	WelcomeMessage string                 `json:"welcome_message"`
	WidgetConfig   map[string]interface{} `json:"widget_config"`
}

func (h *AgentHandler) Create(c *gin.Context) {
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	agent := &model.Agent{
		Name:           req.Name,
		Description:    req.Description,
		IsActive:       true,
		Status:         model.AgentStatusOffline,
		Model:          "gpt-4",
		Prompt:         "You are a helpful assistant.",
		Temperature:    0.7,
		MaxTokens:      500,
		WelcomeMessage: "Hello! How can I help you today?",
	}
	if req.Status != "" {
		agent.Status = model.AgentStatus(req.Status)
	}
	if req.Model != "" {
		agent.Model = req.Model
	}
	if req.Prompt != "" {
		agent.Prompt = req.Prompt
	}
	if req.Temperature != nil {
		agent.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		agent.MaxTokens = *req.MaxTokens
	}
	if req.WelcomeMessage != "" {
		agent.WelcomeMessage = req.WelcomeMessage
	}
	if req.WidgetConfig != nil {
		agent.WidgetConfig = req.WidgetConfig
	}
	if err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), agent); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (h *AgentHandler) List(c *gin.Context) {
	limit, offset := parsePagination(c)
	items, total, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": items, "total": total})
}

func (h *AgentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	agent, err := h.svc.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

type updateAgentRequest struct {
	Name           *string                `json:"name,omitempty"`
	Description    *string                `json:"description,omitempty"`
	Status         *string                `json:"status,omitempty"`
	Model          *string                `json:"model,omitempty"`
	Prompt         *string                `json:"prompt,omitempty"`
	Temperature    *float64               `json:"temperature,omitempty"`
	MaxTokens      *int                   `json:"max_tokens,omitempty"`
	WelcomeMessage *string                `json:"welcome_message,omitempty"`
	WidgetConfig   map[string]interface{} `json:"widget_config,omitempty"`
}

func (h *AgentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	changes := service.AgentChanges{
		Name:           req.Name,
		Description:    req.Description,
		Model:          req.Model,
		Prompt:         req.Prompt,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		WelcomeMessage: req.WelcomeMessage,
		WidgetConfig:   req.WidgetConfig,
	}
	if req.Status != nil {
		status := model.AgentStatus(*req.Status)
		changes.Status = &status
	}
	agent, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), id, changes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *AgentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AgentHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	agent, err := h.svc.ToggleActive(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	state := "inactive"
	if agent.IsActive {
		state = "active"
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        agent.ID,
		"is_active": agent.IsActive,
		"message":   "Agent " + agent.Name + " is now " + state + ".",
	})
}

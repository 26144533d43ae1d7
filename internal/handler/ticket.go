package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightdesk/support-service/internal/kafka"
	"github.com/brightdesk/support-service/internal/middleware"
	"github.com/brightdesk/support-service/internal/model"
	"github.com/brightdesk/support-service/internal/service"
)

type TicketHandler struct {
	svc    *service.TicketService
	events kafka.TicketEventProducer
}

func NewTicketHandler(svc *service.TicketService, events kafka.TicketEventProducer) *TicketHandler {
	return &TicketHandler{svc: svc, events: events}
}

type createTicketRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Priority      string `json:"priority"`
	CustomerID    *uint  `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ticket, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), service.CreateTicketInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      model.TicketPriority(req.Priority),
		CustomerID:    req.CustomerID,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.ProduceTicketEvent(c.Request.Context(), kafka.EventTicketCreated, ticketEventPayload(ticket))
	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) List(c *gin.Context) {
	filter := service.TicketFilter{
		Status:   model.TicketStatus(c.Query("status")),
		Priority: model.TicketPriority(c.Query("priority")),
	}
	if v := intQuery(c, "agent", 0); v > 0 {
		id := uint(v)
		filter.AgentID = &id
	}
	if v := intQuery(c, "customer", 0); v > 0 {
		id := uint(v)
		filter.CustomerID = &id
	}
	limit, offset := parsePagination(c)

	items, total, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c), filter, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": items, "total": total})
}

func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.svc.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type updateTicketRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

func (h *TicketHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	changes := service.TicketChanges{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		priority := model.TicketPriority(*req.Priority)
		changes.Priority = &priority
	}
	ticket, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), id, changes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ticket, err := h.svc.UpdateStatus(c.Request.Context(), middleware.CurrentUser(c), id, model.TicketStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.ProduceTicketEvent(c.Request.Context(), kafka.EventTicketStatusChanged, ticketEventPayload(ticket))
	c.JSON(http.StatusOK, gin.H{"status": "Status updated", "new_status": ticket.Status, "ticket": ticket})
}

type assignAgentRequest struct {
	AgentID uint `json:"agent_id" binding:"required"`
}

func (h *TicketHandler) AssignAgent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req assignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ticket, err := h.svc.AssignAgent(c.Request.Context(), middleware.CurrentUser(c), id, req.AgentID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.ProduceTicketEvent(c.Request.Context(), kafka.EventTicketAssigned, ticketEventPayload(ticket))
	c.JSON(http.StatusOK, gin.H{"message": "Agent assigned", "ticket": ticket})
}

func ticketEventPayload(t *model.Ticket) map[string]interface{} {
	payload := map[string]interface{}{
		"ticket_id":   t.ID,
		"customer_id": t.CustomerID,
		"status":      t.Status,
		"priority":    t.Priority,
	}
	if t.AgentID != nil {
		payload["agent_id"] = *t.AgentID
	}
	return payload
}

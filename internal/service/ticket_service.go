package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/brightdesk/support-service/internal/errs"
	"github.com/brightdesk/support-service/internal/model"
)

type TicketService struct {
	db *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

// CreateTicketInput is the create payload. When CustomerEmail is set and no
// explicit customer is given, the customer account is resolved or created
// from the email/name pair.
type CreateTicketInput struct {
	Title         string
	Description   string
	Priority      model.TicketPriority
	CustomerID    *uint
	CustomerEmail string
	CustomerName  string
}

// TicketChanges carries mutable ticket fields; nil means "leave unchanged".
type TicketChanges struct {
	Title       *string
	Description *string
	Priority    *model.TicketPriority
}

// TicketFilter narrows List results.
type TicketFilter struct {
	Status     model.TicketStatus
	Priority   model.TicketPriority
	AgentID    *uint
	CustomerID *uint
}

// Create opens a new ticket with status OPEN. Explicit customer assignment
// is reserved for staff; otherwise the customer is resolved from the
// email/name pair or defaults to the caller.
func (s *TicketService) Create(ctx context.Context, caller *model.User, in CreateTicketInput) (*model.Ticket, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errs.Validation("title", "title is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = model.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, errs.Validation("priority", "invalid priority")
	}

	customerID, err := s.resolveCustomer(ctx, caller, in)
	if err != nil {
		return nil, err
	}

	ticket := &model.Ticket{
		Title:       in.Title,
		Description: in.Description,
		Status:      model.TicketStatusOpen,
		Priority:    priority,
		CustomerID:  customerID,
	}
	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, err
	}
	return s.reload(ctx, ticket.ID)
}

func (s *TicketService) resolveCustomer(ctx context.Context, caller *model.User, in CreateTicketInput) (uint, error) {
	if in.CustomerID != nil {
		if !caller.IsStaff() {
			return 0, errs.ErrPermissionDenied
		}
		var customer model.User
		if err := s.db.WithContext(ctx).First(&customer, *in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, errs.Validation("customer", "unknown customer")
			}
			return 0, err
		}
		return customer.ID, nil
	}
	if in.CustomerEmail != "" {
		return s.getOrCreateCustomer(ctx, in.CustomerEmail, in.CustomerName)
	}
	return caller.ID, nil
}

// getOrCreateCustomer looks a customer account up by email, creating a
// CUSTOMER-role user from the name pair when absent.
func (s *TicketService) getOrCreateCustomer(ctx context.Context, email, name string) (uint, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if name == "" {
		name = "Customer"
	}
	first, last := splitName(name)
	user = model.User{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Role:      model.UserRoleCustomer,
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// List returns tickets visible to the caller with optional filters and
// pagination. Staff see everything; others see their own tickets, tickets
// of agents they own, and unassigned tickets filed by customers.
func (s *TicketService) List(ctx context.Context, caller *model.User, filter TicketFilter, limit, offset int) ([]model.Ticket, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Ticket{})
	if !caller.IsStaff() {
		tx = tx.
			Joins("LEFT JOIN agents ON agents.id = tickets.agent_id").
			Joins("JOIN users ON users.id = tickets.customer_id").
			Where("tickets.customer_id = ? OR agents.user_id = ? OR (tickets.agent_id IS NULL AND users.role = ?)",
				caller.ID, caller.ID, model.UserRoleCustomer)
	}
	if filter.Status != "" {
		tx = tx.Where("tickets.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		tx = tx.Where("tickets.priority = ?", filter.Priority)
	}
	if filter.AgentID != nil {
		tx = tx.Where("tickets.agent_id = ?", *filter.AgentID)
	}
	if filter.CustomerID != nil {
		tx = tx.Where("tickets.customer_id = ?", *filter.CustomerID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	var items []model.Ticket
	if err := tx.Preload("Customer").Preload("Agent").Order("tickets.created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get resolves a ticket under the caller's visibility rules.
func (s *TicketService) Get(ctx context.Context, caller *model.User, id uint) (*model.Ticket, error) {
	ticket, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canSee(caller, ticket) {
		return nil, errs.ErrTicketNotFound
	}
	return ticket, nil
}

// Update applies field changes under the object-level write predicate.
func (s *TicketService) Update(ctx context.Context, caller *model.User, id uint, changes TicketChanges) (*model.Ticket, error) {
	ticket, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !s.canWrite(caller, ticket) {
		return nil, errs.ErrPermissionDenied
	}

	updates := make(map[string]interface{})
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Description != nil {
		updates["description"] = *changes.Description
	}
	if changes.Priority != nil {
		if !changes.Priority.Valid() {
			return nil, errs.Validation("priority", "invalid priority")
		}
		updates["priority"] = *changes.Priority
	}
	if len(updates) == 0 {
		return ticket, nil
	}
	if err := s.db.WithContext(ctx).Model(&model.Ticket{ID: ticket.ID}).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// UpdateStatus moves the ticket through its lifecycle. Allowed for staff,
// the ticket's customer, or the assigned agent's owner. The transition to
// CLOSED stamps closed_at once; leaving CLOSED never clears it.
func (s *TicketService) UpdateStatus(ctx context.Context, caller *model.User, id uint, status model.TicketStatus) (*model.Ticket, error) {
	if !status.Valid() {
		return nil, errs.Validation("status", "invalid status")
	}
	ticket, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !s.canWrite(caller, ticket) {
		return nil, errs.ErrPermissionDenied
	}

	updates := map[string]interface{}{"status": status}
	if status == model.TicketStatusClosed && ticket.ClosedAt == nil {
		now := time.Now()
		updates["closed_at"] = &now
	}
	if err := s.db.WithContext(ctx).Model(&model.Ticket{ID: ticket.ID}).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// AssignAgent binds an active agent to the ticket and forces IN_PROGRESS.
// Staff only; an inactive or unknown agent is a validation failure and the
// ticket is left untouched.
func (s *TicketService) AssignAgent(ctx context.Context, caller *model.User, id, agentID uint) (*model.Ticket, error) {
	if !caller.IsStaff() {
		return nil, errs.ErrPermissionDenied
	}
	ticket, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	var agent model.Agent
	err = s.db.WithContext(ctx).Where("id = ? AND is_active = ?", agentID, true).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Validation("agent_id", "invalid agent ID or agent is not active")
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"agent_id": agent.ID,
		"status":   model.TicketStatusInProgress,
	}
	if err := s.db.WithContext(ctx).Model(&model.Ticket{ID: ticket.ID}).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *TicketService) reload(ctx context.Context, id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Agent").
		Preload("Agent.User").
		First(&ticket, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *TicketService) canSee(caller *model.User, t *model.Ticket) bool {
	if caller.IsStaff() || t.CustomerID == caller.ID {
		return true
	}
	if t.Agent != nil && t.Agent.UserID == caller.ID {
		return true
	}
	return t.AgentID == nil && t.Customer != nil && t.Customer.Role == model.UserRoleCustomer
}

// canWrite is the object-level write predicate: staff, the ticket's
// customer, or the assigned agent's owner.
func (s *TicketService) canWrite(caller *model.User, t *model.Ticket) bool {
	if caller.IsStaff() || t.CustomerID == caller.ID {
		return true
	}
	return t.Agent != nil && t.Agent.UserID == caller.ID
}

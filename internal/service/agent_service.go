package service

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightdesk/support-service/internal/errs"
	"github.com/brightdesk/support-service/internal/model"
)

type AgentService struct {
	db *gorm.DB
}

func NewAgentService(db *gorm.DB) *AgentService {
	return &AgentService{db: db}
}

// AgentChanges carries the mutable agent fields for updates; nil means
// "leave unchanged".
type AgentChanges struct {
	Name           *string
	Description    *string
	Status         *model.AgentStatus
	Model          *string
	Prompt         *string
	Temperature    *float64
	MaxTokens      *int
	WelcomeMessage *string
	WidgetConfig   map[string]interface{}
}

// List returns agents visible to the caller: staff see all, everyone else
// only the agents they own.
func (s *AgentService) List(ctx context.Context, caller *model.User, limit, offset int) ([]model.Agent, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Agent{})
	if !caller.IsStaff() {
		tx = tx.Where("user_id = ?", caller.ID)
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
	var items []model.Agent
	if err := tx.Preload("User").Order("name ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get resolves one agent under the caller's visibility rules: agents the
// caller cannot see simply do not exist.
func (s *AgentService) Get(ctx context.Context, caller *model.User, id uint) (*model.Agent, error) {
	tx := s.db.WithContext(ctx).Preload("User").Where("id = ?", id)
	if !caller.IsStaff() {
		tx = tx.Where("user_id = ?", caller.ID)
	}
	var agent model.Agent
	if err := tx.First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

// Create registers a new agent owned by the caller. Staff only.
func (s *AgentService) Create(ctx context.Context, caller *model.User, agent *model.Agent) error {
	if !caller.IsStaff() {
		return errs.ErrPermissionDenied
	}
	if agent.Temperature < 0 || agent.Temperature > 1 {
		return errs.Validation("temperature", "temperature must be between 0.0 and 1.0")
	}
	if agent.Status != "" && !agent.Status.Valid() {
		return errs.Validation("status", "invalid agent status")
	}
	agent.UserID = caller.ID
	return s.db.WithContext(ctx).Create(agent).Error
}

// Update applies changes to an agent. Staff only.
func (s *AgentService) Update(ctx context.Context, caller *model.User, id uint, changes AgentChanges) (*model.Agent, error) {
	if !caller.IsStaff() {
		return nil, errs.ErrPermissionDenied
	}
	agent, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	if changes.Description != nil {
		updates["description"] = *changes.Description
	}
	if changes.Status != nil {
		if !changes.Status.Valid() {
			return nil, errs.Validation("status", "invalid agent status")
		}
		updates["status"] = *changes.Status
	}
	if changes.Model != nil {
		updates["model"] = *changes.Model
	}
	if changes.Prompt != nil {
		updates["prompt"] = *changes.Prompt
	}
	if changes.Temperature != nil {
		if *changes.Temperature < 0 || *changes.Temperature > 1 {
			return nil, errs.Validation("temperature", "temperature must be between 0.0 and 1.0")
		}
		updates["temperature"] = *changes.Temperature
	}
	if changes.MaxTokens != nil {
		updates["max_tokens"] = *changes.MaxTokens
	}
	if changes.WelcomeMessage != nil {
		updates["welcome_message"] = *changes.WelcomeMessage
	}
	if changes.WidgetConfig != nil {
		updates["widget_config"] = datatypes.JSONMap(changes.WidgetConfig)
	}
	if len(updates) == 0 {
		return agent, nil
	}
	if err := s.db.WithContext(ctx).Model(agent).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, caller, id)
}

// Delete removes an agent. Staff only.
func (s *AgentService) Delete(ctx context.Context, caller *model.User, id uint) error {
	if !caller.IsStaff() {
		return errs.ErrPermissionDenied
	}
	res := s.db.WithContext(ctx).Delete(&model.Agent{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrAgentNotFound
	}
	return nil
}

// ToggleActive flips the is_active flag. Staff only.
func (s *AgentService) ToggleActive(ctx context.Context, caller *model.User, id uint) (*model.Agent, error) {
	if !caller.IsStaff() {
		return nil, errs.ErrPermissionDenied
	}
	agent, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(agent).Update("is_active", !agent.IsActive).Error; err != nil {
		return nil, err
	}
	agent.IsActive = !agent.IsActive
	return agent, nil
}

// GetOwned resolves an agent that must belong to the caller. Used by the
// widget embed-code endpoint, where non-ownership reads as not-found.
func (s *AgentService) GetOwned(ctx context.Context, caller *model.User, id uint) (*model.Agent, error) {
	var agent model.Agent
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, caller.ID).
		First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

// GetPublic resolves an active agent with no caller at all — the public
// widget config endpoint.
func (s *AgentService) GetPublic(ctx context.Context, id uint) (*model.Agent, error) {
	var agent model.Agent
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

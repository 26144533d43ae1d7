package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/brightdesk/support-service/internal/completion"
	"github.com/brightdesk/support-service/internal/errs"
	"github.com/brightdesk/support-service/internal/model"
)

const (
	// FallbackReply is stored when the provider answers with no usable text.
	FallbackReply = "I'm not sure how to respond to that."
	// ApologyReply is stored when the provider call fails outright.
	ApologyReply = "I'm sorry, I encountered an error while processing your message."

	defaultGenerateTimeout = 30 * time.Second
)

type MessageService struct {
	db         *gorm.DB
	completion completion.Client
	timeout    time.Duration
}

func NewMessageService(db *gorm.DB, client completion.Client, timeout time.Duration) *MessageService {
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &MessageService{db: db, completion: client, timeout: timeout}
}

// Append persists one conversation turn and, for user-authored turns, the
// generated assistant reply. All writes happen in a single transaction; a
// completion failure is absorbed into the canned reply so the user message
// always survives, while a persistence failure aborts everything.
//
// Returns the user message and the assistant message in that order. The
// assistant message is nil when the appended role is "assistant": replies
// are never generated for assistant-authored messages, which is the sole
// guard against runaway self-dialogue.
func (s *MessageService) Append(ctx context.Context, agentID uint, author *model.User, content string, role model.MessageRole) (*model.Message, *model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, errs.Validation("content", "content is required")
	}
	if role == "" {
		role = model.MessageRoleUser
	}
	if !role.Valid() {
		return nil, nil, errs.Validation("role", "role must be \"user\" or \"assistant\"")
	}

	agent, err := s.activeAgent(ctx, agentID)
	if err != nil {
		return nil, nil, err
	}

	var userMsg, reply *model.Message
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg := &model.Message{
			AgentID: agent.ID,
			Content: content,
			Role:    role,
		}
		if role == model.MessageRoleUser {
			msg.UserID = &author.ID
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		userMsg = msg

		if msg.Role != model.MessageRoleUser {
			return nil
		}

		// The transcript is reconstructed from persisted history: clients
		// are stateless between turns, so the messages table is the source
		// of truth. The created_at bound keeps concurrent in-flight turns
		// out of this transcript.
		var history []model.Message
		if err := tx.
			Where("agent_id = ? AND created_at <= ?", agent.ID, msg.CreatedAt).
			Order("created_at ASC").
			Find(&history).Error; err != nil {
			return err
		}
		transcript := BuildTranscript(agent.Prompt, history)

		assistant := &model.Message{
			AgentID: agent.ID,
			Content: s.generate(ctx, agent, transcript),
			Role:    model.MessageRoleAssistant,
		}
		if err := tx.Create(assistant).Error; err != nil {
			return err
		}
		reply = assistant
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return userMsg, reply, nil
}

// generate invokes the completion provider and applies the reply policy:
// trimmed text on success, FallbackReply on empty output, ApologyReply on
// failure. Provider errors are logged, never propagated.
func (s *MessageService) generate(ctx context.Context, agent *model.Agent, transcript []completion.Turn) string {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.completion.Generate(callCtx, transcript, completion.Params{
		Model:       agent.Model,
		Temperature: agent.Temperature,
		MaxTokens:   agent.MaxTokens,
	})
	if err != nil {
		log.Printf("completion: agent=%d: %v", agent.ID, err)
		return ApologyReply
	}
	if text = strings.TrimSpace(text); text == "" {
		return FallbackReply
	}
	return text
}

// ListForAgent returns the agent's messages visible to the caller, oldest
// first. Non-staff callers only see messages they authored.
func (s *MessageService) ListForAgent(ctx context.Context, caller *model.User, agentID uint, limit, offset int) ([]model.Message, int64, error) {
	agent, err := s.activeAgent(ctx, agentID)
	if err != nil {
		return nil, 0, err
	}

	tx := s.db.WithContext(ctx).Model(&model.Message{}).Where("agent_id = ?", agent.ID)
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
	var items []model.Message
	if err := tx.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *MessageService) activeAgent(ctx context.Context, agentID uint) (*model.Agent, error) {
	var agent model.Agent
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", agentID, true).
		First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

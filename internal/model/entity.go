package model

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleCustomer UserRole = "CUSTOMER"
)

// Valid reports whether the role is one of the closed set. Roles are never
// free-form strings anywhere past the request boundary.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	FirstName    string   `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string   `gorm:"type:varchar(150)" json:"last_name"`
	Role         UserRole `gorm:"type:varchar(16);index;not null" json:"role"`
	PasswordHash string   `gorm:"not null" json:"-"`
	IsActive     bool     `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsStaff reports whether the user may act on any record regardless of
// ownership.
func (u *User) IsStaff() bool {
	return u.Role == UserRoleAdmin
}

type AgentStatus string

const (
	AgentStatusOnline  AgentStatus = "ONLINE"
	AgentStatusOffline AgentStatus = "OFFLINE"
	AgentStatusBusy    AgentStatus = "BUSY"
)

func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusOnline, AgentStatusOffline, AgentStatusBusy:
		return true
	}
	return false
}

// Agent is a configured AI persona owned by exactly one user. Temperature
// and MaxTokens are passed verbatim as generation parameters.
type Agent struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"index;not null" json:"user_id"`
	User           *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name           string            `gorm:"type:varchar(255);not null" json:"name"`
	Description    string            `gorm:"type:text" json:"description"`
	IsActive       bool              `gorm:"default:true" json:"is_active"`
	Status         AgentStatus       `gorm:"type:varchar(10);default:OFFLINE" json:"status"`
	Model          string            `gorm:"type:varchar(100);default:gpt-4" json:"model"`
	Prompt         string            `gorm:"type:text" json:"prompt"`
	Temperature    float64           `gorm:"default:0.7" json:"temperature"`
	MaxTokens      int               `gorm:"default:500" json:"max_tokens"`
	WelcomeMessage string            `gorm:"type:text" json:"welcome_message"`
	WidgetConfig   datatypes.JSONMap `json:"widget_config"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOnline is what the public widget reports: the agent must be both active
// and flagged ONLINE by its owner.
func (a *Agent) IsOnline() bool {
	return a.IsActive && a.Status == AgentStatusOnline
}

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket tracks a support case. ClosedAt is set at the moment of the
// transition to CLOSED and is never cleared afterwards, even if the ticket
// is reopened.
type Ticket struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TicketStatus   `gorm:"type:varchar(20);index;default:OPEN" json:"status"`
	Priority    TicketPriority `gorm:"type:varchar(10);index;default:MEDIUM" json:"priority"`
	CustomerID  uint           `gorm:"index;not null" json:"customer_id"`
	Customer    *User          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	AgentID     *uint          `gorm:"index" json:"agent_id,omitempty"`
	Agent       *Agent         `gorm:"foreignKey:AgentID" json:"agent,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func (r MessageRole) Valid() bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant:
		return true
	}
	return false
}

// Message is one turn of an agent conversation. UserID is nil for
// assistant-authored messages; ordering within a conversation is by
// CreatedAt.
type Message struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	AgentID uint        `gorm:"index;not null" json:"agent_id"`
	Content string      `gorm:"type:text;not null" json:"content"`
	Role    MessageRole `gorm:"type:varchar(10);not null" json:"role"`
	UserID  *uint       `gorm:"index" json:"user_id,omitempty"`
	User    *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entities lists every persisted type in migration order.
func Entities() []interface{} {
	return []interface{}{&User{}, &Agent{}, &Ticket{}, &Message{}}
}

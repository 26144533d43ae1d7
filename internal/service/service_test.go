package service_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brightdesk/support-service/internal/completion"
	"github.com/brightdesk/support-service/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.Entities()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		PasswordHash: "x",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createAgent(t *testing.T, db *gorm.DB, owner *model.User, prompt string) *model.Agent {
	t.Helper()
	agent := &model.Agent{
		UserID:      owner.ID,
		Name:        "Helper",
		IsActive:    true,
		Status:      model.AgentStatusOnline,
		Model:       "gpt-4",
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   500,
	}
	if err := db.Create(agent).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent
}

// fakeCompletion records the last call and returns a canned result.
type fakeCompletion struct {
	reply string
	err   error

	calls      int
	transcript []completion.Turn
	params     completion.Params
}

func (f *fakeCompletion) Generate(_ context.Context, transcript []completion.Turn, p completion.Params) (string, error) {
	f.calls++
	f.transcript = transcript
	f.params = p
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func countMessages(t *testing.T, db *gorm.DB, agentID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.Message{}).Where("agent_id = ?", agentID).Count(&n).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	return n
}

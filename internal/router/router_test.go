package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brightdesk/support-service/internal/auth"
	"github.com/brightdesk/support-service/internal/completion"
	"github.com/brightdesk/support-service/internal/handler"
	"github.com/brightdesk/support-service/internal/kafka"
	"github.com/brightdesk/support-service/internal/model"
	"github.com/brightdesk/support-service/internal/router"
	"github.com/brightdesk/support-service/internal/service"
)

type cannedCompletion struct {
	reply string
}

func (c cannedCompletion) Generate(context.Context, []completion.Turn, completion.Params) (string, error) {
	return c.reply, nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.Entities()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tokens := auth.NewManager("test-secret", time.Minute, time.Hour)
	users := service.NewUserService(db)
	agents := service.NewAgentService(db)
	tickets := service.NewTicketService(db)
	messages := service.NewMessageService(db, cannedCompletion{reply: "Hello there!"}, time.Second)
	events := kafka.NewProducer(nil, "")

	return router.New(router.Deps{
		Tokens:   tokens,
		Users:    users,
		UserH:    handler.NewUserHandler(users, tokens),
		AgentH:   handler.NewAgentHandler(agents),
		TicketH:  handler.NewTicketHandler(tickets, events),
		MessageH: handler.NewMessageHandler(messages),
		WidgetH:  handler.NewWidgetHandler(agents),
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func registerAndLogin(t *testing.T, h http.Handler) string {
	t.Helper()
	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email":      "ops@example.com",
		"first_name": "Olive",
		"last_name":  "Ops",
		"password":   "s3cret-pass",
		"password2":  "s3cret-pass",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/users/token", "", gin.H{
		"email":    "ops@example.com",
		"password": "s3cret-pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("token: %d %s", rec.Code, rec.Body.String())
	}
	access, _ := body["access"].(string)
	if access == "" {
		t.Fatal("no access token in response")
	}
	return access
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doJSON(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/agents", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated agents list: got %d want 401", rec.Code)
	}
	rec, _ = doJSON(t, h, http.MethodGet, "/api/v1/agents", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d want 401", rec.Code)
	}
}

func TestChatFlow(t *testing.T) {
	h := newTestServer(t)
	token := registerAndLogin(t, h)

	rec, agentBody := doJSON(t, h, http.MethodPost, "/api/v1/agents", token, gin.H{
		"name":   "Support Bot",
		"prompt": "You are a support assistant.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create agent: %d %s", rec.Code, rec.Body.String())
	}
	agentID := int(agentBody["id"].(float64))

	rec, msgBody := doJSON(t, h, http.MethodPost,
		"/api/v1/agents/"+strconv.Itoa(agentID)+"/messages", token,
		gin.H{"content": "Hi, I need help"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post message: %d %s", rec.Code, rec.Body.String())
	}
	userMsg, ok := msgBody["user_message"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing user_message: %v", msgBody)
	}
	if userMsg["content"] != "Hi, I need help" {
		t.Fatalf("user content: %v", userMsg["content"])
	}
	agentMsg, ok := msgBody["agent_message"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing agent_message: %v", msgBody)
	}
	if agentMsg["content"] != "Hello there!" {
		t.Fatalf("agent content: %v", agentMsg["content"])
	}

	rec, histBody := doJSON(t, h, http.MethodGet,
		"/api/v1/agents/"+strconv.Itoa(agentID)+"/messages/history", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: %d %s", rec.Code, rec.Body.String())
	}
	if total := histBody["total"].(float64); total != 2 {
		t.Fatalf("history total: got %v want 2", total)
	}
}

func TestTicketFlow(t *testing.T) {
	h := newTestServer(t)
	token := registerAndLogin(t, h)

	rec, ticketBody := doJSON(t, h, http.MethodPost, "/api/v1/tickets", token, gin.H{
		"title":          "Printer on fire",
		"customer_email": "jane@example.com",
		"customer_name":  "Jane Doe",
		"priority":       "HIGH",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create ticket: %d %s", rec.Code, rec.Body.String())
	}
	if ticketBody["status"] != "OPEN" || ticketBody["priority"] != "HIGH" {
		t.Fatalf("unexpected ticket: %v", ticketBody)
	}
	ticketID := int(ticketBody["id"].(float64))

	rec, statusBody := doJSON(t, h, http.MethodPost,
		"/api/v1/tickets/"+strconv.Itoa(ticketID)+"/update_status", token,
		gin.H{"status": "CLOSED"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: %d %s", rec.Code, rec.Body.String())
	}
	ticket := statusBody["ticket"].(map[string]interface{})
	if ticket["closed_at"] == nil {
		t.Fatal("closing must set closed_at")
	}
}

func TestWidgetEndpoints(t *testing.T) {
	h := newTestServer(t)
	token := registerAndLogin(t, h)

	rec, agentBody := doJSON(t, h, http.MethodPost, "/api/v1/agents", token, gin.H{
		"name":   "Widget Bot",
		"status": "ONLINE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create agent: %d %s", rec.Code, rec.Body.String())
	}
	agentID := int(agentBody["id"].(float64))

	// Public config endpoint needs no token.
	rec, cfgBody := doJSON(t, h, http.MethodGet, "/api/v1/widgets/"+strconv.Itoa(agentID)+"/config", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("widget config: %d %s", rec.Code, rec.Body.String())
	}
	data := cfgBody["data"].(map[string]interface{})
	if data["is_online"] != true {
		t.Fatalf("expected online agent, got %v", data)
	}

	rec, embedBody := doJSON(t, h, http.MethodGet, "/api/v1/widgets/"+strconv.Itoa(agentID)+"/embed-code", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("embed code: %d %s", rec.Code, rec.Body.String())
	}
	embed := embedBody["data"].(map[string]interface{})
	if embed["embed_code"] == "" {
		t.Fatal("empty embed code")
	}
	cfg := embed["config"].(map[string]interface{})
	if cfg["primaryColor"] != "#2563eb" {
		t.Fatalf("default color not applied: %v", cfg["primaryColor"])
	}

	if rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/widgets/"+strconv.Itoa(agentID)+"/embed-code", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("embed code without auth: got %d want 401", rec.Code)
	}

	if rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/widgets/99999/config", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown widget: got %d want 404", rec.Code)
	}
}

func TestTokenRefresh(t *testing.T) {
	h := newTestServer(t)
	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email":      "ops@example.com",
		"first_name": "Olive",
		"last_name":  "Ops",
		"password":   "s3cret-pass",
		"password2":  "s3cret-pass",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	tokens := body["tokens"].(map[string]interface{})
	refresh := tokens["refresh"].(string)

	rec, refreshed := doJSON(t, h, http.MethodPost, "/api/v1/users/token/refresh", "", gin.H{"refresh": refresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body.String())
	}
	access, _ := refreshed["access"].(string)
	if access == "" {
		t.Fatal("no access token after refresh")
	}

	// The access token must not pass as a refresh token.
	accessTok := tokens["access"].(string)
	if rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/users/token/refresh", "", gin.H{"refresh": accessTok}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("access-as-refresh: got %d want 401", rec.Code)
	}
}

package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brightdesk/support-service/internal/middleware"
	"github.com/brightdesk/support-service/internal/model"
	"github.com/brightdesk/support-service/internal/service"
)

type WidgetHandler struct {
	agents *service.AgentService
}

func NewWidgetHandler(agents *service.AgentService) *WidgetHandler {
	return &WidgetHandler{agents: agents}
}

// widget display defaults, merged against the stored partial config at read
// time.
var widgetDefaults = map[string]interface{}{
	"position":     "bottom-right",
	"primaryColor": "#2563eb",
	"title":        "Chat with us",
	"subtitle":     "We're here to help!",
	"greeting":     "Hello! How can I help you today?",
	"showBranding": true,
}

func resolvedWidgetConfig(agent *model.Agent) map[string]interface{} {
	cfg := map[string]interface{}{
		"agentId": strconv.FormatUint(uint64(agent.ID), 10),
	}
	for key, def := range widgetDefaults {
		if v, ok := agent.WidgetConfig[key]; ok && v != nil {
			cfg[key] = v
		} else {
			cfg[key] = def
		}
	}
	return cfg
}

// EmbedCode returns the script snippet a site owner pastes into their page,
// plus the resolved widget configuration. Owner only; non-ownership reads
// as not-found.
func (h *WidgetHandler) EmbedCode(c *gin.Context) {
	agentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	agent, err := h.agents.GetOwned(c.Request.Context(), middleware.CurrentUser(c), agentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Agent not found or access denied"})
		return
	}

	cfg := resolvedWidgetConfig(agent)
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	embedCode := fmt.Sprintf(`<!-- Add this to your website's <head> section -->
<script src="%s://%s/static/widget.js"
        data-agent-id="%v"
        data-position="%v"
        data-color="%v"
        data-title="%v"
        data-subtitle="%v"
        data-greeting="%v"
        data-branding="%v">
</script>`,
		scheme, c.Request.Host,
		cfg["agentId"], cfg["position"], cfg["primaryColor"],
		cfg["title"], cfg["subtitle"], cfg["greeting"], cfg["showBranding"])

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"embed_code": embedCode,
			"config":     cfg,
		},
	})
}

// Config is the public endpoint the embedded widget polls: public-safe
// agent fields plus online status. No authentication.
func (h *WidgetHandler) Config(c *gin.Context) {
	agentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	agent, err := h.agents.GetPublic(c.Request.Context(), agentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Agent not found or inactive"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"agent_id":      strconv.FormatUint(uint64(agent.ID), 10),
			"name":          agent.Name,
			"description":   agent.Description,
			"widget_config": agent.WidgetConfig,
			"is_online":     agent.IsOnline(),
		},
	})
}

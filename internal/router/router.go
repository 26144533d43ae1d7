package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/brightdesk/support-service/api"
	"github.com/brightdesk/support-service/internal/auth"
	"github.com/brightdesk/support-service/internal/handler"
	"github.com/brightdesk/support-service/internal/middleware"
	"github.com/brightdesk/support-service/internal/service"
)

// Deps collects everything the router wires together.
type Deps struct {
	Tokens   *auth.Manager
	Users    *service.UserService
	UserH    *handler.UserHandler
	AgentH   *handler.AgentHandler
	TicketH  *handler.TicketHandler
	MessageH *handler.MessageHandler
	WidgetH  *handler.WidgetHandler
}

func New(d Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/") })
	r.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = "/swagger/index.html"
			c.Request.RequestURI = "/swagger/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	authRequired := middleware.RequireAuth(d.Tokens, d.Users)

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", d.UserH.Register)
			users.POST("/token", d.UserH.Token)
			users.POST("/token/refresh", d.UserH.Refresh)
			users.POST("/change-password", authRequired, d.UserH.ChangePassword)
			users.GET("/profile", authRequired, d.UserH.Profile)
			users.PUT("/profile", authRequired, d.UserH.UpdateProfile)
			users.GET("/check-auth", authRequired, d.UserH.CheckAuth)
		}

		agents := v1.Group("/agents", authRequired)
		{
			agents.GET("", d.AgentH.List)
			agents.POST("", d.AgentH.Create)
			agents.GET("/:id", d.AgentH.Get)
			agents.PUT("/:id", d.AgentH.Update)
			agents.PATCH("/:id", d.AgentH.Update)
			agents.DELETE("/:id", d.AgentH.Delete)
			agents.POST("/:id/toggle_status", d.AgentH.ToggleStatus)
			agents.GET("/:id/messages", d.MessageH.List)
			agents.POST("/:id/messages", d.MessageH.Create)
			agents.GET("/:id/messages/history", d.MessageH.History)
		}

		tickets := v1.Group("/tickets", authRequired)
		{
			tickets.GET("", d.TicketH.List)
			tickets.POST("", d.TicketH.Create)
			tickets.GET("/:id", d.TicketH.Get)
			tickets.PUT("/:id", d.TicketH.Update)
			tickets.PATCH("/:id", d.TicketH.Update)
			tickets.POST("/:id/update_status", d.TicketH.UpdateStatus)
			tickets.POST("/:id/assign_agent", d.TicketH.AssignAgent)
		}

		widgets := v1.Group("/widgets")
		{
			widgets.GET("/:id/config", d.WidgetH.Config)
			widgets.GET("/:id/embed-code", authRequired, d.WidgetH.EmbedCode)
		}
	}

	return r
}

package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/brightdesk/support-service/internal/auth"
	"github.com/brightdesk/support-service/internal/completion"
	"github.com/brightdesk/support-service/internal/config"
	"github.com/brightdesk/support-service/internal/database"
	"github.com/brightdesk/support-service/internal/handler"
	"github.com/brightdesk/support-service/internal/kafka"
	"github.com/brightdesk/support-service/internal/router"
	"github.com/brightdesk/support-service/internal/service"
)

// API is the HTTP application (mode api).
type API struct {
	cfg      *config.Config
	httpSrv  *http.Server
	producer *kafka.Producer
}

func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var completionClient completion.Client
	if cfg.AIEnabled() {
		completionClient, err = completion.NewArkClient(context.Background(), completion.ArkConfig{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			Region:  cfg.AI.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("completion: %w", err)
		}
	} else {
		log.Println("completion: no provider credentials, chat replies degrade to the canned error text")
		completionClient = completion.Disabled()
	}

	producer := kafka.NewProducer(kafka.ParseBrokers(cfg.Kafka.Brokers), cfg.Kafka.Topic)
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	userSvc := service.NewUserService(db)
	agentSvc := service.NewAgentService(db)
	ticketSvc := service.NewTicketService(db)
	messageSvc := service.NewMessageService(db, completionClient, cfg.AI.Timeout)

	mux := router.New(router.Deps{
		Tokens:   tokens,
		Users:    userSvc,
		UserH:    handler.NewUserHandler(userSvc, tokens),
		AgentH:   handler.NewAgentHandler(agentSvc),
		TicketH:  handler.NewTicketHandler(ticketSvc, producer),
		MessageH: handler.NewMessageHandler(messageSvc),
		WidgetH:  handler.NewWidgetHandler(agentSvc),
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, httpSrv: httpSrv, producer: producer}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Swagger UI:   %s/swagger", base)
	log.Printf("  Health:       %s/health", base)
	log.Printf("  API v1:       %s/api/v1/", base)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.producer.Close(); err != nil {
		log.Printf("kafka: close: %v", err)
	}
	return nil
}

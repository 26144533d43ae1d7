package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/brightdesk/support-service/internal/config"
	"github.com/brightdesk/support-service/internal/database"
	"github.com/brightdesk/support-service/internal/service"
)

var (
	adminEmail     string
	adminFirstName string
	adminLastName  string
	adminPassword  string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Provision an admin account",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&adminFirstName, "first-name", "Admin", "first name")
	createAdminCmd.Flags().StringVar(&adminLastName, "last-name", "User", "last name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password (required)")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	users := service.NewUserService(db)
	user, err := users.CreateAdmin(cmd.Context(), adminEmail, adminFirstName, adminLastName, adminPassword)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("created admin %s (id=%d)", user.Email, user.ID)
	return nil
}

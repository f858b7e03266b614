package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/nahid2887/padzzey-sub000/internal/config"
	"github.com/nahid2887/padzzey-sub000/internal/database"
	"github.com/nahid2887/padzzey-sub000/internal/logger"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

func main() {
	log := logger.New(logger.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: "console",
		Writer: os.Stderr,
	})

	rootCmd := &cobra.Command{
		Use:          "manage",
		Short:        "pdezzy administration commands",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		ensureDBCmd(log),
		migrateCmd(log),
		createSuperadminCmd(log),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func ensureDBCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-db",
		Short: "Create the application database if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			return database.EnsureDatabaseExists(cmd.Context(), cfg, log)
		},
	}
}

func migrateCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(log)
			if err != nil {
				return err
			}
			return database.Migrate(db, log)
		},
	}
}

func createSuperadminCmd(log zerolog.Logger) *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "create-superadmin",
		Short: "Create a superadmin console account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(log)
			if err != nil {
				return err
			}
			admins := services.NewAdminService(repositories.NewStore(db), log)
			admin, err := admins.CreateSuperadmin(cmd.Context(), username, email, password)
			if err != nil {
				return fmt.Errorf("create superadmin: %s", services.Message(err, err.Error()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "superadmin %s created (%s)\n", admin.Username, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func open(log zerolog.Logger) (*gorm.DB, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}
	return database.Open(cfg, log)
}

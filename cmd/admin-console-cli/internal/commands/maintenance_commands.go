package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MGTheTrain/admin-console/internal/bootstrap"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence"
)

// MaintenanceCommandHandler runs schema migrations, seeding and housekeeping
type MaintenanceCommandHandler struct{}

// MigrateCmd migrates the schema. Only the database is opened.
func (commandHandler *MaintenanceCommandHandler) MigrateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	db, err := persistence.NewDBConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create db connection: %w", err)
	}
	defer func() {
		if err := persistence.CloseDB(db); err != nil {
			log.Warn("Failed to close database: ", err)
		}
	}()

	if err := persistence.Migrate(db); err != nil {
		return err
	}
	log.Info("Database migrations completed successfully")
	return nil
}

// SeedCmd creates the built-in permissions and roles
func (commandHandler *MaintenanceCommandHandler) SeedCmd(cmd *cobra.Command, _ []string) error {
	return withDependencies(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		if err := deps.Authorization.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed roles and permissions: %w", err)
		}
		deps.Logger.Info("Roles and permissions seeded")
		return nil
	})
}

// PruneTokensCmd deletes expired password reset tokens
func (commandHandler *MaintenanceCommandHandler) PruneTokensCmd(cmd *cobra.Command, _ []string) error {
	return withDependencies(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		n, err := deps.PasswordResets.PruneExpired(ctx)
		if err != nil {
			return fmt.Errorf("failed to prune password reset tokens: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d tokens\n", n)
		return nil
	})
}

// PruneNotificationsCmd deletes read notifications older than --older-than
func (commandHandler *MaintenanceCommandHandler) PruneNotificationsCmd(cmd *cobra.Command, _ []string) error {
	olderThan, err := olderThanFlag(cmd)
	if err != nil {
		return err
	}

	return withDependencies(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		n, err := deps.Notifications.PruneRead(ctx, olderThan)
		if err != nil {
			return fmt.Errorf("failed to prune notifications: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d notifications\n", n)
		return nil
	})
}

// PruneErrorsCmd deletes errors resolved more than --older-than ago
func (commandHandler *MaintenanceCommandHandler) PruneErrorsCmd(cmd *cobra.Command, _ []string) error {
	olderThan, err := olderThanFlag(cmd)
	if err != nil {
		return err
	}

	return withDependencies(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		n, err := deps.ErrorLogs.PruneResolved(ctx, olderThan)
		if err != nil {
			return fmt.Errorf("failed to prune error logs: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d error logs\n", n)
		return nil
	})
}

func olderThanFlag(cmd *cobra.Command) (time.Duration, error) {
	olderThan, err := cmd.Flags().GetDuration("older-than")
	if err != nil {
		return 0, fmt.Errorf("invalid older-than flag: %w", err)
	}
	if olderThan <= 0 {
		return 0, fmt.Errorf("older-than must be positive, got %s", olderThan)
	}
	return olderThan, nil
}

// InitMaintenanceCommands registers migrate, seed and the prune commands
func InitMaintenanceCommands(rootCmd *cobra.Command) error {
	handler := &MaintenanceCommandHandler{}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database schema",
		RunE:  handler.MigrateCmd,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the built-in roles and permissions",
		RunE:  handler.SeedCmd,
	})

	var tokensCmd = &cobra.Command{Use: "tokens", Short: "Manage password reset tokens"}
	tokensCmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired password reset tokens",
		RunE:  handler.PruneTokensCmd,
	})
	rootCmd.AddCommand(tokensCmd)

	var notificationsCmd = &cobra.Command{Use: "notifications", Short: "Manage stored notifications"}
	pruneNotificationsCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete read notifications",
		RunE:  handler.PruneNotificationsCmd,
	}
	pruneNotificationsCmd.Flags().Duration("older-than", 30*24*time.Hour, "Minimum age of the notifications to delete")
	notificationsCmd.AddCommand(pruneNotificationsCmd)
	rootCmd.AddCommand(notificationsCmd)

	var errorsCmd = &cobra.Command{Use: "errors", Short: "Manage logged errors"}
	pruneErrorsCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete resolved errors",
		RunE:  handler.PruneErrorsCmd,
	}
	pruneErrorsCmd.Flags().Duration("older-than", 30*24*time.Hour, "Minimum time since the errors were resolved")
	errorsCmd.AddCommand(pruneErrorsCmd)
	rootCmd.AddCommand(errorsCmd)

	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MGTheTrain/admin-console/internal/bootstrap"
)

// TenancyCommandHandler prepares and tidies team scoping
type TenancyCommandHandler struct{}

// SetupCmd seeds roles and permissions, ensures the default team and attaches users
// without a team to it
func (commandHandler *TenancyCommandHandler) SetupCmd(cmd *cobra.Command, _ []string) error {
	return withDependencies(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		result, err := deps.Tenancy.Setup(ctx)
		if err != nil {
			return fmt.Errorf("failed to set up tenancy: %w", err)
		}
		deps.Logger.Info("Tenancy set up with default team ", result.DefaultTeamID)
		return printJSON(cmd.OutOrStdout(), result)
	})
}

// CleanupCmd removes empty teams, orphaned team roles and dangling memberships
func (commandHandler *TenancyCommandHandler) CleanupCmd(cmd *cobra.Command, _ []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("invalid dry-run flag: %w", err)
	}

	return withDependencies(cmd, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		result, err := deps.Tenancy.Cleanup(ctx, dryRun)
		if err != nil {
			return fmt.Errorf("failed to clean up tenancy: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), result)
	})
}

// InitTenancyCommands registers the tenancy command group
func InitTenancyCommands(rootCmd *cobra.Command) error {
	handler := &TenancyCommandHandler{}

	var tenancyCmd = &cobra.Command{
		Use:   "tenancy",
		Short: "Manage team scoping",
	}

	var setupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Seed roles, ensure the default team and attach users without a team",
		RunE:  handler.SetupCmd,
	}
	tenancyCmd.AddCommand(setupCmd)

	var cleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "Remove empty teams, orphaned roles and dangling memberships",
		RunE:  handler.CleanupCmd,
	}
	cleanupCmd.Flags().Bool("dry-run", false, "Report what would be removed without deleting")
	tenancyCmd.AddCommand(cleanupCmd)

	rootCmd.AddCommand(tenancyCmd)
	return nil
}

// Package main is the entry point for the admin-console-cli application.
// It registers the tenancy, translation and maintenance command groups and
// executes the command-line interface.
package main

import (
	"fmt"
	"log"
	"os"

	commands "github.com/MGTheTrain/admin-console/cmd/admin-console-cli/internal/commands"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "admin-console-cli",
		Short: "Administration tasks for the admin console",
		Long: `admin-console-cli runs administration tasks against the admin console database.
It migrates and seeds the schema, sets up and cleans up team scoping,
keeps translation catalogs in line with the source tree and prunes
expired tokens, read notifications and resolved errors.

The configuration file is read from --config, CONFIG_PATH or
configs/admin-console.yaml. Settings can be overridden with ADMIN_
prefixed environment variables, e.g. ADMIN_DATABASE_DSN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(commands.ConfigFlag, "", "Path to the configuration file")

	// Initialize all command groups BEFORE executing
	if err := initializeCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize commands: %w", err)
	}

	// Execute root command ONCE after all commands are registered
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// initializeCommands registers all command groups with the root command.
func initializeCommands(rootCmd *cobra.Command) error {
	if err := commands.InitMaintenanceCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize maintenance commands: %w", err)
	}

	if err := commands.InitTenancyCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize tenancy commands: %w", err)
	}

	if err := commands.InitTranslationCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize translation commands: %w", err)
	}

	return nil
}

// init sets up any necessary initialization before main runs.
func init() {
	// Set log flags for better error messages
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Ensure proper exit codes on errors
	log.SetOutput(os.Stderr)
}

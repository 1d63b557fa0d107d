package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MGTheTrain/admin-console/internal/app"
	"github.com/MGTheTrain/admin-console/internal/pkg/i18n"
)

// TranslationCommandHandler keeps the locale catalogs in line with the source tree.
// It needs neither the database nor redis.
type TranslationCommandHandler struct {
	newService func(cmd *cobra.Command) (app.TranslationService, error)
}

// NewTranslationCommandHandler creates a handler building its service from the
// configuration of each invocation
func NewTranslationCommandHandler() *TranslationCommandHandler {
	return &TranslationCommandHandler{newService: translationServiceFromConfig}
}

func translationServiceFromConfig(cmd *cobra.Command) (app.TranslationService, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := setupLogger(cfg)
	if err != nil {
		return nil, err
	}
	return app.NewTranslationService(&cfg.I18n, log)
}

// ScanCmd lists the referenced keys with the files using them
func (commandHandler *TranslationCommandHandler) ScanCmd(cmd *cobra.Command, _ []string) error {
	service, err := commandHandler.newService(cmd)
	if err != nil {
		return err
	}

	found, err := service.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to scan translation keys: %w", err)
	}
	for _, key := range i18n.SortedKeys(found) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", key, len(found[key]))
	}
	return nil
}

// SyncCmd adds referenced keys missing from any locale
func (commandHandler *TranslationCommandHandler) SyncCmd(cmd *cobra.Command, _ []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("invalid dry-run flag: %w", err)
	}
	service, err := commandHandler.newService(cmd)
	if err != nil {
		return err
	}

	result, err := service.Sync(cmd.Context(), dryRun)
	if err != nil {
		return fmt.Errorf("failed to sync translations: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), result)
}

// PruneCmd removes keys no longer referenced from every locale
func (commandHandler *TranslationCommandHandler) PruneCmd(cmd *cobra.Command, _ []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("invalid dry-run flag: %w", err)
	}
	service, err := commandHandler.newService(cmd)
	if err != nil {
		return err
	}

	result, err := service.Prune(cmd.Context(), dryRun)
	if err != nil {
		return fmt.Errorf("failed to prune translations: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), result)
}

// InitTranslationCommands registers the translations command group
func InitTranslationCommands(rootCmd *cobra.Command) error {
	handler := NewTranslationCommandHandler()
	return registerTranslationCommands(rootCmd, handler)
}

func registerTranslationCommands(rootCmd *cobra.Command, handler *TranslationCommandHandler) error {
	var translationsCmd = &cobra.Command{
		Use:   "translations",
		Short: "Scan, sync and prune translation catalogs",
	}

	var scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "List translation keys referenced in the source tree",
		RunE:  handler.ScanCmd,
	}
	translationsCmd.AddCommand(scanCmd)

	var syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Add referenced keys missing from any locale",
		RunE:  handler.SyncCmd,
	}
	syncCmd.Flags().Bool("dry-run", false, "Report missing keys without writing the catalogs")
	translationsCmd.AddCommand(syncCmd)

	var pruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Remove keys no longer referenced in the source tree",
		RunE:  handler.PruneCmd,
	}
	pruneCmd.Flags().Bool("dry-run", false, "Report unused keys without writing the catalogs")
	translationsCmd.AddCommand(pruneCmd)

	rootCmd.AddCommand(translationsCmd)
	return nil
}

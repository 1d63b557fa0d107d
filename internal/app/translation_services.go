package app

import (
	"context"
	"fmt"

	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/i18n"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// TranslationService keeps the translation catalogs in line with the source tree
type TranslationService interface {
	// Scan returns the referenced keys with the files using them
	Scan(ctx context.Context) (map[string][]string, error)
	// Sync adds referenced keys missing from any locale
	Sync(ctx context.Context, dryRun bool) (*i18n.SyncResult, error)
	// Prune removes keys no longer referenced
	Prune(ctx context.Context, dryRun bool) (*i18n.PruneResult, error)
}

// translationService implements the TranslationService interface
type translationService struct {
	settings config.I18nSettings
	scanner  *i18n.Scanner
	logger   logger.Logger
}

// NewTranslationService creates a new instance of TranslationService
func NewTranslationService(settings *config.I18nSettings, logger logger.Logger) (TranslationService, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &translationService{
		settings: *settings,
		scanner:  i18n.NewScanner(settings.ScanPaths, settings.ScanExclude),
		logger:   logger,
	}, nil
}

// Scan walks the configured source paths
func (s *translationService) Scan(_ context.Context) (map[string][]string, error) {
	found, err := s.scanner.Scan()
	if err != nil {
		return nil, err
	}
	s.logger.Info("Found ", len(found), " translation keys")
	return found, nil
}

// Sync scans, adds missing keys and saves the catalogs unless dryRun is set
func (s *translationService) Sync(ctx context.Context, dryRun bool) (*i18n.SyncResult, error) {
	catalog, keys, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	result := i18n.Sync(catalog, keys, dryRun)
	if !dryRun && result.Total() > 0 {
		if err := catalog.Save(); err != nil {
			return nil, fmt.Errorf("failed to save catalogs: %w", err)
		}
	}
	s.logger.Info("Translation sync added ", result.Total(), " messages (dry run: ", dryRun, ")")
	return result, nil
}

// Prune scans, removes unreferenced keys and saves the catalogs unless dryRun is set
func (s *translationService) Prune(ctx context.Context, dryRun bool) (*i18n.PruneResult, error) {
	catalog, keys, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	result := i18n.Prune(catalog, keys, dryRun)
	if !dryRun && result.Total() > 0 {
		if err := catalog.Save(); err != nil {
			return nil, fmt.Errorf("failed to save catalogs: %w", err)
		}
	}
	s.logger.Info("Translation prune removed ", result.Total(), " messages (dry run: ", dryRun, ")")
	return result, nil
}

func (s *translationService) load(ctx context.Context) (*i18n.Catalog, []string, error) {
	catalog, err := i18n.Load(s.settings.LocalesDir, s.settings.BaseLocale, s.settings.Locales...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalogs: %w", err)
	}
	found, err := s.Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	return catalog, i18n.SortedKeys(found), nil
}

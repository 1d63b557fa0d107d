package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// I18nSettings configures translation catalogs and the translation scanner
type I18nSettings struct {
	LocalesDir  string   `mapstructure:"locales_dir" validate:"required"`
	BaseLocale  string   `mapstructure:"base_locale" validate:"required"`
	Locales     []string `mapstructure:"locales" validate:"required,min=1"`
	ScanPaths   []string `mapstructure:"scan_paths"`
	ScanExclude []string `mapstructure:"scan_exclude"`
}

// Validate checks that all fields in I18nSettings are valid
func (s *I18nSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for I18nSettings: %w", err)
	}

	for _, l := range s.Locales {
		if l == s.BaseLocale {
			return nil
		}
	}
	return fmt.Errorf("base locale %s must be one of the configured locales", s.BaseLocale)
}

// TenancySettings configures team scoping
type TenancySettings struct {
	Enabled     bool   `mapstructure:"enabled"`
	DefaultTeam string `mapstructure:"default_team" validate:"required"`
}

// Validate checks that all fields in TenancySettings are valid
func (s *TenancySettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for TenancySettings: %w", err)
	}
	return nil
}

// DataTableSettings holds defaults applied to tables that don't set their own
type DataTableSettings struct {
	PerPageOptions []int `mapstructure:"per_page_options" validate:"required,min=1,dive,min=1,max=500"`
	DefaultPerPage int   `mapstructure:"default_per_page" validate:"required,min=1,max=500"`
}

// Validate checks that all fields in DataTableSettings are valid
func (s *DataTableSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for DataTableSettings: %w", err)
	}

	for _, n := range s.PerPageOptions {
		if n == s.DefaultPerPage {
			return nil
		}
	}
	return fmt.Errorf("default per page %d must be one of the per page options", s.DefaultPerPage)
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MGTheTrain/admin-console/internal/bootstrap"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// ConfigFlag names the persistent flag holding the configuration file path
const ConfigFlag = "config"

// defaultConfigPath is used when neither --config nor CONFIG_PATH is given
const defaultConfigPath = "configs/admin-console.yaml"

func setupLogger(cfg *config.Config) (logger.Logger, error) {
	settings := &config.LoggerSettings{
		LogLevel: cfg.Logger.LogLevel,
		LogType:  config.LogTypeConsole,
		FilePath: "",
	}

	if err := logger.InitLogger(settings); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerInstance, err := logger.GetLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger instance: %w", err)
	}

	return loggerInstance, nil
}

// loadConfig reads the file named by --config, then CONFIG_PATH, then the default
// path. A missing default file falls back to defaults and environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(ConfigFlag)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}

	cfg, err := config.InitializeConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	return cfg, nil
}

// withDependencies loads the configuration, builds every service and releases the
// connections once fn returns
func withDependencies(cmd *cobra.Command, fn func(ctx context.Context, deps *bootstrap.Dependencies) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Warn("Failed to release connections: ", err)
		}
	}()

	return fn(ctx, deps)
}

// printJSON writes v indented to w
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqlnest/internal/cli/config"
	"github.com/leapstack-labs/sqlnest/pkg/parser"
	"github.com/leapstack-labs/sqlnest/pkg/rewrite"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext resolves the loaded configuration and logger for a
// command invocation.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// getConfig returns the current configuration. It uses the config loaded
// by the root command if available, otherwise falls back to environment
// variables with defaults (e.g. when a command runs standalone in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	indent := config.DefaultIndent
	if v, err := strconv.Atoi(os.Getenv("SQLNEST_INDENT")); err == nil && v > 0 {
		indent = v
	}

	return &config.Config{
		Suffix:  getEnvOrDefault("SQLNEST_SUFFIX", config.DefaultSuffix),
		Indent:  indent,
		Output:  getEnvOrDefault("SQLNEST_OUTPUT", config.DefaultOutput),
		Verbose: os.Getenv("SQLNEST_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// rewriteFile reads a SQL file and returns its rewritten form.
func rewriteFile(path string, cfg *config.Config) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	stmt, err := parser.Parse(string(data))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	out, err := rewrite.Rewrite(stmt, rewrite.Options{Indent: cfg.Indent})
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// OutputPath derives the companion output path for an input path by
// inserting the suffix before the extension:
// query.sql -> query_nested.sql.
func OutputPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

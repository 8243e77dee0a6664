package config

import (
	"fmt"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Suffix == "" {
		return fmt.Errorf("suffix is required\nHint: the output path is derived by inserting the suffix before the extension")
	}
	if strings.ContainsAny(c.Suffix, "/\\") {
		return fmt.Errorf("suffix must not contain path separators: %q", c.Suffix)
	}
	if c.Indent < 1 || c.Indent > 8 {
		return fmt.Errorf("indent must be between 1 and 8, got %d", c.Indent)
	}
	switch c.Output {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown output format %q (expected text or json)", c.Output)
	}
	return nil
}

// Package config provides configuration management for the SQLNest CLI.
//
// Configuration is layered: built-in defaults, then a sqlnest.yaml (or
// .yml) file, then SQLNEST_* environment variables, then CLI flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Suffix is inserted before the extension of the input path to
	// derive the output path: query.sql -> query_nested.sql.
	Suffix string `koanf:"suffix"`
	// Indent is the number of spaces per nesting level in the output.
	Indent int `koanf:"indent"`
	// Output selects the rendering mode for inspection commands
	// (text or json).
	Output string `koanf:"output"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultSuffix = "_nested"
	DefaultIndent = 2
	DefaultOutput = "text"
)

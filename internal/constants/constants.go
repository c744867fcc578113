// Package constants defines shared configuration constants.
package constants

var (
	ConfigFile = "config.yaml"

	DefaultDir = ".futurescope"

	// ConfigDirEnv overrides the directory config.yaml is looked up in.
	ConfigDirEnv = "FUTURESCOPE_CONFIG"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "FUTURESCOPE_"

	DefaultDatabaseFile = "futurescope.duckdb"
)
